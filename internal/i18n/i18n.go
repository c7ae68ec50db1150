// Package i18n resolves Arabic and English interface strings and tracks the
// active language.
package i18n

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type Lang string

const (
	AR Lang = "ar"
	EN Lang = "en"

	Default = AR
)

// Langs lists the supported languages in display order.
var Langs = []Lang{AR, EN}

// ParseLang normalises s ("en-US" -> en) and falls back to Default.
func ParseLang(s string) Lang {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	switch Lang(s) {
	case AR, EN:
		return Lang(s)
	}
	return Default
}

func (l Lang) Valid() bool { return l == AR || l == EN }

// Dir is the text direction for l.
func Dir(l Lang) string {
	if l == AR {
		return "rtl"
	}
	return "ltr"
}

//go:embed locales/*.yaml
var localeFS embed.FS

// Dictionary holds the nested string tree of every language.
type Dictionary struct {
	trees map[Lang]map[string]any
}

var (
	loadOnce sync.Once
	shared   *Dictionary
	loadErr  error
)

// Load parses the embedded locale files once and returns the shared
// dictionary.
func Load() (*Dictionary, error) {
	loadOnce.Do(func() {
		d := &Dictionary{trees: map[Lang]map[string]any{}}
		for _, l := range Langs {
			raw, err := localeFS.ReadFile("locales/" + string(l) + ".yaml")
			if err != nil {
				loadErr = fmt.Errorf("read %s locale: %w", l, err)
				return
			}
			tree := map[string]any{}
			if err := yaml.Unmarshal(raw, &tree); err != nil {
				loadErr = fmt.Errorf("parse %s locale: %w", l, err)
				return
			}
			d.trees[l] = tree
		}
		shared = d
	})
	return shared, loadErr
}

// MustLoad is Load for program start-up.
func MustLoad() *Dictionary {
	d, err := Load()
	if err != nil {
		panic(err)
	}
	return d
}

// T walks the dotted key through lang's tree. A missing key, or a key that
// names a section instead of a string, yields the key itself.
func (d *Dictionary) T(lang Lang, key string) string {
	if d == nil {
		return key
	}
	var node any = d.trees[lang]
	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return key
		}
		if node, ok = m[part]; !ok {
			return key
		}
	}
	if s, ok := node.(string); ok {
		return s
	}
	return key
}

// Replace substitutes {name} placeholders. Arguments come in name, value
// pairs; a trailing unpaired name is ignored.
func Replace(s string, pairs ...any) string {
	for i := 0; i+1 < len(pairs); i += 2 {
		s = strings.ReplaceAll(s, "{"+fmt.Sprint(pairs[i])+"}", fmt.Sprint(pairs[i+1]))
	}
	return s
}
