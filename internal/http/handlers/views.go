package handlers

import (
	"html/template"
	"strings"

	html "github.com/gofiber/template/html/v2"

	"giftfinder/internal/domain"
	"giftfinder/internal/finder"
	"giftfinder/internal/i18n"
	"giftfinder/internal/media"
)

// NewEngine builds the template engine with the helpers the pages use.
func NewEngine(dir string, dict *i18n.Dictionary, reload bool) *html.Engine {
	engine := html.New(dir, ".html")
	engine.Reload(reload)
	engine.AddFunc("t", func(lang i18n.Lang, key string) string { return dict.T(lang, key) })
	engine.AddFunc("replace", i18n.Replace)
	engine.AddFunc("dir", i18n.Dir)
	engine.AddFunc("name", displayName)
	engine.AddFunc("desc", displayDescription)
	engine.AddFunc("tierKey", func(score float64) string { return finder.Bucket(score).Key() })
	engine.AddFunc("tierClass", func(score float64) string {
		k := finder.Bucket(score).Key()
		return k[strings.LastIndexByte(k, '.')+1:]
	})
	engine.AddFunc("percent", finder.Percent)
	engine.AddFunc("isDataURI", media.IsDataURI)
	engine.AddFunc("has", func(list []string, v string) bool {
		for _, s := range list {
			if s == v {
				return true
			}
		}
		return false
	})
	engine.AddFunc("join", strings.Join)
	engine.AddFunc("lower", strings.ToLower)
	engine.AddFunc("add", func(a, b int) int { return a + b })
	engine.AddFunc("safeURL", safeURL)
	engine.AddFunc("opt", func(lang i18n.Lang, prefix, value string) string {
		key := prefix + "." + strings.ToLower(value)
		if s := dict.T(lang, key); s != key {
			return s
		}
		return value
	})
	engine.AddFunc("card", func(g domain.Gift, lang i18n.Lang) map[string]any {
		return map[string]any{"Gift": g, "Lang": lang}
	})
	engine.AddFunc("imageField", func(lang i18n.Lang, mode, url string) map[string]any {
		return map[string]any{"Lang": lang, "Mode": mode, "URL": url}
	})
	return engine
}

func displayName(v any, lang i18n.Lang) string {
	switch x := v.(type) {
	case domain.Store:
		return x.Name(string(lang))
	case *domain.Store:
		if x != nil {
			return x.Name(string(lang))
		}
	case domain.Gift:
		return x.Name(string(lang))
	case *domain.Gift:
		if x != nil {
			return x.Name(string(lang))
		}
	}
	return ""
}

func displayDescription(v any, lang i18n.Lang) string {
	switch x := v.(type) {
	case domain.Store:
		return x.Description(string(lang))
	case domain.Gift:
		return x.Description(string(lang))
	}
	return ""
}

// safeURL lets stored image data URIs through html/template; anything
// else is left to the normal URL escaping.
func safeURL(s string) any {
	if media.IsDataURI(s) && strings.HasPrefix(s, "data:image/") {
		return template.URL(s)
	}
	return s
}
