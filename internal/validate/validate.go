package validate

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	reQ        = regexp.MustCompile(`^[\p{L}\p{N} _'&.,-]{1,100}$`)
	reID       = regexp.MustCompile(`^[0-9]{1,18}$`)
	reUsername = regexp.MustCompile(`^[A-Za-z0-9._@-]{1,64}$`)
	reCategory = regexp.MustCompile(`^[\p{L}\p{N} &_-]{1,60}$`)
	reDataImg  = regexp.MustCompile(`^data:image/[a-z0-9.+-]+;base64,[A-Za-z0-9+/=]+$`)
)

// ID validates a positive numeric record id.
func ID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if !reID.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil && n > 0
}

// Q validates the gift name filter: trims, caps length, allows letters of
// any script.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, reQ.MatchString(s)
}

func Category(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reCategory.MatchString(s)
}

func Username(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reUsername.MatchString(s)
}

// Password only bounds length; the API decides whether it is right.
func Password(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= 1 && n <= 128
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > 200 {
		return "", false
	}
	return s, true
}

// Text trims free text and caps it at max runes.
func Text(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > max {
		s = string([]rune(s)[:max])
	}
	return s
}

// URL accepts absolute http and https links.
func URL(s string) (string, bool) {
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	return s, true
}

// ImageURL accepts an http(s) link, an inline base64 image, or nothing.
func ImageURL(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	if strings.HasPrefix(s, "data:") {
		return s, reDataImg.MatchString(s)
	}
	return URL(s)
}

// Int parses a non-negative integer, falling back to def.
func Int(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return def
	}
	return n
}

// Float parses a finite non-negative number, falling back to def.
func Float(s string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return def
	}
	return f
}

// List splits a comma separated field, dropping blanks.
func List(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
