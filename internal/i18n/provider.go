package i18n

import "sync"

// Provider holds the process-wide language and notifies subscribers when it
// changes. Per-visitor choices live in the session store; the provider
// supplies the language for visitors who have not chosen one.
type Provider struct {
	dict *Dictionary

	mu   sync.RWMutex
	lang Lang
	subs []func(Lang)
}

func NewProvider(dict *Dictionary, initial Lang) *Provider {
	if !initial.Valid() {
		initial = Default
	}
	return &Provider{dict: dict, lang: initial}
}

func (p *Provider) Current() Lang {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lang
}

// Set switches the language. Subscribers run synchronously, after the
// switch, only when the value actually changed.
func (p *Provider) Set(l Lang) {
	if !l.Valid() {
		return
	}
	p.mu.Lock()
	if p.lang == l {
		p.mu.Unlock()
		return
	}
	p.lang = l
	subs := append([]func(Lang){}, p.subs...)
	p.mu.Unlock()
	for _, fn := range subs {
		fn(l)
	}
}

func (p *Provider) Subscribe(fn func(Lang)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, fn)
}

// T translates key in the current language.
func (p *Provider) T(key string) string { return p.dict.T(p.Current(), key) }

func (p *Provider) Dictionary() *Dictionary { return p.dict }

// Locale is the language chosen for one request.
type Locale struct {
	Lang Lang
	dict *Dictionary
}

func (p *Provider) For(l Lang) Locale {
	if !l.Valid() {
		l = p.Current()
	}
	return Locale{Lang: l, dict: p.dict}
}

func (l Locale) T(key string) string { return l.dict.T(l.Lang, key) }
func (l Locale) Dir() string         { return Dir(l.Lang) }
