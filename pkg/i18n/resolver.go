package i18n

import (
	"strings"
	"sync"
)

type Lang string

const (
	AR Lang = "ar"
	EN Lang = "en"
)

// DefaultLang is used when no language is requested.
const DefaultLang = EN

// ParseLang maps tags such as "ar-KW" or "EN_us" onto a supported language.
func ParseLang(s string) Lang {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_;,"); i >= 0 {
		s = s[:i]
	}
	if s == string(AR) {
		return AR
	}
	return EN
}

// Resolver answers lookups against one catalog. It holds no mutable state.
type Resolver struct {
	catalog *Catalog
}

func NewResolver(c *Catalog) *Resolver {
	return &Resolver{catalog: c}
}

func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// Resolve returns the message for key in lang. Missing languages fall back to
// English, then Arabic, then the key.
func (r *Resolver) Resolve(key string, lang Lang) string {
	leaf, ok := r.catalog.lookup(key)
	if !ok {
		return key
	}
	if v := (Text{Ar: leaf.Ar, En: leaf.En}).In(lang); v != "" {
		return v
	}
	return key
}

// In returns t in lang, falling back to English, then Arabic. It is empty only
// when both languages are.
func (t Text) In(lang Lang) string {
	if lang == "" {
		lang = DefaultLang
	}
	var requested string
	switch lang {
	case AR:
		requested = t.Ar
	case EN:
		requested = t.En
	}
	switch {
	case requested != "":
		return requested
	case t.En != "":
		return t.En
	default:
		return t.Ar
	}
}

// ResolveBilingual returns both languages for key, or {key, key} when key does
// not name a leaf.
func (r *Resolver) ResolveBilingual(key string) Text {
	leaf, ok := r.catalog.lookup(key)
	if !ok {
		return Text{Ar: key, En: key}
	}
	return Text{Ar: leaf.Ar, En: leaf.En}
}

var (
	defaultOnce     sync.Once
	defaultResolver *Resolver
)

// Default returns the process-wide resolver over the built-in messages.
func Default() *Resolver {
	defaultOnce.Do(func() {
		defaultResolver = NewResolver(NewCatalog(messages()))
	})
	return defaultResolver
}

// T resolves key with the default resolver.
func T(key string, lang Lang) string {
	return Default().Resolve(key, lang)
}

// Bilingual resolves key in both languages with the default resolver.
func Bilingual(key string) Text {
	return Default().ResolveBilingual(key)
}
