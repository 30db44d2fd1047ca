package schema

import (
	"golang.org/x/text/language"
)

// LocalizedText maps a language code to a translation, e.g.
// {"es": "¿Cómo calificas el servicio?", "en": "How do you rate the service?"}.
type LocalizedText map[string]string

// fallbackLanguages is the lookup order when no translation matches the
// requested language. Spanish is the primary authoring language.
var fallbackLanguages = []string{"es", "en"}

// In returns the translation for the requested language.
//
// The requested code is matched against the available translations with BCP 47
// matching, so "es-MX" resolves to an "es" translation. When nothing matches,
// the fallback order is es, en, then any non-empty translation.
func (t LocalizedText) In(lang string) string {
	if len(t) == 0 {
		return ""
	}
	if s, ok := t[lang]; ok && s != "" {
		return s
	}

	if want, err := language.Parse(lang); err == nil {
		tags := make([]language.Tag, 0, len(t))
		codes := make([]string, 0, len(t))
		for code, s := range t {
			if s == "" {
				continue
			}
			tag, err := language.Parse(code)
			if err != nil {
				continue
			}
			tags = append(tags, tag)
			codes = append(codes, code)
		}
		if len(tags) > 0 {
			_, idx, conf := language.NewMatcher(tags).Match(want)
			if conf > language.No {
				return t[codes[idx]]
			}
		}
	}

	for _, code := range fallbackLanguages {
		if s := t[code]; s != "" {
			return s
		}
	}
	for _, s := range t {
		if s != "" {
			return s
		}
	}
	return ""
}

// IsZero reports whether no translation is present.
func (t LocalizedText) IsZero() bool {
	for _, s := range t {
		if s != "" {
			return false
		}
	}
	return true
}
