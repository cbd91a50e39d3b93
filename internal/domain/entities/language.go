package entities

import "strings"

// Language is a content language tag.
type Language string

const (
	LanguageEN Language = "en"
	LanguagePT Language = "pt"
)

// SupportedLanguages lists the languages content is published in.
var SupportedLanguages = []Language{LanguageEN, LanguagePT}

// ParseLanguage parses a language tag such as "pt", "PT" or "pt-BR".
func ParseLanguage(s string) (Language, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	for _, l := range SupportedLanguages {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

// Other returns the paired language of a bilingual set.
func (l Language) Other() Language {
	if l == LanguagePT {
		return LanguageEN
	}
	return LanguagePT
}
