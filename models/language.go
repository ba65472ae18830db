package models

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is a glossary/insight language code.
type Language string

const (
	English Language = "en"
	Tamil   Language = "ta"
	Hindi   Language = "hi"
)

// SupportedLanguages lists the languages every glossary must cover, in selector order.
var SupportedLanguages = []Language{English, Tamil, Hindi}

// ParseLanguage maps a code such as "TA" or " hi" to a supported Language.
func ParseLanguage(code string) (Language, bool) {
	l := Language(strings.ToLower(strings.TrimSpace(code)))
	for _, s := range SupportedLanguages {
		if l == s {
			return l, true
		}
	}
	return "", false
}

// Name returns the English display name, e.g. "Tamil".
func (l Language) Name() string {
	tag, err := language.Parse(string(l))
	if err != nil {
		return string(l)
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return string(l)
}

// InsightLookup maps language -> country -> narrative text.
type InsightLookup map[Language]map[string]string

// NewInsightLookup returns a lookup with an empty map for every supported language.
func NewInsightLookup() InsightLookup {
	l := make(InsightLookup, len(SupportedLanguages))
	for _, lang := range SupportedLanguages {
		l[lang] = map[string]string{}
	}
	return l
}

// Get returns the insight for a country, or "" when none is known.
func (l InsightLookup) Get(lang Language, country string) string {
	return l[lang][country]
}

func (l InsightLookup) Clone() InsightLookup {
	out := make(InsightLookup, len(l))
	for lang, byCountry := range l {
		m := make(map[string]string, len(byCountry))
		for k, v := range byCountry {
			m[k] = v
		}
		out[lang] = m
	}
	return out
}
