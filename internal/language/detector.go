// Package language guesses the language of a message from the Unicode
// script of its characters.
package language

import (
	"strings"
	"unicode"
)

type Language string

const (
	Hindi   Language = "Hindi"
	Marathi Language = "Marathi"
	Kannada Language = "Kannada"
	Bengali Language = "Bengali"
	English Language = "English"
	Unknown Language = "Unknown"
)

type script struct {
	language Language
	table    *unicode.RangeTable
	locales  []string
}

// scripts is tested in order. Hindi and Marathi share Devanagari, so Detect
// never returns Marathi; DetectWithLocale can.
var scripts = []script{
	{Hindi, unicode.Devanagari, []string{"hi"}},
	{Marathi, unicode.Devanagari, []string{"mr"}},
	{Kannada, unicode.Kannada, []string{"kn"}},
	{Bengali, unicode.Bengali, []string{"bn"}},
	{English, unicode.Latin, []string{"en"}},
}

// Detect returns the language of the first script in the table that has
// at least one character in text, or Unknown.
func Detect(text string) Language {
	if s, ok := firstScript(text); ok {
		return s.language
	}
	return Unknown
}

// DetectWithLocale breaks ties between languages sharing a script using
// the user's locale, such as a Telegram language code ("mr", "hi-IN").
func DetectWithLocale(text, locale string) Language {
	s, ok := firstScript(text)
	if !ok {
		return Unknown
	}

	lang := baseLocale(locale)
	if lang == "" {
		return s.language
	}
	for _, candidate := range scripts {
		if candidate.table != s.table {
			continue
		}
		for _, l := range candidate.locales {
			if l == lang {
				return candidate.language
			}
		}
	}
	return s.language
}

func firstScript(text string) (script, bool) {
	for _, s := range scripts {
		if strings.IndexFunc(text, func(r rune) bool { return unicode.Is(s.table, r) }) >= 0 {
			return s, true
		}
	}
	return script{}, false
}

func baseLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i >= 0 {
		locale = locale[:i]
	}
	return locale
}
