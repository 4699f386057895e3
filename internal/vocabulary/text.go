package vocabulary

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold normalizes s to NFC and applies Unicode case folding.
// A Caser is stateful, so one is created per call.
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// Words folds s and splits it on whitespace, trimming punctuation around
// each word. Words that are pure punctuation are dropped.
func Words(s string) []string {
	fields := strings.Fields(Fold(s))
	words := fields[:0]
	for _, f := range fields {
		if w := TrimWord(f); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// TrimWord strips leading and trailing runes that are neither letters,
// digits nor combining marks.
func TrimWord(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
	})
}
