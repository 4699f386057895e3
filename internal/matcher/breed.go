package matcher

import (
	"regexp"
	"strings"

	"github.com/xaenox/herdbot/internal/vocabulary"
)

// DefaultBreedThreshold is the looseness accepted when correcting a
// misspelled breed name.
const DefaultBreedThreshold = 0.3

type BreedMatcher struct {
	breeds    []string
	patterns  []*regexp.Regexp
	matcher   SimilarityMatcher
	threshold float64
	maxWords  int
}

type BreedOption func(*BreedMatcher)

func WithThreshold(threshold float64) BreedOption {
	return func(b *BreedMatcher) {
		b.threshold = threshold
	}
}

func WithSimilarityMatcher(m SimilarityMatcher) BreedOption {
	return func(b *BreedMatcher) {
		b.matcher = m
	}
}

func NewBreedMatcher(breeds []string, opts ...BreedOption) *BreedMatcher {
	b := &BreedMatcher{
		breeds:    append([]string(nil), breeds...),
		patterns:  make([]*regexp.Regexp, len(breeds)),
		matcher:   NewLevenshtein(),
		threshold: DefaultBreedThreshold,
	}
	for _, opt := range opts {
		opt(b)
	}

	for i, breed := range breeds {
		words := strings.Fields(breed)
		if len(words) > b.maxWords {
			b.maxWords = len(words)
		}
		quoted := make([]string, len(words))
		for j, w := range words {
			quoted[j] = regexp.QuoteMeta(w)
		}
		b.patterns[i] = regexp.MustCompile(`(?i)\b` + strings.Join(quoted, `\s+`) + `\b`)
	}

	return b
}

func (b *BreedMatcher) Breeds() []string {
	return append([]string(nil), b.breeds...)
}

// Match fuzzily corrects a single word or short phrase to a breed name.
func (b *BreedMatcher) Match(word string) (string, bool) {
	word = strings.Join(strings.Fields(word), " ")
	if word == "" {
		return "", false
	}
	m, ok := b.matcher.BestMatch(word, b.breeds, b.threshold)
	if !ok {
		return "", false
	}
	return m.Candidate, true
}

// Detect scans query for a whole-word, case-insensitive breed name. The
// first breed in vocabulary order that occurs anywhere in the text wins.
func (b *BreedMatcher) Detect(query string) (string, bool) {
	for i, re := range b.patterns {
		if re.MatchString(query) {
			return b.breeds[i], true
		}
	}
	return "", false
}

// Correct replaces a query that consists only of a misspelled breed name
// with the canonical name. Any other query is returned unchanged.
func (b *BreedMatcher) Correct(query string) string {
	words := vocabulary.Words(query)
	if len(words) == 0 || len(words) > b.maxWords {
		return query
	}
	if _, ok := b.Detect(query); ok {
		return query
	}
	if breed, ok := b.Match(strings.Join(words, " ")); ok {
		return breed
	}
	return query
}
