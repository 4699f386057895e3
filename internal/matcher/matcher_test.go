package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaenox/herdbot/internal/vocabulary"
)

func newBreedMatcher(t *testing.T) *BreedMatcher {
	t.Helper()
	return NewBreedMatcher(vocabulary.MustDefault().Breeds())
}

func TestLevenshteinBestMatch(t *testing.T) {
	l := NewLevenshtein()

	m, ok := l.BestMatch("SAHIWALL", []string{"Gir", "Sahiwal"}, 0.3)
	require.True(t, ok)
	assert.Equal(t, "Sahiwal", m.Candidate)
	assert.Equal(t, 1, m.Index)
	assert.InDelta(t, 0.125, m.Score, 1e-9)

	_, ok = l.BestMatch("tractor", []string{"Gir", "Sahiwal"}, 0.3)
	assert.False(t, ok)

	_, ok = l.BestMatch("", []string{"Gir"}, 1)
	assert.False(t, ok)

	_, ok = l.BestMatch("gir", nil, 1)
	assert.False(t, ok)
}

func TestLevenshteinTieGoesToFirstCandidate(t *testing.T) {
	m, ok := NewLevenshtein().BestMatch("bat", []string{"cat", "hat"}, 0.5)
	require.True(t, ok)
	assert.Equal(t, "cat", m.Candidate)
	assert.Equal(t, 0, m.Index)
}

func TestLevenshteinThresholdMonotonic(t *testing.T) {
	l := NewLevenshtein()
	candidates := vocabulary.MustDefault().Breeds()
	queries := []string{"gir", "girr", "sahiwl", "holstien", "jersy", "murra", "cow", "deon", "brown swis"}

	for _, q := range queries {
		_, strict := l.BestMatch(q, candidates, 0.1)
		_, loose := l.BestMatch(q, candidates, 0.3)
		if strict {
			assert.True(t, loose, q)
		}
	}
}

func TestLevenshteinDistanceWindow(t *testing.T) {
	l := &Levenshtein{Distance: 3}
	assert.Equal(t, 0.0, l.Score("abc", "abcdef"))
	assert.Greater(t, NewLevenshtein().Score("abc", "abcdef"), 0.0)
}

func TestFuzzyMatch(t *testing.T) {
	l := NewLevenshtein()
	keywords := []string{"feeding", "feed", "fodder"}

	tests := []struct {
		word string
		want bool
	}{
		{"feeding", true},
		{"feding", true},
		{"fodders", true},
		{"about", false},
		{"breeding", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, FuzzyMatch(l, tt.word, keywords, 80))
		})
	}
}

func TestFuzzyMatchExactThresholdBoundary(t *testing.T) {
	// one edit in five runes is exactly 80% similar
	assert.True(t, FuzzyMatch(NewLevenshtein(), "heatz", []string{"heats"}, 80))
}

func TestBreedMatch(t *testing.T) {
	b := newBreedMatcher(t)

	tests := []struct {
		word  string
		want  string
		found bool
	}{
		{"Gir", "Gir", true},
		{"sahiwall", "Sahiwal", true},
		{"holstien", "Holstein", true},
		{"jersy", "Jersey", true},
		{"red  sindi", "Red Sindhi", true},
		{"tractor", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			got, ok := b.Match(tt.word)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBreedDetect(t *testing.T) {
	b := newBreedMatcher(t)

	tests := []struct {
		name  string
		query string
		want  string
		found bool
	}{
		{"simple", "Tell me about Gir origin", "Gir", true},
		{"case insensitive", "how much milk does a SAHIWAL give", "Sahiwal", true},
		{"possessive", "Gir's horns", "Gir", true},
		{"multi word", "is red   sindhi heat tolerant", "Red Sindhi", true},
		{"substring is not a word", "a girl and her cow", "", false},
		{"fuzzy is not exact", "tell me about sahiwall", "", false},
		{"vocabulary order wins", "compare Jersey and Gir", "Gir", true},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := b.Detect(tt.query)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBreedCorrect(t *testing.T) {
	b := newBreedMatcher(t)

	assert.Equal(t, "Sahiwal", b.Correct("sahiwall"))
	assert.Equal(t, "Red Sindhi", b.Correct("red sindi?"))
	assert.Equal(t, "Gir", b.Correct("Gir"), "exact names are left alone")
	assert.Equal(t, "what about feeding", b.Correct("what about feeding"))
	assert.Equal(t, "hello", b.Correct("hello"))
	assert.Equal(t, "", b.Correct(""))
}

func TestBreedMatcherCustomThreshold(t *testing.T) {
	b := NewBreedMatcher([]string{"Sahiwal"}, WithThreshold(0.05))
	_, ok := b.Match("sahiwall")
	assert.False(t, ok)
}

func TestBreedCorrectShortWordsNearABreed(t *testing.T) {
	b := newBreedMatcher(t)
	// one edit in four runes is within the breed threshold, so a lone
	// "girl" is read as Gir
	assert.Equal(t, "Gir", b.Correct("girl"))
	assert.Equal(t, "girl and cow", b.Correct("girl and cow"))
}
