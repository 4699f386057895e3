// Package matcher provides approximate string matching against small fixed
// vocabularies: breed names and subtopic keywords.
package matcher

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/xaenox/herdbot/internal/vocabulary"
)

// DefaultDistance is the search window, in runes, applied to candidates.
const DefaultDistance = 100

// epsilon absorbs float error in thresholds such as 1-0.8.
const epsilon = 1e-9

// Match is the best candidate found for a query. Score is a normalized
// distance: 0 for identical strings, 1 for nothing in common.
type Match struct {
	Candidate string
	Index     int
	Score     float64
}

type SimilarityMatcher interface {
	// BestMatch returns the lowest-scoring candidate whose score is within
	// threshold. Ties go to the earliest candidate.
	BestMatch(query string, candidates []string, threshold float64) (Match, bool)
}

// Levenshtein scores candidates by edit distance divided by the longer
// rune length of the two strings. Comparison is case-insensitive.
type Levenshtein struct {
	// Distance caps how many runes of a candidate take part in the
	// comparison. Zero means DefaultDistance.
	Distance int
}

func NewLevenshtein() *Levenshtein {
	return &Levenshtein{Distance: DefaultDistance}
}

func (l *Levenshtein) BestMatch(query string, candidates []string, threshold float64) (Match, bool) {
	q := vocabulary.Fold(query)
	if q == "" || threshold < 0 {
		return Match{}, false
	}

	best := Match{Index: -1, Score: 2}
	for i, c := range candidates {
		score := l.Score(q, c)
		if score < best.Score {
			best = Match{Candidate: c, Index: i, Score: score}
		}
	}

	if best.Index < 0 || best.Score > threshold+epsilon {
		return Match{}, false
	}
	return best, true
}

// Score returns the normalized distance between a and b in [0, 1].
func (l *Levenshtein) Score(a, b string) float64 {
	a = vocabulary.Fold(a)
	b = l.window(vocabulary.Fold(b))

	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 0
	}

	return float64(levenshtein.ComputeDistance(a, b)) / float64(longest)
}

func (l *Levenshtein) window(s string) string {
	limit := l.Distance
	if limit <= 0 {
		limit = DefaultDistance
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

// FuzzyMatch reports whether word approximately matches any keyword with at
// least thresholdPercent similarity.
func FuzzyMatch(m SimilarityMatcher, word string, keywords []string, thresholdPercent int) bool {
	_, ok := m.BestMatch(word, keywords, 1-float64(thresholdPercent)/100)
	return ok
}
