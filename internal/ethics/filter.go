// Package ethics rejects requests about meat and slaughter before they
// reach the language model.
package ethics

import (
	"strings"

	"github.com/xaenox/herdbot/internal/vocabulary"
)

// RefusalMessage is returned to the user instead of a model answer.
const RefusalMessage = "I'm sorry, I can only help with the care, breeding, health and welfare of cattle. I can't assist with requests about meat, slaughter or eating animals."

type Filter struct {
	keywords []string
}

func NewFilter(keywords []string) *Filter {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = vocabulary.Fold(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return &Filter{keywords: lowered}
}

// Match returns the first disallowed keyword contained in query.
func (f *Filter) Match(query string) (string, bool) {
	q := vocabulary.Fold(query)
	for _, k := range f.keywords {
		if strings.Contains(q, k) {
			return k, true
		}
	}
	return "", false
}

func (f *Filter) IsProblematic(query string) bool {
	_, ok := f.Match(query)
	return ok
}
