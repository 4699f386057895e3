package ethics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xaenox/herdbot/internal/vocabulary"
)

func TestIsProblematic(t *testing.T) {
	f := NewFilter(vocabulary.MustDefault().Disallowed())

	tests := []struct {
		query string
		want  bool
	}{
		{"how to cook beef curry", true},
		{"Is Holstein good for eating", true},
		{"SLAUGHTER age of bulls", true},
		// substring match: "treating" contains "eating"
		{"treating mastitis", true},
		{"how is milk yield for Gir", false},
		{"what about feeding", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, f.IsProblematic(tt.query))
		})
	}
}

func TestMatchReportsFirstKeyword(t *testing.T) {
	f := NewFilter([]string{"Meat", " beef ", ""})

	k, ok := f.Match("beef or meat?")
	assert.True(t, ok)
	assert.Equal(t, "meat", k)

	_, ok = f.Match("grass")
	assert.False(t, ok)
}
