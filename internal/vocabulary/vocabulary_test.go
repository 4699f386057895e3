package vocabulary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	v, err := Default()
	require.NoError(t, err)

	breeds := v.Breeds()
	assert.Len(t, breeds, 21)
	assert.Equal(t, "Gir", breeds[0])
	assert.Contains(t, breeds, "Holstein")

	topic, ok := v.Topic("feeding")
	require.True(t, ok)
	assert.Equal(t, Care, topic)

	_, ok = v.Topic("tell")
	assert.False(t, ok)

	for _, topic := range CanonicalTopics {
		rules := v.Subtopics(topic)
		assert.GreaterOrEqual(t, len(rules), 3, topic)
		assert.LessOrEqual(t, len(rules), 4, topic)
	}

	assert.Contains(t, v.Disallowed(), "beef")
}

func TestAccessorsReturnCopies(t *testing.T) {
	v := MustDefault()

	breeds := v.Breeds()
	breeds[0] = "Changed"
	assert.Equal(t, "Gir", v.Breeds()[0])

	rules := v.Subtopics(General)
	rules[0].Keywords[0] = "changed"
	assert.NotEqual(t, "changed", v.Subtopics(General)[0].Keywords[0])
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "no breeds",
			yaml: `
topics: {general: [about]}
`,
		},
		{
			name: "unknown topic",
			yaml: `
breeds: [Gir]
topics: {cooking: [recipe]}
`,
		},
		{
			name: "duplicate breed",
			yaml: `
breeds: [Gir, gir]
`,
		},
		{
			name: "synonym mapped twice",
			yaml: `
breeds: [Gir]
topics:
  general: [about]
  care: [about]
`,
		},
		{
			name: "missing subtopic table",
			yaml: `
breeds: [Gir]
topics: {general: [about]}
subtopics:
  general:
    - name: origin
      keywords: [origin]
`,
		},
		{
			name: "empty keyword list",
			yaml: `
breeds: [Gir]
subtopics:
  general:
    - name: origin
      keywords: []
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("breeds: [Gir]\ncolours: [red]\n"))
	require.Error(t, err)
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"what", "about", "feeding"}, Words("  What about FEEDING?  "))
	assert.Equal(t, []string{"gir's", "origin"}, Words("Gir's origin..."))
	assert.Empty(t, Words(" ?! "))
	assert.Equal(t, []string{"यह", "गाय"}, Words("यह गाय।"))
}

func TestParseTopic(t *testing.T) {
	tests := []struct {
		in    string
		want  Topic
		valid bool
	}{
		{"general", General, true},
		{"General", General, true},
		{" DISEASE ", Disease, true},
		{"feeding", Topic("feeding"), false},
		{"", Topic(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTopic(tt.in)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
