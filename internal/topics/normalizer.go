// Package topics maps free text onto the four canonical topics and refines
// each topic into subtopics by fuzzy keyword matching.
package topics

import (
	"strings"

	"github.com/xaenox/herdbot/internal/vocabulary"
)

type Normalizer struct {
	vocab *vocabulary.Vocabulary
}

func NewNormalizer(vocab *vocabulary.Vocabulary) *Normalizer {
	return &Normalizer{vocab: vocab}
}

// Normalize maps each word to its canonical topic. Unknown words are
// dropped; the result holds no duplicates and keeps first-seen order.
func (n *Normalizer) Normalize(words []string) []vocabulary.Topic {
	var topics []vocabulary.Topic
	seen := make(map[vocabulary.Topic]struct{})

	for _, w := range words {
		key := vocabulary.TrimWord(vocabulary.Fold(strings.TrimSpace(w)))
		if key == "" {
			continue
		}
		topic, ok := n.vocab.Topic(key)
		if !ok {
			continue
		}
		if _, dup := seen[topic]; dup {
			continue
		}
		seen[topic] = struct{}{}
		topics = append(topics, topic)
	}

	return topics
}

// NormalizeText splits text on whitespace and normalizes the words.
func (n *Normalizer) NormalizeText(text string) []vocabulary.Topic {
	return n.Normalize(strings.Fields(text))
}

// Strings converts topics back to plain words.
func Strings(topics []vocabulary.Topic) []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = string(t)
	}
	return out
}
