// Package vocabulary holds the fixed breed, topic and keyword tables the
// assistant matches user text against. Tables are loaded once at startup,
// validated, and never mutated afterwards.
package vocabulary

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabulary []byte

// ErrInvalid is returned when a vocabulary file fails validation.
var ErrInvalid = errors.New("invalid vocabulary")

type Topic string

const (
	General  Topic = "general"
	Care     Topic = "care"
	Breeding Topic = "breeding"
	Disease  Topic = "disease"
)

// CanonicalTopics lists every canonical topic in prompt order.
var CanonicalTopics = []Topic{General, Care, Breeding, Disease}

func (t Topic) Valid() bool {
	switch t {
	case General, Care, Breeding, Disease:
		return true
	}
	return false
}

// ParseTopic reads a canonical topic name, ignoring case and surrounding
// whitespace. Synonyms are not accepted.
func ParseTopic(s string) (Topic, bool) {
	t := Topic(Fold(strings.TrimSpace(s)))
	return t, t.Valid()
}

func (t Topic) String() string {
	return string(t)
}

// SubtopicRule activates a subtopic when any of its keywords is found.
type SubtopicRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type file struct {
	Breeds     []string                  `yaml:"breeds"`
	Topics     map[string][]string       `yaml:"topics"`
	Subtopics  map[string][]SubtopicRule `yaml:"subtopics"`
	Disallowed []string                  `yaml:"disallowed"`
}

type Vocabulary struct {
	breeds     []string
	synonyms   map[string]Topic
	subtopics  map[Topic][]SubtopicRule
	disallowed []string
}

// Default returns the vocabulary compiled into the binary.
func Default() (*Vocabulary, error) {
	return Load(bytes.NewReader(defaultVocabulary))
}

// MustDefault is Default for package-level test fixtures.
func MustDefault() *Vocabulary {
	v, err := Default()
	if err != nil {
		panic(err)
	}
	return v
}

func LoadFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

func Load(r io.Reader) (*Vocabulary, error) {
	var raw file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode vocabulary: %w", err)
	}

	return build(raw)
}

func build(raw file) (*Vocabulary, error) {
	if len(raw.Breeds) == 0 {
		return nil, fmt.Errorf("%w: no breeds", ErrInvalid)
	}

	v := &Vocabulary{
		breeds:    make([]string, 0, len(raw.Breeds)),
		synonyms:  make(map[string]Topic),
		subtopics: make(map[Topic][]SubtopicRule, len(CanonicalTopics)),
	}

	seen := make(map[string]struct{}, len(raw.Breeds))
	for _, b := range raw.Breeds {
		b = strings.TrimSpace(b)
		if b == "" {
			return nil, fmt.Errorf("%w: empty breed name", ErrInvalid)
		}
		key := Fold(b)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate breed %q", ErrInvalid, b)
		}
		seen[key] = struct{}{}
		v.breeds = append(v.breeds, b)
	}

	for name, words := range raw.Topics {
		topic := Topic(Fold(name))
		if !topic.Valid() {
			return nil, fmt.Errorf("%w: unknown topic %q", ErrInvalid, name)
		}
		for _, w := range words {
			key := Fold(strings.TrimSpace(w))
			if key == "" {
				continue
			}
			if prev, ok := v.synonyms[key]; ok && prev != topic {
				return nil, fmt.Errorf("%w: synonym %q maps to both %s and %s", ErrInvalid, key, prev, topic)
			}
			v.synonyms[key] = topic
		}
	}

	for name, rules := range raw.Subtopics {
		topic := Topic(Fold(name))
		if !topic.Valid() {
			return nil, fmt.Errorf("%w: unknown subtopic table %q", ErrInvalid, name)
		}
		table := make([]SubtopicRule, 0, len(rules))
		for _, rule := range rules {
			if rule.Name == "" || len(rule.Keywords) == 0 {
				return nil, fmt.Errorf("%w: %s subtopic %q has no keywords", ErrInvalid, topic, rule.Name)
			}
			keywords := make([]string, 0, len(rule.Keywords))
			for _, k := range rule.Keywords {
				keywords = append(keywords, Fold(strings.TrimSpace(k)))
			}
			table = append(table, SubtopicRule{Name: rule.Name, Keywords: keywords})
		}
		v.subtopics[topic] = table
	}

	for _, topic := range CanonicalTopics {
		if len(v.subtopics[topic]) == 0 {
			return nil, fmt.Errorf("%w: missing subtopic table for %s", ErrInvalid, topic)
		}
	}

	for _, d := range raw.Disallowed {
		if d = Fold(strings.TrimSpace(d)); d != "" {
			v.disallowed = append(v.disallowed, d)
		}
	}

	return v, nil
}

// Breeds returns the breed names in vocabulary order.
func (v *Vocabulary) Breeds() []string {
	return append([]string(nil), v.breeds...)
}

// Topic looks up a lowercased surface form.
func (v *Vocabulary) Topic(word string) (Topic, bool) {
	t, ok := v.synonyms[word]
	return t, ok
}

// Subtopics returns the subtopic table for a canonical topic in table order.
func (v *Vocabulary) Subtopics(t Topic) []SubtopicRule {
	rules := v.subtopics[t]
	out := make([]SubtopicRule, len(rules))
	for i, r := range rules {
		out[i] = SubtopicRule{Name: r.Name, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

func (v *Vocabulary) Disallowed() []string {
	return append([]string(nil), v.disallowed...)
}
