// Package prompt turns the conversation state and the user's question into
// instructions for the language model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/xaenox/herdbot/internal/conversation"
	"github.com/xaenox/herdbot/internal/language"
	"github.com/xaenox/herdbot/internal/topics"
	"github.com/xaenox/herdbot/internal/vocabulary"
)

// Bundle is the prompt built for a single turn.
type Bundle struct {
	Breed        string
	Topics       []vocabulary.Topic
	Language     language.Language
	Instructions string
	Text         string
}

// Defaults fill in for state the session has not collected yet.
type Defaults struct {
	Breed string
	Topic vocabulary.Topic
}

type Composer struct {
	extractors *topics.Extractors
}

func NewComposer(extractors *topics.Extractors) *Composer {
	return &Composer{extractors: extractors}
}

// Compose builds the instruction blocks for breed and topics. Each topic
// contributes one block per subtopic found in query, or its full-topic
// block when none is found. A language block is appended when the query's
// language is recognized. Blocks are separated by a blank line.
func (c *Composer) Compose(breed string, ts []vocabulary.Topic, query string) string {
	return c.compose(breed, ts, query, language.Detect(query))
}

// ComposeWithLocale is Compose with the user's locale used to pick between
// languages sharing a script.
func (c *Composer) ComposeWithLocale(breed string, ts []vocabulary.Topic, query, locale string) string {
	return c.compose(breed, ts, query, language.DetectWithLocale(query, locale))
}

func (c *Composer) compose(breed string, ts []vocabulary.Topic, query string, lang language.Language) string {
	var blocks []string

	for _, topic := range effectiveTopics(ts) {
		subtopics := c.extractors.For(topic).Extract(query)
		if len(subtopics) == 0 {
			blocks = append(blocks, fullTemplate(topic, breed))
			continue
		}
		for _, sub := range subtopics {
			blocks = append(blocks, subtopicTemplate(topic, sub, breed))
		}
	}

	if lang != language.Unknown {
		blocks = append(blocks, fmt.Sprintf(languageTemplate, lang))
	}

	return strings.Join(blocks, "\n\n")
}

// Build composes the full prompt for a turn from a snapshot of the session
// state. The state breed wins over the default breed; the default topic is
// used only while the session has no topics.
func (c *Composer) Build(state conversation.State, query, locale string, d Defaults) Bundle {
	breed := d.Breed
	if state.HasBreed() {
		breed = state.Breed
	}

	ts := effectiveTopics(state.Topics)
	if len(ts) == 0 && d.Topic.Valid() {
		ts = []vocabulary.Topic{d.Topic}
	}

	lang := language.DetectWithLocale(query, locale)
	instructions := c.compose(breed, ts, query, lang)

	parts := []string{preamble}
	if instructions != "" {
		parts = append(parts, instructions)
	}
	parts = append(parts, fmt.Sprintf(questionTemplate, strings.TrimSpace(query)))

	return Bundle{
		Breed:        breed,
		Topics:       ts,
		Language:     lang,
		Instructions: instructions,
		Text:         strings.Join(parts, "\n\n"),
	}
}

// effectiveTopics drops non-canonical and repeated topics, keeping order.
func effectiveTopics(ts []vocabulary.Topic) []vocabulary.Topic {
	var out []vocabulary.Topic
	seen := make(map[vocabulary.Topic]struct{}, len(ts))
	for _, t := range ts {
		if !t.Valid() {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
