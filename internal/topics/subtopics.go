package topics

import (
	"github.com/xaenox/herdbot/internal/matcher"
	"github.com/xaenox/herdbot/internal/vocabulary"
)

// SubtopicThreshold is the minimum similarity, in percent, for a query word
// to count as a subtopic keyword.
const SubtopicThreshold = 80

// Extractor finds the subtopics of a single canonical topic in a query.
type Extractor struct {
	topic   vocabulary.Topic
	rules   []vocabulary.SubtopicRule
	matcher matcher.SimilarityMatcher
}

func NewExtractor(topic vocabulary.Topic, rules []vocabulary.SubtopicRule, m matcher.SimilarityMatcher) *Extractor {
	return &Extractor{topic: topic, rules: rules, matcher: m}
}

func (e *Extractor) Topic() vocabulary.Topic {
	return e.topic
}

// Extract returns the activated subtopics in table order. A subtopic is
// activated by the first query word that fuzzily matches one of its keywords.
func (e *Extractor) Extract(query string) []string {
	words := vocabulary.Words(query)
	var found []string

	for _, rule := range e.rules {
		for _, w := range words {
			if matcher.FuzzyMatch(e.matcher, w, rule.Keywords, SubtopicThreshold) {
				found = append(found, rule.Name)
				break
			}
		}
	}

	return found
}

// Extractors holds one Extractor per canonical topic.
type Extractors struct {
	byTopic map[vocabulary.Topic]*Extractor
}

func NewExtractors(vocab *vocabulary.Vocabulary, m matcher.SimilarityMatcher) *Extractors {
	e := &Extractors{byTopic: make(map[vocabulary.Topic]*Extractor, len(vocabulary.CanonicalTopics))}
	for _, topic := range vocabulary.CanonicalTopics {
		e.byTopic[topic] = NewExtractor(topic, vocab.Subtopics(topic), m)
	}
	return e
}

// For returns the extractor for topic, or nil for a non-canonical topic.
func (e *Extractors) For(topic vocabulary.Topic) *Extractor {
	return e.byTopic[topic]
}

func (e *Extractors) General() *Extractor  { return e.byTopic[vocabulary.General] }
func (e *Extractors) Care() *Extractor     { return e.byTopic[vocabulary.Care] }
func (e *Extractors) Breeding() *Extractor { return e.byTopic[vocabulary.Breeding] }
func (e *Extractors) Disease() *Extractor  { return e.byTopic[vocabulary.Disease] }
