// Package conversation tracks the breed and topics a chat session is about.
package conversation

import (
	"github.com/xaenox/herdbot/internal/matcher"
	"github.com/xaenox/herdbot/internal/topics"
	"github.com/xaenox/herdbot/internal/vocabulary"
)

// State is the sticky per-session context. The zero value is an empty
// session. Breed is only ever overwritten, never cleared, and Topics only
// grows.
type State struct {
	Breed  string
	Topics []vocabulary.Topic
}

func (s State) HasBreed() bool {
	return s.Breed != ""
}

func (s State) HasTopic(t vocabulary.Topic) bool {
	for _, have := range s.Topics {
		if have == t {
			return true
		}
	}
	return false
}

// Snapshot returns a copy that later updates do not affect.
func (s State) Snapshot() State {
	return State{Breed: s.Breed, Topics: append([]vocabulary.Topic(nil), s.Topics...)}
}

func (s *State) addTopics(ts []vocabulary.Topic) {
	for _, t := range ts {
		if t.Valid() && !s.HasTopic(t) {
			s.Topics = append(s.Topics, t)
		}
	}
}

// Tracker applies one user turn to a State.
type Tracker struct {
	breeds     *matcher.BreedMatcher
	normalizer *topics.Normalizer
}

func NewTracker(breeds *matcher.BreedMatcher, normalizer *topics.Normalizer) *Tracker {
	return &Tracker{breeds: breeds, normalizer: normalizer}
}

// Update overwrites the breed when query names one exactly and adds any
// newly mentioned topics. A query matching nothing leaves s untouched.
func (t *Tracker) Update(query string, s *State) {
	if breed, ok := t.breeds.Detect(query); ok {
		s.Breed = breed
	}
	s.addTopics(t.normalizer.NormalizeText(query))
}
