package assistant

import (
	"github.com/xaenox/herdbot/internal/conversation"
	"github.com/xaenox/herdbot/internal/prompt"
)

// Phase is a step of the per-turn state machine:
//
//	Idle -> Filtering -> Refused
//	Idle -> Filtering -> StateUpdating -> PromptComposing -> Delegating -> Done
type Phase int

const (
	Idle Phase = iota
	Filtering
	Refused
	StateUpdating
	PromptComposing
	Delegating
	Done
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Filtering:
		return "filtering"
	case Refused:
		return "refused"
	case StateUpdating:
		return "state_updating"
	case PromptComposing:
		return "prompt_composing"
	case Delegating:
		return "delegating"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Terminal reports whether no phase can follow p.
func (p Phase) Terminal() bool {
	return p == Refused || p == Done
}

// Turn is the outcome of one user message. A Turn is created fresh for
// every message; only the conversation state outlives it.
type Turn struct {
	Query   string
	Reply   string
	Refused bool
	// Err is the delegated call failure, if any. Reply already holds the
	// fallback message when Err is set.
	Err    error
	Prompt prompt.Bundle
	State  conversation.State

	phases []Phase
}

// Phases lists the phases the turn went through, in order.
func (t *Turn) Phases() []Phase {
	return append([]Phase(nil), t.phases...)
}

// Phase returns the phase the turn ended in.
func (t *Turn) Phase() Phase {
	if len(t.phases) == 0 {
		return Idle
	}
	return t.phases[len(t.phases)-1]
}

func (t *Turn) enter(p Phase) {
	if len(t.phases) > 0 {
		if cur := t.phases[len(t.phases)-1]; cur.Terminal() || p <= cur {
			panic("assistant: invalid phase transition " + cur.String() + " -> " + p.String())
		}
	}
	t.phases = append(t.phases, p)
}
