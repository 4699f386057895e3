// Package assistant runs a chat turn end to end: ethical filtering,
// conversation state tracking, prompt composition and the call to the
// language model.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/herdbot/internal/completion"
	"github.com/xaenox/herdbot/internal/conversation"
	"github.com/xaenox/herdbot/internal/ethics"
	"github.com/xaenox/herdbot/internal/matcher"
	"github.com/xaenox/herdbot/internal/models"
	"github.com/xaenox/herdbot/internal/prompt"
	"github.com/xaenox/herdbot/internal/storage"
	"github.com/xaenox/herdbot/internal/topics"
	"github.com/xaenox/herdbot/internal/vocabulary"
)

// FallbackMessage is sent when the language model could not answer.
const FallbackMessage = "Sorry, I couldn't process your request. Please try again."

const (
	DefaultTimeout = 30 * time.Second
	DefaultBreed   = "cattle"
	saveTimeout    = 5 * time.Second
)

type Config struct {
	// DefaultBreed is used until the session mentions a breed.
	DefaultBreed string
	// DefaultTopic is used until the session mentions a topic.
	DefaultTopic vocabulary.Topic
	// UpdateStateOnRefusal lets a refused message still change the
	// session's breed and topics.
	UpdateStateOnRefusal bool
	// Timeout bounds the call to the language model.
	Timeout time.Duration
}

// DefaultConfig returns the settings the bot ships with.
func DefaultConfig() Config {
	return Config{
		DefaultBreed:         DefaultBreed,
		DefaultTopic:         vocabulary.General,
		UpdateStateOnRefusal: true,
		Timeout:              DefaultTimeout,
	}
}

// Request is one incoming user message.
type Request struct {
	SessionID string
	UserID    int64
	Text      string
	// Locale is the user's language code, used to tell apart languages
	// written in the same script. May be empty.
	Locale string
}

type Assistant struct {
	filter    *ethics.Filter
	breeds    *matcher.BreedMatcher
	tracker   *conversation.Tracker
	composer  *prompt.Composer
	completer completion.Completer
	sessions  *conversation.Registry
	store     storage.Storage
	cfg       Config
	logger    *zap.Logger
}

// New wires the pipeline for vocab. store may be nil, in which case
// transcripts are not kept.
func New(vocab *vocabulary.Vocabulary, completer completion.Completer, sessions *conversation.Registry, store storage.Storage, cfg Config, logger *zap.Logger) *Assistant {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.DefaultBreed == "" {
		cfg.DefaultBreed = DefaultBreed
	}

	similarity := matcher.NewLevenshtein()
	breeds := matcher.NewBreedMatcher(vocab.Breeds(), matcher.WithSimilarityMatcher(similarity))

	return &Assistant{
		filter:    ethics.NewFilter(vocab.Disallowed()),
		breeds:    breeds,
		tracker:   conversation.NewTracker(breeds, topics.NewNormalizer(vocab)),
		composer:  prompt.NewComposer(topics.NewExtractors(vocab, similarity)),
		completer: completer,
		sessions:  sessions,
		store:     store,
		cfg:       cfg,
		logger:    logger,
	}
}

// Respond runs one turn against an explicitly passed state. The caller
// must not use state concurrently.
func (a *Assistant) Respond(ctx context.Context, state *conversation.State, query, locale string) Turn {
	turn := Turn{Query: query}
	turn.enter(Idle)

	turn.enter(Filtering)
	if keyword, bad := a.filter.Match(query); bad {
		if a.cfg.UpdateStateOnRefusal {
			a.updateState(query, state)
		}
		turn.enter(Refused)
		turn.Refused = true
		turn.Reply = ethics.RefusalMessage
		turn.State = state.Snapshot()
		a.logger.Info("Refused request", zap.String("keyword", keyword))
		return turn
	}

	turn.enter(StateUpdating)
	a.updateState(query, state)
	turn.State = state.Snapshot()

	turn.enter(PromptComposing)
	turn.Prompt = a.composer.Build(turn.State, query, locale, prompt.Defaults{
		Breed: a.cfg.DefaultBreed,
		Topic: a.cfg.DefaultTopic,
	})

	turn.enter(Delegating)
	reply, err := a.complete(ctx, turn.Prompt.Text)
	if err != nil {
		a.logger.Error("Failed to get completion",
			zap.Error(err),
			zap.String("breed", turn.Prompt.Breed),
			zap.Strings("topics", topics.Strings(turn.Prompt.Topics)))
		turn.Err = err
		turn.Reply = FallbackMessage
	} else {
		turn.Reply = reply
	}

	turn.enter(Done)
	return turn
}

func (a *Assistant) complete(ctx context.Context, text string) (reply string, err error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("completion panicked: %v", r)
		}
	}()

	return a.completer.Complete(ctx, text)
}

// updateState first lets a lone misspelled breed name stand for the breed
// itself, then applies the turn to state.
func (a *Assistant) updateState(query string, state *conversation.State) {
	a.tracker.Update(a.breeds.Correct(query), state)
}

// ProcessTurn is the entry point for the chat front-end. It never fails:
// errors are logged and turned into a user-safe reply.
func (a *Assistant) ProcessTurn(ctx context.Context, sessionID, userText string) string {
	turn := a.Handle(ctx, Request{SessionID: sessionID, Text: userText})
	return turn.Reply
}

// ProcessTurnWithLocale is ProcessTurn with the user's language code.
func (a *Assistant) ProcessTurnWithLocale(ctx context.Context, sessionID, userText, locale string) string {
	turn := a.Handle(ctx, Request{SessionID: sessionID, Text: userText, Locale: locale})
	return turn.Reply
}

// Handle runs req against its session and records the transcript. Turns of
// the same session run one at a time.
func (a *Assistant) Handle(ctx context.Context, req Request) (turn Turn) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Recovered from panic while processing turn",
				zap.Any("panic", r),
				zap.String("session_id", req.SessionID))
			turn = Turn{Query: req.Text, Reply: FallbackMessage, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	session := a.sessions.Get(req.SessionID)
	session.Do(func(s *conversation.State) {
		turn = a.Respond(ctx, s, req.Text, req.Locale)
	})

	a.saveTranscript(ctx, req, &turn)
	return turn
}

func (a *Assistant) saveTranscript(ctx context.Context, req Request, turn *Turn) {
	if a.store == nil {
		return
	}

	// the user may have left; the transcript is still worth keeping
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	msg := &models.Message{
		ID:        uuid.New().String(),
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Query:     req.Text,
		Response:  turn.Reply,
		Breed:     turn.State.Breed,
		Topics:    topics.Strings(turn.State.Topics),
		Language:  string(turn.Prompt.Language),
		Refused:   turn.Refused,
		CreatedAt: time.Now(),
	}
	if err := a.store.SaveMessage(ctx, msg); err != nil {
		a.logger.Error("Failed to save message",
			zap.Error(err),
			zap.String("message_id", msg.ID),
			zap.String("session_id", req.SessionID))
	}
}

// CloseSession drops the session's conversation state. Transcripts are kept.
func (a *Assistant) CloseSession(sessionID string) {
	a.sessions.Close(sessionID)
}

// ForgetSession drops the session state and deletes its transcript.
func (a *Assistant) ForgetSession(ctx context.Context, sessionID string) error {
	a.sessions.Close(sessionID)
	if a.store == nil {
		return nil
	}
	if err := a.store.DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}
	return nil
}

// State returns a copy of the session's current state.
func (a *Assistant) State(sessionID string) conversation.State {
	return a.sessions.Get(sessionID).Snapshot()
}

// History returns the newest transcript entries of a session.
func (a *Assistant) History(ctx context.Context, sessionID string, limit int) ([]*models.Message, error) {
	if a.store == nil {
		return nil, nil
	}
	return a.store.GetSessionMessages(ctx, sessionID, limit, 0)
}

// Breeds lists the breeds the assistant recognizes.
func (a *Assistant) Breeds() []string {
	return a.breeds.Breeds()
}

// SuggestBreed corrects a possibly misspelled breed name.
func (a *Assistant) SuggestBreed(name string) (string, bool) {
	return a.breeds.Match(name)
}
