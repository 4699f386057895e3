package storage

import (
	"context"
	"errors"

	"github.com/xaenox/herdbot/internal/models"
)

var ErrNotFound = errors.New("not found")

// Storage persists chat transcripts. Conversation state itself is never
// stored; it lives only for the lifetime of a session.
type Storage interface {
	SaveMessage(ctx context.Context, msg *models.Message) error
	// GetSessionMessages returns the newest messages first.
	GetSessionMessages(ctx context.Context, sessionID string, limit, offset int) ([]*models.Message, error)
	DeleteSession(ctx context.Context, sessionID string) error
	Close() error
}
