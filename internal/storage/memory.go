package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xaenox/herdbot/internal/models"
)

type MemoryStorage struct {
	mu       sync.RWMutex
	messages map[string][]*models.Message
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		messages: make(map[string][]*models.Message),
	}
}

func (s *MemoryStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	stored := *msg
	stored.Topics = append([]string(nil), msg.Topics...)
	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], &stored)
	return nil
}

func (s *MemoryStorage) GetSessionMessages(ctx context.Context, sessionID string, limit, offset int) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.messages[sessionID]
	all := make([]*models.Message, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		all = append(all, stored[i])
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []*models.Message{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}

	out := make([]*models.Message, len(all))
	for i, m := range all {
		c := *m
		out[i] = &c
	}
	return out, nil
}

func (s *MemoryStorage) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.messages[sessionID]; !exists {
		return ErrNotFound
	}
	delete(s.messages, sessionID)
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
