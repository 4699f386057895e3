package conversation

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// DefaultSessionTTL is how long an idle session is kept in memory.
const DefaultSessionTTL = 24 * time.Hour

// Session owns the State of one chat. Turns of the same session are
// serialized through Do.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu    sync.Mutex
	state State
}

// Do runs fn with exclusive access to the session state.
func (s *Session) Do(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot()
}

// Registry keeps in-memory sessions keyed by session id. Sessions are
// dropped after ttl without a turn, or when closed.
type Registry struct {
	mu     sync.Mutex
	cache  *cache.Cache
	logger *zap.Logger
}

func NewRegistry(ttl time.Duration, logger *zap.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	// purge expired sessions every tenth of the ttl
	c := cache.New(ttl, ttl/10)
	c.OnEvicted(func(id string, _ interface{}) {
		logger.Debug("Session closed", zap.String("session_id", id))
	})

	return &Registry{
		cache:  c,
		logger: logger,
	}
}

// Get returns the session for id, creating an empty one on first use.
// Every call refreshes the session's expiry.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if x, found := r.cache.Get(id); found {
		s := x.(*Session)
		r.cache.SetDefault(id, s)
		return s
	}

	s := &Session{ID: id, CreatedAt: time.Now()}
	r.cache.SetDefault(id, s)
	r.logger.Debug("Session created", zap.String("session_id", id))
	return s
}

// Close discards the session and its state.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache.Delete(id)
}

func (r *Registry) Len() int {
	return r.cache.ItemCount()
}
