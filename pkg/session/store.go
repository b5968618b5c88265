package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/geom"
	"github.com/matzehuels/collage/pkg/placement"
	"github.com/matzehuels/collage/pkg/search"
)

// Store defaults.
const (
	DefaultTTL       = 2 * time.Hour
	DefaultStoreSize = 1024
)

// Session is one browsing session owned by a server. Its controller is only
// reached through Do, which serializes events.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	mu       sync.Mutex
	runner   *Runner
	viewport geom.Size
}

// New creates a session with a random id. newController receives the
// session's viewport, which reports the size last given to Resize.
func New(newController func(vp placement.Viewport) *Controller, s search.Searcher, size geom.Size) *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		viewport:  size,
	}
	c := newController(placement.ViewportFunc(sess.measure))
	sess.runner = NewRunner(c, s, nil)
	return sess
}

// measure is called by the controller while Do holds the lock.
func (s *Session) measure() (geom.Size, bool) {
	return placement.Fixed(s.viewport).Size()
}

// Do runs fn with exclusive access to the session's runner.
func (s *Session) Do(fn func(r *Runner) State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.runner)
}

// Resize records a new viewport size and re-lays out the current photos.
// It is a no-op when the size is unchanged.
func (s *Session) Resize(ctx context.Context, size geom.Size) State {
	return s.Do(func(r *Runner) State {
		if size == s.viewport {
			return r.Controller.State()
		}
		s.viewport = size
		return r.Dispatch(ctx, ViewportChanged{})
	})
}

// State returns a snapshot.
func (s *Session) State() State {
	return s.Do(func(r *Runner) State { return r.Controller.State() })
}

// Store keeps sessions by id.
type Store interface {
	// Get returns the session or an error with code SESSION_NOT_FOUND.
	Get(ctx context.Context, id string) (*Session, error)
	Set(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	Len() int
}

// MemoryStore is an in-process Store that evicts the least recently used
// session once full. A session expires TTL after it was last Set, so
// callers Set it again on every use.
type MemoryStore struct {
	sessions *expirable.LRU[string, *Session]
}

// NewMemoryStore creates a store. Non-positive arguments use DefaultStoreSize
// and DefaultTTL.
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = DefaultStoreSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{sessions: expirable.NewLRU[string, *Session](size, nil, ttl)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s, ok := m.sessions.Get(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	return s, nil
}

func (m *MemoryStore) Set(_ context.Context, s *Session) error {
	m.sessions.Add(s.ID, s)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.sessions.Remove(id)
	return nil
}

func (m *MemoryStore) Len() int { return m.sessions.Len() }

var _ Store = (*MemoryStore)(nil)
