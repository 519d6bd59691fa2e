package store

import (
	"context"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/lyrebird/internal/session"
)

// memoryStore keeps sessions in a map guarded by a RWMutex. It stores and
// returns deep copies, so a caller can never mutate a record it has not
// published through Update.
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: make(map[string]*session.Session)}
}

func (s *memoryStore) Create(ctx context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID]; exists {
		return ErrExists
	}

	now := time.Now()
	sess.CreatedAt = now
	sess.UpdatedAt = now
	sess.Version = 1

	s.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s *memoryStore) Get(ctx context.Context, id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, exists := s.sessions[id]
	if !exists {
		return nil, ErrNotFound
	}
	return stored.Clone(), nil
}

func (s *memoryStore) Update(ctx context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.sessions[sess.ID]
	if !exists {
		return ErrNotFound
	}
	if stored.Version != sess.Version {
		return ErrVersionConflict
	}

	sess.Version++
	sess.UpdatedAt = time.Now()

	s.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *memoryStore) Count(ctx context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active, terminated int
	for _, sess := range s.sessions {
		if sess.Status == session.StatusTerminated {
			terminated++
		} else {
			active++
		}
	}
	return active, terminated, nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	return nil
}
