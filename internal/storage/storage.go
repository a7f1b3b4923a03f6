// Package storage keeps catalog sessions between requests. The memory store
// serves a single process; RedisStore shares sessions between replicas.
package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/bookcatalog/internal/models"
)

// ErrNotFound is returned when no session exists for an id.
var ErrNotFound = errors.New("session not found")

// Store gets and sets sessions by id. Returned sessions are copies: changes
// are only visible to later requests after Set.
type Store interface {
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Set(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, sessionID string) error
}

type SessionStore struct {
	sessions map[string]*models.Session
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.Session),
	}
}

func (s *SessionStore) Get(_ context.Context, sessionID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, ErrNotFound
	}
	return session.Clone(), nil
}

func (s *SessionStore) Set(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := session.Clone()
	c.UpdatedAt = time.Now()
	s.sessions[session.ID] = c
	return nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
