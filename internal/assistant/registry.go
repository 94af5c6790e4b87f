package assistant

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or malformed session ids
var ErrSessionNotFound = errors.New("session not found")

// Registry keeps the open sessions of the HTTP API
type Registry struct {
	newSession func() *Session

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewRegistry creates a registry whose sessions are built by newSession
func NewRegistry(newSession func() *Session) *Registry {
	return &Registry{
		newSession: newSession,
		sessions:   make(map[uuid.UUID]*Session),
	}
}

// Create opens a new session
func (r *Registry) Create() *Session {
	s := r.newSession()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Delete closes a session
func (r *Registry) Delete(id string) error {
	s, err := r.Get(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, s.ID)
	return nil
}

// Len returns the number of open sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
