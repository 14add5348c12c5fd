package session

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("session not found")

// InMemoryRepo is a thread-safe in-memory implementation of Repo. Sessions
// live only as long as the process, which is all this application stores.
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewInMemoryRepo creates a new in-memory session repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]Session),
	}
}

// Upsert creates or updates a session
func (r *InMemoryRepo) Upsert(sessionID string, session Session) error {
	if sessionID == "" {
		return errors.New("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Copy pointer fields so callers cannot mutate stored state afterwards
	r.sessions[sessionID] = copySession(session)
	return nil
}

// Get retrieves a session by ID
func (r *InMemoryRepo) Get(sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, errors.New("sessionID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return Session{}, ErrNotFound
	}
	return copySession(session), nil
}

// Delete removes a session
func (r *InMemoryRepo) Delete(sessionID string) error {
	if sessionID == "" {
		return errors.New("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

func copySession(s Session) Session {
	out := s
	if s.Consent != nil {
		consent := *s.Consent
		out.Consent = &consent
	}
	if s.Creds != nil {
		creds := *s.Creds
		out.Creds = &creds
	}
	return out
}
