package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
)

// Session identifies a signed-in user. Sessions live until explicit logout
// or process restart; there is no timer-based expiry.
type Session struct {
	UserID uint
	Role   string
}

// SessionStore issues and resolves opaque bearer tokens. The in-memory
// implementation below is the default; the interface leaves room for an
// external key-value store without touching handlers.
type SessionStore interface {
	Issue(userID uint, role string) (string, error)
	Resolve(token string) (Session, bool)
	Revoke(token string)
}

type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		sessions: make(map[string]Session),
	}
}

func (s *memorySessionStore) Issue(userID uint, role string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.sessions[token] = Session{UserID: userID, Role: role}
	s.mu.Unlock()

	return token, nil
}

func (s *memorySessionStore) Resolve(token string) (Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	return sess, ok
}

// Revoke is idempotent: revoking an unknown token is not an error.
func (s *memorySessionStore) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
