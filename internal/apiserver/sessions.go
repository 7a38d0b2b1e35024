package apiserver

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// sessionTTL is how long an issued admin token stays valid.
const sessionTTL = 24 * time.Hour

// SessionStore is an in-memory store of issued admin bearer tokens.
type SessionStore struct {
	mu     sync.RWMutex
	issued map[string]time.Time
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{issued: make(map[string]time.Time)}
}

// Create issues a new opaque token.
// POST: Token is valid for sessionTTL
func (ss *SessionStore) Create() (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.issued[token] = time.Now()
	return token, nil
}

// Valid reports whether the token was issued and has not expired.
// PRE: token is non-empty
// POST: Expired tokens are evicted
func (ss *SessionStore) Valid(token string) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	issuedAt, ok := ss.issued[token]
	if !ok {
		return false
	}
	if time.Since(issuedAt) > sessionTTL {
		delete(ss.issued, token)
		return false
	}
	return true
}

// Revoke removes a token.
func (ss *SessionStore) Revoke(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.issued, token)
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
