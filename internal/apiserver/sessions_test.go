package apiserver

import (
	"testing"
	"time"
)

func TestSessionCreateAndValidate(t *testing.T) {
	ss := NewSessionStore()
	token, err := ss.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(token) != 64 {
		t.Fatalf("token length = %d; want 64 hex chars", len(token))
	}
	if !ss.Valid(token) {
		t.Fatal("freshly issued token should be valid")
	}
}

func TestSessionUnknownToken(t *testing.T) {
	ss := NewSessionStore()
	if ss.Valid("never-issued") {
		t.Fatal("unknown token must not validate")
	}
}

func TestSessionRevoke(t *testing.T) {
	ss := NewSessionStore()
	token, err := ss.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	ss.Revoke(token)
	if ss.Valid(token) {
		t.Fatal("revoked token must not validate")
	}
}

func TestSessionExpiryEvicts(t *testing.T) {
	ss := NewSessionStore()
	token, err := ss.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Backdate the issue time past the TTL.
	ss.mu.Lock()
	ss.issued[token] = time.Now().Add(-sessionTTL - time.Minute)
	ss.mu.Unlock()

	if ss.Valid(token) {
		t.Fatal("expired token must not validate")
	}
	ss.mu.RLock()
	_, still := ss.issued[token]
	ss.mu.RUnlock()
	if still {
		t.Fatal("expired token should be evicted")
	}
}

func TestTokensAreUnique(t *testing.T) {
	ss := NewSessionStore()
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		token, err := ss.Create()
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if seen[token] {
			t.Fatal("duplicate token issued")
		}
		seen[token] = true
	}
}
