// Package session owns the client-side session state: durable token
// storage, the observable authentication flag, and the manager that runs
// login, logout, auth check and token refresh against the backend.
package session

import (
	"errors"
	"sync"
)

var (
	// ErrNoToken is returned when no access token is stored
	ErrNoToken = errors.New("no access token stored")

	// ErrNoRefreshToken is returned when no refresh token is stored
	ErrNoRefreshToken = errors.New("no refresh token stored")
)

// TokenStore persists the access/refresh token pair. Tokens are opaque;
// implementations never inspect them. Absence of a token is reported as
// ErrNoToken / ErrNoRefreshToken rather than an empty string, so callers
// can tell "no session" from a stored empty value going stale.
//
// Implementations must be read-after-write consistent: a Set is visible
// to every subsequent Get.
type TokenStore interface {
	// AccessToken returns the stored access token
	AccessToken() (string, error)

	// RefreshToken returns the stored refresh token
	RefreshToken() (string, error)

	// SetTokens stores a full credential pair (login)
	SetTokens(access, refresh string) error

	// SetAccessToken overwrites only the access token (refresh)
	SetAccessToken(access string) error

	// Clear removes both tokens (logout)
	Clear() error
}

// MemoryStore is an in-process TokenStore. It backs tests and any caller
// that doesn't need persistence across restarts; the CLI and web binaries
// plug in their file- and cookie-backed stores instead.
type MemoryStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AccessToken returns the stored access token, or ErrNoToken.
func (s *MemoryStore) AccessToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.access == "" {
		return "", ErrNoToken
	}
	return s.access, nil
}

// RefreshToken returns the stored refresh token, or ErrNoRefreshToken.
func (s *MemoryStore) RefreshToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.refresh == "" {
		return "", ErrNoRefreshToken
	}
	return s.refresh, nil
}

// SetTokens stores both tokens.
func (s *MemoryStore) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
	return nil
}

// SetAccessToken overwrites the access token, leaving the refresh token alone.
func (s *MemoryStore) SetAccessToken(access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	return nil
}

// Clear removes both tokens.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	return nil
}
