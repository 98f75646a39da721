package session

import (
	"net/http"

	core "github.com/lenteapp/lente/internal/session"
)

// RequestStore implements core.TokenStore on top of the cookie session of a
// single request. It must be created per-request since token writes go out
// as Set-Cookie headers on this request's response.
type RequestStore struct {
	manager *Manager
	request *http.Request
	writer  http.ResponseWriter
}

// NewRequestStore creates a cookie-backed token store bound to one request
func NewRequestStore(manager *Manager, r *http.Request, w http.ResponseWriter) *RequestStore {
	return &RequestStore{
		manager: manager,
		request: r,
		writer:  w,
	}
}

// AccessToken returns the access token from the cookie session
func (s *RequestStore) AccessToken() (string, error) {
	token, err := s.manager.AccessToken(s.request)
	if err != nil {
		return "", core.ErrNoToken
	}
	return token, nil
}

// RefreshToken returns the refresh token from the cookie session
func (s *RequestStore) RefreshToken() (string, error) {
	token, err := s.manager.RefreshToken(s.request)
	if err != nil {
		return "", core.ErrNoRefreshToken
	}
	return token, nil
}

// SetTokens stores a full token pair in the cookie session (login)
func (s *RequestStore) SetTokens(access, refresh string) error {
	return s.manager.SetTokens(s.request, s.writer, access, refresh)
}

// SetAccessToken rotates only the access token (refresh)
func (s *RequestStore) SetAccessToken(access string) error {
	return s.manager.SetAccessToken(s.request, s.writer, access)
}

// Clear deletes the cookie session (logout)
func (s *RequestStore) Clear() error {
	return s.manager.Clear(s.request, s.writer)
}
