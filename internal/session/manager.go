package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/lenteapp/lente/internal/api"
)

// CheckResult is the outcome of an authentication check. Failures are
// normalized into Authenticated=false with the cause in Err; the check
// itself never fails from the caller's point of view.
type CheckResult struct {
	Authenticated bool
	Err           error
}

// Manager owns the session lifecycle: it is the sole writer of the
// AuthState and the only component that mutates the TokenStore.
//
// Its API client routes every call through an api.AuthTransport wired back
// to the manager, so any request hitting a 401 gets exactly one transparent
// refresh-and-retry before the failure surfaces.
type Manager struct {
	store TokenStore
	state *AuthState
	api   *api.Client
	log   *slog.Logger

	// Serializes refreshes so a burst of 401s rotates the token once.
	refreshMu sync.Mutex
}

// NewManager wires a session manager for the backend at baseURL. base is the
// underlying HTTP transport; pass nil for http.DefaultTransport.
func NewManager(baseURL string, store TokenStore, state *AuthState, base http.RoundTripper, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		store: store,
		state: state,
		log:   logger.With(slog.String("component", "session")),
	}

	transport := &api.AuthTransport{
		Base:    base,
		Tokens:  m,
		Refresh: m.refreshStale,
		Log:     m.log,
	}
	m.api = api.NewClient(baseURL, &http.Client{Transport: transport})

	return m
}

// API returns the authenticated API client. Calls made through it carry the
// stored access token and participate in the 401 refresh-and-retry cycle.
func (m *Manager) API() *api.Client {
	return m.api
}

// State returns the authentication state broadcaster. Callers may observe
// it but must not assume write access; the manager owns mutation.
func (m *Manager) State() *AuthState {
	return m.state
}

// AccessToken implements api.TokenSource.
func (m *Manager) AccessToken() (string, error) {
	return m.store.AccessToken()
}

// Login exchanges credentials for a token pair, stores it and flips the
// authentication state. On failure the error propagates unchanged and
// neither the store nor the state is touched. Never retries.
func (m *Manager) Login(ctx context.Context, email, password string) (*api.LoginResponse, error) {
	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := m.store.SetTokens(resp.AccessToken, resp.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to store tokens: %w", err)
	}
	m.state.Set(true)

	m.log.Debug("login succeeded", slog.String("email", email))
	return resp, nil
}

// Logout tears the local session down and then notifies the backend.
// Local termination always succeeds; a server-side failure is only logged.
func (m *Manager) Logout(ctx context.Context) {
	token, _ := m.store.AccessToken()

	if err := m.store.Clear(); err != nil {
		m.log.Warn("failed to clear token store", slog.String("error", err.Error()))
	}
	m.state.Set(false)

	if token == "" {
		return
	}
	if err := m.api.Logout(ctx, token); err != nil {
		m.log.Warn("server logout notification failed", slog.String("error", err.Error()))
	}
}

// CheckAuthentication reports whether the session is valid. With no stored
// access token it answers false without a network call. Every failure shape
// (transport error, 401 after a failed refresh, bad response) is folded into
// a negative result; this is what route guards poll, so it must not throw.
func (m *Manager) CheckAuthentication(ctx context.Context) CheckResult {
	if _, err := m.store.AccessToken(); err != nil {
		m.state.Set(false)
		return CheckResult{Authenticated: false}
	}

	resp, err := m.api.CheckAuth(ctx)
	if err != nil {
		m.log.Debug("auth check failed", slog.String("error", err.Error()))
		m.state.Set(false)
		return CheckResult{Authenticated: false, Err: err}
	}

	m.state.Set(resp.Authenticated)
	return CheckResult{Authenticated: resp.Authenticated}
}

// RefreshAccessToken swaps the access token for a fresh one using the stored
// refresh token. Any failure (no refresh token, backend rejection) forces a
// logout and propagates, so the interceptor's retry path can tell "refreshed,
// retry" from "give up".
func (m *Manager) RefreshAccessToken(ctx context.Context) error {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()
	return m.refreshLocked(ctx)
}

// refreshStale is the transport's refresh hook. If another caller already
// rotated the token while this one waited on the lock, the refresh is skipped
// and the retry proceeds with the newer token.
func (m *Manager) refreshStale(ctx context.Context, staleToken string) error {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	if current, err := m.store.AccessToken(); err == nil && staleToken != "" && current != staleToken {
		m.log.Debug("token already rotated by concurrent refresh")
		return nil
	}
	return m.refreshLocked(ctx)
}

func (m *Manager) refreshLocked(ctx context.Context) error {
	refresh, err := m.store.RefreshToken()
	if err != nil {
		m.Logout(ctx)
		return fmt.Errorf("cannot refresh: %w", err)
	}

	resp, err := m.api.Refresh(ctx, refresh)
	if err != nil {
		m.log.Info("token refresh rejected, terminating session")
		m.Logout(ctx)
		return err
	}

	if err := m.store.SetAccessToken(resp.AccessToken); err != nil {
		return fmt.Errorf("failed to store refreshed token: %w", err)
	}

	m.log.Debug("access token refreshed")
	return nil
}
