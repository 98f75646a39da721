package session

import (
	"errors"
	"net/http/httptest"
	"testing"

	core "github.com/lenteapp/lente/internal/session"
)

func testManager() *Manager {
	return NewManager([]byte("0123456789abcdef0123456789abcdef"), false)
}

func TestTokenRoundTrip(t *testing.T) {
	m := testManager()
	r := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	if err := m.SetTokens(r, w, "T1", "R1"); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}

	access, err := m.AccessToken(r)
	if err != nil || access != "T1" {
		t.Errorf("access token = %q (%v), want T1", access, err)
	}
	refresh, err := m.RefreshToken(r)
	if err != nil || refresh != "R1" {
		t.Errorf("refresh token = %q (%v), want R1", refresh, err)
	}

	if err := m.SetAccessToken(r, w, "T2"); err != nil {
		t.Fatalf("SetAccessToken failed: %v", err)
	}
	access, _ = m.AccessToken(r)
	refresh, _ = m.RefreshToken(r)
	if access != "T2" || refresh != "R1" {
		t.Errorf("after rotation tokens = %q/%q, want T2/R1", access, refresh)
	}
}

// Clear must make the tokens invisible to reads within the same request, not
// just expire the browser cookie.
func TestClearRemovesTokensWithinRequest(t *testing.T) {
	m := testManager()
	r := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	if err := m.SetTokens(r, w, "T1", "R1"); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}
	if err := m.SetIdentity(r, w, "Ana", "ana@example.com"); err != nil {
		t.Fatalf("SetIdentity failed: %v", err)
	}

	if err := m.Clear(r, w); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if token, err := m.AccessToken(r); err == nil {
		t.Errorf("access token %q still readable after Clear", token)
	}
	if token, err := m.RefreshToken(r); err == nil {
		t.Errorf("refresh token %q still readable after Clear", token)
	}
	if m.HasToken(r) {
		t.Error("HasToken must be false after Clear")
	}
	if name, email := m.Identity(r); name != "" || email != "" {
		t.Errorf("identity %q/%q still readable after Clear", name, email)
	}
}

func TestRequestStoreMapsSentinelErrors(t *testing.T) {
	m := testManager()
	r := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	store := NewRequestStore(m, r, w)

	if _, err := store.AccessToken(); !errors.Is(err, core.ErrNoToken) {
		t.Errorf("expected ErrNoToken from an empty session, got %v", err)
	}
	if _, err := store.RefreshToken(); !errors.Is(err, core.ErrNoRefreshToken) {
		t.Errorf("expected ErrNoRefreshToken from an empty session, got %v", err)
	}

	if err := store.SetTokens("T1", "R1"); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}
	if access, err := store.AccessToken(); err != nil || access != "T1" {
		t.Errorf("access token = %q (%v), want T1", access, err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := store.AccessToken(); !errors.Is(err, core.ErrNoToken) {
		t.Errorf("expected ErrNoToken after Clear, got %v", err)
	}
}
