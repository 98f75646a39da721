package session

import (
	"errors"
	"testing"
)

func TestMemoryStoreReadAfterWrite(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.AccessToken(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken on empty store, got %v", err)
	}
	if _, err := store.RefreshToken(); !errors.Is(err, ErrNoRefreshToken) {
		t.Fatalf("expected ErrNoRefreshToken on empty store, got %v", err)
	}

	if err := store.SetTokens("T1", "R1"); err != nil {
		t.Fatalf("SetTokens: %v", err)
	}

	access, err := store.AccessToken()
	if err != nil || access != "T1" {
		t.Errorf("expected access T1, got %q (%v)", access, err)
	}
	refresh, err := store.RefreshToken()
	if err != nil || refresh != "R1" {
		t.Errorf("expected refresh R1, got %q (%v)", refresh, err)
	}
}

func TestMemoryStoreSetAccessTokenKeepsRefresh(t *testing.T) {
	store := NewMemoryStore()
	if err := store.SetTokens("T1", "R1"); err != nil {
		t.Fatalf("SetTokens: %v", err)
	}

	if err := store.SetAccessToken("T2"); err != nil {
		t.Fatalf("SetAccessToken: %v", err)
	}

	access, _ := store.AccessToken()
	if access != "T2" {
		t.Errorf("expected access T2 after overwrite, got %q", access)
	}
	refresh, _ := store.RefreshToken()
	if refresh != "R1" {
		t.Errorf("refresh token changed on access overwrite: got %q", refresh)
	}
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore()
	if err := store.SetTokens("T1", "R1"); err != nil {
		t.Fatalf("SetTokens: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if _, err := store.AccessToken(); !errors.Is(err, ErrNoToken) {
		t.Errorf("expected ErrNoToken after clear, got %v", err)
	}
	if _, err := store.RefreshToken(); !errors.Is(err, ErrNoRefreshToken) {
		t.Errorf("expected ErrNoRefreshToken after clear, got %v", err)
	}
}
