package session

import (
	"context"
	"net/http"
	"testing"

	"github.com/lenteapp/lente/internal/api"
)

func TestGuardAllowsAuthenticated(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(api.CheckPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"authenticated": true, "user": 1}`)
	})

	m, store, _ := newTestManager(t, mux)
	store.SetTokens("T1", "R1")

	guard := NewGuard(m, discardLogger())
	if !guard.CanEnter(context.Background()) {
		t.Error("expected entry allowed for an authenticated session")
	}
}

func TestGuardDeniesWithoutSession(t *testing.T) {
	m, _, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("guard without a token must not hit the network (%s)", r.URL.Path)
	}))

	guard := NewGuard(m, discardLogger())
	if guard.CanEnter(context.Background()) {
		t.Error("expected entry denied without a session")
	}
}

func TestGuardFailsClosedOnCheckError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(api.CheckPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"error": "boom"}`)
	})

	m, store, _ := newTestManager(t, mux)
	store.SetTokens("T1", "R1")

	guard := NewGuard(m, discardLogger())
	if guard.CanEnter(context.Background()) {
		t.Error("expected entry denied when the check itself fails")
	}
}
