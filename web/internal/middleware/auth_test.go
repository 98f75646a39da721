package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	core "github.com/lenteapp/lente/internal/session"
	"github.com/lenteapp/lente/web/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSecret() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

// okHandler records whether the protected handler was reached
type okHandler struct {
	called bool
}

func (h *okHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	w.WriteHeader(http.StatusOK)
}

func newMiddleware(t *testing.T, backendURL string) (*AuthMiddleware, *session.Manager) {
	t.Helper()
	cookies := session.NewManager(testSecret(), false)
	factory := func(r *http.Request, w http.ResponseWriter) *core.Manager {
		store := session.NewRequestStore(cookies, r, w)
		return core.NewManager(backendURL, store, core.NewAuthState(), nil, discardLogger())
	}
	return NewAuthMiddleware(cookies, factory, discardLogger()), cookies
}

// loginCookie produces a session cookie holding the given token pair
func loginCookie(t *testing.T, cookies *session.Manager, access, refresh string) *http.Cookie {
	t.Helper()
	r := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	if err := cookies.SetTokens(r, w, access, refresh); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}
	result := w.Result().Cookies()
	if len(result) == 0 {
		t.Fatal("no session cookie written")
	}
	return result[0]
}

func TestRequireAuthWithoutTokenRedirects(t *testing.T) {
	mw, _ := newMiddleware(t, "http://backend.invalid")
	next := &okHandler{}

	r := httptest.NewRequest("GET", "/upload", nil)
	w := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(w, r)

	if next.called {
		t.Error("protected handler ran without a session")
	}
	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/login?reason=required" {
		t.Errorf("redirect = %q, want /login?reason=required", loc)
	}
}

func TestRequireAuthWithValidSessionPasses(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"authenticated": true})
	}))
	defer backend.Close()

	mw, cookies := newMiddleware(t, backend.URL)
	next := &okHandler{}

	r := httptest.NewRequest("GET", "/upload", nil)
	r.AddCookie(loginCookie(t, cookies, "T1", "R1"))
	w := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(w, r)

	if !next.called {
		t.Error("protected handler did not run for a valid session")
	}
}

func TestRequireAuthRejectedSessionRedirects(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"authenticated": false})
	}))
	defer backend.Close()

	mw, cookies := newMiddleware(t, backend.URL)
	next := &okHandler{}

	r := httptest.NewRequest("GET", "/upload", nil)
	r.AddCookie(loginCookie(t, cookies, "T1", "R1"))
	w := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(w, r)

	if next.called {
		t.Error("protected handler ran for a rejected session")
	}
	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/login?reason=expired" {
		t.Errorf("redirect = %q, want /login?reason=expired", loc)
	}
}

// The guard fails closed when the backend cannot be reached at all.
func TestRequireAuthBackendDownRedirects(t *testing.T) {
	mw, cookies := newMiddleware(t, "http://127.0.0.1:1")
	next := &okHandler{}

	r := httptest.NewRequest("GET", "/upload", nil)
	r.AddCookie(loginCookie(t, cookies, "T1", "R1"))
	w := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(w, r)

	if next.called {
		t.Error("protected handler ran while the backend was unreachable")
	}
	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
}
