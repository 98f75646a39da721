package middleware

import (
	"log/slog"
	"net/http"

	core "github.com/lenteapp/lente/internal/session"
	"github.com/lenteapp/lente/web/internal/session"
)

// SessionFactory builds a per-request session manager whose token store is
// backed by the request's cookie session.
type SessionFactory func(r *http.Request, w http.ResponseWriter) *core.Manager

// AuthMiddleware gates routes on a verified backend session
type AuthMiddleware struct {
	cookies  *session.Manager
	sessions SessionFactory
	log      *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(cookies *session.Manager, sessions SessionFactory, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		cookies:  cookies,
		sessions: sessions,
		log:      logger.With(slog.String("component", "auth_middleware")),
	}
}

// RequireAuth ensures the user holds a session the backend accepts before the
// handler runs. Unverifiable sessions are treated as logged out.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No cookie token at all: skip the network round trip
		if !m.cookies.HasToken(r) {
			m.log.Debug("no session token, redirecting to login", slog.String("path", r.URL.Path))
			http.Redirect(w, r, "/login?reason=required", http.StatusSeeOther)
			return
		}

		// The backend check may refresh the access token; an expired refresh
		// token clears the cookie session as a side effect.
		guard := core.NewGuard(m.sessions(r, w), m.log)
		if !guard.CanEnter(r.Context()) {
			m.log.Info("session rejected by backend, redirecting to login",
				slog.String("path", r.URL.Path))
			m.cookies.Clear(r, w)
			http.Redirect(w, r, "/login?reason=expired", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}
