package session

import (
	"context"
	"log/slog"
)

// Guard gates entry to protected views. It only answers yes/no; what to do
// on a denial (redirect, error message) is the caller's decision.
type Guard struct {
	sessions *Manager
	log      *slog.Logger
}

// NewGuard creates a guard over the given session manager.
func NewGuard(sessions *Manager, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		sessions: sessions,
		log:      logger.With(slog.String("component", "guard")),
	}
}

// CanEnter reports whether a protected view may be entered. Any failure of
// the underlying check counts as "no": the guard always fails closed.
func (g *Guard) CanEnter(ctx context.Context) bool {
	result := g.sessions.CheckAuthentication(ctx)
	if result.Err != nil {
		g.log.Debug("denying entry after failed auth check",
			slog.String("error", result.Err.Error()))
	}
	return result.Authenticated
}
