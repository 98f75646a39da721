package handlers

import (
	"log/slog"
	"net/http"

	core "github.com/lenteapp/lente/internal/session"
	"github.com/lenteapp/lente/web/internal/render"
	"github.com/lenteapp/lente/web/internal/session"
)

// Handler holds dependencies for all web handlers
type Handler struct {
	backendURL string
	cookies    *session.Manager
	templates  *render.TemplateSet
	log        *slog.Logger
}

// New creates a new handler with dependencies
func New(backendURL string, cookies *session.Manager, templates *render.TemplateSet, logger *slog.Logger) *Handler {
	return &Handler{
		backendURL: backendURL,
		cookies:    cookies,
		templates:  templates,
		log:        logger.With(slog.String("component", "web_handler")),
	}
}

// Sessions creates a per-request session manager whose tokens live in this
// request's cookie session. Access token rotation and logout performed by
// the manager flow back to the browser as Set-Cookie headers, so a manager
// must never outlive its request.
func (h *Handler) Sessions(r *http.Request, w http.ResponseWriter) *core.Manager {
	store := session.NewRequestStore(h.cookies, r, w)
	return core.NewManager(h.backendURL, store, core.NewAuthState(), nil, h.log)
}

// newTemplateData creates a template data map with the standard fields every
// page needs. Callers add page-specific fields to the returned map.
func (h *Handler) newTemplateData(r *http.Request, w http.ResponseWriter) map[string]interface{} {
	name, email := h.cookies.Identity(r)

	data := map[string]interface{}{
		"LoggedIn": h.cookies.HasToken(r),
		"UserName": name,
		"Email":    email,
		"Flashes":  h.cookies.Flashes(r, w),
	}
	return data
}

// renderTemplate renders a template with data
func (h *Handler) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	if h.templates == nil {
		http.Error(w, "Templates not loaded", http.StatusInternalServerError)
		return
	}
	h.log.Debug("rendering template", slog.String("template", name))

	err := h.templates.Execute(w, name, data)
	if err != nil {
		h.log.Error("template rendering failed",
			slog.String("template", name),
			slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// clearSessionAndRedirect clears the session and redirects to login
func (h *Handler) clearSessionAndRedirect(w http.ResponseWriter, r *http.Request) {
	h.log.Info("clearing invalid session and redirecting to login")
	if err := h.cookies.Clear(r, w); err != nil {
		h.log.Error("error clearing session", slog.String("error", err.Error()))
	}
	http.Redirect(w, r, "/login?reason=expired", http.StatusSeeOther)
}
