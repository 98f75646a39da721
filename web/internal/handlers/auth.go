package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/lenteapp/lente/internal/api"
)

// LoginPage renders the login form
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	// Already logged in: no point showing the form
	if h.cookies.HasToken(r) {
		http.Redirect(w, r, "/upload", http.StatusSeeOther)
		return
	}

	data := h.newTemplateData(r, w)
	data["CurrentPage"] = "login"

	switch r.URL.Query().Get("reason") {
	case "expired":
		data["Message"] = "Your session has expired. Please sign in again to continue."
	case "required":
		data["Message"] = "Please sign in to access this page."
	}

	h.renderTemplate(w, "login.html", data)
}

// Login handles the login form submission
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	if email == "" || password == "" {
		h.renderLoginError(w, r, "Email and password are required.")
		return
	}

	sessions := h.Sessions(r, w)
	resp, err := sessions.Login(r.Context(), email, password)
	if err != nil {
		if api.IsInvalidCredentials(err) {
			h.log.Info("login rejected", slog.String("email", email))
			h.renderLoginError(w, r, "Invalid email or password.")
			return
		}
		h.log.Error("login failed", slog.String("error", err.Error()))
		h.renderLoginError(w, r, "Sign-in is unavailable right now. Please try again later.")
		return
	}

	if err := h.cookies.SetIdentity(r, w, resp.User.Name, resp.User.Email); err != nil {
		h.log.Error("failed to save identity", slog.String("error", err.Error()))
	}

	http.Redirect(w, r, "/upload", http.StatusSeeOther)
}

// SignupPage renders the registration form
func (h *Handler) SignupPage(w http.ResponseWriter, r *http.Request) {
	if h.cookies.HasToken(r) {
		http.Redirect(w, r, "/upload", http.StatusSeeOther)
		return
	}

	data := h.newTemplateData(r, w)
	data["CurrentPage"] = "signup"
	h.renderTemplate(w, "signup.html", data)
}

// Signup handles the registration form submission
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")
	email := r.FormValue("email")
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	if password != confirm {
		h.renderSignupError(w, r, map[string][]string{
			"confirm_password": {"Passwords do not match."},
		}, name, email)
		return
	}

	sessions := h.Sessions(r, w)
	_, err := sessions.API().Register(r.Context(), name, email, password)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && len(apiErr.Details) > 0 {
			h.renderSignupError(w, r, apiErr.Details, name, email)
			return
		}
		h.log.Error("registration failed", slog.String("error", err.Error()))
		h.renderSignupError(w, r, map[string][]string{
			"form": {"Registration is unavailable right now. Please try again later."},
		}, name, email)
		return
	}

	h.cookies.AddFlash(r, w, "Account created. Sign in to get started.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Logout terminates the session and returns to the login page.
// The local session is always cleared; the backend notification inside the
// session manager is best-effort.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sessions := h.Sessions(r, w)
	sessions.Logout(r.Context())

	h.cookies.Clear(r, w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) renderLoginError(w http.ResponseWriter, r *http.Request, message string) {
	data := h.newTemplateData(r, w)
	data["CurrentPage"] = "login"
	data["Message"] = message
	data["Email"] = r.FormValue("email")
	w.WriteHeader(http.StatusUnprocessableEntity)
	h.renderTemplate(w, "login.html", data)
}

func (h *Handler) renderSignupError(w http.ResponseWriter, r *http.Request, details map[string][]string, name, email string) {
	data := h.newTemplateData(r, w)
	data["CurrentPage"] = "signup"
	data["Errors"] = details
	data["Name"] = name
	data["Email"] = email
	w.WriteHeader(http.StatusUnprocessableEntity)
	h.renderTemplate(w, "signup.html", data)
}
