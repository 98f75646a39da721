package session

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	// SessionName is the name of the session cookie
	SessionName = "lente_session"

	// AccessTokenKey is the session key for the backend access token
	AccessTokenKey = "access_token"

	// RefreshTokenKey is the session key for the backend refresh token
	RefreshTokenKey = "refresh_token"

	// UserNameKey and UserEmailKey hold the logged-in identity for display
	UserNameKey  = "user_name"
	UserEmailKey = "user_email"
)

// Manager wraps gorilla/sessions for our use case
type Manager struct {
	store *sessions.CookieStore
}

// NewManager creates a new session manager.
// secretKey should be 32 bytes. secure should be true behind HTTPS.
func NewManager(secretKey []byte, secure bool) *Manager {
	store := sessions.NewCookieStore(secretKey)

	// Configure session options
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60, // 30 days, matching the refresh token lifetime
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		store: store,
	}
}

// SetTokens stores the backend token pair in the session
func (m *Manager) SetTokens(r *http.Request, w http.ResponseWriter, access, refresh string) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		// Create new session if the existing cookie cannot be decoded
		session, _ = m.store.New(r, SessionName)
	}

	session.Values[AccessTokenKey] = access
	session.Values[RefreshTokenKey] = refresh
	return session.Save(r, w)
}

// SetAccessToken overwrites only the access token, keeping the refresh token
func (m *Manager) SetAccessToken(r *http.Request, w http.ResponseWriter, access string) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		session, _ = m.store.New(r, SessionName)
	}

	session.Values[AccessTokenKey] = access
	return session.Save(r, w)
}

// AccessToken retrieves the backend access token from the session
func (m *Manager) AccessToken(r *http.Request) (string, error) {
	return m.getString(r, AccessTokenKey)
}

// RefreshToken retrieves the backend refresh token from the session
func (m *Manager) RefreshToken(r *http.Request) (string, error) {
	return m.getString(r, RefreshTokenKey)
}

// SetIdentity stores the logged-in user's name and email for display
func (m *Manager) SetIdentity(r *http.Request, w http.ResponseWriter, name, email string) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		session, _ = m.store.New(r, SessionName)
	}

	session.Values[UserNameKey] = name
	session.Values[UserEmailKey] = email
	return session.Save(r, w)
}

// Identity returns the stored user name and email, empty when logged out
func (m *Manager) Identity(r *http.Request) (name, email string) {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		return "", ""
	}
	name, _ = session.Values[UserNameKey].(string)
	email, _ = session.Values[UserEmailKey].(string)
	return name, email
}

// Clear removes the session (logout)
func (m *Manager) Clear(r *http.Request, w http.ResponseWriter) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		return nil // Session doesn't exist, nothing to clear
	}

	// Drop the values as well: the expired cookie only reaches the browser,
	// while gorilla's request-scoped registry keeps handing this session
	// object to later reads within the same request.
	for key := range session.Values {
		delete(session.Values, key)
	}

	// Set MaxAge to -1 to delete the session
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// HasToken checks if a session access token exists
func (m *Manager) HasToken(r *http.Request) bool {
	_, err := m.AccessToken(r)
	return err == nil
}

// AddFlash queues a one-time message shown on the next rendered page
func (m *Manager) AddFlash(r *http.Request, w http.ResponseWriter, message string) {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		session, _ = m.store.New(r, SessionName)
	}
	session.AddFlash(message)
	session.Save(r, w)
}

// Flashes returns and clears the queued messages
func (m *Manager) Flashes(r *http.Request, w http.ResponseWriter) []string {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		return nil
	}

	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	session.Save(r, w) // persist the cleared flash list

	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			messages = append(messages, s)
		}
	}
	return messages
}

// GetSession returns the session object for storing additional data
func (m *Manager) GetSession(r *http.Request) (*sessions.Session, error) {
	return m.store.Get(r, SessionName)
}

func (m *Manager) getString(r *http.Request, key string) (string, error) {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		return "", err
	}

	value, ok := session.Values[key].(string)
	if !ok || value == "" {
		return "", http.ErrNoCookie
	}

	return value, nil
}
