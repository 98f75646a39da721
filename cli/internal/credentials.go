package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lenteapp/lente/internal/session"
)

// Credentials stores the authentication credentials
type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
}

// IsExpired checks if the access token is expired
func (c *Credentials) IsExpired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

// FileCredentials implements session.TokenStore using file-based credential
// storage, one file per config context.
type FileCredentials struct {
	dir string // override for tests; empty means the default config dir
}

// NewFileCredentials creates a file-backed token store. dir overrides the
// credentials directory; pass "" for the default (~/.config/lente).
func NewFileCredentials(dir string) *FileCredentials {
	return &FileCredentials{dir: dir}
}

// AccessToken returns the stored access token
func (f *FileCredentials) AccessToken() (string, error) {
	creds, err := f.load()
	if err != nil {
		return "", err
	}
	if creds.AccessToken == "" {
		return "", session.ErrNoToken
	}
	return creds.AccessToken, nil
}

// RefreshToken returns the stored refresh token
func (f *FileCredentials) RefreshToken() (string, error) {
	creds, err := f.load()
	if err != nil {
		if errors.Is(err, session.ErrNoToken) {
			return "", session.ErrNoRefreshToken
		}
		return "", err
	}
	if creds.RefreshToken == "" {
		return "", session.ErrNoRefreshToken
	}
	return creds.RefreshToken, nil
}

// SetTokens stores a full credential pair (login)
func (f *FileCredentials) SetTokens(access, refresh string) error {
	creds, err := f.load()
	if err != nil {
		creds = &Credentials{}
	}
	creds.AccessToken = access
	creds.RefreshToken = refresh
	creds.ExpiresAt = tokenExpiry(access)
	return f.save(creds)
}

// SetAccessToken overwrites only the access token (refresh)
func (f *FileCredentials) SetAccessToken(access string) error {
	creds, err := f.load()
	if err != nil {
		creds = &Credentials{}
	}
	creds.AccessToken = access
	creds.ExpiresAt = tokenExpiry(access)
	return f.save(creds)
}

// Clear removes the credentials file
func (f *FileCredentials) Clear() error {
	path, err := f.path()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// Describe returns the stored credentials for display (auth status).
func (f *FileCredentials) Describe() (*Credentials, error) {
	return f.load()
}

// SetIdentity records the logged-in user for display purposes.
func (f *FileCredentials) SetIdentity(name, email string) error {
	creds, err := f.load()
	if err != nil {
		return err
	}
	creds.Name = name
	creds.Email = email
	return f.save(creds)
}

func (f *FileCredentials) load() (*Credentials, error) {
	path, err := f.path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, session.ErrNoToken
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return &creds, nil
}

func (f *FileCredentials) save(creds *Credentials) error {
	path, err := f.path()
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	// Write with restricted permissions (read/write for owner only)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	slog.Debug("credentials saved", slog.String("component", "cli-creds"), slog.String("path", path))
	return nil
}

// path returns the credentials file path for the current config context
func (f *FileCredentials) path() (string, error) {
	dir := f.dir
	if dir == "" {
		var err error
		dir, err = configDir()
		if err != nil {
			return "", err
		}
	}

	// Use context-specific credentials file
	config, err := LoadConfig()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	return filepath.Join(dir, fmt.Sprintf("credentials-%s.json", config.CurrentContext)), nil
}

// tokenExpiry peeks at the JWT exp claim without verifying the signature;
// the backend is the authority on validity, this is only for display and
// for deciding when a proactive refresh is worthwhile.
func tokenExpiry(token string) time.Time {
	parsed, _, err := new(jwt.Parser).ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
