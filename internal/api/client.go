// Package api implements the REST client for the lente backend.
// It covers the user/session endpoints plus the neural analysis endpoint,
// and provides the bearer-token transport used by both the web frontend
// and the CLI.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// Backend endpoint paths, relative to the /api base.
const (
	LoginPath    = "/users/login"
	LogoutPath   = "/users/logout"
	RegisterPath = "/users/register"
	RefreshPath  = "/users/refresh"
	CheckPath    = "/users/auth/check"
	AnalyzePath  = "/neural/analyze"
)

// User is the public user representation returned by the backend.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Message      string `json:"message"`
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterResponse is the body of a successful registration.
type RegisterResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// RefreshResponse is the body of a successful token refresh.
// Only the access token is rotated; the refresh token stays valid.
type RefreshResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
}

// CheckResponse is the body of the auth check endpoint.
type CheckResponse struct {
	Authenticated bool        `json:"authenticated"`
	User          json.Number `json:"user"`
}

// AnalysisData is the payload of a completed object analysis.
type AnalysisData struct {
	ImageID      int64              `json:"image_id"`
	ImageURL     string             `json:"image_url"`
	Objects      []string           `json:"objects"`
	Accuracy     float64            `json:"accuracy"`
	Metrics      map[string]float64 `json:"metrics"`
	ObjectsCount int                `json:"objects_count"`
}

// AnalyzeResponse is the analysis endpoint envelope.
type AnalyzeResponse struct {
	Message string       `json:"message"`
	Data    AnalysisData `json:"data"`
}

// Client is a REST client for the lente backend.
// Pass an http.Client whose transport is an *AuthTransport to get automatic
// bearer injection and the single refresh-and-retry on 401.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL (e.g. "http://localhost:5000/api").
// If httpClient is nil, http.DefaultClient is used.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for a token pair. A 401 means the credentials
// were rejected; the *Error is returned unchanged for the caller to surface.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}

	var out LoginResponse
	if err := c.postJSON(ctx, LoginPath, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout notifies the backend that the session ended. The access token is
// passed explicitly because the caller clears its store before notifying;
// an explicit Authorization header also keeps the transport from running a
// refresh cycle on behalf of a logout.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+LogoutPath, strings.NewReader("{}"))
	if err != nil {
		return fmt.Errorf("failed to build logout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return c.do(req, nil)
}

// Register creates a new account. Validation failures come back as an *Error
// with per-field Details.
func (c *Client) Register(ctx context.Context, name, email, password string) (*RegisterResponse, error) {
	body := map[string]string{"name": name, "email": email, "password": password}

	var out RegisterResponse
	if err := c.postJSON(ctx, RegisterPath, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckAuth asks the backend whether the current access token is valid.
func (c *Client) CheckAuth(ctx context.Context) (*CheckResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+CheckPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build auth check request: %w", err)
	}

	var out CheckResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh obtains a new access token. The refresh token is sent as the bearer
// credential on this request; the transport leaves an explicit Authorization
// header alone, so the stored access token is not attached here.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RefreshPath, strings.NewReader("{}"))
	if err != nil {
		return nil, fmt.Errorf("failed to build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+refreshToken)

	var out RefreshResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRefreshDenied, err)
	}
	return &out, nil
}

// Analyze uploads an image for object analysis. The correlation id travels as
// the "uuid" multipart field so the backend can tie the upload to its result.
func (c *Client) Analyze(ctx context.Context, filename string, image io.Reader, correlationID string) (*AnalyzeResponse, error) {
	// Buffer the multipart body up front so the transport can replay it if the
	// request has to be retried after a token refresh.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if err := mw.WriteField("uuid", correlationID); err != nil {
		return nil, fmt.Errorf("failed to write correlation id: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+AnalyzePath, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("failed to build analyze request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out AnalyzeResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// postJSON sends a JSON POST and decodes the response into out (if non-nil).
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

// do dispatches the request and decodes a 2xx body into out. Non-2xx
// responses are decoded into an *Error.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Path, err)
	}
	return nil
}
