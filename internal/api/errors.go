package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrRefreshDenied is returned when the backend rejects a refresh token
	ErrRefreshDenied = errors.New("refresh token rejected")
)

// Error is a decoded error envelope from the lente backend.
// The backend wraps failures as {"error": ..., "message": ..., "details": ...}
// where details carries per-field validation messages on registration 400s.
type Error struct {
	Status  int
	Message string
	Details map[string][]string
}

func (e *Error) Error() string {
	if len(e.Details) > 0 {
		var fields []string
		for field := range e.Details {
			fields = append(fields, field)
		}
		return fmt.Sprintf("server returned %d: %s (invalid fields: %s)", e.Status, e.Message, strings.Join(fields, ", "))
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// IsInvalidCredentials reports whether the error is a 401 from the login endpoint,
// i.e. the user supplied a bad email/password pair.
func IsInvalidCredentials(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsValidation reports whether the error carries per-field validation details.
func IsValidation(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && len(apiErr.Details) > 0
}

// errorEnvelope matches the backend's JSON error shape. Details values can be
// either a list of messages or a single string depending on the validator, so
// they are decoded leniently.
type errorEnvelope struct {
	Error   string                     `json:"error"`
	Message string                     `json:"message"`
	Details map[string]json.RawMessage `json:"details"`
}

// decodeError turns a non-2xx response into an *Error. The body is consumed.
func decodeError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: "unreadable error response"}
	}

	apiErr := &Error{Status: resp.StatusCode}

	var env errorEnvelope
	if jsonErr := json.Unmarshal(body, &env); jsonErr != nil {
		// Not our envelope (proxy error page, plain text). Keep a trimmed copy.
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	apiErr.Message = env.Message
	if apiErr.Message == "" {
		apiErr.Message = env.Error
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	for field, raw := range env.Details {
		var msgs []string
		if err := json.Unmarshal(raw, &msgs); err != nil {
			var single string
			if err := json.Unmarshal(raw, &single); err != nil {
				continue
			}
			msgs = []string{single}
		}
		if apiErr.Details == nil {
			apiErr.Details = make(map[string][]string)
		}
		apiErr.Details[field] = msgs
	}

	return apiErr
}
