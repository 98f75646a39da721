package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// TokenSource provides the current access token for outgoing requests.
// Implementations report session.ErrNoToken (or any error) when no token
// is stored; the transport then sends the request unauthenticated.
type TokenSource interface {
	AccessToken() (string, error)
}

// AuthTransport is an http.RoundTripper that authenticates requests against
// the lente backend:
//
//  1. attach the stored access token as a bearer header, unless the request
//     already carries an explicit Authorization header
//  2. on a 401 for a request that carried the stored token, run exactly one
//     refresh and re-dispatch the original request with the new token; the
//     refresh endpoint itself is exempt so a rejected refresh can never loop
//  3. every other outcome is returned unchanged
//
// Refresh failures surface to the caller; the refresher's failure path has
// already cleared the local session by then.
type AuthTransport struct {
	Base   http.RoundTripper
	Tokens TokenSource
	// Refresh runs one access-token refresh. staleToken is the token the
	// failed request carried (empty if none), letting the refresher skip
	// the round trip when a concurrent caller already rotated the token.
	// The refresher handles logout on failure.
	Refresh func(ctx context.Context, staleToken string) error
	Log     *slog.Logger
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *AuthTransport) log() *slog.Logger {
	if t.Log != nil {
		return t.Log
	}
	return slog.Default()
}

// RoundTrip implements http.RoundTripper.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())

	var attached string
	explicitAuth := out.Header.Get("Authorization") != ""
	if !explicitAuth {
		if token, err := t.Tokens.AccessToken(); err == nil && token != "" {
			out.Header.Set("Authorization", "Bearer "+token)
			attached = token
		}
	}

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || t.Refresh == nil {
		return resp, nil
	}

	// Never refresh on behalf of the refresh endpoint itself, or for requests
	// that brought their own credentials. A 401 on a request that carried no
	// token at all (a failed login) is not a session expiry either; it
	// propagates unchanged.
	if explicitAuth || attached == "" || strings.HasSuffix(req.URL.Path, RefreshPath) {
		return resp, nil
	}

	// A request body that cannot be replayed cannot be retried.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	t.log().Info("access token rejected, attempting refresh",
		slog.String("path", req.URL.Path))

	if refreshErr := t.Refresh(req.Context(), attached); refreshErr != nil {
		t.log().Error("token refresh failed",
			slog.String("path", req.URL.Path),
			slog.String("error", refreshErr.Error()))
		return nil, refreshErr
	}

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			return nil, bodyErr
		}
		retry.Body = body
	}

	retry.Header.Del("Authorization")
	if token, tokenErr := t.Tokens.AccessToken(); tokenErr == nil && token != "" {
		retry.Header.Set("Authorization", "Bearer "+token)
	}

	t.log().Debug("retrying request with refreshed token",
		slog.String("path", req.URL.Path))
	return t.base().RoundTrip(retry)
}
