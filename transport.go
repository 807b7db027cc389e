package authkit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// sessionCookieName is the backend's session cookie. The token is replayed on
// authenticated requests as a Cookie header, not an Authorization bearer.
const sessionCookieName = "access_token"

type apiRequest struct {
	method string
	path   string
	body   any
	// authenticated attaches the stored session token when present. A
	// missing token is not an error; the server decides via 401.
	authenticated bool
}

type apiResponse struct {
	status int
	body   []byte
	header http.Header
}

// sessionCookie extracts the access_token value from Set-Cookie headers, or
// "". Only authentication endpoints consume it; ordinary requests ignore
// response cookies entirely.
func (r *apiResponse) sessionCookie() string {
	wrapped := http.Response{Header: r.header}
	for _, c := range wrapped.Cookies() {
		if c.Name == sessionCookieName {
			return c.Value
		}
	}
	return ""
}

// send issues one HTTP request and returns the raw status/body/headers frame.
// Decoding is the caller's responsibility. The reachability pre-flight
// guarantees no network attempt, and no silent hang, while offline.
func (c *Client) send(ctx context.Context, req apiRequest) (*apiResponse, error) {
	if c == nil || c.http == nil {
		return nil, ErrClientNotReady
	}
	if !c.reach.Online() {
		return nil, ErrNoInternet
	}

	target, err := url.JoinPath(c.config.HTTP.BaseURL, req.path)
	if err != nil {
		return nil, ErrInvalidURL
	}

	var body io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return nil, &UnknownError{Cause: fmt.Errorf("encode request body: %w", err)}
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, ErrInvalidURL
	}
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	if ua := c.config.HTTP.UserAgent; ua != "" {
		httpReq.Header.Set("User-Agent", ua)
	}

	requestID := requestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	httpReq.Header.Set("X-Request-Id", requestID)

	if req.authenticated {
		if token, err := c.creds.Token(ctx); err == nil && token != "" {
			httpReq.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return nil, ErrCancelled
		case errors.Is(err, context.DeadlineExceeded):
			return nil, ErrCancelled
		default:
			var urlErr *url.Error
			if errors.As(err, &urlErr) && urlErr.URL == "" {
				return nil, ErrInvalidURL
			}
			return nil, &UnknownError{Cause: err}
		}
	}
	if resp == nil {
		return nil, ErrInvalidResponse
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrInvalidResponse
	}

	return &apiResponse{
		status: resp.StatusCode,
		body:   raw,
		header: resp.Header,
	}, nil
}
