package authkit

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the finalized authenticated state as read from the credential
// store. ExpiresAt is best-effort: when the backend issues a JWT as the
// access_token cookie its exp claim is exposed here; opaque tokens leave it
// zero.
type Session struct {
	Token       string
	DisplayName string
	UserID      string
	ExpiresAt   time.Time
}

// Expired reports whether the session's token carried an exp claim that has
// passed. Opaque tokens never report expired; the server remains the
// authority via 401.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// CurrentSession reads the persisted credential and returns the session, or
// nil when no token is stored.
func (c *Client) CurrentSession(ctx context.Context) (*Session, error) {
	if c == nil || c.creds == nil {
		return nil, ErrClientNotReady
	}

	token, err := c.creds.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	name, err := c.creds.DisplayName(ctx)
	if err != nil {
		return nil, err
	}
	id, err := c.creds.UserID(ctx)
	if err != nil {
		return nil, err
	}

	return &Session{
		Token:       token,
		DisplayName: name,
		UserID:      id,
		ExpiresAt:   tokenExpiry(token),
	}, nil
}

// tokenExpiry parses the token as a JWT without verifying it (the client
// holds no keys) and returns the exp claim. Anything unparseable yields the
// zero time.
func tokenExpiry(token string) time.Time {
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
