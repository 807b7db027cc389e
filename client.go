package authkit

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/drainsense/authkit/credential"
	"github.com/drainsense/authkit/internal/wire"
)

// Client defines a public type used by authkit APIs.
//
// Client instances are intended to be configured during initialization
// through [Builder.Build] and then treated as immutable unless documented
// otherwise.
type Client struct {
	config Config
	http   *http.Client
	creds  credential.Store
	reach  Reachability
	audit  AuditSink

	mu        sync.Mutex
	contacts  map[string]string // normalized contact → most recent verifyId
	pushToken string
}

// Store exposes the credential store the client was built with, for
// collaborators outside this core (theme persistence, remembered-email
// prefill).
func (c *Client) Store() credential.Store {
	return c.creds
}

// SetPushToken caches a device push-notification token. Finalization of the
// next successful login registers it with the backend, best-effort.
func (c *Client) SetPushToken(token string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.pushToken = token
	c.mu.Unlock()
}

// Close discards in-memory per-session state (the verified-contact cache and
// any cached push token). It does not touch the credential store.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.contacts = map[string]string{}
	c.pushToken = ""
	c.mu.Unlock()
}

// SignOut clears the credential store. The remembered email survives only
// when remember-me was set at login; everything else, including the cached
// theme, is erased so logout leaves zero residual personalization.
func (c *Client) SignOut(ctx context.Context) error {
	if c == nil || c.creds == nil {
		return ErrClientNotReady
	}

	remember, err := c.creds.RememberMe(ctx)
	if err != nil {
		remember = false
	}
	var email string
	if remember {
		email, _ = c.creds.RememberedEmail(ctx)
	}

	if err := c.creds.ClearAll(ctx); err != nil {
		return err
	}
	if remember && email != "" {
		if err := c.creds.SaveRememberedEmail(ctx, email); err != nil {
			return err
		}
		if err := c.creds.SetRememberMe(ctx, true); err != nil {
			return err
		}
	}

	c.emitAudit(ctx, auditEventSignOut, email, "", true, nil, nil)
	return nil
}

// PolicyDocument fetches a terms or privacy document. Sign-up renders these;
// the call reuses the shared transport and classifier like every other flow.
func (c *Client) PolicyDocument(ctx context.Context, kind PolicyKind) (*PolicyDocument, error) {
	resp, err := c.send(ctx, apiRequest{
		method: http.MethodGet,
		path:   c.config.policyPath(kind),
	})
	if err != nil {
		return nil, err
	}

	envelope, err := decodeEnvelope[PolicyDocument](ctx, c, resp)
	if err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return nil, ErrNoData
	}
	return envelope.Data, nil
}

// registerPushToken is best-effort: failure is audited and swallowed so a
// notification hiccup never blocks finalizing a login.
func (c *Client) registerPushToken(ctx context.Context, userID string) {
	c.mu.Lock()
	token := c.pushToken
	c.mu.Unlock()
	if token == "" {
		return
	}

	resp, err := c.send(ctx, apiRequest{
		method:        http.MethodPost,
		path:          c.config.Endpoints.PushToken,
		body:          wire.PushTokenRequest{Token: token},
		authenticated: true,
	})
	if err == nil {
		err = classify(resp)
	}
	c.emitAudit(ctx, auditEventPushToken, "", userID, err == nil, err, nil)
}

// rememberContact records a confirmed contact for the current app session so
// re-validating an unchanged field does not force a new verification round.
func (c *Client) rememberContact(contact, verifyID string) {
	c.mu.Lock()
	c.contacts[normalizeContact(contact)] = verifyID
	c.mu.Unlock()
}

// VerifiedContact returns the verifyId of a contact already confirmed in this
// app session, if any.
func (c *Client) VerifiedContact(contact string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.contacts[normalizeContact(contact)]
	return id, ok
}

func normalizeContact(contact string) string {
	return strings.ToLower(strings.TrimSpace(contact))
}

func (c *Client) emitAudit(
	ctx context.Context,
	eventType string,
	email string,
	userID string,
	success bool,
	cause error,
	metadata map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		Email:     email,
		UserID:    userID,
		RequestID: requestIDFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	c.audit.Emit(ctx, event)
}
