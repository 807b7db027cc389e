package authkit

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/drainsense/authkit/internal/wire"
)

// FlowState is the login flow's observable state.
//
//	Unauthenticated → Submitting → (AwaitingMethodSelection → AwaitingOTP)? → Authenticated
//
// Every failure returns the flow to the state it was submitted from;
// Cancel abandons a pending two-factor round back to Unauthenticated.
type FlowState uint8

const (
	// StateUnauthenticated is an exported constant or variable used by the
	// authentication core.
	StateUnauthenticated FlowState = iota
	// StateSubmitting is an exported constant or variable used by the
	// authentication core.
	StateSubmitting
	// StateAwaitingMethodSelection is an exported constant or variable used
	// by the authentication core.
	StateAwaitingMethodSelection
	// StateAwaitingOTP is an exported constant or variable used by the
	// authentication core.
	StateAwaitingOTP
	// StateAuthenticated is an exported constant or variable used by the
	// authentication core.
	StateAuthenticated
)

func (s FlowState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateSubmitting:
		return "submitting"
	case StateAwaitingMethodSelection:
		return "awaiting_method_selection"
	case StateAwaitingOTP:
		return "awaiting_otp"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// LoginFlow drives one sign-in attempt, including the optional two-factor
// round. It owns the per-attempt state that must stay durable across user
// actions: the original credentials (needed again by the 2FA
// re-authentication) and the challenge with its verifyId.
//
// A flow is single-user: concurrent calls to the same transition return
// ErrFlowBusy rather than deduplicating, and steps execute strictly
// sequentially. The user may background the app between steps; the flow's
// in-memory state carries across arbitrary real time.
type LoginFlow struct {
	client *Client

	mu        sync.Mutex
	state     FlowState
	busy      bool
	creds     Credentials
	challenge *TwoFactorChallenge
	method    ContactKind
	session   *Session
}

// NewLoginFlow returns a fresh flow in StateUnauthenticated.
func (c *Client) NewLoginFlow() *LoginFlow {
	return &LoginFlow{client: c, state: StateUnauthenticated}
}

// State returns the flow's current state.
func (f *LoginFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Challenge returns the pending two-factor challenge, or nil.
func (f *LoginFlow) Challenge() *TwoFactorChallenge {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.challenge == nil {
		return nil
	}
	copied := *f.challenge
	return &copied
}

// Session returns the finalized session, or nil before authentication.
func (f *LoginFlow) Session() *Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

// begin claims the flow for one transition. from is the state the transition
// is legal in; during is published while the network call runs.
func (f *LoginFlow) begin(from, during FlowState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return ErrFlowBusy
	}
	if f.state != from {
		return ErrInvalidTransition
	}
	f.busy = true
	f.state = during
	return nil
}

func (f *LoginFlow) end(next FlowState) {
	f.mu.Lock()
	f.busy = false
	f.state = next
	f.mu.Unlock()
}

// Submit runs client-side validation, then the primary credential check.
// Validation failure keeps the flow in StateUnauthenticated and returns a
// FieldError with zero network calls.
//
// On success either the session is final (no 2FA configured) or the flow
// parks in StateAwaitingMethodSelection carrying whichever contacts the
// account has. Organization-role and closed accounts are rejected before any
// 2FA evaluation: the credential store is cleared and ErrUnsupportedAccount
// returned even though the HTTP call succeeded.
func (f *LoginFlow) Submit(ctx context.Context, creds Credentials) (*LoginResult, error) {
	if err := ValidateEmail(creds.Email); err != nil {
		return nil, err
	}
	if err := ValidatePassword("password", creds.Password, f.client.config.Validation.LoginPasswordMinLen); err != nil {
		return nil, err
	}

	if err := f.begin(StateUnauthenticated, StateSubmitting); err != nil {
		return nil, err
	}

	var (
		user   *User
		cookie string
		err    error
	)
	if creds.Organization {
		user, cookie, err = f.client.signInOrganization(ctx, creds)
	} else {
		user, cookie, err = f.client.signInPersonal(ctx, creds)
	}
	if err != nil {
		f.client.emitAudit(ctx, auditEventLoginFailure, creds.Email, "", false, err, nil)
		f.end(StateUnauthenticated)
		return nil, err
	}

	if !user.supported() {
		_ = f.client.creds.Clear(ctx)
		f.client.emitAudit(ctx, auditEventLoginBlocked, creds.Email, user.ID, false, ErrUnsupportedAccount, map[string]string{
			"role":   string(user.Role),
			"status": string(user.Status),
		})
		f.end(StateUnauthenticated)
		return nil, ErrUnsupportedAccount
	}

	if user.twoFactorConfigured() {
		challenge := &TwoFactorChallenge{
			EmailTarget: user.Auth2FAEmail,
			PhoneTarget: user.Auth2FAPhoneNumber,
		}
		f.mu.Lock()
		f.creds = creds
		f.challenge = challenge
		f.mu.Unlock()

		f.client.emitAudit(ctx, auditEventTwoFactorRequired, creds.Email, user.ID, true, nil, nil)
		f.end(StateAwaitingMethodSelection)
		copied := *challenge
		return &LoginResult{TwoFactorRequired: true, Challenge: &copied}, nil
	}

	session, err := f.client.finalize(ctx, user, cookie, creds)
	if err != nil {
		f.end(StateUnauthenticated)
		return nil, err
	}

	f.mu.Lock()
	f.session = session
	f.mu.Unlock()
	f.client.emitAudit(ctx, auditEventLoginSuccess, creds.Email, user.ID, true, nil, nil)
	f.end(StateAuthenticated)
	return &LoginResult{Session: session}, nil
}

// Cancel abandons a pending two-factor round. The verifyId is simply
// discarded client-side; no server call is required.
func (f *LoginFlow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return ErrFlowBusy
	}
	if f.state != StateAwaitingMethodSelection && f.state != StateAwaitingOTP {
		return ErrInvalidTransition
	}
	f.state = StateUnauthenticated
	f.challenge = nil
	f.method = ""
	f.creds = Credentials{}
	return nil
}

// signInPersonal posts the personal sign-in endpoint. The response is an
// envelope whose user may be absent on success; absence decodes to the zero
// placeholder user rather than an error.
func (c *Client) signInPersonal(ctx context.Context, creds Credentials) (*User, string, error) {
	resp, err := c.send(ctx, apiRequest{
		method: http.MethodPost,
		path:   c.config.Endpoints.SignIn,
		body:   wire.SignInRequest{Email: creds.Email, Password: creds.Password},
	})
	if err != nil {
		return nil, "", err
	}

	envelope, err := decodeEnvelope[User](ctx, c, resp)
	if err != nil {
		return nil, "", err
	}

	user := envelope.Data
	if user == nil {
		user = &User{}
	}
	return user, resp.sessionCookie(), nil
}

// signInOrganization posts the organization endpoint. The body is the user
// record directly, not an envelope, and a 401 is read as a bare {error} body
// first before falling back to generic classification.
func (c *Client) signInOrganization(ctx context.Context, creds Credentials) (*User, string, error) {
	resp, err := c.send(ctx, apiRequest{
		method: http.MethodPost,
		path:   c.config.Endpoints.OrganizationSignIn,
		body:   wire.SignInRequest{Email: creds.Email, Password: creds.Password},
	})
	if err != nil {
		return nil, "", err
	}

	if resp.status == 401 {
		if msg := wire.DecodeErrorBody(resp.body).Text(); msg != "" {
			return nil, "", &APIError{Status: 401, Message: msg}
		}
		return nil, "", ErrUnauthorized
	}
	if err := classify(resp); err != nil {
		return nil, "", err
	}

	var user User
	if err := json.Unmarshal(resp.body, &user); err != nil {
		c.emitAudit(ctx, auditEventDecodeFailure, creds.Email, "", false, err, nil)
		return nil, "", ErrDecoding
	}
	return &user, resp.sessionCookie(), nil
}

// finalize persists the session. The credential save precedes anything that
// treats the session as valid; the push-token registration is best-effort
// and ordering-independent.
func (c *Client) finalize(ctx context.Context, user *User, cookie string, creds Credentials) (*Session, error) {
	if cookie == "" {
		return nil, ErrInvalidResponse
	}

	if err := c.creds.SaveToken(ctx, cookie); err != nil {
		return nil, err
	}
	name := user.displayName()
	if err := c.creds.SaveDisplayName(ctx, name); err != nil {
		return nil, err
	}
	if err := c.creds.SaveUserID(ctx, user.ID); err != nil {
		return nil, err
	}

	// The email is the only credential ever remembered; the password is not
	// persisted under any setting.
	if creds.RememberMe {
		if err := c.creds.SaveRememberedEmail(ctx, creds.Email); err != nil {
			return nil, err
		}
	}
	if err := c.creds.SetRememberMe(ctx, creds.RememberMe); err != nil {
		return nil, err
	}

	c.registerPushToken(ctx, user.ID)

	return &Session{
		Token:       cookie,
		DisplayName: name,
		UserID:      user.ID,
		ExpiresAt:   tokenExpiry(cookie),
	}, nil
}
