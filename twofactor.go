package authkit

import (
	"context"
	"fmt"
	"net/http"

	"github.com/drainsense/authkit/internal/wire"
)

// SelectMethod picks one of the challenge's configured contact methods and
// requests a code for it. When both email and phone are configured the
// caller must offer the user an explicit choice; the flow never auto-picks.
//
// On success the flow moves to StateAwaitingOTP holding the returned
// verifyId; on failure it stays in StateAwaitingMethodSelection so the user
// can retry or pick the other method.
func (f *LoginFlow) SelectMethod(ctx context.Context, kind ContactKind) error {
	if err := f.begin(StateAwaitingMethodSelection, StateAwaitingMethodSelection); err != nil {
		return err
	}

	f.mu.Lock()
	challenge := f.challenge
	f.mu.Unlock()

	target := challenge.target(kind)
	if target == "" {
		f.end(StateAwaitingMethodSelection)
		return ErrMethodNotConfigured
	}

	verification, err := f.client.RequestCode(ctx, kind, target, false)
	if err != nil {
		f.client.emitAudit(ctx, auditEventTwoFactorFailure, target, "", false, err, nil)
		f.end(StateAwaitingMethodSelection)
		return err
	}

	f.mu.Lock()
	f.challenge.VerifyID = verification.VerifyID
	f.method = kind
	f.mu.Unlock()

	f.end(StateAwaitingOTP)
	return nil
}

// ConfirmOTP submits the user's code, then performs the second, distinct
// network call the backend requires: re-authentication with the original
// credentials plus the 2FA proof. The session cookie is issued only by that
// second call; confirming the code alone never finalizes anything.
//
// A wrong or expired code leaves the flow in StateAwaitingOTP with
// ErrCodeRejected carrying the server's message.
func (f *LoginFlow) ConfirmOTP(ctx context.Context, code string) (*Session, error) {
	if err := ValidateOTP(code, f.client.config.TwoFactor.OTPDigits); err != nil {
		return nil, err
	}
	if err := f.begin(StateAwaitingOTP, StateAwaitingOTP); err != nil {
		return nil, err
	}

	f.mu.Lock()
	challenge := *f.challenge
	method := f.method
	creds := f.creds
	f.mu.Unlock()

	confirmation, err := f.client.ConfirmCode(ctx, code, challenge.VerifyID, challenge.target(method))
	if err != nil {
		f.end(StateAwaitingOTP)
		return nil, err
	}
	if !confirmation.OK {
		f.client.emitAudit(ctx, auditEventTwoFactorFailure, creds.Email, "", false, ErrCodeRejected, nil)
		f.end(StateAwaitingOTP)
		if confirmation.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrCodeRejected, confirmation.Message)
		}
		return nil, ErrCodeRejected
	}

	user, cookie, err := f.client.signInWithTwoFactor(ctx, creds, method, challenge.VerifyID)
	if err != nil {
		f.client.emitAudit(ctx, auditEventTwoFactorFailure, creds.Email, "", false, err, nil)
		f.end(StateAwaitingOTP)
		return nil, err
	}

	// The invariant holds even across the re-authentication: an account that
	// turned unsupported mid-flow never finalizes.
	if !user.supported() {
		_ = f.client.creds.Clear(ctx)
		f.client.emitAudit(ctx, auditEventLoginBlocked, creds.Email, user.ID, false, ErrUnsupportedAccount, nil)
		f.mu.Lock()
		f.challenge = nil
		f.method = ""
		f.creds = Credentials{}
		f.mu.Unlock()
		f.end(StateUnauthenticated)
		return nil, ErrUnsupportedAccount
	}

	session, err := f.client.finalize(ctx, user, cookie, creds)
	if err != nil {
		f.end(StateAwaitingOTP)
		return nil, err
	}

	f.mu.Lock()
	f.session = session
	f.challenge = nil
	f.method = ""
	f.creds = Credentials{}
	f.mu.Unlock()

	f.client.emitAudit(ctx, auditEventTwoFactorSuccess, creds.Email, user.ID, true, nil, nil)
	f.client.emitAudit(ctx, auditEventLoginSuccess, creds.Email, user.ID, true, nil, nil)
	f.end(StateAuthenticated)
	return session, nil
}

// signInWithTwoFactor re-authenticates on the personal sign-in path with the
// original credentials plus the 2FA proof. Re-sending the password is the
// existing wire contract; see the package security notes.
func (c *Client) signInWithTwoFactor(
	ctx context.Context,
	creds Credentials,
	method ContactKind,
	verifyID string,
) (*User, string, error) {
	resp, err := c.send(ctx, apiRequest{
		method: http.MethodPost,
		path:   c.config.Endpoints.SignIn,
		body: wire.TwoFactorSignInRequest{
			Email:      creds.Email,
			Password:   creds.Password,
			MethodType: string(method),
			VerifyID:   verifyID,
		},
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
