package authkit

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/drainsense/authkit/internal/wire"
)

// ResetFlow chains email verification, code confirmation, and the password
// mutation. It is a pure pre-authentication flow: it never touches the
// credential store or a login flow.
type ResetFlow struct {
	client *Client

	mu       sync.Mutex
	busy     bool
	email    string
	verifyID string
}

// NewResetFlow returns a fresh password-reset flow.
func (c *Client) NewResetFlow() *ResetFlow {
	return &ResetFlow{client: c}
}

// RequestEmailVerification validates the email and requests a reset code for
// it. The forgot-password context relaxes the backend's user-existence check
// relative to the sign-up path. On success the flow holds the verifyId and
// the UI moves to code entry; the returned message is the server's own.
func (f *ResetFlow) RequestEmailVerification(ctx context.Context, email string) (string, error) {
	if err := ValidateEmail(email); err != nil {
		return "", err
	}

	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return "", ErrFlowBusy
	}
	f.busy = true
	f.mu.Unlock()
	defer f.release()

	verification, err := f.client.RequestCode(ctx, ContactEmail, email, true)
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	f.email = email
	f.verifyID = verification.VerifyID
	f.mu.Unlock()
	return verification.Message, nil
}

// ConfirmResetCode validates inputs, confirms the code, then issues the
// distinct reset mutation.
//
// Validation order is fixed: the new-password pair first (both non-empty, at
// least the configured minimum, equal), then the OTP format. The code is not
// checked against the server until both pass.
//
// The mutation re-submits the OTP alongside the verifyId because the reset
// endpoint re-validates the code independently of the confirmation call just
// made. Success clears the flow entirely.
func (f *ResetFlow) ConfirmResetCode(ctx context.Context, otp, newPassword, confirmPassword string) error {
	if err := ValidatePasswordPair(newPassword, confirmPassword, f.client.config.Validation.NewPasswordMinLen); err != nil {
		return err
	}
	if err := ValidateOTP(otp, f.client.config.TwoFactor.OTPDigits); err != nil {
		return err
	}

	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return ErrFlowBusy
	}
	if f.verifyID == "" {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	f.busy = true
	email := f.email
	verifyID := f.verifyID
	f.mu.Unlock()
	defer f.release()

	confirmation, err := f.client.ConfirmCode(ctx, otp, verifyID, email)
	if err != nil {
		return err
	}
	if !confirmation.OK {
		if confirmation.Message != "" {
			return fmt.Errorf("%w: %s", ErrCodeRejected, confirmation.Message)
		}
		return ErrCodeRejected
	}

	if err := f.client.resetPassword(ctx, email, verifyID, otp, newPassword); err != nil {
		return err
	}

	f.mu.Lock()
	f.email = ""
	f.verifyID = ""
	f.mu.Unlock()
	return nil
}

func (f *ResetFlow) release() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

// resetPassword issues the PUT mutation that actually changes the password.
func (c *Client) resetPassword(ctx context.Context, email, verifyID, otp, newPassword string) error {
	resp, err := c.send(ctx, apiRequest{
		method: http.MethodPut,
		path:   c.config.Endpoints.ResetPassword,
		body: wire.ResetPasswordRequest{
			Email:       email,
			VerifyID:    verifyID,
			OTP:         otp,
			NewPassword: newPassword,
		},
	})
	if err != nil {
		c.emitAudit(ctx, auditEventPasswordReset, email, "", false, err, nil)
		return err
	}

	envelope, err := decodeEnvelope[struct{}](ctx, c, resp)
	if err != nil {
		c.emitAudit(ctx, auditEventPasswordReset, email, "", false, err, nil)
		return err
	}
	if !envelope.Success {
		err := &APIError{Status: resp.status, Message: envelope.Message}
		c.emitAudit(ctx, auditEventPasswordReset, email, "", false, err, nil)
		return err
	}

	c.emitAudit(ctx, auditEventPasswordReset, email, "", true, nil, nil)
	return nil
}
