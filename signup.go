package authkit

import (
	"context"
	"fmt"
	"net/http"

	"github.com/drainsense/authkit/internal/wire"
)

// Registration is the sign-up input. Email is mandatory; the phone number is
// optional but must be verified when present.
type Registration struct {
	Email           string
	PhoneNumber     string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

// Register validates the form and posts the registration. Each contact must
// already be confirmed through RequestCode/ConfirmCode in this app session;
// the cached verifyIds prove it, so an unchanged field never forces the user
// through verification twice.
//
// Registration does not sign the user in; the flow returns to the login
// screen with no credential written.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	if err := ValidateEmail(reg.Email); err != nil {
		return err
	}
	if err := ValidatePasswordPair(reg.Password, reg.ConfirmPassword, c.config.Validation.NewPasswordMinLen); err != nil {
		return err
	}
	if err := ValidateRequired("firstName", reg.FirstName); err != nil {
		return err
	}

	emailVerifyID, ok := c.VerifiedContact(reg.Email)
	if !ok {
		return fmt.Errorf("%w: %s", ErrContactNotVerified, reg.Email)
	}
	var phoneVerifyID string
	if reg.PhoneNumber != "" {
		phoneVerifyID, ok = c.VerifiedContact(reg.PhoneNumber)
		if !ok {
			return fmt.Errorf("%w: %s", ErrContactNotVerified, reg.PhoneNumber)
		}
	}

	resp, err := c.send(ctx, apiRequest{
		method: http.MethodPost,
		path:   c.config.Endpoints.SignUp,
		body: wire.SignUpRequest{
			Email:         reg.Email,
			PhoneNumber:   reg.PhoneNumber,
			Password:      reg.Password,
			FirstName:     reg.FirstName,
			LastName:      reg.LastName,
			EmailVerifyID: emailVerifyID,
			PhoneVerifyID: phoneVerifyID,
		},
	})
	if err != nil {
		c.emitAudit(ctx, auditEventSignUp, reg.Email, "", false, err, nil)
		return err
	}

	envelope, err := decodeEnvelope[struct{}](ctx, c, resp)
	if err != nil {
		c.emitAudit(ctx, auditEventSignUp, reg.Email, "", false, err, nil)
		return err
	}
	if !envelope.Success {
		err := &APIError{Status: resp.status, Message: envelope.Message}
		c.emitAudit(ctx, auditEventSignUp, reg.Email, "", false, err, nil)
		return err
	}

	c.emitAudit(ctx, auditEventSignUp, reg.Email, "", true, nil, nil)
	return nil
}
