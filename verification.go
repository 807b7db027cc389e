package authkit

import (
	"context"
	"net/http"

	"github.com/drainsense/authkit/internal/wire"
)

// RequestCode asks the backend to deliver a one-time code to target over the
// given channel. forgotPassword selects the path that does not require the
// target to belong to an existing account; sign-up and 2FA use false.
//
// The returned VerifyID supersedes any earlier one for the same target: the
// backend invalidates previous ids implicitly, so callers must hold and use
// only the most recent.
func (c *Client) RequestCode(
	ctx context.Context,
	kind ContactKind,
	target string,
	forgotPassword bool,
) (*Verification, error) {
	resp, err := c.send(ctx, apiRequest{
		method: http.MethodPost,
		path:   c.config.Endpoints.Verification,
		body:   wire.SendCodeRequest(string(kind), target, !forgotPassword),
	})
	if err != nil {
		return nil, err
	}

	envelope, err := decodeEnvelope[wire.VerificationData](ctx, c, resp)
	if err != nil {
		c.emitAudit(ctx, auditEventCodeRequested, target, "", false, err, nil)
		return nil, err
	}
	if envelope.Data == nil || envelope.Data.VerifyID == "" {
		c.emitAudit(ctx, auditEventCodeRequested, target, "", false, ErrNoData, nil)
		return nil, ErrNoData
	}

	c.emitAudit(ctx, auditEventCodeRequested, target, "", true, nil, map[string]string{
		"kind": string(kind),
	})
	return &Verification{
		VerifyID: envelope.Data.VerifyID,
		Message:  envelope.Message,
	}, nil
}

// ConfirmCode submits a previously delivered code. contact is echoed solely
// so the backend can route SMS vs email confirmation; the lookup itself is by
// verifyID.
//
// A success=false body is a business outcome (wrong or expired code), not a
// classifier error: the Confirmation carries the server's message and OK is
// false. Confirmed contacts are cached for the app session so an unchanged
// field never forces re-verification.
func (c *Client) ConfirmCode(
	ctx context.Context,
	code string,
	verifyID string,
	contact string,
) (*Confirmation, error) {
	resp, err := c.send(ctx, apiRequest{
		method: http.MethodPut,
		path:   c.config.Endpoints.Verification,
		body:   wire.ConfirmCodeRequest(code, verifyID, contact),
	})
	if err != nil {
		return nil, err
	}

	envelope, err := decodeEnvelope[struct{}](ctx, c, resp)
	if err != nil {
		c.emitAudit(ctx, auditEventCodeConfirmed, contact, "", false, err, nil)
		return nil, err
	}

	if !envelope.Success {
		c.emitAudit(ctx, auditEventCodeRejected, contact, "", false, nil, nil)
		return &Confirmation{OK: false, Message: envelope.Message}, nil
	}

	c.rememberContact(contact, verifyID)
	c.emitAudit(ctx, auditEventCodeConfirmed, contact, "", true, nil, nil)
	return &Confirmation{OK: true, Message: envelope.Message}, nil
}
