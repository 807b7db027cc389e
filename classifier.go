package authkit

import (
	"context"
	"encoding/json"

	"github.com/drainsense/authkit/internal/wire"
)

// classify maps a non-2xx response to the closed error taxonomy. The mapping
// is identical for every flow; no caller may special-case status
// interpretation.
//
//	401      → body message as APIError, else ErrUnauthorized
//	400–499  → body message as APIError, else a generic message with the code
//	500–599  → ServerError(code), body always opaque
//	other    → UnknownError(status)
func classify(resp *apiResponse) error {
	switch {
	case resp.status >= 200 && resp.status <= 299:
		return nil
	case resp.status == 401:
		if msg := wire.DecodeErrorBody(resp.body).Text(); msg != "" {
			return &APIError{Status: 401, Message: msg}
		}
		return ErrUnauthorized
	case resp.status >= 400 && resp.status <= 499:
		if msg := wire.DecodeErrorBody(resp.body).Text(); msg != "" {
			return &APIError{Status: resp.status, Message: msg}
		}
		return &APIError{Status: resp.status}
	case resp.status >= 500 && resp.status <= 599:
		return &ServerError{Code: resp.status}
	default:
		return &UnknownError{Status: resp.status}
	}
}

// decodeEnvelope classifies the response, then decodes the uniform envelope.
// A 2xx with an undecodable body maps to ErrDecoding; the raw cause goes to
// the audit sink, never to the user.
func decodeEnvelope[T any](ctx context.Context, c *Client, resp *apiResponse) (*wire.Envelope[T], error) {
	if err := classify(resp); err != nil {
		return nil, err
	}
	if len(resp.body) == 0 {
		return nil, ErrNoData
	}

	var envelope wire.Envelope[T]
	if err := json.Unmarshal(resp.body, &envelope); err != nil {
		c.emitAudit(ctx, auditEventDecodeFailure, "", "", false, err, nil)
		return nil, ErrDecoding
	}
	return &envelope, nil
}
