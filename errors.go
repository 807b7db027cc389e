package authkit

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInternet is returned before any HTTP request is issued when the
	// reachability flag reports offline.
	ErrNoInternet = errors.New("no internet connection")
	// ErrInvalidURL is returned when the base URL and path do not form a
	// resolvable request URL.
	ErrInvalidURL = errors.New("invalid request url")
	// ErrCancelled is returned when the request context is cancelled before
	// a response is received.
	ErrCancelled = errors.New("request cancelled")
	// ErrInvalidResponse is returned when the transport produces something
	// that cannot be resolved to an HTTP status/headers frame.
	ErrInvalidResponse = errors.New("invalid server response")
	// ErrDecoding is returned when a 2xx body does not decode into the
	// expected shape. The raw decode error is audited, never surfaced.
	ErrDecoding = errors.New("response decoding failed")
	// ErrNoData is returned when a flow requires a payload and the envelope
	// carried none.
	ErrNoData = errors.New("response contained no data")
	// ErrUnauthorized is the generic 401 outcome used when the error body
	// carries no message of its own.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnsupportedAccount is the fixed outcome for organization-role or
	// closed accounts detected after a successful sign-in response.
	ErrUnsupportedAccount = errors.New("account not supported")
	// ErrFlowBusy is returned when a flow transition is invoked while a
	// previous one is still in flight.
	ErrFlowBusy = errors.New("flow operation already in flight")
	// ErrInvalidTransition is returned when a flow method is called from a
	// state that does not permit it.
	ErrInvalidTransition = errors.New("invalid flow transition")
	// ErrMethodNotConfigured is returned when a two-factor method is selected
	// that the account does not have configured.
	ErrMethodNotConfigured = errors.New("two-factor method not configured")
	// ErrCodeRejected wraps the server's business-level rejection of a
	// one-time code (wrong or expired). The server message is appended.
	ErrCodeRejected = errors.New("verification code rejected")
	// ErrContactNotVerified is returned by Register when a contact has not
	// completed verification in this app session.
	ErrContactNotVerified = errors.New("contact not verified")
	// ErrClientNotReady is returned when a Client is used before Build
	// completed or after Close.
	ErrClientNotReady = errors.New("client not ready")
)

// APIError carries a client-error (4xx) message taken from the response body,
// or a generic message embedding the status when the body had none. Flows may
// show Message verbatim; every other classified error maps to a generic
// user-facing string.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed (status %d)", e.Status)
}

// ServerError represents a 5xx outcome. The body is treated as opaque; the
// message never comes from it.
type ServerError struct {
	Code int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d)", e.Code)
}

// UnknownError wraps outcomes outside the closed taxonomy: unexpected status
// ranges or transport failures with no narrower classification.
type UnknownError struct {
	Status int
	Cause  error
}

func (e *UnknownError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unknown error: %v", e.Cause)
	}
	return fmt.Sprintf("unknown error (status %d)", e.Status)
}

func (e *UnknownError) Unwrap() error { return e.Cause }

// FieldError is a client-side validation failure scoped to a single input
// field. Field errors never reach the network.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// IsFieldError reports whether err is (or wraps) a validation failure.
func IsFieldError(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe)
}
