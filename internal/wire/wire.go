// Package wire holds the JSON shapes of the DrainSense backend. The shapes
// mirror the server contract field for field, including its quirks; nothing
// here is part of the public authkit surface.
package wire

import "encoding/json"

// Envelope is the uniform response frame: every endpoint that carries domain
// data wraps it as {success, data?, message?, error?, errors?, timestamp}.
// Data may be absent on success (operation succeeded, no payload).
type Envelope[T any] struct {
	Success   bool     `json:"success"`
	Data      *T       `json:"data"`
	Message   string   `json:"message"`
	Error     string   `json:"error"`
	Errors    []string `json:"errors"`
	Timestamp string   `json:"timestamp"`
}

// ErrorBody is the loose {message?, error?} shape 4xx responses may carry.
type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Text returns the most specific message the body carries, or "".
func (b ErrorBody) Text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// DecodeErrorBody tolerantly parses an error body; a malformed body yields
// the zero value rather than an error, since error bodies are best-effort.
func DecodeErrorBody(data []byte) ErrorBody {
	var body ErrorBody
	_ = json.Unmarshal(data, &body)
	return body
}

// VerificationRequest is the single wire shape behind both verification
// operations. The type field is overloaded by the backend: on send it carries
// the contact kind ("Email"/"PhoneNumber"), on confirm it carries the raw OTP
// digits while value carries the verifyId. Construct values only through
// SendCodeRequest and ConfirmCodeRequest so the overload never leaks.
type VerificationRequest struct {
	Type          string `json:"type"`
	Value         string `json:"value"`
	IsSendRequest bool   `json:"isSendRequest"`
	UserCheck     bool   `json:"userCheck"`
	Contact       string `json:"contact,omitempty"`
}

// SendCodeRequest builds the issue-a-code variant. userCheck=true means the
// target must belong to an existing account (sign-up/2FA path); the
// forgot-password path sends false.
func SendCodeRequest(kind, target string, userCheck bool) VerificationRequest {
	return VerificationRequest{
		Type:          kind,
		Value:         target,
		IsSendRequest: true,
		UserCheck:     userCheck,
	}
}

// ConfirmCodeRequest builds the confirm variant. contact is echoed only so
// the backend can route SMS vs email confirmation; lookup is by verifyId.
func ConfirmCodeRequest(code, verifyID, contact string) VerificationRequest {
	return VerificationRequest{
		Type:          code,
		Value:         verifyID,
		IsSendRequest: false,
		Contact:       contact,
	}
}

// VerificationData is the payload of a successful send-code response.
type VerificationData struct {
	VerifyID string `json:"verifyId"`
}

// SignInRequest is the personal and organization sign-in body.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TwoFactorSignInRequest re-authenticates with the original credentials plus
// 2FA proof. The server issues the session cookie only from this call, never
// from the code confirmation itself. Password travels in plaintext alongside
// the proof; that is the existing wire contract (security-review item, not a
// client choice).
type TwoFactorSignInRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	MethodType string `json:"methodType"`
	VerifyID   string `json:"verifyId"`
}

// ResetPasswordRequest is the final reset mutation. The OTP rides along with
// the verifyId because the endpoint re-validates the code independently of
// the prior confirmation call.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	VerifyID    string `json:"verifyId"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// SignUpRequest is the registration body. Verify ids prove the contacts were
// confirmed in this app session.
type SignUpRequest struct {
	Email         string `json:"email"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	Password      string `json:"password"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName,omitempty"`
	EmailVerifyID string `json:"emailVerifyId"`
	PhoneVerifyID string `json:"phoneVerifyId,omitempty"`
}

// PushTokenRequest registers a device push-notification token.
type PushTokenRequest struct {
	Token string `json:"token"`
}
