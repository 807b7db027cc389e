// Package credential persists the client's session credential: the session
// token extracted from the access_token cookie, the display name and user id
// of the signed-in account, the remembered email, the remember-me flag, and
// the cached theme preference. Each key is independently optional, so no
// schema versioning exists.
//
// Three implementations ship: Memory for tests and ephemeral sessions, File
// for on-device persistence (sealed at rest), and Redis for headless
// deployments of the core. All implementations serialize writes internally;
// callers never need an external lock.
package credential

import "context"

// Store is the credential store contract. Clear erases the session fields
// only; ClearAll additionally erases the remembered email, the remember-me
// flag, and the theme preference, leaving zero residual personalization.
type Store interface {
	SaveToken(ctx context.Context, token string) error
	Token(ctx context.Context) (string, error)

	SaveDisplayName(ctx context.Context, name string) error
	DisplayName(ctx context.Context) (string, error)

	SaveUserID(ctx context.Context, id string) error
	UserID(ctx context.Context) (string, error)

	SaveRememberedEmail(ctx context.Context, email string) error
	RememberedEmail(ctx context.Context) (string, error)

	SetRememberMe(ctx context.Context, remember bool) error
	RememberMe(ctx context.Context) (bool, error)

	SaveTheme(ctx context.Context, theme string) error
	Theme(ctx context.Context) (string, error)

	Clear(ctx context.Context) error
	ClearAll(ctx context.Context) error
}

// Record is the full persisted shape. File and Redis stores round-trip it as
// a unit; Memory holds it directly.
type Record struct {
	Token           string `json:"token,omitempty"`
	DisplayName     string `json:"display_name,omitempty"`
	UserID          string `json:"user_id,omitempty"`
	RememberedEmail string `json:"remembered_email,omitempty"`
	RememberMe      bool   `json:"remember_me,omitempty"`
	Theme           string `json:"theme,omitempty"`
}

// clearSession zeroes the session fields, preserving personalization.
func (r *Record) clearSession() {
	r.Token = ""
	r.DisplayName = ""
	r.UserID = ""
}
