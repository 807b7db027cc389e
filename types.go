package authkit

// ContactKind selects the channel a one-time code is delivered over. The
// values are the literal strings the backend expects in the verification
// request's type field.
type ContactKind string

const (
	// ContactEmail is an exported constant or variable used by the
	// authentication core.
	ContactEmail ContactKind = "Email"
	// ContactPhone is an exported constant or variable used by the
	// authentication core.
	ContactPhone ContactKind = "PhoneNumber"
)

// AccountRole mirrors the backend's role strings verbatim.
type AccountRole string

const (
	// RolePatient is an exported constant or variable used by the
	// authentication core.
	RolePatient AccountRole = "Patient"
	// RoleNurse is an exported constant or variable used by the
	// authentication core.
	RoleNurse AccountRole = "Nurse"
	// RoleDoctor is an exported constant or variable used by the
	// authentication core.
	RoleDoctor AccountRole = "Doctor"
	// RoleOrganization is an exported constant or variable used by the
	// authentication core. Organization accounts never hold a mobile session.
	RoleOrganization AccountRole = "Organization"
)

// AccountStatus mirrors the backend's status strings verbatim.
type AccountStatus string

const (
	// StatusActive is an exported constant or variable used by the
	// authentication core.
	StatusActive AccountStatus = "Active"
	// StatusClosed is an exported constant or variable used by the
	// authentication core. Closed accounts never hold a mobile session.
	StatusClosed AccountStatus = "Closed"
)

// User is the account record returned by the sign-in endpoints. Fields map
// 1:1 onto the backend JSON; absent fields decode to their zero values, and a
// success-without-data personal sign-in yields the zero User.
type User struct {
	ID                 string        `json:"id"`
	FirstName          string        `json:"firstName"`
	LastName           string        `json:"lastName"`
	Role               AccountRole   `json:"role"`
	Status             AccountStatus `json:"status"`
	Auth2FAEmail       string        `json:"auth2faEmail"`
	Auth2FAPhoneNumber string        `json:"auth2faPhoneNumber"`
}

// supported reports whether the account may hold a mobile session. The gate
// runs before any two-factor evaluation.
func (u *User) supported() bool {
	return u.Role != RoleOrganization && u.Status != StatusClosed
}

// twoFactorConfigured reports whether the account has at least one 2FA
// contact method set.
func (u *User) twoFactorConfigured() bool {
	return u.Auth2FAEmail != "" || u.Auth2FAPhoneNumber != ""
}

// displayName joins first and optional last name with a single space.
func (u *User) displayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	if u.FirstName == "" {
		return u.LastName
	}
	return u.FirstName + " " + u.LastName
}

// Credentials is the per-attempt sign-in input. It lives in memory for the
// duration of one login flow; only the email is ever persisted, and only when
// RememberMe is set.
type Credentials struct {
	Email        string
	Password     string
	Organization bool
	RememberMe   bool
}

// TwoFactorChallenge is created when a successful primary-credential check
// reveals one or both 2FA contact methods on the account. Exactly one round
// (email or phone, user-selected) must complete before finalization. The
// record is constructed once per flow and discarded on exit, never partially
// populated.
type TwoFactorChallenge struct {
	EmailTarget string
	PhoneTarget string
	VerifyID    string
}

// Methods lists the contact kinds the challenge offers. When both are
// configured the caller must present an explicit choice; the flow never
// auto-picks.
func (c *TwoFactorChallenge) Methods() []ContactKind {
	var methods []ContactKind
	if c.EmailTarget != "" {
		methods = append(methods, ContactEmail)
	}
	if c.PhoneTarget != "" {
		methods = append(methods, ContactPhone)
	}
	return methods
}

func (c *TwoFactorChallenge) target(kind ContactKind) string {
	switch kind {
	case ContactEmail:
		return c.EmailTarget
	case ContactPhone:
		return c.PhoneTarget
	default:
		return ""
	}
}

// LoginResult is returned by LoginFlow.Submit. Either the session is final
// (Session set) or a two-factor round is required (Challenge set), never
// both.
type LoginResult struct {
	TwoFactorRequired bool
	Challenge         *TwoFactorChallenge
	Session           *Session
}

// Verification is the outcome of requesting a one-time code. VerifyID
// correlates the later confirmation; requesting a new code for the same
// target invalidates any previous id server-side, so callers must always use
// the most recent one.
type Verification struct {
	VerifyID string
	Message  string
}

// Confirmation is the outcome of submitting a one-time code. OK=false is a
// business-level rejection (wrong or expired code) carrying the server's own
// message; it is distinct from the transport error taxonomy.
type Confirmation struct {
	OK      bool
	Message string
}

// PolicyKind selects a policy document served by the backend.
type PolicyKind string

const (
	// PolicyTerms is an exported constant or variable used by the
	// authentication core.
	PolicyTerms PolicyKind = "terms"
	// PolicyPrivacy is an exported constant or variable used by the
	// authentication core.
	PolicyPrivacy PolicyKind = "privacy"
)

// PolicyDocument is a terms/privacy document fetched during sign-up.
type PolicyDocument struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
