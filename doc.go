// Package authkit is the authentication and session core of the DrainSense
// mobile client. It speaks to the existing DrainSense REST backend: credential
// sign-in (personal and organization), optional two-factor authentication over
// email or SMS one-time codes, password reset reusing the same verification
// primitive, and session-cookie persistence through a pluggable credential
// store.
//
// The package is designed around one Client built once at application start
// through [Builder.Build] and shared by every flow. Client methods are safe to
// call from multiple goroutines; the interactive flows ([LoginFlow],
// [ResetFlow]) hold per-attempt state and expect one logical user driving them
// at a time.
//
// # Architecture boundaries
//
// authkit is the public surface. It exposes [Client], [Builder], [Config],
// the flow types, and value types (Session, TwoFactorChallenge,
// Verification). Wire envelopes and request codecs live under internal/ and
// are never exported. Credential persistence lives in the credential
// subpackage behind [credential.Store].
//
// # What this package must NOT do
//
//   - Interpret HTTP status codes differently per flow; classification is
//     centralized and identical everywhere.
//   - Issue any network request while the reachability flag reports offline.
//   - Hold a session as authenticated while a two-factor challenge is
//     pending, or for an organization-role or closed account.
//
// # Wire contract
//
// The session token travels as an HTTP cookie named access_token and is
// replayed on authenticated requests as a Cookie header rather than an
// Authorization bearer. The verification endpoint overloads its request shape
// between send and confirm; both quirks are backend compatibility
// requirements and are preserved at the wire boundary only.
package authkit
