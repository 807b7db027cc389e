package authkit

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Pure per-field validators. Each runs explicitly before a submit action and
// resolves entirely client-side; a failure blocks the network call. No
// implicit background re-validation exists at this layer.

// ValidateEmail checks presence, surrounding whitespace, and address shape.
func ValidateEmail(email string) error {
	if email == "" {
		return &FieldError{Field: "email", Reason: "is required"}
	}
	if strings.TrimSpace(email) != email {
		return &FieldError{Field: "email", Reason: "must not contain leading or trailing spaces"}
	}
	if !emailPattern.MatchString(email) {
		return &FieldError{Field: "email", Reason: "is not a valid email address"}
	}
	return nil
}

// ValidatePassword checks presence, surrounding whitespace, and minimum
// length. Login and sign-up/reset call it with different minimums.
func ValidatePassword(field, password string, minLen int) error {
	if password == "" {
		return &FieldError{Field: field, Reason: "is required"}
	}
	if strings.TrimSpace(password) != password {
		return &FieldError{Field: field, Reason: "must not contain leading or trailing spaces"}
	}
	if len(password) < minLen {
		return &FieldError{Field: field, Reason: fmt.Sprintf("must be at least %d characters", minLen)}
	}
	return nil
}

// ValidatePasswordPair validates a new password and its confirmation
// together: both non-empty, both at least minLen, and equal.
func ValidatePasswordPair(newPassword, confirmPassword string, minLen int) error {
	if err := ValidatePassword("newPassword", newPassword, minLen); err != nil {
		return err
	}
	if confirmPassword == "" {
		return &FieldError{Field: "confirmPassword", Reason: "is required"}
	}
	if newPassword != confirmPassword {
		return &FieldError{Field: "confirmPassword", Reason: "does not match the new password"}
	}
	return nil
}

// ValidateOTP checks the one-time code is exactly digits of the configured
// length.
func ValidateOTP(code string, digits int) error {
	if code == "" {
		return &FieldError{Field: "otp", Reason: "is required"}
	}
	if len(code) != digits {
		return &FieldError{Field: "otp", Reason: fmt.Sprintf("must be exactly %d digits", digits)}
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return &FieldError{Field: "otp", Reason: "must contain digits only"}
		}
	}
	return nil
}

// ValidateRequired rejects empty or whitespace-padded values for a named
// field.
func ValidateRequired(field, value string) error {
	if value == "" {
		return &FieldError{Field: field, Reason: "is required"}
	}
	if strings.TrimSpace(value) != value {
		return &FieldError{Field: field, Reason: "must not contain leading or trailing spaces"}
	}
	return nil
}
