package authkit

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines a public type used by authkit APIs.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable unless documented otherwise.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Endpoints  EndpointConfig   `yaml:"endpoints"`
	Validation ValidationConfig `yaml:"validation"`
	TwoFactor  TwoFactorConfig  `yaml:"two_factor"`
}

/*
====================================
HTTP CONFIG
====================================
*/

// HTTPConfig defines a public type used by authkit APIs.
//
// HTTPConfig instances are intended to be configured during initialization and
// then treated as immutable unless documented otherwise.
type HTTPConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

/*
====================================
ENDPOINT CONFIG
====================================
*/

// EndpointConfig holds the backend paths, relative to the base URL. Paths are
// configuration, never hard-coded at call sites, so a deployment can remap
// them without a code change. SignIn doubles as the 2FA login path; the body
// shape distinguishes the two calls. Verification doubles as send (POST) and
// confirm (PUT).
type EndpointConfig struct {
	SignIn             string `yaml:"sign_in"`
	OrganizationSignIn string `yaml:"organization_sign_in"`
	SignUp             string `yaml:"sign_up"`
	Verification       string `yaml:"verification"`
	ResetPassword      string `yaml:"reset_password"`
	PushToken          string `yaml:"push_token"`
	PolicyTerms        string `yaml:"policy_terms"`
	PolicyPrivacy      string `yaml:"policy_privacy"`
}

/*
====================================
VALIDATION CONFIG
====================================
*/

// ValidationConfig defines a public type used by authkit APIs.
//
// Login and new-password minimum lengths differ on purpose: existing accounts
// predate the stricter sign-up/reset policy.
type ValidationConfig struct {
	LoginPasswordMinLen int `yaml:"login_password_min_len"`
	NewPasswordMinLen   int `yaml:"new_password_min_len"`
}

/*
====================================
TWO-FACTOR CONFIG
====================================
*/

// TwoFactorConfig defines a public type used by authkit APIs.
//
// TwoFactorConfig instances are intended to be configured during
// initialization and then treated as immutable unless documented otherwise.
type TwoFactorConfig struct {
	OTPDigits int `yaml:"otp_digits"`
}

// UnmarshalYAML decodes the http section, accepting timeout as a Go duration
// string ("30s", "1m"). Empty keys keep their prior (default) values.
func (h *HTTPConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		BaseURL   string `yaml:"base_url"`
		Timeout   string `yaml:"timeout"`
		UserAgent string `yaml:"user_agent"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.BaseURL != "" {
		h.BaseURL = raw.BaseURL
	}
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("http.timeout: %w", err)
		}
		h.Timeout = d
	}
	if raw.UserAgent != "" {
		h.UserAgent = raw.UserAgent
	}
	return nil
}

// DefaultConfig returns the configuration matching the production DrainSense
// backend. Tests and alternate deployments override BaseURL and paths.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "drainsense-authkit/1.0",
		},
		Endpoints: EndpointConfig{
			SignIn:             "/api/v1/auth/sign-in",
			OrganizationSignIn: "/api/v1/auth/organization/sign-in",
			SignUp:             "/api/v1/auth/sign-up",
			Verification:       "/api/v1/verifications",
			ResetPassword:      "/api/v1/auth/reset-password",
			PushToken:          "/api/v1/notifications/device-token",
			PolicyTerms:        "/api/v1/policies/terms",
			PolicyPrivacy:      "/api/v1/policies/privacy",
		},
		Validation: ValidationConfig{
			LoginPasswordMinLen: 6,
			NewPasswordMinLen:   8,
		},
		TwoFactor: TwoFactorConfig{
			OTPDigits: 6,
		},
	}
}

// LoadConfig reads a YAML configuration file and overlays it on
// DefaultConfig, so partial files only override the keys they mention.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for values the Client cannot operate
// with. It is called by Builder.Build; direct construction should call it
// too.
func (c Config) Validate() error {
	if c.HTTP.BaseURL == "" {
		return errors.New("http.base_url is required")
	}
	u, err := url.Parse(c.HTTP.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("http.base_url must be an absolute URL")
	}
	if c.HTTP.Timeout <= 0 {
		return errors.New("http.timeout must be positive")
	}
	for name, p := range map[string]string{
		"sign_in":              c.Endpoints.SignIn,
		"organization_sign_in": c.Endpoints.OrganizationSignIn,
		"sign_up":              c.Endpoints.SignUp,
		"verification":         c.Endpoints.Verification,
		"reset_password":       c.Endpoints.ResetPassword,
		"push_token":           c.Endpoints.PushToken,
		"policy_terms":         c.Endpoints.PolicyTerms,
		"policy_privacy":       c.Endpoints.PolicyPrivacy,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("endpoints.%s must start with /", name)
		}
	}
	if c.Validation.LoginPasswordMinLen <= 0 || c.Validation.NewPasswordMinLen <= 0 {
		return errors.New("validation minimum lengths must be positive")
	}
	if c.TwoFactor.OTPDigits <= 0 {
		return errors.New("two_factor.otp_digits must be positive")
	}
	return nil
}

func (c Config) policyPath(kind PolicyKind) string {
	switch kind {
	case PolicyPrivacy:
		return c.Endpoints.PolicyPrivacy
	default:
		return c.Endpoints.PolicyTerms
	}
}
