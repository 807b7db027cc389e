package authkit

import (
	"errors"
	"net/http"

	"github.com/drainsense/authkit/credential"
)

// Builder defines a public type used by authkit APIs.
//
// Builder instances are intended to be configured during initialization and
// then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	http   *http.Client
	creds  credential.Store
	reach  Reachability
	audit  AuditSink

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithBaseURL overrides only the backend base URL.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.HTTP.BaseURL = baseURL
	return b
}

// WithHTTPClient supplies the underlying HTTP client. Cookie jars are
// deliberately not used; the session cookie is extracted and replayed
// explicitly so the credential store stays the single source of truth.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.http = client
	return b
}

// WithCredentialStore supplies the credential store. Defaults to an
// in-memory store, which forgets everything on process exit.
func (b *Builder) WithCredentialStore(store credential.Store) *Builder {
	b.creds = store
	return b
}

// WithReachability supplies the connectivity flag consulted before every
// network call. Defaults to always-online.
func (b *Builder) WithReachability(reach Reachability) *Builder {
	b.reach = reach
	return b
}

// WithAuditSink supplies the audit sink. Defaults to NoOpSink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.audit = sink
	return b
}

// Build validates the configuration and assembles an immutable Client. A
// Builder builds at most once.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	httpClient := b.http
	if httpClient == nil {
		httpClient = &http.Client{Timeout: b.config.HTTP.Timeout}
	}
	store := b.creds
	if store == nil {
		store = credential.NewMemoryStore()
	}
	reach := b.reach
	if reach == nil {
		reach = alwaysOnline{}
	}
	sink := b.audit
	if sink == nil {
		sink = NoOpSink{}
	}

	b.built = true
	return &Client{
		config:   b.config,
		http:     httpClient,
		creds:    store,
		reach:    reach,
		audit:    sink,
		contacts: map[string]string{},
	}, nil
}
