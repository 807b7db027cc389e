package authkit

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestOfflineFailsFastWithZeroRequests(t *testing.T) {
	backend := newFakeBackend(t)
	cfg := DefaultConfig()
	cfg.HTTP.BaseURL = backend.server.URL

	reach := NewReachabilityFlag()
	reach.SetOnline(false)
	client, err := New().WithConfig(cfg).WithReachability(reach).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	ops := []func() error{
		func() error {
			_, err := client.NewLoginFlow().Submit(context.Background(), Credentials{Email: "a@b.com", Password: "secret1"})
			return err
		},
		func() error {
			_, err := client.RequestCode(context.Background(), ContactEmail, "a@b.com", false)
			return err
		},
		func() error {
			_, err := client.ConfirmCode(context.Background(), fakeOTP, "v1", "a@b.com")
			return err
		},
		func() error {
			_, err := client.NewResetFlow().RequestEmailVerification(context.Background(), "a@b.com")
			return err
		},
		func() error {
			_, err := client.PolicyDocument(context.Background(), PolicyTerms)
			return err
		},
	}
	for i, op := range ops {
		if err := op(); !errors.Is(err, ErrNoInternet) {
			t.Fatalf("op %d: expected ErrNoInternet, got %v", i, err)
		}
	}
	if backend.totalCalls() != 0 {
		t.Fatalf("expected zero HTTP requests while offline, got %d", backend.totalCalls())
	}

	// Back online the same client works.
	reach.SetOnline(true)
	if _, err := client.RequestCode(context.Background(), ContactEmail, "a@b.com", false); err != nil {
		t.Fatalf("expected request to succeed once online, got %v", err)
	}
}

func TestCancelledContextMapsToErrCancelled(t *testing.T) {
	backend := newFakeBackend(t)
	client := newTestClient(t, backend)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.RequestCode(ctx, ContactEmail, "a@b.com", false)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestAuthenticatedRequestReplaysCookieHeader(t *testing.T) {
	var gotCookie string
	mux := http.NewServeMux()
	mux.HandleFunc("/probe", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(sessionCookieName); err == nil {
			gotCookie = c.Value
		}
		w.WriteHeader(http.StatusOK)
	})
	probe := newProbeServer(t, mux)

	client, err := New().WithBaseURL(probe).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	_ = client.Store().SaveToken(context.Background(), "tok-abc")
	_, err = client.send(context.Background(), apiRequest{
		method:        http.MethodGet,
		path:          "/probe",
		authenticated: true,
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if gotCookie != "tok-abc" {
		t.Fatalf("expected access_token cookie replayed, got %q", gotCookie)
	}
}

func TestUnauthenticatedRequestOmitsCookie(t *testing.T) {
	cookieSeen := false
	mux := http.NewServeMux()
	mux.HandleFunc("/probe", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie(sessionCookieName); err == nil {
			cookieSeen = true
		}
		w.WriteHeader(http.StatusOK)
	})
	probe := newProbeServer(t, mux)

	client, err := New().WithBaseURL(probe).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	_ = client.Store().SaveToken(context.Background(), "tok-abc")

	if _, err := client.send(context.Background(), apiRequest{method: http.MethodGet, path: "/probe"}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if cookieSeen {
		t.Fatal("expected no cookie on an unauthenticated request")
	}
}

func TestRequestCarriesCorrelationID(t *testing.T) {
	var gotID string
	mux := http.NewServeMux()
	mux.HandleFunc("/probe", func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-Id")
		w.WriteHeader(http.StatusOK)
	})
	probe := newProbeServer(t, mux)

	client, err := New().WithBaseURL(probe).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if _, err := client.send(context.Background(), apiRequest{method: http.MethodGet, path: "/probe"}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if gotID == "" {
		t.Fatal("expected a generated X-Request-Id")
	}

	ctx := WithRequestID(context.Background(), "req-42")
	if _, err := client.send(ctx, apiRequest{method: http.MethodGet, path: "/probe"}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if gotID != "req-42" {
		t.Fatalf("expected caller-supplied request id, got %q", gotID)
	}
}

func TestMissingSessionCookieOnLoginIsInvalidResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/sign-in", func(w http.ResponseWriter, r *http.Request) {
		// Success envelope but no Set-Cookie.
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"u1","firstName":"Jo","role":"Patient","status":"Active"},"timestamp":"t"}`))
	})
	probe := newProbeServer(t, mux)

	client, err := New().WithBaseURL(probe).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	flow := client.NewLoginFlow()
	_, err = flow.Submit(context.Background(), Credentials{Email: "a@b.com", Password: "secret1"})
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse without a session cookie, got %v", err)
	}
	if flow.State() != StateUnauthenticated {
		t.Fatalf("expected unauthenticated state, got %v", flow.State())
	}
}
