package authkit

import (
	"context"
	"errors"
	"testing"
)

func TestResetFlowRoundTrip(t *testing.T) {
	backend := newFakeBackend(t)
	backend.addAccount("a@b.com", "oldpassword", "tok123", patientUser("u1", "Jo"))
	client := newTestClient(t, backend)

	flow := client.NewResetFlow()
	message, err := flow.RequestEmailVerification(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("RequestEmailVerification failed: %v", err)
	}
	if message != "verification code sent" {
		t.Fatalf("expected server message, got %q", message)
	}

	if err := flow.ConfirmResetCode(context.Background(), fakeOTP, "newpassword", "newpassword"); err != nil {
		t.Fatalf("ConfirmResetCode failed: %v", err)
	}

	// The old password is rejected, the new one signs in.
	_, err = client.NewLoginFlow().Submit(context.Background(), Credentials{Email: "a@b.com", Password: "oldpassword"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 401 {
		t.Fatalf("expected old password rejected with 401, got %v", err)
	}
	result, err := client.NewLoginFlow().Submit(context.Background(), Credentials{Email: "a@b.com", Password: "newpassword"})
	if err != nil {
		t.Fatalf("expected new password to sign in, got %v", err)
	}
	if result.Session == nil {
		t.Fatal("expected a finalized session")
	}
}

func TestResetFlowValidatesPasswordPairBeforeOTP(t *testing.T) {
	backend := newFakeBackend(t)
	client := newTestClient(t, backend)

	flow := client.NewResetFlow()
	if _, err := flow.RequestEmailVerification(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("RequestEmailVerification failed: %v", err)
	}
	confirms := backend.callCount("PUT", DefaultConfig().Endpoints.Verification)

	// Password problems must be reported even when the OTP is also bad:
	// the pair is validated first.
	err := flow.ConfirmResetCode(context.Background(), "bad", "short", "short")
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "newPassword" {
		t.Fatalf("expected newPassword field error first, got %v", err)
	}

	err = flow.ConfirmResetCode(context.Background(), "bad", "newpassword", "different")
	if !errors.As(err, &fieldErr) || fieldErr.Field != "confirmPassword" {
		t.Fatalf("expected confirmPassword field error, got %v", err)
	}

	err = flow.ConfirmResetCode(context.Background(), "bad", "newpassword", "newpassword")
	if !errors.As(err, &fieldErr) || fieldErr.Field != "otp" {
		t.Fatalf("expected otp field error after passwords pass, got %v", err)
	}

	if got := backend.callCount("PUT", DefaultConfig().Endpoints.Verification); got != confirms {
		t.Fatal("expected no network calls while validation fails")
	}
}

func TestResetFlowRequiresRequestBeforeConfirm(t *testing.T) {
	backend := newFakeBackend(t)
	client := newTestClient(t, backend)

	err := client.NewResetFlow().ConfirmResetCode(context.Background(), fakeOTP, "newpassword", "newpassword")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition without a verifyId, got %v", err)
	}
}

func TestResetFlowWrongCodeSurfacesMessage(t *testing.T) {
	backend := newFakeBackend(t)
	backend.addAccount("a@b.com", "oldpassword", "tok123", patientUser("u1", "Jo"))
	client := newTestClient(t, backend)

	flow := client.NewResetFlow()
	if _, err := flow.RequestEmailVerification(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("RequestEmailVerification failed: %v", err)
	}

	err := flow.ConfirmResetCode(context.Background(), "000000", "newpassword", "newpassword")
	if !errors.Is(err, ErrCodeRejected) {
		t.Fatalf("expected ErrCodeRejected, got %v", err)
	}

	// The mutation never ran, so the old password still works.
	if _, err := client.NewLoginFlow().Submit(context.Background(), Credentials{Email: "a@b.com", Password: "oldpassword"}); err != nil {
		t.Fatalf("expected old password still valid, got %v", err)
	}
}

func TestResetFlowNeverTouchesCredentialStore(t *testing.T) {
	backend := newFakeBackend(t)
	backend.addAccount("a@b.com", "oldpassword", "tok123", patientUser("u1", "Jo"))
	client := newTestClient(t, backend)

	flow := client.NewResetFlow()
	if _, err := flow.RequestEmailVerification(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("RequestEmailVerification failed: %v", err)
	}
	if err := flow.ConfirmResetCode(context.Background(), fakeOTP, "newpassword", "newpassword"); err != nil {
		t.Fatalf("ConfirmResetCode failed: %v", err)
	}

	token, _ := client.Store().Token(context.Background())
	if token != "" {
		t.Fatal("expected reset to leave the credential store untouched")
	}
}
