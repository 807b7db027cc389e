package authkit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// fakeBackend is an in-process stand-in for the DrainSense REST API. It
// issues sequential verifyIds, honors only the most recent one per target,
// sets the access_token cookie exactly where the real backend does, and
// counts every request so offline tests can assert zero traffic.
type fakeBackend struct {
	t      *testing.T
	server *httptest.Server

	mu            sync.Mutex
	accounts      map[string]*fakeAccount
	latestVerify  map[string]string // normalized target → verifyId
	verifyTargets map[string]string // verifyId → target
	confirmed     map[string]bool   // verifyId → code confirmed
	verifySeq     int
	calls         map[string]int
	pushTokens    []string
	signups       []map[string]any
	failStatus    map[string]int // "METHOD path" → forced status
}

type fakeAccount struct {
	password     string
	organization bool
	token        string
	user         map[string]any
}

const fakeOTP = "123456"

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	b := &fakeBackend{
		t:             t,
		accounts:      map[string]*fakeAccount{},
		latestVerify:  map[string]string{},
		verifyTargets: map[string]string{},
		confirmed:     map[string]bool{},
		calls:         map[string]int{},
		failStatus:    map[string]int{},
	}

	cfg := DefaultConfig()
	r := mux.NewRouter()
	r.HandleFunc(cfg.Endpoints.SignIn, b.handleSignIn).Methods(http.MethodPost)
	r.HandleFunc(cfg.Endpoints.OrganizationSignIn, b.handleOrgSignIn).Methods(http.MethodPost)
	r.HandleFunc(cfg.Endpoints.Verification, b.handleSendCode).Methods(http.MethodPost)
	r.HandleFunc(cfg.Endpoints.Verification, b.handleConfirmCode).Methods(http.MethodPut)
	r.HandleFunc(cfg.Endpoints.ResetPassword, b.handleResetPassword).Methods(http.MethodPut)
	r.HandleFunc(cfg.Endpoints.SignUp, b.handleSignUp).Methods(http.MethodPost)
	r.HandleFunc(cfg.Endpoints.PushToken, b.handlePushToken).Methods(http.MethodPost)
	r.HandleFunc(cfg.Endpoints.PolicyTerms, b.handlePolicy("Terms of Service")).Methods(http.MethodGet)
	r.HandleFunc(cfg.Endpoints.PolicyPrivacy, b.handlePolicy("Privacy Policy")).Methods(http.MethodGet)

	b.server = httptest.NewServer(b.counted(r))
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) counted(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		b.mu.Lock()
		b.calls[key]++
		forced := b.failStatus[key]
		b.mu.Unlock()

		if forced != 0 {
			w.WriteHeader(forced)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *fakeBackend) addAccount(email, password, token string, user map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[email] = &fakeAccount{password: password, token: token, user: user}
}

func (b *fakeBackend) addOrganization(email, password, token string, user map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[email] = &fakeAccount{password: password, token: token, user: user, organization: true}
}

func (b *fakeBackend) forceStatus(method, path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failStatus[method+" "+path] = status
}

func (b *fakeBackend) callCount(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method+" "+path]
}

func (b *fakeBackend) totalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.calls {
		total += n
	}
	return total
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func envelopeBody(success bool, data any, message string) map[string]any {
	body := map[string]any{
		"success":   success,
		"message":   message,
		"timestamp": "2026-01-02T10:00:00Z",
	}
	if data != nil {
		body["data"] = data
	}
	return body
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{Name: "access_token", Value: token, Path: "/"})
}

func (b *fakeBackend) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "malformed body"})
		return
	}
	email, _ := req["email"].(string)
	password, _ := req["password"].(string)

	b.mu.Lock()
	account := b.accounts[email]
	b.mu.Unlock()
	if account == nil || account.organization || account.password != password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "invalid email or password"})
		return
	}

	if verifyID, ok := req["verifyId"].(string); ok && verifyID != "" {
		// 2FA re-authentication: the cookie is issued only here.
		b.mu.Lock()
		target := b.verifyTargets[verifyID]
		latest := b.latestVerify[target]
		done := b.confirmed[verifyID]
		b.mu.Unlock()
		if verifyID != latest || !done {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "two-factor proof rejected"})
			return
		}
		setSessionCookie(w, account.token)
		writeJSON(w, http.StatusOK, envelopeBody(true, account.user, ""))
		return
	}

	twoFactor := account.user["auth2faEmail"] != nil || account.user["auth2faPhoneNumber"] != nil
	if !twoFactor {
		setSessionCookie(w, account.token)
	}
	writeJSON(w, http.StatusOK, envelopeBody(true, account.user, ""))
}

func (b *fakeBackend) handleOrgSignIn(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	_ = json.NewDecoder(r.Body).Decode(&req)
	email, _ := req["email"].(string)
	password, _ := req["password"].(string)

	b.mu.Lock()
	account := b.accounts[email]
	b.mu.Unlock()
	if account == nil || !account.organization || account.password != password {
		// Organization 401s carry a bare {error} body, no envelope.
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "organization sign-in rejected"})
		return
	}

	setSessionCookie(w, account.token)
	writeJSON(w, http.StatusOK, account.user)
}

func (b *fakeBackend) handleSendCode(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	_ = json.NewDecoder(r.Body).Decode(&req)
	target, _ := req["value"].(string)

	b.mu.Lock()
	b.verifySeq++
	verifyID := fmt.Sprintf("v%d", b.verifySeq)
	b.latestVerify[target] = verifyID
	b.verifyTargets[verifyID] = target
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, envelopeBody(true, map[string]any{"verifyId": verifyID}, "verification code sent"))
}

func (b *fakeBackend) handleConfirmCode(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	_ = json.NewDecoder(r.Body).Decode(&req)
	code, _ := req["type"].(string)
	verifyID, _ := req["value"].(string)

	b.mu.Lock()
	target, known := b.verifyTargets[verifyID]
	latest := b.latestVerify[target]
	b.mu.Unlock()

	if !known || verifyID != latest || code != fakeOTP {
		writeJSON(w, http.StatusOK, envelopeBody(false, nil, "invalid or expired code"))
		return
	}

	b.mu.Lock()
	b.confirmed[verifyID] = true
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, envelopeBody(true, nil, "code confirmed"))
}

func (b *fakeBackend) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	_ = json.NewDecoder(r.Body).Decode(&req)
	email, _ := req["email"].(string)
	verifyID, _ := req["verifyId"].(string)
	otp, _ := req["otp"].(string)
	newPassword, _ := req["newPassword"].(string)

	b.mu.Lock()
	defer b.mu.Unlock()
	target := b.verifyTargets[verifyID]
	if verifyID != b.latestVerify[target] || otp != fakeOTP {
		writeJSON(w, http.StatusOK, envelopeBody(false, nil, "reset code rejected"))
		return
	}
	if account := b.accounts[email]; account != nil {
		account.password = newPassword
	}
	writeJSON(w, http.StatusOK, envelopeBody(true, nil, "password updated"))
}

func (b *fakeBackend) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	b.signups = append(b.signups, req)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, envelopeBody(true, nil, "account created"))
}

func (b *fakeBackend) handlePushToken(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	_ = json.NewDecoder(r.Body).Decode(&req)
	token, _ := req["token"].(string)

	b.mu.Lock()
	b.pushTokens = append(b.pushTokens, token)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, envelopeBody(true, nil, ""))
}

func (b *fakeBackend) handlePolicy(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, envelopeBody(true, map[string]any{
			"title":   title,
			"content": "lorem ipsum",
		}, ""))
	}
}

// newProbeServer serves a hand-rolled handler for tests that inspect raw
// request headers rather than going through the full fake backend.
func newProbeServer(t *testing.T, handler http.Handler) string {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server.URL
}

// newTestClient builds a Client against the fake backend with the default
// in-memory credential store.
func newTestClient(t *testing.T, b *fakeBackend) *Client {
	t.Helper()

	cfg := DefaultConfig()
	cfg.HTTP.BaseURL = b.server.URL

	client, err := New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}
