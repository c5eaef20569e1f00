package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bloghub/internal/auth"
	"bloghub/internal/db"
)

type nopEmailSender struct{}

func (nopEmailSender) SendConfirmationCode(email, code string) error { return nil }
func (nopEmailSender) SendRecoveryCode(email, code string) error     { return nil }

type authFixture struct {
	handler *AuthHandler
	users   *db.UserRepository
	service *auth.Service
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	database := openTestDB(t)
	users := db.NewUserRepository(database)
	devices := db.NewDeviceRepository(database)
	tokens := newTestTokenService()
	hasher := auth.NewPasswordHasher(4)
	service := auth.NewService(users, devices, tokens, hasher, nopEmailSender{}, 90*time.Minute)

	return &authFixture{
		handler: NewAuthHandler(service, users, tokens),
		users:   users,
		service: service,
	}
}

func (f *authFixture) registerConfirmedUser(t *testing.T, login, email, password string) {
	t.Helper()

	if err := f.service.Register(login, password, email); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	user, err := f.users.FindByLoginOrEmail(login)
	if err != nil {
		t.Fatalf("FindByLoginOrEmail() error = %v", err)
	}
	if err := f.service.ConfirmRegistration(user.ConfirmationCode); err != nil {
		t.Fatalf("ConfirmRegistration() error = %v", err)
	}
}

func TestLoginSetsRefreshCookieAndReturnsAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	f.registerConfirmedUser(t, "alice", "alice@example.com", "secret123")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"loginOrEmail":"alice","password":"secret123"}`))
	req.RemoteAddr = "10.0.0.1:12345"
	req.Header.Set("User-Agent", "Firefox on Linux")
	rr := httptest.NewRecorder()
	f.handler.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body=%q", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("accessToken is empty")
	}

	var refreshCookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == refreshCookieName {
			refreshCookie = c
		}
	}
	if refreshCookie == nil {
		t.Fatal("refreshToken cookie not set")
	}
	if !refreshCookie.HttpOnly || !refreshCookie.Secure {
		t.Fatalf("cookie HttpOnly=%v Secure=%v, want both true", refreshCookie.HttpOnly, refreshCookie.Secure)
	}
	if refreshCookie.Path != "/api" {
		t.Fatalf("cookie Path = %q, want /api", refreshCookie.Path)
	}
}

func TestLoginWrongPasswordIs401(t *testing.T) {
	f := newAuthFixture(t)
	f.registerConfirmedUser(t, "alice", "alice@example.com", "secret123")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"loginOrEmail":"alice","password":"wrong"}`))
	req.RemoteAddr = "10.0.0.1:12345"
	rr := httptest.NewRecorder()
	f.handler.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRegistrationValidationErrorsNameTheField(t *testing.T) {
	f := newAuthFixture(t)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "short_login", body: `{"login":"ab","password":"secret123","email":"a@b.com"}`, field: "login"},
		{name: "bad_login_charset", body: `{"login":"a l!ce","password":"secret123","email":"a@b.com"}`, field: "login"},
		{name: "short_password", body: `{"login":"alice","password":"12345","email":"a@b.com"}`, field: "password"},
		{name: "bad_email", body: `{"login":"alice","password":"secret123","email":"not-an-email"}`, field: "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/registration", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			f.handler.Registration(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d, body=%q", rr.Code, http.StatusBadRequest, rr.Body.String())
			}

			var resp ErrorsMessagesResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("json.Unmarshal() error = %v, body=%q", err, rr.Body.String())
			}
			if len(resp.ErrorsMessages) == 0 {
				t.Fatal("errorsMessages is empty")
			}
			if resp.ErrorsMessages[0].Field != tt.field {
				t.Fatalf("field = %q, want %q", resp.ErrorsMessages[0].Field, tt.field)
			}
		})
	}
}

func TestRegistrationRejectsUnknownFields(t *testing.T) {
	f := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/registration",
		strings.NewReader(`{"login":"alice","password":"secret123","email":"a@b.com","admin":true}`))
	rr := httptest.NewRecorder()
	f.handler.Registration(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestLogoutClearsRefreshCookie(t *testing.T) {
	f := newAuthFixture(t)
	f.registerConfirmedUser(t, "alice", "alice@example.com", "secret123")

	pair, err := f.service.Login("10.0.0.1", "ua", "alice", "secret123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	tokens := newTestTokenService()
	claims, err := tokens.ParseRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("ParseRefresh() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req = withDeviceSession(req, claims.UserID, claims.DeviceID, pair.IssuedAt)
	rr := httptest.NewRecorder()
	f.handler.Logout(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}

	var cleared bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == refreshCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("refreshToken cookie not cleared")
	}
}
