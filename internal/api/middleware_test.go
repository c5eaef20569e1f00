package api

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"bloghub/internal/auth"
	"bloghub/internal/db"
	"bloghub/internal/models"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

func newTestTokenService() *auth.TokenService {
	return auth.NewTokenService(
		"access-secret-for-tests-0123456789ab",
		"refresh-secret-for-tests-0123456789a",
		10*time.Minute,
		time.Hour,
	)
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestRequireBearerAcceptsValidToken(t *testing.T) {
	tokens := newTestTokenService()
	m := NewAuthMiddleware(tokens, nil)

	pair, err := tokens.IssuePair("usr_1", "device-1")
	if err != nil {
		t.Fatalf("IssuePair() error = %v", err)
	}

	var gotUserID string
	handler := m.RequireBearer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if gotUserID != "usr_1" {
		t.Fatalf("userID = %q, want usr_1", gotUserID)
	}
}

func TestRequireBearerRejectsMissingAndInvalidTokens(t *testing.T) {
	m := NewAuthMiddleware(newTestTokenService(), nil)
	handler, called := okHandler()
	guarded := m.RequireBearer(handler)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing", header: ""},
		{name: "not_bearer", header: "Basic abc"},
		{name: "garbage_token", header: "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			*called = false
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			guarded.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
			}
			if *called {
				t.Fatal("handler called, want blocked")
			}
		})
	}
}

func TestOptionalBearerPassesAnonymousRequests(t *testing.T) {
	m := NewAuthMiddleware(newTestTokenService(), nil)

	var gotUserID string
	handler := m.OptionalBearer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer expired-or-garbage")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if gotUserID != "" {
		t.Fatalf("userID = %q, want empty", gotUserID)
	}
}

func seedUserAndDevice(t *testing.T, database *db.DB, anchor time.Time) {
	t.Helper()

	users := db.NewUserRepository(database)
	if err := users.Create(&models.User{
		ID: "usr_1", Login: "alice", Email: "alice@example.com",
		PasswordHash: "hash", CreatedAt: time.Now().UTC(), IsConfirmed: true, IsRecovered: true,
	}); err != nil {
		t.Fatalf("users.Create() error = %v", err)
	}

	devices := db.NewDeviceRepository(database)
	if err := devices.Create(&models.Device{
		DeviceID: "device-1", UserID: "usr_1", IP: "10.0.0.1", Title: "ua",
		LastActiveDate: anchor, CreatedAt: anchor,
	}); err != nil {
		t.Fatalf("devices.Create() error = %v", err)
	}
}

func TestRequireRefreshCookieAcceptsLiveSession(t *testing.T) {
	database := openTestDB(t)
	tokens := newTestTokenService()
	m := NewAuthMiddleware(tokens, db.NewDeviceRepository(database))

	pair, err := tokens.IssuePair("usr_1", "device-1")
	if err != nil {
		t.Fatalf("IssuePair() error = %v", err)
	}
	seedUserAndDevice(t, database, pair.IssuedAt)

	var userID, deviceID string
	var issuedAt time.Time
	var sessionOK bool
	handler := m.RequireRefreshCookie(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, deviceID, issuedAt, sessionOK = deviceSession(r)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: pair.RefreshToken})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !sessionOK || userID != "usr_1" || deviceID != "device-1" || !issuedAt.Equal(pair.IssuedAt) {
		t.Fatalf("session = (%q, %q, %v, %v), want usr_1/device-1/%v", userID, deviceID, issuedAt, sessionOK, pair.IssuedAt)
	}
}

func TestRequireRefreshCookieRejectsRotatedOutToken(t *testing.T) {
	database := openTestDB(t)
	tokens := newTestTokenService()
	m := NewAuthMiddleware(tokens, db.NewDeviceRepository(database))

	pair, err := tokens.IssuePair("usr_1", "device-1")
	if err != nil {
		t.Fatalf("IssuePair() error = %v", err)
	}
	// The device anchor has already moved past this token's issued-at.
	seedUserAndDevice(t, database, pair.IssuedAt.Add(5*time.Second))

	handler, called := okHandler()
	guarded := m.RequireRefreshCookie(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: pair.RefreshToken})
	rr := httptest.NewRecorder()
	guarded.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if *called {
		t.Fatal("handler called, want blocked")
	}
}

func TestRequireRefreshCookieIgnoresAuthorizationHeader(t *testing.T) {
	database := openTestDB(t)
	tokens := newTestTokenService()
	m := NewAuthMiddleware(tokens, db.NewDeviceRepository(database))

	pair, err := tokens.IssuePair("usr_1", "device-1")
	if err != nil {
		t.Fatalf("IssuePair() error = %v", err)
	}
	seedUserAndDevice(t, database, pair.IssuedAt)

	handler, called := okHandler()
	guarded := m.RequireRefreshCookie(handler)

	// The token is valid but arrives in a header, not the cookie.
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	rr := httptest.NewRecorder()
	guarded.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if *called {
		t.Fatal("handler called, want blocked")
	}
}

func TestRequireBasicComparesBothCredentials(t *testing.T) {
	m := NewBasicAuthMiddleware("admin", "qwerty")
	handler, _ := okHandler()
	guarded := m.RequireBasic(handler)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid", header: "Basic YWRtaW46cXdlcnR5", want: http.StatusOK},
		{name: "wrong_password", header: "Basic YWRtaW46d3Jvbmc=", want: http.StatusUnauthorized},
		{name: "wrong_login", header: "Basic Ym9iOnF3ZXJ0eQ==", want: http.StatusUnauthorized},
		{name: "not_base64", header: "Basic %%%", want: http.StatusUnauthorized},
		{name: "missing", header: "", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			guarded.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestThrottleMiddlewareReturns429OverCeiling(t *testing.T) {
	throttle := NewThrottle(10*time.Second, 2)
	handler, _ := okHandler()
	guarded := ThrottleMiddleware(throttle)(handler)

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		req.Header.Set("User-Agent", "ua")
		rr := httptest.NewRecorder()
		guarded.ServeHTTP(rr, req)
		last = rr.Code
	}

	if last != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", last, http.StatusTooManyRequests)
	}
}
