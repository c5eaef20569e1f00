package api

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"bloghub/internal/auth"
	"bloghub/internal/db"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	deviceIDKey  contextKey = "deviceID"
	deviceIatKey contextKey = "deviceIat"
)

const refreshCookieName = "refreshToken"

type AuthMiddleware struct {
	tokens  *auth.TokenService
	devices *db.DeviceRepository
}

func NewAuthMiddleware(tokens *auth.TokenService, devices *db.DeviceRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, devices: devices}
}

// RequireBearer rejects requests without a valid access token.
func (m *AuthMiddleware) RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.bearerUserID(r)
		if !ok {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalBearer attaches identity when a valid access token is present and
// treats everything else as anonymous. Used on GET endpoints where the
// response merely personalizes (myStatus on likes).
func (m *AuthMiddleware) OptionalBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := m.bearerUserID(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) bearerUserID(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}

	userID, err := m.tokens.ParseAccess(parts[1])
	if err != nil {
		return "", false
	}

	return userID, true
}

// RequireRefreshCookie extracts the refresh token from its HTTP-only cookie
// (never a header), verifies the signature and re-validates device liveness:
// the device must still exist and its anchor must equal the token's
// issued-at. Only routes behind this guard may rotate or revoke sessions.
func (m *AuthMiddleware) RequireRefreshCookie(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(refreshCookieName)
		if err != nil || cookie.Value == "" {
			unauthorized(w)
			return
		}

		claims, err := m.tokens.ParseRefresh(cookie.Value)
		if err != nil {
			unauthorized(w)
			return
		}

		issuedAt := claims.IssuedAt.Time

		device, err := m.devices.FindByID(claims.DeviceID)
		if err != nil || !device.LastActiveDate.Equal(issuedAt) {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, deviceIDKey, claims.DeviceID)
		ctx = context.WithValue(ctx, deviceIatKey, issuedAt)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BasicAuthMiddleware guards administrative endpoints with the operator
// credential pair. Comparison is constant-time.
type BasicAuthMiddleware struct {
	login    string
	password string
}

func NewBasicAuthMiddleware(login, password string) *BasicAuthMiddleware {
	return &BasicAuthMiddleware{login: login, password: password}
}

func (m *BasicAuthMiddleware) RequireBasic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "basic") {
			unauthorized(w)
			return
		}

		decoded, err := base64.StdEncoding.DecodeString(parts[1])
		if err != nil {
			unauthorized(w)
			return
		}

		login, password, ok := strings.Cut(string(decoded), ":")
		if !ok {
			unauthorized(w)
			return
		}

		loginOK := subtle.ConstantTimeCompare([]byte(login), []byte(m.login)) == 1
		passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(m.password)) == 1
		if !loginOK || !passwordOK {
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func GetUserID(r *http.Request) string {
	if v := r.Context().Value(userIDKey); v != nil {
		if userID, ok := v.(string); ok {
			return userID
		}
	}
	return ""
}

// deviceSession returns the identity triple attached by the refresh guard.
func deviceSession(r *http.Request) (userID, deviceID string, issuedAt time.Time, ok bool) {
	userID, ok1 := r.Context().Value(userIDKey).(string)
	deviceID, ok2 := r.Context().Value(deviceIDKey).(string)
	issuedAt, ok3 := r.Context().Value(deviceIatKey).(time.Time)
	if !ok1 || !ok2 || !ok3 {
		return "", "", time.Time{}, false
	}
	return userID, deviceID, issuedAt, true
}
