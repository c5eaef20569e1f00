package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure (expired, bad signature,
// malformed claims). Callers must not be able to tell the cases apart.
var ErrInvalidToken = errors.New("invalid token")

type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

type AccessClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID   string `json:"userId"`
	DeviceID string `json:"deviceId"`
	jwt.RegisteredClaims
}

// TokenPair is one issued access+refresh pair. IssuedAt is the refresh
// token's iat truncated to seconds; it doubles as the device's liveness
// anchor, so it must round-trip the JWT NumericDate encoding exactly.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	IssuedAt     time.Time
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (s *TokenService) IssuePair(userID, deviceID string) (*TokenPair, error) {
	now := s.now().UTC().Truncate(time.Second)

	accessClaims := AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Subject:   userID,
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(s.accessSecret)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	refreshClaims := RefreshClaims{
		UserID:   userID,
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
			Subject:   userID,
		},
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(s.refreshSecret)
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		IssuedAt:     now,
	}, nil
}

// ParseAccess verifies an access token and returns the user it carries.
func (s *TokenService) ParseAccess(tokenString string) (string, error) {
	var claims AccessClaims
	if err := s.parse(tokenString, &claims, s.accessSecret); err != nil {
		return "", err
	}
	if claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// ParseRefresh verifies a refresh token and returns the identity triple it
// carries. The issued-at comes back truncated to seconds, matching IssuePair.
func (s *TokenService) ParseRefresh(tokenString string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := s.parse(tokenString, &claims, s.refreshSecret); err != nil {
		return nil, err
	}
	if claims.UserID == "" || claims.DeviceID == "" || claims.IssuedAt == nil {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func (s *TokenService) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}
