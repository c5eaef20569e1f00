package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() *TokenService {
	return NewTokenService(
		"access-secret-for-tests-0123456789ab",
		"refresh-secret-for-tests-0123456789a",
		10*time.Minute,
		time.Hour,
	)
}

func TestIssuePairRoundTrips(t *testing.T) {
	svc := newTestTokenService()

	pair, err := svc.IssuePair("usr_1", "device-1")
	require.NoError(t, err)

	userID, err := svc.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "usr_1", userID)

	claims, err := svc.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "usr_1", claims.UserID)
	assert.Equal(t, "device-1", claims.DeviceID)
}

func TestIssuedAtSurvivesJWTEncoding(t *testing.T) {
	svc := newTestTokenService()

	pair, err := svc.IssuePair("usr_1", "device-1")
	require.NoError(t, err)

	claims, err := svc.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, claims.IssuedAt.Time.Equal(pair.IssuedAt),
		"issued-at must round-trip exactly, it anchors device liveness")
}

func TestAccessAndRefreshSecretsAreNotInterchangeable(t *testing.T) {
	svc := newTestTokenService()

	pair, err := svc.IssuePair("usr_1", "device-1")
	require.NoError(t, err)

	_, err = svc.ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ParseRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	svc := newTestTokenService()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	pair, err := svc.IssuePair("usr_1", "device-1")
	require.NoError(t, err)

	_, err = svc.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.ParseRefresh(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsTamperedToken(t *testing.T) {
	svc := newTestTokenService()

	pair, err := svc.IssuePair("usr_1", "device-1")
	require.NoError(t, err)

	tampered := pair.AccessToken[:len(pair.AccessToken)-2] + "xx"
	_, err = svc.ParseAccess(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsTokenSignedWithDifferentSecret(t *testing.T) {
	svc := newTestTokenService()
	other := NewTokenService(
		"another-access-secret-0123456789abcd",
		"another-refresh-secret-0123456789abc",
		10*time.Minute,
		time.Hour,
	)

	pair, err := other.IssuePair("usr_1", "device-1")
	require.NoError(t, err)

	_, err = svc.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	svc := newTestTokenService()

	_, err := svc.ParseAccess("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.ParseRefresh("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
