package jwttoken

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow  = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	userID    = uuid.NewString()
	email     = "ada@example.com"
	name      = "Ada Lovelace"
	expiresIn = time.Hour
)

func newTestService(t *testing.T, now func() time.Time) *Service {
	t.Helper()
	svc, err := NewService("access-secret-0123", "refresh-secret-0123", WithClock(now))
	require.NoError(t, err)
	return svc
}

func Test_NewService_RejectsSharedSecret(t *testing.T) {
	_, err := NewService("same-secret-0123", "same-secret-0123")
	require.Error(t, err)

	_, err = NewService("", "refresh-secret-0123")
	require.Error(t, err)
}

func Test_SignAccess(t *testing.T) {
	svc := newTestService(t, func() time.Time { return fixedNow })

	token, err := svc.SignAccess(userID, email, name, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, email, claims.Email)
	assert.Equal(t, name, claims.Name)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, fixedNow, claims.IssuedAt.Time.UTC())
	assert.Equal(t, fixedNow.Add(expiresIn), claims.ExpiresAt.Time.UTC())
}

func Test_SignRefresh_DistinctTokens(t *testing.T) {
	svc := newTestService(t, func() time.Time { return fixedNow })

	first, err := svc.SignRefresh(userID, expiresIn)
	require.NoError(t, err)
	second, err := svc.SignRefresh(userID, expiresIn)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same subject and instant must still give distinct tokens")
}

func Test_VerifyRefresh_Expiry(t *testing.T) {
	now := fixedNow
	svc := newTestService(t, func() time.Time { return now })

	token, err := svc.SignRefresh(userID, expiresIn)
	require.NoError(t, err)

	now = fixedNow.Add(expiresIn - time.Second)
	claims, err := svc.VerifyRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)

	now = fixedNow.Add(expiresIn)
	_, err = svc.VerifyRefresh(token)
	require.ErrorIs(t, err, ErrExpired)
}

func Test_Verify_DisjointSecrets(t *testing.T) {
	svc := newTestService(t, func() time.Time { return fixedNow })

	access, err := svc.SignAccess(userID, email, name, expiresIn)
	require.NoError(t, err)
	refresh, err := svc.SignRefresh(userID, expiresIn)
	require.NoError(t, err)

	_, err = svc.VerifyRefresh(access)
	require.ErrorIs(t, err, ErrSignatureInvalid)
	_, err = svc.VerifyAccess(refresh)
	require.ErrorIs(t, err, ErrSignatureInvalid)
}

func Test_Verify_InvalidToken(t *testing.T) {
	svc := newTestService(t, func() time.Time { return fixedNow })

	_, err := svc.VerifyAccess("invalid-token-string")
	require.ErrorIs(t, err, ErrSignatureInvalid)

	token, err := svc.SignRefresh(userID, expiresIn)
	require.NoError(t, err)
	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	_, err = svc.VerifyRefresh(tampered)
	require.ErrorIs(t, err, ErrSignatureInvalid)
}

func Test_Verify_ExpiredForgeryIsInvalidNotExpired(t *testing.T) {
	svc := newTestService(t, func() time.Time { return fixedNow })

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(fixedNow.Add(-time.Hour)),
	}})
	token, err := forged.SignedString([]byte("attacker-secret"))
	require.NoError(t, err)

	_, err = svc.VerifyRefresh(token)
	require.ErrorIs(t, err, ErrSignatureInvalid)
}

func Test_Verify_RejectsNoneAlgorithm(t *testing.T) {
	svc := newTestService(t, func() time.Time { return fixedNow })

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, RefreshClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
	}})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.VerifyRefresh(token)
	require.ErrorIs(t, err, ErrSignatureInvalid)
}

func Test_DecodeRefreshUnverified(t *testing.T) {
	now := fixedNow
	svc := newTestService(t, func() time.Time { return now })

	token, err := svc.SignRefresh(userID, time.Minute)
	require.NoError(t, err)
	now = now.Add(time.Hour)

	sub, ok := svc.DecodeRefreshUnverified(token)
	require.True(t, ok)
	assert.Equal(t, userID, sub)

	_, ok = svc.DecodeRefreshUnverified("garbage")
	assert.False(t, ok)
}

func Test_JWTServiceAdapter(t *testing.T) {
	svc := newTestService(t, time.Now)
	adapter := NewJWTServiceAdapter(svc)

	token, err := svc.SignAccess(userID, email, name, expiresIn)
	require.NoError(t, err)

	claims, err := adapter.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, email, claims.Email)
	assert.NotEmpty(t, claims.JTI)

	_, err = adapter.ValidateToken("nope")
	require.ErrorIs(t, err, ErrSignatureInvalid)
}
