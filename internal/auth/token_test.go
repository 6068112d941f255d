package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/shared"
)

const testSecret = "test-secret-with-enough-entropy-0123456789"

func newTestTokens(t *testing.T, opts ...TokenOption) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager(testSecret, DefaultTokenTTL, opts...)
	require.NoError(t, err)
	return tm
}

func requireReason(t *testing.T, err error, want TokenReason) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrUnauthorized), "token errors must match ErrUnauthorized")
	var tokenErr *TokenError
	require.True(t, errors.As(err, &tokenErr))
	assert.Equal(t, want, tokenErr.Reason)
}

func TestNewTokenManagerRejectsEmptySecret(t *testing.T) {
	_, err := NewTokenManager("", DefaultTokenTTL)
	require.Error(t, err)
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tm := newTestTokens(t, WithClock(func() time.Time { return now }))

	token, expiresAt, err := tm.Issue("user-123")
	require.NoError(t, err)
	assert.Equal(t, now.Add(7*24*time.Hour), expiresAt)

	userID, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestVerifyValidUntilExpiry(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := issued
	tm := newTestTokens(t, WithClock(func() time.Time { return clock }))
	token, _, err := tm.Issue("user-1")
	require.NoError(t, err)

	clock = issued.Add(7*24*time.Hour - time.Second)
	userID, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	clock = issued.Add(7*24*time.Hour + time.Second)
	_, err = tm.Verify(token)
	requireReason(t, err, ReasonExpired)
}

func TestVerifyExpiredTokenWithValidSignature(t *testing.T) {
	past := time.Now().Add(-8 * 24 * time.Hour)
	issuer := newTestTokens(t, WithClock(func() time.Time { return past }))
	token, expiresAt, err := issuer.Issue("user-1")
	require.NoError(t, err)
	require.True(t, expiresAt.Before(time.Now()))

	_, err = newTestTokens(t).Verify(token)
	requireReason(t, err, ReasonExpired)
}

func TestVerifyTamperedSignature(t *testing.T) {
	tm := newTestTokens(t)
	token, _, err := tm.Issue("user-1")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = tm.Verify(tampered)
	requireReason(t, err, ReasonBadSignature)
}

func TestVerifyTamperedExpiredTokenReportsSignature(t *testing.T) {
	past := time.Now().Add(-30 * 24 * time.Hour)
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(past),
	}).SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	_, err = newTestTokens(t).Verify(forged)
	requireReason(t, err, ReasonBadSignature)
}

func TestVerifyForgedFutureExpiry(t *testing.T) {
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(365 * 24 * time.Hour)),
	}).SignedString([]byte("attacker-secret"))
	require.NoError(t, err)

	_, err = newTestTokens(t).Verify(forged)
	requireReason(t, err, ReasonBadSignature)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestTokens(t).Verify(unsigned)
	requireReason(t, err, ReasonBadSignature)
}

func TestVerifyMalformed(t *testing.T) {
	tm := newTestTokens(t)
	for _, token := range []string{"", "not-a-jwt", "not.a.jwt", "a.b"} {
		_, err := tm.Verify(token)
		requireReason(t, err, ReasonMalformed)
	}
}

func TestVerifyRequiresExpiryAndSubject(t *testing.T) {
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user-1",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = newTestTokens(t).Verify(noExp)
	requireReason(t, err, ReasonMalformed)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = newTestTokens(t).Verify(noSub)
	requireReason(t, err, ReasonMalformed)
}

func TestIssueRequiresUserID(t *testing.T) {
	_, _, err := newTestTokens(t).Issue("")
	require.Error(t, err)
}
