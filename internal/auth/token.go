package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/internal/shared"
)

// DefaultTokenTTL is the validity window of an issued session token.
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenReason classifies why a token was rejected.
type TokenReason string

const (
	ReasonMalformed    TokenReason = "malformed"
	ReasonBadSignature TokenReason = "bad_signature"
	ReasonExpired      TokenReason = "expired"
)

// TokenError is returned by Verify for every rejected token. It matches
// shared.ErrUnauthorized regardless of Reason.
type TokenError struct {
	Reason TokenReason
	Err    error
}

func (e *TokenError) Error() string {
	if e.Err == nil {
		return "token " + string(e.Reason)
	}
	return "token " + string(e.Reason) + ": " + e.Err.Error()
}

func (e *TokenError) Unwrap() []error {
	return []error{shared.ErrUnauthorized, e.Err}
}

// TokenManager issues and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customises a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source (primarily for testing).
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) {
		m.now = now
	}
}

// NewTokenManager constructs a TokenManager. An empty secret is rejected; there is
// no fallback key.
func NewTokenManager(secret string, ttl time.Duration, opts ...TokenOption) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("auth: token secret must be provided")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	m := &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue mints a token for userID and returns it with its expiry.
func (m *TokenManager) Issue(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("auth: user id required")
	}
	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Verify checks signature then expiry and returns the user id carried by token.
func (m *TokenManager) Verify(token string) (string, error) {
	if token == "" {
		return "", &TokenError{Reason: ReasonMalformed, Err: errors.New("empty token")}
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", &TokenError{Reason: tokenReason(err), Err: err}
	}
	if claims.Subject == "" {
		return "", &TokenError{Reason: ReasonMalformed, Err: errors.New("missing subject")}
	}
	return claims.Subject, nil
}

// TTL exposes the configured validity window.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

func tokenReason(err error) TokenReason {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	default:
		return ReasonMalformed
	}
}
