package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taskdeck/taskdeck/internal/platform/httpx"
	"github.com/taskdeck/taskdeck/internal/shared"
)

const (
	msgNoToken      = "Access denied. No token provided."
	msgInvalidToken = "Invalid or expired token."
)

// TokenVerifier checks a session token and returns its user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Middleware gates protected routes on a valid bearer token.
type Middleware struct {
	tokens  TokenVerifier
	logger  *slog.Logger
	metrics Metrics
}

// NewMiddleware constructs a Middleware. logger and metrics may be nil.
func NewMiddleware(tokens TokenVerifier, logger *slog.Logger, metrics Metrics) *Middleware {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Middleware{tokens: tokens, logger: logger, metrics: metrics}
}

// RequireUser rejects requests without a valid token with 401 and otherwise
// stores the user id in the request context.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			httpx.Fail(w, http.StatusUnauthorized, msgNoToken)
			return
		}
		userID, err := m.tokens.Verify(token)
		if err != nil {
			reason := string(ReasonMalformed)
			var tokenErr *TokenError
			if errors.As(err, &tokenErr) {
				reason = string(tokenErr.Reason)
			}
			m.metrics.TokenRejected(reason)
			m.logger.Info("token rejected", slog.String("reason", reason), slog.String("path", r.URL.Path))
			httpx.Fail(w, http.StatusUnauthorized, msgInvalidToken)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithUserID(r.Context(), userID)))
	})
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
