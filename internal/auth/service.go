package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/internal/shared"
)

// Metrics receives authentication outcomes. observability.Metrics implements it.
type Metrics interface {
	SignupAttempt(outcome string)
	LoginAttempt(outcome string)
	TokenRejected(reason string)
}

type nopMetrics struct{}

func (nopMetrics) SignupAttempt(string) {}
func (nopMetrics) LoginAttempt(string)  {}
func (nopMetrics) TokenRejected(string) {}

// Outcome labels reported to Metrics.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalid            = "invalid"
	OutcomeConflict           = "conflict"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeThrottled          = "throttled"
	OutcomeError              = "error"
)

// bcrypt ignores everything past 72 bytes, and newer x/crypto rejects it.
const maxPasswordBytes = 72

type signupRules struct {
	Username string `validate:"required,min=3"`
	Email    string `validate:"required,contains=@"`
	Password string `validate:"required,min=6,bcryptlen"`
}

type loginRules struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

var validationMessages = map[string]string{
	"Username.required":  "Username is required",
	"Username.min":       "Username must be at least 3 characters",
	"Email.required":     "Email is required",
	"Email.contains":     "Please provide a valid email",
	"Password.required":  "Password is required",
	"Password.min":       "Password must be at least 6 characters",
	"Password.bcryptlen": "Password must be at most 72 bytes",
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	hasher   Hasher
	tokens   *TokenManager
	throttle Throttle
	events   EventPublisher
	metrics  Metrics
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time

	dummyMu     sync.Mutex
	dummyDigest string
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithThrottle enables failed-login throttling.
func WithThrottle(t Throttle) ServiceOption {
	return func(s *Service) { s.throttle = t }
}

// WithEvents publishes audit events for every signup and login attempt.
func WithEvents(p EventPublisher) ServiceOption {
	return func(s *Service) { s.events = p }
}

// WithMetrics reports outcomes to m.
func WithMetrics(m Metrics) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService constructs a new Service.
func NewService(repo Repository, hasher Hasher, tokens *TokenManager, opts ...ServiceOption) *Service {
	v := validator.New()
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	s := &Service{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		metrics:  nopMetrics{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		validate: v,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup registers a new account and issues its first session token.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = NormalizeEmail(in.Email)
	if err := s.check(signupRules{Username: in.Username, Email: in.Email, Password: in.Password}); err != nil {
		s.metrics.SignupAttempt(OutcomeInvalid)
		return nil, err
	}

	field, err := s.repo.IdentityTaken(ctx, in.Username, in.Email)
	if err != nil {
		s.metrics.SignupAttempt(OutcomeError)
		return nil, err
	}
	if field != "" {
		s.metrics.SignupAttempt(OutcomeConflict)
		return nil, &shared.ConflictError{Field: field}
	}

	digest, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		s.metrics.SignupAttempt(OutcomeError)
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	user := &User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: digest,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			s.metrics.SignupAttempt(OutcomeConflict)
		} else {
			s.metrics.SignupAttempt(OutcomeError)
		}
		return nil, err
	}

	session, err := s.newSession(user)
	if err != nil {
		s.metrics.SignupAttempt(OutcomeError)
		return nil, err
	}
	s.metrics.SignupAttempt(OutcomeSuccess)
	s.publish(ctx, EventSignup, user.ID, user.Email, in.Client)
	s.logger.Info("user signed up", slog.String("user_id", user.ID))
	return session, nil
}

// Login authenticates by email and password. Unknown emails and wrong passwords
// produce the same error.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	email := NormalizeEmail(in.Email)
	if err := s.check(loginRules{Email: email, Password: in.Password}); err != nil {
		s.metrics.LoginAttempt(OutcomeInvalid)
		return nil, err
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Attempt(ctx, email)
		if err != nil {
			s.logger.Warn("login throttle attempt", slog.Any("error", err))
		} else if !allowed {
			s.metrics.LoginAttempt(OutcomeThrottled)
			return nil, shared.ErrTooManyAttempts
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.metrics.LoginAttempt(OutcomeError)
			return nil, err
		}
		s.hasher.Verify(ctx, in.Password, s.dummy())
		if err := ctx.Err(); err != nil {
			s.metrics.LoginAttempt(OutcomeError)
			return nil, err
		}
		return nil, s.loginFailed(ctx, "", email, in.Client)
	}
	if !s.hasher.Verify(ctx, in.Password, user.PasswordHash) {
		if err := ctx.Err(); err != nil {
			s.metrics.LoginAttempt(OutcomeError)
			return nil, err
		}
		return nil, s.loginFailed(ctx, user.ID, email, in.Client)
	}

	session, err := s.newSession(user)
	if err != nil {
		s.metrics.LoginAttempt(OutcomeError)
		return nil, err
	}
	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.logger.Warn("login throttle reset", slog.Any("error", err))
		}
	}
	s.metrics.LoginAttempt(OutcomeSuccess)
	s.publish(ctx, EventLoginSucceeded, user.ID, email, in.Client)
	return session, nil
}

// CurrentUser returns the public view of the user behind an authenticated request.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*PublicUser, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

// VerifyToken exposes token verification to callers holding only the service.
func (s *Service) VerifyToken(token string) (string, error) {
	return s.tokens.Verify(token)
}

func (s *Service) loginFailed(ctx context.Context, userID, email string, client ClientInfo) error {
	s.metrics.LoginAttempt(OutcomeInvalidCredentials)
	s.publish(ctx, EventLoginFailed, userID, email, client)
	return shared.ErrInvalidCredentials
}

func (s *Service) newSession(user *User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth: issue token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user.Public()}, nil
}

func (s *Service) publish(ctx context.Context, kind EventKind, userID, email string, client ClientInfo) {
	if s.events == nil {
		return
	}
	event := Event{
		Kind:       kind,
		UserID:     userID,
		Email:      email,
		RemoteAddr: client.RemoteAddr,
		UserAgent:  client.UserAgent,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("publish auth event", slog.String("kind", string(kind)), slog.Any("error", err))
	}
}

// dummy returns a digest used to spend comparable time on unknown emails. It is
// computed outside any request context and retried until it succeeds.
func (s *Service) dummy() string {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()
	if s.dummyDigest != "" {
		return s.dummyDigest
	}
	digest, err := s.hasher.Hash(context.Background(), uuid.NewString())
	if err != nil {
		s.logger.Warn("prepare dummy digest", slog.Any("error", err))
		return ""
	}
	s.dummyDigest = digest
	return digest
}

func (s *Service) check(rules any) error {
	err := s.validate.Struct(rules)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	first := fieldErrs[0]
	msg, ok := validationMessages[first.Field()+"."+first.Tag()]
	if !ok {
		msg = first.Field() + " is invalid"
	}
	return &shared.ValidationError{Field: strings.ToLower(first.Field()), Message: msg}
}
