package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed client input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a duplicate identity.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing, invalid or expired session token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrStoreUnavailable indicates the credential store could not be reached.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrTooManyAttempts indicates login is temporarily locked for an email.
	ErrTooManyAttempts = errors.New("too many login attempts")
)

// ValidationError describes the first input field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConflictError reports which identity field is already taken.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return e.Field + " already exists"
}

// Unwrap lets errors.Is match ErrConflict.
func (e *ConflictError) Unwrap() error { return ErrConflict }

// UserSafeMessage returns the client-facing message for err.
func UserSafeMessage(err error) string {
	var verr *ValidationError
	var cerr *ConflictError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &cerr):
		switch cerr.Field {
		case "email":
			return "User with this email already exists"
		case "username":
			return "Username is already taken"
		}
		return "User already exists"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, ErrUnauthorized):
		return "Invalid or expired token."
	case errors.Is(err, ErrTooManyAttempts):
		return "Too many failed login attempts. Please try again later."
	case errors.Is(err, ErrStoreUnavailable):
		return "Service temporarily unavailable"
	default:
		return "Internal server error"
	}
}
