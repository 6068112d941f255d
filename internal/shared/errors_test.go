package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrorsUnwrapToSentinels(t *testing.T) {
	verr := fmt.Errorf("signup: %w", &ValidationError{Field: "username", Message: "too short"})
	assert.True(t, errors.Is(verr, ErrValidation))
	assert.False(t, errors.Is(verr, ErrConflict))

	cerr := fmt.Errorf("insert: %w", &ConflictError{Field: "email"})
	assert.True(t, errors.Is(cerr, ErrConflict))
}

func TestUserSafeMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&ValidationError{Field: "password", Message: "Password must be at least 6 characters"}, "Password must be at least 6 characters"},
		{&ConflictError{Field: "email"}, "User with this email already exists"},
		{&ConflictError{Field: "username"}, "Username is already taken"},
		{ErrInvalidCredentials, "Invalid email or password"},
		{fmt.Errorf("wrapped: %w", ErrStoreUnavailable), "Service temporarily unavailable"},
		{errors.New("pq: relation users does not exist"), "Internal server error"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, UserSafeMessage(tc.err))
	}
}

func TestUserIDContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)

	ctx := ContextWithUserID(context.Background(), "u-1")
	id, ok := UserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u-1", id)
}
