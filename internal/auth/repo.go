package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taskdeck/taskdeck/internal/shared"
)

// Repository defines persistence operations for user credentials.
//
// Create must enforce username and email uniqueness atomically and report a
// violation as *shared.ConflictError; IdentityTaken is only an early check.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	// IdentityTaken returns "username" or "email" when either is already
	// registered, or "" when both are free.
	IdentityTaken(ctx context.Context, username, email string) (string, error)
}

// DBTX is the subset of pgxpool.Pool used by the PostgreSQL repositories.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db DBTX
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(db DBTX) *PGRepository {
	return &PGRepository{db: db}
}

const userColumns = `id, username, email, password_hash, created_at`

// Create inserts user. Unique index violations become *shared.ConflictError.
func (r *PGRepository) Create(ctx context.Context, user *User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return storeError("create user", err)
	}
	return nil
}

// FindByEmail fetches a user by case-insensitive email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row, "find user by email")
}

// FindByID fetches a user by id.
func (r *PGRepository) FindByID(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row, "find user by id")
}

// IdentityTaken reports which identity field is already in use, preferring username.
func (r *PGRepository) IdentityTaken(ctx context.Context, username, email string) (string, error) {
	var field string
	err := r.db.QueryRow(ctx,
		`SELECT CASE WHEN username = $1 THEN 'username' ELSE 'email' END
		 FROM users
		 WHERE username = $1 OR lower(email) = lower($2)
		 ORDER BY (username = $1) DESC
		 LIMIT 1`,
		username, email,
	).Scan(&field)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", storeError("check identity", err)
	}
	return field, nil
}

func scanUser(row pgx.Row, op string) (*User, error) {
	var user User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, storeError(op, err)
	}
	return &user, nil
}

// storeError classifies driver errors. Server-side errors keep their detail for
// logs; anything without a PostgreSQL error code is treated as the store being
// unreachable.
func storeError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgerrcode.UniqueViolation {
			return &shared.ConflictError{Field: conflictField(pgErr.ConstraintName)}
		}
		return fmt.Errorf("auth: %s: %w", op, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("auth: %s: %w", op, err)
	}
	return fmt.Errorf("auth: %s: %w: %v", op, shared.ErrStoreUnavailable, err)
}

func conflictField(constraint string) string {
	if strings.Contains(constraint, "email") {
		return "email"
	}
	return "username"
}

var _ Repository = (*PGRepository)(nil)
