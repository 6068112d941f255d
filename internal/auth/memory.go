package auth

import (
	"context"
	"sync"

	"github.com/taskdeck/taskdeck/internal/shared"
)

// MemoryRepository is an in-process Repository. Uniqueness checks and inserts
// happen under one lock, matching the guarantees of the PostgreSQL indexes.
type MemoryRepository struct {
	mu         sync.RWMutex
	byID       map[string]*User
	byUsername map[string]string
	byEmail    map[string]string
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:       make(map[string]*User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

// Create stores a copy of user.
func (m *MemoryRepository) Create(ctx context.Context, user *User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	email := NormalizeEmail(user.Email)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byUsername[user.Username]; ok {
		return &shared.ConflictError{Field: "username"}
	}
	if _, ok := m.byEmail[email]; ok {
		return &shared.ConflictError{Field: "email"}
	}
	stored := *user
	m.byID[user.ID] = &stored
	m.byUsername[user.Username] = user.ID
	m.byEmail[email] = user.ID
	return nil
}

// FindByEmail fetches a user by case-insensitive email.
func (m *MemoryRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return m.copyOf(id), nil
}

// FindByID fetches a user by id.
func (m *MemoryRepository) FindByID(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.byID[id]; !ok {
		return nil, shared.ErrNotFound
	}
	return m.copyOf(id), nil
}

// IdentityTaken reports which identity field is already in use, preferring username.
func (m *MemoryRepository) IdentityTaken(ctx context.Context, username, email string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.byUsername[username]; ok {
		return "username", nil
	}
	if _, ok := m.byEmail[NormalizeEmail(email)]; ok {
		return "email", nil
	}
	return "", nil
}

// Len returns the number of stored users.
func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

func (m *MemoryRepository) copyOf(id string) *User {
	u := *m.byID[id]
	return &u
}

var _ Repository = (*MemoryRepository)(nil)
