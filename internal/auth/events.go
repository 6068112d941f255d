package auth

import (
	"context"
	"time"
)

// EventKind names an authentication event.
type EventKind string

const (
	EventSignup         EventKind = "signup"
	EventLoginSucceeded EventKind = "login.succeeded"
	EventLoginFailed    EventKind = "login.failed"
)

// Event is an audit record of an authentication attempt. It never carries
// passwords, digests or tokens.
type Event struct {
	Kind       EventKind `json:"kind"`
	UserID     string    `json:"user_id,omitempty"`
	Email      string    `json:"email"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher hands events to an asynchronous consumer.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// PGEventStore persists events into the auth_events table.
type PGEventStore struct {
	db DBTX
}

// NewEventStore constructs a PGEventStore.
func NewEventStore(db DBTX) *PGEventStore {
	return &PGEventStore{db: db}
}

// Record inserts event.
func (s *PGEventStore) Record(ctx context.Context, event Event) error {
	var userID any
	if event.UserID != "" {
		userID = event.UserID
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO auth_events (kind, user_id, email, remote_addr, user_agent, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		string(event.Kind), userID, event.Email, event.RemoteAddr, event.UserAgent, event.OccurredAt,
	)
	if err != nil {
		return storeError("record auth event", err)
	}
	return nil
}

// Prune deletes events older than before and returns how many were removed.
func (s *PGEventStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM auth_events WHERE occurred_at < $1`, before)
	if err != nil {
		return 0, storeError("prune auth events", err)
	}
	return tag.RowsAffected(), nil
}
