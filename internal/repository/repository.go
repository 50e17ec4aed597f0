// Package repository declares the storage interfaces the service layer
// programs against. The concrete SQLite implementation lives in the sqlite
// subpackage; services never import it directly.
package repository

import (
	"context"
	"time"

	"github.com/tahmid/habit-tracker/internal/model"
)

// UserRepository persists identity records. Usernames and emails are each
// globally unique; Create surfaces constraint violations as field-scoped
// validation errors so concurrent registrations degrade gracefully.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// HabitRepository persists habits. Rows are never deleted; deactivation is a
// status change.
type HabitRepository interface {
	Create(ctx context.Context, habit *model.Habit) error
	// GetByID returns the habit only if it belongs to userID.
	GetByID(ctx context.Context, userID, id string) (*model.Habit, error)
	// List returns the user's habits, optionally restricted to active ones.
	List(ctx context.Context, userID string, onlyActive bool) ([]model.Habit, error)
	Update(ctx context.Context, habit *model.Habit) error
}

// TaskRepository persists dated task entries.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, userID, id string) (*model.Task, error)
	List(ctx context.Context, userID string) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
}

// StreakRepository persists per-habit streak records.
type StreakRepository interface {
	// Get returns the habit's streak record, or a zero-valued record if
	// none has been written yet.
	Get(ctx context.Context, habitID string) (*model.StreakRecord, error)
	Upsert(ctx context.Context, record *model.StreakRecord) error
}

// TokenBlacklist is the durable set of revoked refresh tokens, keyed by jti.
// Entries for expired tokens are prunable: an expired token fails signature
// validation before the blacklist is ever consulted.
type TokenBlacklist interface {
	Add(ctx context.Context, tokenID string, expiresAt time.Time) error
	Contains(ctx context.Context, tokenID string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) error
}
