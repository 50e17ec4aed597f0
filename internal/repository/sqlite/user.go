package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"
	"github.com/tahmid/habit-tracker/internal/apperror"
	"github.com/tahmid/habit-tracker/internal/model"
	"github.com/tahmid/habit-tracker/internal/repository"
)

// UserRepo implements repository.UserRepository.
type UserRepo struct {
	db *DB
}

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, username, email, password_hash, is_guest, notifications_enabled, created_on`

// Create inserts a new user, generating its ID. Unique-constraint races on
// username/email surface as the same field-scoped validation errors the
// service's pre-checks produce, so concurrent registrations stay a 400.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsGuest,
		user.NotificationsEnabled,
		user.CreatedOn,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "users.username"):
			return apperror.ValidationFailed("username", "A user with that username already exists.")
		case isUniqueViolation(err, "users.email"):
			return apperror.ValidationFailed("email", "Email is already taken")
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// GetByID returns the user with the given internal ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getUser(ctx, `id = ?`, id)
}

// GetByUsername returns the user with the exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getUser(ctx, `username = ?`, username)
}

// GetByEmail returns the user with the exact email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, `email = ?`, email)
}

func (r *UserRepo) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where, arg,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsGuest,
		&u.NotificationsEnabled,
		&u.CreatedOn,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}
	return &u, nil
}

// UsernameExists reports whether any user holds the username.
func (r *UserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.userExists(ctx, `username = ?`, username)
}

// EmailExists reports whether any user holds the email.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.userExists(ctx, `email = ?`, email)
}

func (r *UserRepo) userExists(ctx context.Context, where string, arg any) (bool, error) {
	var n int
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE `+where, arg,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking user existence: %w", err)
	}
	return n > 0, nil
}
