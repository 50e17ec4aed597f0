package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/tahmid/habit-tracker/internal/apperror"
	"github.com/tahmid/habit-tracker/internal/model"
	"github.com/tahmid/habit-tracker/internal/repository"
)

// HabitRepo implements repository.HabitRepository.
type HabitRepo struct {
	db *DB
}

var _ repository.HabitRepository = (*HabitRepo)(nil)

const habitColumns = `id, user_id, title, description, created_on, end_date, reminder_enabled, reminder_time, status`

// Create inserts a new habit, generating its ID and creation timestamp.
func (r *HabitRepo) Create(ctx context.Context, habit *model.Habit) error {
	habit.ID = xid.New().String()
	habit.CreatedOn = time.Now().UTC()
	if habit.Status == "" {
		habit.Status = model.HabitActive
	}

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO habits (`+habitColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		habit.ID,
		habit.UserID,
		habit.Title,
		habit.Description,
		habit.CreatedOn,
		nullableDate(habit.EndDate),
		habit.ReminderEnabled,
		habit.ReminderTime,
		string(habit.Status),
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting habit %q: %w", habit.Title, err)
	}
	return nil
}

// GetByID returns the habit only if it belongs to userID; anything else is
// a not-found, so one user cannot probe another's habit IDs.
func (r *HabitRepo) GetByID(ctx context.Context, userID, id string) (*model.Habit, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+habitColumns+` FROM habits WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	habit, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("habit", id)
		}
		return nil, fmt.Errorf("sqlite: getting habit %s: %w", id, err)
	}
	return habit, nil
}

// List returns the user's habits, newest first. With onlyActive set,
// inactive (soft-deleted) habits are filtered out.
func (r *HabitRepo) List(ctx context.Context, userID string, onlyActive bool) ([]model.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = ?`
	args := []any{userID}
	if onlyActive {
		query += ` AND status = ?`
		args = append(args, string(model.HabitActive))
	}
	query += ` ORDER BY created_on DESC`

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing habits: %w", err)
	}
	defer rows.Close()

	habits := []model.Habit{}
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning habit: %w", err)
		}
		habits = append(habits, *habit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating habits: %w", err)
	}
	return habits, nil
}

// Update rewrites the habit's mutable columns.
func (r *HabitRepo) Update(ctx context.Context, habit *model.Habit) error {
	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE habits
		 SET title = ?, description = ?, end_date = ?, reminder_enabled = ?, reminder_time = ?, status = ?
		 WHERE id = ? AND user_id = ?`,
		habit.Title,
		habit.Description,
		nullableDate(habit.EndDate),
		habit.ReminderEnabled,
		habit.ReminderTime,
		string(habit.Status),
		habit.ID,
		habit.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating habit %s: %w", habit.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating habit %s: %w", habit.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("habit", habit.ID)
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(s scanner) (*model.Habit, error) {
	var (
		h       model.Habit
		status  string
		endDate sql.NullString
	)
	err := s.Scan(
		&h.ID,
		&h.UserID,
		&h.Title,
		&h.Description,
		&h.CreatedOn,
		&endDate,
		&h.ReminderEnabled,
		&h.ReminderTime,
		&status,
	)
	if err != nil {
		return nil, err
	}
	h.Status = model.HabitStatus(status)
	if endDate.Valid && endDate.String != "" {
		d, err := model.ParseDate(endDate.String)
		if err != nil {
			return nil, err
		}
		h.EndDate = &d
	}
	return &h, nil
}

// nullableDate converts an optional date to its storage value.
func nullableDate(d *model.Date) any {
	if d == nil {
		return nil
	}
	return *d
}
