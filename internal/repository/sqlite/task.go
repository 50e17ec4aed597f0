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

// TaskRepo implements repository.TaskRepository.
type TaskRepo struct {
	db *DB
}

var _ repository.TaskRepository = (*TaskRepo)(nil)

const taskColumns = `id, user_id, habit_id, description, date, status`

// Create inserts a new task, generating its ID. An empty HabitID stores as
// NULL so the foreign key constraint does not fire for standalone tasks.
func (r *TaskRepo) Create(ctx context.Context, task *model.Task) error {
	task.ID = xid.New().String()
	if task.Status == "" {
		task.Status = model.TaskPending
	}

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.UserID,
		nullableString(task.HabitID),
		task.Description,
		task.Date,
		string(task.Status),
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting task: %w", err)
	}
	return nil
}

// GetByID returns the task only if it belongs to userID.
func (r *TaskRepo) GetByID(ctx context.Context, userID, id string) (*model.Task, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("task", id)
		}
		return nil, fmt.Errorf("sqlite: getting task %s: %w", id, err)
	}
	return task, nil
}

// List returns all of the user's tasks, newest date first.
func (r *TaskRepo) List(ctx context.Context, userID string) ([]model.Task, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY date DESC, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tasks: %w", err)
	}
	return tasks, nil
}

// Update rewrites the task's mutable columns.
func (r *TaskRepo) Update(ctx context.Context, task *model.Task) error {
	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE tasks SET description = ?, date = ?, status = ?
		 WHERE id = ? AND user_id = ?`,
		task.Description,
		task.Date,
		string(task.Status),
		task.ID,
		task.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating task %s: %w", task.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating task %s: %w", task.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("task", task.ID)
	}
	return nil
}

func scanTask(s scanner) (*model.Task, error) {
	var (
		t       model.Task
		habitID sql.NullString
		status  string
	)
	err := s.Scan(
		&t.ID,
		&t.UserID,
		&habitID,
		&t.Description,
		&t.Date,
		&status,
	)
	if err != nil {
		return nil, err
	}
	t.HabitID = habitID.String
	t.Status = model.TaskStatus(status)
	return &t, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
