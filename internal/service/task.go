package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tahmid/habit-tracker/internal/apperror"
	"github.com/tahmid/habit-tracker/internal/model"
	"github.com/tahmid/habit-tracker/internal/repository"
)

// TaskInput is the caller-editable subset of a task.
type TaskInput struct {
	HabitID     string
	Description string
	Date        *model.Date // defaults to today when nil
}

// TaskService handles task logging and completion. Completing a task that
// is linked to a habit folds the completion into that habit's streak.
type TaskService struct {
	tasks   repository.TaskRepository
	habits  repository.HabitRepository
	streaks repository.StreakRepository
	logger  *slog.Logger
	now     func() time.Time
}

// NewTaskService creates a TaskService.
func NewTaskService(
	tasks repository.TaskRepository,
	habits repository.HabitRepository,
	streaks repository.StreakRepository,
	logger *slog.Logger,
) *TaskService {
	return &TaskService{
		tasks:   tasks,
		habits:  habits,
		streaks: streaks,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock replaces the service clock, used by tests to pin "today".
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

// Create logs a new pending task. A habit reference, when present, must
// resolve to one of the user's active habits.
func (s *TaskService) Create(ctx context.Context, userID string, in TaskInput) (*model.Task, error) {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return nil, apperror.ValidationFailed("description", requiredFieldMessage)
	}

	if in.HabitID != "" {
		habit, err := s.habits.GetByID(ctx, userID, in.HabitID)
		if err != nil {
			return nil, apperror.ValidationFailed("habit_id", "Habit does not exist")
		}
		if !habit.IsActive() {
			return nil, apperror.InvalidState("Tasks cannot be logged against inactive habits")
		}
	}

	date := model.NewDate(s.now())
	if in.Date != nil {
		date = *in.Date
	}

	task := &model.Task{
		UserID:      userID,
		HabitID:     in.HabitID,
		Description: in.Description,
		Date:        date,
		Status:      model.TaskPending,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("service/task: creating task: %w", err)
	}

	s.logger.Info("task created",
		slog.String("taskID", task.ID),
		slog.String("userID", userID),
	)
	return task, nil
}

// List returns all of the user's tasks.
func (s *TaskService) List(ctx context.Context, userID string) ([]model.Task, error) {
	tasks, err := s.tasks.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/task: listing tasks: %w", err)
	}
	return tasks, nil
}

// Get returns one of the user's tasks.
func (s *TaskService) Get(ctx context.Context, userID, id string) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("service/task: getting task %s: %w", id, err)
	}
	return task, nil
}

// Complete marks a pending task done. If the task is linked to a habit, the
// habit's streak record absorbs the completion, dated to the task's date.
func (s *TaskService) Complete(ctx context.Context, userID, id string) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("service/task: getting task %s: %w", id, err)
	}
	if task.IsDone() {
		return nil, apperror.InvalidState("Task is already completed")
	}

	task.Status = model.TaskDone
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("service/task: completing task %s: %w", id, err)
	}

	if task.HabitID != "" {
		record, err := s.streaks.Get(ctx, task.HabitID)
		if err != nil {
			return nil, fmt.Errorf("service/task: getting streak for habit %s: %w", task.HabitID, err)
		}
		record.RecordCompletion(task.Date)
		if err := s.streaks.Upsert(ctx, record); err != nil {
			return nil, fmt.Errorf("service/task: updating streak for habit %s: %w", task.HabitID, err)
		}

		s.logger.Info("streak updated",
			slog.String("habitID", task.HabitID),
			slog.Int("currentStreak", record.CurrentStreak),
			slog.Int("longestStreak", record.LongestStreak),
		)
	}

	return task, nil
}
