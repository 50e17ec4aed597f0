package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tahmid/habit-tracker/internal/apperror"
	"github.com/tahmid/habit-tracker/internal/model"
	"github.com/tahmid/habit-tracker/internal/repository"
)

// MaxHabitTitleLength bounds habit titles.
const MaxHabitTitleLength = 100

// HabitInput is the caller-editable subset of a habit.
type HabitInput struct {
	Title           string
	Description     string
	EndDate         *model.Date
	ReminderEnabled bool
	ReminderTime    string
}

// HabitService enforces the habit lifecycle: habits are created active,
// deactivated instead of deleted, and only active habits accept changes.
type HabitService struct {
	habits  repository.HabitRepository
	streaks repository.StreakRepository
	logger  *slog.Logger
}

// NewHabitService creates a HabitService.
func NewHabitService(habits repository.HabitRepository, streaks repository.StreakRepository, logger *slog.Logger) *HabitService {
	return &HabitService{
		habits:  habits,
		streaks: streaks,
		logger:  logger,
	}
}

func validateHabitInput(in HabitInput) (HabitInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return in, apperror.ValidationFailed("title", requiredFieldMessage)
	}
	if len(in.Title) > MaxHabitTitleLength {
		return in, apperror.ValidationFailed("title",
			fmt.Sprintf("Ensure this field has no more than %d characters.", MaxHabitTitleLength))
	}
	return in, nil
}

// Create validates and stores a new active habit for the user.
func (s *HabitService) Create(ctx context.Context, userID string, in HabitInput) (*model.Habit, error) {
	in, err := validateHabitInput(in)
	if err != nil {
		return nil, err
	}

	habit := &model.Habit{
		UserID:          userID,
		Title:           in.Title,
		Description:     in.Description,
		EndDate:         in.EndDate,
		ReminderEnabled: in.ReminderEnabled,
		ReminderTime:    in.ReminderTime,
		Status:          model.HabitActive,
	}
	if err := s.habits.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("service/habit: creating habit: %w", err)
	}

	s.logger.Info("habit created",
		slog.String("habitID", habit.ID),
		slog.String("userID", userID),
	)
	return habit, nil
}

// List returns the user's active habits.
func (s *HabitService) List(ctx context.Context, userID string) ([]model.Habit, error) {
	habits, err := s.habits.List(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("service/habit: listing habits: %w", err)
	}
	return habits, nil
}

// Get returns one of the user's habits. Inactive habits are hidden from
// this path; only Reactivate may touch them.
func (s *HabitService) Get(ctx context.Context, userID, id string) (*model.Habit, error) {
	habit, err := s.habits.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("service/habit: getting habit %s: %w", id, err)
	}
	if !habit.IsActive() {
		return nil, apperror.NotFound("habit", id)
	}
	return habit, nil
}

// Update applies new field values to an active habit. Inactive habits are
// immutable.
func (s *HabitService) Update(ctx context.Context, userID, id string, in HabitInput) (*model.Habit, error) {
	habit, err := s.habits.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("service/habit: getting habit %s: %w", id, err)
	}
	if !habit.IsActive() {
		return nil, apperror.InvalidState("Inactive habits cannot be modified")
	}

	in, err = validateHabitInput(in)
	if err != nil {
		return nil, err
	}

	habit.Title = in.Title
	habit.Description = in.Description
	habit.EndDate = in.EndDate
	habit.ReminderEnabled = in.ReminderEnabled
	habit.ReminderTime = in.ReminderTime

	if err := s.habits.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("service/habit: updating habit %s: %w", id, err)
	}
	return habit, nil
}

// Deactivate transitions an active habit to inactive. The row is retained;
// nothing is ever hard-deleted. Deactivating an already-inactive habit is a
// no-op hidden behind not-found, matching Get's visibility rule.
func (s *HabitService) Deactivate(ctx context.Context, userID, id string) error {
	habit, err := s.habits.GetByID(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("service/habit: getting habit %s: %w", id, err)
	}
	if !habit.IsActive() {
		return apperror.NotFound("habit", id)
	}

	habit.Status = model.HabitInactive
	if err := s.habits.Update(ctx, habit); err != nil {
		return fmt.Errorf("service/habit: deactivating habit %s: %w", id, err)
	}

	s.logger.Info("habit deactivated",
		slog.String("habitID", id),
		slog.String("userID", userID),
	)
	return nil
}

// Reactivate transitions an inactive habit back to active and resets its
// end date to the supplied value (which may be nil to clear it).
func (s *HabitService) Reactivate(ctx context.Context, userID, id string, endDate *model.Date) (*model.Habit, error) {
	habit, err := s.habits.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("service/habit: getting habit %s: %w", id, err)
	}
	if habit.IsActive() {
		return nil, apperror.InvalidState("Habit is already active")
	}

	habit.Status = model.HabitActive
	habit.EndDate = endDate
	if err := s.habits.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("service/habit: reactivating habit %s: %w", id, err)
	}

	s.logger.Info("habit reactivated",
		slog.String("habitID", id),
		slog.String("userID", userID),
	)
	return habit, nil
}

// Streak returns the habit's streak record. The habit must be visible to
// the user (active).
func (s *HabitService) Streak(ctx context.Context, userID, id string) (*model.StreakRecord, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	record, err := s.streaks.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/habit: getting streak for habit %s: %w", id, err)
	}
	return record, nil
}
