package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tahmid/habit-tracker/internal/model"
	"github.com/tahmid/habit-tracker/internal/repository"
)

// StreakRepo implements repository.StreakRepository.
type StreakRepo struct {
	db *DB
}

var _ repository.StreakRepository = (*StreakRepo)(nil)

// Get returns the habit's streak record. A habit with no completions yet
// yields a zero-valued record rather than an error, so callers can fold a
// first completion into it directly.
func (r *StreakRepo) Get(ctx context.Context, habitID string) (*model.StreakRecord, error) {
	var (
		rec  model.StreakRecord
		last sql.NullString
	)
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT habit_id, current_streak, longest_streak, last_completed_date
		 FROM streak_records WHERE habit_id = ?`,
		habitID,
	).Scan(&rec.HabitID, &rec.CurrentStreak, &rec.LongestStreak, &last)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &model.StreakRecord{HabitID: habitID}, nil
		}
		return nil, fmt.Errorf("sqlite: getting streak for habit %s: %w", habitID, err)
	}
	if last.Valid && last.String != "" {
		d, err := model.ParseDate(last.String)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parsing streak date: %w", err)
		}
		rec.LastCompletedDate = &d
	}
	return &rec, nil
}

// Upsert writes the streak record, inserting on first completion and
// replacing on every one after (one record per habit).
func (r *StreakRepo) Upsert(ctx context.Context, record *model.StreakRecord) error {
	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO streak_records (habit_id, current_streak, longest_streak, last_completed_date)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(habit_id) DO UPDATE SET
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			last_completed_date = excluded.last_completed_date`,
		record.HabitID,
		record.CurrentStreak,
		record.LongestStreak,
		nullableDate(record.LastCompletedDate),
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting streak for habit %s: %w", record.HabitID, err)
	}
	return nil
}
