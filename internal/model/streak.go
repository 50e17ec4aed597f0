package model

// StreakRecord tracks consecutive-day completion for one habit.
// Exactly one record exists per habit (created lazily on first completion).
type StreakRecord struct {
	HabitID           string `json:"habit_id"`
	CurrentStreak     int    `json:"current_streak"`
	LongestStreak     int    `json:"longest_streak"`
	LastCompletedDate *Date  `json:"last_completed_date"`
}

// RecordCompletion folds a completion on the given date into the streak.
//
// Rules:
//   - same day as the last completion: no change (one completion counts per day)
//   - the day after the last completion: the current streak grows by one
//   - any other day: the current streak restarts at one
//
// LongestStreak never decreases.
func (s *StreakRecord) RecordCompletion(date Date) {
	switch {
	case s.LastCompletedDate != nil && s.LastCompletedDate.Equal(date):
		return
	case s.LastCompletedDate != nil && s.LastCompletedDate.AddDays(1).Equal(date):
		s.CurrentStreak++
	default:
		s.CurrentStreak = 1
	}

	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}

	d := date
	s.LastCompletedDate = &d
}
