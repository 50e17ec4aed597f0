package model

import "time"

// HabitStatus is the lifecycle state of a habit. Deleting a habit never
// removes the row; it transitions the habit to inactive, from which only
// reactivation is allowed.
type HabitStatus string

const (
	HabitActive   HabitStatus = "active"
	HabitInactive HabitStatus = "inactive"
)

// Habit is a recurring activity a user wants to build. Only active habits
// are mutable; the transition rules live in the habit service.
type Habit struct {
	ID              string      `json:"id"`
	UserID          string      `json:"-"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	CreatedOn       time.Time   `json:"created_on"`
	EndDate         *Date       `json:"end_date"`
	ReminderEnabled bool        `json:"reminder_enabled"`
	ReminderTime    string      `json:"reminder_time,omitempty"` // "HH:MM", empty when no reminder is set
	Status          HabitStatus `json:"status"`
}

// IsActive reports whether the habit accepts mutations and task logging.
func (h *Habit) IsActive() bool {
	return h.Status == HabitActive
}
