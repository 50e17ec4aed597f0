package model

// TaskStatus is the completion state of a logged task.
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskDone    TaskStatus = "done"
)

// Task is a single dated entry a user logs, optionally against a habit.
// Completing a habit-linked task feeds that habit's streak record.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"-"`
	HabitID     string     `json:"habit_id,omitempty"` // empty for standalone tasks
	Description string     `json:"description"`
	Date        Date       `json:"date"`
	Status      TaskStatus `json:"status"`
}

// IsDone reports whether the task has been completed.
func (t *Task) IsDone() bool {
	return t.Status == TaskDone
}
