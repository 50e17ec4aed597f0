package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tahmid/habit-tracker/internal/model"
	"github.com/tahmid/habit-tracker/internal/service"
)

// TaskHandler exposes the task endpoints.
type TaskHandler struct {
	tasks  *service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

type taskRequest struct {
	HabitID     string      `json:"habit_id"`
	Description string      `json:"description"`
	Date        *model.Date `json:"date"`
}

// HandleList returns all of the caller's tasks.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// HandleCreate logs a new pending task, optionally linked to an active
// habit. The date defaults to today.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.tasks.Create(r.Context(), userID, service.TaskInput{
		HabitID:     req.HabitID,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// HandleGet returns a single task.
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), userID, chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// HandleComplete marks a task done and rolls a habit-linked completion into
// the habit's streak.
func (h *TaskHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Complete(r.Context(), userID, chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
