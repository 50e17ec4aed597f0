package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tahmid/habit-tracker/internal/auth"
	"github.com/tahmid/habit-tracker/internal/model"
	"github.com/tahmid/habit-tracker/internal/service"
)

// HabitHandler exposes the habit CRUD and lifecycle endpoints. All routes
// require authentication; the caller only ever sees their own habits.
type HabitHandler struct {
	habits *service.HabitService
	logger *slog.Logger
}

// NewHabitHandler creates a HabitHandler.
func NewHabitHandler(habits *service.HabitService, logger *slog.Logger) *HabitHandler {
	return &HabitHandler{habits: habits, logger: logger}
}

type habitRequest struct {
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	EndDate         *model.Date `json:"end_date"`
	ReminderEnabled bool        `json:"reminder_enabled"`
	ReminderTime    string      `json:"reminder_time"`
}

func (req habitRequest) input() service.HabitInput {
	return service.HabitInput{
		Title:           req.Title,
		Description:     req.Description,
		EndDate:         req.EndDate,
		ReminderEnabled: req.ReminderEnabled,
		ReminderTime:    req.ReminderTime,
	}
}

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, detailResponse{Detail: "Authentication credentials were not provided."})
		return "", false
	}
	return userID, true
}

// HandleList returns the caller's active habits.
func (h *HabitHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	habits, err := h.habits.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, habits)
}

// HandleCreate stores a new active habit.
func (h *HabitHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req habitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	habit, err := h.habits.Create(r.Context(), userID, req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, habit)
}

// HandleGet returns a single active habit.
func (h *HabitHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	habit, err := h.habits.Get(r.Context(), userID, chi.URLParam(r, "habitID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

// HandleUpdate replaces an active habit's editable fields.
func (h *HabitHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req habitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	habit, err := h.habits.Update(r.Context(), userID, chi.URLParam(r, "habitID"), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

// HandleDelete deactivates a habit. The row is kept; the habit simply stops
// showing up.
func (h *HabitHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.habits.Deactivate(r.Context(), userID, chi.URLParam(r, "habitID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reactivateRequest struct {
	EndDate *model.Date `json:"end_date"`
}

// HandleReactivate turns an inactive habit active again with a fresh end
// date. An empty body clears the end date.
func (h *HabitHandler) HandleReactivate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req reactivateRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}

	habit, err := h.habits.Reactivate(r.Context(), userID, chi.URLParam(r, "habitID"), req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

// HandleStreak returns the habit's streak record.
func (h *HabitHandler) HandleStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	record, err := h.habits.Streak(r.Context(), userID, chi.URLParam(r, "habitID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}
