package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type habitBody struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	EndDate         *string `json:"end_date"`
	ReminderEnabled bool    `json:"reminder_enabled"`
	Status          string  `json:"status"`
}

func createHabit(t *testing.T, h http.Handler, token, title string) habitBody {
	t.Helper()
	rr := doJSON(t, h, http.MethodPost, "/api/v1/habits",
		fmt.Sprintf(`{"title":%q,"description":"daily"}`, title), token)
	require.Equal(t, http.StatusCreated, rr.Code, "create habit failed: %s", rr.Body.String())

	var habit habitBody
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&habit))
	return habit
}

func TestHabitEndpoints_RequireAuth(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, http.MethodGet, "/api/v1/habits", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHabitLifecycle(t *testing.T) {
	h := newTestServer(t)
	env := register(t, h, "frank", "frank@example.com")
	token := env.Access

	habit := createHabit(t, h, token, "Morning run")
	assert.Equal(t, "active", habit.Status)
	assert.Nil(t, habit.EndDate)

	// Listed while active.
	rr := doJSON(t, h, http.MethodGet, "/api/v1/habits", "", token)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []habitBody
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, habit.ID, list[0].ID)

	// Update replaces the editable fields.
	rr = doJSON(t, h, http.MethodPut, "/api/v1/habits/"+habit.ID,
		`{"title":"Evening run","description":"after work","end_date":"2026-12-31"}`, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var updated habitBody
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&updated))
	assert.Equal(t, "Evening run", updated.Title)
	if assert.NotNil(t, updated.EndDate) {
		assert.Equal(t, "2026-12-31", *updated.EndDate)
	}

	// Delete deactivates instead of removing.
	rr = doJSON(t, h, http.MethodDelete, "/api/v1/habits/"+habit.ID, "", token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, h, http.MethodGet, "/api/v1/habits/"+habit.ID, "", token)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, h, http.MethodGet, "/api/v1/habits", "", token)
	require.Equal(t, http.StatusOK, rr.Code)
	list = nil
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	assert.Empty(t, list)

	// Reactivation brings it back with a fresh end date.
	rr = doJSON(t, h, http.MethodPost, "/api/v1/habits/"+habit.ID+"/reactivate",
		`{"end_date":"2027-06-30"}`, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var revived habitBody
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&revived))
	assert.Equal(t, "active", revived.Status)
	if assert.NotNil(t, revived.EndDate) {
		assert.Equal(t, "2027-06-30", *revived.EndDate)
	}

	// Reactivating an active habit is a state error, not a field error.
	rr = doJSON(t, h, http.MethodPost, "/api/v1/habits/"+habit.ID+"/reactivate", `{}`, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var detail map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&detail))
	assert.Equal(t, "Habit is already active", detail["detail"])
}

func TestHabitEndpoints_Validation(t *testing.T) {
	h := newTestServer(t)
	env := register(t, h, "grace", "grace@example.com")

	rr := doJSON(t, h, http.MethodPost, "/api/v1/habits", `{"title":"  "}`, env.Access)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var errs map[string][]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&errs))
	assert.Equal(t, []string{"This field is required."}, errs["title"])
}

func TestHabitEndpoints_ScopedToOwner(t *testing.T) {
	h := newTestServer(t)
	owner := register(t, h, "owner", "owner@example.com")
	other := register(t, h, "other", "other@example.com")

	habit := createHabit(t, h, owner.Access, "Private habit")

	rr := doJSON(t, h, http.MethodGet, "/api/v1/habits/"+habit.ID, "", other.Access)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, h, http.MethodGet, "/api/v1/habits", "", other.Access)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []habitBody
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	assert.Empty(t, list)
}

type streakBody struct {
	HabitID           string  `json:"habit_id"`
	CurrentStreak     int     `json:"current_streak"`
	LongestStreak     int     `json:"longest_streak"`
	LastCompletedDate *string `json:"last_completed_date"`
}

func streakOf(t *testing.T, h http.Handler, token, habitID string) streakBody {
	t.Helper()
	rr := doJSON(t, h, http.MethodGet, "/api/v1/habits/"+habitID+"/streak", "", token)
	require.Equal(t, http.StatusOK, rr.Code, "streak fetch failed: %s", rr.Body.String())

	var record streakBody
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&record))
	return record
}

func TestStreakEndpoint_FreshHabit(t *testing.T) {
	h := newTestServer(t)
	env := register(t, h, "heidi", "heidi@example.com")

	habit := createHabit(t, h, env.Access, "Meditate")
	record := streakOf(t, h, env.Access, habit.ID)

	assert.Equal(t, habit.ID, record.HabitID)
	assert.Zero(t, record.CurrentStreak)
	assert.Zero(t, record.LongestStreak)
	assert.Nil(t, record.LastCompletedDate)
}

func completeTaskOn(t *testing.T, h http.Handler, token, habitID, day string) {
	t.Helper()
	rr := doJSON(t, h, http.MethodPost, "/api/v1/tasks",
		fmt.Sprintf(`{"habit_id":%q,"description":"session","date":%q}`, habitID, day), token)
	require.Equal(t, http.StatusCreated, rr.Code, "create task failed: %s", rr.Body.String())

	var task struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&task))

	rr = doJSON(t, h, http.MethodPost, "/api/v1/tasks/"+task.ID+"/complete", "", token)
	require.Equal(t, http.StatusOK, rr.Code, "complete task failed: %s", rr.Body.String())
}

func TestStreakEndpoint_GrowsAndResets(t *testing.T) {
	h := newTestServer(t)
	env := register(t, h, "ivan", "ivan@example.com")
	habit := createHabit(t, h, env.Access, "Read")

	completeTaskOn(t, h, env.Access, habit.ID, "2026-03-01")
	completeTaskOn(t, h, env.Access, habit.ID, "2026-03-02")

	record := streakOf(t, h, env.Access, habit.ID)
	assert.Equal(t, 2, record.CurrentStreak)
	assert.Equal(t, 2, record.LongestStreak)
	if assert.NotNil(t, record.LastCompletedDate) {
		assert.Equal(t, "2026-03-02", *record.LastCompletedDate)
	}

	// A gap restarts the current streak but the longest survives.
	completeTaskOn(t, h, env.Access, habit.ID, "2026-03-05")

	record = streakOf(t, h, env.Access, habit.ID)
	assert.Equal(t, 1, record.CurrentStreak)
	assert.Equal(t, 2, record.LongestStreak)
}
