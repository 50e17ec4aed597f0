package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/tahmid/habit-tracker/internal/apperror"
	"github.com/tahmid/habit-tracker/internal/auth"
	"github.com/tahmid/habit-tracker/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// In-memory fakes for the repository interfaces. Plain structs instead of a
// mock framework keep the tests readable: what a fake does is exactly what
// it says.

type fakeUserRepo struct {
	users  map[string]*model.User // keyed by internal ID
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Username == user.Username {
			return apperror.ValidationFailed("username", "A user with that username already exists.")
		}
		if user.Email != "" && u.Email == user.Email {
			return apperror.ValidationFailed("email", "Email is already taken")
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperror.NotFound("user", id)
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := f.GetByUsername(ctx, username)
	return err == nil, nil
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

type fakeBlacklist struct {
	revoked map[string]time.Time
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{revoked: make(map[string]time.Time)}
}

func (f *fakeBlacklist) Add(ctx context.Context, tokenID string, expiresAt time.Time) error {
	f.revoked[tokenID] = expiresAt
	return nil
}

func (f *fakeBlacklist) Contains(ctx context.Context, tokenID string) (bool, error) {
	_, ok := f.revoked[tokenID]
	return ok, nil
}

func (f *fakeBlacklist) DeleteExpired(ctx context.Context, now time.Time) error {
	for id, exp := range f.revoked {
		if !exp.After(now) {
			delete(f.revoked, id)
		}
	}
	return nil
}

type fakeHabitRepo struct {
	habits map[string]*model.Habit
	nextID int
}

func newFakeHabitRepo() *fakeHabitRepo {
	return &fakeHabitRepo{habits: make(map[string]*model.Habit)}
}

func (f *fakeHabitRepo) Create(ctx context.Context, habit *model.Habit) error {
	f.nextID++
	habit.ID = fmt.Sprintf("habit-%d", f.nextID)
	habit.CreatedOn = time.Now().UTC()
	copied := *habit
	f.habits[habit.ID] = &copied
	return nil
}

func (f *fakeHabitRepo) GetByID(ctx context.Context, userID, id string) (*model.Habit, error) {
	if h, ok := f.habits[id]; ok && h.UserID == userID {
		copied := *h
		return &copied, nil
	}
	return nil, apperror.NotFound("habit", id)
}

func (f *fakeHabitRepo) List(ctx context.Context, userID string, onlyActive bool) ([]model.Habit, error) {
	out := []model.Habit{}
	for _, h := range f.habits {
		if h.UserID != userID {
			continue
		}
		if onlyActive && !h.IsActive() {
			continue
		}
		out = append(out, *h)
	}
	return out, nil
}

func (f *fakeHabitRepo) Update(ctx context.Context, habit *model.Habit) error {
	if h, ok := f.habits[habit.ID]; !ok || h.UserID != habit.UserID {
		return apperror.NotFound("habit", habit.ID)
	}
	copied := *habit
	f.habits[habit.ID] = &copied
	return nil
}

type fakeTaskRepo struct {
	tasks  map[string]*model.Task
	nextID int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*model.Task)}
}

func (f *fakeTaskRepo) Create(ctx context.Context, task *model.Task) error {
	f.nextID++
	task.ID = fmt.Sprintf("task-%d", f.nextID)
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskRepo) GetByID(ctx context.Context, userID, id string) (*model.Task, error) {
	if t, ok := f.tasks[id]; ok && t.UserID == userID {
		copied := *t
		return &copied, nil
	}
	return nil, apperror.NotFound("task", id)
}

func (f *fakeTaskRepo) List(ctx context.Context, userID string) ([]model.Task, error) {
	out := []model.Task{}
	for _, t := range f.tasks {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) Update(ctx context.Context, task *model.Task) error {
	if t, ok := f.tasks[task.ID]; !ok || t.UserID != task.UserID {
		return apperror.NotFound("task", task.ID)
	}
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

type fakeStreakRepo struct {
	records map[string]*model.StreakRecord
}

func newFakeStreakRepo() *fakeStreakRepo {
	return &fakeStreakRepo{records: make(map[string]*model.StreakRecord)}
}

func (f *fakeStreakRepo) Get(ctx context.Context, habitID string) (*model.StreakRecord, error) {
	if r, ok := f.records[habitID]; ok {
		copied := *r
		return &copied, nil
	}
	return &model.StreakRecord{HabitID: habitID}, nil
}

func (f *fakeStreakRepo) Upsert(ctx context.Context, record *model.StreakRecord) error {
	copied := *record
	f.records[record.HabitID] = &copied
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestAuthService wires an AuthService with fakes, bcrypt at minimum
// cost, and a clock pinned to fixedToday.
func newTestAuthService(t *testing.T, users *fakeUserRepo, blacklist *fakeBlacklist) *AuthService {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	passwords := auth.NewPasswordServiceWithCost(bcrypt.MinCost)
	guests := auth.NewGuestGenerator()

	svc := NewAuthService(users, blacklist, tokens, passwords, guests, testLogger())
	return svc.WithClock(func() time.Time { return fixedToday })
}

var fixedToday = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
