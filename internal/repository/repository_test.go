package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"studytracker/internal/db"
	"studytracker/internal/model"
	"studytracker/internal/repository"
	"studytracker/internal/tracking"
)

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	_, currentFile, _, _ := runtime.Caller(0)
	migrationsDir := filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")
	if err := db.RunMigrations(database, migrationsDir); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return database
}

func createUser(t *testing.T, users *repository.UserRepository, username string) *model.User {
	t.Helper()
	user := &model.User{
		ID:        uuid.NewString(),
		Username:  username,
		Name:      username,
		CreatedAt: time.Now().UTC(),
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func createTask(t *testing.T, tasks *repository.TaskRepository, userID, date string) *model.Task {
	t.Helper()
	task := &model.Task{
		ID:               uuid.NewString(),
		UserID:           userID,
		Subject:          model.SubjectPhysics,
		Name:             "Kinematics set",
		EstimatedMinutes: 30,
		TaskDate:         date,
		Status:           model.StatusPending,
		CreatedAt:        time.Now().UTC(),
	}
	if err := tasks.Create(context.Background(), task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func saveTransition(t *testing.T, tasks *repository.TaskRepository, task *model.Task, action tracking.Action, now time.Time) (*model.Task, error) {
	t.Helper()
	ctx := context.Background()

	next, err := tracking.Apply(*task, action, now)
	if err != nil {
		t.Fatalf("apply %s: %v", action, err)
	}

	tx, err := tasks.BeginTx(ctx)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer tx.Rollback()

	if err := tasks.SaveTransitionTx(ctx, tx, task.Status, &next); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return &next, nil
}

func TestDuplicateUsername(t *testing.T) {
	users := repository.NewUserRepository(setupDB(t))
	createUser(t, users, "asha")

	err := users.Create(context.Background(), &model.User{
		ID:        uuid.NewString(),
		Username:  "asha",
		Name:      "Other Asha",
		CreatedAt: time.Now().UTC(),
	})
	if !errors.Is(err, repository.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestTaskTimestampsRoundTrip(t *testing.T) {
	database := setupDB(t)
	users := repository.NewUserRepository(database)
	tasks := repository.NewTaskRepository(database)
	user := createUser(t, users, "ravi")
	task := createTask(t, tasks, user.ID, "2026-03-02")

	startedAt := time.Date(2026, 3, 2, 8, 15, 0, 250_000_000, time.UTC)
	if _, err := saveTransition(t, tasks, task, tracking.ActionStart, startedAt); err != nil {
		t.Fatalf("start: %v", err)
	}

	stored, err := tasks.GetByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if stored.Status != model.StatusInProgress {
		t.Fatalf("expected in_progress, got %s", stored.Status)
	}
	if stored.StartedAt == nil || !stored.StartedAt.Equal(startedAt) {
		t.Fatalf("expected startedAt %s, got %v", startedAt, stored.StartedAt)
	}
	if stored.CompletedAt != nil {
		t.Fatal("expected no completedAt")
	}
}

func TestUserAndSummaryTimestampsAreEpochMillis(t *testing.T) {
	database := setupDB(t)
	users := repository.NewUserRepository(database)
	summaries := repository.NewSummaryRepository(database)
	ctx := context.Background()

	createdAt := time.Date(2026, 3, 2, 7, 0, 0, 125_000_000, time.UTC)
	user := &model.User{ID: uuid.NewString(), Username: "ira", Name: "Ira", CreatedAt: createdAt}
	if err := users.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	updatedAt := time.Date(2026, 3, 2, 21, 30, 0, 750_000_000, time.UTC)
	if _, err := summaries.Upsert(ctx, &model.DailySummary{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Date:       "2026-03-02",
		SelfRating: 4,
		UpdatedAt:  updatedAt,
	}); err != nil {
		t.Fatalf("upsert summary: %v", err)
	}

	var rawCreated, rawUpdated int64
	if err := database.Get(&rawCreated, database.Rebind(`SELECT created_at FROM users WHERE id = ?`), user.ID); err != nil {
		t.Fatalf("read raw created_at: %v", err)
	}
	if err := database.Get(&rawUpdated, database.Rebind(`SELECT updated_at FROM daily_summaries WHERE user_id = ?`), user.ID); err != nil {
		t.Fatalf("read raw updated_at: %v", err)
	}
	if rawCreated != createdAt.UnixMilli() || rawUpdated != updatedAt.UnixMilli() {
		t.Fatalf("expected epoch millis %d/%d, got %d/%d", createdAt.UnixMilli(), updatedAt.UnixMilli(), rawCreated, rawUpdated)
	}

	storedUser, err := users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if !storedUser.CreatedAt.Equal(createdAt) {
		t.Fatalf("expected createdAt %s, got %s", createdAt, storedUser.CreatedAt)
	}
	storedSummary, err := summaries.GetByUserAndDate(ctx, user.ID, "2026-03-02")
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if !storedSummary.UpdatedAt.Equal(updatedAt) {
		t.Fatalf("expected updatedAt %s, got %s", updatedAt, storedSummary.UpdatedAt)
	}
}

func TestSecondActiveTaskIsRejected(t *testing.T) {
	database := setupDB(t)
	users := repository.NewUserRepository(database)
	tasks := repository.NewTaskRepository(database)
	user := createUser(t, users, "meera")
	taskA := createTask(t, tasks, user.ID, "2026-03-02")
	taskB := createTask(t, tasks, user.ID, "2026-03-02")

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	if _, err := saveTransition(t, tasks, taskA, tracking.ActionStart, now); err != nil {
		t.Fatalf("start A: %v", err)
	}

	_, err := saveTransition(t, tasks, taskB, tracking.ActionStart, now.Add(time.Minute))
	if !errors.Is(err, repository.ErrActiveTaskExists) {
		t.Fatalf("expected ErrActiveTaskExists, got %v", err)
	}

	storedB, err := tasks.GetByID(context.Background(), taskB.ID)
	if err != nil {
		t.Fatalf("get B: %v", err)
	}
	if storedB.Status != model.StatusPending {
		t.Fatalf("expected B to stay pending, got %s", storedB.Status)
	}

	other := createUser(t, users, "kabir")
	otherTask := createTask(t, tasks, other.ID, "2026-03-02")
	if _, err := saveTransition(t, tasks, otherTask, tracking.ActionStart, now); err != nil {
		t.Fatalf("another user's start should not be blocked: %v", err)
	}
}

func TestStaleTransitionIsRejected(t *testing.T) {
	database := setupDB(t)
	users := repository.NewUserRepository(database)
	tasks := repository.NewTaskRepository(database)
	user := createUser(t, users, "isha")
	task := createTask(t, tasks, user.ID, "2026-03-02")

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	started, err := saveTransition(t, tasks, task, tracking.ActionStart, now)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := saveTransition(t, tasks, started, tracking.ActionPause, now.Add(time.Minute)); err != nil {
		t.Fatalf("pause: %v", err)
	}

	// A second pause computed from the same in_progress snapshot must not double count.
	_, err = saveTransition(t, tasks, started, tracking.ActionPause, now.Add(2*time.Minute))
	if !errors.Is(err, repository.ErrStaleTask) {
		t.Fatalf("expected ErrStaleTask, got %v", err)
	}

	stored, _ := tasks.GetByID(context.Background(), task.ID)
	if stored.ElapsedSeconds != 60 {
		t.Fatalf("expected 60 elapsed seconds, got %d", stored.ElapsedSeconds)
	}
}

func TestRecordCompletionAccumulatesAndTracksStreak(t *testing.T) {
	database := setupDB(t)
	users := repository.NewUserRepository(database)
	tasks := repository.NewTaskRepository(database)
	user := createUser(t, users, "neha")
	ctx := context.Background()

	record := func(minutes int, date string) *model.User {
		t.Helper()
		tx, err := tasks.BeginTx(ctx)
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		defer tx.Rollback()
		updated, err := users.RecordCompletionTx(ctx, tx, user.ID, minutes, date)
		if err != nil {
			t.Fatalf("record completion: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("commit: %v", err)
		}
		return updated
	}

	record(25, "2026-03-01")
	record(10, "2026-03-01")
	record(40, "2026-03-02")
	updated := record(5, "2026-03-05")

	stored, err := users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.TotalStudyMinutes != 80 || stored.TasksCompleted != 4 {
		t.Fatalf("unexpected totals %d/%d", stored.TotalStudyMinutes, stored.TasksCompleted)
	}
	if stored.CurrentStreak != 1 || stored.BestStreak != 2 || stored.LastActiveDate != "2026-03-05" {
		t.Fatalf("unexpected streak %d/%d/%s", stored.CurrentStreak, stored.BestStreak, stored.LastActiveDate)
	}
	if *updated != *stored {
		t.Fatalf("returned user %+v differs from stored %+v", updated, stored)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	database := setupDB(t)
	users := repository.NewUserRepository(database)
	ctx := context.Background()

	for username, totals := range map[string]tracking.Totals{
		"low":  {StudyMinutes: 30, TasksCompleted: 1},
		"high": {StudyMinutes: 300, TasksCompleted: 5},
		"mid":  {StudyMinutes: 120, TasksCompleted: 2},
	} {
		user := createUser(t, users, username)
		if err := users.SetTotals(ctx, user.ID, totals); err != nil {
			t.Fatalf("set totals: %v", err)
		}
	}

	entries, err := users.Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Username != "high" || entries[0].Rank != 1 || entries[1].Username != "mid" {
		t.Fatalf("unexpected order %+v", entries)
	}
}

func TestCompletedTotals(t *testing.T) {
	database := setupDB(t)
	users := repository.NewUserRepository(database)
	tasks := repository.NewTaskRepository(database)
	user := createUser(t, users, "tara")

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	first := createTask(t, tasks, user.ID, "2026-03-02")
	started, _ := saveTransition(t, tasks, first, tracking.ActionStart, now)
	if _, err := saveTransition(t, tasks, started, tracking.ActionComplete, now.Add(25*time.Minute)); err != nil {
		t.Fatalf("complete: %v", err)
	}
	createTask(t, tasks, user.ID, "2026-03-02")

	totals, err := tasks.CompletedTotals(context.Background())
	if err != nil {
		t.Fatalf("completed totals: %v", err)
	}
	if got := totals[user.ID]; got != (tracking.Totals{StudyMinutes: 25, TasksCompleted: 1}) {
		t.Fatalf("unexpected totals %+v", got)
	}
}

func TestSummaryUpsertKeepsLatestSubmission(t *testing.T) {
	database := setupDB(t)
	users := repository.NewUserRepository(database)
	summaries := repository.NewSummaryRepository(database)
	user := createUser(t, users, "dev")
	ctx := context.Background()

	first, err := summaries.Upsert(ctx, &model.DailySummary{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		Date:          "2026-03-02",
		MathsProblems: 10,
		SelfRating:    3,
		UpdatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second, err := summaries.Upsert(ctx, &model.DailySummary{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		Date:            "2026-03-02",
		MathsProblems:   4,
		PhysicsProblems: 7,
		SelfRating:      5,
		UpdatedAt:       time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected upsert to keep id %s, got %s", first.ID, second.ID)
	}
	if second.MathsProblems != 4 || second.PhysicsProblems != 7 || second.SelfRating != 5 {
		t.Fatalf("expected second submission values, got %+v", second)
	}

	if _, err := summaries.Upsert(ctx, &model.DailySummary{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Date:       "2026-03-03",
		SelfRating: 4,
		UpdatedAt:  time.Now().UTC(),
	}); err != nil {
		t.Fatalf("third upsert: %v", err)
	}

	all, err := summaries.ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].Date != "2026-03-03" {
		t.Fatalf("expected two summaries newest first, got %+v", all)
	}
}
