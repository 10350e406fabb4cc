package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"studytracker/internal/model"
	"studytracker/internal/tracking"
)

// TaskStore is the task half of the persistent store.
type TaskStore interface {
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
	Create(ctx context.Context, task *model.Task) error
	CreateMany(ctx context.Context, tasks []model.Task) error
	GetByID(ctx context.Context, id string) (*model.Task, error)
	GetTx(ctx context.Context, tx *sqlx.Tx, id string) (*model.Task, error)
	FindInProgress(ctx context.Context, userID string) (*model.Task, error)
	FindInProgressTx(ctx context.Context, tx *sqlx.Tx, userID string) (*model.Task, error)
	SaveTransitionTx(ctx context.Context, tx *sqlx.Tx, prevStatus string, task *model.Task) error
	ListByUserAndDate(ctx context.Context, userID, date string) ([]model.Task, error)
	ListByDateRange(ctx context.Context, from, to string) ([]model.Task, error)
}

// CompletionRecorder applies a completed task to its owner's aggregates
// inside the transaction that completed the task.
type CompletionRecorder interface {
	RecordCompletionTx(ctx context.Context, tx *sqlx.Tx, userID string, actualMinutes int, completionDate string) (*model.User, error)
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}

type SummaryStore interface {
	Upsert(ctx context.Context, summary *model.DailySummary) (*model.DailySummary, error)
	ListByUser(ctx context.Context, userID string) ([]model.DailySummary, error)
}

// DayTaskReader lists one user's tasks for one date.
type DayTaskReader interface {
	ListByUserAndDate(ctx context.Context, userID, date string) ([]model.Task, error)
}

type CompletedTotalsSource interface {
	CompletedTotals(ctx context.Context) (map[string]tracking.Totals, error)
}

type UserTotalsStore interface {
	ListAll(ctx context.Context) ([]model.User, error)
	SetTotals(ctx context.Context, userID string, totals tracking.Totals) error
}
