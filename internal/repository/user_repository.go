package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"studytracker/internal/model"
	"studytracker/internal/tracking"
)

const userColumns = `id, username, name, created_at, current_streak, best_streak,
	last_active_date, total_study_minutes, tasks_completed`

// streak updates are compare-and-swap on last_active_date
const maxStreakAttempts = 3

type UserRepository struct {
	db *sqlx.DB
}

type userRow struct {
	ID                string `db:"id"`
	Username          string `db:"username"`
	Name              string `db:"name"`
	CreatedAt         int64  `db:"created_at"`
	CurrentStreak     int    `db:"current_streak"`
	BestStreak        int    `db:"best_streak"`
	LastActiveDate    string `db:"last_active_date"`
	TotalStudyMinutes int    `db:"total_study_minutes"`
	TasksCompleted    int    `db:"tasks_completed"`
}

func (row userRow) toModel() *model.User {
	return &model.User{
		ID:                row.ID,
		Username:          row.Username,
		Name:              row.Name,
		CreatedAt:         fromMillis(row.CreatedAt),
		CurrentStreak:     row.CurrentStreak,
		BestStreak:        row.BestStreak,
		LastActiveDate:    row.LastActiveDate,
		TotalStudyMinutes: row.TotalStudyMinutes,
		TasksCompleted:    row.TasksCompleted,
	}
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(
		ctx,
		r.db.Rebind(`INSERT INTO users (
			id, username, name, created_at, current_streak, best_streak,
			last_active_date, total_study_minutes, tasks_completed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		user.ID,
		user.Username,
		user.Name,
		toMillis(user.CreatedAt),
		user.CurrentStreak,
		user.BestStreak,
		user.LastActiveDate,
		user.TotalStudyMinutes,
		user.TasksCompleted,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return getUser(ctx, r.db, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return getUser(ctx, r.db, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users ORDER BY username ASC`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]model.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, *row.toModel())
	}
	return users, nil
}

// Leaderboard returns users ranked by total study minutes, ties broken by
// completed task count and then username.
func (r *UserRepository) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	var rows []userRow
	err := r.db.SelectContext(
		ctx,
		&rows,
		r.db.Rebind(`SELECT `+userColumns+` FROM users
		 ORDER BY total_study_minutes DESC, tasks_completed DESC, username ASC
		 LIMIT ?`),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}

	entries := make([]model.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, model.LeaderboardEntry{
			Rank:              i + 1,
			UserID:            row.ID,
			Username:          row.Username,
			Name:              row.Name,
			TotalStudyMinutes: row.TotalStudyMinutes,
			TasksCompleted:    row.TasksCompleted,
			CurrentStreak:     row.CurrentStreak,
			BestStreak:        row.BestStreak,
		})
	}
	return entries, nil
}

// RecordCompletionTx folds one completed task into the user's aggregates.
// Totals are incremented in SQL; the streak fields are written only if
// last_active_date is still the value the streak was computed from.
func (r *UserRepository) RecordCompletionTx(
	ctx context.Context,
	tx *sqlx.Tx,
	userID string,
	actualMinutes int,
	completionDate string,
) (*model.User, error) {
	for attempt := 0; attempt < maxStreakAttempts; attempt++ {
		user, err := getUser(ctx, tx, `SELECT `+userColumns+` FROM users WHERE id = ?`, userID)
		if err != nil {
			return nil, err
		}

		streak, err := tracking.AdvanceStreak(tracking.Streak{
			Current:        user.CurrentStreak,
			Best:           user.BestStreak,
			LastActiveDate: user.LastActiveDate,
		}, completionDate)
		if err != nil {
			return nil, err
		}

		result, err := tx.ExecContext(
			ctx,
			tx.Rebind(`UPDATE users
			 SET total_study_minutes = total_study_minutes + ?,
			     tasks_completed = tasks_completed + 1,
			     current_streak = ?,
			     best_streak = ?,
			     last_active_date = ?
			 WHERE id = ? AND last_active_date = ?`),
			actualMinutes,
			streak.Current,
			streak.Best,
			streak.LastActiveDate,
			userID,
			user.LastActiveDate,
		)
		if err != nil {
			return nil, fmt.Errorf("record completion: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("record completion rows: %w", err)
		}
		if affected == 1 {
			user.TotalStudyMinutes += actualMinutes
			user.TasksCompleted++
			user.CurrentStreak = streak.Current
			user.BestStreak = streak.Best
			user.LastActiveDate = streak.LastActiveDate
			return user, nil
		}
	}
	return nil, ErrStaleUser
}

// SetTotals overwrites the denormalized totals with recomputed values.
func (r *UserRepository) SetTotals(ctx context.Context, userID string, totals tracking.Totals) error {
	result, err := r.db.ExecContext(
		ctx,
		r.db.Rebind(`UPDATE users SET total_study_minutes = ?, tasks_completed = ? WHERE id = ?`),
		totals.StudyMinutes,
		totals.TasksCompleted,
		userID,
	)
	if err != nil {
		return fmt.Errorf("set user totals: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set user totals rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func getUser(ctx context.Context, q sqlx.ExtContext, query string, args ...interface{}) (*model.User, error) {
	var row userRow
	if err := sqlx.GetContext(ctx, q, &row, q.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.toModel(), nil
}
