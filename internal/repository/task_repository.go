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

const taskColumns = `id, user_id, subject, name, estimated_minutes, elapsed_seconds,
	started_at, last_resumed_at, completed_at, actual_minutes, task_date, status, created_at`

type TaskRepository struct {
	db *sqlx.DB
}

type taskRow struct {
	ID               string        `db:"id"`
	UserID           string        `db:"user_id"`
	Subject          string        `db:"subject"`
	Name             string        `db:"name"`
	EstimatedMinutes int           `db:"estimated_minutes"`
	ElapsedSeconds   int64         `db:"elapsed_seconds"`
	StartedAt        sql.NullInt64 `db:"started_at"`
	LastResumedAt    sql.NullInt64 `db:"last_resumed_at"`
	CompletedAt      sql.NullInt64 `db:"completed_at"`
	ActualMinutes    int           `db:"actual_minutes"`
	TaskDate         string        `db:"task_date"`
	Status           string        `db:"status"`
	CreatedAt        int64         `db:"created_at"`
}

func (row taskRow) toModel() model.Task {
	return model.Task{
		ID:               row.ID,
		UserID:           row.UserID,
		Subject:          row.Subject,
		Name:             row.Name,
		EstimatedMinutes: row.EstimatedMinutes,
		ElapsedSeconds:   row.ElapsedSeconds,
		StartedAt:        fromNullMillis(row.StartedAt),
		LastResumedAt:    fromNullMillis(row.LastResumedAt),
		CompletedAt:      fromNullMillis(row.CompletedAt),
		ActualMinutes:    row.ActualMinutes,
		TaskDate:         row.TaskDate,
		Status:           row.Status,
		CreatedAt:        fromMillis(row.CreatedAt),
	}
}

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return insertTask(ctx, r.db, task)
}

// CreateMany inserts tasks in one transaction: either every task is stored
// or none is.
func (r *TaskRepository) CreateMany(ctx context.Context, tasks []model.Task) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range tasks {
		if err := insertTask(ctx, tx, &tasks[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tasks: %w", err)
	}
	return nil
}

func insertTask(ctx context.Context, q sqlx.ExtContext, task *model.Task) error {
	_, err := q.ExecContext(
		ctx,
		q.Rebind(`INSERT INTO tasks (
			id, user_id, subject, name, estimated_minutes, elapsed_seconds,
			started_at, last_resumed_at, completed_at, actual_minutes, task_date, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		task.ID,
		task.UserID,
		task.Subject,
		task.Name,
		task.EstimatedMinutes,
		task.ElapsedSeconds,
		nullMillis(task.StartedAt),
		nullMillis(task.LastResumedAt),
		nullMillis(task.CompletedAt),
		task.ActualMinutes,
		task.TaskDate,
		task.Status,
		toMillis(task.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*model.Task, error) {
	return getTask(ctx, r.db, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
}

func (r *TaskRepository) GetTx(ctx context.Context, tx *sqlx.Tx, id string) (*model.Task, error) {
	return getTask(ctx, tx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
}

// FindInProgressTx returns the user's running task or ErrNotFound.
func (r *TaskRepository) FindInProgressTx(ctx context.Context, tx *sqlx.Tx, userID string) (*model.Task, error) {
	return getTask(
		ctx,
		tx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND status = ? LIMIT 1`,
		userID,
		model.StatusInProgress,
	)
}

func (r *TaskRepository) FindInProgress(ctx context.Context, userID string) (*model.Task, error) {
	return getTask(
		ctx,
		r.db,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND status = ? LIMIT 1`,
		userID,
		model.StatusInProgress,
	)
}

// SaveTransitionTx persists the timer fields of task, provided the stored row
// still has prevStatus. When task enters in_progress the update also requires
// that no other task of the owner is in progress, so the check and the write
// are one statement.
func (r *TaskRepository) SaveTransitionTx(ctx context.Context, tx *sqlx.Tx, prevStatus string, task *model.Task) error {
	query := `UPDATE tasks
		 SET status = ?,
		     elapsed_seconds = ?,
		     started_at = ?,
		     last_resumed_at = ?,
		     completed_at = ?,
		     actual_minutes = ?
		 WHERE id = ? AND user_id = ? AND status = ?`
	args := []interface{}{
		task.Status,
		task.ElapsedSeconds,
		nullMillis(task.StartedAt),
		nullMillis(task.LastResumedAt),
		nullMillis(task.CompletedAt),
		task.ActualMinutes,
		task.ID,
		task.UserID,
		prevStatus,
	}

	activating := task.Status == model.StatusInProgress
	if activating {
		query += ` AND NOT EXISTS (
			SELECT 1 FROM tasks t2 WHERE t2.user_id = ? AND t2.status = ? AND t2.id <> ?
		)`
		args = append(args, task.UserID, model.StatusInProgress, task.ID)
	}

	result, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrActiveTaskExists
		}
		return fmt.Errorf("save task transition: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save task transition rows: %w", err)
	}
	if affected == 1 {
		return nil
	}

	if activating {
		active, findErr := r.FindInProgressTx(ctx, tx, task.UserID)
		if findErr == nil && active.ID != task.ID {
			return ErrActiveTaskExists
		}
		if findErr != nil && !errors.Is(findErr, ErrNotFound) {
			return findErr
		}
	}
	return ErrStaleTask
}

func (r *TaskRepository) ListByUserAndDate(ctx context.Context, userID, date string) ([]model.Task, error) {
	return selectTasks(
		ctx,
		r.db,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND task_date = ? ORDER BY created_at ASC`,
		userID,
		date,
	)
}

// ListByDateRange returns every user's tasks with from <= task_date <= to.
func (r *TaskRepository) ListByDateRange(ctx context.Context, from, to string) ([]model.Task, error) {
	return selectTasks(
		ctx,
		r.db,
		`SELECT `+taskColumns+` FROM tasks WHERE task_date >= ? AND task_date <= ?
		 ORDER BY task_date DESC, created_at DESC`,
		from,
		to,
	)
}

func (r *TaskRepository) ListCompletedByUser(ctx context.Context, userID string) ([]model.Task, error) {
	return selectTasks(
		ctx,
		r.db,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND status IN (?, ?)
		 ORDER BY completed_at DESC`,
		userID,
		model.StatusCompletedOnTime,
		model.StatusCompletedDelayed,
	)
}

// CompletedTotals derives each user's totals from completed task records.
// Users without completed tasks are absent from the map.
func (r *TaskRepository) CompletedTotals(ctx context.Context) (map[string]tracking.Totals, error) {
	var rows []struct {
		UserID       string `db:"user_id"`
		StudyMinutes int    `db:"study_minutes"`
		Completed    int    `db:"completed"`
	}
	err := r.db.SelectContext(
		ctx,
		&rows,
		r.db.Rebind(`SELECT user_id,
		        COALESCE(SUM(actual_minutes), 0) AS study_minutes,
		        COUNT(1) AS completed
		 FROM tasks
		 WHERE status IN (?, ?)
		 GROUP BY user_id`),
		model.StatusCompletedOnTime,
		model.StatusCompletedDelayed,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate completed tasks: %w", err)
	}

	totals := make(map[string]tracking.Totals, len(rows))
	for _, row := range rows {
		totals[row.UserID] = tracking.Totals{StudyMinutes: row.StudyMinutes, TasksCompleted: row.Completed}
	}
	return totals, nil
}

func getTask(ctx context.Context, q sqlx.ExtContext, query string, args ...interface{}) (*model.Task, error) {
	var row taskRow
	if err := sqlx.GetContext(ctx, q, &row, q.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	task := row.toModel()
	return &task, nil
}

func selectTasks(ctx context.Context, q sqlx.ExtContext, query string, args ...interface{}) ([]model.Task, error) {
	var rows []taskRow
	if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toModel())
	}
	return tasks, nil
}
