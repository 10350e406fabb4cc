package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"studytracker/internal/model"
)

const summaryColumns = `id, user_id, date, maths_problems, physics_problems, chemistry_problems,
	topics_covered, notes, self_rating, total_study_hours, tasks_completed, success_rate, updated_at`

type SummaryRepository struct {
	db *sqlx.DB
}

type summaryRow struct {
	ID                string  `db:"id"`
	UserID            string  `db:"user_id"`
	Date              string  `db:"date"`
	MathsProblems     int     `db:"maths_problems"`
	PhysicsProblems   int     `db:"physics_problems"`
	ChemistryProblems int     `db:"chemistry_problems"`
	TopicsCovered     string  `db:"topics_covered"`
	Notes             string  `db:"notes"`
	SelfRating        int     `db:"self_rating"`
	TotalStudyHours   float64 `db:"total_study_hours"`
	TasksCompleted    int     `db:"tasks_completed"`
	SuccessRate       int     `db:"success_rate"`
	UpdatedAt         int64   `db:"updated_at"`
}

func (row summaryRow) toModel() model.DailySummary {
	return model.DailySummary{
		ID:                row.ID,
		UserID:            row.UserID,
		Date:              row.Date,
		MathsProblems:     row.MathsProblems,
		PhysicsProblems:   row.PhysicsProblems,
		ChemistryProblems: row.ChemistryProblems,
		TopicsCovered:     row.TopicsCovered,
		Notes:             row.Notes,
		SelfRating:        row.SelfRating,
		TotalStudyHours:   row.TotalStudyHours,
		TasksCompleted:    row.TasksCompleted,
		SuccessRate:       row.SuccessRate,
		UpdatedAt:         fromMillis(row.UpdatedAt),
	}
}

func NewSummaryRepository(db *sqlx.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Upsert stores summary as the only record for (UserID, Date). An existing
// record keeps its id and has every other field replaced.
func (r *SummaryRepository) Upsert(ctx context.Context, summary *model.DailySummary) (*model.DailySummary, error) {
	_, err := r.db.ExecContext(
		ctx,
		r.db.Rebind(`INSERT INTO daily_summaries (
			id, user_id, date, maths_problems, physics_problems, chemistry_problems,
			topics_covered, notes, self_rating, total_study_hours, tasks_completed, success_rate, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET
			maths_problems = excluded.maths_problems,
			physics_problems = excluded.physics_problems,
			chemistry_problems = excluded.chemistry_problems,
			topics_covered = excluded.topics_covered,
			notes = excluded.notes,
			self_rating = excluded.self_rating,
			total_study_hours = excluded.total_study_hours,
			tasks_completed = excluded.tasks_completed,
			success_rate = excluded.success_rate,
			updated_at = excluded.updated_at`),
		summary.ID,
		summary.UserID,
		summary.Date,
		summary.MathsProblems,
		summary.PhysicsProblems,
		summary.ChemistryProblems,
		summary.TopicsCovered,
		summary.Notes,
		summary.SelfRating,
		summary.TotalStudyHours,
		summary.TasksCompleted,
		summary.SuccessRate,
		toMillis(summary.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert summary: %w", err)
	}
	return r.GetByUserAndDate(ctx, summary.UserID, summary.Date)
}

func (r *SummaryRepository) GetByUserAndDate(ctx context.Context, userID, date string) (*model.DailySummary, error) {
	var row summaryRow
	err := r.db.GetContext(
		ctx,
		&row,
		r.db.Rebind(`SELECT `+summaryColumns+` FROM daily_summaries WHERE user_id = ? AND date = ?`),
		userID,
		date,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get summary: %w", err)
	}
	summary := row.toModel()
	return &summary, nil
}

// ListByUser returns the user's summaries, newest date first.
func (r *SummaryRepository) ListByUser(ctx context.Context, userID string) ([]model.DailySummary, error) {
	var rows []summaryRow
	err := r.db.SelectContext(
		ctx,
		&rows,
		r.db.Rebind(`SELECT `+summaryColumns+` FROM daily_summaries WHERE user_id = ? ORDER BY date DESC`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}

	summaries := make([]model.DailySummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, row.toModel())
	}
	return summaries, nil
}
