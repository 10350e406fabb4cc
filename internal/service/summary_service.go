package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "studytracker/internal/errors"
	"studytracker/internal/model"
	"studytracker/internal/tracking"
)

const maxNotesLength = 4000

type SummaryService struct {
	summaries SummaryStore
	tasks     DayTaskReader
	location  *time.Location
	now       func() time.Time
}

// EndDayInput is what the user reports at the end of a day. Derived fields
// come from the day's tasks.
type EndDayInput struct {
	Date              string
	MathsProblems     int
	PhysicsProblems   int
	ChemistryProblems int
	TopicsCovered     string
	Notes             string
	SelfRating        int
}

func NewSummaryService(summaries SummaryStore, tasks DayTaskReader, location *time.Location) *SummaryService {
	if location == nil {
		location = time.UTC
	}
	return &SummaryService{
		summaries: summaries,
		tasks:     tasks,
		location:  location,
		now:       time.Now,
	}
}

func (s *SummaryService) WithClock(now func() time.Time) *SummaryService {
	s.now = now
	return s
}

// EndDay records the day's summary. Submitting again for the same date
// replaces the earlier record.
func (s *SummaryService) EndDay(ctx context.Context, userID string, input EndDayInput) (*model.DailySummary, *apperrors.APIError) {
	date := input.Date
	if date == "" {
		date = s.now().In(s.location).Format(model.DateLayout)
	} else if !isValidDate(date) {
		return nil, apperrors.BadRequest("invalid_date", "date must be formatted as YYYY-MM-DD")
	}
	if input.MathsProblems < 0 || input.PhysicsProblems < 0 || input.ChemistryProblems < 0 {
		return nil, apperrors.BadRequest("invalid_problem_count", "problem counts must not be negative")
	}
	if input.SelfRating < 1 || input.SelfRating > 5 {
		return nil, apperrors.BadRequest("invalid_rating", "selfRating must be between 1 and 5")
	}
	notes := strings.TrimSpace(input.Notes)
	if len(notes) > maxNotesLength {
		return nil, apperrors.BadRequest("invalid_notes", "notes must be at most 4000 characters")
	}

	tasks, err := s.tasks.ListByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, apperrors.Internal("failed to load tasks for summary")
	}
	tally := tracking.TallyDay(tasks)

	summary, err := s.summaries.Upsert(ctx, &model.DailySummary{
		ID:                uuid.NewString(),
		UserID:            userID,
		Date:              date,
		MathsProblems:     input.MathsProblems,
		PhysicsProblems:   input.PhysicsProblems,
		ChemistryProblems: input.ChemistryProblems,
		TopicsCovered:     strings.TrimSpace(input.TopicsCovered),
		Notes:             notes,
		SelfRating:        input.SelfRating,
		TotalStudyHours:   tally.StudyHours(),
		TasksCompleted:    tally.Completed,
		SuccessRate:       tally.SuccessRate(),
		UpdatedAt:         s.now().UTC(),
	})
	if err != nil {
		return nil, apperrors.Internal("failed to save summary")
	}
	return summary, nil
}

func (s *SummaryService) List(ctx context.Context, userID string) ([]model.DailySummary, *apperrors.APIError) {
	summaries, err := s.summaries.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list summaries")
	}
	return summaries, nil
}
