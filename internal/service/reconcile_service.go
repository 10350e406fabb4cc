package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"studytracker/internal/tracking"
)

// ReconcileService compares each user's denormalized totals against the
// totals derived from their completed tasks.
type ReconcileService struct {
	users  UserTotalsStore
	source CompletedTotalsSource
	logger *log.Logger
}

type ReconcileReport struct {
	UsersChecked int                    `json:"usersChecked"`
	Drifts       []*tracking.DriftError `json:"-"`
	Repaired     int                    `json:"repaired"`
}

func NewReconcileService(users UserTotalsStore, source CompletedTotalsSource, logger *log.Logger) *ReconcileService {
	if logger == nil {
		logger = log.Default()
	}
	return &ReconcileService{users: users, source: source, logger: logger}
}

// Reconcile reports every user whose stored totals drifted. With apply set,
// drifted totals are overwritten with the derived values.
func (s *ReconcileService) Reconcile(ctx context.Context, apply bool) (*ReconcileReport, error) {
	derived, err := s.source.CompletedTotals(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{UsersChecked: len(users)}
	for _, user := range users {
		stored := tracking.Totals{StudyMinutes: user.TotalStudyMinutes, TasksCompleted: user.TasksCompleted}
		cmpErr := tracking.CompareTotals(user.ID, stored, derived[user.ID])

		var drift *tracking.DriftError
		if !errors.As(cmpErr, &drift) {
			continue
		}
		s.logger.Printf("reconcile: %v", drift)
		report.Drifts = append(report.Drifts, drift)

		if !apply {
			continue
		}
		if err := s.users.SetTotals(ctx, user.ID, drift.Derived); err != nil {
			return report, fmt.Errorf("repair totals for user %s: %w", user.ID, err)
		}
		report.Repaired++
	}
	return report, nil
}
