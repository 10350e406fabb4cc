package tracking_test

import (
	"errors"
	"testing"

	"studytracker/internal/model"
	"studytracker/internal/tracking"
)

func TestAdvanceStreak(t *testing.T) {
	cases := []struct {
		name   string
		before tracking.Streak
		date   string
		want   tracking.Streak
	}{
		{
			name:   "first completion",
			before: tracking.Streak{},
			date:   "2026-03-02",
			want:   tracking.Streak{Current: 1, Best: 1, LastActiveDate: "2026-03-02"},
		},
		{
			name:   "same day",
			before: tracking.Streak{Current: 3, Best: 5, LastActiveDate: "2026-03-02"},
			date:   "2026-03-02",
			want:   tracking.Streak{Current: 3, Best: 5, LastActiveDate: "2026-03-02"},
		},
		{
			name:   "next day",
			before: tracking.Streak{Current: 5, Best: 5, LastActiveDate: "2026-02-28"},
			date:   "2026-03-01",
			want:   tracking.Streak{Current: 6, Best: 6, LastActiveDate: "2026-03-01"},
		},
		{
			name:   "gap resets",
			before: tracking.Streak{Current: 4, Best: 9, LastActiveDate: "2026-03-02"},
			date:   "2026-03-04",
			want:   tracking.Streak{Current: 1, Best: 9, LastActiveDate: "2026-03-04"},
		},
		{
			name:   "earlier date ignored",
			before: tracking.Streak{Current: 2, Best: 2, LastActiveDate: "2026-03-02"},
			date:   "2026-03-01",
			want:   tracking.Streak{Current: 2, Best: 2, LastActiveDate: "2026-03-02"},
		},
	}

	for _, tc := range cases {
		got, err := tracking.AdvanceStreak(tc.before, tc.date)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %+v, got %+v", tc.name, tc.want, got)
		}
	}
}

func TestAdvanceStreakRejectsBadDate(t *testing.T) {
	if _, err := tracking.AdvanceStreak(tracking.Streak{}, "02/03/2026"); err == nil {
		t.Fatal("expected an error for a malformed date")
	}
}

func TestSuccessRateAndHours(t *testing.T) {
	if got := tracking.SuccessRate(0, 0); got != 0 {
		t.Fatalf("expected 0 with nothing planned, got %d", got)
	}
	if got := tracking.SuccessRate(2, 3); got != 67 {
		t.Fatalf("expected 67, got %d", got)
	}
	if got := tracking.SuccessRate(1, 8); got != 13 {
		t.Fatalf("expected 13, got %d", got)
	}
	if got := tracking.StudyHours(95); got != 1.6 {
		t.Fatalf("expected 1.6h, got %v", got)
	}
}

func TestTallyDay(t *testing.T) {
	tasks := []model.Task{
		{Status: model.StatusCompletedOnTime, ActualMinutes: 40},
		{Status: model.StatusCompletedDelayed, ActualMinutes: 50},
		{Status: model.StatusPaused, ActualMinutes: 0, ElapsedSeconds: 600},
		{Status: model.StatusPending},
	}

	tally := tracking.TallyDay(tasks)
	if tally.Planned != 4 || tally.Completed != 2 || tally.ActualMinutes != 90 {
		t.Fatalf("unexpected tally %+v", tally)
	}
	if tally.SuccessRate() != 50 {
		t.Fatalf("expected 50%%, got %d", tally.SuccessRate())
	}
	if tally.StudyHours() != 1.5 {
		t.Fatalf("expected 1.5h, got %v", tally.StudyHours())
	}
}

func TestCompareTotals(t *testing.T) {
	same := tracking.Totals{StudyMinutes: 120, TasksCompleted: 3}
	if err := tracking.CompareTotals("u1", same, same); err != nil {
		t.Fatalf("expected no drift, got %v", err)
	}

	err := tracking.CompareTotals("u1", same, tracking.Totals{StudyMinutes: 150, TasksCompleted: 4})
	if !errors.Is(err, tracking.ErrAggregationDrift) {
		t.Fatalf("expected ErrAggregationDrift, got %v", err)
	}
	var drift *tracking.DriftError
	if !errors.As(err, &drift) || drift.Derived.StudyMinutes != 150 {
		t.Fatalf("expected drift details, got %#v", err)
	}
}
