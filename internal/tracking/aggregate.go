package tracking

import (
	"fmt"
	"math"
	"time"

	"studytracker/internal/model"
)

// Streak is the streak-related slice of a user record.
type Streak struct {
	Current        int
	Best           int
	LastActiveDate string
}

// AdvanceStreak folds a completion on completionDate into s.
//
// Same day keeps the streak, the next day extends it, a longer gap restarts it
// at 1. A completion dated before LastActiveDate changes nothing.
func AdvanceStreak(s Streak, completionDate string) (Streak, error) {
	day, err := time.Parse(model.DateLayout, completionDate)
	if err != nil {
		return s, fmt.Errorf("parse completion date %q: %w", completionDate, err)
	}

	next := s
	if s.LastActiveDate == "" {
		next.Current = 1
	} else {
		last, err := time.Parse(model.DateLayout, s.LastActiveDate)
		if err != nil {
			return s, fmt.Errorf("parse last active date %q: %w", s.LastActiveDate, err)
		}

		switch gap := int(day.Sub(last).Hours() / 24); {
		case gap < 0:
			return s, nil
		case gap == 0:
			if next.Current < 1 {
				next.Current = 1
			}
		case gap == 1:
			next.Current++
		default:
			next.Current = 1
		}
	}

	next.LastActiveDate = completionDate
	if next.Current > next.Best {
		next.Best = next.Current
	}
	return next, nil
}

// SuccessRate is the rounded percentage of planned tasks that were completed.
func SuccessRate(completed, planned int) int {
	if planned <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(planned) * 100))
}

// StudyHours converts minutes to hours with one decimal.
func StudyHours(minutes int) float64 {
	return math.Round(float64(minutes)/60*10) / 10
}

// DayTally is the roll-up of one user's tasks for one date.
type DayTally struct {
	Planned       int
	Completed     int
	ActualMinutes int
}

func (d DayTally) SuccessRate() int {
	return SuccessRate(d.Completed, d.Planned)
}

func (d DayTally) StudyHours() float64 {
	return StudyHours(d.ActualMinutes)
}

// TallyDay rolls a day's tasks up for an end-of-day summary.
func TallyDay(tasks []model.Task) DayTally {
	tally := DayTally{Planned: len(tasks)}
	for _, task := range tasks {
		if !task.Completed() {
			continue
		}
		tally.Completed++
		tally.ActualMinutes += task.ActualMinutes
	}
	return tally
}

// Totals are the denormalized aggregates kept on a user.
type Totals struct {
	StudyMinutes   int
	TasksCompleted int
}

// CompareTotals returns a *DriftError when stored differs from derived.
func CompareTotals(userID string, stored, derived Totals) error {
	if stored == derived {
		return nil
	}
	return &DriftError{UserID: userID, Stored: stored, Derived: derived}
}
