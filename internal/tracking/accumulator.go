// Package tracking holds the study timer rules: the elapsed-time accumulator,
// the task state machine and the aggregation of completed work into user and
// daily totals. Everything here is pure; persistence belongs to callers.
package tracking

import (
	"fmt"
	"time"

	"studytracker/internal/model"
)

// EffectiveElapsed returns the seconds to display for a task at now.
//
// For tasks that are not in_progress it is the committed ElapsedSeconds. For
// in_progress tasks the open session since LastResumedAt (or StartedAt) is
// added. When that session is negative the committed value is returned
// together with an error wrapping ErrClockSkew; the value is safe to show but
// the condition should be reported.
func EffectiveElapsed(task model.Task, now time.Time) (int64, error) {
	if task.Status != model.StatusInProgress {
		return task.ElapsedSeconds, nil
	}

	session, err := openSessionSeconds(task, now)
	if err != nil {
		return task.ElapsedSeconds, err
	}
	return task.ElapsedSeconds + session, nil
}

func openSessionSeconds(task model.Task, now time.Time) (int64, error) {
	anchor := task.LastResumedAt
	if anchor == nil {
		anchor = task.StartedAt
	}
	if anchor == nil {
		return 0, fmt.Errorf("%w: task %s is in progress without a start time", ErrClockSkew, task.ID)
	}

	delta := now.Sub(*anchor)
	if delta < 0 {
		return 0, fmt.Errorf(
			"%w: task %s resumed at %s, now is %s",
			ErrClockSkew,
			task.ID,
			anchor.UTC().Format(time.RFC3339Nano),
			now.UTC().Format(time.RFC3339Nano),
		)
	}
	return int64(delta / time.Second), nil
}

// RoundMinutes converts committed seconds to whole minutes, rounding half up.
func RoundMinutes(seconds int64) int {
	if seconds <= 0 {
		return 0
	}
	return int((seconds + 30) / 60)
}
