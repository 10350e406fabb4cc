package tracking

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when an action is not allowed from the
	// task's current status. The task is left untouched.
	ErrInvalidTransition = errors.New("invalid task transition")

	// ErrConcurrentActiveTask is returned when a task would enter in_progress
	// while another task of the same user is already in_progress.
	ErrConcurrentActiveTask = errors.New("another task is already in progress")

	// ErrClockSkew marks a negative open session: the clock reads earlier than
	// the task's last resume timestamp.
	ErrClockSkew = errors.New("clock skew")

	// ErrAggregationDrift marks denormalized user totals that no longer match
	// the user's completed tasks.
	ErrAggregationDrift = errors.New("aggregation drift")
)

// DriftError describes one user's totals mismatch.
type DriftError struct {
	UserID  string
	Stored  Totals
	Derived Totals
}

func (e *DriftError) Error() string {
	return fmt.Sprintf(
		"%s for user %s: stored %d min/%d tasks, derived %d min/%d tasks",
		ErrAggregationDrift,
		e.UserID,
		e.Stored.StudyMinutes,
		e.Stored.TasksCompleted,
		e.Derived.StudyMinutes,
		e.Derived.TasksCompleted,
	)
}

func (e *DriftError) Unwrap() error {
	return ErrAggregationDrift
}
