package tracking

import (
	"fmt"
	"time"

	"studytracker/internal/model"
)

type Action string

const (
	ActionStart    Action = "start"
	ActionPause    Action = "pause"
	ActionResume   Action = "resume"
	ActionComplete Action = "complete"
)

func ParseAction(raw string) (Action, bool) {
	switch action := Action(raw); action {
	case ActionStart, ActionPause, ActionResume, ActionComplete:
		return action, true
	}
	return "", false
}

// Activates reports whether the action moves a task into in_progress.
func (a Action) Activates() bool {
	return a == ActionStart || a == ActionResume
}

// Apply returns the record produced by running action on task at now.
//
//	pending     --start-->    in_progress
//	in_progress --pause-->    paused
//	paused      --resume-->   in_progress
//	in_progress --complete--> completed_on_time | completed_delayed
//	paused      --complete--> completed_on_time | completed_delayed
//
// Any other combination fails with ErrInvalidTransition. A negative open
// session on pause or complete fails with ErrClockSkew. On error the input is
// returned unchanged. The single-active-task rule spans records and is
// enforced by the caller.
func Apply(task model.Task, action Action, now time.Time) (model.Task, error) {
	next := task

	switch action {
	case ActionStart:
		if task.Status != model.StatusPending {
			return task, rejected(task, action)
		}
		startedAt := now
		resumedAt := now
		next.StartedAt = &startedAt
		next.LastResumedAt = &resumedAt
		next.Status = model.StatusInProgress

	case ActionPause:
		if task.Status != model.StatusInProgress {
			return task, rejected(task, action)
		}
		session, err := openSessionSeconds(task, now)
		if err != nil {
			return task, err
		}
		next.ElapsedSeconds += session
		next.LastResumedAt = nil
		next.Status = model.StatusPaused

	case ActionResume:
		if task.Status != model.StatusPaused {
			return task, rejected(task, action)
		}
		resumedAt := now
		next.LastResumedAt = &resumedAt
		next.Status = model.StatusInProgress

	case ActionComplete:
		switch task.Status {
		case model.StatusInProgress:
			session, err := openSessionSeconds(task, now)
			if err != nil {
				return task, err
			}
			next.ElapsedSeconds += session
		case model.StatusPaused:
		default:
			return task, rejected(task, action)
		}

		next.LastResumedAt = nil
		next.ActualMinutes = RoundMinutes(next.ElapsedSeconds)
		if next.ElapsedSeconds <= int64(task.EstimatedMinutes)*60 {
			next.Status = model.StatusCompletedOnTime
		} else {
			next.Status = model.StatusCompletedDelayed
		}
		completedAt := now
		next.CompletedAt = &completedAt

	default:
		return task, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}

	return next, nil
}

func rejected(task model.Task, action Action) error {
	return fmt.Errorf("%w: cannot %s a task that is %s", ErrInvalidTransition, action, task.Status)
}

// CompletionEvent is what a finished task contributes to its owner's totals.
type CompletionEvent struct {
	UserID        string
	TaskID        string
	ActualMinutes int
	CompletedAt   time.Time
}

// Date returns the calendar day of the completion in loc.
func (e CompletionEvent) Date(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return e.CompletedAt.In(loc).Format(model.DateLayout)
}

// CompletionOf returns the aggregation event for a completed task.
func CompletionOf(task model.Task) (CompletionEvent, bool) {
	if !task.Completed() || task.CompletedAt == nil {
		return CompletionEvent{}, false
	}
	return CompletionEvent{
		UserID:        task.UserID,
		TaskID:        task.ID,
		ActualMinutes: task.ActualMinutes,
		CompletedAt:   *task.CompletedAt,
	}, true
}
