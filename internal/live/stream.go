// Package live polls a task and reports its running elapsed time. The
// persisted record is read on every tick, so the value shown is always
// recomputed from the stored timestamps and never accumulated locally.
package live

import (
	"context"
	"time"

	"studytracker/internal/model"
	"studytracker/internal/tracking"
)

// TaskSource loads the current state of a task.
type TaskSource interface {
	GetByID(ctx context.Context, id string) (*model.Task, error)
}

type Frame struct {
	TaskID           string
	Name             string
	Subject          string
	Status           string
	ElapsedSeconds   int64
	EstimatedSeconds int64
	// Progress is elapsed over estimate in percent, capped at 100.
	Progress int
	Overdue  bool
	// Skewed is set when the clock reads earlier than the last resume.
	Skewed bool
	At     time.Time
	Err    error
}

// Running reports whether the task is still accumulating time.
func (f Frame) Running() bool {
	return f.Err == nil && f.Status == model.StatusInProgress
}

// DefaultInterval is used when Stream is given a non-positive interval.
const DefaultInterval = time.Second

// Stream sends a frame immediately and then once per interval. The channel is
// closed after the first frame whose task is no longer in progress, after a
// frame carrying a load error, or when ctx is done.
func Stream(ctx context.Context, source TaskSource, taskID string, interval time.Duration, now func() time.Time) <-chan Frame {
	if now == nil {
		now = time.Now
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	frames := make(chan Frame, 1)

	go func() {
		defer close(frames)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			frame := load(ctx, source, taskID, now())
			select {
			case frames <- frame:
			case <-ctx.Done():
				return
			}
			if !frame.Running() {
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return frames
}

func load(ctx context.Context, source TaskSource, taskID string, at time.Time) Frame {
	task, err := source.GetByID(ctx, taskID)
	if err != nil {
		return Frame{TaskID: taskID, At: at, Err: err}
	}
	return FrameOf(*task, at)
}

// FrameOf computes the frame for task at the given instant. Under clock skew
// the committed elapsed value is shown.
func FrameOf(task model.Task, at time.Time) Frame {
	elapsed, err := tracking.EffectiveElapsed(task, at)
	frame := Frame{
		TaskID:           task.ID,
		Name:             task.Name,
		Subject:          task.Subject,
		Status:           task.Status,
		ElapsedSeconds:   elapsed,
		EstimatedSeconds: int64(task.EstimatedMinutes) * 60,
		Skewed:           err != nil,
		At:               at,
	}
	if frame.EstimatedSeconds > 0 {
		progress := elapsed * 100 / frame.EstimatedSeconds
		if progress > 100 {
			progress = 100
		}
		frame.Progress = int(progress)
	}
	frame.Overdue = elapsed > frame.EstimatedSeconds
	return frame
}
