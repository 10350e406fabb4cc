package tracking_test

import (
	"errors"
	"testing"

	"studytracker/internal/model"
	"studytracker/internal/tracking"
)

func TestEffectiveElapsedUsesStoredValueUnlessRunning(t *testing.T) {
	task := pendingTask(30)
	task.ElapsedSeconds = 42
	for _, status := range []string{model.StatusPending, model.StatusPaused, model.StatusCompletedDelayed} {
		task.Status = status
		got, err := tracking.EffectiveElapsed(task, at(10_000))
		if err != nil {
			t.Fatalf("%s: unexpected error %v", status, err)
		}
		if got != 42 {
			t.Fatalf("%s: expected 42, got %d", status, got)
		}
	}
}

func TestEffectiveElapsedAddsOpenSession(t *testing.T) {
	task := mustApply(t, pendingTask(30), tracking.ActionStart, at(0))
	task = mustApply(t, task, tracking.ActionPause, at(90))
	task = mustApply(t, task, tracking.ActionResume, at(200))

	got, err := tracking.EffectiveElapsed(task, at(260).Add(999_000_000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 150 {
		t.Fatalf("expected 150 (90 committed + 60 floored), got %d", got)
	}

	if task.ElapsedSeconds != 90 {
		t.Fatalf("EffectiveElapsed must not mutate the task, elapsed is %d", task.ElapsedSeconds)
	}
}

func TestEffectiveElapsedFallsBackToStartedAt(t *testing.T) {
	task := mustApply(t, pendingTask(30), tracking.ActionStart, at(0))
	task.LastResumedAt = nil

	got, err := tracking.EffectiveElapsed(task, at(75))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 75 {
		t.Fatalf("expected 75, got %d", got)
	}
}

func TestEffectiveElapsedFlagsClockSkew(t *testing.T) {
	task := mustApply(t, pendingTask(30), tracking.ActionStart, at(0))
	task = mustApply(t, task, tracking.ActionPause, at(300))
	task = mustApply(t, task, tracking.ActionResume, at(1000))

	got, err := tracking.EffectiveElapsed(task, at(900))
	if !errors.Is(err, tracking.ErrClockSkew) {
		t.Fatalf("expected ErrClockSkew, got %v", err)
	}
	if got != 300 {
		t.Fatalf("expected display value floored to committed 300, got %d", got)
	}
}

func TestRoundMinutes(t *testing.T) {
	cases := map[int64]int{0: 0, 29: 0, 30: 1, 89: 1, 90: 2, 1200: 20, -5: 0}
	for seconds, want := range cases {
		if got := tracking.RoundMinutes(seconds); got != want {
			t.Fatalf("RoundMinutes(%d) = %d, want %d", seconds, got, want)
		}
	}
}
