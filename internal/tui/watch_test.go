package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"studytracker/internal/live"
	"studytracker/internal/model"
)

func TestWatchModelFollowsFrames(t *testing.T) {
	frames := make(chan live.Frame, 2)
	frames <- live.Frame{
		TaskID:           "task-1",
		Name:             "Electrostatics",
		Subject:          model.SubjectPhysics,
		Status:           model.StatusInProgress,
		ElapsedSeconds:   125,
		EstimatedSeconds: 600,
		Progress:         20,
	}
	close(frames)

	m := NewWatchModel(frames, nil)

	msg := m.Init()()
	updated, cmd := m.Update(msg)
	m = updated.(WatchModel)
	if cmd == nil {
		t.Fatal("expected a command waiting for the next frame")
	}
	if m.Frame().ElapsedSeconds != 125 {
		t.Fatalf("unexpected frame: %+v", m.Frame())
	}

	view := m.View()
	if !strings.Contains(view, "00:02:05") || !strings.Contains(view, "Electrostatics") {
		t.Fatalf("view missing timer or name:\n%s", view)
	}

	msg = cmd()
	if _, ok := msg.(streamClosedMsg); !ok {
		t.Fatalf("expected stream closed message, got %T", msg)
	}
	_, cmd = m.Update(msg)
	if cmd == nil {
		t.Fatal("expected quit command after stream closed")
	}
}

func TestWatchModelQuitCancelsStream(t *testing.T) {
	cancelled := false
	m := NewWatchModel(make(chan live.Frame), func() { cancelled = true })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !cancelled {
		t.Fatal("expected quit to cancel the stream")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestStatusLabel(t *testing.T) {
	if got := statusLabel(model.StatusCompletedDelayed); got != "Completed late" {
		t.Fatalf("statusLabel = %q", got)
	}
	if got := formatSeconds(3725); got != "01:02:05" {
		t.Fatalf("formatSeconds = %q", got)
	}
}
