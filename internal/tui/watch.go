// Package tui renders a live terminal view of one task's timer.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"studytracker/internal/live"
	"studytracker/internal/model"
)

type frameMsg live.Frame

type streamClosedMsg struct{}

type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
}

// WatchModel follows a live.Stream until it closes or the user quits.
type WatchModel struct {
	frames <-chan live.Frame
	cancel func()
	bar    progress.Model

	frame  live.Frame
	seen   bool
	closed bool
}

func NewWatchModel(frames <-chan live.Frame, cancel func()) WatchModel {
	if cancel == nil {
		cancel = func() {}
	}
	return WatchModel{
		frames: frames,
		cancel: cancel,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (m WatchModel) Init() tea.Cmd {
	return waitForFrame(m.frames)
}

func waitForFrame(frames <-chan live.Frame) tea.Cmd {
	return func() tea.Msg {
		frame, ok := <-frames
		if !ok {
			return streamClosedMsg{}
		}
		return frameMsg(frame)
	}
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.frame = live.Frame(msg)
		m.seen = true
		return m, waitForFrame(m.frames)

	case streamClosedMsg:
		m.closed = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		width := msg.Width - 8
		if width > 60 {
			width = 60
		}
		if width > 10 {
			m.bar.Width = width
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.cancel()
			return m, tea.Quit
		}
	}
	return m, nil
}

// Frame is the most recent frame received.
func (m WatchModel) Frame() live.Frame {
	return m.frame
}

func (m WatchModel) View() string {
	if !m.seen {
		return panelStyle.Render(subtitleStyle.Render("Loading task..."))
	}

	f := m.frame
	if f.Err != nil && f.Status == "" {
		return panelStyle.Render(errorStyle.Render(fmt.Sprintf("Error: %v", f.Err)))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(f.Name))
	b.WriteString("  ")
	b.WriteString(subtitleStyle.Render(f.Subject))
	b.WriteString("\n\n")

	clock := formatSeconds(f.ElapsedSeconds) + " / " + formatSeconds(f.EstimatedSeconds)
	switch {
	case !f.Running():
		b.WriteString(timerStoppedStyle.Render(clock))
	case f.Overdue:
		b.WriteString(timerOverdueStyle.Render(clock))
	default:
		b.WriteString(timerRunningStyle.Render(clock))
	}
	b.WriteString("\n\n")
	b.WriteString(m.bar.ViewAs(float64(f.Progress) / 100))
	b.WriteString("\n\n")

	status := statusLabel(f.Status)
	if f.Skewed {
		status += " (clock behind server)"
	}
	b.WriteString(subtitleStyle.Render(status))
	if f.Err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", f.Err)))
	}
	if !m.closed {
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render(keys.Quit.Help().Key + " " + keys.Quit.Help().Desc))
	}

	return panelStyle.Render(b.String())
}

func statusLabel(status string) string {
	switch status {
	case model.StatusPending:
		return "Not started"
	case model.StatusInProgress:
		return "In progress"
	case model.StatusPaused:
		return "Paused"
	case model.StatusCompletedOnTime:
		return "Completed on time"
	case model.StatusCompletedDelayed:
		return "Completed late"
	}
	return status
}

func formatSeconds(secs int64) string {
	d := time.Duration(secs) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
