package ui

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestConsoleRendersTaggedLines(t *testing.T) {
	var out bytes.Buffer
	console := NewConsole(&out)

	Emit(console, TagBackend, "INFO:     Application startup complete.")
	EmitError(console, TagSetup, "Failed to create virtual environment (exit code 1)")
	console.Emit(LogLine{Tag: Tag("BOGUS"), Text: "unknown tag"})

	// A bytes.Buffer is not a terminal, so no escape sequences are written.
	assert.Equal(t,
		"[BACKEND] INFO:     Application startup complete.\n"+
			"[SETUP] Failed to create virtual environment (exit code 1)\n"+
			"[ERROR] unknown tag\n",
		out.String())
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "warn", LevelWarn.String())
	assert.Equal(t, "error", LevelError.String())
}

func TestDashboardModel(t *testing.T) {
	var out bytes.Buffer
	m := newDashboardModel(NewStyles(lipgloss.NewRenderer(&out)))

	assert.Equal(t, "Starting...\n", m.View())

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(lineMsg{Tag: TagSetup, Text: "Setup complete"})
	m.Update(lineMsg{Tag: TagBackend, Text: "INFO:     Uvicorn running on http://0.0.0.0:8000"})
	m.Update(lineMsg{Tag: TagFrontend, Text: "  ➜  Local:   http://localhost:5173/"})
	m.Update(lineMsg{Tag: TagFrontend, Text: "  ➜  Network: http://0.0.0.0:5174/"})
	m.Update(statusMsg{tag: TagFrontend, status: "running"})

	backend, frontend := m.panes[0], m.panes[1]
	assert.Equal(t, []string{
		"[SETUP] Setup complete",
		"[BACKEND] INFO:     Uvicorn running on http://0.0.0.0:8000",
	}, backend.buffer.GetAll())
	assert.Equal(t, []string{
		"[SETUP] Setup complete",
		"[FRONTEND]   ➜  Local:   http://localhost:5173/",
		"[FRONTEND]   ➜  Network: http://0.0.0.0:5174/",
	}, frontend.buffer.GetAll())

	assert.Equal(t, "http://localhost:8000", m.urls[TagBackend])
	assert.Equal(t, "http://localhost:5173", m.urls[TagFrontend])
	assert.Equal(t, "running", m.status[TagFrontend])
	assert.Equal(t, "pending", m.status[TagBackend])

	// header, pane title, pane body and footer fill the window exactly
	assert.Equal(t, 49, backend.viewport.Width)
	assert.Equal(t, 25, backend.viewport.Height)
	view := m.View()
	assert.Equal(t, 30, strings.Count(view, "\n")+1)
	assert.Contains(t, view, "BACKEND pending")
	assert.Contains(t, view, "FRONTEND running")

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m.focus)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Equal(t, "Shutting down...\n", m.View())
}

func TestErrorLinesReachBothPanes(t *testing.T) {
	var out bytes.Buffer
	m := newDashboardModel(NewStyles(lipgloss.NewRenderer(&out)))
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})

	m.Update(lineMsg{Tag: TagError, Level: LevelError, Text: "Failed to start frontend: permission denied"})
	for _, p := range m.panes {
		assert.Equal(t, 1, p.buffer.Len())
	}
}

func TestDashboardStopWithoutStart(t *testing.T) {
	d := NewDashboard(tea.WithInput(nil), tea.WithOutput(io.Discard))

	stopped := make(chan error, 1)
	go func() { stopped <- d.Stop() }()

	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on a dashboard that never started")
	}
}
