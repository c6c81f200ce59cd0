package ui

import (
	"os"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Dashboard is a full-screen view of the tagged output. It implements Sink.
type Dashboard struct {
	program *tea.Program
	model   *dashboardModel
	done    chan struct{}
	err     error
	started atomic.Bool
}

// NewDashboard creates a dashboard. Signal handling is left to the caller so
// that SIGINT/SIGTERM keep a single owner.
func NewDashboard(opts ...tea.ProgramOption) *Dashboard {
	model := newDashboardModel(NewStyles(lipgloss.DefaultRenderer()))
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithoutSignalHandler()}, opts...)
	return &Dashboard{
		program: tea.NewProgram(model, opts...),
		model:   model,
		done:    make(chan struct{}),
	}
}

// Start runs the program in the background. onQuit is called once when the
// user leaves the dashboard, so the caller can begin shutdown.
func (d *Dashboard) Start(onQuit func()) {
	if !d.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		_, d.err = d.program.Run()
		close(d.done)
		if onQuit != nil {
			onQuit()
		}
	}()
}

// Emit implements Sink. After the program exits lines are dropped.
func (d *Dashboard) Emit(line LogLine) {
	d.program.Send(lineMsg(line))
}

// SetStatus updates the header entry for a server tag.
func (d *Dashboard) SetStatus(tag Tag, status string) {
	d.program.Send(statusMsg{tag: tag, status: status})
}

// Stop quits the program and waits until the terminal is restored. A
// dashboard that was never started has nothing to restore.
func (d *Dashboard) Stop() error {
	if !d.started.Load() {
		return nil
	}
	d.program.Quit()
	<-d.done
	return d.err
}

// Done is closed once the program has exited.
func (d *Dashboard) Done() <-chan struct{} {
	return d.done
}

// CanRunDashboard reports whether stdout is an interactive terminal.
func CanRunDashboard() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
