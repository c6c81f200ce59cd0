package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harshul/devrun/internal/blueprint"
	"github.com/harshul/devrun/internal/logsink"
	"github.com/harshul/devrun/internal/platform"
	"github.com/harshul/devrun/internal/provisioner"
	"github.com/harshul/devrun/internal/ui"
)

// project is the resolved working directory and configuration.
type project struct {
	root       string
	configPath string
	bp         blueprint.Blueprint
	found      bool
	family     platform.Family
}

func loadProject(cmd *cobra.Command) (project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return project{}, fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath, _ := cmd.Flags().GetString("config")
	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(cwd, configPath)
	}

	bp, found, err := blueprint.Load(configPath)
	if err != nil {
		return project{}, fmt.Errorf("failed to read configuration: %w", err)
	}
	return project{root: cwd, configPath: configPath, bp: bp, found: found, family: platform.Detect()}, nil
}

func (p project) provisioner(sink ui.Sink, log *zap.Logger) (*provisioner.Provisioner, error) {
	return provisioner.New(provisioner.Options{
		BackendDir: p.bp.BackendDir(p.root),
		VenvName:   p.bp.Backend.Venv,
		Manifest:   p.bp.Backend.Manifest,
		Family:     p.family,
		Sink:       sink,
		Logger:     log,
	})
}

// output bundles the sinks a streaming command writes to.
type output struct {
	sink      ui.Sink
	logger    *zap.Logger
	dashboard *ui.Dashboard
	file      *logsink.Sink
	closed    bool
}

// openOutput builds the console (or dashboard) sink and, when logFile is
// set, the JSON mirror. The dashboard is not started here.
func openOutput(cmd *cobra.Command, logFile string, tui bool) (*output, error) {
	out := &output{logger: zap.NewNop()}

	var sinks []ui.Sink
	if tui && ui.CanRunDashboard() {
		out.dashboard = ui.NewDashboard()
		sinks = append(sinks, out.dashboard)
	} else {
		if tui {
			fmt.Fprintln(cmd.ErrOrStderr(), "stdout is not a terminal, using plain output")
		}
		sinks = append(sinks, ui.NewConsole(cmd.OutOrStdout()))
	}

	if logFile != "" {
		file, err := logsink.Open(logFile)
		if err != nil {
			return nil, err
		}
		out.file = file
		out.logger = file.Logger()
		sinks = append(sinks, file)
	}

	out.sink = ui.Tee(sinks...)
	return out, nil
}

// Close restores the terminal and flushes the log file. Safe to call twice.
func (o *output) Close() {
	if o.closed {
		return
	}
	o.closed = true
	if o.dashboard != nil {
		_ = o.dashboard.Stop()
	}
	if o.file != nil {
		_ = o.file.Close()
	}
}
