package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harshul/devrun/internal/orchestrator"
	"github.com/harshul/devrun/internal/supervisor"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Set up the backend and start both development servers",
	Long: `The run command prepares the backend and then keeps both servers running.

It will:
- Create backend/venv with the system Python if it does not exist
- Upgrade pip (failures are only a warning)
- Install backend/requirements.txt if present
- Start uvicorn in backend/ and 'npm run dev' in frontend/

Press Ctrl+C to stop both servers.`,
	RunE: runRun,
}

func init() {
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("tui", false, "Show a full-screen dashboard instead of plain scrolling output")
	cmd.Flags().String("log-file", "", "Also write every output line as JSON to this file")
	cmd.Flags().Bool("skip-setup", false, "Start the servers without provisioning the backend")
	cmd.Flags().Bool("no-port-check", false, "Do not warn when the backend port is already in use")
}

func runRun(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	tui, _ := cmd.Flags().GetBool("tui")
	logFile, _ := cmd.Flags().GetString("log-file")
	skipSetup, _ := cmd.Flags().GetBool("skip-setup")
	noPortCheck, _ := cmd.Flags().GetBool("no-port-check")

	out, err := openOutput(cmd, logFile, tui)
	if err != nil {
		return err
	}
	defer out.Close()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	prov, err := p.provisioner(out.sink, out.logger)
	if err != nil {
		return err
	}

	supOpts := supervisor.Options{
		Launcher: supervisor.ExecLauncher{Family: p.family, Logger: out.logger},
		Sink:     out.sink,
		Logger:   out.logger,
	}
	if out.dashboard != nil {
		supOpts.OnState = func(spec supervisor.Spec, state string) {
			out.dashboard.SetStatus(spec.Tag, state)
		}
		// Leaving the dashboard is a shutdown request.
		out.dashboard.Start(func() {
			select {
			case signals <- os.Interrupt:
			default:
			}
		})
	}

	ctrl, err := orchestrator.New(orchestrator.Options{
		Root:        p.root,
		Blueprint:   p.bp,
		Family:      p.family,
		Provisioner: prov,
		Supervisor:  supervisor.New(supOpts),
		Signals:     signals,
		Exit: func(code int) {
			out.Close()
			os.Exit(code)
		},
		SkipSetup:   skipSetup,
		NoPortCheck: noPortCheck,
		Sink:        out.sink,
		Logger:      out.logger,
	})
	if err != nil {
		return err
	}

	return ctrl.Run(cmd.Context())
}
