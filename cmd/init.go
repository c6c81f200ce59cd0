package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harshul/devrun/internal/analyzer"
	"github.com/harshul/devrun/internal/blueprint"
	"github.com/harshul/devrun/internal/ui"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Detect the project layout and write a .devrun.yaml file",
	Long: `The init command looks for the Python backend (backend/, api/, server/),
its ASGI app object and the npm frontend (frontend/, client/, web/, ui/), and
writes what it found to .devrun.yaml. Anything it cannot detect keeps the
default value.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing configuration file")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	outputPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(cwd, outputPath)
	}

	if _, err := os.Stat(outputPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists at %s. Use --force to overwrite", outputPath)
	}

	layout, err := analyzer.Analyze(cwd)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	pr := ui.NewPrinter(cmd.OutOrStdout())
	report(pr, "Backend", layout.BackendDir, layout.BackendFound)
	report(pr, "Requirements", layout.Manifest, layout.ManifestFound)
	report(pr, "ASGI app", layout.App, layout.AppFound)
	report(pr, "Frontend", layout.FrontendDir, layout.FrontendFound)

	if err := blueprint.Write(outputPath, layout.Blueprint()); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	pr.Success(fmt.Sprintf("Configuration written to %s", outputPath))
	pr.Info("Run 'devrun' to start both servers.")
	return nil
}

func report(pr *ui.Printer, what, value string, found bool) {
	if found {
		pr.Success(fmt.Sprintf("%s: %s", what, value))
		return
	}
	pr.Warn(fmt.Sprintf("%s: not detected, using %s", what, value))
}
