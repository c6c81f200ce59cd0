package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (can be set at build time)
var (
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "devrun",
	Short: "Provision and run a Python API backend and an npm frontend together",
	Long: `devrun prepares the Python virtual environment of a two-tier project,
installs its dependencies and then runs the uvicorn backend and the npm
dev server side by side, with their output tagged in one terminal.

Usage:
  devrun          Same as 'devrun run'
  devrun run      Set up the backend and start both servers
  devrun setup    Only create the virtual environment and install dependencies
  devrun doctor   Check the project and the machine without changing anything
  devrun init     Write a .devrun.yaml describing the project layout`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRun,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", ".devrun.yaml", "Path to the configuration file")
	addRunFlags(rootCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
