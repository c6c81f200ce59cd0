package main

import (
	"github.com/spf13/cobra"
)

// setupCmd represents the setup command
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the backend virtual environment and install dependencies",
	Long: `The setup command runs only the provisioning steps of 'devrun run':
it creates the virtual environment if needed, upgrades pip and installs
requirements.txt. No server is started.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().String("log-file", "", "Also write every output line as JSON to this file")
}

func runSetup(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	logFile, _ := cmd.Flags().GetString("log-file")
	out, err := openOutput(cmd, logFile, false)
	if err != nil {
		return err
	}
	defer out.Close()

	prov, err := p.provisioner(out.sink, out.logger)
	if err != nil {
		return err
	}
	return prov.Setup(cmd.Context())
}
