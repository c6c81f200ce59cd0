package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harshul/devrun/internal/doctor"
	"github.com/harshul/devrun/internal/ui"
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the project and the machine without changing anything",
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	d := doctor.Diagnose(cmd.Context(), doctor.Options{
		Root:      p.root,
		Blueprint: p.bp,
		Family:    p.family,
	})

	pr := ui.NewPrinter(cmd.OutOrStdout())
	pr.Heading("devrun doctor")
	if p.found {
		pr.Info("Configuration: " + p.configPath)
	} else {
		pr.Info(fmt.Sprintf("Configuration: defaults (%s not found)", filepath.Base(p.configPath)))
	}

	h := d.Host
	pr.Info(fmt.Sprintf("Host: %s %s %s (%s, %s)", h.OS, h.Platform, h.PlatformVersion, h.Arch, h.Family))
	if h.MemoryTotal > 0 {
		pr.Info(fmt.Sprintf("Memory: %s used of %s", formatBytes(h.MemoryUsed), formatBytes(h.MemoryTotal)))
	}

	for _, c := range d.Checks {
		line := fmt.Sprintf("%s: %s", c.Name, c.Detail)
		switch c.Status {
		case doctor.StatusOK:
			pr.Success(line)
		case doctor.StatusWarn:
			pr.Warn(line)
		default:
			pr.Fail(line)
		}
	}

	if !d.Healthy {
		return fmt.Errorf("%d problem(s) found", len(d.Issues))
	}
	pr.Success("Ready to run")
	return nil
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
