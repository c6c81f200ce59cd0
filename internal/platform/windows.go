//go:build windows

package platform

import (
	"os"
	"os/exec"
	"strconv"
)

// SetProcessGroup is a no-op on Windows; the tree is reaped with taskkill.
func SetProcessGroup(cmd *exec.Cmd) {}

// Terminate ends p together with every process it spawned. Servers run
// behind a `cmd /C` wrapper, so killing p alone would orphan the server.
// Windows has no SIGTERM for console children, so this is forceful.
func Terminate(p *os.Process) error {
	return killTree(p)
}

// Kill ends p and its descendants.
func Kill(p *os.Process) error {
	return killTree(p)
}

func killTree(p *os.Process) error {
	if p == nil {
		return nil
	}
	if err := exec.Command("taskkill", taskkillArgs(p.Pid)...).Run(); err != nil {
		return p.Kill()
	}
	return nil
}

func taskkillArgs(pid int) []string {
	return []string{"/T", "/F", "/PID", strconv.Itoa(pid)}
}
