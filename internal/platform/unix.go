//go:build !windows

package platform

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// SetProcessGroup puts the child in its own process group so that a
// termination request also reaches anything it spawned (uvicorn's reloader,
// vite's workers).
func SetProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func processAlreadyFinished(err error) bool {
	return errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH)
}

// Terminate sends SIGTERM to the process group of p.
func Terminate(p *os.Process) error {
	return signalGroup(p, syscall.SIGTERM)
}

// Kill sends SIGKILL to the process group of p.
func Kill(p *os.Process) error {
	return signalGroup(p, syscall.SIGKILL)
}

func signalGroup(p *os.Process, sig syscall.Signal) error {
	if p == nil {
		return nil
	}
	pgid, err := syscall.Getpgid(p.Pid)
	if err != nil {
		if processAlreadyFinished(err) {
			return nil
		}
		if err := p.Signal(sig); err != nil && !processAlreadyFinished(err) {
			return err
		}
		return nil
	}
	if err := syscall.Kill(-pgid, sig); err != nil && !processAlreadyFinished(err) {
		return err
	}
	return nil
}
