package provisioner

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
)

// Command is one setup invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// String renders a command the way a user would type it.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner runs a command to completion, writing stdout and stderr to out.
// It returns the exit code; err is set only when the command could not be
// started or waited on, and the code is then -1.
type Runner interface {
	Run(ctx context.Context, cmd Command, out io.Writer) (int, error)
}

// ExecRunner runs commands as child processes.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, c Command, out io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Start(); err != nil {
		return -1, err
	}
	err := cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
