package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harshul/devrun/internal/platform"
	"github.com/harshul/devrun/internal/ui"
)

// Process is a started child.
type Process interface {
	PID() int
	// Wait blocks until the child has exited and its output has been
	// relayed. It returns the exit code, or -1 with an error when the
	// child could not be waited on.
	Wait() (int, error)
	Terminate() error
	Kill() error
}

// Launcher starts the child described by spec and relays its output to
// sink under spec.Tag.
type Launcher interface {
	Launch(ctx context.Context, spec Spec, sink ui.Sink) (Process, error)
}

// ExecLauncher starts real child processes.
type ExecLauncher struct {
	Family platform.Family
	Logger *zap.Logger
}

// Launch implements Launcher. The command goes through the platform shell
// wrapper and gets its own process group.
func (l ExecLauncher) Launch(ctx context.Context, spec Spec, sink ui.Sink) (Process, error) {
	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}
	family := l.Family
	if family == "" {
		family = platform.Detect()
	}

	name, args := platform.Wrap(family, spec.Command, spec.Args)
	cmd := exec.Command(name, args...)
	cmd.Dir = spec.Dir
	platform.SetProcessGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(2)
	g.Go(func() error { return ui.Pump(stdout, spec.Tag, sink) })
	g.Go(func() error { return ui.Pump(stderr, spec.Tag, sink) })

	log.Debug("process started",
		zap.String("role", string(spec.Role)),
		zap.String("command", name),
		zap.Strings("args", args),
		zap.Int("pid", cmd.Process.Pid))

	return &execProcess{cmd: cmd, streams: g, log: log}, nil
}

type execProcess struct {
	cmd     *exec.Cmd
	streams *errgroup.Group
	log     *zap.Logger
}

func (p *execProcess) PID() int { return p.cmd.Process.Pid }

func (p *execProcess) Wait() (int, error) {
	// Pipes must be drained before Wait closes them.
	if err := p.streams.Wait(); err != nil {
		p.log.Debug("output relay stopped", zap.Error(err))
	}

	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

func (p *execProcess) Terminate() error { return platform.Terminate(p.cmd.Process) }

func (p *execProcess) Kill() error { return platform.Kill(p.cmd.Process) }
