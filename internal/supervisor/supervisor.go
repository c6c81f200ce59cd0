package supervisor

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/harshul/devrun/internal/blueprint"
	"github.com/harshul/devrun/internal/platform"
	"github.com/harshul/devrun/internal/ui"
)

// Role identifies one of the two supervised servers.
type Role string

const (
	RoleBackend  Role = "backend"
	RoleFrontend Role = "frontend"
)

// Spec describes a server to start.
type Spec struct {
	Role    Role
	Command string
	Args    []string
	Dir     string
	Tag     ui.Tag
}

// BackendSpec returns the uvicorn invocation for the managed interpreter.
func BackendSpec(bp blueprint.Blueprint, root, interpreter string) Spec {
	args := []string{"-m", "uvicorn", bp.Backend.App}
	if bp.ReloadEnabled() {
		args = append(args, "--reload")
	}
	args = append(args, "--host", bp.Backend.Host, "--port", strconv.Itoa(bp.Backend.Port))

	return Spec{
		Role:    RoleBackend,
		Command: interpreter,
		Args:    args,
		Dir:     bp.BackendDir(root),
		Tag:     ui.TagBackend,
	}
}

// FrontendSpec returns the npm dev script invocation.
func FrontendSpec(bp blueprint.Blueprint, root string, family platform.Family) Spec {
	return Spec{
		Role:    RoleFrontend,
		Command: platform.PackageRunner(family),
		Args:    []string{"run", bp.Frontend.Script},
		Dir:     bp.FrontendDir(root),
		Tag:     ui.TagFrontend,
	}
}

// Handle is a started (or failed) server. The zero exit code and error are
// only meaningful once Done is closed.
type Handle struct {
	Role    Role
	Command string
	Args    []string
	Dir     string
	PID     int

	proc Process
	done chan struct{}

	mu       sync.Mutex
	exitCode int
	exited   bool
	err      error
}

// Done is closed when the process has exited or failed to start.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Started reports whether the process was spawned at all.
func (h *Handle) Started() bool { return h.proc != nil }

// ExitCode returns the exit code once the process has closed.
func (h *Handle) ExitCode() (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitCode, h.exited
}

// Err returns the spawn or wait error, if any.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Terminate requests termination. It does not wait.
func (h *Handle) Terminate() error {
	if h.proc == nil {
		return nil
	}
	return h.proc.Terminate()
}

// Kill force-kills the process.
func (h *Handle) Kill() error {
	if h.proc == nil {
		return nil
	}
	return h.proc.Kill()
}

// Alive reports whether the operating system still knows the pid.
func (h *Handle) Alive(ctx context.Context) bool {
	if h.proc == nil {
		return false
	}
	select {
	case <-h.done:
		return false
	default:
	}
	exists, err := process.PidExistsWithContext(ctx, int32(h.PID))
	return err == nil && exists
}

func (h *Handle) finish(code int, err error) {
	h.mu.Lock()
	h.exitCode = code
	h.exited = err == nil
	h.err = err
	h.mu.Unlock()
	close(h.done)
}

// Options configures a Supervisor.
type Options struct {
	Launcher Launcher
	Sink     ui.Sink
	Logger   *zap.Logger
	// OnState, if set, is told about every lifecycle change: "starting",
	// "running", "failed" and "exited (N)".
	OnState func(spec Spec, state string)
}

// Supervisor starts servers and reports on their exit. It never restarts
// anything.
type Supervisor struct {
	launcher Launcher
	sink     ui.Sink
	log      *zap.Logger
	onState  func(Spec, string)
}

// New returns a Supervisor. A nil launcher means ExecLauncher.
func New(opts Options) *Supervisor {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Sink == nil {
		opts.Sink = ui.SinkFunc(func(ui.LogLine) {})
	}
	if opts.Launcher == nil {
		opts.Launcher = ExecLauncher{Logger: opts.Logger}
	}
	if opts.OnState == nil {
		opts.OnState = func(Spec, string) {}
	}
	return &Supervisor{
		launcher: opts.Launcher,
		sink:     opts.Sink,
		log:      opts.Logger.Named("supervisor"),
		onState:  opts.OnState,
	}
}

// Start spawns spec and returns its handle right away. A spawn failure is
// logged and recorded on the handle; it is never returned.
func (s *Supervisor) Start(ctx context.Context, spec Spec) *Handle {
	h := &Handle{
		Role:    spec.Role,
		Command: spec.Command,
		Args:    spec.Args,
		Dir:     spec.Dir,
		done:    make(chan struct{}),
	}

	s.onState(spec, "starting")
	ui.Emit(s.sink, spec.Tag, fmt.Sprintf("Starting %s server...", spec.Role))

	proc, err := s.launcher.Launch(ctx, spec, s.sink)
	if err != nil {
		s.log.Warn("spawn failed", zap.String("role", string(spec.Role)), zap.Error(err))
		ui.EmitError(s.sink, ui.TagError, fmt.Sprintf("Failed to start %s: %v", spec.Role, err))
		s.onState(spec, "failed")
		h.finish(-1, err)
		return h
	}
	h.proc = proc
	h.PID = proc.PID()
	s.onState(spec, "running")

	go s.watch(spec, h)
	return h
}

func (s *Supervisor) watch(spec Spec, h *Handle) {
	code, err := h.proc.Wait()
	if err != nil {
		s.log.Warn("wait failed", zap.String("role", string(spec.Role)), zap.Error(err))
		ui.EmitError(s.sink, ui.TagError, fmt.Sprintf("%s process error: %v", spec.Role, err))
		s.onState(spec, "failed")
	} else {
		ui.Emit(s.sink, spec.Tag, fmt.Sprintf("%s process exited with code %d", spec.Role, code))
		s.onState(spec, fmt.Sprintf("exited (%d)", code))
	}
	s.log.Debug("process closed",
		zap.String("role", string(spec.Role)),
		zap.Int("pid", h.PID),
		zap.Int("exit_code", code))
	h.finish(code, err)
}
