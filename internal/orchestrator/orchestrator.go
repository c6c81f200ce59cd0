package orchestrator

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/harshul/devrun/internal/blueprint"
	"github.com/harshul/devrun/internal/platform"
	"github.com/harshul/devrun/internal/ports"
	"github.com/harshul/devrun/internal/provisioner"
	"github.com/harshul/devrun/internal/supervisor"
	"github.com/harshul/devrun/internal/ui"
)

// Provisioner prepares the backend environment.
type Provisioner interface {
	Setup(ctx context.Context) error
	Environment() provisioner.Environment
}

// Starter starts supervised servers.
type Starter interface {
	Start(ctx context.Context, spec supervisor.Spec) *supervisor.Handle
}

// PortChecker reports a port conflict, if any.
type PortChecker func(ctx context.Context, host string, port int) (ports.Conflict, bool)

// Options controls how the controller runs the project.
type Options struct {
	// Root is the project root; backend and frontend dirs are relative to it.
	Root      string
	Blueprint blueprint.Blueprint
	Family    platform.Family

	Provisioner Provisioner
	Supervisor  Starter

	// Signals delivers the termination request. It is usually fed by
	// signal.Notify.
	Signals <-chan os.Signal
	// Exit ends the process. Defaults to os.Exit.
	Exit func(code int)

	SkipSetup   bool
	NoPortCheck bool
	CheckPort   PortChecker

	Sink   ui.Sink
	Logger *zap.Logger
}

// servers holds the live handles. It is written once by Run before the
// controller starts waiting for signals.
type servers struct {
	backend  *supervisor.Handle
	frontend *supervisor.Handle
}

func (s servers) live() []*supervisor.Handle {
	var out []*supervisor.Handle
	for _, h := range []*supervisor.Handle{s.backend, s.frontend} {
		if h != nil && h.Started() {
			out = append(out, h)
		}
	}
	return out
}

// Controller sequences setup, server start and shutdown.
type Controller struct {
	opts    Options
	grace   time.Duration
	sink    ui.Sink
	log     *zap.Logger
	servers servers
	once    sync.Once
}

// New validates opts and returns a Controller.
func New(opts Options) (*Controller, error) {
	grace, err := opts.Blueprint.Grace()
	if err != nil {
		return nil, err
	}
	if opts.Provisioner == nil {
		return nil, fmt.Errorf("no provisioner configured")
	}
	if opts.Supervisor == nil {
		return nil, fmt.Errorf("no supervisor configured")
	}
	if opts.Family == "" {
		opts.Family = platform.Detect()
	}
	if opts.Exit == nil {
		opts.Exit = os.Exit
	}
	if opts.CheckPort == nil {
		opts.CheckPort = ports.Check
	}
	if opts.Sink == nil {
		opts.Sink = ui.SinkFunc(func(ui.LogLine) {})
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Controller{
		opts:  opts,
		grace: grace,
		sink:  opts.Sink,
		log:   opts.Logger.Named("controller"),
	}, nil
}

// Run provisions the environment, starts both servers and then blocks until
// a termination signal arrives or ctx is cancelled, at which point it shuts
// down. A setup failure is returned before anything is started. A signal
// during setup cancels it and shuts down without starting the servers.
//
// Servers that die on their own do not end the run.
func (c *Controller) Run(ctx context.Context) error {
	setupCtx, cancelSetup := context.WithCancel(ctx)
	defer cancelSetup()

	setupDone := make(chan error, 1)
	if c.opts.SkipSetup {
		setupDone <- nil
	} else {
		go func() { setupDone <- c.opts.Provisioner.Setup(setupCtx) }()
	}

	select {
	case err := <-setupDone:
		if err != nil {
			// Ctrl+C reaches the setup child too; its death is not a failure.
			if c.stopRequested(ctx) {
				c.Shutdown()
				return nil
			}
			ui.EmitError(c.sink, ui.TagSetup, fmt.Sprintf("Setup failed: %v", err))
			return fmt.Errorf("setup failed: %w", err)
		}
	case sig := <-c.opts.Signals:
		c.log.Info("signal received during setup", zap.String("signal", sig.String()))
		cancelSetup()
		c.Shutdown()
		return nil
	case <-ctx.Done():
		c.log.Info("context done during setup", zap.Error(ctx.Err()))
		cancelSetup()
		c.Shutdown()
		return nil
	}

	c.preflight(ctx)
	c.startServers(ctx)

	ui.Emit(c.sink, ui.TagSetup, "Servers started, press Ctrl+C to stop")

	select {
	case sig := <-c.opts.Signals:
		c.log.Info("signal received", zap.String("signal", sig.String()))
	case <-ctx.Done():
		c.log.Info("context done", zap.Error(ctx.Err()))
	}
	c.Shutdown()
	return nil
}

// stopRequested reports, without blocking, whether a shutdown request is
// already pending.
func (c *Controller) stopRequested(ctx context.Context) bool {
	select {
	case sig := <-c.opts.Signals:
		c.log.Info("signal received during setup", zap.String("signal", sig.String()))
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (c *Controller) preflight(ctx context.Context) {
	if c.opts.NoPortCheck {
		return
	}
	be := c.opts.Blueprint.Backend
	if conflict, busy := c.opts.CheckPort(ctx, be.Host, be.Port); busy {
		ui.EmitWarn(c.sink, ui.TagSetup, conflict.String())
	}
}

func (c *Controller) startServers(ctx context.Context) {
	bp := c.opts.Blueprint
	interpreter := c.opts.Provisioner.Environment().Interpreter

	c.servers.backend = c.opts.Supervisor.Start(ctx, supervisor.BackendSpec(bp, c.opts.Root, interpreter))
	c.servers.frontend = c.opts.Supervisor.Start(ctx, supervisor.FrontendSpec(bp, c.opts.Root, c.opts.Family))

	c.log.Info("servers started",
		zap.Int("backend_pid", c.servers.backend.PID),
		zap.Int("frontend_pid", c.servers.frontend.PID))
}

// Shutdown requests termination of every live server and exits with status
// 0. Only the first call has any effect.
func (c *Controller) Shutdown() {
	c.once.Do(func() {
		ui.EmitWarn(c.sink, ui.TagSetup, "Shutting down servers...")

		live := c.servers.live()
		for _, h := range live {
			if err := h.Terminate(); err != nil {
				c.log.Debug("terminate failed", zap.String("role", string(h.Role)), zap.Error(err))
			}
		}
		if c.grace > 0 {
			c.awaitOrKill(live)
		}

		c.opts.Exit(0)
	})
}

// awaitOrKill gives the servers a shared grace period, then kills whatever
// is still running.
func (c *Controller) awaitOrKill(live []*supervisor.Handle) {
	ctx, cancel := context.WithTimeout(context.Background(), c.grace)
	defer cancel()

	for _, h := range live {
		select {
		case <-h.Done():
		case <-ctx.Done():
		}
	}

	for _, h := range live {
		if !h.Alive(context.Background()) {
			continue
		}
		c.log.Warn("grace period elapsed, killing", zap.String("role", string(h.Role)), zap.Int("pid", h.PID))
		ui.EmitWarn(c.sink, ui.TagSetup, fmt.Sprintf("%s did not stop within %s, killing it", h.Role, c.grace))
		if err := h.Kill(); err != nil {
			c.log.Debug("kill failed", zap.String("role", string(h.Role)), zap.Error(err))
		}
	}
}
