package provisioner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/harshul/devrun/internal/platform"
	"github.com/harshul/devrun/internal/ui"
)

// Stage is the lifecycle position of the managed environment.
type Stage string

const (
	StageAbsent       Stage = "absent"
	StageCreating     Stage = "creating"
	StageCreated      Stage = "created"
	StagePipUpgrading Stage = "pip-upgrading"
	StageInstalling   Stage = "installing"
	StageReady        Stage = "ready"
	StageFailed       Stage = "failed"
)

// Step names used in outcomes and errors.
const (
	StepCreate  = "create virtual environment"
	StepUpgrade = "upgrade pip"
	StepInstall = "install dependencies"
)

// ErrEnvironmentExists is returned by Create when the interpreter is already
// in place.
var ErrEnvironmentExists = errors.New("virtual environment already exists")

// Environment is the managed virtual environment.
type Environment struct {
	Root        string
	Interpreter string
}

// Exists reports whether the interpreter file is present. It is recomputed
// on every call.
func (e Environment) Exists() bool {
	info, err := os.Stat(e.Interpreter)
	return err == nil && !info.IsDir()
}

// Options configures a Provisioner.
type Options struct {
	// BackendDir is the backend project root; all commands run there.
	BackendDir string
	// VenvName is the environment directory, relative to BackendDir.
	VenvName string
	// Manifest is the requirements file, relative to BackendDir.
	Manifest string
	Family   platform.Family
	// SystemInterpreter skips probing when set.
	SystemInterpreter string

	Runner Runner
	Prober platform.Prober
	Sink   ui.Sink
	Logger *zap.Logger
}

// Provisioner creates the managed environment and installs its dependencies.
type Provisioner struct {
	backendDir        string
	venvName          string
	manifest          string
	env               Environment
	systemInterpreter string

	runner Runner
	prober platform.Prober
	sink   ui.Sink
	log    *zap.Logger

	mu    sync.Mutex
	stage Stage
}

// New returns a Provisioner for opts. BackendDir is made absolute so the
// managed interpreter path stays valid regardless of the child's cwd.
func New(opts Options) (*Provisioner, error) {
	backendDir, err := filepath.Abs(opts.BackendDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve backend directory: %w", err)
	}
	if opts.VenvName == "" {
		opts.VenvName = "venv"
	}
	if opts.Manifest == "" {
		opts.Manifest = "requirements.txt"
	}
	if opts.Family == "" {
		opts.Family = platform.Detect()
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.Prober == nil {
		opts.Prober = platform.ExecProber{}
	}
	if opts.Sink == nil {
		opts.Sink = ui.SinkFunc(func(ui.LogLine) {})
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	root := filepath.Join(backendDir, opts.VenvName)
	p := &Provisioner{
		backendDir: backendDir,
		venvName:   opts.VenvName,
		manifest:   opts.Manifest,
		env: Environment{
			Root:        root,
			Interpreter: platform.InterpreterPath(opts.Family, root),
		},
		systemInterpreter: opts.SystemInterpreter,
		runner:            opts.Runner,
		prober:            opts.Prober,
		sink:              opts.Sink,
		log:               opts.Logger.Named("provisioner"),
		stage:             StageAbsent,
	}
	if p.env.Exists() {
		p.stage = StageCreated
	}
	return p, nil
}

// Environment returns the managed environment description.
func (p *Provisioner) Environment() Environment {
	return p.env
}

// Stage returns the current lifecycle stage.
func (p *Provisioner) Stage() Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stage
}

func (p *Provisioner) setStage(s Stage) {
	p.mu.Lock()
	prev := p.stage
	p.stage = s
	p.mu.Unlock()
	p.log.Debug("stage transition", zap.String("from", string(prev)), zap.String("to", string(s)))
}

// CheckExists reports whether the managed interpreter is present.
func (p *Provisioner) CheckExists() bool {
	return p.env.Exists()
}

// Create builds a new environment with the system interpreter. It refuses to
// run when the environment already exists.
func (p *Provisioner) Create(ctx context.Context) Outcome {
	if p.CheckExists() {
		return fatal(StepCreate, -1, ErrEnvironmentExists)
	}

	p.setStage(StageCreating)
	system := p.systemInterpreter
	if system == "" {
		system = platform.FindSystemInterpreter(ctx, p.prober)
		p.systemInterpreter = system
	}
	ui.Emit(p.sink, ui.TagSetup, fmt.Sprintf("Creating virtual environment with %s...", system))

	code, err := p.run(ctx, Command{Name: system, Args: []string{"-m", "venv", p.venvName}, Dir: p.backendDir})
	if err != nil || code != 0 {
		p.setStage(StageFailed)
		ui.EmitError(p.sink, ui.TagSetup, failureText("Failed to create virtual environment", code, err))
		return fatal(StepCreate, code, err)
	}

	p.setStage(StageCreated)
	ui.Emit(p.sink, ui.TagSetup, "Virtual environment created")
	return ok(StepCreate)
}

// UpgradeInstaller upgrades pip inside the environment. It never fails the
// setup: problems come back as a warning outcome.
func (p *Provisioner) UpgradeInstaller(ctx context.Context) Outcome {
	p.setStage(StagePipUpgrading)
	ui.Emit(p.sink, ui.TagSetup, "Upgrading pip...")

	code, err := p.run(ctx, Command{
		Name: p.env.Interpreter,
		Args: []string{"-m", "pip", "install", "--upgrade", "pip"},
		Dir:  p.backendDir,
	})
	if err != nil || code != 0 {
		ui.EmitWarn(p.sink, ui.TagSetup, failureText("pip upgrade failed", code, err)+", continuing")
		return warning(StepUpgrade, code, err)
	}

	ui.Emit(p.sink, ui.TagSetup, "pip upgraded")
	return ok(StepUpgrade)
}

// InstallDependencies installs the manifest into the environment. A missing
// manifest is skipped without spawning anything.
func (p *Provisioner) InstallDependencies(ctx context.Context) Outcome {
	manifestPath := filepath.Join(p.backendDir, p.manifest)
	if _, err := os.Stat(manifestPath); err != nil {
		ui.Emit(p.sink, ui.TagSetup, fmt.Sprintf("No %s found, skipping dependency installation", p.manifest))
		p.setStage(StageReady)
		return ok(StepInstall)
	}

	p.setStage(StageInstalling)
	ui.Emit(p.sink, ui.TagSetup, fmt.Sprintf("Installing dependencies from %s...", p.manifest))

	code, err := p.run(ctx, Command{
		Name: p.env.Interpreter,
		Args: []string{"-m", "pip", "install", "-r", p.manifest},
		Dir:  p.backendDir,
	})
	if err != nil || code != 0 {
		p.setStage(StageFailed)
		ui.EmitError(p.sink, ui.TagSetup, failureText("Failed to install dependencies", code, err))
		return fatal(StepInstall, code, err)
	}

	p.setStage(StageReady)
	ui.Emit(p.sink, ui.TagSetup, "Dependencies installed")
	return ok(StepInstall)
}

// Setup runs every step in order, each one finishing before the next starts.
// The first fatal outcome stops the sequence and is returned as a
// *SetupError.
func (p *Provisioner) Setup(ctx context.Context) error {
	ui.Emit(p.sink, ui.TagSetup, fmt.Sprintf("Checking virtual environment at %s", p.env.Root))

	if p.CheckExists() {
		p.setStage(StageCreated)
		ui.Emit(p.sink, ui.TagSetup, "Virtual environment already exists")
	} else {
		if out := p.Create(ctx); out.Fatal() {
			return out.AsError()
		}
	}

	p.UpgradeInstaller(ctx)

	if out := p.InstallDependencies(ctx); out.Fatal() {
		return out.AsError()
	}

	ui.Emit(p.sink, ui.TagSetup, "Setup complete")
	return nil
}

// run executes cmd, relaying its output as SETUP lines.
func (p *Provisioner) run(ctx context.Context, cmd Command) (int, error) {
	p.log.Debug("running setup command",
		zap.Stringer("command", cmd),
		zap.String("dir", cmd.Dir))

	out := ui.NewLineWriter(p.sink, ui.TagSetup)
	code, err := p.runner.Run(ctx, cmd, out)
	out.Flush()

	p.log.Debug("setup command finished",
		zap.Stringer("command", cmd),
		zap.Int("exit_code", code),
		zap.Error(err))
	return code, err
}

func failureText(prefix string, code int, err error) string {
	if err != nil {
		return fmt.Sprintf("%s: %v", prefix, err)
	}
	return fmt.Sprintf("%s (exit code %d)", prefix, code)
}
