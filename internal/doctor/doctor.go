package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harshul/devrun/internal/blueprint"
	"github.com/harshul/devrun/internal/platform"
	"github.com/harshul/devrun/internal/ports"
	"github.com/harshul/devrun/internal/secrets"
)

// Status is the verdict of a single check.
type Status int

const (
	StatusOK Status = iota
	StatusWarn
	StatusFail
)

// Check is one line of the report.
type Check struct {
	Name   string
	Status Status
	Detail string
}

// Diagnosis contains the full health check results
type Diagnosis struct {
	ProjectPath string
	Host        platform.HostInfo
	Interpreter string
	Checks      []Check
	Healthy     bool
	Issues      []string
}

// Options configures Diagnose. Zero values use the real system.
type Options struct {
	Root      string
	Blueprint blueprint.Blueprint
	Family    platform.Family

	Prober    platform.Prober
	Version   func(ctx context.Context, name string) (string, error)
	CheckPort func(ctx context.Context, host string, port int) (ports.Conflict, bool)
	Host      func() platform.HostInfo
}

// Diagnose checks the health of the project. It never changes anything.
func Diagnose(ctx context.Context, opts Options) Diagnosis {
	if opts.Family == "" {
		opts.Family = platform.Detect()
	}
	if opts.Prober == nil {
		opts.Prober = platform.ExecProber{}
	}
	if opts.Version == nil {
		opts.Version = platform.InterpreterVersion
	}
	if opts.CheckPort == nil {
		opts.CheckPort = ports.Check
	}
	if opts.Host == nil {
		opts.Host = platform.DescribeHost
	}

	bp := opts.Blueprint
	d := Diagnosis{
		ProjectPath: opts.Root,
		Host:        opts.Host(),
		Healthy:     true,
	}

	d.Interpreter = platform.FindSystemInterpreter(ctx, opts.Prober)
	if version, err := opts.Version(ctx, d.Interpreter); err == nil {
		d.add(Check{Name: "Python", Status: StatusOK, Detail: fmt.Sprintf("%s (%s)", version, d.Interpreter)})
	} else {
		d.add(Check{Name: "Python", Status: StatusFail, Detail: "no working interpreter found (tried python3, python, py)"})
	}

	venv := platform.InterpreterPath(opts.Family, bp.VenvDir(opts.Root))
	if isFile(venv) {
		d.add(Check{Name: "Virtual environment", Status: StatusOK, Detail: venv})
	} else {
		d.add(Check{Name: "Virtual environment", Status: StatusWarn, Detail: "not created yet, run 'devrun setup'"})
	}

	if isFile(bp.ManifestPath(opts.Root)) {
		d.add(Check{Name: "Dependencies", Status: StatusOK, Detail: bp.Backend.Manifest})
	} else {
		d.add(Check{Name: "Dependencies", Status: StatusWarn, Detail: fmt.Sprintf("no %s, installation will be skipped", bp.Backend.Manifest)})
	}

	d.checkEnv(bp.BackendDir(opts.Root))

	frontend := bp.FrontendDir(opts.Root)
	if isFile(filepath.Join(frontend, "package.json")) {
		d.add(Check{Name: "Frontend", Status: StatusOK, Detail: filepath.Join(bp.Frontend.Dir, "package.json")})
		if !isDir(filepath.Join(frontend, "node_modules")) {
			d.add(Check{Name: "node_modules", Status: StatusWarn, Detail: fmt.Sprintf("missing, run 'npm install' in %s", bp.Frontend.Dir)})
		}
	} else {
		d.add(Check{Name: "Frontend", Status: StatusFail, Detail: fmt.Sprintf("no package.json in %s", bp.Frontend.Dir)})
	}

	npm := platform.PackageRunner(opts.Family)
	if err := opts.Prober.Probe(ctx, npm, "--version"); err == nil {
		d.add(Check{Name: "npm", Status: StatusOK, Detail: npm})
	} else {
		d.add(Check{Name: "npm", Status: StatusFail, Detail: "npm is not installed. Install Node.js from https://nodejs.org"})
	}

	if conflict, busy := opts.CheckPort(ctx, bp.Backend.Host, bp.Backend.Port); busy {
		d.add(Check{Name: "Backend port", Status: StatusWarn, Detail: conflict.String()})
	} else {
		d.add(Check{Name: "Backend port", Status: StatusOK, Detail: fmt.Sprintf("%d is free", bp.Backend.Port)})
	}

	return d
}

func (d *Diagnosis) checkEnv(dir string) {
	status, err := secrets.CheckEnvStatus(dir)
	switch {
	case err != nil:
		d.add(Check{Name: "Environment file", Status: StatusWarn, Detail: err.Error()})
	case status.ExampleFile == "":
		// nothing documented
	case status.Complete():
		d.add(Check{Name: "Environment file", Status: StatusOK, Detail: "all documented variables set"})
	default:
		d.add(Check{Name: "Environment file", Status: StatusWarn,
			Detail: fmt.Sprintf("%d variable(s) from %s not set: %v", len(status.Missing), filepath.Base(status.ExampleFile), status.Missing)})
	}
}

func (d *Diagnosis) add(c Check) {
	d.Checks = append(d.Checks, c)
	if c.Status == StatusFail {
		d.Healthy = false
		d.Issues = append(d.Issues, c.Name+": "+c.Detail)
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
