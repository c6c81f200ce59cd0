package platform

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
)

// Family selects path conventions and how spawned executables are invoked.
type Family string

const (
	Windows Family = "windows"
	Posix   Family = "posix"
)

// DefaultInterpreter is returned when no candidate answers the version probe.
const DefaultInterpreter = "python"

// interpreterCandidates are probed in order by FindSystemInterpreter.
var interpreterCandidates = []string{"python3", "python", "py"}

// Detect reports the platform family of the running process.
func Detect() Family {
	return familyOf(runtime.GOOS)
}

func familyOf(goos string) Family {
	if goos == "windows" {
		return Windows
	}
	return Posix
}

// InterpreterPath returns where the interpreter of a managed environment
// rooted at root lives. The separator follows the family, not the host.
func InterpreterPath(f Family, root string) string {
	if f == Windows {
		return strings.TrimRight(root, `\/`) + `\Scripts\python.exe`
	}
	return strings.TrimRight(root, "/") + "/bin/python"
}

// Wrap rewrites a command so it runs through the platform shell when one is
// required. On windows npm and friends are batch files and need cmd /C.
func Wrap(f Family, name string, args []string) (string, []string) {
	if f != Windows {
		return name, args
	}
	wrapped := make([]string, 0, len(args)+2)
	wrapped = append(wrapped, "/C", name)
	wrapped = append(wrapped, args...)
	return "cmd", wrapped
}

// PackageRunner returns the npm executable name for the family.
func PackageRunner(f Family) string {
	if f == Windows {
		return "npm.cmd"
	}
	return "npm"
}

// Prober runs a short-lived command and reports whether it exited zero.
type Prober interface {
	Probe(ctx context.Context, name string, args ...string) error
}

// ExecProber probes by actually running the command.
type ExecProber struct{}

// Probe implements Prober.
func (ExecProber) Probe(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// FindSystemInterpreter returns the first candidate that answers --version.
// Missing executables are skipped. If nothing answers, DefaultInterpreter is
// returned and any failure surfaces later when it is actually used.
func FindSystemInterpreter(ctx context.Context, p Prober) string {
	if p == nil {
		p = ExecProber{}
	}
	for _, name := range interpreterCandidates {
		if err := p.Probe(ctx, name, "--version"); err == nil {
			return name
		}
	}
	return DefaultInterpreter
}

// InterpreterVersion returns the trimmed output of `<name> --version`.
// Older interpreters print the version on stderr, so both streams are read.
func InterpreterVersion(ctx context.Context, name string) (string, error) {
	out, err := exec.CommandContext(ctx, name, "--version").CombinedOutput()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
