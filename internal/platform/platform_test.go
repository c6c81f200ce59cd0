package platform

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type scriptedProber struct {
	ok    map[string]bool
	calls []string
}

func (s *scriptedProber) Probe(_ context.Context, name string, args ...string) error {
	s.calls = append(s.calls, name+" "+strings.Join(args, " "))
	if s.ok[name] {
		return nil
	}
	return errors.New("exec: \"" + name + "\": executable file not found in $PATH")
}

func TestDetect(t *testing.T) {
	want := Posix
	if runtime.GOOS == "windows" {
		want = Windows
	}
	assert.Equal(t, want, Detect())
	assert.Equal(t, Windows, familyOf("windows"))
	assert.Equal(t, Posix, familyOf("darwin"))
	assert.Equal(t, Posix, familyOf("freebsd"))
}

func TestInterpreterPath(t *testing.T) {
	tests := []struct {
		name   string
		family Family
		root   string
		want   string
	}{
		{"posix", Posix, "backend/venv", "backend/venv/bin/python"},
		{"posix trailing slash", Posix, "/srv/app/backend/venv/", "/srv/app/backend/venv/bin/python"},
		{"windows", Windows, `C:\app\backend\venv`, `C:\app\backend\venv\Scripts\python.exe`},
		{"windows trailing separator", Windows, `backend\venv\`, `backend\venv\Scripts\python.exe`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InterpreterPath(tt.family, tt.root)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.True(t, strings.HasSuffix(InterpreterPath(Windows, "venv"), `Scripts\python.exe`))
	assert.True(t, strings.HasSuffix(InterpreterPath(Posix, "venv"), "bin/python"))
}

func TestFindSystemInterpreter(t *testing.T) {
	tests := []struct {
		name      string
		available []string
		want      string
		lookups   int
	}{
		{"first candidate wins", []string{"python3", "python"}, "python3", 1},
		{"falls through missing executables", []string{"py"}, "py", 3},
		{"second candidate", []string{"python"}, "python", 2},
		{"nothing answers", nil, DefaultInterpreter, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedProber{ok: map[string]bool{}}
			for _, name := range tt.available {
				p.ok[name] = true
			}

			got := FindSystemInterpreter(context.Background(), p)
			assert.Equal(t, tt.want, got)
			assert.Len(t, p.calls, tt.lookups)
			for _, call := range p.calls {
				assert.True(t, strings.HasSuffix(call, " --version"), call)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	name, args := Wrap(Posix, "npm", []string{"run", "dev"})
	assert.Equal(t, "npm", name)
	assert.Equal(t, []string{"run", "dev"}, args)

	name, args = Wrap(Windows, "npm.cmd", []string{"run", "dev"})
	assert.Equal(t, "cmd", name)
	assert.Equal(t, []string{"/C", "npm.cmd", "run", "dev"}, args)
}

func TestPackageRunner(t *testing.T) {
	assert.Equal(t, "npm", PackageRunner(Posix))
	assert.Equal(t, "npm.cmd", PackageRunner(Windows))
}

func TestDescribeHost(t *testing.T) {
	info := DescribeHost()
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, Detect(), info.Family)
	assert.NotEmpty(t, info.Arch)
}
