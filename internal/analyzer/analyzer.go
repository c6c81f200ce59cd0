package analyzer

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/harshul/devrun/internal/blueprint"
)

// Layout is what Analyze found in a two-tier project.
type Layout struct {
	// Root is the analyzed directory
	Root string
	// Name is the project name derived from the directory
	Name string

	BackendDir     string
	BackendFound   bool
	Manifest       string
	ManifestFound  bool
	App            string
	AppFound       bool
	FrontendDir    string
	FrontendFound  bool
	FrontendScript string
}

// Directory names probed in order, before falling back to the defaults.
var (
	backendDirs  = []string{"backend", "api", "server"}
	frontendDirs = []string{"frontend", "client", "web", "ui"}
)

// signal files that mark a directory as the Python backend
var backendSignals = []string{"requirements.txt", "pyproject.toml", "main.py", "app.py"}

// entryPoints are scanned for the ASGI application object.
var entryPoints = []string{"app.py", "main.py", "server.py", "asgi.py"}

var asgiPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(?:fastapi\.)?(?:FastAPI|Starlette)\(`)

// Analyze inspects dir and fills in whatever it can recognise. Anything it
// cannot find keeps the default layout.
func Analyze(dir string) (Layout, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Layout{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Layout{}, err
	}
	if !info.IsDir() {
		return Layout{}, os.ErrInvalid
	}

	def := blueprint.Default()
	layout := Layout{
		Root:           abs,
		Name:           filepath.Base(abs),
		BackendDir:     def.Backend.Dir,
		Manifest:       def.Backend.Manifest,
		App:            def.Backend.App,
		FrontendDir:    def.Frontend.Dir,
		FrontendScript: def.Frontend.Script,
	}

	for _, name := range backendDirs {
		if hasAny(filepath.Join(abs, name), backendSignals) {
			layout.BackendDir = name
			layout.BackendFound = true
			break
		}
	}
	backend := filepath.Join(abs, layout.BackendDir)
	if exists(filepath.Join(backend, layout.Manifest)) {
		layout.ManifestFound = true
	}
	if app, ok := findApp(backend); ok {
		layout.App = app
		layout.AppFound = true
	}

	for _, name := range frontendDirs {
		if exists(filepath.Join(abs, name, "package.json")) {
			layout.FrontendDir = name
			layout.FrontendFound = true
			break
		}
	}
	if layout.FrontendFound {
		layout.FrontendScript = pickScript(filepath.Join(abs, layout.FrontendDir, "package.json"))
	}

	return layout, nil
}

// Blueprint converts the layout into a configuration with defaults for
// everything else.
func (l Layout) Blueprint() blueprint.Blueprint {
	bp := blueprint.Default()
	bp.Backend.Dir = l.BackendDir
	bp.Backend.Manifest = l.Manifest
	bp.Backend.App = l.App
	bp.Frontend.Dir = l.FrontendDir
	bp.Frontend.Script = l.FrontendScript
	return bp
}

// findApp looks for "<name> = FastAPI(" in the usual entry points and
// returns the uvicorn import string.
func findApp(dir string) (string, bool) {
	for _, file := range entryPoints {
		f, err := os.Open(filepath.Join(dir, file))
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if m := asgiPattern.FindStringSubmatch(strings.TrimSpace(scanner.Text())); m != nil {
				f.Close()
				return strings.TrimSuffix(file, ".py") + ":" + m[1], true
			}
		}
		f.Close()
	}
	return "", false
}

// pickScript prefers the dev script, then start.
func pickScript(packagePath string) string {
	data, err := os.ReadFile(packagePath)
	if err != nil {
		return "dev"
	}

	var pkg struct {
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "dev"
	}

	if _, ok := pkg.Scripts["dev"]; ok {
		return "dev"
	}
	if _, ok := pkg.Scripts["start"]; ok {
		return "start"
	}
	return "dev"
}

func hasAny(dir string, files []string) bool {
	for _, f := range files {
		if exists(filepath.Join(dir, f)) {
			return true
		}
	}
	return false
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
