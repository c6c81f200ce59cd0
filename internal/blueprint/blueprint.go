package blueprint

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up in the project root.
const DefaultFile = ".devrun.yaml"

// Blueprint describes the two-tier project devrun drives. Every field is
// optional; zero values fall back to the defaults below.
type Blueprint struct {
	Backend  Backend  `yaml:"backend"`
	Frontend Frontend `yaml:"frontend"`
	// ShutdownGrace is how long shutdown waits for the servers before
	// force-killing them. Empty or "0s" sends the termination request and
	// exits immediately.
	ShutdownGrace string `yaml:"shutdown_grace,omitempty"`
}

// Backend is the Python API server.
type Backend struct {
	Dir      string `yaml:"dir"`
	Venv     string `yaml:"venv"`
	Manifest string `yaml:"manifest"`
	App      string `yaml:"app"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Reload   *bool  `yaml:"reload,omitempty"`
}

// Frontend is the npm UI dev server.
type Frontend struct {
	Dir    string `yaml:"dir"`
	Script string `yaml:"script"`
}

// Default returns the layout devrun expects when no file is present.
func Default() Blueprint {
	reload := true
	return Blueprint{
		Backend: Backend{
			Dir:      "backend",
			Venv:     "venv",
			Manifest: "requirements.txt",
			App:      "app:app",
			Host:     "0.0.0.0",
			Port:     8000,
			Reload:   &reload,
		},
		Frontend: Frontend{
			Dir:    "frontend",
			Script: "dev",
		},
	}
}

// applyDefaults fills every empty field from Default.
func (bp *Blueprint) applyDefaults() {
	def := Default()
	if bp.Backend.Dir == "" {
		bp.Backend.Dir = def.Backend.Dir
	}
	if bp.Backend.Venv == "" {
		bp.Backend.Venv = def.Backend.Venv
	}
	if bp.Backend.Manifest == "" {
		bp.Backend.Manifest = def.Backend.Manifest
	}
	if bp.Backend.App == "" {
		bp.Backend.App = def.Backend.App
	}
	if bp.Backend.Host == "" {
		bp.Backend.Host = def.Backend.Host
	}
	if bp.Backend.Port == 0 {
		bp.Backend.Port = def.Backend.Port
	}
	if bp.Backend.Reload == nil {
		bp.Backend.Reload = def.Backend.Reload
	}
	if bp.Frontend.Dir == "" {
		bp.Frontend.Dir = def.Frontend.Dir
	}
	if bp.Frontend.Script == "" {
		bp.Frontend.Script = def.Frontend.Script
	}
}

// Validate reports configuration values that can never work.
func (bp Blueprint) Validate() error {
	if bp.Backend.Port < 1 || bp.Backend.Port > 65535 {
		return fmt.Errorf("invalid configuration: backend port %d out of range", bp.Backend.Port)
	}
	if _, err := bp.Grace(); err != nil {
		return err
	}
	return nil
}

// Grace parses ShutdownGrace.
func (bp Blueprint) Grace() (time.Duration, error) {
	if bp.ShutdownGrace == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(bp.ShutdownGrace)
	if err != nil {
		return 0, fmt.Errorf("invalid configuration: shutdown_grace: %w", err)
	}
	if d < 0 {
		return 0, errors.New("invalid configuration: shutdown_grace must not be negative")
	}
	return d, nil
}

// ReloadEnabled reports whether uvicorn should watch for changes.
func (bp Blueprint) ReloadEnabled() bool {
	return bp.Backend.Reload == nil || *bp.Backend.Reload
}

// BackendDir is the backend working directory under root.
func (bp Blueprint) BackendDir(root string) string {
	return filepath.Join(root, bp.Backend.Dir)
}

// VenvDir is the managed environment root under root.
func (bp Blueprint) VenvDir(root string) string {
	return filepath.Join(root, bp.Backend.Dir, bp.Backend.Venv)
}

// ManifestPath is the dependency manifest under root.
func (bp Blueprint) ManifestPath(root string) string {
	return filepath.Join(root, bp.Backend.Dir, bp.Backend.Manifest)
}

// FrontendDir is the frontend working directory under root.
func (bp Blueprint) FrontendDir(root string) string {
	return filepath.Join(root, bp.Frontend.Dir)
}

// Write writes the blueprint as a YAML file.
func Write(path string, bp Blueprint) error {
	data, err := yaml.Marshal(&bp)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Read reads the YAML file at path and fills in defaults.
func Read(path string) (Blueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Blueprint{}, err
	}

	var bp Blueprint
	if err := yaml.Unmarshal(data, &bp); err != nil {
		return Blueprint{}, fmt.Errorf("parse %s: %w", path, err)
	}
	bp.applyDefaults()

	if err := bp.Validate(); err != nil {
		return Blueprint{}, err
	}
	return bp, nil
}

// Load is Read, except that a missing file yields Default. found reports
// whether the file existed.
func Load(path string) (bp Blueprint, found bool, err error) {
	bp, err = Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), false, nil
	}
	if err != nil {
		return Blueprint{}, true, err
	}
	return bp, true, nil
}
