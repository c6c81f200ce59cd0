package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshul/devrun/internal/blueprint"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{16 * 1024 * 1024 * 1024, "16.0 GiB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.in))
	}
}

func TestInitWritesDetectedLayout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "server"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "server", "requirements.txt"), []byte("fastapi\n"), 0o644))
	// Equivalent of t.Chdir (Go 1.24+) for older toolchains.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"init"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Backend: server")

	bp, err := blueprint.Read(filepath.Join(dir, blueprint.DefaultFile))
	require.NoError(t, err)
	assert.Equal(t, "server", bp.Backend.Dir)
	assert.Equal(t, "frontend", bp.Frontend.Dir)

	rootCmd.SetArgs([]string{"init"})
	assert.Error(t, rootCmd.Execute(), "init must refuse to overwrite without --force")
}
