//go:build windows

package platform

import (
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskkillArgs(t *testing.T) {
	assert.Equal(t, []string{"/T", "/F", "/PID", "4242"}, taskkillArgs(4242))
}

func TestTerminateEndsWrappedTree(t *testing.T) {
	cmd := exec.Command("cmd", "/C", "ping -n 30 127.0.0.1 >NUL")
	SetProcessGroup(cmd)
	require.NoError(t, cmd.Start())

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	require.NoError(t, Terminate(cmd.Process))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("wrapper still running after Terminate")
	}
	assert.NoError(t, Terminate(nil))
}
