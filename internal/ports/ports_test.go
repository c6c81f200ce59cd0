package ports

import (
	"context"
	"net"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listen(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().(*net.TCPAddr).Port
}

func TestFindAvailablePort(t *testing.T) {
	blockedPort := listen(t)

	got := FindAvailablePort("127.0.0.1", blockedPort)
	assert.Greater(t, got, blockedPort, "port %d is busy", blockedPort)
}

func TestIsPortAvailable(t *testing.T) {
	port := listen(t)
	assert.False(t, IsPortAvailable("127.0.0.1", port))
}

func TestCheck(t *testing.T) {
	port := listen(t)

	conflict, busy := Check(context.Background(), "127.0.0.1", port)
	require.True(t, busy)
	assert.Equal(t, port, conflict.Port)
	assert.Greater(t, conflict.Suggested, port)
	assert.True(t, strings.HasPrefix(conflict.String(), "Port "+strconv.Itoa(port)+" is already in use"))

	if conflict.HasOwner {
		assert.Equal(t, int32(os.Getpid()), conflict.Owner.PID)
	}
}

func TestConflictString(t *testing.T) {
	tests := []struct {
		name     string
		conflict Conflict
		want     string
	}{
		{"bare", Conflict{Port: 8000}, "Port 8000 is already in use"},
		{"owner", Conflict{Port: 8000, HasOwner: true, Owner: Owner{PID: 12, Name: "uvicorn"}}, "Port 8000 is already in use by uvicorn (PID 12)"},
		{"suggested", Conflict{Port: 8000, HasOwner: true, Owner: Owner{PID: 12}, Suggested: 8001}, "Port 8000 is already in use by PID 12; port 8001 is free"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.conflict.String())
		})
	}
}
