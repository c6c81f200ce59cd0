package ports

import (
	"context"
	"fmt"
	"net"
	"strconv"

	psnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// maxAttempts bounds FindAvailablePort.
const maxAttempts = 100

// IsPortAvailable checks if a port is available for binding on host.
// An empty host means all interfaces.
func IsPortAvailable(host string, port int) bool {
	listener, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	listener.Close()
	return true
}

// FindAvailablePort finds the next available port starting from the given
// port. It returns 0 when nothing in range is free.
func FindAvailablePort(host string, startPort int) int {
	for i := 0; i < maxAttempts; i++ {
		port := startPort + i
		if port > 65535 {
			break
		}
		if IsPortAvailable(host, port) {
			return port
		}
	}
	return 0
}

// Owner describes the process listening on a port.
type Owner struct {
	PID  int32
	Name string
}

func (o Owner) String() string {
	if o.Name == "" {
		return fmt.Sprintf("PID %d", o.PID)
	}
	return fmt.Sprintf("%s (PID %d)", o.Name, o.PID)
}

// ListenerOn returns the process listening on port. found is false when no
// listener is visible, which includes lacking permission to see it.
func ListenerOn(ctx context.Context, port int) (owner Owner, found bool) {
	conns, err := psnet.ConnectionsWithContext(ctx, "tcp")
	if err != nil {
		return Owner{}, false
	}
	for _, c := range conns {
		if c.Status != "LISTEN" || int(c.Laddr.Port) != port || c.Pid == 0 {
			continue
		}
		owner = Owner{PID: c.Pid}
		if p, err := process.NewProcessWithContext(ctx, c.Pid); err == nil {
			owner.Name, _ = p.NameWithContext(ctx)
		}
		return owner, true
	}
	return Owner{}, false
}

// Conflict is a failed pre-flight check.
type Conflict struct {
	Port      int
	Owner     Owner
	HasOwner  bool
	Suggested int
}

func (c Conflict) String() string {
	msg := fmt.Sprintf("Port %d is already in use", c.Port)
	if c.HasOwner {
		msg += " by " + c.Owner.String()
	}
	if c.Suggested > 0 {
		msg += fmt.Sprintf("; port %d is free", c.Suggested)
	}
	return msg
}

// Check reports whether port is bindable on host, and if not who holds it
// and which nearby port is free.
func Check(ctx context.Context, host string, port int) (Conflict, bool) {
	if IsPortAvailable(host, port) {
		return Conflict{}, false
	}
	c := Conflict{Port: port, Suggested: FindAvailablePort(host, port+1)}
	c.Owner, c.HasOwner = ListenerOn(ctx, port)
	return c, true
}
