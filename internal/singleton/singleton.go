// Package singleton implements the startup exclusivity guard: an
// exclusive bind to a sentinel loopback port prevents a second bridge
// instance from contending for the DAW ports.
package singleton

import (
	"fmt"
	"net"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
)

// Guard holds the sentinel listener for the process lifetime. Release
// closes it, freeing the port for the next instance.
type Guard struct {
	listener net.Listener
}

// Acquire attempts an exclusive bind to the sentinel loopback port. A
// failure means another instance already holds the guard; callers
// should exit with a clear message and a non-zero exit code rather than
// retrying.
func Acquire(port int) (*Guard, error) {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, bridgeerr.Wrap(bridgeerr.Internal, fmt.Sprintf("another instance is already running on %s", addr), err)
	}
	return &Guard{listener: ln}, nil
}

// Release closes the sentinel listener.
func (g *Guard) Release() error {
	if g == nil || g.listener == nil {
		return nil
	}
	return g.listener.Close()
}
