package unix

import (
	"net"
	"strings"
	"time"

	"github.com/ValentinKolb/keep/rpc/transport"
	"github.com/ValentinKolb/keep/rpc/transport/base"
)

// clientConnector implements the IClientConnector interface for Unix sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "unix"
}

// Connect dials the socket at endpoint, a path optionally prefixed with "unix://"
func (c *clientConnector) Connect(endpoint string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("unix", socketPath(endpoint), timeout)
}

// socketPath strips the optional scheme of an endpoint
func socketPath(endpoint string) string {
	return strings.TrimPrefix(endpoint, "unix://")
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewUnixClientTransport creates a new Unix client transport
func NewUnixClientTransport() transport.IRPCClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
