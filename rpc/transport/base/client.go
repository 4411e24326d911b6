package base

import (
	"errors"
	"fmt"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/keep/rpc/common"
	"github.com/ValentinKolb/keep/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("transport/rpc")

// errNotConnected is returned by Send before Connect and after Close
var errNotConnected = errors.New("transport not connected")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint
	Connect(endpoint string, timeout time.Duration) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// responseResult contains the result of a request
type responseResult struct {
	data []byte
	err  error
}

// session is a single net connection and the requests waiting for a response on it
type session struct {
	conn    net.Conn
	pending *xsync.MapOf[uint64, chan responseResult]
}

// clientConnection manages the session to one endpoint. A broken session is
// replaced on the next request.
type clientConnection struct {
	endpoint string
	parent   *clientTransport

	mu      sync.Mutex // protects current and writes to its connection
	current *session
}

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.)
type clientTransport struct {
	connector     IClientConnector
	timeout       time.Duration
	retryCount    int
	connections   []*clientConnection
	connectionsMu sync.RWMutex
	nextConnIndex atomic.Uint64 // Round Robin
	nextRequestID atomic.Uint64
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{
		connector: connector,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return fmt.Errorf("no endpoints configured")
	}

	// Close all existing connections
	t.closeConnections()

	t.timeout = time.Duration(config.TimeoutSecond) * time.Second
	t.retryCount = max(1, config.RetryCount)

	connections := make([]*clientConnection, 0, len(config.Endpoints))
	connected := 0
	for _, endpoint := range config.Endpoints {
		c := &clientConnection{endpoint: endpoint, parent: t}
		connections = append(connections, c)

		if _, err := c.session(); err != nil {
			Logger.Warningf("Failed to connect to %s: %v", endpoint, err)
			continue
		}
		connected++
	}

	if connected == 0 {
		for _, c := range connections {
			c.close()
		}
		return fmt.Errorf("failed to connect to any endpoint")
	}

	t.connectionsMu.Lock()
	t.connections = connections
	t.connectionsMu.Unlock()

	Logger.Infof("Connected to %d out of %d endpoints using %s transport",
		connected, len(config.Endpoints), t.connector.GetName())

	return nil
}

func (t *clientTransport) Send(namespace string, req []byte) ([]byte, error) {
	var lastErr error

	// Initial backoff duration in milliseconds
	backoffMs := 50

	for i := 0; i < t.retryCount; i++ {
		conn := t.getNextConnection()
		if conn == nil {
			return nil, errNotConnected
		}

		data, err := conn.send(namespace, t.nextRequestID.Add(1), req)
		if err == nil {
			return data, nil
		}

		lastErr = err
		Logger.Debugf("Request attempt %d/%d to %s failed: %v", i+1, t.retryCount, conn.endpoint, err)

		if i < t.retryCount-1 {
			// Exponential backoff with a small random jitter (+-10%)
			jitter := float64(backoffMs) * (0.9 + 0.2*rand.Float64())
			time.Sleep(time.Duration(jitter) * time.Millisecond)
			backoffMs *= 2
		}
	}

	return nil, fmt.Errorf("failed to send request after %d attempts: %w", t.retryCount, lastErr)
}

func (t *clientTransport) Close() error {
	t.closeConnections()
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// getNextConnection selects the next connection via Round Robin
func (t *clientTransport) getNextConnection() *clientConnection {
	t.connectionsMu.RLock()
	defer t.connectionsMu.RUnlock()

	if len(t.connections) == 0 {
		return nil
	}
	index := (t.nextConnIndex.Add(1) - 1) % uint64(len(t.connections))
	return t.connections[index]
}

// closeConnections closes all active connections
func (t *clientTransport) closeConnections() {
	t.connectionsMu.Lock()
	connections := t.connections
	t.connections = nil
	t.connectionsMu.Unlock()

	for _, c := range connections {
		c.close()
	}
}

// session returns the current session, it connects if there is none.
func (c *clientConnection) session() (*session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionLocked()
}

func (c *clientConnection) sessionLocked() (*session, error) {
	if c.current != nil {
		return c.current, nil
	}

	conn, err := c.parent.connector.Connect(c.endpoint, c.parent.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.endpoint, err)
	}

	s := &session{
		conn:    conn,
		pending: xsync.NewMapOf[uint64, chan responseResult](),
	}
	c.current = s
	go c.readResponses(s)
	return s, nil
}

// send writes a request frame and waits for the matching response
func (c *clientConnection) send(namespace string, requestID uint64, req []byte) ([]byte, error) {
	respCh := make(chan responseResult, 1)

	c.mu.Lock()
	s, err := c.sessionLocked()
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	s.pending.Store(requestID, respCh)
	if c.parent.timeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(c.parent.timeout))
	}
	err = writeFrame(s.conn, requestID, namespace, req)
	c.mu.Unlock()

	if err != nil {
		s.pending.Delete(requestID)
		c.fail(s, err)
		return nil, err
	}

	// Wait for response or timeout
	var timeoutCh <-chan time.Time
	if c.parent.timeout > 0 {
		timer := time.NewTimer(c.parent.timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case result := <-respCh:
		return result.data, result.err
	case <-timeoutCh:
		s.pending.Delete(requestID)
		return nil, fmt.Errorf("request timed out")
	}
}

// readResponses reads responses in a loop and distributes them to waiting requests
func (c *clientConnection) readResponses(s *session) {
	for {
		requestID, namespace, data, err := readFrame(s.conn, nil)
		if err != nil {
			c.fail(s, err)
			return
		}

		if respCh, found := s.pending.LoadAndDelete(requestID); found {
			respCh <- responseResult{data: data}
		} else {
			Logger.Warningf("Received response for unknown request ID %d (namespace %s)", requestID, namespace)
		}
	}
}

// fail closes a broken session and fails every request waiting on it
func (c *clientConnection) fail(s *session, cause error) {
	c.mu.Lock()
	if c.current == s {
		c.current = nil
	}
	c.mu.Unlock()

	if err := s.conn.Close(); err == nil {
		Logger.Debugf("Closed connection to %s: %v", c.endpoint, cause)
	}

	s.pending.Range(func(requestID uint64, _ chan responseResult) bool {
		if respCh, ok := s.pending.LoadAndDelete(requestID); ok {
			respCh <- responseResult{err: fmt.Errorf("error reading response: %w", cause)}
		}
		return true
	})
}

// close closes the current session
func (c *clientConnection) close() {
	c.mu.Lock()
	s := c.current
	c.current = nil
	c.mu.Unlock()

	if s != nil {
		_ = s.conn.Close()
	}
}
