package base

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/ValentinKolb/keep/rpc/common"
	"github.com/ValentinKolb/keep/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/sourcegraph/conc/pool"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen creates a listener for the endpoint and returns it
	Listen(endpoint string) (net.Listener, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the core server transport functionality
type serverTransport struct {
	connector         IServerConnector
	handler           transport.ServerHandleFunc
	bufferPool        *sync.Pool
	maxWorkersPerConn int

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   bool
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport. Requests of one
// connection are processed by at most maxWorkersPerConn goroutines.
func NewBaseServerTransport(connector IServerConnector, bufferSize int, maxWorkersPerConn int) transport.IRPCServerTransport {
	return &serverTransport{
		connector:         connector,
		maxWorkersPerConn: max(1, maxWorkersPerConn),
		conns:             make(map[net.Conn]struct{}),
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return make([]byte, bufferSize)
			},
		},
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Listen(config common.ServerConfig) error {
	if t.handler == nil {
		return fmt.Errorf("no handler registered")
	}

	listener, err := t.connector.Listen(config.Endpoint)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return listener.Close()
	}
	t.listener = listener
	t.mu.Unlock()

	Logger.Infof("Starting %s server on %s with %d workers per connection",
		t.connector.GetName(), config.Endpoint, t.maxWorkersPerConn)

	// Accept connections
	for {
		conn, err := listener.Accept()
		if errors.Is(err, net.ErrClosed) {
			return nil
		}
		if err != nil {
			Logger.Errorf("Accept error: %v", err)
			continue
		}

		if !t.track(conn) {
			_ = conn.Close()
			return nil
		}

		// Handle the connection in a goroutine
		go t.handleConnection(conn)
	}
}

func (t *serverTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	var err error
	if t.listener != nil {
		err = t.listener.Close()
	}
	for conn := range t.conns {
		_ = conn.Close()
	}
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// track registers an accepted connection, it returns false if the transport is closed
func (t *serverTransport) track(conn net.Conn) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.conns[conn] = struct{}{}
	return true
}

func (t *serverTransport) untrack(conn net.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.conns, conn)
}

// handleConnection handles incoming requests for one connection
func (t *serverTransport) handleConnection(conn net.Conn) {
	defer t.untrack(conn)
	defer conn.Close()

	requests := metrics.GetOrCreateCounter(fmt.Sprintf(`keep_rpc_requests_total{transport=%q}`, t.connector.GetName()))

	// Workers of this connection, Go blocks while all of them are busy
	workers := pool.New().WithMaxGoroutines(t.maxWorkersPerConn)

	// Protects writes to the connection
	var connMutex sync.Mutex

	for {
		buf := t.bufferPool.Get().([]byte)

		requestID, namespace, data, err := readFrame(conn, buf)
		if err != nil {
			t.bufferPool.Put(buf)

			switch {
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
				Logger.Debugf("Connection closed by client")
			default:
				Logger.Errorf("Error reading request: %v", err)
			}
			break
		}
		requests.Inc()

		workers.Go(func() {
			defer t.bufferPool.Put(buf)

			start := time.Now()
			resp := t.handler(namespace, data)
			Logger.Debugf("Processed request %d for namespace %s in %s", requestID, namespace, time.Since(start))

			connMutex.Lock()
			defer connMutex.Unlock()

			// Write the response with the same requestID
			if err := writeFrame(conn, requestID, namespace, resp); err != nil {
				Logger.Errorf("Failed to write response: %v", err)
			}
		})
	}

	// Wait for all workers to finish before closing the connection
	workers.Wait()
}
