package transport

import (
	"github.com/ValentinKolb/keep/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc processes one serialized request addressed to a namespace
// and returns the serialized response. It is safe for concurrent use, server
// transports call it from many goroutines.
type ServerHandleFunc func(namespace string, req []byte) (resp []byte)

// IRPCServerTransport receives requests and passes them to a ServerHandleFunc
type IRPCServerTransport interface {
	// RegisterHandler sets the handler, it has to be called before Listen.
	// The transport extracts the namespace from the request (e.g. the URL path).
	RegisterHandler(handler ServerHandleFunc)
	// Listen serves requests on config.Endpoint.
	// It blocks until Close is called (returning nil) or the transport fails.
	Listen(config common.ServerConfig) error
	// Close stops accepting requests and makes Listen return
	Close() error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport delivers serialized requests to a server
type IRPCClientTransport interface {
	// Connect prepares the transport for the configured endpoints
	Connect(config common.ClientConfig) error
	// Send delivers a request to namespace and waits for the response.
	// Errors are transport failures only, store errors are part of resp.
	Send(namespace string, req []byte) (resp []byte, err error)
	// Close releases all connections, Send fails afterwards
	Close() error
}
