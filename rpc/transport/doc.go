// Package transport defines the interfaces for RPC communication between
// keep clients and "keep serve". Transports only move serialized messages,
// they know nothing about the message format.
//
// Key Components:
//
//   - IRPCClientTransport: Interface for client-side transport implementations that
//     handles connection management and request sending.
//
//   - IRPCServerTransport: Interface for server-side transport implementations that
//     receives requests and routes them to the registered handler.
//
//   - ServerHandleFunc: Function type for request handling callbacks. Every
//     request is addressed to a namespace of the server.
//
// Implementations:
//
//   - http: one POST request per message, the namespace is the request path.
//     The server also exposes the process metrics at /metrics.
//
//   - tcp, unix: framed messages over long-lived sockets (see the base package),
//     with many requests in flight per connection.
package transport
