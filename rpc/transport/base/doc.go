// Package base provides the socket transport shared by the tcp and unix
// packages. It implements the transport interfaces of the keep RPC system
// independent of the network protocol; protocol-specific parts are injected
// through IClientConnector and IServerConnector.
//
// Frame format (all integers big endian):
//
//	requestID (8 bytes) | namespace length (2 bytes) | data length (4 bytes) | namespace | data
//
// Responses carry the requestID of their request, so a client can have many
// requests in flight on one connection.
//
// Key Components:
//
//   - clientTransport: keeps one connection per endpoint, selects endpoints
//     round robin and retries failed requests on the next one with exponential
//     backoff. A broken connection fails all of its pending requests and is
//     re-established by the next request.
//
//   - serverTransport: accepts connections and dispatches every frame to the
//     registered handler. Requests of one connection are processed by a bounded
//     worker pool; read buffers are reused through a sync.Pool.
//
// Thread Safety:
//
//	All public methods are safe for concurrent use.
package base
