// Package http implements an HTTP-based transport layer for RPC communication
// between keep clients and "keep serve".
//
// Endpoints of the server:
//
//	POST /{namespace}  serialized request in the body, serialized response in the body
//	GET  /metrics      Prometheus metrics of all stores of the server process
//
// Key Components:
//
//   - httpClientTransport: Implements IRPCClientTransport. Requests are
//     distributed round-robin across the configured endpoints. Failed requests
//     are retried (on the next endpoint) up to the configured retry count.
//
//   - httpServerTransport: Implements IRPCServerTransport. If the log level is
//     "debug", every request is logged with its status and duration.
//
// Thread Safety:
//
//	The client transport is thread-safe and can be used concurrently. It uses
//	atomic operations for the round-robin counter.
package http
