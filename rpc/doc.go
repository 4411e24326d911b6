// Package rpc provides the remote access layer of keep. It lets clients use
// stores that live in another process through the same store.IStore interface.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the Message protocol, configuration structures, and logging.
//
//   - transport: Network communication abstractions. Requests are addressed to
//     a namespace, the HTTP implementation maps it to the request path.
//
//   - serializer: Message serialization with multiple format options (Binary, JSON, GOB)
//     for converting between Message objects and byte arrays.
//
//   - client: The RPC store client, an IStore implementation that forwards every
//     operation to a server.
//
//   - server: RPC server components that host one store per namespace and
//     dispatch incoming requests to them.
package rpc
