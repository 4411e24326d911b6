// Package common provides core data structures and utilities shared by the
// RPC server, the RPC client and the command line interface of keep.
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication between client
//     and server, with a flexible structure that adapts to the different
//     IStore operations. Values travel in their JSON encoded form. Errors
//     travel as return code plus message, so the client can rebuild a
//     *store.Error (see Message.SetError and Message.ToError).
//
//   - MessageType: Enumeration of all supported operations, serialized as
//     string in JSON.
//
//   - ServerConfig: Configuration of "keep serve": the served namespaces,
//     the storage root of file store namespaces and the HTTP endpoint.
//
//   - ClientConfig: Configuration for client components, controlling
//     endpoints, timeouts and retry behavior.
//
//   - Logger: Custom logging implementation for dragonboat's logger package,
//     giving all keep loggers the format "LEVEL | name | message".
package common
