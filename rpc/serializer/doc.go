// Package serializer provides message serialization for the keep RPC system.
// It defines a common interface and multiple implementations for serializing
// and deserializing messages between client and server components.
//
// Key Components:
//
//   - IRPCSerializer: Core interface that all serializer implementations must satisfy.
//
//   - binarySerializerImpl: Custom binary format. A flag byte marks the fields
//     that are present, only those are written, resulting in compact messages.
//
//   - gobSerializerImpl: Implementation using Go's built-in gob encoding.
//
//   - jsonSerializerImpl: Implementation using JSON encoding, useful for debugging
//     or interoperability with other systems (e.g. curl).
//
// Client and server must use the same serializer. The binary serializer is
// the default of the command line interface.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
//
// Usage:
//
//	serializer := serializer.NewBinarySerializer()
//	data, err := serializer.Serialize(message)
//	// ... send data ...
//	var receivedMsg common.Message
//	err = serializer.Deserialize(receivedData, &receivedMsg)
package serializer
