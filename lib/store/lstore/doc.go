// Package lstore implements a local, in-memory key-value store based on the
// store.IStore interface. Data is stored entirely in memory and is not
// persisted between process restarts.
//
// Key Features:
//   - Same semantics as the file store: values must be JSON encodable, keys
//     must be valid UTF-8, missing keys are not an error
//   - Values are stored in their encoded form, so callers never share memory
//     with the store
//   - Lock-free concurrent access based on xsync.MapOf
//   - Aggregate operations (Data, Keys, Values) return entries sorted by key
//
// Usage Example:
//
//	s := lstore.NewLocalStore()
//
//	err := s.SetItem("session:123", map[string]any{"user": "alice"})
//
//	value, exists, err := s.GetItem("session:123")
//
// Suitable Use Cases:
//
//	The local store is ideal for:
//	- Ephemeral data that doesn't need to survive process restarts
//	- Testing code written against store.IStore
//	- Namespaces of "keep serve" that only live as long as the server
package lstore
