// Package store provides the high-level interface of keep, a persistent
// key-value store without a database dependency, together with its unified
// error handling.
//
// The package focuses on:
//   - A unified interface (IStore) for key-value operations across different backends
//   - A structured error type that classifies every failure
//
// Key Components:
//
//   - IStore Interface: The core abstraction defining single-entry operations
//     (SetItem, GetItem, RemoveItem) and aggregate operations (Data, Keys, Values,
//     Length, Clear) that enumerate the whole store. All implementations share
//     this interface, allowing applications to switch between backends without
//     code changes.
//
//   - Error System: Failures are reported as *Error values carrying a RetCode,
//     a message, the affected path and the underlying cause. A missing key is not
//     an error: GetItem reports it through its loaded return value and RemoveItem
//     treats it as a successful no-op.
//
//     Return codes:
//
//   - RetCInitError: the storage could not be created (always propagated)
//
//   - RetCIOError: any other failure of the backing storage
//
//   - RetCInvalidKey / RetCInvalidValue: the input can not be stored
//
// Implementations:
//
//   - File Store (fstore): Every entry is stored as an individual file named by
//     the SHA-256 of its key. Data survives process restarts.
//     Available in the "github.com/ValentinKolb/keep/lib/store/fstore" package.
//
//   - Local Store (lstore): A purely in-memory implementation with the same
//     semantics, suitable for ephemeral data and tests.
//     Available in the "github.com/ValentinKolb/keep/lib/store/lstore" package.
//
//   - RPC Store: A client for stores served by "keep serve".
//     Available in the "github.com/ValentinKolb/keep/rpc/client" package.
//
// Concurrency:
//
//	Implementations do not serialize access to a single key. Operations on
//	distinct keys are independent; callers that need read-modify-write
//	atomicity on one key must synchronize externally.
package store
