// Package testing provides standardised tests and benchmarks for
// store implementations that satisfy the store.IStore interface.
//
// The package contains:
//   - testing: A conformance suite for the IStore contract (round trip,
//     deletion, idempotent init, aggregate consistency, falsy values, ...)
//   - benchmark: Performance tests for the single-entry and aggregate operations
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func(t testing.TB) store.IStore {
//		return mystore.New(t.TempDir())
//	}
//
//	// Running the standard test suite
//	storetesting.RunStoreTests(t, "MyStore", factory)
//
//	// Running performance benchmarks
//	storetesting.RunStoreBenchmarks(b, "MyStore", factory)
//
// Factories must return a fresh, empty and initialized store on every call.
package testing
