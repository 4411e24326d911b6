package testing

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/keep/lib/store"
)

// RunStoreBenchmarks runs all benchmarks for a store.IStore implementation
func RunStoreBenchmarks(b *testing.B, name string, factory StoreFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Set", func(b *testing.B) {
			benchmarkSet(b, factory(b))
		})

		b.Run("SetExisting", func(b *testing.B) {
			benchmarkSetExisting(b, factory(b))
		})

		b.Run("SetLargeValue", func(b *testing.B) {
			benchmarkSetLargeValue(b, factory(b))
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory(b))
		})

		b.Run("Get(not)", func(b *testing.B) {
			benchmarkGetNot(b, factory(b))
		})

		b.Run("Remove", func(b *testing.B) {
			benchmarkRemove(b, factory(b))
		})

		b.Run("Data", func(b *testing.B) {
			benchmarkData(b, factory(b))
		})

		b.Run("MixedUsage", func(b *testing.B) {
			benchmarkMixedUsage(b, factory(b))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// fill stores n entries named test-key-<i>
func fill(b *testing.B, s store.IStore, n int) {
	b.Helper()
	for i := 0; i < n; i++ {
		if err := s.SetItem(fmt.Sprintf("test-key-%d", i), fmt.Sprintf("test-value-%d", i)); err != nil {
			b.Fatalf("SetItem failed: %v", err)
		}
	}
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for SetItem with new keys
func benchmarkSet(b *testing.B, s store.IStore) {
	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := atomic.AddInt64(&counter, 1)
			_ = s.SetItem(fmt.Sprintf("test-key-%d", i), fmt.Sprintf("test-value-%d", i))
		}
	})
}

// Benchmark for SetItem overwriting existing keys
func benchmarkSetExisting(b *testing.B, s store.IStore) {
	numKeys := 1000
	fill(b, s, numKeys)

	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := atomic.AddInt64(&counter, 1)
			_ = s.SetItem(fmt.Sprintf("test-key-%d", i%int64(numKeys)), i)
		}
	})
}

// Benchmark for SetItem with large values
func benchmarkSetLargeValue(b *testing.B, s store.IStore) {
	largeValue := make([]int, 64*1024)
	for i := range largeValue {
		largeValue[i] = i
	}

	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := atomic.AddInt64(&counter, 1)
			_ = s.SetItem(fmt.Sprintf("test-key-%d", i%100), largeValue)
		}
	})
}

// Parallel benchmarking for GetItem
func benchmarkGet(b *testing.B, s store.IStore) {
	numKeys := 1000
	fill(b, s, numKeys)

	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := atomic.AddInt64(&counter, 1)
			_, _, _ = s.GetItem(fmt.Sprintf("test-key-%d", i%int64(numKeys)))
		}
	})
}

// Parallel benchmarking for GetItem of missing keys
func benchmarkGetNot(b *testing.B, s store.IStore) {
	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := atomic.AddInt64(&counter, 1)
			_, _, _ = s.GetItem(fmt.Sprintf("missing-key-%d", i))
		}
	})
}

// Parallel benchmarking for RemoveItem
func benchmarkRemove(b *testing.B, s store.IStore) {
	numKeys := 10000
	if b.N < numKeys {
		numKeys = b.N
	}
	fill(b, s, numKeys)

	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := atomic.AddInt64(&counter, 1)
			_ = s.RemoveItem(fmt.Sprintf("test-key-%d", i%int64(numKeys)))
		}
	})
}

// Benchmark for Data on a store with 100 entries
func benchmarkData(b *testing.B, s store.IStore) {
	fill(b, s, 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Data(); err != nil {
			b.Fatalf("Data failed: %v", err)
		}
	}
}

// Benchmark with a realistic mix of operations
// (70% GetItem, 20% SetItem, 10% RemoveItem)
func benchmarkMixedUsage(b *testing.B, s store.IStore) {
	numKeys := 1000
	fill(b, s, numKeys)

	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := atomic.AddInt64(&counter, 1)
			key := fmt.Sprintf("test-key-%d", i%int64(numKeys))
			switch i % 10 {
			case 0:
				_ = s.RemoveItem(key)
			case 1, 2:
				_ = s.SetItem(key, i)
			default:
				_, _, _ = s.GetItem(key)
			}
		}
	})
}
