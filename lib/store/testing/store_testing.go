package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/keep/lib/store"
)

// StoreFactory creates a new, empty and initialized store. Resources of the
// store (e.g. a temp dir) should be bound to t.
type StoreFactory func(t testing.TB) store.IStore

// RunStoreTests runs the conformance test suite for a store.IStore implementation.
func RunStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Init", func(t *testing.T) {
			testInit(t, factory(t))
		})

		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory(t))
		})

		t.Run("ValueTypes", func(t *testing.T) {
			testValueTypes(t, factory(t))
		})

		t.Run("FalsyValues", func(t *testing.T) {
			testFalsyValues(t, factory(t))
		})

		t.Run("Remove", func(t *testing.T) {
			testRemove(t, factory(t))
		})

		t.Run("Clear", func(t *testing.T) {
			testClear(t, factory(t))
		})

		t.Run("Aggregates", func(t *testing.T) {
			testAggregates(t, factory(t))
		})

		t.Run("Empty", func(t *testing.T) {
			testEmpty(t, factory(t))
		})

		t.Run("InvalidInput", func(t *testing.T) {
			testInvalidInput(t, factory(t))
		})

		t.Run("Scenario", func(t *testing.T) {
			testScenario(t, factory(t))
		})

		t.Run("ConcurrentWriters", func(t *testing.T) {
			testConcurrentWriters(t, factory(t))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// canonical returns the normalized JSON form of v. Stores return values in
// their decoded JSON form (objects as maps, numbers as json.Number), so
// values are compared after a JSON round trip.
func canonical(t testing.TB, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to encode %v: %v", v, err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		t.Fatalf("Failed to decode %s: %v", b, err)
	}
	if b, err = json.Marshal(decoded); err != nil {
		t.Fatalf("Failed to encode %v: %v", decoded, err)
	}
	return string(b)
}

func mustSet(t testing.TB, s store.IStore, key string, value any) {
	t.Helper()
	if err := s.SetItem(key, value); err != nil {
		t.Fatalf("SetItem(%q) failed: %v", key, err)
	}
}

func expectValue(t testing.TB, s store.IStore, key string, expected any) {
	t.Helper()
	value, loaded, err := s.GetItem(key)
	if err != nil {
		t.Fatalf("GetItem(%q) failed: %v", key, err)
	}
	if !loaded {
		t.Fatalf("Expected key %q to exist", key)
	}
	if got, want := canonical(t, value), canonical(t, expected); got != want {
		t.Errorf("Expected value %s for key %q, got %s", want, key, got)
	}
}

func expectAbsent(t testing.TB, s store.IStore, key string) {
	t.Helper()
	value, loaded, err := s.GetItem(key)
	if err != nil {
		t.Fatalf("GetItem(%q) failed: %v", key, err)
	}
	if loaded {
		t.Errorf("Expected key %q to be absent, got %v", key, value)
	}
}

func expectData(t testing.TB, s store.IStore, expected map[string]any) {
	t.Helper()
	data, err := s.Data()
	if err != nil {
		t.Fatalf("Data failed: %v", err)
	}
	if got, want := canonical(t, data), canonical(t, expected); got != want {
		t.Errorf("Expected data %s, got %s", want, got)
	}
}

func expectLength(t testing.TB, s store.IStore, expected int) {
	t.Helper()
	n, err := s.Length()
	if err != nil {
		t.Fatalf("Length failed: %v", err)
	}
	if n != expected {
		t.Errorf("Expected length %d, got %d", expected, n)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testInit(t *testing.T, s store.IStore) {
	// the factory already initialized the store
	if err := s.Init(); err != nil {
		t.Fatalf("Init on initialized store failed: %v", err)
	}

	mustSet(t, s, "init-key", "init-value")

	if err := s.Init(); err != nil {
		t.Fatalf("Init on populated store failed: %v", err)
	}
	expectValue(t, s, "init-key", "init-value")
}

func testSetGet(t *testing.T, s store.IStore) {
	testKey := "test-key"

	mustSet(t, s, testKey, "test-value1")
	expectValue(t, s, testKey, "test-value1")

	mustSet(t, s, testKey, "test-value2")
	expectValue(t, s, testKey, "test-value2")

	expectAbsent(t, s, "nonexistent-key")

	// overwriting must not create a second entry
	expectLength(t, s, 1)
}

func testValueTypes(t *testing.T, s store.IStore) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"String", "string", "hello world"},
		{"Integer", "integer", 42},
		{"LargeInteger", "large-integer", int64(1) << 60},
		{"Float", "float", 3.25},
		{"Bool", "bool", true},
		{"Array", "array", []any{"a", 1, false, nil}},
		{"Object", "object", map[string]any{"a": 1, "b": []any{"c"}, "d": map[string]any{"e": nil}}},
		{"Struct", "struct", struct {
			Name string `json:"name"`
			Age  int    `json:"age"`
		}{"alice", 31}},
		{"EmptyKey", "", "value of the empty key"},
		{"UnicodeKey", "schlüssel/ключ/鍵 🔑", "unicode"},
		{"PathLikeKey", "../../etc/passwd", "not a path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustSet(t, s, tt.key, tt.value)
			expectValue(t, s, tt.key, tt.value)
		})
	}

	expectLength(t, s, len(tests))
}

func testFalsyValues(t *testing.T, s store.IStore) {
	values := map[string]any{
		"empty-string": "",
		"zero":         0,
		"false":        false,
		"null":         nil,
		"empty-array":  []any{},
		"empty-object": map[string]any{},
	}

	for key, value := range values {
		mustSet(t, s, key, value)
	}

	for key, value := range values {
		expectValue(t, s, key, value)
	}

	expectData(t, s, values)
}

func testRemove(t *testing.T, s store.IStore) {
	mustSet(t, s, "remove-key", "value")
	mustSet(t, s, "keep-key", "value")

	if err := s.RemoveItem("remove-key"); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	expectAbsent(t, s, "remove-key")
	expectValue(t, s, "keep-key", "value")

	// removing a missing key is a no-op
	if err := s.RemoveItem("remove-key"); err != nil {
		t.Errorf("Second RemoveItem failed: %v", err)
	}
	if err := s.RemoveItem("never-set"); err != nil {
		t.Errorf("RemoveItem of missing key failed: %v", err)
	}

	// a removed key can be set again
	mustSet(t, s, "remove-key", "again")
	expectValue(t, s, "remove-key", "again")
}

func testClear(t *testing.T, s store.IStore) {
	numKeys := 100
	for i := 0; i < numKeys; i++ {
		mustSet(t, s, fmt.Sprintf("clear-key-%d", i), i)
	}
	expectLength(t, s, numKeys)

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	expectLength(t, s, 0)
	expectData(t, s, map[string]any{})
	for i := 0; i < numKeys; i += 10 {
		expectAbsent(t, s, fmt.Sprintf("clear-key-%d", i))
	}

	// clearing an empty store succeeds
	if err := s.Clear(); err != nil {
		t.Errorf("Clear on empty store failed: %v", err)
	}

	// the store stays usable
	mustSet(t, s, "after-clear", true)
	expectValue(t, s, "after-clear", true)
}

func testAggregates(t *testing.T, s store.IStore) {
	expected := make(map[string]any)
	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("aggregate-key-%d", i)
		value := map[string]any{"index": i, "name": key}
		expected[key] = value
		mustSet(t, s, key, value)
	}

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	values, err := s.Values()
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	data, err := s.Data()
	if err != nil {
		t.Fatalf("Data failed: %v", err)
	}
	n, err := s.Length()
	if err != nil {
		t.Fatalf("Length failed: %v", err)
	}

	if len(keys) != len(expected) || len(values) != len(expected) || len(data) != len(expected) || n != len(expected) {
		t.Fatalf("Expected %d entries, got keys=%d values=%d data=%d length=%d",
			len(expected), len(keys), len(values), len(data), n)
	}

	// keys are unique and values are in key order
	seen := make(map[string]bool, len(keys))
	for i, key := range keys {
		if seen[key] {
			t.Errorf("Duplicate key %q", key)
		}
		seen[key] = true

		want, ok := expected[key]
		if !ok {
			t.Errorf("Unexpected key %q", key)
			continue
		}
		if got, want := canonical(t, values[i]), canonical(t, want); got != want {
			t.Errorf("Values()[%d] for key %q: expected %s, got %s", i, key, want, got)
		}
	}

	expectData(t, s, expected)
}

func testEmpty(t *testing.T, s store.IStore) {
	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Expected no keys, got %v", keys)
	}

	values, err := s.Values()
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("Expected no values, got %v", values)
	}

	expectData(t, s, map[string]any{})
	expectLength(t, s, 0)
	expectAbsent(t, s, "missing")
}

func testInvalidInput(t *testing.T, s store.IStore) {
	invalidKey := string([]byte{0xff, 0xfe})

	if err := s.SetItem(invalidKey, "value"); !store.IsCode(err, store.RetCInvalidKey) {
		t.Errorf("Expected InvalidKey error for SetItem, got %v", err)
	}
	if _, _, err := s.GetItem(invalidKey); !store.IsCode(err, store.RetCInvalidKey) {
		t.Errorf("Expected InvalidKey error for GetItem, got %v", err)
	}
	if err := s.RemoveItem(invalidKey); !store.IsCode(err, store.RetCInvalidKey) {
		t.Errorf("Expected InvalidKey error for RemoveItem, got %v", err)
	}

	if err := s.SetItem("func", func() {}); !store.IsCode(err, store.RetCInvalidValue) {
		t.Errorf("Expected InvalidValue error, got %v", err)
	}

	// failed writes leave nothing behind
	expectLength(t, s, 0)
}

func testScenario(t *testing.T, s store.IStore) {
	mustSet(t, s, "key1", "value1")
	mustSet(t, s, "key2", "value2")
	expectData(t, s, map[string]any{"key1": "value1", "key2": "value2"})

	if err := s.RemoveItem("key1"); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	expectData(t, s, map[string]any{"key2": "value2"})

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	expectData(t, s, map[string]any{})
}

func testConcurrentWriters(t *testing.T, s store.IStore) {
	numWorkers := 8
	keysPerWorker := 50

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	var errorCount int32

	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()
			for i := 0; i < keysPerWorker; i++ {
				key := fmt.Sprintf("worker-%d-key-%d", workerId, i)
				if err := s.SetItem(key, i); err != nil {
					atomic.AddInt32(&errorCount, 1)
					continue
				}
				if _, loaded, err := s.GetItem(key); err != nil || !loaded {
					atomic.AddInt32(&errorCount, 1)
				}
			}
		}(w)
	}

	wg.Wait()

	if n := atomic.LoadInt32(&errorCount); n > 0 {
		t.Fatalf("Test had %d errors during parallel operations", n)
	}

	expectLength(t, s, numWorkers*keysPerWorker)
	for w := 0; w < numWorkers; w++ {
		expectValue(t, s, fmt.Sprintf("worker-%d-key-%d", w, keysPerWorker-1), keysPerWorker-1)
	}
}
