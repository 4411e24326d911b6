package lstore

import (
	"testing"

	"github.com/ValentinKolb/keep/lib/store"
	storetesting "github.com/ValentinKolb/keep/lib/store/testing"
)

func Test(t *testing.T) {
	storetesting.RunStoreTests(t, "LocalStore", func(t testing.TB) store.IStore {
		return NewLocalStore()
	})
}

func Benchmark(b *testing.B) {
	storetesting.RunStoreBenchmarks(b, "LocalStore", func(t testing.TB) store.IStore {
		return NewLocalStore()
	})
}

func TestValuesAreCopied(t *testing.T) {
	s := NewLocalStore()

	value := map[string]any{"a": "b"}
	if err := s.SetItem("key", value); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}
	value["a"] = "changed"

	got, _, err := s.GetItem("key")
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	got.(map[string]any)["a"] = "changed again"

	again, _, _ := s.GetItem("key")
	if again.(map[string]any)["a"] != "b" {
		t.Errorf("Expected the stored value to be unaffected, got %v", again)
	}
}

func TestKeysAreSorted(t *testing.T) {
	s := NewLocalStore()
	for _, key := range []string{"c", "a", "b"} {
		if err := s.SetItem(key, key); err != nil {
			t.Fatalf("SetItem failed: %v", err)
		}
	}

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Errorf("Expected sorted keys, got %v", keys)
	}
}
