package record

import (
	"strings"
	"testing"
)

func TestHashKey(t *testing.T) {
	testCases := []struct {
		key  string
		want string
	}{
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}

	for _, tc := range testCases {
		if got := HashKey(tc.key); got != tc.want {
			t.Errorf("HashKey(%q) = %s, expected %s", tc.key, got, tc.want)
		}
	}
}

func TestHashKeyIsDeterministic(t *testing.T) {
	keys := []string{"key1", "key2", "päth/with/ünïcode", strings.Repeat("x", 4096)}
	for _, key := range keys {
		first := HashKey(key)
		if second := HashKey(key); first != second {
			t.Errorf("HashKey(%q) is not deterministic: %s != %s", key, first, second)
		}
		if len(first) != IdentifierLength {
			t.Errorf("Expected identifier length %d, got %d", IdentifierLength, len(first))
		}
		if !IsIdentifier(first) {
			t.Errorf("Expected %s to be an identifier", first)
		}
	}

	if HashKey("key1") == HashKey("key2") {
		t.Errorf("Expected different keys to have different identifiers")
	}
}

func TestIsIdentifier(t *testing.T) {
	testCases := []struct {
		name string
		want bool
	}{
		{HashKey("a"), true},
		{strings.ToUpper(HashKey("a")), false},
		{HashKey("a")[:63], false},
		{HashKey("a") + "0", false},
		{".tmp-123456", false},
		{"README.md", false},
		{strings.Repeat("g", IdentifierLength), false},
	}

	for _, tc := range testCases {
		if got := IsIdentifier(tc.name); got != tc.want {
			t.Errorf("IsIdentifier(%q) = %v, expected %v", tc.name, got, tc.want)
		}
	}
}
