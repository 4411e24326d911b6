package record

import (
	"crypto/sha256"
	"encoding/hex"
)

// IdentifierLength is the length of an identifier returned by HashKey.
const IdentifierLength = sha256.Size * 2

// HashKey returns the identifier of a key: the lowercase hexadecimal SHA-256
// digest of the raw key bytes.
//
// Thread-safety: This function is thread-safe and can be called concurrently.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// IsIdentifier reports whether name has the shape of an identifier returned
// by HashKey. It does not check which key the identifier belongs to.
func IsIdentifier(name string) bool {
	if len(name) != IdentifierLength {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
