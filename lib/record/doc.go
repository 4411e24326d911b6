// Package record implements the addressing scheme and the on-disk encoding
// used by keep stores.
//
// The package focuses on:
//   - A deterministic key hasher that maps any key to a filesystem-safe identifier
//   - A textual record codec for (key, value) pairs with structural validation
//   - Shared value normalization so every store returns values in the same form
//
// Key Components:
//
//   - HashKey: Maps a key to the lowercase hexadecimal SHA-256 digest of its raw
//     bytes (64 characters). The identifier is the only addressing mechanism;
//     there is no reverse index, which is why the original key is stored inside
//     every record as well.
//
//   - Record Codec: Encode serializes a key and a value into the JSON document
//     {"key": <key>, "value": <value>}. Decode parses such a document and checks
//     that both fields are present. The check is a presence check: values such
//     as "", 0, false or null are valid record values. Anything that fails to
//     parse or lacks a field is reported as ErrCorruptRecord.
//
//   - Value Normalization: EncodeValue and DecodeValue convert between Go values
//     and their JSON form. Decoding uses json.Decoder.UseNumber so numbers come
//     back as json.Number without losing precision.
//
// Example:
//
//	id := record.HashKey("session:123") // "9c1e..." (64 hex chars)
//
//	b, err := record.Encode("session:123", map[string]any{"user": "alice"})
//	if err != nil {
//		return err
//	}
//
//	rec, err := record.Decode(b)
//	if errors.Is(err, record.ErrCorruptRecord) {
//		// foreign or damaged content
//	}
//	value, err := rec.Decoded()
package record
