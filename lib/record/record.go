package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrCorruptRecord is returned by Decode for content that is not a well-formed record.
var ErrCorruptRecord = errors.New("corrupt record")

// Record is the atomic unit of storage: the original key and the JSON encoded value.
type Record struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// wireRecord is used for decoding only. The pointer and raw fields allow
// telling a missing field apart from a present but empty one.
type wireRecord struct {
	Key   *string         `json:"key"`
	Value json.RawMessage `json:"value"`
}

// --------------------------------------------------------------------------
// Codec
// --------------------------------------------------------------------------

// Encode serializes a key and a value into the textual record format.
func Encode(key string, value any) ([]byte, error) {
	raw, err := EncodeValue(value)
	if err != nil {
		return nil, err
	}
	return EncodeRaw(key, raw)
}

// EncodeRaw serializes a key and an already encoded value into the textual record format.
func EncodeRaw(key string, value json.RawMessage) ([]byte, error) {
	if !utf8.ValidString(key) {
		return nil, fmt.Errorf("key is not valid utf-8")
	}
	if len(value) == 0 {
		value = json.RawMessage("null")
	}
	return json.Marshal(Record{Key: key, Value: value})
}

// Decode parses b as a record. Both the key and the value field have to be
// present and the key has to be a string. Errors wrap ErrCorruptRecord.
func Decode(b []byte) (Record, error) {
	var w wireRecord
	if err := json.Unmarshal(b, &w); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if w.Key == nil {
		return Record{}, fmt.Errorf("%w: missing key", ErrCorruptRecord)
	}
	if len(w.Value) == 0 {
		return Record{}, fmt.Errorf("%w: missing value", ErrCorruptRecord)
	}
	return Record{Key: *w.Key, Value: w.Value}, nil
}

// Decoded returns the value of the record decoded into its generic Go form.
func (r Record) Decoded() (any, error) {
	return DecodeValue(r.Value)
}

// --------------------------------------------------------------------------
// Value Normalization
// --------------------------------------------------------------------------

// EncodeValue marshals a value into JSON.
func EncodeValue(value any) (json.RawMessage, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// DecodeValue unmarshals a JSON value into its generic Go form.
// Numbers are returned as json.Number.
func DecodeValue(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after value")
	}
	return value, nil
}
