package serializer

import (
	"reflect"
	"testing"

	"github.com/ValentinKolb/keep/rpc/common"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// Basic message with just a type
		{MsgType: common.MsgTSuccess},

		// Set request
		{
			MsgType: common.MsgTSet,
			Key:     "test-key",
			Value:   []byte(`{"a":[1,2,3]}`),
		},

		// Get response
		{
			MsgType: common.MsgTGet,
			Value:   []byte(`"test-value"`),
			Ok:      true,
		},

		// Length response
		{
			MsgType: common.MsgTLength,
			Count:   1 << 40,
		},

		// Error response
		{
			MsgType: common.MsgTSet,
			Code:    3,
			Err:     "could not write file (path /data/x): disk full",
		},

		// Message with all fields filled
		{
			MsgType: common.MsgTGet,
			Key:     "schlüssel",
			Value:   []byte(`null`),
			Ok:      true,
			Count:   7,
			Code:    1,
			Err:     "test error message",
		},
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range messages {
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				var result common.Message
				if err := serializer.Deserialize(data, &result); err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				if !reflect.DeepEqual(msg, result) {
					t.Errorf("Message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, msg, result)
				}
			}
		})
	}
}

// TestMessageTypes tests each message type with each serializer
func TestMessageTypes(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for msgType := common.MsgTSuccess; msgType <= common.MsgTLength; msgType++ {
				data, err := serializer.Serialize(common.Message{MsgType: msgType})
				if err != nil {
					t.Errorf("Failed to serialize message type %s: %v", msgType, err)
					continue
				}

				var result common.Message
				if err := serializer.Deserialize(data, &result); err != nil {
					t.Errorf("Failed to deserialize message type %s: %v", msgType, err)
					continue
				}

				if result.MsgType != msgType {
					t.Errorf("Message type doesn't match after round trip: Expected %s, got %s", msgType, result.MsgType)
				}
			}
		})
	}
}

// TestDeserializeResetsMessage tests that fields of a reused message are cleared
func TestDeserializeResetsMessage(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			data, err := serializer.Serialize(common.Message{MsgType: common.MsgTRemove, Key: "k"})
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}

			msg := common.Message{MsgType: common.MsgTGet, Value: []byte("old"), Ok: true, Count: 3, Code: 2, Err: "old"}
			if err := serializer.Deserialize(data, &msg); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}

			expected := common.Message{MsgType: common.MsgTRemove, Key: "k"}
			if !reflect.DeepEqual(msg, expected) {
				t.Errorf("Expected %+v, got %+v", expected, msg)
			}
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "gob", "binary"} {
		s, err := ByName(name)
		if err != nil {
			t.Fatalf("ByName(%q) failed: %v", name, err)
		}
		if s.Name() != name {
			t.Errorf("Expected serializer %s, got %s", name, s.Name())
		}
	}

	if _, err := ByName("protobuf"); err == nil {
		t.Error("Expected error for unknown serializer")
	}
}

// TestBinaryEmptyValue tests that an empty but non-nil value survives
func TestBinaryEmptyValue(t *testing.T) {
	serializer := NewBinarySerializer()

	data, err := serializer.Serialize(common.Message{MsgType: common.MsgTSet, Value: []byte{}})
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}

	var result common.Message
	if err := serializer.Deserialize(data, &result); err != nil {
		t.Fatalf("Failed to deserialize: %v", err)
	}
	if result.Value == nil || len(result.Value) != 0 {
		t.Errorf("Expected empty non-nil value, got %v", result.Value)
	}
}

// TestInvalidBinaryData tests how the binary serializer handles corrupt or invalid data
func TestInvalidBinaryData(t *testing.T) {
	serializer := NewBinarySerializer()

	testCases := []struct {
		name        string
		data        []byte
		expectError bool
	}{
		{"Empty data", []byte{}, true},
		{"Too short header", []byte{1}, true},
		{"Valid header only", []byte{1, 0}, false},
		{"Invalid length for key", []byte{4, 1, 0, 0, 0, 5, 'a', 'b', 'c'}, true},
		{"Invalid length for value", []byte{4, 2, 0, 0, 0, 10}, true},
		{"Missing ok byte", []byte{5, 4}, true},
		{"Short count", []byte{11, 8, 0, 0, 1}, true},
		{"Short code", []byte{4, 16, 0}, true},
		{"Invalid length for error", []byte{4, 32, 0, 0, 0, 3, 'e'}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var msg common.Message
			err := serializer.Deserialize(tc.data, &msg)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tc.expectError && err != nil {
				t.Errorf("Did not expect error but got: %v", err)
			}
		})
	}
}
