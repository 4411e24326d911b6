package common

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/keep/lib/store"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Key   string `json:"key,omitempty"`   // Used for: Set, Get, Remove requests
	Value []byte `json:"value,omitempty"` // JSON encoded. Used for: Set (request), Get, Data, Keys, Values (response)

	// Response only fields
	Ok    bool   `json:"ok,omitempty"`    // Used for: Get responses
	Count uint64 `json:"count,omitempty"` // Used for: Length responses
	Code  uint64 `json:"code,omitempty"`  // The store.RetCode of Err
	Err   string `json:"err,omitempty"`   // Empty if no error, otherwise contains the error message
}

// SetError stores err in the Code and Err fields of the message.
func (m *Message) SetError(err error) {
	if err == nil {
		return
	}
	m.Code = uint64(store.CodeOf(err))
	if e, ok := err.(*store.Error); ok {
		m.Err = e.Detail()
		return
	}
	m.Err = err.Error()
}

// ToError rebuilds the error stored in the message, nil if there is none.
// The error is a *store.Error with the original return code.
func (m *Message) ToError() error {
	if m.Err == "" && m.Code == 0 {
		return nil
	}
	code := store.RetCode(m.Code)
	if code == store.RetCSuccess {
		code = store.RetCInternalError
	}
	return store.NewError(code, m.Err)
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewInitRequest creates a new Init request
func NewInitRequest() *Message {
	return &Message{MsgType: MsgTInit}
}

// NewSetRequest creates a new Set request, value must be JSON encoded
func NewSetRequest(key string, value []byte) *Message {
	return &Message{
		MsgType: MsgTSet,
		Key:     key,
		Value:   value,
	}
}

// NewGetRequest creates a new Get request
func NewGetRequest(key string) *Message {
	return &Message{
		MsgType: MsgTGet,
		Key:     key,
	}
}

// NewRemoveRequest creates a new Remove request
func NewRemoveRequest(key string) *Message {
	return &Message{
		MsgType: MsgTRemove,
		Key:     key,
	}
}

// NewClearRequest creates a new Clear request
func NewClearRequest() *Message {
	return &Message{MsgType: MsgTClear}
}

// NewDataRequest creates a new Data request
func NewDataRequest() *Message {
	return &Message{MsgType: MsgTData}
}

// NewKeysRequest creates a new Keys request
func NewKeysRequest() *Message {
	return &Message{MsgType: MsgTKeys}
}

// NewValuesRequest creates a new Values request
func NewValuesRequest() *Message {
	return &Message{MsgType: MsgTValues}
}

// NewLengthRequest creates a new Length request
func NewLengthRequest() *Message {
	return &Message{MsgType: MsgTLength}
}

// NewResponse creates a response without payload (Init, Set, Remove, Clear)
func NewResponse(msgType MessageType, err error) *Message {
	msg := &Message{MsgType: msgType}
	msg.SetError(err)
	return msg
}

// NewGetResponse creates a new Get response, value must be JSON encoded
func NewGetResponse(value []byte, ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTGet,
		Ok:      ok,
		Value:   value,
	}
	msg.SetError(err)
	return msg
}

// NewPayloadResponse creates a response for Data, Keys or Values. The payload
// is the JSON encoded result.
func NewPayloadResponse(msgType MessageType, payload []byte, err error) *Message {
	msg := &Message{
		MsgType: msgType,
		Value:   payload,
	}
	msg.SetError(err)
	return msg
}

// NewLengthResponse creates a new Length response
func NewLengthResponse(n int, err error) *Message {
	msg := &Message{
		MsgType: MsgTLength,
		Count:   uint64(n),
	}
	msg.SetError(err)
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Code:    uint64(store.RetCInternalError),
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

var msgTypeNames = map[MessageType]string{
	MsgTSuccess: "success",
	MsgTError:   "error",
	MsgTInit:    "init",
	MsgTSet:     "set",
	MsgTGet:     "get",
	MsgTRemove:  "remove",
	MsgTClear:   "clear",
	MsgTData:    "data",
	MsgTKeys:    "keys",
	MsgTValues:  "values",
	MsgTLength:  "length",
}

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	if name, ok := msgTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	for msgType, name := range msgTypeNames {
		if name == s {
			*t = msgType
			return nil
		}
	}
	return fmt.Errorf("unknown message type: %s", s)
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// IStore operations

	MsgTInit   // Initialize the store
	MsgTSet    // Set a key-value pair
	MsgTGet    // Get a value by key
	MsgTRemove // Remove a key-value pair
	MsgTClear  // Remove all key-value pairs
	MsgTData   // Get all key-value pairs
	MsgTKeys   // Get all keys
	MsgTValues // Get all values
	MsgTLength // Get the number of keys
)
