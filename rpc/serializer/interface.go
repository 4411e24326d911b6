package serializer

import (
	"fmt"

	"github.com/ValentinKolb/keep/rpc/common"
)

// IRPCSerializer converts messages to bytes and back. Client and server have
// to use the same implementation.
type IRPCSerializer interface {
	// Name returns the name the serializer is selected by (see ByName)
	Name() string
	// Serialize encodes a Message
	Serialize(msg common.Message) ([]byte, error)
	// Deserialize decodes b into msg. All fields of msg are overwritten,
	// fields missing in b are reset to their zero value.
	Deserialize(b []byte, msg *common.Message) error
}

// ByName returns the serializer with the given name (json, gob or binary)
func ByName(name string) (IRPCSerializer, error) {
	for _, s := range []IRPCSerializer{NewBinarySerializer(), NewJSONSerializer(), NewGOBSerializer()} {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("invalid serializer %s (expected one of: json, gob, binary)", name)
}
