package serializer

import (
	"bytes"
	"encoding/gob"

	"github.com/ValentinKolb/keep/rpc/common"
)

// NewGOBSerializer creates a new serializer using Go's gob format.
// Every message is a self-contained gob stream including the type information.
func NewGOBSerializer() IRPCSerializer {
	return gobSerializerImpl{}
}

type gobSerializerImpl struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (gobSerializerImpl) Name() string {
	return "gob"
}

func (gobSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(msg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	// gob does not transmit zero values, so a reused msg would keep old fields
	*msg = common.Message{}
	return gob.NewDecoder(bytes.NewReader(b)).Decode(msg)
}
