package serializer

import (
	"encoding/json"

	"github.com/ValentinKolb/keep/rpc/common"
)

// NewJSONSerializer creates a new serializer using json encoding.
// It is the easiest format to debug, message types are written as names.
func NewJSONSerializer() IRPCSerializer {
	return jsonSerializerImpl{}
}

type jsonSerializerImpl struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (jsonSerializerImpl) Name() string {
	return "json"
}

func (jsonSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	// json.Unmarshal keeps fields that are omitted in b
	*msg = common.Message{}
	return json.Unmarshal(b, msg)
}
