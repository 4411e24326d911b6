package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/keep/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format:
//
//	[type:1][flags:1][key:4+n][value:4+n][ok:1][count:8][code:8][err:4+n]
//
// Only fields whose flag is set are written. Integers are big endian.
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasKey   byte = 1 << 0
	hasValue byte = 1 << 1
	hasOk    byte = 1 << 2
	hasCount byte = 1 << 3
	hasCode  byte = 1 << 4
	hasErr   byte = 1 << 5
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Name() string {
	return "binary"
}

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	result := make([]byte, 2, b.sizeBytes(msg))
	result[0] = byte(msg.MsgType)

	var flags byte
	if msg.Key != "" {
		flags |= hasKey
		result = appendBytes(result, []byte(msg.Key))
	}
	if msg.Value != nil {
		flags |= hasValue
		result = appendBytes(result, msg.Value)
	}
	if msg.Ok {
		flags |= hasOk
		result = append(result, 1)
	}
	if msg.Count > 0 {
		flags |= hasCount
		result = binary.BigEndian.AppendUint64(result, msg.Count)
	}
	if msg.Code > 0 {
		flags |= hasCode
		result = binary.BigEndian.AppendUint64(result, msg.Code)
	}
	if msg.Err != "" {
		flags |= hasErr
		result = appendBytes(result, []byte(msg.Err))
	}

	// Set flags byte after knowing which fields are present
	result[1] = flags
	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	r := reader{data: data, pos: 2}
	flags := data[1]
	*msg = common.Message{MsgType: common.MessageType(data[0])}

	if flags&hasKey != 0 {
		key, err := r.bytes("key")
		if err != nil {
			return err
		}
		msg.Key = string(key)
	}
	if flags&hasValue != 0 {
		value, err := r.bytes("value")
		if err != nil {
			return err
		}
		// copy, data may be reused by the caller
		msg.Value = append(make([]byte, 0, len(value)), value...)
	}
	if flags&hasOk != 0 {
		if r.pos+1 > len(data) {
			return fmt.Errorf("data too short for Ok flag")
		}
		msg.Ok = data[r.pos] != 0
		r.pos++
	}
	if flags&hasCount != 0 {
		count, err := r.uint64("count")
		if err != nil {
			return err
		}
		msg.Count = count
	}
	if flags&hasCode != 0 {
		code, err := r.uint64("code")
		if err != nil {
			return err
		}
		msg.Code = code
	}
	if flags&hasErr != 0 {
		errMsg, err := r.bytes("error")
		if err != nil {
			return err
		}
		msg.Err = string(errMsg)
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 1 byte for flags
	size := 2

	if msg.Key != "" {
		size += 4 + len(msg.Key)
	}
	if msg.Value != nil {
		size += 4 + len(msg.Value)
	}
	if msg.Ok {
		size += 1
	}
	if msg.Count > 0 {
		size += 8
	}
	if msg.Code > 0 {
		size += 8
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	return size
}

// appendBytes appends a length prefixed byte slice
func appendBytes(dst, b []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(b)))
	return append(dst, b...)
}

// reader reads fields from a serialized message
type reader struct {
	data []byte
	pos  int
}

// bytes reads a length prefixed byte slice, the result aliases the data
func (r *reader) bytes(field string) ([]byte, error) {
	if r.pos+4 > len(r.data) {
		return nil, fmt.Errorf("data too short for %s length", field)
	}
	n := int(binary.BigEndian.Uint32(r.data[r.pos : r.pos+4]))
	r.pos += 4

	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("data too short for %s data", field)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) uint64(field string) (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, fmt.Errorf("data too short for %s", field)
	}
	v := binary.BigEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return v, nil
}
