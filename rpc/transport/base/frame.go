package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"net"
)

// headerSize is the size of the fixed part of a frame
const headerSize = 14

// writeFrame writes a frame to w with the format:
// - 8 bytes: requestID (uint64, big endian)
// - 2 bytes: namespace length (uint16, big endian)
// - 4 bytes: data length (uint32, big endian)
// - M bytes: namespace
// - N bytes: data payload
func writeFrame(w io.Writer, requestID uint64, namespace string, data []byte) error {
	if len(namespace) > math.MaxUint16 {
		return fmt.Errorf("namespace too long (%d bytes)", len(namespace))
	}
	if uint64(len(data)) > math.MaxUint32 {
		return fmt.Errorf("payload too large (%d bytes)", len(data))
	}

	header := make([]byte, headerSize, headerSize+len(namespace))
	binary.BigEndian.PutUint64(header[:8], requestID)
	binary.BigEndian.PutUint16(header[8:10], uint16(len(namespace)))
	binary.BigEndian.PutUint32(header[10:14], uint32(len(data)))
	header = append(header, namespace...)

	b := net.Buffers{header, data}
	_, err := b.WriteTo(w)
	return err
}

// readFrame reads a frame from r. The payload is read into buf if it is large
// enough, otherwise a new slice is allocated.
func readFrame(r io.Reader, buf []byte) (uint64, string, []byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, "", nil, err
	}

	requestID := binary.BigEndian.Uint64(header[:8])
	nsLength := binary.BigEndian.Uint16(header[8:10])
	contentLength := binary.BigEndian.Uint32(header[10:14])

	namespace := make([]byte, nsLength)
	if _, err := io.ReadFull(r, namespace); err != nil {
		return 0, "", nil, err
	}

	if contentLength == 0 {
		return requestID, string(namespace), []byte{}, nil
	}

	if uint64(len(buf)) < uint64(contentLength) {
		buf = make([]byte, contentLength)
	}
	if _, err := io.ReadFull(r, buf[:contentLength]); err != nil {
		return 0, "", nil, err
	}

	return requestID, string(namespace), buf[:contentLength], nil
}
