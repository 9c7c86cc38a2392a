package rawdump

import (
	"encoding/binary"
	"errors"
)

const (
	// MaxPacketSize is the largest payload the u16 length prefix can carry.
	MaxPacketSize = 65535

	// lengthSize is the u16 length prefix.
	lengthSize = 2

	// timestampSize is the u32 low + u32 high millisecond timestamp pair.
	timestampSize = 8

	// MinFileSize is the record overhead: length prefix plus timestamp
	// pair. A file shorter than this cannot hold even one record and is
	// a truncated capture.
	MinFileSize = lengthSize + timestampSize
)

var (
	// ErrEmptyPacket rejects a zero-length payload.
	ErrEmptyPacket = errors.New("rawdump: empty packet")

	// ErrPacketTooLarge rejects a payload longer than MaxPacketSize.
	ErrPacketTooLarge = errors.New("rawdump: packet exceeds 65535 bytes")

	// ErrWriterClosed is returned for enqueues after Close.
	ErrWriterClosed = errors.New("rawdump: writer closed")

	// ErrTruncated marks a dump file that ends mid-record.
	ErrTruncated = errors.New("rawdump: truncated record")
)

// Record is one captured packet: the raw Opus payload and its arrival
// time in milliseconds since the Unix epoch.
type Record struct {
	Payload   []byte
	Timestamp int64
}

// encodeRecord assembles one record as a single contiguous buffer:
// u16 length, payload, then the timestamp split into little-endian u32
// low and high halves. Handing the sink one buffer per record is what
// keeps records atomic even when the sink blocks mid-write.
func encodeRecord(payload []byte, timestampMs int64) []byte {
	buf := make([]byte, lengthSize+len(payload)+timestampSize)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(len(payload)))
	copy(buf[2:], payload)

	off := lengthSize + len(payload)
	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(uint64(timestampMs)&0xFFFFFFFF))
	binary.LittleEndian.PutUint32(buf[off+4:off+8], uint32(uint64(timestampMs)>>32))
	return buf
}

// decodeTimestamp reassembles the split millisecond timestamp.
func decodeTimestamp(low, high uint32) int64 {
	return int64(uint64(low) | uint64(high)<<32)
}
