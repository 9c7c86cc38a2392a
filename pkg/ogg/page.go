package ogg

import (
	"encoding/binary"
)

// Page header type flags.
const (
	// FlagContinuation marks a page whose first packet continues from the
	// previous page.
	FlagContinuation = 0x01

	// FlagBOS marks the first page of a logical bitstream.
	FlagBOS = 0x02

	// FlagEOS marks the last page of a logical bitstream.
	FlagEOS = 0x04
)

const (
	// pageHeaderSize is the fixed page header length before the segment table.
	pageHeaderSize = 27

	// capturePattern identifies the start of every Ogg page.
	capturePattern = "OggS"

	// maxSegmentSize is the largest lacing value; longer packets span
	// multiple segments.
	maxSegmentSize = 255
)

// Page is one Ogg page: a 27-byte header, a segment (lacing) table and the
// packet payload. Pages are ephemeral; they exist only long enough to be
// serialized to the output stream.
type Page struct {
	HeaderType   byte
	GranulePos   uint64
	SerialNumber uint32
	PageSequence uint32
	Segments     []byte
	Payload      []byte
}

// segmentTable builds the lacing table for a single packet of the given
// length. Each segment is at most 255 bytes; a packet whose length is an
// exact multiple of 255 gets a terminating zero-length segment, without
// which a decoder cannot find the packet boundary. A zero-length packet
// produces the single-entry table used for the end-of-stream page.
func segmentTable(packetLen int) []byte {
	if packetLen == 0 {
		return []byte{0}
	}

	full := packetLen / maxSegmentSize
	rem := packetLen % maxSegmentSize

	table := make([]byte, full+1)
	for i := 0; i < full; i++ {
		table[i] = maxSegmentSize
	}
	table[full] = byte(rem)
	return table
}

// Encode serializes the page: header, segment table, payload, with the
// checksum computed over all three (checksum field zeroed) and patched in
// at header offset 22.
func (p *Page) Encode() []byte {
	headerLen := pageHeaderSize + len(p.Segments)
	buf := make([]byte, headerLen+len(p.Payload))

	copy(buf[0:4], capturePattern)
	buf[4] = 0 // stream structure version
	buf[5] = p.HeaderType
	binary.LittleEndian.PutUint64(buf[6:14], p.GranulePos)
	binary.LittleEndian.PutUint32(buf[14:18], p.SerialNumber)
	binary.LittleEndian.PutUint32(buf[18:22], p.PageSequence)
	buf[26] = byte(len(p.Segments))

	copy(buf[pageHeaderSize:], p.Segments)
	copy(buf[headerLen:], p.Payload)

	binary.LittleEndian.PutUint32(buf[22:26], checksum(buf))
	return buf
}

// IsBOS reports whether the beginning-of-stream flag is set.
func (p *Page) IsBOS() bool { return p.HeaderType&FlagBOS != 0 }

// IsEOS reports whether the end-of-stream flag is set.
func (p *Page) IsEOS() bool { return p.HeaderType&FlagEOS != 0 }

// Packets splits the payload back into packets using the segment table.
// A lacing value of 255 continues the current packet; any smaller value
// terminates it.
func (p *Page) Packets() [][]byte {
	var packets [][]byte
	offset, current := 0, 0
	for _, seg := range p.Segments {
		current += int(seg)
		if seg < maxSegmentSize {
			packets = append(packets, p.Payload[offset:offset+current])
			offset += current
			current = 0
		}
	}
	return packets
}
