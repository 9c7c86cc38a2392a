package ogg

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Reader walks an Ogg stream page by page, verifying the capture pattern
// and checksum of every page it returns.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r for page-at-a-time reading.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// NextPage reads and verifies the next page. It returns io.EOF at a clean
// stream end, ErrInvalidPage for broken framing or truncation mid-page,
// and ErrBadChecksum when the stored checksum does not match.
func (r *Reader) NextPage() (*Page, error) {
	header := make([]byte, pageHeaderSize)
	if _, err := io.ReadFull(r.r, header); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: truncated page header", ErrInvalidPage)
	}

	if string(header[0:4]) != capturePattern {
		return nil, fmt.Errorf("%w: missing capture pattern", ErrInvalidPage)
	}
	if header[4] != 0 {
		return nil, fmt.Errorf("%w: unsupported stream structure version %d", ErrInvalidPage, header[4])
	}

	page := &Page{
		HeaderType:   header[5],
		GranulePos:   binary.LittleEndian.Uint64(header[6:14]),
		SerialNumber: binary.LittleEndian.Uint32(header[14:18]),
		PageSequence: binary.LittleEndian.Uint32(header[18:22]),
	}
	stored := binary.LittleEndian.Uint32(header[22:26])

	page.Segments = make([]byte, int(header[26]))
	if _, err := io.ReadFull(r.r, page.Segments); err != nil {
		return nil, fmt.Errorf("%w: truncated segment table", ErrInvalidPage)
	}

	payloadLen := 0
	for _, seg := range page.Segments {
		payloadLen += int(seg)
	}
	page.Payload = make([]byte, payloadLen)
	if _, err := io.ReadFull(r.r, page.Payload); err != nil {
		return nil, fmt.Errorf("%w: truncated payload", ErrInvalidPage)
	}

	// Recompute with the checksum field zeroed.
	header[22], header[23], header[24], header[25] = 0, 0, 0, 0
	if checksum(header, page.Segments, page.Payload) != stored {
		return nil, ErrBadChecksum
	}

	return page, nil
}

// HeadInfo is the decoded OpusHead identification header.
type HeadInfo struct {
	Version    byte
	Channels   uint8
	PreSkip    uint16
	SampleRate uint32
	OutputGain int16
}

// ParseOpusHead decodes a 19-byte OpusHead packet.
func ParseOpusHead(packet []byte) (HeadInfo, error) {
	if len(packet) < 19 || string(packet[0:8]) != "OpusHead" {
		return HeadInfo{}, ErrInvalidHead
	}
	return HeadInfo{
		Version:    packet[8],
		Channels:   packet[9],
		PreSkip:    binary.LittleEndian.Uint16(packet[10:12]),
		SampleRate: binary.LittleEndian.Uint32(packet[12:16]),
		OutputGain: int16(binary.LittleEndian.Uint16(packet[16:18])),
	}, nil
}

// StreamInfo summarizes a validated Opus-in-Ogg stream.
type StreamInfo struct {
	Head         HeadInfo
	Serial       uint32
	Pages        int
	Packets      int
	FinalGranule uint64
	SawEOS       bool
}

// Validate reads an entire stream, checking every page checksum, that the
// first page is a beginning-of-stream OpusHead, and that the stream ends
// with an end-of-stream page. It is the read-back check run after a
// recording so a truncated or corrupt file is caught instead of shipped.
func Validate(r io.Reader) (StreamInfo, error) {
	or := NewReader(r)
	var info StreamInfo

	for {
		page, err := or.NextPage()
		if err == io.EOF {
			break
		}
		if err != nil {
			return info, fmt.Errorf("page %d: %w", info.Pages, err)
		}

		if info.Pages == 0 {
			if !page.IsBOS() {
				return info, fmt.Errorf("%w: first page is not beginning-of-stream", ErrInvalidPage)
			}
			packets := page.Packets()
			if len(packets) != 1 {
				return info, fmt.Errorf("%w: first page must carry exactly the OpusHead packet", ErrInvalidPage)
			}
			head, err := ParseOpusHead(packets[0])
			if err != nil {
				return info, err
			}
			info.Head = head
			info.Serial = page.SerialNumber
		} else if info.SawEOS {
			return info, fmt.Errorf("%w: page after end-of-stream", ErrInvalidPage)
		}

		info.Pages++
		info.Packets += len(page.Packets())
		info.FinalGranule = page.GranulePos
		if page.IsEOS() {
			info.SawEOS = true
		}
	}

	if info.Pages == 0 {
		return info, fmt.Errorf("%w: empty stream", ErrInvalidPage)
	}
	if !info.SawEOS {
		return info, fmt.Errorf("%w: stream has no end-of-stream page", ErrInvalidPage)
	}
	return info, nil
}
