package ogg

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"
)

// defaultVendor is written into OpusTags when the config leaves it empty.
const defaultVendor = "opuscap"

// WriterConfig configures one logical Opus-in-Ogg stream.
type WriterConfig struct {
	// Channels is 1 for mono or 2 for stereo.
	Channels uint8

	// SampleRate is the original input sample rate in Hz. It is recorded
	// in the OpusHead packet and drives granule accounting.
	SampleRate uint32

	// PreSkip is the number of samples a decoder should discard at the
	// start of playback.
	PreSkip uint16

	// OutputGain is the playback gain in Q7.8 dB.
	OutputGain int16

	// Vendor is the OpusTags vendor string.
	Vendor string

	// Comments are additional OpusTags user comments, one string each.
	Comments []string

	// Logger receives diagnostics; slog.Default() when nil.
	Logger *slog.Logger
}

// Summary reports what a finalized stream contains.
type Summary struct {
	BytesWritten    int64
	PacketsWritten  uint64
	GranulePosition uint64
}

// Writer lifecycle states. Transitions only move forward:
// unopened -> initialized -> streaming -> finalized.
type writerState int

const (
	stateUnopened writerState = iota
	stateInitialized
	stateStreaming
	stateFinalized
)

// Writer packages a stream of Opus packets into an Ogg container.
//
// A Writer owns exactly one logical stream and is not safe for concurrent
// use; one goroutine drives the whole lifecycle. Init must be called
// before the first WritePacket, and Finalize exactly once at the end.
type Writer struct {
	cfg    WriterConfig
	logger *slog.Logger

	path string
	sink io.Writer
	file *os.File

	state          writerState
	serial         uint32
	pageSeq        uint32
	granulePos     uint64
	bytesWritten   int64
	packetsWritten uint64
}

// NewWriter creates a writer that will record to the file at path.
// The file is not created until Init.
func NewWriter(path string, cfg WriterConfig) (*Writer, error) {
	w, err := newWriter(cfg)
	if err != nil {
		return nil, err
	}
	w.path = path
	return w, nil
}

// NewWriterWith creates a writer that streams to an existing sink. The
// sink is flushed but not closed by Finalize.
func NewWriterWith(sink io.Writer, cfg WriterConfig) (*Writer, error) {
	if sink == nil {
		return nil, ErrInvalidConfig
	}
	w, err := newWriter(cfg)
	if err != nil {
		return nil, err
	}
	w.sink = sink
	return w, nil
}

func newWriter(cfg WriterConfig) (*Writer, error) {
	if cfg.Channels == 0 || cfg.Channels > 2 {
		return nil, fmt.Errorf("%w: channels must be 1 or 2, got %d", ErrInvalidConfig, cfg.Channels)
	}
	if cfg.SampleRate == 0 {
		return nil, fmt.Errorf("%w: sample rate must be set", ErrInvalidConfig)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Writer{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Init opens the output sink, picks the stream serial number and writes
// the two mandatory header pages: OpusHead on a beginning-of-stream page
// and OpusTags on the page after it, both at granule position 0.
func (w *Writer) Init() error {
	if w.state != stateUnopened {
		if w.state == stateFinalized {
			return ErrFinalized
		}
		return fmt.Errorf("ogg: writer already initialized")
	}

	if w.sink == nil {
		f, err := os.Create(w.path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		w.file = f
		w.sink = f
	}

	w.serial = rand.New(rand.NewSource(time.Now().UnixNano())).Uint32()

	if err := w.writePage(w.buildOpusHead(), FlagBOS, 0); err != nil {
		return fmt.Errorf("write OpusHead page: %w", err)
	}
	if err := w.writePage(w.buildOpusTags(), 0, 0); err != nil {
		return fmt.Errorf("write OpusTags page: %w", err)
	}

	w.state = stateInitialized
	w.logger.Debug("ogg stream initialized",
		slog.Uint64("serial", uint64(w.serial)),
		slog.Int("channels", int(w.cfg.Channels)),
		slog.Uint64("sample_rate", uint64(w.cfg.SampleRate)))
	return nil
}

// WritePacket appends one Opus packet to the stream as a single data page.
//
// The packet's TOC byte determines how many samples it carries; the
// granule position advances by that amount before the page is stamped, so
// each page records the cumulative sample count through its own packet.
// Empty packets are dropped with a warning rather than corrupting the
// stream.
func (w *Writer) WritePacket(packet []byte) error {
	switch w.state {
	case stateUnopened:
		return ErrNotInitialized
	case stateFinalized:
		return ErrFinalized
	}

	if len(packet) == 0 {
		w.logger.Warn("dropping empty opus packet",
			slog.Uint64("serial", uint64(w.serial)))
		return nil
	}

	toc := ParseTOC(packet[0], w.cfg.SampleRate)
	w.granulePos += uint64(toc.SamplesPerPacket)

	if err := w.writePage(packet, 0, w.granulePos); err != nil {
		return fmt.Errorf("write data page: %w", err)
	}

	w.packetsWritten++
	w.state = stateStreaming
	return nil
}

// Finalize emits the end-of-stream page, closes the output file when the
// writer owns it, and reports the stream totals. The writer is unusable
// afterwards; a second Finalize returns ErrFinalized.
func (w *Writer) Finalize() (Summary, error) {
	switch w.state {
	case stateUnopened:
		return Summary{}, ErrNotInitialized
	case stateFinalized:
		return Summary{}, ErrFinalized
	}

	if err := w.writePage(nil, FlagEOS, w.granulePos); err != nil {
		return Summary{}, fmt.Errorf("write end-of-stream page: %w", err)
	}

	w.state = stateFinalized
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return Summary{}, fmt.Errorf("close output file: %w", err)
		}
		w.file = nil
	}

	summary := Summary{
		BytesWritten:    w.bytesWritten,
		PacketsWritten:  w.packetsWritten,
		GranulePosition: w.granulePos,
	}
	w.logger.Info("ogg stream finalized",
		slog.Uint64("serial", uint64(w.serial)),
		slog.Int64("bytes", summary.BytesWritten),
		slog.Uint64("packets", summary.PacketsWritten),
		slog.Uint64("granule", summary.GranulePosition))
	return summary, nil
}

// Serial returns the stream serial number chosen at Init.
func (w *Writer) Serial() uint32 { return w.serial }

// GranulePos returns the current cumulative sample count.
func (w *Writer) GranulePos() uint64 { return w.granulePos }

// PageCount returns the number of pages emitted so far.
func (w *Writer) PageCount() uint32 { return w.pageSeq }

// writePage serializes one page carrying a single packet and advances the
// page sequence counter. The caller supplies the granule value to stamp.
func (w *Writer) writePage(packet []byte, headerType byte, granule uint64) error {
	page := &Page{
		HeaderType:   headerType,
		GranulePos:   granule,
		SerialNumber: w.serial,
		PageSequence: w.pageSeq,
		Segments:     segmentTable(len(packet)),
		Payload:      packet,
	}

	n, err := w.sink.Write(page.Encode())
	w.bytesWritten += int64(n)
	if err != nil {
		return err
	}

	w.pageSeq++
	return nil
}

// buildOpusHead assembles the 19-byte identification header.
func (w *Writer) buildOpusHead() []byte {
	head := make([]byte, 19)
	copy(head[0:8], "OpusHead")
	head[8] = 1 // version
	head[9] = w.cfg.Channels
	binary.LittleEndian.PutUint16(head[10:12], w.cfg.PreSkip)
	binary.LittleEndian.PutUint32(head[12:16], w.cfg.SampleRate)
	binary.LittleEndian.PutUint16(head[16:18], uint16(w.cfg.OutputGain))
	head[18] = 0 // channel mapping family 0: mono/stereo
	return head
}

// buildOpusTags assembles the variable-length comment header.
func (w *Writer) buildOpusTags() []byte {
	vendor := w.cfg.Vendor
	if vendor == "" {
		vendor = defaultVendor
	}

	size := 8 + 4 + len(vendor) + 4
	for _, c := range w.cfg.Comments {
		size += 4 + len(c)
	}

	tags := make([]byte, 0, size)
	tags = append(tags, "OpusTags"...)
	tags = binary.LittleEndian.AppendUint32(tags, uint32(len(vendor)))
	tags = append(tags, vendor...)
	tags = binary.LittleEndian.AppendUint32(tags, uint32(len(w.cfg.Comments)))
	for _, c := range w.cfg.Comments {
		tags = binary.LittleEndian.AppendUint32(tags, uint32(len(c)))
		tags = append(tags, c...)
	}
	return tags
}
