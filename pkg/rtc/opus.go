// Package rtc adapts RTP-delivered Opus audio onto the capture sinks, so a
// pion track handler can terminate directly into an Ogg container or a
// raw-dump file. The transport that delivered the packets is someone
// else's problem; these adapters only consume payloads already received.
package rtc

import (
	"time"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3/pkg/media"

	"github.com/voxtail/opuscap/pkg/ogg"
	"github.com/voxtail/opuscap/pkg/rawdump"
)

// OggRecorder feeds RTP Opus payloads into an Ogg container writer. It
// implements media.Writer so it plugs into pion's track saving helpers.
type OggRecorder struct {
	w *ogg.Writer
}

var _ media.Writer = (*OggRecorder)(nil)

// NewOggRecorder wraps an initialized container writer.
func NewOggRecorder(w *ogg.Writer) *OggRecorder {
	return &OggRecorder{w: w}
}

// WriteRTP writes the packet's Opus payload to the container. Packets
// with empty payloads (padding-only) are skipped.
func (r *OggRecorder) WriteRTP(p *rtp.Packet) error {
	if len(p.Payload) == 0 {
		return nil
	}
	return r.w.WritePacket(p.Payload)
}

// WriteSample writes a media.Sample's data as one Opus packet.
func (r *OggRecorder) WriteSample(s media.Sample) error {
	if len(s.Data) == 0 {
		return nil
	}
	return r.w.WritePacket(s.Data)
}

// Close finalizes the container.
func (r *OggRecorder) Close() error {
	_, err := r.w.Finalize()
	return err
}

// DumpRecorder feeds RTP Opus payloads into a raw-dump writer, stamping
// each record with the wall clock at write time. It implements
// media.Writer.
type DumpRecorder struct {
	w   *rawdump.Writer
	now func() time.Time
}

var _ media.Writer = (*DumpRecorder)(nil)

// NewDumpRecorder wraps a raw-dump writer. The clock defaults to
// time.Now and exists so tests can pin timestamps.
func NewDumpRecorder(w *rawdump.Writer) *DumpRecorder {
	return &DumpRecorder{w: w, now: time.Now}
}

// WriteRTP enqueues the packet's payload and waits for the durable write,
// so RTP read order is exactly dump order.
func (r *DumpRecorder) WriteRTP(p *rtp.Packet) error {
	if len(p.Payload) == 0 {
		return nil
	}
	return <-r.w.Enqueue(p.Payload, r.now().UnixMilli())
}

// Close drains and closes the dump.
func (r *DumpRecorder) Close() error {
	return r.w.Close()
}
