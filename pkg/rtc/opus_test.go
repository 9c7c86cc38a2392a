package rtc

import (
	"bytes"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3/pkg/media"

	"github.com/voxtail/opuscap/pkg/ogg"
	"github.com/voxtail/opuscap/pkg/rawdump"
)

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func sample(data []byte) media.Sample {
	return media.Sample{Data: data, Duration: 20 * time.Millisecond}
}

func packet(payload []byte, seq uint16) *rtp.Packet {
	return &rtp.Packet{
		Header:  rtp.Header{SequenceNumber: seq, Timestamp: uint32(seq) * 960},
		Payload: payload,
	}
}

func TestOggRecorder(t *testing.T) {
	is := is.New(t)

	var buf bytes.Buffer
	w, err := ogg.NewWriterWith(&buf, ogg.WriterConfig{Channels: 2, SampleRate: 48000})
	is.NoErr(err)
	is.NoErr(w.Init())

	rec := NewOggRecorder(w)

	// Three 20ms packets plus one padding-only packet that must be skipped.
	is.NoErr(rec.WriteRTP(packet([]byte{0x01, 0xAA}, 1)))
	is.NoErr(rec.WriteRTP(packet(nil, 2)))
	is.NoErr(rec.WriteRTP(packet([]byte{0x01, 0xBB}, 3)))
	is.NoErr(rec.WriteRTP(packet([]byte{0x01, 0xCC}, 4)))
	is.NoErr(rec.Close())

	info, err := ogg.Validate(&buf)
	is.NoErr(err)
	is.Equal(info.FinalGranule, uint64(2880))
	is.Equal(info.Pages, 6) // head, tags, 3 data, end-of-stream
}

func TestOggRecorderWriteSample(t *testing.T) {
	var buf bytes.Buffer
	w, err := ogg.NewWriterWith(&buf, ogg.WriterConfig{Channels: 1, SampleRate: 48000})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Init(); err != nil {
		t.Fatal(err)
	}

	rec := NewOggRecorder(w)
	if err := rec.WriteSample(sample([]byte{0x01, 0x7E})); err != nil {
		t.Fatal(err)
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}

	info, err := ogg.Validate(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if info.FinalGranule != 960 {
		t.Errorf("final granule = %d, want 960", info.FinalGranule)
	}
}

func TestDumpRecorder(t *testing.T) {
	is := is.New(t)

	sink := nopCloser{&bytes.Buffer{}}
	w := rawdump.NewWriterWith(sink, nil)

	rec := NewDumpRecorder(w)
	fixed := time.UnixMilli(1700000000500)
	rec.now = func() time.Time { return fixed }

	is.NoErr(rec.WriteRTP(packet([]byte{0x01, 0x11}, 1)))
	is.NoErr(rec.WriteRTP(packet(nil, 2))) // padding-only, skipped
	is.NoErr(rec.WriteRTP(packet([]byte{0x01, 0x22}, 3)))
	is.NoErr(rec.Close())

	records, err := rawdump.NewReader(bytes.NewReader(sink.Bytes())).ReadAll()
	is.NoErr(err)
	is.Equal(len(records), 2)
	is.True(bytes.Equal(records[0].Payload, []byte{0x01, 0x11}))
	is.True(bytes.Equal(records[1].Payload, []byte{0x01, 0x22}))
	is.Equal(records[0].Timestamp, fixed.UnixMilli())
}
