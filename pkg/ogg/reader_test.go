package ogg

import (
	"bytes"
	"errors"
	"testing"

	"github.com/matryer/is"
)

func writeTestStream(t *testing.T, packets [][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriterWith(&buf, WriterConfig{Channels: 2, SampleRate: 48000})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Init(); err != nil {
		t.Fatal(err)
	}
	for _, p := range packets {
		if err := w.WritePacket(p); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := w.Finalize(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestValidateStream(t *testing.T) {
	is := is.New(t)

	packets := [][]byte{
		{0x01, 0x10},
		bytes.Repeat([]byte{0x02}, 255), // forces the [255, 0] lacing
		bytes.Repeat([]byte{0x03}, 510),
	}
	stream := writeTestStream(t, packets)

	info, err := Validate(bytes.NewReader(stream))
	is.NoErr(err)
	is.Equal(info.Pages, 6)   // head, tags, 3 data, end-of-stream
	is.Equal(info.Packets, 6) // every page carries one packet
	is.Equal(info.Head.Channels, uint8(2))
	is.Equal(info.Head.SampleRate, uint32(48000))
	is.True(info.SawEOS)
}

func TestValidateRoundTripPackets(t *testing.T) {
	packets := [][]byte{
		{0x01, 0xAA},
		bytes.Repeat([]byte{0x5C}, 1000),
	}
	stream := writeTestStream(t, packets)

	r := NewReader(bytes.NewReader(stream))
	var got [][]byte
	for i := 0; ; i++ {
		page, err := r.NextPage()
		if err != nil {
			break
		}
		if i >= 2 && !page.IsEOS() {
			got = append(got, page.Packets()...)
		}
	}

	if len(got) != len(packets) {
		t.Fatalf("read %d packets, want %d", len(got), len(packets))
	}
	for i := range packets {
		if !bytes.Equal(got[i], packets[i]) {
			t.Errorf("packet %d differs", i)
		}
	}
}

func TestReaderDetectsCorruption(t *testing.T) {
	stream := writeTestStream(t, [][]byte{{0x01, 0x99}})

	// Flip a payload byte on the first data page; its checksum no longer
	// matches.
	corrupted := append([]byte{}, stream...)
	corrupted[len(corrupted)-40] ^= 0xFF

	_, err := Validate(bytes.NewReader(corrupted))
	if !errors.Is(err, ErrBadChecksum) {
		t.Errorf("Validate on corrupted stream = %v, want ErrBadChecksum", err)
	}
}

func TestValidateTruncatedStream(t *testing.T) {
	stream := writeTestStream(t, [][]byte{{0x01, 0x99}})

	// Drop the end-of-stream page plus a few bytes.
	truncated := stream[:len(stream)-30]

	if _, err := Validate(bytes.NewReader(truncated)); err == nil {
		t.Error("Validate accepted a truncated stream")
	}
}

func TestValidateEmptyStream(t *testing.T) {
	if _, err := Validate(bytes.NewReader(nil)); err == nil {
		t.Error("Validate accepted an empty stream")
	}
}

func TestReaderRejectsBadMagic(t *testing.T) {
	junk := bytes.Repeat([]byte{0x42}, 64)
	_, err := NewReader(bytes.NewReader(junk)).NextPage()
	if !errors.Is(err, ErrInvalidPage) {
		t.Errorf("NextPage on junk = %v, want ErrInvalidPage", err)
	}
}

func TestParseOpusHeadRejectsShortPacket(t *testing.T) {
	if _, err := ParseOpusHead([]byte("OpusHead")); !errors.Is(err, ErrInvalidHead) {
		t.Errorf("short OpusHead = %v, want ErrInvalidHead", err)
	}
}
