package ogg

import "testing"

func TestParseTOC(t *testing.T) {
	tests := []struct {
		name       string
		toc        byte
		sampleRate uint32
		want       TOCInfo
	}{
		{
			name:       "20ms mono single frame",
			toc:        0x01,
			sampleRate: 48000,
			want:       TOCInfo{Config: 1, Stereo: false, FrameCount: 1, FrameDurationMs: 20, SamplesPerFrame: 960, SamplesPerPacket: 960},
		},
		{
			name:       "20ms stereo single frame",
			toc:        0x05,
			sampleRate: 48000,
			want:       TOCInfo{Config: 1, Stereo: true, FrameCount: 1, FrameDurationMs: 20, SamplesPerFrame: 960, SamplesPerPacket: 960},
		},
		{
			name:       "10ms frame",
			toc:        0x00,
			sampleRate: 48000,
			want:       TOCInfo{Config: 0, FrameCount: 1, FrameDurationMs: 10, SamplesPerFrame: 480, SamplesPerPacket: 480},
		},
		{
			name:       "40ms frame",
			toc:        0x02,
			sampleRate: 48000,
			want:       TOCInfo{Config: 2, FrameCount: 1, FrameDurationMs: 40, SamplesPerFrame: 1920, SamplesPerPacket: 1920},
		},
		{
			name:       "60ms frame",
			toc:        0x03,
			sampleRate: 48000,
			want:       TOCInfo{Config: 3, FrameCount: 1, FrameDurationMs: 60, SamplesPerFrame: 2880, SamplesPerPacket: 2880},
		},
		{
			name:       "frame code 1 gives two frames",
			toc:        0x11,
			sampleRate: 48000,
			want:       TOCInfo{Config: 1, FrameCount: 2, FrameDurationMs: 20, SamplesPerFrame: 960, SamplesPerPacket: 1920},
		},
		{
			name:       "frame code 2 gives two frames",
			toc:        0x21,
			sampleRate: 48000,
			want:       TOCInfo{Config: 1, FrameCount: 2, FrameDurationMs: 20, SamplesPerFrame: 960, SamplesPerPacket: 1920},
		},
		{
			name:       "frame code 3 treated as single frame",
			toc:        0x31,
			sampleRate: 48000,
			want:       TOCInfo{Config: 1, FrameCount: 1, FrameDurationMs: 20, SamplesPerFrame: 960, SamplesPerPacket: 960},
		},
		{
			name:       "frame code 5 gives two frames",
			toc:        0x51,
			sampleRate: 48000,
			want:       TOCInfo{Config: 1, FrameCount: 2, FrameDurationMs: 20, SamplesPerFrame: 960, SamplesPerPacket: 1920},
		},
		{
			name:       "frame code 15 gives twelve frames",
			toc:        0xF1,
			sampleRate: 48000,
			want:       TOCInfo{Config: 1, FrameCount: 12, FrameDurationMs: 20, SamplesPerFrame: 960, SamplesPerPacket: 11520},
		},
		{
			name:       "sample rate scales frame samples",
			toc:        0x02,
			sampleRate: 16000,
			want:       TOCInfo{Config: 2, FrameCount: 1, FrameDurationMs: 40, SamplesPerFrame: 640, SamplesPerPacket: 640},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTOC(tt.toc, tt.sampleRate)
			if got != tt.want {
				t.Errorf("ParseTOC(%#x, %d) = %+v, want %+v", tt.toc, tt.sampleRate, got, tt.want)
			}
		})
	}
}
