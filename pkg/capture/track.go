// Package capture manages per-speaker recording tracks. Each track owns
// one raw-dump file; tracks are independent and may record concurrently.
// The Registry replaces ad hoc global session maps with an explicit object
// the orchestration layer owns and injects.
package capture

import (
	"log/slog"
	"time"

	"github.com/voxtail/opuscap/pkg/rawdump"
)

// Track is one speaker's capture session: a raw-dump writer plus metadata.
// A track's writer methods follow the single-owner model of rawdump.Writer.
type Track struct {
	ID        string
	Path      string
	StartedAt time.Time

	dump   *rawdump.Writer
	logger *slog.Logger
}

// Enqueue forwards one packet into the track's raw dump.
func (t *Track) Enqueue(payload []byte, timestampMs int64) <-chan error {
	return t.dump.Enqueue(payload, timestampMs)
}

// Flush blocks until everything enqueued so far is on disk.
func (t *Track) Flush() {
	t.dump.Flush()
}

// BytesWritten returns the bytes persisted for this track so far.
func (t *Track) BytesWritten() int64 { return t.dump.BytesWritten() }

// Records returns the number of packets persisted for this track so far.
func (t *Track) Records() uint64 { return t.dump.Records() }

func (t *Track) close() error {
	err := t.dump.Close()
	t.logger.Info("track closed",
		slog.String("track_id", t.ID),
		slog.Int64("bytes", t.dump.BytesWritten()),
		slog.Uint64("records", t.dump.Records()),
		slog.String("error", errString(err)))
	return err
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
