package rawdump

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// queueDepth bounds the number of assembled records waiting for the drain
// goroutine. Enqueue blocks once the queue is full, which is how sink
// backpressure reaches the producer.
const queueDepth = 64

type pendingWrite struct {
	buf    []byte
	result chan error
}

// Writer is the serialized capture sink for one track.
//
// Records are assembled on the caller's goroutine and drained strictly in
// FIFO order by a single worker, so no two records ever interleave in the
// file. Each Enqueue returns a result channel that resolves once that
// record is durably written (or rejected).
//
// A Writer has one logical owner: Enqueue, Flush and Close are meant to be
// called from the goroutine that owns the track, matching the one-writer-
// per-track model. Results may be awaited from anywhere.
type Writer struct {
	sink   io.WriteCloser
	logger *slog.Logger

	queue   chan pendingWrite
	pending sync.WaitGroup
	done    chan struct{}
	closed  bool

	mu      sync.Mutex
	failure error

	bytesWritten atomic.Int64
	records      atomic.Uint64
}

// NewWriter creates the dump file at path and starts the drain worker.
func NewWriter(path string, logger *slog.Logger) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create dump file: %w", err)
	}
	return NewWriterWith(f, logger), nil
}

// NewWriterWith starts a writer draining into an existing sink. The sink
// is closed by Close.
func NewWriterWith(sink io.WriteCloser, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Writer{
		sink:   sink,
		logger: logger,
		queue:  make(chan pendingWrite, queueDepth),
		done:   make(chan struct{}),
	}
	go w.drain()
	return w
}

// Enqueue validates and queues one packet for writing. The returned
// channel receives exactly one value: nil once the record is written, or
// the rejection/write error.
//
// Invalid input (empty or oversized payloads) rejects only that call; the
// queue keeps running. A sink write failure rejects the failed record and
// every record after it, and the track should be treated as stopped.
func (w *Writer) Enqueue(payload []byte, timestampMs int64) <-chan error {
	result := make(chan error, 1)

	if w.closed {
		result <- ErrWriterClosed
		return result
	}
	if len(payload) == 0 {
		w.logger.Warn("rejecting empty packet")
		result <- ErrEmptyPacket
		return result
	}
	if len(payload) > MaxPacketSize {
		w.logger.Warn("rejecting oversized packet", slog.Int("len", len(payload)))
		result <- ErrPacketTooLarge
		return result
	}
	if err := w.err(); err != nil {
		result <- err
		return result
	}

	w.pending.Add(1)
	w.queue <- pendingWrite{buf: encodeRecord(payload, timestampMs), result: result}
	return result
}

// Flush blocks until every record enqueued so far has been written or
// rejected.
func (w *Writer) Flush() {
	w.pending.Wait()
}

// Close stops accepting new records, drains the queue and closes the
// underlying sink. It returns the first write failure if one occurred.
func (w *Writer) Close() error {
	if w.closed {
		return ErrWriterClosed
	}
	w.closed = true

	close(w.queue)
	<-w.done

	cerr := w.sink.Close()
	if err := w.err(); err != nil {
		return err
	}
	if cerr != nil {
		return fmt.Errorf("close dump file: %w", cerr)
	}
	return nil
}

// BytesWritten returns the number of bytes durably handed to the sink.
func (w *Writer) BytesWritten() int64 { return w.bytesWritten.Load() }

// Records returns the number of complete records written.
func (w *Writer) Records() uint64 { return w.records.Load() }

// drain writes queued records one at a time, in order. After a sink
// failure it stops writing and rejects everything still queued, so byte
// offsets in the file never desynchronize from what callers were told.
func (w *Writer) drain() {
	defer close(w.done)

	for pw := range w.queue {
		if err := w.err(); err != nil {
			pw.result <- err
			w.pending.Done()
			continue
		}

		n, err := w.sink.Write(pw.buf)
		if err == nil && n < len(pw.buf) {
			err = io.ErrShortWrite
		}
		if err != nil {
			w.setErr(err)
			pw.result <- err
		} else {
			w.bytesWritten.Add(int64(n))
			w.records.Add(1)
			pw.result <- nil
		}
		w.pending.Done()
	}
}

func (w *Writer) err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failure
}

func (w *Writer) setErr(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failure == nil {
		w.failure = err
		w.logger.Error("dump write failed, stopping track",
			slog.String("error", err.Error()))
	}
}
