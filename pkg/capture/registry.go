package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/voxtail/opuscap/pkg/rawdump"
)

var (
	// ErrTrackExists is returned when opening a track ID that is already
	// recording.
	ErrTrackExists = errors.New("capture: track already open")

	// ErrTrackNotFound is returned for operations on unknown track IDs.
	ErrTrackNotFound = errors.New("capture: track not found")
)

// Registry tracks the open recording sessions. It is owned by the
// orchestration layer and injected wherever tracks are opened or closed;
// the writer components themselves stay scoped to a single track.
type Registry struct {
	dir    string
	logger *slog.Logger

	mu     sync.Mutex
	tracks map[string]*Track
}

// NewRegistry creates a registry that places dump files under dir.
func NewRegistry(dir string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		dir:    dir,
		logger: logger,
		tracks: make(map[string]*Track),
	}
}

// Open starts a new track, creating <dir>/<trackID>.raw.
func (r *Registry) Open(trackID string) (*Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tracks[trackID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrTrackExists, trackID)
	}

	path := filepath.Join(r.dir, trackID+".raw")
	dump, err := rawdump.NewWriter(path, r.logger)
	if err != nil {
		return nil, fmt.Errorf("open track %s: %w", trackID, err)
	}

	track := &Track{
		ID:        trackID,
		Path:      path,
		StartedAt: time.Now(),
		dump:      dump,
		logger:    r.logger,
	}
	r.tracks[trackID] = track

	r.logger.Info("track opened",
		slog.String("track_id", trackID),
		slog.String("path", path))
	return track, nil
}

// Get returns the open track for trackID, if any.
func (r *Registry) Get(trackID string) (*Track, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tracks[trackID]
	return t, ok
}

// Close drains and closes one track, removing it from the registry.
func (r *Registry) Close(trackID string) error {
	r.mu.Lock()
	track, ok := r.tracks[trackID]
	delete(r.tracks, trackID)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, trackID)
	}
	return track.close()
}

// CloseAll closes every open track and returns the first error seen.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	tracks := make([]*Track, 0, len(r.tracks))
	for _, t := range r.tracks {
		tracks = append(tracks, t)
	}
	r.tracks = make(map[string]*Track)
	r.mu.Unlock()

	var first error
	for _, t := range tracks {
		if err := t.close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Len returns the number of open tracks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tracks)
}
