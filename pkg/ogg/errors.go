package ogg

import "errors"

var (
	// ErrNotInitialized is returned when a packet is written before Init.
	ErrNotInitialized = errors.New("ogg: writer not initialized")

	// ErrFinalized is returned when the writer is used after Finalize.
	ErrFinalized = errors.New("ogg: writer already finalized")

	// ErrInvalidConfig is returned for an unusable writer configuration.
	ErrInvalidConfig = errors.New("ogg: invalid writer configuration")

	// ErrInvalidPage is returned when page framing cannot be parsed.
	ErrInvalidPage = errors.New("ogg: invalid page")

	// ErrBadChecksum is returned when a page checksum does not match.
	ErrBadChecksum = errors.New("ogg: page checksum mismatch")

	// ErrInvalidHead is returned when an OpusHead packet is malformed.
	ErrInvalidHead = errors.New("ogg: invalid OpusHead packet")
)
