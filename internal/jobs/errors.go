package jobs

import "errors"

var (
	// ErrNotFound is returned when a job id is unknown to the manager.
	ErrNotFound = errors.New("job not found")

	// ErrIDExhausted is returned when the direct-file id range is used
	// up within one process lifetime.
	ErrIDExhausted = errors.New("file job id range exhausted")

	// ErrEmptyURL is returned when a transfer is started without a URL.
	ErrEmptyURL = errors.New("empty download url")

	// ErrNoSegments is returned when an HLS playlist contains no
	// media segments.
	ErrNoSegments = errors.New("playlist has no segments")
)
