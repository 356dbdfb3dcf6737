package capture

import "github.com/cockroachdb/errors"

var (
	// ErrSourceUnavailable marks a frame source that could not be opened.
	// It is fatal for a capture run.
	ErrSourceUnavailable = errors.New("frame source unavailable")

	// ErrEmptyFrame marks a read that produced no image data. The loop
	// skips the frame and gives up only after too many in a row.
	ErrEmptyFrame = errors.New("empty frame")

	// ErrDisplayUnavailable marks a display backend that could not be opened.
	ErrDisplayUnavailable = errors.New("display unavailable")
)
