package capture

import (
	"image"
	"time"

	"github.com/ironsheep/canny-cam/internal/imaging"
)

// Display shows the preview and reports operator keys.
//
// All methods are called from the loop goroutine only.
type Display interface {
	// ShowLive renders a captured frame with the current frame rate.
	ShowLive(frame image.Image, fps float64) error
	// ShowEdges renders the most recent edge map.
	ShowEdges(edges *imaging.Raster) error
	// PollKey waits up to timeout for a key and returns KeyNone if none came.
	PollKey(timeout time.Duration) (Key, error)
	Close() error
}

// HeadlessDisplay shows nothing and asks for every frame to be processed.
// Combined with a finite file source it turns the loop into a batch run.
type HeadlessDisplay struct{}

// NewHeadlessDisplay returns a display that renders nothing.
func NewHeadlessDisplay() *HeadlessDisplay {
	return &HeadlessDisplay{}
}

func (HeadlessDisplay) ShowLive(image.Image, float64) error { return nil }

func (HeadlessDisplay) ShowEdges(*imaging.Raster) error { return nil }

// PollKey reports ESC immediately.
func (HeadlessDisplay) PollKey(time.Duration) (Key, error) { return KeyEsc, nil }

func (HeadlessDisplay) Close() error { return nil }
