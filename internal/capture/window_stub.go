//go:build !gocv

package capture

import (
	"image"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/ironsheep/canny-cam/internal/imaging"
)

// WindowDisplay is unavailable without the gocv build tag.
type WindowDisplay struct{}

// NewWindowDisplay always fails in builds without gocv.
func NewWindowDisplay() (*WindowDisplay, error) {
	return nil, errors.WithHint(
		errors.Mark(errors.New("window display not compiled in"), ErrDisplayUnavailable),
		"rebuild with -tags gocv, or set display.mode to terminal or none")
}

func (d *WindowDisplay) ShowLive(image.Image, float64) error { return ErrDisplayUnavailable }

func (d *WindowDisplay) ShowEdges(*imaging.Raster) error { return ErrDisplayUnavailable }

func (d *WindowDisplay) PollKey(time.Duration) (Key, error) { return KeyNone, ErrDisplayUnavailable }

func (d *WindowDisplay) Close() error { return nil }
