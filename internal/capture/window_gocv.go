//go:build gocv

package capture

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/cockroachdb/errors"
	"gocv.io/x/gocv"

	"github.com/ironsheep/canny-cam/internal/imaging"
)

const (
	liveWindowTitle  = "[LIVE FEED] Press ESC to process and save frame"
	edgesWindowTitle = "[EDGE DETECTION] Processed Frame"
)

// WindowDisplay shows the live feed and the last edge map in two OpenCV
// windows and reads keys through WaitKey.
type WindowDisplay struct {
	live  *gocv.Window
	edges *gocv.Window
}

// NewWindowDisplay opens the live feed window. The edge window opens on the
// first processed frame.
func NewWindowDisplay() (*WindowDisplay, error) {
	w := gocv.NewWindow(liveWindowTitle)
	if w == nil {
		return nil, errors.Mark(errors.New("failed to open preview window"), ErrDisplayUnavailable)
	}
	return &WindowDisplay{live: w}, nil
}

// ShowLive draws the FPS overlay on a copy of frame and shows it.
func (d *WindowDisplay) ShowLive(frame image.Image, fps float64) error {
	img, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return errors.Wrap(err, "failed to convert frame for display")
	}
	defer img.Close()

	gocv.PutText(&img, fmt.Sprintf("FPS: %.2f", fps), image.Pt(10, 30),
		gocv.FontHersheySimplex, 1.0, color.RGBA{0, 255, 0, 0}, 2)
	d.live.IMShow(img)
	return nil
}

// ShowEdges shows the edge map in the second window.
func (d *WindowDisplay) ShowEdges(edges *imaging.Raster) error {
	img, err := gocv.NewMatFromBytes(edges.Rows, edges.Cols, gocv.MatTypeCV8UC1, edges.Pix)
	if err != nil {
		return errors.Wrap(err, "failed to convert edge map for display")
	}
	defer img.Close()

	if d.edges == nil {
		d.edges = gocv.NewWindow(edgesWindowTitle)
	}
	d.edges.IMShow(img)
	return nil
}

// PollKey pumps window events for up to timeout and returns the key, if any.
func (d *WindowDisplay) PollKey(timeout time.Duration) (Key, error) {
	ms := int(timeout / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	k := d.live.WaitKey(ms)
	if k < 0 {
		return KeyNone, nil
	}
	return Key(k & 0xff), nil
}

// Close destroys both windows.
func (d *WindowDisplay) Close() error {
	if d.edges != nil {
		d.edges.Close()
	}
	return d.live.Close()
}
