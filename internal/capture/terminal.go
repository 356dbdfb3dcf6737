package capture

import (
	"fmt"
	"image"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/eiannone/keyboard"
	"github.com/gosuri/uilive"

	"github.com/ironsheep/canny-cam/internal/imaging"
)

// TerminalDisplay previews in a terminal: a live status line with the frame
// rate and the last edge map's size, and single-key input read in raw mode.
type TerminalDisplay struct {
	writer  *uilive.Writer
	keys    <-chan keyboard.KeyEvent
	closeFn func() error

	frames int
	live   string
	edges  string
}

// NewTerminalDisplay puts the terminal in raw mode and starts a status line
// on out.
func NewTerminalDisplay(out io.Writer) (*TerminalDisplay, error) {
	keys, err := keyboard.GetKeys(8)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to open keyboard"), ErrDisplayUnavailable)
	}
	return newTerminalDisplay(out, keys, keyboard.Close), nil
}

func newTerminalDisplay(out io.Writer, keys <-chan keyboard.KeyEvent, closeFn func() error) *TerminalDisplay {
	w := uilive.New()
	w.Out = out
	w.Start()
	return &TerminalDisplay{
		writer:  w,
		keys:    keys,
		closeFn: closeFn,
		edges:   "no frame processed yet",
	}
}

// ShowLive updates the status line.
func (d *TerminalDisplay) ShowLive(frame image.Image, fps float64) error {
	d.frames++
	b := frame.Bounds()
	d.live = fmt.Sprintf("[LIVE FEED] %dx%d  FPS: %.2f  (ESC save, Q quit)", b.Dx(), b.Dy(), fps)
	return d.render()
}

// ShowEdges reports the last processed frame on the second status line.
func (d *TerminalDisplay) ShowEdges(edges *imaging.Raster) error {
	d.edges = fmt.Sprintf("[EDGE DETECTION] %dx%d, %d edge pixels",
		edges.Cols, edges.Rows, edges.Count(255))
	return d.render()
}

func (d *TerminalDisplay) render() error {
	if _, err := fmt.Fprintf(d.writer, "%s\n%s\n", d.live, d.edges); err != nil {
		return errors.Wrap(err, "failed to update status line")
	}
	return nil
}

// PollKey waits up to timeout for a key press.
func (d *TerminalDisplay) PollKey(timeout time.Duration) (Key, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev, ok := <-d.keys:
		if !ok {
			return KeyNone, errors.Mark(errors.New("keyboard closed"), ErrDisplayUnavailable)
		}
		if ev.Err != nil {
			return KeyNone, errors.Wrap(ev.Err, "keyboard error")
		}
		return terminalKey(ev), nil
	case <-timer.C:
		return KeyNone, nil
	}
}

// terminalKey maps a raw-mode key event to a key code. Ctrl-C quits since
// raw mode swallows the interrupt signal.
func terminalKey(ev keyboard.KeyEvent) Key {
	switch {
	case ev.Key == keyboard.KeyEsc:
		return KeyEsc
	case ev.Key == keyboard.KeyCtrlC:
		return 'q'
	case ev.Rune != 0:
		return Key(ev.Rune)
	default:
		return Key(ev.Key)
	}
}

// Close stops the status line and restores the terminal.
func (d *TerminalDisplay) Close() error {
	d.writer.Stop()
	if d.closeFn != nil {
		return d.closeFn()
	}
	return nil
}
