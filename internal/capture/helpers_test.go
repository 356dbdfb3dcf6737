package capture

import (
	"context"
	"image"
	"io"
	"sync"
	"time"

	"github.com/ironsheep/canny-cam/internal/imaging"
)

// fakeClock is a manually advanced clock, safe for use from the async worker.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// scriptedSource returns its reads in order, then repeats the last frame
// forever when repeat is set, or returns io.EOF.
type scriptedSource struct {
	reads  []read
	repeat bool
	next   int
	closed bool
}

type read struct {
	img image.Image
	err error
}

func framesSource(repeat bool, imgs ...image.Image) *scriptedSource {
	s := &scriptedSource{repeat: repeat}
	for _, img := range imgs {
		s.reads = append(s.reads, read{img: img})
	}
	return s
}

func (s *scriptedSource) Read(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.reads) {
		if !s.repeat || len(s.reads) == 0 {
			return nil, io.EOF
		}
		r := s.reads[len(s.reads)-1]
		return r.img, r.err
	}
	r := s.reads[s.next]
	s.next++
	return r.img, r.err
}

func (s *scriptedSource) Close() error {
	s.closed = true
	return nil
}

// scriptedDisplay replays keys and records what was shown. After the script
// runs out it answers 'q'.
type scriptedDisplay struct {
	keys   []Key
	onPoll func(i int)
	polls  int
	fps    []float64
	edges  []*imaging.Raster
}

func (d *scriptedDisplay) ShowLive(_ image.Image, fps float64) error {
	d.fps = append(d.fps, fps)
	return nil
}

func (d *scriptedDisplay) ShowEdges(edges *imaging.Raster) error {
	d.edges = append(d.edges, edges)
	return nil
}

func (d *scriptedDisplay) PollKey(time.Duration) (Key, error) {
	i := d.polls
	d.polls++
	if d.onPoll != nil {
		d.onPoll(i)
	}
	if i < len(d.keys) {
		return d.keys[i], nil
	}
	return 'q', nil
}

func (d *scriptedDisplay) Close() error { return nil }

// stepImage is a gray image, dark left of stepCol and bright from it on.
func stepImage(cols, rows, stepCol int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := stepCol; x < cols; x++ {
			img.Pix[y*img.Stride+x] = 200
		}
	}
	return img
}
