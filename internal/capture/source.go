package capture

import (
	"context"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/ironsheep/canny-cam/internal/imaging"
)

// Source delivers frames to the capture loop.
//
// Read blocks until a frame is available. It returns an error marked
// ErrEmptyFrame for a read that produced no data, and io.EOF when a finite
// source is exhausted.
type Source interface {
	Read(ctx context.Context) (image.Image, error)
	Close() error
}

// CameraOptions selects and sizes a camera.
type CameraOptions struct {
	Width  int
	Height int
	// Device >= 0 opens that device index; otherwise Pipeline is used.
	Device int
	// Pipeline is a GStreamer pipeline; empty means GStreamerPipeline(Width, Height).
	Pipeline string
}

// PipelineString returns the GStreamer pipeline the camera will be opened with.
func (o CameraOptions) PipelineString() string {
	if o.Pipeline != "" {
		return o.Pipeline
	}
	return GStreamerPipeline(o.Width, o.Height)
}

// GStreamerPipeline builds the libcamera capture pipeline delivering BGR
// frames of the given size to an appsink.
func GStreamerPipeline(width, height int) string {
	return fmt.Sprintf(
		"libcamerasrc ! video/x-raw, width=%d, height=%d, format=(string)BGR ! videoconvert ! appsink",
		width, height)
}

// FileSource replays image files as camera frames.
//
// Files matching a glob pattern are read in lexical order, decoded once
// through an imaging.ImageCache and resized to the configured frame size
// when they differ. With looping enabled the sequence restarts after the last
// file; otherwise Read returns io.EOF.
type FileSource struct {
	paths []string
	cols  int
	rows  int
	loop  bool
	next  int
	cache *imaging.ImageCache
}

// NewFileSource globs pattern and prepares a source producing cols x rows
// frames. No match is reported as ErrSourceUnavailable.
func NewFileSource(pattern string, cols, rows int, loop bool) (*FileSource, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "invalid file pattern %q", pattern), ErrSourceUnavailable)
	}
	if len(paths) == 0 {
		return nil, errors.WithHint(
			errors.Mark(errors.Newf("no files match %q", pattern), ErrSourceUnavailable),
			"camera.files takes a glob such as frames/*.png")
	}
	if cols <= 0 || rows <= 0 {
		return nil, errors.Mark(errors.Newf("invalid frame size %dx%d", cols, rows), ErrSourceUnavailable)
	}
	sort.Strings(paths)
	return &FileSource{
		paths: paths,
		cols:  cols,
		rows:  rows,
		loop:  loop,
		cache: imaging.NewImageCache(),
	}, nil
}

// Len returns the number of files in the sequence.
func (s *FileSource) Len() int {
	return len(s.paths)
}

// Read returns the next file as a frame. A file that cannot be decoded is
// reported as an empty frame and skipped on the next call.
func (s *FileSource) Read(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.paths) {
		if !s.loop {
			return nil, io.EOF
		}
		s.next = 0
	}
	path := s.paths[s.next]
	s.next++

	img, err := s.cache.Load(path)
	if err != nil {
		return nil, errors.Mark(err, ErrEmptyFrame)
	}
	return imaging.Fit(img, s.cols, s.rows), nil
}

// Close releases the decoded images.
func (s *FileSource) Close() error {
	s.cache.Clear()
	return nil
}
