//go:build !gocv

package capture

import (
	"context"
	"image"

	"github.com/cockroachdb/errors"
)

// CameraSource is unavailable without the gocv build tag.
type CameraSource struct{}

// OpenCamera always fails in builds without gocv.
func OpenCamera(opts CameraOptions) (*CameraSource, error) {
	return nil, errors.WithHint(
		errors.Mark(errors.Newf("camera support not compiled in (pipeline %q)", opts.PipelineString()), ErrSourceUnavailable),
		"rebuild with -tags gocv, or set camera.files to replay image files")
}

// Read always fails.
func (c *CameraSource) Read(context.Context) (image.Image, error) {
	return nil, ErrSourceUnavailable
}

// Close is a no-op.
func (c *CameraSource) Close() error {
	return nil
}
