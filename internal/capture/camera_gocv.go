//go:build gocv

package capture

import (
	"context"
	"image"

	"github.com/cockroachdb/errors"
	"gocv.io/x/gocv"
)

// CameraSource reads BGR frames from an OpenCV video capture.
type CameraSource struct {
	webcam *gocv.VideoCapture
	frame  gocv.Mat
}

// OpenCamera opens a device index or a GStreamer pipeline. Failure is
// reported as ErrSourceUnavailable.
func OpenCamera(opts CameraOptions) (*CameraSource, error) {
	var (
		webcam *gocv.VideoCapture
		err    error
	)
	if opts.Device >= 0 {
		webcam, err = gocv.OpenVideoCapture(opts.Device)
		if err == nil {
			webcam.Set(gocv.VideoCaptureFrameWidth, float64(opts.Width))
			webcam.Set(gocv.VideoCaptureFrameHeight, float64(opts.Height))
		}
	} else {
		webcam, err = gocv.OpenVideoCaptureWithAPI(opts.PipelineString(), gocv.VideoCaptureGstreamer)
	}
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to open camera"), ErrSourceUnavailable)
	}
	if !webcam.IsOpened() {
		webcam.Close()
		return nil, errors.WithHint(
			errors.Mark(errors.New("camera did not open"), ErrSourceUnavailable),
			"check that the camera is connected and the pipeline is valid")
	}
	return &CameraSource{webcam: webcam, frame: gocv.NewMat()}, nil
}

// Read grabs the next frame.
func (c *CameraSource) Read(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ok := c.webcam.Read(&c.frame); !ok || c.frame.Empty() {
		return nil, errors.Mark(errors.New("blank frame grabbed"), ErrEmptyFrame)
	}
	img, err := c.frame.ToImage()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to convert frame"), ErrEmptyFrame)
	}
	return img, nil
}

// Close releases the capture device.
func (c *CameraSource) Close() error {
	c.frame.Close()
	return c.webcam.Close()
}
