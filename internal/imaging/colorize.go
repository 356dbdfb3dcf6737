package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/cockroachdb/errors"
	"github.com/lucasb-eyer/go-colorful"
)

// ColorizeDirection renders a direction map as a color image.
//
// The input uses the direction-map encoding: 0 means no gradient, and values
// 1..255 cover the angle range [0, 2pi) counter-clockwise from +x. Zero samples
// become black; every other sample gets a fully saturated HSV hue equal to its
// angle (0 = red pointing right, 120 = green, 240 = blue).
func ColorizeDirection(dir *Raster) (*image.NRGBA, error) {
	if err := dir.Validate(); err != nil {
		return nil, errors.Wrap(err, "cannot colorize direction map")
	}

	// 255 distinct hues are enough; precompute them once.
	var palette [256]color.NRGBA
	palette[0] = color.NRGBA{A: 255}
	for v := 1; v < 256; v++ {
		hue := float64(v-1) * 360.0 / 255.0
		r, g, b := colorful.Hsv(hue, 1, 1).Clamped().RGB255()
		palette[v] = color.NRGBA{R: r, G: g, B: b, A: 255}
	}

	img := image.NewNRGBA(image.Rect(0, 0, dir.Cols, dir.Rows))
	for row := 0; row < dir.Rows; row++ {
		line := img.Pix[row*img.Stride:]
		for col := 0; col < dir.Cols; col++ {
			c := palette[dir.At(row, col)]
			line[col*4+0] = c.R
			line[col*4+1] = c.G
			line[col*4+2] = c.B
			line[col*4+3] = c.A
		}
	}
	return img, nil
}

// SavePNG writes img to path as PNG. Failures are marked with ErrWriteFailure.
func SavePNG(path string, img image.Image) error {
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to write %s", path), ErrWriteFailure)
	}
	return nil
}
