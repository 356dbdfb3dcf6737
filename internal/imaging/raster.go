package imaging

import (
	"image"

	"github.com/cockroachdb/errors"
	"github.com/disintegration/imaging"
)

// MaxDimension bounds Rows and Cols of every raster. It keeps Rows*Cols far
// from overflowing int and rejects absurd sizes read from file headers.
const MaxDimension = 1 << 15

// Raster is a single-channel 8-bit grayscale grid stored row-major.
//
// Sample (r, c) lives at Pix[r*Cols+c]. Every raster produced by this module
// has Rows > 0, Cols > 0 and len(Pix) == Rows*Cols.
type Raster struct {
	// Rows is the raster height in samples.
	Rows int

	// Cols is the raster width in samples.
	Cols int

	// Pix holds Rows*Cols samples, row-major.
	Pix []uint8
}

// NewRaster allocates a zero-filled raster of the given shape.
//
// Returns an error if rows or cols is not in 1..MaxDimension.
func NewRaster(rows, cols int) (*Raster, error) {
	if err := checkShape(rows, cols); err != nil {
		return nil, err
	}
	return &Raster{Rows: rows, Cols: cols, Pix: make([]uint8, rows*cols)}, nil
}

// Validate reports whether the raster satisfies its shape invariant.
func (r *Raster) Validate() error {
	if r == nil {
		return errors.New("raster is nil")
	}
	if err := checkShape(r.Rows, r.Cols); err != nil {
		return err
	}
	if len(r.Pix) != r.Rows*r.Cols {
		return errors.Newf("raster holds %d samples, want %d (%dx%d)", len(r.Pix), r.Rows*r.Cols, r.Rows, r.Cols)
	}
	return nil
}

func checkShape(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return errors.Newf("invalid raster shape %dx%d: rows and cols must be positive", rows, cols)
	}
	if rows > MaxDimension || cols > MaxDimension {
		return errors.Newf("invalid raster shape %dx%d: rows and cols must not exceed %d", rows, cols, MaxDimension)
	}
	return nil
}

// At returns the sample at row r, column c. It panics if out of range.
func (r *Raster) At(row, col int) uint8 {
	return r.Pix[row*r.Cols+col]
}

// Set stores v at row r, column c. It panics if out of range.
func (r *Raster) Set(row, col int, v uint8) {
	r.Pix[row*r.Cols+col] = v
}

// Count returns the number of samples equal to v.
func (r *Raster) Count(v uint8) int {
	n := 0
	for _, p := range r.Pix {
		if p == v {
			n++
		}
	}
	return n
}

// Image returns the raster as an *image.Gray sharing no memory with r.
func (r *Raster) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, r.Cols, r.Rows))
	for row := 0; row < r.Rows; row++ {
		copy(img.Pix[row*img.Stride:row*img.Stride+r.Cols], r.Pix[row*r.Cols:(row+1)*r.Cols])
	}
	return img
}

// FromImage converts any image to an 8-bit grayscale raster.
//
// *image.Gray inputs are copied directly. All other color models go through
// imaging.Grayscale, which applies ITU-R BT.601 luma weights
// (0.299*R + 0.587*G + 0.114*B), matching the usual BGR-to-gray conversion
// of camera frames.
//
// Returns an error if the image has an empty bounds rectangle.
func FromImage(img image.Image) (*Raster, error) {
	bounds := img.Bounds()
	rows, cols := bounds.Dy(), bounds.Dx()
	out, err := NewRaster(rows, cols)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert image to raster")
	}

	if g, ok := img.(*image.Gray); ok {
		for row := 0; row < rows; row++ {
			start := (row+bounds.Min.Y-g.Rect.Min.Y)*g.Stride + (bounds.Min.X - g.Rect.Min.X)
			copy(out.Pix[row*cols:(row+1)*cols], g.Pix[start:start+cols])
		}
		return out, nil
	}

	// Grayscale returns an NRGBA with R == G == B, anchored at (0,0).
	gray := imaging.Grayscale(img)
	for row := 0; row < rows; row++ {
		line := gray.Pix[row*gray.Stride : row*gray.Stride+cols*4]
		for col := 0; col < cols; col++ {
			out.Set(row, col, line[col*4])
		}
	}
	return out, nil
}

// Fit resizes img to exactly cols x rows using Lanczos resampling.
//
// Images that already have the requested size are returned unchanged.
func Fit(img image.Image, cols, rows int) image.Image {
	b := img.Bounds()
	if b.Dx() == cols && b.Dy() == rows {
		return img
	}
	return imaging.Resize(img, cols, rows, imaging.Lanczos)
}
