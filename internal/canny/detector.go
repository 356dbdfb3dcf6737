package canny

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/canny-cam/internal/imaging"
)

// Stats describes the thresholds and counts of one detection.
type Stats struct {
	// MaxMagnitude is the largest gradient magnitude in the image, in
	// boosted units (intensity * 90).
	MaxMagnitude int32 `json:"max_magnitude"`

	// High and Low are the absolute hysteresis thresholds derived from
	// THigh and TLow.
	High float64 `json:"high"`
	Low  float64 `json:"low"`

	// Seeds counts survivors at or above High.
	Seeds int `json:"seeds"`

	// Candidates counts survivors in [Low, High) before linking.
	Candidates int `json:"candidates"`

	// EdgeCount is the number of 255 samples in the edge map.
	EdgeCount int `json:"edge_count"`
}

// Result is the output of one detection.
type Result struct {
	// Edges has the input's shape and holds only 0 and 255.
	Edges *imaging.Raster

	// Direction has the input's shape when WithDirection was given, nil otherwise.
	// See DirectionMap for the per-sample encoding.
	Direction *imaging.Raster

	Stats Stats
}

// Detector runs Canny edge detection with fixed, validated parameters.
type Detector struct {
	params Params
	opts   options
	kernel []float64
}

// NewDetector validates p and prepares the smoothing kernel.
//
// Returns an error marked ErrInvalidParameter if p is invalid.
func NewDetector(p Params, opts ...Option) (*Detector, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Detector{
		params: p,
		opts:   buildOptions(opts),
		kernel: gaussianKernel(p.Sigma, imaging.MaxDimension-1),
	}, nil
}

// Params returns the detector's parameters.
func (d *Detector) Params() Params {
	return d.params
}

// WantsDirection reports whether the detector produces direction maps.
func (d *Detector) WantsDirection() bool {
	return d.opts.direction
}

// Detect runs the detector once with the given parameters. It is shorthand
// for NewDetector followed by Detector.Detect.
func Detect(src *imaging.Raster, p Params, opts ...Option) (*Result, error) {
	d, err := NewDetector(p, opts...)
	if err != nil {
		return nil, err
	}
	return d.Detect(src)
}

// Detect computes the edge map of src, and the direction map if the
// detector was built WithDirection.
//
// src is never modified. An error is returned only when src is malformed,
// marked with ErrInvalidParameter; a valid raster always yields a complete
// result, all zero when the image has no gradient.
func (d *Detector) Detect(src *imaging.Raster) (*Result, error) {
	if err := src.Validate(); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "invalid input raster"), ErrInvalidParameter)
	}
	rows, cols := src.Rows, src.Cols
	n := rows * cols

	kernel := clipKernel(d.kernel, max(rows, cols)-1)
	tmp := make([]float64, n)
	smoothed := make([]int16, n)
	d.forRows(rows, func(r0, r1 int) { smoothRows(src.Pix, tmp, cols, kernel, r0, r1) })
	d.forRows(rows, func(r0, r1 int) { smoothCols(tmp, smoothed, rows, cols, kernel, r0, r1) })

	g := newGradient(n)
	d.forRows(rows, func(r0, r1 int) { gradientRows(smoothed, g, rows, cols, r0, r1) })

	nms := make([]int32, n)
	d.forRows(rows, func(r0, r1 int) { suppressRows(g, nms, rows, cols, r0, r1) })

	var maxMag int32
	for _, m := range g.mag {
		if m > maxMag {
			maxMag = m
		}
	}

	edges := &imaging.Raster{Rows: rows, Cols: cols, Pix: make([]uint8, n)}
	h := hysteresis(nms, edges.Pix, rows, cols, maxMag, d.params.TLow, d.params.THigh)

	res := &Result{
		Edges: edges,
		Stats: Stats{
			MaxMagnitude: maxMag,
			High:         h.high,
			Low:          h.low,
			Seeds:        h.seeds,
			Candidates:   h.candidates,
			EdgeCount:    h.edges,
		},
	}

	if d.opts.direction {
		dir := &imaging.Raster{Rows: rows, Cols: cols, Pix: make([]uint8, n)}
		d.forRows(rows, func(r0, r1 int) { directionRows(g, dir.Pix, cols, r0, r1) })
		res.Direction = dir
	}
	return res, nil
}

// forRows splits [0, rows) into contiguous bands and runs fn on each, using
// at most the configured number of workers. It returns when all bands are done.
func (d *Detector) forRows(rows int, fn func(r0, r1 int)) {
	workers := d.opts.workers
	if workers > rows {
		workers = rows
	}
	if workers <= 1 {
		fn(0, rows)
		return
	}

	band := (rows + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for r0 := 0; r0 < rows; r0 += band {
		r0, r1 := r0, min(r0+band, rows)
		g.Go(func() error {
			fn(r0, r1)
			return nil
		})
	}
	_ = g.Wait()
}
