package canny

import (
	"math"
	"runtime"

	"github.com/cockroachdb/errors"
)

// ErrInvalidParameter marks every error caused by bad detector input:
// a non-positive sigma, thresholds outside 0 < tlow < thigh < 1, or a
// malformed raster. It is reported before any pixel work is done.
var ErrInvalidParameter = errors.New("invalid parameter")

// Params are the three operator-facing controls of the detector.
type Params struct {
	// Sigma is the standard deviation of the Gaussian smoothing kernel.
	Sigma float64 `json:"sigma" toml:"sigma"`

	// TLow is the low hysteresis threshold as a fraction of the largest
	// gradient magnitude in the image.
	TLow float64 `json:"tlow" toml:"tlow"`

	// THigh is the high hysteresis threshold as a fraction of the largest
	// gradient magnitude in the image.
	THigh float64 `json:"thigh" toml:"thigh"`
}

// Validate checks sigma > 0 and 0 < tlow < thigh < 1, all finite.
func (p Params) Validate() error {
	if math.IsNaN(p.Sigma) || math.IsInf(p.Sigma, 0) || p.Sigma <= 0 {
		return errors.WithHint(
			errors.Mark(errors.Newf("sigma must be a positive finite number, got %v", p.Sigma), ErrInvalidParameter),
			"typical values are between 0.6 and 2.0")
	}
	for _, t := range []struct {
		name string
		v    float64
	}{{"tlow", p.TLow}, {"thigh", p.THigh}} {
		if math.IsNaN(t.v) || t.v <= 0 || t.v >= 1 {
			return errors.WithHint(
				errors.Mark(errors.Newf("%s must be in (0, 1), got %v", t.name, t.v), ErrInvalidParameter),
				"thresholds are fractions of the strongest gradient in the image")
		}
	}
	if p.TLow >= p.THigh {
		return errors.WithHint(
			errors.Mark(errors.Newf("tlow (%v) must be less than thigh (%v)", p.TLow, p.THigh), ErrInvalidParameter),
			"try tlow=0.3 thigh=0.7")
	}
	return nil
}

type options struct {
	direction bool
	workers   int
}

// Option configures a Detector.
type Option func(*options)

// WithDirection requests a direction map alongside the edge map.
func WithDirection() Option {
	return func(o *options) { o.direction = true }
}

// WithWorkers bounds the number of goroutines used by the row-parallel
// stages. Values below 1 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return o
}
