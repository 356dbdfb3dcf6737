package capture

import (
	"github.com/cockroachdb/errors"

	"github.com/ironsheep/canny-cam/internal/canny"
	"github.com/ironsheep/canny-cam/internal/imaging"
)

// DirectionOutput says whether a direction map is wanted and where it goes.
// The zero value is NoDirection.
type DirectionOutput struct {
	path string
}

// NoDirection skips the direction map.
func NoDirection() DirectionOutput {
	return DirectionOutput{}
}

// DirectionTo requests a direction map written to path.
func DirectionTo(path string) DirectionOutput {
	return DirectionOutput{path: path}
}

// Path returns the destination and whether a direction map is wanted.
func (d DirectionOutput) Path() (string, bool) {
	return d.path, d.path != ""
}

// Processor runs edge detection on grayscale frames and writes the optional
// direction map. It is safe for concurrent use.
type Processor struct {
	edgesOnly     *canny.Detector
	withDirection *canny.Detector
	format        string
}

// Direction map formats understood by NewProcessor.
const (
	FormatPGM = "pgm"
	FormatPNG = "png"
)

// NewProcessor validates p and prepares detectors. format selects how
// direction maps are written: "pgm" stores the raw direction codes, "png" a
// colorized rendering. workers bounds detector parallelism (0 = GOMAXPROCS).
func NewProcessor(p canny.Params, format string, workers int) (*Processor, error) {
	if format != FormatPGM && format != FormatPNG {
		return nil, errors.Newf("unknown direction format %q", format)
	}
	edgesOnly, err := canny.NewDetector(p, canny.WithWorkers(workers))
	if err != nil {
		return nil, err
	}
	withDirection, err := canny.NewDetector(p, canny.WithWorkers(workers), canny.WithDirection())
	if err != nil {
		return nil, err
	}
	return &Processor{edgesOnly: edgesOnly, withDirection: withDirection, format: format}, nil
}

// Params returns the detector parameters.
func (p *Processor) Params() canny.Params {
	return p.edgesOnly.Params()
}

// DirectionExt returns the file extension used for direction maps.
func (p *Processor) DirectionExt() string {
	return p.format
}

// Process computes the edge map of gray and, when dir asks for it, writes
// the direction map. Writing failures are marked imaging.ErrWriteFailure;
// the result is returned alongside so the caller may still show it.
func (p *Processor) Process(gray *imaging.Raster, dir DirectionOutput) (*canny.Result, error) {
	path, want := dir.Path()
	d := p.edgesOnly
	if want {
		d = p.withDirection
	}

	res, err := d.Detect(gray)
	if err != nil {
		return nil, err
	}
	if !want {
		return res, nil
	}

	switch p.format {
	case FormatPNG:
		img, err := imaging.ColorizeDirection(res.Direction)
		if err != nil {
			return res, errors.Wrap(err, "failed to render direction map")
		}
		err = imaging.SavePNG(path, img)
		return res, err
	default:
		return res, imaging.WritePGM(path, res.Direction)
	}
}
