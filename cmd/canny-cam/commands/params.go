package commands

import (
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/ironsheep/canny-cam/internal/canny"
)

// parseParams reads sigma, tlow and thigh from the first three arguments and
// validates them.
func parseParams(args []string) (canny.Params, error) {
	if len(args) < 3 {
		return canny.Params{}, errors.Newf("expected sigma tlow thigh, got %d arguments", len(args))
	}
	var vals [3]float64
	for i, name := range []string{"sigma", "tlow", "thigh"} {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return canny.Params{}, errors.Mark(
				errors.Newf("%s must be a number, got %q", name, args[i]),
				canny.ErrInvalidParameter)
		}
		vals[i] = v
	}
	p := canny.Params{Sigma: vals[0], TLow: vals[1], THigh: vals[2]}
	if err := p.Validate(); err != nil {
		return canny.Params{}, err
	}
	return p, nil
}
