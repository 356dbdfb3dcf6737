package canny

import "math"

// boostBlurFactor scales smoothed intensities before rounding to int16 so the
// gradient keeps sub-intensity precision. 255*90 still fits in an int16.
const boostBlurFactor = 90.0

// gaussianKernel returns a normalized 1-D Gaussian of standard deviation sigma
// with 1 + 2*ceil(2.5*sigma) taps, the half-width capped at maxHalf.
func gaussianKernel(sigma float64, maxHalf int) []float64 {
	half := maxHalf
	if h := math.Ceil(2.5 * sigma); h < float64(maxHalf) {
		half = int(h)
	}
	kernel := make([]float64, 1+2*half)

	var sum float64
	for i := range kernel {
		z := float64(i-half) / sigma
		kernel[i] = math.Exp(-0.5 * z * z)
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// clipKernel drops taps farther than span from the center. Such taps never
// reach a sample of a raster whose longer side is span+1, so the smoothed
// output is unchanged.
func clipKernel(kernel []float64, span int) []float64 {
	center := len(kernel) / 2
	if span >= center {
		return kernel
	}
	return kernel[center-span : center+span+1]
}

// smoothRows runs the horizontal pass for rows [r0, r1) of src into tmp.
// Taps that fall outside the row are dropped and the rest renormalized.
func smoothRows(src []uint8, tmp []float64, cols int, kernel []float64, r0, r1 int) {
	center := len(kernel) / 2
	for r := r0; r < r1; r++ {
		row := src[r*cols : (r+1)*cols]
		for c := 0; c < cols; c++ {
			var dot, sum float64
			for k := -center; k <= center; k++ {
				cc := c + k
				if cc < 0 || cc >= cols {
					continue
				}
				// The conversion stops the compiler from fusing into an FMA.
				dot += float64(float64(row[cc]) * kernel[center+k])
				sum += kernel[center+k]
			}
			tmp[r*cols+c] = dot / sum
		}
	}
}

// smoothCols runs the vertical pass for rows [r0, r1) of tmp into out,
// boosting and rounding to int16.
func smoothCols(tmp []float64, out []int16, rows, cols int, kernel []float64, r0, r1 int) {
	center := len(kernel) / 2
	for r := r0; r < r1; r++ {
		for c := 0; c < cols; c++ {
			var dot, sum float64
			for k := -center; k <= center; k++ {
				rr := r + k
				if rr < 0 || rr >= rows {
					continue
				}
				dot += float64(tmp[rr*cols+c] * kernel[center+k])
				sum += kernel[center+k]
			}
			out[r*cols+c] = int16(dot*boostBlurFactor/sum + 0.5)
		}
	}
}
