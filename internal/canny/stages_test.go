package canny

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaussianKernel(t *testing.T) {
	tests := []struct {
		sigma    float64
		wantSize int
	}{
		{0.01, 3},
		{0.5, 5},
		{1.0, 7},
		{1.4, 9},
		{2.0, 11},
	}

	for _, tt := range tests {
		k := gaussianKernel(tt.sigma, 100)
		require.Len(t, k, tt.wantSize, "sigma=%v", tt.sigma)

		var sum float64
		for _, v := range k {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-12)

		center := len(k) / 2
		for i := 0; i < center; i++ {
			assert.Equal(t, k[i], k[len(k)-1-i], "kernel must be symmetric")
			assert.Less(t, k[i], k[i+1], "kernel must rise toward the center")
		}
	}
}

func TestGaussianKernel_ExtremeSigma(t *testing.T) {
	tests := []struct {
		sigma    float64
		maxHalf  int
		wantSize int
	}{
		{1e-300, 10, 3},
		{1e6, 10, 21},
		{2e18, 10, 21},
		{1e300, 10, 21},
		{math.MaxFloat64, 10, 21},
		{4.0, 0, 1},
	}

	for _, tt := range tests {
		k := gaussianKernel(tt.sigma, tt.maxHalf)
		require.Len(t, k, tt.wantSize, "sigma=%v", tt.sigma)

		var sum float64
		for _, v := range k {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "sigma=%v", tt.sigma)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-12, "sigma=%v", tt.sigma)
	}
}

func TestClipKernel_KeepsSmoothedOutput(t *testing.T) {
	const rows, cols = 7, 12
	src := make([]uint8, rows*cols)
	for i := range src {
		src[i] = uint8(i * 37 % 251)
	}
	full := gaussianKernel(9, 100)
	clipped := clipKernel(full, cols-1)
	require.Len(t, clipped, 2*(cols-1)+1)

	smooth := func(k []float64) []int16 {
		tmp := make([]float64, rows*cols)
		out := make([]int16, rows*cols)
		smoothRows(src, tmp, cols, k, 0, rows)
		smoothCols(tmp, out, rows, cols, k, 0, rows)
		return out
	}
	assert.Equal(t, smooth(full), smooth(clipped))
	assert.Len(t, clipKernel(full, 500), len(full))
}

func TestSmooth_UniformStaysUniform(t *testing.T) {
	const rows, cols = 6, 9
	src := make([]uint8, rows*cols)
	for i := range src {
		src[i] = 200
	}
	k := gaussianKernel(1.5, 100)
	tmp := make([]float64, rows*cols)
	out := make([]int16, rows*cols)
	smoothRows(src, tmp, cols, k, 0, rows)
	smoothCols(tmp, out, rows, cols, k, 0, rows)

	for i, v := range out {
		assert.Equal(t, int16(200*boostBlurFactor), v, "sample %d", i)
	}
}

func TestOctantOf(t *testing.T) {
	tests := []struct {
		dx, dy int32
		want   Octant
	}{
		{1, 0, East},
		{5, -1, East},
		{1, -1, NorthEast},
		{0, -1, North},
		{-1, -1, NorthWest},
		{-1, 0, West},
		{-1, 1, SouthWest},
		{0, 1, South},
		{1, 1, SouthEast},
		{10, 3, East},
		{10, 5, SouthEast},
		{0, 0, East},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, octantOf(tt.dx, tt.dy), "octantOf(%d, %d)", tt.dx, tt.dy)
	}
}

func TestOctant_String(t *testing.T) {
	assert.Equal(t, "E", East.String())
	assert.Equal(t, "SW", SouthWest.String())
	assert.Equal(t, "?", Octant(9).String())
}

func TestDirectionMap(t *testing.T) {
	tests := []struct {
		name   string
		dx, dy int32
		want   uint8
	}{
		{"zero", 0, 0, DirectionNone},
		{"east", 3, 0, 1},
		{"north", 0, -3, 64},
		{"west", -3, 0, 128},
		{"south", 0, 3, 192},
		{"just below east", 1000, 1, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DirectionMap(tt.dx, tt.dy))
		})
	}
}

func TestDirectionAngle(t *testing.T) {
	_, ok := DirectionAngle(DirectionNone)
	assert.False(t, ok)

	theta, ok := DirectionAngle(DirectionMap(0, -7))
	require.True(t, ok)
	assert.InDelta(t, math.Pi/2, theta, 2*math.Pi/255)
}

func TestSuppress_KeepsRidgeAndTies(t *testing.T) {
	// A vertical ridge of magnitude 10 at column 2 with a tie at column 3,
	// all pointing east.
	const rows, cols = 5, 6
	g := newGradient(rows * cols)
	profile := []int32{1, 4, 10, 10, 3, 1}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			g.mag[i] = profile[c]
			g.dx[i] = profile[c]
			g.dir[i] = East
		}
	}
	nms := make([]int32, rows*cols)
	suppressRows(g, nms, rows, cols, 0, rows)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := nms[r*cols+c]
			interior := r > 0 && r < rows-1 && c > 0 && c < cols-1
			if interior && (c == 2 || c == 3) {
				assert.Equal(t, int32(10), v, "(%d,%d)", r, c)
			} else {
				assert.Equal(t, int32(0), v, "(%d,%d)", r, c)
			}
		}
	}
}

func TestHysteresis_PromotesConnectedChain(t *testing.T) {
	// One seed at the left end of a long chain of weak survivors, plus an
	// isolated weak survivor and a chain that wraps diagonally.
	const rows, cols = 7, 12
	nms := make([]int32, rows*cols)
	set := func(r, c int, v int32) { nms[r*cols+c] = v }

	set(2, 1, 100)
	for c := 2; c <= 9; c++ {
		set(2, c, 40)
	}
	set(3, 10, 40) // diagonal step
	set(4, 10, 40)
	set(5, 5, 40) // isolated
	set(5, 8, 10) // below low

	out := make([]uint8, rows*cols)
	res := hysteresis(nms, out, rows, cols, 100, 0.3, 0.7)

	assert.InDelta(t, 70.0, res.high, 1e-9)
	assert.InDelta(t, 30.0, res.low, 1e-9)
	assert.Equal(t, 1, res.seeds)
	assert.Equal(t, 11, res.candidates)
	assert.Equal(t, 11, res.edges)

	for c := 1; c <= 9; c++ {
		assert.Equal(t, Edge, out[2*cols+c], "chain column %d", c)
	}
	assert.Equal(t, Edge, out[3*cols+10])
	assert.Equal(t, Edge, out[4*cols+10])
	assert.Equal(t, NoEdge, out[5*cols+5], "isolated candidate must not be promoted")
	assert.Equal(t, NoEdge, out[5*cols+8])
}

func TestHysteresis_ZeroMaximum(t *testing.T) {
	nms := make([]int32, 9)
	out := []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9}
	res := hysteresis(nms, out, 3, 3, 0, 0.3, 0.7)

	assert.Equal(t, 0, res.edges)
	for _, v := range out {
		assert.Equal(t, NoEdge, v)
	}
}
