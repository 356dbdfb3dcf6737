package canny

import "math"

// DirectionNone is the direction-map value of samples with zero gradient.
const DirectionNone uint8 = 0

// DirectionMap encodes a gradient vector as one byte:
//
//   - 0 when dx == dy == 0
//   - otherwise 1 + floor(theta * 255 / 2pi), where theta in [0, 2pi) is the
//     angle counter-clockwise from +x with the image y axis pointing up
//
// So 1 is east, about 64 north, about 128 west and about 192 south.
func DirectionMap(dx, dy int32) uint8 {
	if dx == 0 && dy == 0 {
		return DirectionNone
	}
	v := 1 + int(gradientAngle(dx, dy)*255/(2*math.Pi))
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// DirectionAngle inverts DirectionMap to the lower bound of the encoded angle
// bin, in radians. ok is false for DirectionNone.
func DirectionAngle(v uint8) (theta float64, ok bool) {
	if v == DirectionNone {
		return 0, false
	}
	return float64(v-1) * 2 * math.Pi / 255, true
}

func directionRows(g *gradient, out []uint8, cols, r0, r1 int) {
	for i := r0 * cols; i < r1*cols; i++ {
		out[i] = DirectionMap(g.dx[i], g.dy[i])
	}
}
