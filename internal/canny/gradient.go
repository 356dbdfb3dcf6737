package canny

import "math"

// Octant is a gradient direction quantized to one of eight compass points,
// counter-clockwise from +x with the image y axis pointing up.
type Octant uint8

const (
	East Octant = iota
	NorthEast
	North
	NorthWest
	West
	SouthWest
	South
	SouthEast
)

var octantNames = [...]string{"E", "NE", "N", "NW", "W", "SW", "S", "SE"}

func (o Octant) String() string {
	if int(o) < len(octantNames) {
		return octantNames[o]
	}
	return "?"
}

// gradientAngle returns the angle of (dx, dy) in [0, 2pi), counter-clockwise
// from +x. dy follows raster rows (down), so it is negated to make y point up.
func gradientAngle(dx, dy int32) float64 {
	theta := math.Atan2(float64(-dy), float64(dx))
	if theta < 0 {
		theta += 2 * math.Pi
	}
	if theta >= 2*math.Pi {
		theta -= 2 * math.Pi
	}
	return theta
}

// octantOf quantizes (dx, dy) to the nearest of the eight compass octants.
// A zero vector maps to East; callers gate on magnitude.
func octantOf(dx, dy int32) Octant {
	if dx == 0 && dy == 0 {
		return East
	}
	theta := gradientAngle(dx, dy)
	return Octant(int(math.Floor((theta+math.Pi/8)/(math.Pi/4))) % 8)
}

// gradientRows computes dx, dy, magnitude and octant for rows [r0, r1).
// Differences are central in the interior and one-sided on the outer ring.
func gradientRows(s []int16, g *gradient, rows, cols, r0, r1 int) {
	for r := r0; r < r1; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c

			var dx, dy int32
			switch {
			case cols == 1:
			case c == 0:
				dx = int32(s[i+1]) - int32(s[i])
			case c == cols-1:
				dx = int32(s[i]) - int32(s[i-1])
			default:
				dx = int32(s[i+1]) - int32(s[i-1])
			}
			switch {
			case rows == 1:
			case r == 0:
				dy = int32(s[i+cols]) - int32(s[i])
			case r == rows-1:
				dy = int32(s[i]) - int32(s[i-cols])
			default:
				dy = int32(s[i+cols]) - int32(s[i-cols])
			}

			g.dx[i] = dx
			g.dy[i] = dy
			sq := int64(dx)*int64(dx) + int64(dy)*int64(dy)
			g.mag[i] = int32(0.5 + math.Sqrt(float64(sq)))
			g.dir[i] = octantOf(dx, dy)
		}
	}
}

// gradient holds the per-sample results of the gradient stage.
type gradient struct {
	dx, dy []int32
	mag    []int32
	dir    []Octant
}

func newGradient(n int) *gradient {
	return &gradient{
		dx:  make([]int32, n),
		dy:  make([]int32, n),
		mag: make([]int32, n),
		dir: make([]Octant, n),
	}
}
