package canny

// neighborOffsets gives, per octant, the (row, col) step to one of the two
// neighbors along the gradient; the other neighbor is the opposite step.
// Rows grow downward, so "north" is row-1.
var neighborOffsets = [8][2]int{
	East:      {0, 1},
	NorthEast: {-1, 1},
	North:     {-1, 0},
	NorthWest: {-1, -1},
	West:      {0, -1},
	SouthWest: {1, -1},
	South:     {1, 0},
	SouthEast: {1, 1},
}

// suppressRows keeps, for rows [r0, r1), the magnitude of every interior
// sample that is >= both of its neighbors along the gradient octant, and
// zeroes everything else. The outer ring is always zero.
func suppressRows(g *gradient, nms []int32, rows, cols, r0, r1 int) {
	for r := r0; r < r1; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if r == 0 || c == 0 || r == rows-1 || c == cols-1 {
				nms[i] = 0
				continue
			}
			m := g.mag[i]
			if m == 0 {
				nms[i] = 0
				continue
			}
			off := neighborOffsets[g.dir[i]]
			n1 := g.mag[(r+off[0])*cols+c+off[1]]
			n2 := g.mag[(r-off[0])*cols+c-off[1]]
			if m >= n1 && m >= n2 {
				nms[i] = m
			} else {
				nms[i] = 0
			}
		}
	}
}
