package canny

// Sample classes used while linking edges. The final edge map collapses
// them to 0 and 255.
const (
	NoEdge       uint8 = 0
	PossibleEdge uint8 = 128
	Edge         uint8 = 255
)

// hysteresisResult summarizes one hysteresis pass.
type hysteresisResult struct {
	high, low  float64
	seeds      int
	candidates int
	edges      int
}

// hysteresis classifies the suppressed magnitudes into out and promotes
// candidates 8-connected to a seed with an explicit work list. The result
// does not depend on visiting order.
func hysteresis(nms []int32, out []uint8, rows, cols int, maxMag int32, tlow, thigh float64) hysteresisResult {
	res := hysteresisResult{
		high: thigh * float64(maxMag),
		low:  tlow * float64(maxMag),
	}
	for i := range out {
		out[i] = NoEdge
	}
	if maxMag == 0 {
		return res
	}

	stack := make([]int, 0, 1024)
	for i, m := range nms {
		if m == 0 {
			continue
		}
		switch v := float64(m); {
		case v >= res.high:
			out[i] = Edge
			stack = append(stack, i)
			res.seeds++
		case v >= res.low:
			out[i] = PossibleEdge
			res.candidates++
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		r, c := i/cols, i%cols
		for dr := -1; dr <= 1; dr++ {
			rr := r + dr
			if rr < 0 || rr >= rows {
				continue
			}
			for dc := -1; dc <= 1; dc++ {
				cc := c + dc
				if cc < 0 || cc >= cols || (dr == 0 && dc == 0) {
					continue
				}
				j := rr*cols + cc
				if out[j] == PossibleEdge {
					out[j] = Edge
					stack = append(stack, j)
				}
			}
		}
	}

	for i, v := range out {
		if v == Edge {
			res.edges++
		} else {
			out[i] = NoEdge
		}
	}
	return res
}
