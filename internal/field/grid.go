package field

import "math"

// Grid is a sampled field, row-major with row 0 at the top.
type Grid struct {
	Width, Height int
	Values        []float32
	Min, Max      float32
}

// NewGrid allocates an empty w x h grid.
func NewGrid(w, h int) *Grid {
	return &Grid{Width: w, Height: h, Values: make([]float32, w*h)}
}

// At returns the value at column x, row y.
func (g *Grid) At(x, y int) float32 {
	return g.Values[y*g.Width+x]
}

// Set stores v at column x, row y.
func (g *Grid) Set(x, y int, v float32) {
	g.Values[y*g.Width+x] = v
}

// Stats holds summary values of a grid.
type Stats struct {
	Min, Max, Mean float32
}

// Stats recomputes Min and Max and returns them with the mean.
// An empty grid yields zero stats.
func (g *Grid) Stats() Stats {
	if len(g.Values) == 0 {
		return Stats{}
	}

	lo, hi := float32(math.Inf(1)), float32(math.Inf(-1))
	var sum float64
	for _, v := range g.Values {
		lo = min(lo, v)
		hi = max(hi, v)
		sum += float64(v)
	}
	g.Min, g.Max = lo, hi
	return Stats{Min: lo, Max: hi, Mean: float32(sum / float64(len(g.Values)))}
}
