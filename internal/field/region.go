package field

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Region is a rectangle of the noise domain. X grows to the right and Y
// grows upwards, so image row 0 samples Max.Y.
type Region struct {
	Bound orb.Bound
}

// DefaultRegion covers four lattice cells in each direction.
var DefaultRegion = NewRegion(0, 0, 4, 4)

// NewRegion returns the region spanned by the two corners.
func NewRegion(minX, minY, maxX, maxY float64) Region {
	return Region{Bound: orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{maxX, maxY}}}
}

// ParseRegion parses "minX,minY,maxX,maxY".
func ParseRegion(s string) (Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Region{}, fmt.Errorf("expected 4 comma-separated values, got %d", len(parts))
	}

	var v [4]float64
	for i, part := range parts {
		val, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return Region{}, fmt.Errorf("invalid number at position %d: %w", i, err)
		}
		if math.IsInf(val, 0) || math.IsNaN(val) {
			return Region{}, fmt.Errorf("invalid number at position %d: %v", i, val)
		}
		v[i] = val
	}

	if v[0] >= v[2] {
		return Region{}, fmt.Errorf("minX (%.4f) must be < maxX (%.4f)", v[0], v[2])
	}
	if v[1] >= v[3] {
		return Region{}, fmt.Errorf("minY (%.4f) must be < maxY (%.4f)", v[1], v[3])
	}

	return NewRegion(v[0], v[1], v[2], v[3]), nil
}

// String formats r the way ParseRegion reads it.
func (r Region) String() string {
	b := r.Bound
	return fmt.Sprintf("%g,%g,%g,%g", b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y())
}

// Width and Height are the extents of the region in noise units.
func (r Region) Width() float64  { return r.Bound.Max.X() - r.Bound.Min.X() }
func (r Region) Height() float64 { return r.Bound.Max.Y() - r.Bound.Min.Y() }

// Empty reports whether the region has no area.
func (r Region) Empty() bool {
	return !(r.Width() > 0) || !(r.Height() > 0)
}

// Pixel returns the noise coordinates of the centre of pixel (i, j) in a
// w x h raster laid over r.
func (r Region) Pixel(i, j, w, h int) (x, y float32) {
	b := r.Bound
	fx := b.Min.X() + (float64(i)+0.5)*r.Width()/float64(w)
	fy := b.Max.Y() - (float64(j)+0.5)*r.Height()/float64(h)
	return float32(fx), float32(fy)
}

// Contains reports whether the point lies inside r, edges included.
func (r Region) Contains(x, y float64) bool {
	return r.Bound.Contains(orb.Point{x, y})
}
