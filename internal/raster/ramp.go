package raster

import (
	"fmt"
	"image/color"
	"slices"
	"sort"
)

// Stop is a colour at a position in [0, 1].
type Stop struct {
	At    float64
	Color color.NRGBA
}

// Ramp interpolates linearly between sorted stops.
type Ramp []Stop

var ramps = map[string]Ramp{
	"terrain": {
		{0.00, color.NRGBA{R: 20, G: 40, B: 110, A: 255}},
		{0.45, color.NRGBA{R: 60, G: 120, B: 190, A: 255}},
		{0.50, color.NRGBA{R: 225, G: 210, B: 150, A: 255}},
		{0.60, color.NRGBA{R: 80, G: 150, B: 60, A: 255}},
		{0.80, color.NRGBA{R: 110, G: 90, B: 60, A: 255}},
		{1.00, color.NRGBA{R: 250, G: 250, B: 250, A: 255}},
	},
	"heat": {
		{0.0, color.NRGBA{A: 255}},
		{0.4, color.NRGBA{R: 200, A: 255}},
		{0.8, color.NRGBA{R: 255, G: 200, A: 255}},
		{1.0, color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
	},
	"paper": {
		{0.0, color.NRGBA{R: 214, G: 198, B: 170, A: 255}},
		{1.0, color.NRGBA{R: 250, G: 246, B: 236, A: 255}},
	},
}

// RampNames lists the built-in ramps, plus "gray".
func RampNames() []string {
	names := []string{"gray"}
	for name := range ramps {
		names = append(names, name)
	}
	sort.Strings(names[1:])
	return names
}

// ParseRamp returns a built-in ramp.
func ParseRamp(name string) (Ramp, error) {
	if name == "gray" {
		return Ramp{{0, color.NRGBA{A: 255}}, {1, color.NRGBA{R: 255, G: 255, B: 255, A: 255}}}, nil
	}
	r, ok := ramps[name]
	if !ok {
		return nil, fmt.Errorf("unknown ramp %q (%v)", name, RampNames())
	}
	return slices.Clone(r), nil
}

// At returns the colour at t, clamped to the end stops.
func (r Ramp) At(t float64) color.NRGBA {
	if len(r) == 0 {
		return color.NRGBA{}
	}
	if t <= r[0].At {
		return r[0].Color
	}
	for i := 1; i < len(r); i++ {
		if t <= r[i].At {
			a, b := r[i-1], r[i]
			return lerpColor(a.Color, b.Color, (t-a.At)/(b.At-a.At))
		}
	}
	return r[len(r)-1].Color
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	return color.NRGBA{
		R: lerpU8(a.R, b.R, t),
		G: lerpU8(a.G, b.G, t),
		B: lerpU8(a.B, b.B, t),
		A: lerpU8(a.A, b.A, t),
	}
}

func lerpU8(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}
