// Package raster turns sampled fields into images and encodes them.
package raster

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/noisy/internal/field"
)

// Mode selects how field values are mapped onto [0, 1].
type Mode string

const (
	// Signed maps [-1, 1] onto [0, 1] and clamps.
	Signed Mode = "signed"
	// Unit clamps values to [0, 1] as they are.
	Unit Mode = "unit"
	// Auto stretches the grid's own min..max onto [0, 1].
	Auto Mode = "auto"
)

// ParseMode parses a normalisation mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case Signed, Unit, Auto:
		return m, nil
	}
	return "", fmt.Errorf("unknown normalize mode %q (signed, unit, auto)", s)
}

// ModeFor picks the natural mode for a noise kind.
func ModeFor(k field.Kind) Mode {
	if k.Signed() {
		return Signed
	}
	return Unit
}

// Normalize maps every grid value onto [0, 1].
func Normalize(g *field.Grid, mode Mode) []float32 {
	out := make([]float32, len(g.Values))

	var offset, scale float32
	switch mode {
	case Signed:
		offset, scale = 1, 0.5
	case Auto:
		s := g.Stats()
		if s.Max > s.Min {
			offset, scale = -s.Min, 1/(s.Max-s.Min)
		} else {
			// flat field
			offset, scale = 0.5-s.Min, 1
		}
	default:
		offset, scale = 0, 1
	}

	for i, v := range g.Values {
		out[i] = clamp01((v + offset) * scale)
	}
	return out
}

func clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	return min(v, 1)
}
