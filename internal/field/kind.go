// Package field turns a configured noise function into a 2D scalar field
// sampled on a pixel grid.
package field

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned for a noise kind that is not registered.
var ErrUnknownKind = errors.New("unknown noise kind")

// Kind names a noise function.
type Kind string

const (
	Simplex2D       Kind = "simplex2d"
	Simplex2DSeeded Kind = "simplex2d-seeded"
	Simplex3D       Kind = "simplex3d"
	Fbm2D           Kind = "fbm2d"
	Fbm2DSeeded     Kind = "fbm2d-seeded"
	Fbm3D           Kind = "fbm3d"
	Warp2D          Kind = "warp2d"
	Warp2DFinal     Kind = "warp2d-final"
	WorleyF1        Kind = "worley-f1"
	WorleyF2        Kind = "worley-f2"
	WorleyEdge      Kind = "worley-edge" // F2 - F1
)

var kinds = []Kind{
	Simplex2D, Simplex2DSeeded, Simplex3D,
	Fbm2D, Fbm2DSeeded, Fbm3D,
	Warp2D, Warp2DFinal,
	WorleyF1, WorleyF2, WorleyEdge,
}

// Kinds returns every supported kind in a stable order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// ParseKind resolves a kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Seeded reports whether the seed parameter affects k.
func (k Kind) Seeded() bool {
	switch k {
	case Simplex2DSeeded, Fbm2DSeeded, Warp2D, Warp2DFinal:
		return true
	}
	return false
}

// Fractal reports whether octave parameters affect k.
func (k Kind) Fractal() bool {
	switch k {
	case Fbm2D, Fbm2DSeeded, Fbm3D, Warp2D, Warp2DFinal:
		return true
	}
	return false
}

// Signed reports whether k produces values centred on zero, as opposed to
// the non-negative Worley distances.
func (k Kind) Signed() bool {
	switch k {
	case WorleyF1, WorleyF2, WorleyEdge:
		return false
	}
	return true
}

func (k Kind) String() string {
	return string(k)
}
