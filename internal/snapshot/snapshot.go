// Package snapshot records and compares golden noise samples over fixed grids.
package snapshot

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/MeKo-Tech/noisy/noise"
)

// DefaultTolerance is the relative tolerance used when comparing samples.
// Values with magnitude below 1 are compared with the same absolute bound.
const DefaultTolerance = 1e-5

// Set is a named, reproducible list of samples.
type Set struct {
	Name   string
	Sample func() []float32
}

// File is the on-disk golden format.
type File struct {
	Name   string    `json:"name"`
	Values []float32 `json:"values"`
}

// Mismatch describes a sample that drifted beyond tolerance.
type Mismatch struct {
	Index int
	Got   float32
	Want  float32
}

func (m Mismatch) String() string {
	return fmt.Sprintf("index %d: got %v, want %v", m.Index, m.Got, m.Want)
}

// Grid2D returns x,y in {-2.0, -1.9, ..., 1.9}, x-major.
func Grid2D() []mgl32.Vec2 {
	points := make([]mgl32.Vec2, 0, 40*40)
	for x := -20; x < 20; x++ {
		for y := -20; y < 20; y++ {
			points = append(points, mgl32.Vec2{float32(x) / 10, float32(y) / 10})
		}
	}
	return points
}

// Grid3D returns x,y,z in {-0.5, -0.4, ..., 0.4}, x-major.
func Grid3D() []mgl32.Vec3 {
	points := make([]mgl32.Vec3, 0, 10*10*10)
	for x := -5; x < 5; x++ {
		for y := -5; y < 5; y++ {
			for z := -5; z < 5; z++ {
				points = append(points, mgl32.Vec3{float32(x) / 10, float32(y) / 10, float32(z) / 10})
			}
		}
	}
	return points
}

func sample2D(fn func(mgl32.Vec2) float32) func() []float32 {
	return func() []float32 {
		grid := Grid2D()
		values := make([]float32, len(grid))
		for i, p := range grid {
			values[i] = fn(p)
		}
		return values
	}
}

func sample3D(fn func(mgl32.Vec3) float32) func() []float32 {
	return func() []float32 {
		grid := Grid3D()
		values := make([]float32, len(grid))
		for i, p := range grid {
			values[i] = fn(p)
		}
		return values
	}
}

// Sets lists every golden set, in a stable order.
func Sets() []Set {
	warpScale := mgl32.Vec2{0.4, 0.4}
	return []Set{
		{Name: "simplex2d", Sample: sample2D(noise.Simplex2D)},
		{Name: "simplex2d_seeded_0", Sample: sample2D(func(p mgl32.Vec2) float32 {
			return noise.Simplex2DSeeded(p, 0)
		})},
		{Name: "simplex2d_seeded_123", Sample: sample2D(func(p mgl32.Vec2) float32 {
			return noise.Simplex2DSeeded(p, 123)
		})},
		{Name: "simplex3d", Sample: sample3D(noise.Simplex3D)},
		{Name: "fbm2d", Sample: sample2D(func(p mgl32.Vec2) float32 {
			return noise.FbmSimplex2D(p, 5, 2, 0.5)
		})},
		{Name: "fbm2d_seeded_0", Sample: sample2D(func(p mgl32.Vec2) float32 {
			return noise.FbmSimplex2DSeeded(p, 5, 2, 0.5, 0)
		})},
		{Name: "fbm2d_seeded_123", Sample: sample2D(func(p mgl32.Vec2) float32 {
			return noise.FbmSimplex2DSeeded(p, 5, 2, 0.5, 123)
		})},
		{Name: "fbm3d", Sample: sample3D(func(p mgl32.Vec3) float32 {
			return noise.FbmSimplex3D(p, 5, 2, 0.5)
		})},
		{Name: "worley2d_f1", Sample: sample2D(func(p mgl32.Vec2) float32 {
			return noise.Worley2D(p, 1)[0]
		})},
		{Name: "worley2d_f2", Sample: sample2D(func(p mgl32.Vec2) float32 {
			return noise.Worley2D(p, 1)[1]
		})},
		{Name: "worley2d_jitter_05_f1", Sample: sample2D(func(p mgl32.Vec2) float32 {
			return noise.Worley2D(p, 0.5)[0]
		})},
		{Name: "warp2d", Sample: sample2D(func(p mgl32.Vec2) float32 {
			return noise.FbmSimplex2DWarpSeeded(p, 3, 2, 0.5, 324, 4, warpScale, 0.5).NoiseValue
		})},
		{Name: "warp2d_final", Sample: sample2D(func(p mgl32.Vec2) float32 {
			return noise.FbmSimplex2DWarpSeededFinal(p, 3, 2, 0.5, 324, 3, warpScale, 0.5).NoiseValue
		})},
	}
}

// Lookup returns the set with the given name.
func Lookup(name string) (Set, bool) {
	for _, s := range Sets() {
		if s.Name == name {
			return s, true
		}
	}
	return Set{}, false
}

// Path returns the golden file path for a set inside dir.
func Path(dir, name string) string {
	return filepath.Join(dir, name+".json")
}

// Load reads the golden values of a set.
func Load(dir, name string) ([]float32, error) {
	data, err := os.ReadFile(Path(dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read golden %s: %w", name, err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode golden %s: %w", name, err)
	}
	if f.Name != name {
		return nil, fmt.Errorf("golden file %s holds set %q", Path(dir, name), f.Name)
	}
	return f.Values, nil
}

// Save writes values as the golden file of a set.
func Save(dir, name string, values []float32) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create golden dir: %w", err)
	}
	data, err := json.MarshalIndent(File{Name: name, Values: values}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode golden %s: %w", name, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(Path(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden %s: %w", name, err)
	}
	return nil
}

// Compare returns every index where got and want differ by more than
// tol*max(1, |want|). A length difference is reported as a single mismatch
// at the first missing index.
func Compare(got, want []float32, tol float64) []Mismatch {
	var out []Mismatch
	n := min(len(got), len(want))
	for i := 0; i < n; i++ {
		g, w := float64(got[i]), float64(want[i])
		if math.Abs(g-w) > tol*math.Max(1, math.Abs(w)) || math.IsNaN(g) != math.IsNaN(w) {
			out = append(out, Mismatch{Index: i, Got: got[i], Want: want[i]})
		}
	}
	if len(got) != len(want) {
		m := Mismatch{Index: n}
		if n < len(got) {
			m.Got = got[n]
		}
		if n < len(want) {
			m.Want = want[n]
		}
		out = append(out, m)
	}
	return out
}
