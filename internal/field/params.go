package field

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/MeKo-Tech/noisy/noise"
)

// Limits enforced by Validate. The kernels accept anything; these keep
// tooling and the preview server from doing unbounded work.
const (
	MaxOctaves        = 16
	MaxWarpIterations = 32
)

// Params configures a field. The mapstructure tags match the "field"
// section of the config file.
type Params struct {
	Kind           Kind    `mapstructure:"kind" json:"kind"`
	Octaves        uint    `mapstructure:"octaves" json:"octaves"`
	Lacunarity     float32 `mapstructure:"lacunarity" json:"lacunarity"`
	Gain           float32 `mapstructure:"gain" json:"gain"`
	Seed           float32 `mapstructure:"seed" json:"seed"`
	Z              float32 `mapstructure:"z" json:"z"` // slice plane for 3D kinds
	WarpIterations uint    `mapstructure:"warp_iterations" json:"warp_iterations"`
	WarpScaleX     float32 `mapstructure:"warp_scale_x" json:"warp_scale_x"`
	WarpScaleY     float32 `mapstructure:"warp_scale_y" json:"warp_scale_y"`
	Falloff        float32 `mapstructure:"falloff" json:"falloff"`
	Jitter         float32 `mapstructure:"jitter" json:"jitter"`
	Frequency      float32 `mapstructure:"frequency" json:"frequency"` // input scale
}

// DefaultParams returns the parameters used when nothing is configured.
func DefaultParams() Params {
	return Params{
		Kind:           Fbm2D,
		Octaves:        5,
		Lacunarity:     2,
		Gain:           0.5,
		WarpIterations: 4,
		WarpScaleX:     0.4,
		WarpScaleY:     0.4,
		Falloff:        0.5,
		Jitter:         1,
		Frequency:      1,
	}
}

// Validate rejects parameters tooling should not pass to the kernels.
func (p Params) Validate() error {
	if !p.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, p.Kind)
	}

	var errs []error
	if !(p.Frequency > 0) || math.IsInf(float64(p.Frequency), 0) {
		errs = append(errs, fmt.Errorf("frequency must be positive and finite, got %v", p.Frequency))
	}
	if p.Kind.Fractal() && (p.Octaves == 0 || p.Octaves > MaxOctaves) {
		errs = append(errs, fmt.Errorf("octaves must be in [1, %d], got %d", MaxOctaves, p.Octaves))
	}
	if p.WarpIterations > MaxWarpIterations {
		errs = append(errs, fmt.Errorf("warp iterations must be at most %d, got %d", MaxWarpIterations, p.WarpIterations))
	}
	if p.Jitter < 0 || p.Jitter > 1 {
		errs = append(errs, fmt.Errorf("jitter must be in [0, 1], got %v", p.Jitter))
	}
	for name, v := range map[string]float32{
		"lacunarity":   p.Lacunarity,
		"gain":         p.Gain,
		"seed":         p.Seed,
		"z":            p.Z,
		"warp_scale_x": p.WarpScaleX,
		"warp_scale_y": p.WarpScaleY,
		"falloff":      p.Falloff,
	} {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			errs = append(errs, fmt.Errorf("%s must be finite, got %v", name, v))
		}
	}
	return errors.Join(errs...)
}

// Func evaluates a field at a point of the noise domain.
type Func func(x, y float32) float32

// Func builds the evaluator for p. Frequency scales the input before the
// kernel sees it.
func (p Params) Func() (Func, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	f := p.Frequency
	vec := func(x, y float32) mgl32.Vec2 { return mgl32.Vec2{x * f, y * f} }
	ws := mgl32.Vec2{p.WarpScaleX, p.WarpScaleY}

	switch p.Kind {
	case Simplex2D:
		return func(x, y float32) float32 { return noise.Simplex2D(vec(x, y)) }, nil
	case Simplex2DSeeded:
		return func(x, y float32) float32 { return noise.Simplex2DSeeded(vec(x, y), p.Seed) }, nil
	case Simplex3D:
		return func(x, y float32) float32 { return noise.Simplex3D(mgl32.Vec3{x * f, y * f, p.Z * f}) }, nil
	case Fbm2D:
		return func(x, y float32) float32 {
			return noise.FbmSimplex2D(vec(x, y), p.Octaves, p.Lacunarity, p.Gain)
		}, nil
	case Fbm2DSeeded:
		return func(x, y float32) float32 {
			return noise.FbmSimplex2DSeeded(vec(x, y), p.Octaves, p.Lacunarity, p.Gain, p.Seed)
		}, nil
	case Fbm3D:
		return func(x, y float32) float32 {
			return noise.FbmSimplex3D(mgl32.Vec3{x * f, y * f, p.Z * f}, p.Octaves, p.Lacunarity, p.Gain)
		}, nil
	case Warp2D:
		return func(x, y float32) float32 {
			return noise.FbmSimplex2DWarpSeeded(vec(x, y), p.Octaves, p.Lacunarity, p.Gain, p.Seed,
				p.WarpIterations, ws, p.Falloff).NoiseValue
		}, nil
	case Warp2DFinal:
		return func(x, y float32) float32 {
			return noise.FbmSimplex2DWarpSeededFinal(vec(x, y), p.Octaves, p.Lacunarity, p.Gain, p.Seed,
				p.WarpIterations, ws, p.Falloff).NoiseValue
		}, nil
	case WorleyF1:
		return func(x, y float32) float32 { return noise.Worley2D(vec(x, y), p.Jitter)[0] }, nil
	case WorleyF2:
		return func(x, y float32) float32 { return noise.Worley2D(vec(x, y), p.Jitter)[1] }, nil
	case WorleyEdge:
		return func(x, y float32) float32 {
			d := noise.Worley2D(vec(x, y), p.Jitter)
			return d[1] - d[0]
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, p.Kind)
}
