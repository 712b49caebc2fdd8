package noise

import "github.com/go-gl/mathgl/mgl32"

// WarpHistory is the number of warped positions kept in a WarpResult.
const WarpHistory = 4

// WarpResult is the outcome of FbmSimplex2DWarpSeeded.
type WarpResult struct {
	// Positions holds the warped position after each iteration, most recent
	// first. Only the first Populated() slots are meaningful; the rest keep
	// the zero vector.
	Positions  [WarpHistory]mgl32.Vec2
	Iterations uint
	NoiseValue float32
}

// Populated reports how many Positions slots were written.
func (r WarpResult) Populated() int {
	return int(min(r.Iterations, WarpHistory))
}

// Final returns the position produced by the last warp iteration. ok is
// false when no iteration ran.
func (r WarpResult) Final() (pos mgl32.Vec2, ok bool) {
	if r.Iterations == 0 {
		return mgl32.Vec2{}, false
	}
	return r.Positions[0], true
}

// FbmSimplex2DWarpSeeded iteratively displaces pos by seeded fbm and then
// evaluates fbm once more. Each iteration first moves x, then moves y using
// the already displaced x; the displacement scale starts at 1 and is
// multiplied by falloff after every iteration.
//
// NoiseValue is always evaluated at Positions[3], the fourth most recent
// position. With fewer than four iterations that slot is the zero vector,
// so the value does not depend on pos at all. This matches the shader
// prelude; use FbmSimplex2DWarpSeededFinal to evaluate at the real last
// position instead.
func FbmSimplex2DWarpSeeded(
	pos mgl32.Vec2,
	octaves uint,
	lacunarity, gain, seed float32,
	warpIterations uint,
	warpScale mgl32.Vec2,
	falloff float32,
) WarpResult {
	res := warp(pos, octaves, lacunarity, gain, seed, warpIterations, warpScale, falloff)
	res.NoiseValue = FbmSimplex2DSeeded(res.Positions[WarpHistory-1], octaves, lacunarity, gain, seed)
	return res
}

// FbmSimplex2DWarpSeededFinal runs the same warp as FbmSimplex2DWarpSeeded
// but evaluates NoiseValue at the last warped position, or at pos when
// warpIterations is 0.
func FbmSimplex2DWarpSeededFinal(
	pos mgl32.Vec2,
	octaves uint,
	lacunarity, gain, seed float32,
	warpIterations uint,
	warpScale mgl32.Vec2,
	falloff float32,
) WarpResult {
	res := warp(pos, octaves, lacunarity, gain, seed, warpIterations, warpScale, falloff)
	last, ok := res.Final()
	if !ok {
		last = pos
	}
	res.NoiseValue = FbmSimplex2DSeeded(last, octaves, lacunarity, gain, seed)
	return res
}

func warp(
	pos mgl32.Vec2,
	octaves uint,
	lacunarity, gain, seed float32,
	warpIterations uint,
	warpScale mgl32.Vec2,
	falloff float32,
) WarpResult {
	res := WarpResult{Iterations: warpIterations}
	p := pos
	scale := float32(1)
	for k := range warpIterations {
		p[0] += mul(scale*warpScale[0], FbmSimplex2DSeeded(p, octaves, lacunarity, gain, seed))
		p[1] += mul(scale*warpScale[1], FbmSimplex2DSeeded(p, octaves, lacunarity, gain, seed))
		scale *= falloff

		if slot := warpIterations - 1 - k; slot < WarpHistory {
			res.Positions[slot] = p
		}
	}
	return res
}
