package noise

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type warpArgs struct {
	octaves    uint
	lacunarity float32
	gain       float32
	seed       float32
	scale      mgl32.Vec2
	falloff    float32
}

var defaultWarp = warpArgs{octaves: 3, lacunarity: 2, gain: 0.5, seed: 324, scale: mgl32.Vec2{0.4, 0.4}, falloff: 0.5}

func (a warpArgs) run(pos mgl32.Vec2, iterations uint) WarpResult {
	return FbmSimplex2DWarpSeeded(pos, a.octaves, a.lacunarity, a.gain, a.seed, iterations, a.scale, a.falloff)
}

func (a warpArgs) runFinal(pos mgl32.Vec2, iterations uint) WarpResult {
	return FbmSimplex2DWarpSeededFinal(pos, a.octaves, a.lacunarity, a.gain, a.seed, iterations, a.scale, a.falloff)
}

func (a warpArgs) fbm(p mgl32.Vec2) float32 {
	return FbmSimplex2DSeeded(p, a.octaves, a.lacunarity, a.gain, a.seed)
}

func TestWarp_FirstIterationMovesXThenY(t *testing.T) {
	a := defaultWarp
	pos := mgl32.Vec2{0.3, -0.7}
	res := a.run(pos, 1)

	want := pos
	want[0] += a.scale[0] * a.fbm(want)
	want[1] += a.scale[1] * a.fbm(want)

	assert.InDelta(t, want[0], res.Positions[0][0], 1e-6)
	assert.InDelta(t, want[1], res.Positions[0][1], 1e-6)
	assert.Equal(t, uint(1), res.Iterations)
}

func TestWarp_HistoryMostRecentFirst(t *testing.T) {
	a := defaultWarp
	pos := mgl32.Vec2{1.25, 0.5}

	for n := uint(1); n <= 6; n++ {
		res := a.run(pos, n)
		require.Equal(t, int(min(n, WarpHistory)), res.Populated())
		for j := range uint(res.Populated()) {
			prev := a.run(pos, n-j)
			assert.Equal(t, prev.Positions[0], res.Positions[j], "n=%d slot=%d", n, j)
		}
	}
}

func TestWarp_UnwrittenSlotsStayZero(t *testing.T) {
	res := defaultWarp.run(mgl32.Vec2{2, 3}, 2)
	assert.Equal(t, 2, res.Populated())
	assert.NotEqual(t, mgl32.Vec2{}, res.Positions[0])
	assert.Equal(t, mgl32.Vec2{}, res.Positions[2])
	assert.Equal(t, mgl32.Vec2{}, res.Positions[3])
}

func TestWarp_ValueReadsFourthSlot(t *testing.T) {
	a := defaultWarp

	// fewer than four iterations leave slot 3 at the origin, independent of pos
	origin := a.fbm(mgl32.Vec2{})
	for _, pos := range []mgl32.Vec2{{0.3, -0.7}, {5, 5}, {-12, 8.5}} {
		for _, n := range []uint{0, 1, 3} {
			assert.Equal(t, origin, a.run(pos, n).NoiseValue, "pos=%v n=%d", pos, n)
		}
	}

	res := a.run(mgl32.Vec2{0.3, -0.7}, 5)
	assert.Equal(t, a.fbm(res.Positions[3]), res.NoiseValue)
}

func TestWarpFinal_ValueAtLastPosition(t *testing.T) {
	a := defaultWarp
	pos := mgl32.Vec2{0.3, -0.7}

	res := a.runFinal(pos, 3)
	last, ok := res.Final()
	require.True(t, ok)
	assert.Equal(t, a.fbm(last), res.NoiseValue)
	// the warp itself is shared with the four-slot variant
	assert.Equal(t, a.run(pos, 3).Positions, res.Positions)

	none := a.runFinal(pos, 0)
	_, ok = none.Final()
	assert.False(t, ok)
	assert.Equal(t, a.fbm(pos), none.NoiseValue)
	assert.Zero(t, none.Populated())
}

func TestWarp_ZeroFalloffFreezesAfterFirstStep(t *testing.T) {
	a := defaultWarp
	a.falloff = 0
	res := a.run(mgl32.Vec2{0.9, 0.1}, 3)
	assert.Equal(t, res.Positions[2], res.Positions[1])
	assert.Equal(t, res.Positions[2], res.Positions[0])
}

func TestWarp_ZeroScaleKeepsPosition(t *testing.T) {
	a := defaultWarp
	a.scale = mgl32.Vec2{}
	pos := mgl32.Vec2{0.9, 0.1}
	res := a.run(pos, 4)
	for j := range WarpHistory {
		assert.Equal(t, pos, res.Positions[j])
	}
	assert.Equal(t, a.fbm(pos), res.NoiseValue)
}

func BenchmarkFbmSimplex2DWarpSeeded(b *testing.B) {
	a := defaultWarp
	p := mgl32.Vec2{0.3, -0.7}
	for b.Loop() {
		a.run(p, 4)
	}
}
