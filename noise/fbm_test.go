package noise

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestFbm_SingleOctaveIsBase(t *testing.T) {
	for _, p := range grid2(20, 3) {
		assert.Equal(t, Simplex2D(p), FbmSimplex2D(p, 1, 2, 0.5))
		assert.Equal(t, Simplex2DSeeded(p, 9), FbmSimplex2DSeeded(p, 1, 2, 0.5, 9))
	}
	for _, p := range grid3(6, 2) {
		assert.Equal(t, Simplex3D(p), FbmSimplex3D(p, 1, 2, 0.5))
	}
}

func TestFbm_ZeroOctaves(t *testing.T) {
	p := mgl32.Vec2{1.5, -2.25}
	assert.Zero(t, FbmSimplex2D(p, 0, 2, 0.5))
	assert.Zero(t, FbmSimplex2DSeeded(p, 0, 2, 0.5, 3))
	assert.Zero(t, FbmSimplex3D(mgl32.Vec3{1, 2, 3}, 0, 2, 0.5))
}

func TestFbm_ZeroGainKeepsFirstOctave(t *testing.T) {
	for _, p := range grid2(10, 3) {
		assert.Equal(t, Simplex2D(p), FbmSimplex2D(p, 6, 2, 0))
	}
}

func TestFbm_UnitLacunarityRepeatsBase(t *testing.T) {
	p := mgl32.Vec2{0.8, 0.35}
	base := Simplex2D(p)
	assert.InDelta(t, 3*base, FbmSimplex2D(p, 3, 1, 1), 1e-6)
}

func TestFbmSimplex2D_KnownValue(t *testing.T) {
	got := FbmSimplex2D(mgl32.Vec2{0.3, -0.7}, 5, 2, 0.5)
	assert.InDelta(t, -0.16370612, got, 1e-5)
}

func TestFbm_SeedChangesOutput(t *testing.T) {
	pts := grid2(20, 4)
	same := 0
	for _, p := range pts {
		if FbmSimplex2DSeeded(p, 4, 2, 0.5, 1) == FbmSimplex2DSeeded(p, 4, 2, 0.5, 77) {
			same++
		}
	}
	assert.Less(t, same, len(pts)/20)
}

func BenchmarkFbmSimplex2D(b *testing.B) {
	p := mgl32.Vec2{0.3, -0.7}
	for b.Loop() {
		FbmSimplex2D(p, 5, 2, 0.5)
	}
}
