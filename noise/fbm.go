package noise

import "github.com/go-gl/mathgl/mgl32"

// FbmSimplex2D sums octaves of Simplex2D. Frequency and amplitude start at 1
// and are multiplied by lacunarity and gain after each octave. The sum is not
// normalised; callers rescale when they need a bounded range.
func FbmSimplex2D(pos mgl32.Vec2, octaves uint, lacunarity, gain float32) float32 {
	var sum float32
	amplitude, frequency := float32(1), float32(1)
	for range octaves {
		sum += mul(Simplex2D(pos.Mul(frequency)), amplitude)
		amplitude *= gain
		frequency *= lacunarity
	}
	return sum
}

// FbmSimplex2DSeeded sums octaves of Simplex2DSeeded, every octave using the
// same seed.
func FbmSimplex2DSeeded(pos mgl32.Vec2, octaves uint, lacunarity, gain, seed float32) float32 {
	var sum float32
	amplitude, frequency := float32(1), float32(1)
	for range octaves {
		sum += mul(Simplex2DSeeded(pos.Mul(frequency), seed), amplitude)
		amplitude *= gain
		frequency *= lacunarity
	}
	return sum
}

// FbmSimplex3D sums octaves of Simplex3D.
func FbmSimplex3D(pos mgl32.Vec3, octaves uint, lacunarity, gain float32) float32 {
	var sum float32
	amplitude, frequency := float32(1), float32(1)
	for range octaves {
		sum += mul(Simplex3D(pos.Mul(frequency)), amplitude)
		amplitude *= gain
		frequency *= lacunarity
	}
	return sum
}
