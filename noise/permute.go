package noise

import "github.com/go-gl/mathgl/mgl32"

// ringSize is the period of the permutation polynomial (17*17).
const ringSize = 289

// Taylor coefficients approximating 1/sqrt(r) near r = 0.7.
const (
	invSqrtA = 1.79284291400159
	invSqrtB = 0.85373472095314
)

// permute scrambles a lattice index: ((x*34 + 1) * x) mod 289.
// The operation order is part of the output contract.
func permute(x float32) float32 {
	return mod((mul(x, 34)+1)*x, ringSize)
}

func permute3(x mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{permute(x[0]), permute(x[1]), permute(x[2])}
}

func permute4(x mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{permute(x[0]), permute(x[1]), permute(x[2]), permute(x[3])}
}

func taylorInvSqrt(r float32) float32 {
	return invSqrtA - mul(invSqrtB, r)
}

func taylorInvSqrt4(r mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{taylorInvSqrt(r[0]), taylorInvSqrt(r[1]), taylorInvSqrt(r[2]), taylorInvSqrt(r[3])}
}
