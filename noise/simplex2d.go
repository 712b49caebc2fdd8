// Package noise implements deterministic procedural noise kernels: simplex
// noise in two and three dimensions, fractal sums over them (fbm), iterative
// domain warping and 2D cellular (Worley) noise.
//
// Every function is pure and works in single precision on mgl32 vectors.
// The kernels follow the texture-lookup-free construction by Ian McEwan and
// Stefan Gustavson, and mirror the WGSL prelude shipped in package shader
// operation for operation, so CPU and GPU results agree within float32
// tolerance. Products are rounded before they are added, so the compiler
// never contracts them into fused multiply-adds and a given input returns
// the same bits on every GOARCH. Inputs are never validated: any finite
// input yields a finite result, and out-of-range parameters only degrade
// the output.
package noise

import "github.com/go-gl/mathgl/mgl32"

// Skew constants for the triangular lattice.
var c2 = mgl32.Vec4{
	0.211324865405187,  // (3 - sqrt(3)) / 6
	0.366025403784439,  // (sqrt(3) - 1) / 2
	-0.577350269189626, // -1 + 2 * c2.x
	1.0 / 41.0,
}

// Simplex2D returns 2D simplex noise at v, roughly within [-1, 1].
func Simplex2D(v mgl32.Vec2) float32 {
	x0, x12, p := simplex2DCorners(v)
	return simplex2DGradients(x0, x12, p)
}

// Simplex2DSeeded is Simplex2D with the gradient selection reseeded. The
// lattice geometry is unchanged; the seed enters one extra permutation
// round, so Simplex2DSeeded(v, 0) differs from Simplex2D(v).
func Simplex2DSeeded(v mgl32.Vec2, seed float32) float32 {
	x0, x12, p := simplex2DCorners(v)
	p = permute3(p.Add(splat3(seed)))
	return simplex2DGradients(x0, x12, p)
}

// simplex2DCorners locates the lattice cell and returns the offset to the
// first corner, the packed offsets to the middle and far corners, and one
// permuted hash per corner.
func simplex2DCorners(v mgl32.Vec2) (mgl32.Vec2, mgl32.Vec4, mgl32.Vec3) {
	// first corner
	s := dot2(v, mgl32.Vec2{c2[1], c2[1]})
	i := floor2(mgl32.Vec2{v[0] + s, v[1] + s})
	t := dot2(i, mgl32.Vec2{c2[0], c2[0]})
	x0 := v.Sub(i)
	x0 = mgl32.Vec2{x0[0] + t, x0[1] + t}

	// other corners; equal coordinates take the (0,1) triangle
	i1 := mgl32.Vec2{0, 1}
	if x0[0] > x0[1] {
		i1 = mgl32.Vec2{1, 0}
	}
	x12 := xyxy(x0).Add(mgl32.Vec4{c2[0], c2[0], c2[2], c2[2]})
	x12[0] -= i1[0]
	x12[1] -= i1[1]

	// permutations
	i = mod2(i, ringSize)
	p := permute3(mgl32.Vec3{i[1], i[1] + i1[1], i[1] + 1})
	p = permute3(mgl32.Vec3{p[0] + i[0], p[1] + i[0] + i1[0], p[2] + i[0] + 1})

	return x0, x12, p
}

// simplex2DGradients maps each corner hash onto one of 41 gradients and sums
// the falloff-weighted contributions.
func simplex2DGradients(x0 mgl32.Vec2, x12 mgl32.Vec4, p mgl32.Vec3) float32 {
	xy := mgl32.Vec2{x12[0], x12[1]}
	zw := mgl32.Vec2{x12[2], x12[3]}
	m := max3(splat3(0.5).Sub(mgl32.Vec3{dot2(x0, x0), dot2(xy, xy), dot2(zw, zw)}), splat3(0))
	m = mul3(m, m)
	m = mul3(m, m)

	// 41 points uniformly over a line, mapped onto a diamond; 41*7 = 287
	// is close to the ring size
	var x, h, a0 mgl32.Vec3
	for k := range 3 {
		x[k] = 2*fract(mul(p[k], c2[3])) - 1
		h[k] = abs(x[k]) - 0.5
		a0[k] = x[k] - floor(x[k]+0.5)
		m[k] *= taylorInvSqrt(mul(a0[k], a0[k]) + mul(h[k], h[k]))
	}

	g := mgl32.Vec3{
		mul(a0[0], x0[0]) + mul(h[0], x0[1]),
		mul(a0[1], x12[0]) + mul(h[1], x12[1]),
		mul(a0[2], x12[2]) + mul(h[2], x12[3]),
	}
	return 130 * dot3(m, g)
}
