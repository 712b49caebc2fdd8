package noise

import "github.com/go-gl/mathgl/mgl32"

var (
	c3 = mgl32.Vec2{1.0 / 6.0, 1.0 / 3.0}
	d3 = mgl32.Vec4{0, 0.5, 1, 2}
)

// gradient bins per axis; the octahedron carries gradN*gradN directions
const gradN = 7

// Simplex3D returns 3D simplex noise at v, roughly within [-1, 1].
//
// The third corner's gradient takes its x bin from the fourth corner
// (b1 = x.w, x.w, y.z, y.w). Existing baked fields depend on that layout;
// Simplex3DCanonical uses the published one.
func Simplex3D(v mgl32.Vec3) float32 {
	return simplex3D(v, false)
}

// Simplex3DCanonical is Simplex3D with the published gradient layout
// b1 = (x.z, x.w, y.z, y.w).
func Simplex3DCanonical(v mgl32.Vec3) float32 {
	return simplex3D(v, true)
}

func simplex3D(v mgl32.Vec3, canonical bool) float32 {
	// first corner
	i := floor3(v.Add(splat3(dot3(v, splat3(c3[1])))))
	x0 := v.Sub(i).Add(splat3(dot3(i, splat3(c3[0]))))

	// other corners: a three-way sort of x0 collapsed into step comparisons
	g := step3(yzx(x0), x0)
	l := splat3(1).Sub(g)
	i1 := min3(g, zxy(l))
	i2 := max3(g, zxy(l))

	x1 := x0.Sub(i1).Add(splat3(c3[0]))
	x2 := x0.Sub(i2).Add(splat3(mul(2, c3[0])))
	x3 := x0.Sub(splat3(1)).Add(splat3(mul(3, c3[0])))

	// permutations, z chain into y chain into x chain
	i = mod3(i, ringSize)
	p := permute4(mgl32.Vec4{i[2], i[2] + i1[2], i[2] + i2[2], i[2] + 1})
	p = permute4(p.Add(splat4(i[1])).Add(mgl32.Vec4{0, i1[1], i2[1], 1}))
	p = permute4(p.Add(splat4(i[0])).Add(mgl32.Vec4{0, i1[0], i2[0], 1}))

	// gradients: gradN*gradN points over a square, mapped onto an octahedron
	var n float32 = 1.0 / gradN
	ns := mgl32.Vec3{mul(n, d3[3]) - d3[0], mul(n, d3[1]) - d3[2], mul(n, d3[2]) - d3[0]}

	var x, y, h mgl32.Vec4
	for k := range 4 {
		j := p[k] - mul(gradN*gradN, floor(p[k]*ns[2]*ns[2])) // mod(p, N*N)
		xi := floor(j * ns[2])
		yi := floor(j - mul(gradN, xi)) // mod(j, N)
		x[k] = mul(xi, ns[0]) + ns[1]
		y[k] = mul(yi, ns[0]) + ns[1]
		h[k] = 1 - abs(x[k]) - abs(y[k])
	}

	b0 := mgl32.Vec4{x[0], x[1], y[0], y[1]}
	b1 := mgl32.Vec4{x[3], x[3], y[2], y[3]}
	if canonical {
		b1[0] = x[2]
	}

	s0 := floor4(b0).Mul(2).Add(splat4(1))
	s1 := floor4(b1).Mul(2).Add(splat4(1))
	sh := step4(h, splat4(0)).Mul(-1)

	a0 := xzyw(b0).Add(mul4(xzyw(s0), xxyy(sh)))
	a1 := xzyw(b1).Add(mul4(xzyw(s1), zzww(sh)))

	p0 := mgl32.Vec3{a0[0], a0[1], h[0]}
	p1 := mgl32.Vec3{a0[2], a0[3], h[1]}
	p2 := mgl32.Vec3{a1[0], a1[1], h[2]}
	p3 := mgl32.Vec3{a1[2], a1[3], h[3]}

	// normalise gradients
	norm := taylorInvSqrt4(mgl32.Vec4{dot3(p0, p0), dot3(p1, p1), dot3(p2, p2), dot3(p3, p3)})
	p0 = p0.Mul(norm[0])
	p1 = p1.Mul(norm[1])
	p2 = p2.Mul(norm[2])
	p3 = p3.Mul(norm[3])

	// mix contributions
	m := max4(splat4(0.6).Sub(mgl32.Vec4{dot3(x0, x0), dot3(x1, x1), dot3(x2, x2), dot3(x3, x3)}), splat4(0))
	m = mul4(m, m)
	return 42 * dot4(mul4(m, m), mgl32.Vec4{dot3(p0, x0), dot3(p1, x1), dot3(p2, x2), dot3(p3, x3)})
}
