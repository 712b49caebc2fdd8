package noise

import "github.com/go-gl/mathgl/mgl32"

const (
	cellK  = 0.142857142857 // 1/7
	cellKo = 0.428571428571 // 3/7
)

// Worley2D returns the distances from p to the nearest (x) and second
// nearest (y) feature point of a jittered unit grid. jitter in [0,1] moves
// feature points away from the cell centres; 0 gives a regular pattern.
// Only the 3x3 neighbourhood of the containing cell is searched, so with
// jitter near 1 the F2 distance can occasionally be overestimated.
func Worley2D(p mgl32.Vec2, jitter float32) mgl32.Vec2 {
	pi := mod289Floor2(floor2(p))
	pf := fract2(p)
	oi := mgl32.Vec3{-1, 0, 1}
	of := mgl32.Vec3{-0.5, 0.5, 1.5}

	px := permute3(splat3(pi[0]).Add(oi))
	py := pf[1]

	// squared distances, one row of three candidates per column offset
	d1 := cellDistances(permute3(splat3(px[0]+pi[1]).Add(oi)), pf[0]+0.5, py, of, jitter)
	d2 := cellDistances(permute3(splat3(px[1]+pi[1]).Add(oi)), pf[0]-0.5, py, of, jitter)
	d3 := cellDistances(permute3(splat3(px[2]+pi[1]).Add(oi)), pf[0]-1.5, py, of, jitter)

	// sort out the two smallest distances without a full sort
	d1a := min3(d1, d2)
	d2 = max3(d1, d2)  // keep candidates for F2
	d2 = min3(d2, d3)  // neither F1 nor F2 are now in d3
	d1 = min3(d1a, d2) // F1 is now in d1
	d2 = max3(d1a, d2)
	if !(d1[0] < d1[1]) {
		d1[0], d1[1] = d1[1], d1[0]
	}
	if !(d1[0] < d1[2]) {
		d1[0], d1[2] = d1[2], d1[0] // F1 is in d1.x
	}
	d1[1] = min(d1[1], d2[1])
	d1[2] = min(d1[2], d2[2])
	d1[1] = min(d1[1], d1[2])
	d1[1] = min(d1[1], d2[0]) // F2 is in d1.y

	return mgl32.Vec2{sqrt(d1[0]), sqrt(d1[1])}
}

// cellDistances jitters the three feature points hashed into p and returns
// their squared distances to the sample point.
func cellDistances(p mgl32.Vec3, dx0, py float32, of mgl32.Vec3, jitter float32) mgl32.Vec3 {
	var d mgl32.Vec3
	for k := range 3 {
		ox := fract(mul(p[k], cellK)) - cellKo
		oy := mul(mod7Floor(floor(p[k]*cellK)), cellK) - cellKo
		dx := dx0 + mul(jitter, ox)
		dy := py - of[k] + mul(jitter, oy)
		d[k] = mul(dx, dx) + mul(dy, dy)
	}
	return d
}

// mod289Floor2 and mod7Floor are floor-based remainders, always >= 0.
func mod289Floor2(v mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{
		v[0] - mul(floor(v[0]*(1.0/ringSize)), ringSize),
		v[1] - mul(floor(v[1]*(1.0/ringSize)), ringSize),
	}
}

func mod7Floor(x float32) float32 {
	return x - mul(floor(x*(1.0/7.0)), 7)
}
