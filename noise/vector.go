package noise

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Scalar helpers. All of them round through float32 so results match the
// WGSL prelude operation for operation.
//
// Go may contract x*y + z into a fused multiply-add on arm64, ppc64 and
// s390x. Products that feed an addition go through mul, whose explicit
// conversion forces the intermediate rounding, so the kernels return the
// same bits on every architecture.

func mul(a, b float32) float32 { return float32(a * b) }

func dot2(a, b mgl32.Vec2) float32 { return mul(a[0], b[0]) + mul(a[1], b[1]) }

func dot3(a, b mgl32.Vec3) float32 { return mul(a[0], b[0]) + mul(a[1], b[1]) + mul(a[2], b[2]) }

func dot4(a, b mgl32.Vec4) float32 {
	return mul(a[0], b[0]) + mul(a[1], b[1]) + mul(a[2], b[2]) + mul(a[3], b[3])
}

func floor(x float32) float32 { return float32(math.Floor(float64(x))) }

// fract follows the GLSL/WGSL definition x - floor(x).
func fract(x float32) float32 { return x - floor(x) }

func abs(x float32) float32 { return float32(math.Abs(float64(x))) }

func sqrt(x float32) float32 { return float32(math.Sqrt(float64(x))) }

// mod is a truncated remainder: the sign follows the dividend.
func mod(x, y float32) float32 { return float32(math.Mod(float64(x), float64(y))) }

// step returns 1 when edge <= x, otherwise 0.
func step(edge, x float32) float32 {
	if edge <= x {
		return 1
	}
	return 0
}

func splat3(s float32) mgl32.Vec3 { return mgl32.Vec3{s, s, s} }

func splat4(s float32) mgl32.Vec4 { return mgl32.Vec4{s, s, s, s} }

func floor2(v mgl32.Vec2) mgl32.Vec2 { return mgl32.Vec2{floor(v[0]), floor(v[1])} }

func floor3(v mgl32.Vec3) mgl32.Vec3 { return mgl32.Vec3{floor(v[0]), floor(v[1]), floor(v[2])} }

func floor4(v mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{floor(v[0]), floor(v[1]), floor(v[2]), floor(v[3])}
}

func fract2(v mgl32.Vec2) mgl32.Vec2 { return mgl32.Vec2{fract(v[0]), fract(v[1])} }

func mod2(v mgl32.Vec2, m float32) mgl32.Vec2 { return mgl32.Vec2{mod(v[0], m), mod(v[1], m)} }

func mod3(v mgl32.Vec3, m float32) mgl32.Vec3 {
	return mgl32.Vec3{mod(v[0], m), mod(v[1], m), mod(v[2], m)}
}

func min3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])}
}

func max3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
}

func max4(a, b mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2]), max(a[3], b[3])}
}

func step3(edge, x mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{step(edge[0], x[0]), step(edge[1], x[1]), step(edge[2], x[2])}
}

func step4(edge, x mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{step(edge[0], x[0]), step(edge[1], x[1]), step(edge[2], x[2]), step(edge[3], x[3])}
}

// mul3 and mul4 are component-wise products; mgl32's Mul is scalar only.
func mul3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{mul(a[0], b[0]), mul(a[1], b[1]), mul(a[2], b[2])}
}

func mul4(a, b mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{mul(a[0], b[0]), mul(a[1], b[1]), mul(a[2], b[2]), mul(a[3], b[3])}
}

// Swizzles used by the kernels.

func xyxy(v mgl32.Vec2) mgl32.Vec4 { return mgl32.Vec4{v[0], v[1], v[0], v[1]} }

func yzx(v mgl32.Vec3) mgl32.Vec3 { return mgl32.Vec3{v[1], v[2], v[0]} }

func zxy(v mgl32.Vec3) mgl32.Vec3 { return mgl32.Vec3{v[2], v[0], v[1]} }

func xzyw(v mgl32.Vec4) mgl32.Vec4 { return mgl32.Vec4{v[0], v[2], v[1], v[3]} }

func xxyy(v mgl32.Vec4) mgl32.Vec4 { return mgl32.Vec4{v[0], v[0], v[1], v[1]} }

func zzww(v mgl32.Vec4) mgl32.Vec4 { return mgl32.Vec4{v[2], v[2], v[3], v[3]} }
