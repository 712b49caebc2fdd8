package shader

// Constant is a numeric literal the Go kernels and the WGSL prelude must
// share. Literal is spelled exactly as it appears in the WGSL source.
type Constant struct {
	Name    string
	Literal string
}

// Constants lists the shared literals.
func Constants() []Constant {
	return []Constant{
		{"ringSize", "289.0"},
		{"permuteMul", "34.0"},
		{"invSqrtA", "1.79284291400159"},
		{"invSqrtB", "0.85373472095314"},
		{"skew2.x", "0.211324865405187"},
		{"skew2.y", "0.366025403784439"},
		{"skew2.z", "-0.577350269189626"},
		{"grad2", "0.024390243902439"},
		{"scale2", "130.0"},
		{"falloff2", "0.5"},
		{"grad3", "0.142857142857"},
		{"grad3Sq", "49.0"},
		{"scale3", "42.0"},
		{"falloff3", "0.6"},
		{"cellK", "0.142857142857"},
		{"cellKo", "0.428571428571"},
		{"cellMod", "7.0"},
	}
}
