package noise

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/noisy/shader"
)

// The WGSL literals must round to the same float32 as the Go constants.
func TestConstantsMatchShader(t *testing.T) {
	values := map[string]float32{
		"ringSize":   ringSize,
		"permuteMul": 34,
		"invSqrtA":   invSqrtA,
		"invSqrtB":   invSqrtB,
		"skew2.x":    c2[0],
		"skew2.y":    c2[1],
		"skew2.z":    c2[2],
		"grad2":      c2[3],
		"scale2":     130,
		"falloff2":   0.5,
		"grad3":      1.0 / gradN,
		"grad3Sq":    gradN * gradN,
		"scale3":     42,
		"falloff3":   0.6,
		"cellK":      cellK,
		"cellKo":     cellKo,
		"cellMod":    7,
	}

	for _, c := range shader.Constants() {
		want, ok := values[c.Name]
		require.True(t, ok, "no Go value for %s", c.Name)

		lit, err := strconv.ParseFloat(c.Literal, 32)
		require.NoError(t, err)
		assert.Equal(t, want, float32(lit), c.Name)
	}
}
