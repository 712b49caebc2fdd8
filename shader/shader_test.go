package shader

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_DeclaresEveryFunction(t *testing.T) {
	src := Source()
	require.NotEmpty(t, src)

	for _, name := range []string{
		"fn permute_3(",
		"fn permute_4(",
		"fn taylor_inv_sqrt_4(",
		"fn simplex_noise_2d(",
		"fn simplex_noise_2d_seeded(",
		"fn simplex_noise_3d(",
		"fn simplex_noise_3d_canonical(",
		"fn fbm_simplex_2d(",
		"fn fbm_simplex_2d_seeded(",
		"fn fbm_simplex_3d(",
		"fn fbm_simplex_2d_warp_seeded(",
		"fn worley_2d(",
		"struct WarpResult {",
	} {
		assert.Contains(t, src, name)
	}
}

// entry points are called by shader code importing the prelude; everything
// else is a helper and must be called from inside it
var entryPoints = map[string]bool{
	"simplex_noise_2d":           true,
	"simplex_noise_2d_seeded":    true,
	"simplex_noise_3d":           true,
	"simplex_noise_3d_canonical": true,
	"fbm_simplex_2d":             true,
	"fbm_simplex_2d_seeded":      true,
	"fbm_simplex_3d":             true,
	"fbm_simplex_2d_warp_seeded": true,
	"worley_2d":                  true,
}

func TestSource_NoUnusedHelpers(t *testing.T) {
	src := Source()
	decls := regexp.MustCompile(`(?m)^fn ([a-z0-9_]+)\(`).FindAllStringSubmatch(src, -1)
	require.NotEmpty(t, decls)

	for _, d := range decls {
		name := d[1]
		if entryPoints[name] {
			continue
		}
		calls := regexp.MustCompile(`\b`+name+`\(`).FindAllStringIndex(src, -1)
		assert.Greater(t, len(calls), 1, "helper %s is declared but never called", name)
	}
}

func TestSource_Simplex3DGradientLanes(t *testing.T) {
	src := Source()
	assert.Contains(t, src, "select(vec4(x.w, x.w, y.z, y.w), vec4(x.zw, y.zw), canonical)")
	assert.Contains(t, src, "return simplex_3d_core(v, false);")
	assert.Contains(t, src, "return simplex_3d_core(v, true);")
}

func TestConstants_AppearInSource(t *testing.T) {
	src := Source()
	for _, c := range Constants() {
		assert.True(t, strings.Contains(src, c.Literal), "%s (%s) missing from prelude", c.Name, c.Literal)
	}
}

func TestRegister_Once(t *testing.T) {
	reg := NewMapRegistry()

	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
	assert.Equal(t, 1, reg.Len())

	src, ok := reg.Lookup(ImportPath)
	require.True(t, ok)
	assert.Equal(t, Source(), src)
}

func TestRegister_SeparateRegistries(t *testing.T) {
	a, b := NewMapRegistry(), NewMapRegistry()
	require.NoError(t, Register(a))
	require.NoError(t, Register(b))

	_, ok := b.Lookup(ImportPath)
	assert.True(t, ok)
}

type failingRegistry struct {
	calls int
	err   error
}

func (f *failingRegistry) AddShaderSource(string, string) error {
	f.calls++
	return f.err
}

func TestRegister_WrapsError(t *testing.T) {
	errBoom := errors.New("boom")
	reg := &failingRegistry{err: errBoom}

	err := Register(reg)
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), ImportPath)

	// a failed registration can be retried
	reg.err = nil
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
	assert.Equal(t, 2, reg.calls)
}

func TestMapRegistry_Conflict(t *testing.T) {
	reg := NewMapRegistry()
	require.NoError(t, reg.AddShaderSource("a", "x"))
	require.NoError(t, reg.AddShaderSource("a", "x"))
	assert.Error(t, reg.AddShaderSource("a", "y"))
}
