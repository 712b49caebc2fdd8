package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/noisy/internal/bakestore"
	"github.com/MeKo-Tech/noisy/internal/field"
	"github.com/MeKo-Tech/noisy/internal/raster"
	"github.com/MeKo-Tech/noisy/internal/snapshot"
	"github.com/MeKo-Tech/noisy/shader"
)

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		path    string
		want    raster.Format
		wantErr bool
	}{
		{name: "from extension", path: "out/noise.png", want: raster.PNG},
		{name: "tif extension", path: "height.tif", want: raster.TIFF},
		{name: "explicit wins", format: "tiff", path: "noise.png", want: raster.TIFF},
		{name: "unknown extension", path: "noise.jpg", wantErr: true},
		{name: "no extension", path: "noise", wantErr: true},
		{name: "unknown explicit", format: "bmp", path: "noise.png", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := outputFormat(tt.format, tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadParams(t *testing.T) {
	params, err := loadParams()
	require.NoError(t, err)
	assert.Equal(t, field.DefaultParams(), params)

	flags := rootCmd.PersistentFlags()
	require.NoError(t, flags.Set("octaves", "3"))
	require.NoError(t, flags.Set("kind", "Worley-F1"))
	t.Cleanup(func() {
		_ = flags.Set("octaves", "5")
		_ = flags.Set("kind", string(field.Fbm2D))
	})

	params, err = loadParams()
	require.NoError(t, err)
	assert.EqualValues(t, 3, params.Octaves)
	assert.Equal(t, field.WorleyF1, params.Kind)

	require.NoError(t, flags.Set("kind", "perlin"))
	_, err = loadParams()
	assert.ErrorIs(t, err, field.ErrUnknownKind)
}

func TestSamplePoint(t *testing.T) {
	params := field.DefaultParams()

	report, err := samplePoint(params, 0.3, -0.7)
	require.NoError(t, err)
	assert.InDelta(t, -0.16370612, report.Value, 1e-5)
	assert.Nil(t, report.Distances)
	assert.Nil(t, report.Iterations)

	params.Kind = field.WorleyEdge
	report, err = samplePoint(params, 0.5, 0.5)
	require.NoError(t, err)
	require.NotNil(t, report.Distances)
	assert.InDelta(t, report.Distances[1]-report.Distances[0], report.Value, 1e-6)

	params.Kind = field.Warp2D
	params.WarpIterations = 6
	report, err = samplePoint(params, 0.1, 0.2)
	require.NoError(t, err)
	require.NotNil(t, report.Iterations)
	assert.EqualValues(t, 6, *report.Iterations)
	assert.Len(t, report.Positions, 4)

	params.WarpIterations = 2
	report, err = samplePoint(params, 0.1, 0.2)
	require.NoError(t, err)
	assert.Len(t, report.Positions, 2)

	params.Kind = "perlin"
	_, err = samplePoint(params, 0, 0)
	assert.ErrorIs(t, err, field.ErrUnknownKind)
}

func TestPrintSample(t *testing.T) {
	iterations := uint(1)
	var buf bytes.Buffer
	printSample(&buf, sampleReport{
		Kind:       field.Warp2D,
		X:          0.5,
		Y:          -1,
		Value:      0.25,
		Positions:  [][2]float32{{1.5, 2}},
		Iterations: &iterations,
	})

	out := buf.String()
	assert.Contains(t, out, "warp2d(0.5, -1) = 0.25\n")
	assert.Contains(t, out, "iterations = 1\n")
	assert.Contains(t, out, "positions[0] = (1.5, 2)\n")
}

func TestRenderImage(t *testing.T) {
	params := field.DefaultParams()
	params.Kind = field.Simplex2D
	opts := imageOptions{
		Region:      field.DefaultRegion,
		Width:       8,
		Height:      4,
		Supersample: 2,
	}

	img, err := renderImage(context.Background(), params, opts, 2)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())
	assert.IsType(t, &image.Gray16{}, img)

	opts.Ramp = "terrain"
	opts.Supersample = 1
	opts.Filters = raster.Filters{Blur: 1}
	img, err = renderImage(context.Background(), params, opts, 2)
	require.NoError(t, err)
	assert.IsType(t, &image.NRGBA{}, img)

	opts.Mode = "log"
	_, err = renderImage(context.Background(), params, opts, 2)
	assert.Error(t, err)
}

func TestBakerPyramid(t *testing.T) {
	initLogging()
	dbPath := filepath.Join(t.TempDir(), "bakes.db")
	w, err := bakestore.New(dbPath, bakestore.Metadata{Name: "test"})
	require.NoError(t, err)

	params := field.DefaultParams()
	b := baker{writer: w, params: params, format: raster.PNG, workers: 1}
	opts := imageOptions{Region: field.NewRegion(-1, -1, 1, 1), Width: 8, Height: 8, Supersample: 1}

	require.NoError(t, b.bake(context.Background(), "dunes", opts))
	n, err := b.bakePyramid(context.Background(), "dunes", opts, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	require.NoError(t, w.Close())

	r, err := bakestore.OpenReader(dbPath)
	require.NoError(t, err)
	defer r.Close()

	entries, err := r.List()
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	assert.Equal(t, []string{
		"dunes",
		"dunes@z0_x0_y0",
		"dunes@z1_x0_y0",
		"dunes@z1_x0_y1",
		"dunes@z1_x1_y0",
		"dunes@z1_x1_y1",
	}, names)

	tileBake, err := r.Get("dunes@z1_x1_y0")
	require.NoError(t, err)
	assert.Equal(t, "0,0,1,1", tileBake.Region)

	var stored field.Params
	require.NoError(t, json.Unmarshal(tileBake.Params, &stored))
	assert.Equal(t, params, stored)

	// z0 covers the whole region, so it matches the plain bake
	whole, err := r.Get("dunes")
	require.NoError(t, err)
	root, err := r.Get("dunes@z0_x0_y0")
	require.NoError(t, err)
	assert.Equal(t, whole.Data, root.Data)
}

func TestSelectSets(t *testing.T) {
	all, err := selectSets(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(snapshot.Sets()))

	some, err := selectSets([]string{"fbm2d", "simplex3d"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "fbm2d", some[0].Name)

	_, err = selectSets([]string{"perlin"})
	assert.Error(t, err)
}

func TestSnapshotVerifyAgainstRepoGoldens(t *testing.T) {
	sets, err := selectSets([]string{"simplex2d", "worley2d_f1"})
	require.NoError(t, err)

	var out bytes.Buffer
	err = verifySnapshots(&out, sets, filepath.Join("..", "..", "testdata", "golden", "noise"), snapshot.DefaultTolerance)
	require.NoError(t, err, out.String())
	assert.Contains(t, out.String(), "ok   simplex2d (1600 values)")
}

func TestSnapshotUpdateThenVerify(t *testing.T) {
	dir := t.TempDir()
	sets, err := selectSets([]string{"simplex3d"})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, updateSnapshots(&out, sets, dir))
	assert.Contains(t, out.String(), "wrote ")
	require.NoError(t, verifySnapshots(&out, sets, dir, snapshot.DefaultTolerance))

	values := sets[0].Sample()
	values[0] += 1
	require.NoError(t, snapshot.Save(dir, "simplex3d", values))

	out.Reset()
	err = verifySnapshots(&out, sets, dir, snapshot.DefaultTolerance)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "FAIL simplex3d: 1 of 1000 values differ")

	out.Reset()
	err = verifySnapshots(&out, []snapshot.Set{sets[0]}, filepath.Join(dir, "missing"), snapshot.DefaultTolerance)
	assert.Error(t, err)
	assert.True(t, strings.HasPrefix(out.String(), "FAIL simplex3d"))
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestCommandsEndToEnd(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "bakes.db")

	execute(t, "bake", "--db", dbPath, "--name", "cells", "--kind", "worley-f1",
		"--width", "16", "--height", "8", "--region", "0,0,2,1", "--format", "tiff")

	list := execute(t, "list", "--db", dbPath)
	assert.Contains(t, list, "NAME")
	assert.Contains(t, list, "cells")
	assert.Contains(t, list, "worley-f1")
	assert.Contains(t, list, "16x8")

	pngPath := filepath.Join(dir, "out", "cells.png")
	execute(t, "export", "--db", dbPath, "--name", "cells", "--output", pngPath)
	f, err := os.Open(pngPath)
	require.NoError(t, err)
	img, err := raster.Decode(f, raster.PNG)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())

	renderPath := filepath.Join(dir, "render.png")
	execute(t, "render", "--kind", "fbm2d", "--width", "8", "--height", "8", "--ramp", "heat", "--output", renderPath)
	_, err = os.Stat(renderPath)
	require.NoError(t, err)

	shaderPath := filepath.Join(dir, "noisy.wgsl")
	execute(t, "shader", "--output", shaderPath)
	data, err := os.ReadFile(shaderPath)
	require.NoError(t, err)
	assert.Equal(t, shader.Source(), string(data))

	execute(t, "delete", "--db", dbPath, "cells")
	list = execute(t, "list", "--db", dbPath)
	assert.NotContains(t, list, "cells")
}
