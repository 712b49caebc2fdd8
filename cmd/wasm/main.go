//go:build js && wasm
// +build js,wasm

package main

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"syscall/js"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/MeKo-Tech/noisy/internal/field"
	"github.com/MeKo-Tech/noisy/noise"
	"github.com/MeKo-Tech/noisy/shader"
)

// FieldRequest asks for a whole sampled field from JS.
type FieldRequest struct {
	Params field.Params `json:"params"`
	Region string       `json:"region"`
	Width  int          `json:"width"`
	Height int          `json:"height"`
}

func argFloat(args []js.Value, i int, def float32) float32 {
	if i >= len(args) || args[i].IsUndefined() {
		return def
	}
	return float32(args[i].Float())
}

// simplex2d(x, y[, seed]) evaluates plain or seeded 2D simplex noise.
func simplex2d(this js.Value, args []js.Value) interface{} {
	v := mgl32.Vec2{argFloat(args, 0, 0), argFloat(args, 1, 0)}
	if len(args) > 2 {
		return noise.Simplex2DSeeded(v, argFloat(args, 2, 0))
	}
	return noise.Simplex2D(v)
}

// fbm2d(x, y[, octaves, lacunarity, gain]) evaluates 2D fbm.
func fbm2d(this js.Value, args []js.Value) interface{} {
	v := mgl32.Vec2{argFloat(args, 0, 0), argFloat(args, 1, 0)}
	octaves := uint(argFloat(args, 2, 5))
	return noise.FbmSimplex2D(v, octaves, argFloat(args, 3, 2), argFloat(args, 4, 0.5))
}

// worley2d(x, y[, jitter]) returns {f1, f2}.
func worley2d(this js.Value, args []js.Value) interface{} {
	v := mgl32.Vec2{argFloat(args, 0, 0), argFloat(args, 1, 0)}
	d := noise.Worley2D(v, argFloat(args, 2, 1))
	return map[string]interface{}{"f1": d[0], "f2": d[1]}
}

// sampleField(json) returns a Float32Array of width*height values, row 0 at
// the top of the region.
func sampleField(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return map[string]interface{}{"error": "missing arguments"}
	}

	req := FieldRequest{Params: field.DefaultParams(), Region: field.DefaultRegion.String()}
	if err := json.Unmarshal([]byte(args[0].String()), &req); err != nil {
		return map[string]interface{}{"error": fmt.Sprintf("failed to parse request: %v", err)}
	}
	region, err := field.ParseRegion(req.Region)
	if err != nil {
		return map[string]interface{}{"error": fmt.Sprintf("invalid region: %v", err)}
	}

	grid, err := field.Sample(context.Background(), req.Params, region, req.Width, req.Height, 1)
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}

	buf := make([]byte, 4*len(grid.Values))
	for i, v := range grid.Values {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	bytes := js.Global().Get("Uint8Array").New(len(buf))
	js.CopyBytesToJS(bytes, buf)
	return js.Global().Get("Float32Array").New(bytes.Get("buffer"))
}

func shaderSource(this js.Value, args []js.Value) interface{} {
	return shader.Source()
}

func main() {
	c := make(chan struct{})

	js.Global().Set("noisySimplex2d", js.FuncOf(simplex2d))
	js.Global().Set("noisyFbm2d", js.FuncOf(fbm2d))
	js.Global().Set("noisyWorley2d", js.FuncOf(worley2d))
	js.Global().Set("noisySampleField", js.FuncOf(sampleField))
	js.Global().Set("noisyShaderSource", js.FuncOf(shaderSource))

	fmt.Println("noisy WASM module loaded")
	<-c
}
