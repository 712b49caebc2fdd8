// Package assets embeds files shipped with the module.
package assets

import _ "embed"

// NoisePrelude is the WGSL source of the noise prelude.
//
//go:embed shaders/noise_prelude.wgsl
var NoisePrelude string
