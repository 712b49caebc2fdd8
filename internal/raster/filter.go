package raster

import (
	"image"
	"image/draw"

	"github.com/disintegration/gift"
	xdraw "golang.org/x/image/draw"
)

// Filters are optional post-processing steps. Zero values disable a step.
type Filters struct {
	Blur      float32 // Gaussian sigma in pixels
	Contrast  float32 // percent, -100..100
	Gamma     float32 // 1 leaves the image unchanged
	Threshold float32 // percent; > 0 produces a binary mask
	Invert    bool
}

// Empty reports whether no filter is enabled.
func (f Filters) Empty() bool {
	return f.Blur <= 0 && f.Contrast == 0 && (f.Gamma == 0 || f.Gamma == 1) && f.Threshold <= 0 && !f.Invert
}

func (f Filters) gift() *gift.GIFT {
	g := gift.New()
	if f.Blur > 0 {
		g.Add(gift.GaussianBlur(f.Blur))
	}
	if f.Contrast != 0 {
		g.Add(gift.Contrast(f.Contrast))
	}
	if f.Gamma > 0 && f.Gamma != 1 {
		g.Add(gift.Gamma(f.Gamma))
	}
	if f.Threshold > 0 {
		g.Add(gift.Threshold(f.Threshold))
	}
	if f.Invert {
		g.Add(gift.Invert())
	}
	return g
}

// Apply runs the enabled filters over img. The result keeps the pixel type
// of img for Gray, Gray16 and NRGBA sources so heightmaps keep their depth.
func (f Filters) Apply(img image.Image) image.Image {
	if f.Empty() {
		return img
	}

	g := f.gift()
	bounds := g.Bounds(img.Bounds())

	var dst draw.Image
	switch img.(type) {
	case *image.Gray:
		dst = image.NewGray(bounds)
	case *image.Gray16:
		dst = image.NewGray16(bounds)
	default:
		dst = image.NewNRGBA(bounds)
	}
	g.Draw(dst, img)
	return dst
}

// Downsample scales img to w x h with Catmull-Rom filtering. Rendering at a
// multiple of the output size and downsampling smooths high-frequency noise.
func Downsample(img image.Image, w, h int) image.Image {
	if b := img.Bounds(); b.Dx() == w && b.Dy() == h {
		return img
	}

	rect := image.Rect(0, 0, w, h)
	var dst draw.Image
	switch img.(type) {
	case *image.Gray:
		dst = image.NewGray(rect)
	case *image.Gray16:
		dst = image.NewGray16(rect)
	default:
		dst = image.NewNRGBA(rect)
	}
	xdraw.CatmullRom.Scale(dst, rect, img, img.Bounds(), xdraw.Src, nil)
	return dst
}
