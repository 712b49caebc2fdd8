package cmd

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/noisy/internal/field"
	"github.com/MeKo-Tech/noisy/internal/raster"
	"github.com/MeKo-Tech/noisy/internal/worker"
)

// imageOptions are the rendering settings shared by render and bake.
type imageOptions struct {
	Region      field.Region
	Width       int
	Height      int
	Mode        string // empty picks the natural mode for the kind
	Ramp        string
	Filters     raster.Filters
	Supersample int
	Progress    bool
}

// addImageFlags registers the rendering flags of cmd under prefix in viper.
func addImageFlags(cmd *cobra.Command, prefix string) {
	flags := cmd.Flags()
	flags.String("region", field.DefaultRegion.String(), "Noise domain to render: minX,minY,maxX,maxY")
	flags.Int("width", 512, "Image width in pixels")
	flags.Int("height", 512, "Image height in pixels")
	flags.String("normalize", "", "Value mapping: signed, unit or auto (default depends on kind)")
	flags.String("ramp", "", fmt.Sprintf("Colour ramp (%v); empty writes a 16-bit heightmap", raster.RampNames()))
	flags.Float32("blur", 0, "Gaussian blur sigma in pixels")
	flags.Float32("contrast", 0, "Contrast adjustment in percent (-100..100)")
	flags.Float32("gamma", 1, "Gamma correction")
	flags.Float32("threshold", 0, "Threshold in percent; produces a binary mask")
	flags.Bool("invert", false, "Invert the image")
	flags.Int("supersample", 1, "Render at this multiple of the size and downsample")
	flags.Bool("progress", false, "Show a progress bar while sampling")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{prefix + ".region", "region"},
		{prefix + ".width", "width"},
		{prefix + ".height", "height"},
		{prefix + ".normalize", "normalize"},
		{prefix + ".ramp", "ramp"},
		{prefix + ".blur", "blur"},
		{prefix + ".contrast", "contrast"},
		{prefix + ".gamma", "gamma"},
		{prefix + ".threshold", "threshold"},
		{prefix + ".invert", "invert"},
		{prefix + ".supersample", "supersample"},
		{prefix + ".progress", "progress"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, flags.Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

// readImageOptions reads the settings registered by addImageFlags.
func readImageOptions(prefix string) (imageOptions, error) {
	region, err := field.ParseRegion(viper.GetString(prefix + ".region"))
	if err != nil {
		return imageOptions{}, fmt.Errorf("invalid region: %w", err)
	}

	opts := imageOptions{
		Region: region,
		Width:  viper.GetInt(prefix + ".width"),
		Height: viper.GetInt(prefix + ".height"),
		Mode:   viper.GetString(prefix + ".normalize"),
		Ramp:   viper.GetString(prefix + ".ramp"),
		Filters: raster.Filters{
			Blur:      float32(viper.GetFloat64(prefix + ".blur")),
			Contrast:  float32(viper.GetFloat64(prefix + ".contrast")),
			Gamma:     float32(viper.GetFloat64(prefix + ".gamma")),
			Threshold: float32(viper.GetFloat64(prefix + ".threshold")),
			Invert:    viper.GetBool(prefix + ".invert"),
		},
		Supersample: viper.GetInt(prefix + ".supersample"),
		Progress:    viper.GetBool(prefix + ".progress"),
	}

	if opts.Width <= 0 || opts.Height <= 0 {
		return imageOptions{}, fmt.Errorf("invalid size %dx%d", opts.Width, opts.Height)
	}
	if opts.Supersample < 1 || opts.Supersample > 8 {
		return imageOptions{}, fmt.Errorf("supersample must be in [1, 8], got %d", opts.Supersample)
	}
	return opts, nil
}

// renderImage samples params over the options' region and turns the grid
// into an image.
func renderImage(ctx context.Context, params field.Params, opts imageOptions, workers int) (image.Image, error) {
	mode := raster.ModeFor(params.Kind)
	if opts.Mode != "" {
		m, err := raster.ParseMode(opts.Mode)
		if err != nil {
			return nil, err
		}
		mode = m
	}

	w, h := opts.Width*opts.Supersample, opts.Height*opts.Supersample

	var progress *worker.Progress
	sampleOpts := field.Options{Workers: workers, Logger: logger}
	if opts.Progress {
		progress = worker.NewProgress(os.Stderr, w, h)
		sampleOpts.OnProgress = progress.Callback()
	}

	grid, err := field.SampleWith(ctx, params, opts.Region, w, h, sampleOpts)
	if progress != nil {
		progress.Done()
		st := progress.Stats()
		logger.Debug("sampled field", "rows", st.Rows, "failed", st.Failed, "elapsed", st.Elapsed, "px_per_sec", int(st.PixelRate()))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to sample %s: %w", params.Kind, err)
	}

	img, err := raster.Render(grid, mode, opts.Ramp)
	if err != nil {
		return nil, err
	}
	img = opts.Filters.Apply(img)
	if opts.Supersample > 1 {
		img = raster.Downsample(img, opts.Width, opts.Height)
	}
	return img, nil
}
