package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/noisy/internal/raster"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a noise field to an image file",
	Long: `Render the configured noise kind over a region of the noise domain and
write it as PNG or TIFF. Without --ramp a 16-bit grayscale heightmap is written.`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	addImageFlags(renderCmd, "render")
	renderCmd.Flags().StringP("output", "o", "noise.png", "Output file; the extension picks the format unless --format is set")
	renderCmd.Flags().String("format", "", "Output format: png or tiff")
	renderCmd.Flags().String("png-compression", "default", "PNG compression (default, speed, best, none)")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"render.output", "output"},
		{"render.format", "format"},
		{"render.png_compression", "png-compression"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, renderCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	params, err := loadParams()
	if err != nil {
		return err
	}
	opts, err := readImageOptions("render")
	if err != nil {
		return err
	}

	output := viper.GetString("render.output")
	format, err := outputFormat(viper.GetString("render.format"), output)
	if err != nil {
		return err
	}
	encOpts := raster.EncodeOptions{PNGCompression: viper.GetString("render.png_compression")}
	if _, err := raster.ParsePNGCompression(encOpts.PNGCompression); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("Rendering field",
		"kind", params.Kind,
		"region", opts.Region.String(),
		"size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"supersample", opts.Supersample,
		"output", output,
	)

	start := time.Now()
	img, err := renderImage(ctx, params, opts, viper.GetInt("workers"))
	if err != nil {
		return err
	}
	if err := raster.WriteFile(output, img, format, encOpts); err != nil {
		return err
	}

	logger.Info("Image written", "path", output, "format", format, "ms", time.Since(start).Milliseconds())
	return nil
}

// outputFormat uses an explicit format name or falls back to the file
// extension.
func outputFormat(name, path string) (raster.Format, error) {
	if name != "" {
		return raster.ParseFormat(name)
	}
	format, err := raster.FormatForPath(path)
	if err != nil {
		return "", fmt.Errorf("cannot infer format from %q: %w", path, err)
	}
	return format, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
