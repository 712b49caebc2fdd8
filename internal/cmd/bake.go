package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/noisy/internal/bakestore"
	"github.com/MeKo-Tech/noisy/internal/field"
	"github.com/MeKo-Tech/noisy/internal/raster"
	"github.com/MeKo-Tech/noisy/internal/tile"
)

var bakeCmd = &cobra.Command{
	Use:   "bake",
	Short: "Render a noise field into a bake store",
	Long: `Render the configured noise kind and store the encoded image, together with
the parameters that produced it, in a SQLite bake store.

With --pyramid-zoom N the region is also cut into a tile pyramid for zoom
levels 0..N, stored as <name>@z{z}_x{x}_y{y}, each tile --width x --height.`,
	RunE: runBake,
}

func init() {
	rootCmd.AddCommand(bakeCmd)

	addImageFlags(bakeCmd, "bake")
	bakeCmd.Flags().String("name", "", "Bake name (required)")
	bakeCmd.Flags().String("db", "bakes.db", "Bake store path")
	bakeCmd.Flags().String("format", "png", "Stored format: png or tiff")
	bakeCmd.Flags().String("description", "", "Store description written on creation")
	bakeCmd.Flags().Int("pyramid-zoom", -1, "Also bake tiles up to this zoom level (-1 disables)")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"bake.name", "name"},
		{"bake.db", "db"},
		{"bake.format", "format"},
		{"bake.description", "description"},
		{"bake.pyramid_zoom", "pyramid-zoom"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, bakeCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runBake(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	name := viper.GetString("bake.name")
	if name == "" {
		return fmt.Errorf("--name is required")
	}
	maxZoom := viper.GetInt("bake.pyramid_zoom")
	if maxZoom > tile.MaxZoom {
		return fmt.Errorf("--pyramid-zoom must be at most %d, got %d", tile.MaxZoom, maxZoom)
	}

	params, err := loadParams()
	if err != nil {
		return err
	}
	opts, err := readImageOptions("bake")
	if err != nil {
		return err
	}
	format, err := raster.ParseFormat(viper.GetString("bake.format"))
	if err != nil {
		return err
	}

	dbPath := viper.GetString("bake.db")
	w, err := bakestore.New(dbPath, bakestore.Metadata{
		Name:        "noisy bakes",
		Description: viper.GetString("bake.description"),
		Version:     "1",
		Generator:   "noisy",
	})
	if err != nil {
		return fmt.Errorf("failed to open bake store: %w", err)
	}
	defer w.Close()

	ctx, cancel := signalContext()
	defer cancel()

	b := baker{
		writer:  w,
		params:  params,
		format:  format,
		workers: viper.GetInt("workers"),
	}

	start := time.Now()
	if err := b.bake(ctx, name, opts); err != nil {
		return err
	}
	count := 1

	if maxZoom >= 0 {
		n, err := b.bakePyramid(ctx, name, opts, uint32(maxZoom))
		if err != nil {
			return err
		}
		count += n
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close bake store: %w", err)
	}

	logger.Info("Bake complete", "name", name, "db", dbPath, "images", count, "ms", time.Since(start).Milliseconds())
	return nil
}

// baker renders images and hands them to a bake store writer.
type baker struct {
	writer  *bakestore.Writer
	params  field.Params
	format  raster.Format
	workers int
}

func (b baker) bake(ctx context.Context, name string, opts imageOptions) error {
	img, err := renderImage(ctx, b.params, opts, b.workers)
	if err != nil {
		return err
	}
	data, err := raster.EncodeBytes(img, b.format, raster.EncodeOptions{})
	if err != nil {
		return err
	}
	paramsJSON, err := json.Marshal(b.params)
	if err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}

	if err := b.writer.Put(bakestore.Bake{
		Name:   name,
		Kind:   string(b.params.Kind),
		Params: paramsJSON,
		Region: opts.Region.String(),
		Width:  opts.Width,
		Height: opts.Height,
		Format: string(b.format),
		Data:   data,
	}); err != nil {
		return fmt.Errorf("failed to store bake %q: %w", name, err)
	}

	logger.Debug("Baked", "name", name, "region", opts.Region.String(), "bytes", len(data))
	return nil
}

// bakePyramid bakes every tile of zoom levels 0..maxZoom over opts.Region.
func (b baker) bakePyramid(ctx context.Context, name string, opts imageOptions, maxZoom uint32) (int, error) {
	world := opts.Region.Bound
	tileOpts := opts
	tileOpts.Progress = false

	count := 0
	for z := uint32(0); z <= maxZoom; z++ {
		var bakeErr error
		r := tile.FullRange(z)
		logger.Info("Baking tile level", "name", name, "zoom", z, "tiles", r.Count())

		r.ForEach(func(c tile.Coords) {
			if bakeErr != nil {
				return
			}
			tileOpts.Region = field.Region{Bound: c.Bound(world)}
			bakeErr = b.bake(ctx, pyramidName(name, c), tileOpts)
		})
		if bakeErr != nil {
			return count, bakeErr
		}
		count += r.Count()
	}
	return count, nil
}

func pyramidName(name string, c tile.Coords) string {
	return name + "@" + c.String()
}
