package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/noisy/internal/field"
	"github.com/MeKo-Tech/noisy/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve noise previews, map tiles and stored bakes",
	Long: `Serve on-demand previews (/preview/{kind}.png), slippy-map tiles over a
world region (/tiles/{kind}/{z}/{x}/{y}.png), stored bakes (/bakes/{name}.png)
and the WGSL prelude (/shader/noisy.wgsl). The field flags set the defaults
that query parameters override.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().String("db", "", "Bake store to serve under /bakes/ (optional)")
	serveCmd.Flags().String("world", field.DefaultRegion.String(), "Noise region covered by tile 0/0/0")
	serveCmd.Flags().Int("max-concurrent-renders", runtime.NumCPU(), "Max concurrent renders")
	serveCmd.Flags().Duration("render-timeout", 30*time.Second, "Timeout per render")
	serveCmd.Flags().String("cache-control", "no-store", "Cache-Control header for rendered images")
	serveCmd.Flags().Int("tile-size", 256, "Tile size in pixels (@2x requests render twice that)")
	serveCmd.Flags().Int("max-size", 2048, "Largest preview width or height")
	serveCmd.Flags().String("png-compression", "speed", "PNG compression (default, speed, best, none)")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"serve.addr", "addr"},
		{"serve.db", "db"},
		{"serve.world", "world"},
		{"serve.max_concurrent_renders", "max-concurrent-renders"},
		{"serve.render_timeout", "render-timeout"},
		{"serve.cache_control", "cache-control"},
		{"serve.tile_size", "tile-size"},
		{"serve.max_size", "max-size"},
		{"serve.png_compression", "png-compression"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, serveCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	params, err := loadParams()
	if err != nil {
		return err
	}
	world, err := field.ParseRegion(viper.GetString("serve.world"))
	if err != nil {
		return fmt.Errorf("invalid world region: %w", err)
	}

	addr := viper.GetString("serve.addr")
	dbPath := viper.GetString("serve.db")
	maxConc := viper.GetInt("serve.max_concurrent_renders")

	s, err := server.New(server.Config{
		Preview: server.PreviewConfig{
			Defaults:             params,
			World:                world,
			PNGCompression:       viper.GetString("serve.png_compression"),
			CacheControl:         viper.GetString("serve.cache_control"),
			TileSize:             viper.GetInt("serve.tile_size"),
			MaxSize:              viper.GetInt("serve.max_size"),
			Workers:              viper.GetInt("workers"),
			MaxConcurrentRenders: maxConc,
			RenderTimeout:        viper.GetDuration("serve.render_timeout"),
		},
		BakeStorePath: dbPath,
	}, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	logger.Info("noise server listening",
		"addr", addr,
		"db", dbPath,
		"world", world.String(),
		"default_kind", params.Kind,
		"max_concurrent_renders", maxConc,
	)

	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	ctx, cancel := signalContext()
	defer cancel()
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
