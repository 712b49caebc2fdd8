package field

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/MeKo-Tech/noisy/internal/worker"
)

// DefaultBandRows is the number of rows handed to a worker at once.
const DefaultBandRows = 16

// Options tune Sample.
type Options struct {
	Workers    int
	BandRows   int
	OnProgress worker.ProgressFunc
	Logger     *slog.Logger
}

// Sample evaluates params over region on a w x h grid of pixel centres.
func Sample(ctx context.Context, params Params, region Region, w, h, workers int) (*Grid, error) {
	return SampleWith(ctx, params, region, w, h, Options{Workers: workers})
}

// SampleWith is Sample with progress reporting and tuning options.
func SampleWith(ctx context.Context, params Params, region Region, w, h int, opts Options) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", w, h)
	}
	if region.Empty() {
		return nil, fmt.Errorf("empty region %s", region)
	}
	fn, err := params.Func()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	band := opts.BandRows
	if band <= 0 {
		band = DefaultBandRows
	}

	sampler := worker.SamplerFunc(func(ctx context.Context, y0, y1 int) ([]float32, error) {
		values := make([]float32, 0, (y1-y0)*w)
		for j := y0; j < y1; j++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for i := range w {
				values = append(values, fn(region.Pixel(i, j, w, h)))
			}
		}
		return values, nil
	})

	start := time.Now()
	pool := worker.New(worker.Config{
		Workers:    opts.Workers,
		Sampler:    sampler,
		OnProgress: opts.OnProgress,
	})
	results := pool.Run(ctx, worker.SplitRows(h, band))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b worker.Result) int { return a.Task.Y0 - b.Task.Y0 })

	grid := NewGrid(w, h)
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("failed to sample rows %d-%d: %w", r.Task.Y0, r.Task.Y1, r.Err))
			continue
		}
		copy(grid.Values[r.Task.Y0*w:r.Task.Y1*w], r.Values)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	stats := grid.Stats()
	logger.Debug("sampled field",
		"kind", params.Kind,
		"region", region.String(),
		"size", fmt.Sprintf("%dx%d", w, h),
		"min", stats.Min,
		"max", stats.Max,
		"elapsed", time.Since(start))

	return grid, nil
}
