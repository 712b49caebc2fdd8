package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MeKo-Tech/noisy/internal/field"
	"github.com/MeKo-Tech/noisy/internal/raster"
	"github.com/MeKo-Tech/noisy/internal/tile"
)

// PreviewConfig configures on-demand rendering.
type PreviewConfig struct {
	Defaults             field.Params
	World                field.Region // area covered by tile z0_x0_y0
	PNGCompression       string
	CacheControl         string
	TileSize             int
	DefaultSize          int
	MaxSize              int // largest width or height a request may ask for
	Workers              int // sampling workers per render
	MaxConcurrentRenders int
	RenderTimeout        time.Duration
}

// Preview renders noise fields on request.
type Preview struct {
	logger *slog.Logger
	sem    chan struct{}
	cfg    PreviewConfig

	// Status tracking for renders
	activeRenders  atomic.Int32
	totalRendered  atomic.Int64
	totalFailed    atomic.Int64
	currentRenders sync.Map // map[string]time.Time - render key -> start time

	// Queue tracking - renders waiting for semaphore
	queuedRenders atomic.Int32
	queuedKeys    sync.Map // map[string]time.Time - render key -> queue time
}

// RenderStatus contains current render operation status.
type RenderStatus struct {
	ActiveRenders  int      `json:"active_renders"`
	TotalRendered  int64    `json:"total_rendered"`
	TotalFailed    int64    `json:"total_failed"`
	CurrentRenders []string `json:"current_renders"`
	MaxConcurrent  int      `json:"max_concurrent"`
	QueuedRenders  int      `json:"queued_renders"`
	QueuedKeys     []string `json:"queued_keys"`
}

// style collects the per-request image settings.
type style struct {
	mode    raster.Mode
	ramp    string
	filters raster.Filters
	format  raster.Format
}

// request is a parsed preview or tile request.
type request struct {
	key    string
	params field.Params
	region field.Region
	width  int
	height int
	style  style
}

// NewPreview applies defaults to cfg and returns a ready Preview.
func NewPreview(cfg PreviewConfig, logger *slog.Logger) *Preview {
	if cfg.Defaults.Kind == "" {
		cfg.Defaults = field.DefaultParams()
	}
	if cfg.World.Empty() {
		cfg.World = field.DefaultRegion
	}
	if cfg.TileSize <= 0 {
		cfg.TileSize = 256
	}
	if cfg.DefaultSize <= 0 {
		cfg.DefaultSize = 256
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 2048
	}
	if cfg.MaxConcurrentRenders <= 0 {
		cfg.MaxConcurrentRenders = 1
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = 30 * time.Second
	}
	if cfg.CacheControl == "" {
		cfg.CacheControl = "no-store"
	}

	return &Preview{
		cfg:    cfg,
		logger: logger,
		sem:    make(chan struct{}, cfg.MaxConcurrentRenders),
	}
}

// Status returns the current render status.
func (p *Preview) Status() RenderStatus {
	current := []string{}
	p.currentRenders.Range(func(key, _ any) bool {
		current = append(current, key.(string))
		return true
	})

	queued := []string{}
	p.queuedKeys.Range(func(key, _ any) bool {
		queued = append(queued, key.(string))
		return true
	})

	return RenderStatus{
		ActiveRenders:  int(p.activeRenders.Load()),
		TotalRendered:  p.totalRendered.Load(),
		TotalFailed:    p.totalFailed.Load(),
		CurrentRenders: current,
		MaxConcurrent:  p.cfg.MaxConcurrentRenders,
		QueuedRenders:  int(p.queuedRenders.Load()),
		QueuedKeys:     queued,
	}
}

// StatusHandler returns an HTTP handler for the status endpoint (JSON).
func (p *Preview) StatusHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		if err := json.NewEncoder(w).Encode(p.Status()); err != nil {
			p.log().Error("failed to encode status", "error", err)
			http.Error(w, "failed to encode status", http.StatusInternalServerError)
			return
		}
	})
}

// StatusStreamHandler pushes the status as Server-Sent Events until the
// client goes away.
func (p *Preview) StatusStreamHandler(interval time.Duration) http.Handler {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "SSE not supported", http.StatusInternalServerError)
			return
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		p.sendStatusEvent(w, flusher)
		for {
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
				p.sendStatusEvent(w, flusher)
			}
		}
	})
}

func (p *Preview) sendStatusEvent(w http.ResponseWriter, flusher http.Flusher) {
	data, err := json.Marshal(p.Status())
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

// Handler serves /preview/{kind}.{png|tiff}.
func (p *Preview) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := p.parsePreview(r.URL)
		if err != nil {
			writeRequestError(w, r, err)
			return
		}
		p.serve(w, r, req)
	})
}

// TileHandler serves /tiles/{kind}/{z}/{x}/{y}.png and @2x variants over
// the configured world region.
func (p *Preview) TileHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := p.parseTile(r.URL)
		if err != nil {
			writeRequestError(w, r, err)
			return
		}
		p.serve(w, r, req)
	})
}

func (p *Preview) serve(w http.ResponseWriter, r *http.Request, req request) {
	p.queuedRenders.Add(1)
	p.queuedKeys.Store(req.key, time.Now())

	select {
	case p.sem <- struct{}{}:
		p.queuedRenders.Add(-1)
		p.queuedKeys.Delete(req.key)
		defer func() { <-p.sem }()
	case <-r.Context().Done():
		p.queuedRenders.Add(-1)
		p.queuedKeys.Delete(req.key)
		http.Error(w, "request cancelled", http.StatusRequestTimeout)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), p.cfg.RenderTimeout)
	defer cancel()

	start := time.Now()
	p.activeRenders.Add(1)
	p.currentRenders.Store(req.key, start)

	data, err := p.render(ctx, req)

	p.activeRenders.Add(-1)
	p.currentRenders.Delete(req.key)

	if err != nil {
		p.totalFailed.Add(1)
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		p.log().Error("failed to render", "key", req.key, "error", err)
		http.Error(w, fmt.Sprintf("failed to render %s: %v", req.key, err), status)
		return
	}
	p.totalRendered.Add(1)
	p.log().Info("rendered on-demand", "key", req.key, "bytes", len(data), "ms", time.Since(start).Milliseconds())

	w.Header().Set("Content-Type", req.style.format.ContentType())
	w.Header().Set("Cache-Control", p.cfg.CacheControl)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		p.log().Error("failed to write response", "error", err)
	}
}

func (p *Preview) render(ctx context.Context, req request) ([]byte, error) {
	grid, err := field.SampleWith(ctx, req.params, req.region, req.width, req.height, field.Options{
		Workers: p.cfg.Workers,
		Logger:  p.logger,
	})
	if err != nil {
		return nil, err
	}

	img, err := raster.Render(grid, req.style.mode, req.style.ramp)
	if err != nil {
		return nil, err
	}
	img = req.style.filters.Apply(img)

	return raster.EncodeBytes(img, req.style.format, raster.EncodeOptions{PNGCompression: p.cfg.PNGCompression})
}

func (p *Preview) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return slog.Default()
}

// errNotFound marks request paths that do not name a resource.
var errNotFound = errors.New("not found")

func writeRequestError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errNotFound) {
		http.NotFound(w, r)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// parsePreview reads /preview/{kind}.{ext}?width=&height=&region=&...
func (p *Preview) parsePreview(u *url.URL) (request, error) {
	if !strings.HasPrefix(u.Path, "/preview/") {
		return request{}, errNotFound
	}
	base := path.Base(u.Path)
	ext := path.Ext(base)
	format, err := raster.ParseFormat(ext)
	if err != nil || ext == "" {
		return request{}, errNotFound
	}
	kind, err := field.ParseKind(strings.TrimSuffix(base, ext))
	if err != nil {
		return request{}, errNotFound
	}

	q := u.Query()
	params, err := p.queryParams(kind, q)
	if err != nil {
		return request{}, err
	}

	region := p.cfg.World
	if s := q.Get("region"); s != "" {
		if region, err = field.ParseRegion(s); err != nil {
			return request{}, fmt.Errorf("invalid region: %w", err)
		}
	}

	width, err := p.querySize(q, "width")
	if err != nil {
		return request{}, err
	}
	height, err := p.querySize(q, "height")
	if err != nil {
		return request{}, err
	}

	st, err := queryStyle(kind, q)
	if err != nil {
		return request{}, err
	}
	st.format = format

	return request{
		key:    fmt.Sprintf("%s@%dx%d?%s", kind, width, height, q.Encode()),
		params: params,
		region: region,
		width:  width,
		height: height,
		style:  st,
	}, nil
}

// parseTile reads /tiles/{kind}/{z}/{x}/{y}.png or {y}@2x.png.
func (p *Preview) parseTile(u *url.URL) (request, error) {
	parts := strings.Split(strings.TrimPrefix(u.Path, "/tiles/"), "/")
	if !strings.HasPrefix(u.Path, "/tiles/") || len(parts) != 4 {
		return request{}, errNotFound
	}

	kind, err := field.ParseKind(parts[0])
	if err != nil {
		return request{}, errNotFound
	}
	if !strings.HasSuffix(parts[3], ".png") {
		return request{}, errNotFound
	}
	last := strings.TrimSuffix(parts[3], ".png")
	size := p.cfg.TileSize
	suffix := ""
	if strings.HasSuffix(last, "@2x") {
		suffix = "@2x"
		size *= 2
		last = strings.TrimSuffix(last, "@2x")
	}

	coords, err := tile.ParseCoords(fmt.Sprintf("z%s_x%s_y%s", parts[1], parts[2], last))
	if err != nil || !coords.Valid() {
		return request{}, errNotFound
	}

	q := u.Query()
	params, err := p.queryParams(kind, q)
	if err != nil {
		return request{}, err
	}
	st, err := queryStyle(kind, q)
	if err != nil {
		return request{}, err
	}
	st.format = raster.PNG

	return request{
		key:    fmt.Sprintf("%s/%s%s?%s", kind, coords, suffix, q.Encode()),
		params: params,
		region: field.Region{Bound: coords.Bound(p.cfg.World.Bound)},
		width:  size,
		height: size,
		style:  st,
	}, nil
}

func (p *Preview) queryParams(kind field.Kind, q url.Values) (field.Params, error) {
	params := p.cfg.Defaults
	params.Kind = kind

	uints := map[string]*uint{
		"octaves":         &params.Octaves,
		"warp_iterations": &params.WarpIterations,
	}
	for name, dst := range uints {
		s := q.Get(name)
		if s == "" {
			continue
		}
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return field.Params{}, fmt.Errorf("invalid %s %q", name, s)
		}
		*dst = uint(v)
	}

	floats := map[string]*float32{
		"lacunarity":   &params.Lacunarity,
		"gain":         &params.Gain,
		"seed":         &params.Seed,
		"z":            &params.Z,
		"warp_scale_x": &params.WarpScaleX,
		"warp_scale_y": &params.WarpScaleY,
		"falloff":      &params.Falloff,
		"jitter":       &params.Jitter,
		"frequency":    &params.Frequency,
	}
	for name, dst := range floats {
		s := q.Get(name)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return field.Params{}, fmt.Errorf("invalid %s %q", name, s)
		}
		*dst = float32(v)
	}

	if err := params.Validate(); err != nil {
		return field.Params{}, err
	}
	return params, nil
}

func (p *Preview) querySize(q url.Values, name string) (int, error) {
	s := q.Get(name)
	if s == "" {
		return p.cfg.DefaultSize, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	if v > p.cfg.MaxSize {
		return 0, fmt.Errorf("%s %d exceeds limit %d", name, v, p.cfg.MaxSize)
	}
	return v, nil
}

func queryStyle(kind field.Kind, q url.Values) (style, error) {
	st := style{mode: raster.ModeFor(kind), ramp: q.Get("ramp")}

	if s := q.Get("normalize"); s != "" {
		m, err := raster.ParseMode(s)
		if err != nil {
			return style{}, err
		}
		st.mode = m
	}
	if st.ramp != "" {
		if _, err := raster.ParseRamp(st.ramp); err != nil {
			return style{}, err
		}
	}

	floats := map[string]*float32{
		"blur":      &st.filters.Blur,
		"contrast":  &st.filters.Contrast,
		"gamma":     &st.filters.Gamma,
		"threshold": &st.filters.Threshold,
	}
	for name, dst := range floats {
		s := q.Get(name)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return style{}, fmt.Errorf("invalid %s %q", name, s)
		}
		*dst = float32(v)
	}
	if s := q.Get("invert"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return style{}, fmt.Errorf("invalid invert %q", s)
		}
		st.filters.Invert = v
	}
	return st, nil
}
