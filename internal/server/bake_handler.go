package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/noisy/internal/bakestore"
	"github.com/MeKo-Tech/noisy/internal/raster"
)

// BakeHandler serves images from a bake store.
type BakeHandler struct {
	reader       *bakestore.Reader
	logger       *slog.Logger
	cacheControl string
}

// BakeConfig configures the bake handler.
type BakeConfig struct {
	StorePath    string
	CacheControl string
}

// NewBakeHandler opens the store at cfg.StorePath.
func NewBakeHandler(cfg BakeConfig, logger *slog.Logger) (*BakeHandler, error) {
	reader, err := bakestore.OpenReader(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open bake store: %w", err)
	}

	if cfg.CacheControl == "" {
		cfg.CacheControl = "public, max-age=3600"
	}

	return &BakeHandler{
		reader:       reader,
		logger:       logger,
		cacheControl: cfg.CacheControl,
	}, nil
}

// Handler serves /bakes/{name}.{png|tiff}. A bake stored in the other
// format is re-encoded on the way out.
func (h *BakeHandler) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, format, ok := parseBakePath(r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}

		b, err := h.reader.Get(name)
		if errors.Is(err, bakestore.ErrNotFound) {
			http.Error(w, fmt.Sprintf("bake not found: %s", name), http.StatusNotFound)
			return
		}
		if err != nil {
			h.log().Error("failed to read bake", "name", name, "error", err)
			http.Error(w, "failed to read bake", http.StatusInternalServerError)
			return
		}

		data := b.Data
		if stored, err := raster.ParseFormat(b.Format); err != nil || stored != format {
			data, err = h.convert(b, format)
			if err != nil {
				h.log().Error("failed to convert bake", "name", name, "from", b.Format, "to", format, "error", err)
				http.Error(w, "failed to convert bake", http.StatusInternalServerError)
				return
			}
		}

		w.Header().Set("Cache-Control", h.cacheControl)
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		if _, err := w.Write(data); err != nil {
			h.log().Error("failed to write response", "error", err)
		}
	}
}

// IndexHandler lists the stored bakes as JSON.
func (h *BakeHandler) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := h.reader.List()
		if err != nil {
			h.log().Error("failed to list bakes", "error", err)
			http.Error(w, "failed to list bakes", http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []bakestore.Entry{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			h.log().Error("failed to encode bake list", "error", err)
		}
	}
}

func (h *BakeHandler) convert(b bakestore.Bake, to raster.Format) ([]byte, error) {
	from, err := raster.ParseFormat(b.Format)
	if err != nil {
		return nil, err
	}
	img, err := raster.Decode(bytes.NewReader(b.Data), from)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", from, err)
	}
	return raster.EncodeBytes(img, to, raster.EncodeOptions{})
}

// Close closes the bake store.
func (h *BakeHandler) Close() error {
	return h.reader.Close()
}

func (h *BakeHandler) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

// parseBakePath parses a path like /bakes/dunes.png.
func parseBakePath(requestPath string) (string, raster.Format, bool) {
	if !strings.HasPrefix(requestPath, "/bakes/") {
		return "", "", false
	}

	base := path.Base(requestPath)
	ext := path.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if ext == "" || name == "" {
		return "", "", false
	}

	format, err := raster.ParseFormat(ext)
	if err != nil {
		return "", "", false
	}
	return name, format, true
}
