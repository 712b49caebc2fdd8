// Package server serves noise previews, map tiles and stored bakes over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/noisy/shader"
)

// Config configures the HTTP server.
type Config struct {
	Preview        PreviewConfig
	BakeStorePath  string // optional; enables /bakes/
	BakeCache      string
	StatusInterval time.Duration
}

// Server bundles the handlers behind one mux.
type Server struct {
	preview *Preview
	bakes   *BakeHandler
	mux     *http.ServeMux
	logger  *slog.Logger
}

// New builds the routes. The bake store is opened only when a path is set.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	s := &Server{
		preview: NewPreview(cfg.Preview, logger),
		mux:     http.NewServeMux(),
		logger:  logger,
	}

	if cfg.BakeStorePath != "" {
		bakes, err := NewBakeHandler(BakeConfig{
			StorePath:    cfg.BakeStorePath,
			CacheControl: cfg.BakeCache,
		}, logger)
		if err != nil {
			return nil, err
		}
		s.bakes = bakes
	}

	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	s.mux.HandleFunc("/shader/noisy.wgsl", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/wgsl; charset=utf-8")
		_, _ = w.Write([]byte(shader.Source()))
	})
	s.mux.Handle("/status", withCORS(s.preview.StatusHandler()))
	s.mux.Handle("/status/stream", withCORS(s.preview.StatusStreamHandler(cfg.StatusInterval)))
	s.mux.Handle("/preview/", withCORS(s.preview.Handler()))
	s.mux.Handle("/tiles/", withCORS(s.preview.TileHandler()))

	if s.bakes != nil {
		s.mux.Handle("/bakes", withCORS(s.bakes.IndexHandler()))
		s.mux.Handle("/bakes/", withCORS(s.bakes.Handler()))
	}

	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Preview returns the on-demand renderer.
func (s *Server) Preview() *Preview {
	return s.preview
}

// Close releases the bake store.
func (s *Server) Close() error {
	if s.bakes != nil {
		return s.bakes.Close()
	}
	return nil
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
