// Package server implements the orbitmap HTTP API.
//
// The API has two halves: stateless layout endpoints that settle a snapshot
// into a frame (or a rendered artifact) in one round trip, and a saved-map
// CRUD surface backed by a [store.Store]. Both share one pipeline Runner so
// caching behaves the same everywhere.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/davemaier/orbitmap/pkg/buildinfo"
	"github.com/davemaier/orbitmap/pkg/httputil"
	"github.com/davemaier/orbitmap/pkg/pipeline"
	"github.com/davemaier/orbitmap/pkg/store"
)

// Server wires the pipeline and the map store behind the HTTP API.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger

	// base holds server-wide option defaults (engine config, theme); each
	// request copies it and overlays its own fields.
	base pipeline.Options
}

// New creates a server. A nil store disables the saved-map endpoints with
// 404s rather than panics; a nil logger falls back to the default.
func New(runner *pipeline.Runner, st store.Store, base pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner: runner,
		store:  st,
		logger: logger,
		base:   base,
	}
}

// Router builds the chi router with all routes and middleware attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/api/health", s.handleHealth)

	r.Post("/api/layout", s.handleLayout)
	r.Post("/api/render/{format}", s.handleRender)

	if s.store != nil {
		r.Route("/api/maps", func(r chi.Router) {
			r.Post("/", s.handleCreateMap)
			r.Get("/", s.handleListMaps)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetMap)
				r.Delete("/", s.handleDeleteMap)
				r.Post("/frame", s.handleLayoutMap)
				r.Get("/render/{format}", s.handleRenderMap)
			})
		})
	}

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}
