package server

import (
	std "errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/davemaier/orbitmap/pkg/errors"
	"github.com/davemaier/orbitmap/pkg/httputil"
	"github.com/davemaier/orbitmap/pkg/snapshot"
	"github.com/davemaier/orbitmap/pkg/store"
)

type createMapRequest struct {
	Name     string            `json:"name"`
	Snapshot snapshot.Snapshot `json:"snapshot"`
}

func (s *Server) handleCreateMap(w http.ResponseWriter, r *http.Request) {
	var req createMapRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		httputil.WriteError(w, errors.New(errors.ErrCodeInvalidInput, "map name is required"))
		return
	}
	if err := req.Snapshot.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	doc, err := s.store.Create(r.Context(), req.Name, req.Snapshot)
	if err != nil {
		httputil.WriteError(w, errors.Wrap(errors.ErrCodeStore, err, "creating map"))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	maps, err := s.store.List(r.Context())
	if err != nil {
		httputil.WriteError(w, errors.Wrap(errors.ErrCodeStore, err, "listing maps"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"maps": maps})
}

// loadMap resolves the {id} url parameter. A nil return means the error
// response was already written.
func (s *Server) loadMap(w http.ResponseWriter, r *http.Request) *store.MapDoc {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateMapID(id); err != nil {
		httputil.WriteError(w, err)
		return nil
	}

	doc, err := s.store.Get(r.Context(), id)
	if err != nil {
		if std.Is(err, store.ErrNotFound) {
			httputil.WriteError(w, errors.New(errors.ErrCodeMapNotFound, "map %q not found", id))
		} else {
			httputil.WriteError(w, errors.Wrap(errors.ErrCodeStore, err, "loading map %s", id))
		}
		return nil
	}
	return doc
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	doc := s.loadMap(w, r)
	if doc == nil {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteMap(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateMapID(id); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := s.store.Delete(r.Context(), id); err != nil {
		if std.Is(err, store.ErrNotFound) {
			httputil.WriteError(w, errors.New(errors.ErrCodeMapNotFound, "map %q not found", id))
		} else {
			httputil.WriteError(w, errors.Wrap(errors.ErrCodeStore, err, "deleting map %s", id))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// frameRequest tunes the layout of a saved map. All fields are optional;
// zero values fall back to the server defaults.
type frameRequest struct {
	Width       float64  `json:"width,omitempty"`
	Height      float64  `json:"height,omitempty"`
	Expanded    []string `json:"expanded,omitempty"`
	ExpandDepth int      `json:"expand_depth,omitempty"`
	MaxTicks    int      `json:"max_ticks,omitempty"`
	Refresh     bool     `json:"refresh,omitempty"`
}

// handleLayoutMap settles a saved map's snapshot and persists the frame.
func (s *Server) handleLayoutMap(w http.ResponseWriter, r *http.Request) {
	doc := s.loadMap(w, r)
	if doc == nil {
		return
	}

	var req frameRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	opts := s.options(&layoutRequest{
		Name:        doc.Name,
		Width:       req.Width,
		Height:      req.Height,
		Expanded:    req.Expanded,
		ExpandDepth: req.ExpandDepth,
		MaxTicks:    req.MaxTicks,
		Refresh:     req.Refresh,
	})

	ctx := r.Context()
	t, hash, err := s.runner.Normalize(ctx, &doc.Snapshot)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	frame, hit, err := s.runner.LayoutWithCacheInfo(ctx, t, hash, opts)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := s.store.UpdateFrame(ctx, doc.ID, frame); err != nil {
		httputil.WriteError(w, errors.Wrap(errors.ErrCodeStore, err, "saving frame for map %s", doc.ID))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, layoutResponse{
		Frame:        frame,
		SnapshotHash: hash,
		NodeCount:    t.Len(),
		FrameHit:     hit,
	})
}

// handleRenderMap renders a saved map. The stored frame is reused when
// present; otherwise the snapshot is settled on the fly (without persisting).
func (s *Server) handleRenderMap(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(chi.URLParam(r, "format"))
	if err := errors.ValidateRenderFormat(format); err != nil {
		httputil.WriteError(w, err)
		return
	}

	doc := s.loadMap(w, r)
	if doc == nil {
		return
	}

	opts := s.options(&layoutRequest{Name: doc.Name})
	if theme := r.URL.Query().Get("theme"); theme != "" {
		opts.Theme = theme
	}
	opts.Formats = []string{format}

	ctx := r.Context()
	frame := doc.Frame
	if frame == nil {
		t, hash, err := s.runner.Normalize(ctx, &doc.Snapshot)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		frame, err = s.runner.Layout(ctx, t, hash, opts)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	artifacts, err := s.runner.Render(ctx, frame, opts)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", httputil.ContentTypeFor(format))
	_, _ = w.Write(artifacts[format])
}
