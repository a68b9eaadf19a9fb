package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/davemaier/orbitmap/pkg/errors"
	"github.com/davemaier/orbitmap/pkg/httputil"
	"github.com/davemaier/orbitmap/pkg/pipeline"
	"github.com/davemaier/orbitmap/pkg/snapshot"
)

// layoutRequest is the body of the stateless layout endpoints.
type layoutRequest struct {
	Name     string            `json:"name,omitempty"`
	Snapshot snapshot.Snapshot `json:"snapshot"`

	Width       float64  `json:"width,omitempty"`
	Height      float64  `json:"height,omitempty"`
	Expanded    []string `json:"expanded,omitempty"`
	ExpandDepth int      `json:"expand_depth,omitempty"`
	MaxTicks    int      `json:"max_ticks,omitempty"`
	Theme       string   `json:"theme,omitempty"`
	NoLabels    bool     `json:"no_labels,omitempty"`
	Refresh     bool     `json:"refresh,omitempty"`
}

// options overlays the request onto the server-wide defaults.
func (s *Server) options(req *layoutRequest) pipeline.Options {
	opts := s.base
	opts.Name = req.Name
	if req.Width != 0 {
		opts.Width = req.Width
	}
	if req.Height != 0 {
		opts.Height = req.Height
	}
	opts.Expanded = req.Expanded
	if req.ExpandDepth != 0 {
		opts.ExpandDepth = req.ExpandDepth
	}
	if req.MaxTicks != 0 {
		opts.MaxTicks = req.MaxTicks
	}
	if req.Theme != "" {
		opts.Theme = req.Theme
	}
	opts.NoLabels = opts.NoLabels || req.NoLabels
	opts.Refresh = req.Refresh
	opts.Logger = s.logger
	return opts
}

// layoutResponse carries the settled frame plus enough metadata for the
// client to key follow-up requests.
type layoutResponse struct {
	Frame        *snapshot.Frame `json:"frame"`
	SnapshotHash string          `json:"snapshot_hash,omitempty"`
	NodeCount    int             `json:"node_count"`
	FrameHit     bool            `json:"frame_cache_hit"`
}

// handleLayout settles a snapshot into a frame without rendering or storing
// anything.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	ctx := r.Context()
	t, hash, err := s.runner.Normalize(ctx, &req.Snapshot)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	frame, hit, err := s.runner.LayoutWithCacheInfo(ctx, t, hash, s.options(&req))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, layoutResponse{
		Frame:        frame,
		SnapshotHash: hash,
		NodeCount:    t.Len(),
		FrameHit:     hit,
	})
}

// handleRender settles a snapshot and streams back one rendered artifact.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(chi.URLParam(r, "format"))
	if err := errors.ValidateRenderFormat(format); err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req layoutRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	opts := s.options(&req)
	opts.Formats = []string{format}

	result, err := s.runner.Execute(r.Context(), &req.Snapshot, opts)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", httputil.ContentTypeFor(format))
	if result.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	_, _ = w.Write(result.Artifacts[format])
}
