// Package pipeline provides the core layout pipeline for orbitmap.
//
// This package implements the complete normalize → layout → render pipeline
// that can be used by CLI and server components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Normalize: Validate a snapshot and build the rolled-up hierarchy
//  2. Layout: Run the orbital simulation until it settles into a frame
//  3. Render: Generate output in various formats (SVG, PNG, DOT, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Width:   1280,
//	    Height:  800,
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, snap, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Normalize only
//	t, hash, err := runner.Normalize(ctx, snap)
//
//	// Layout with an existing tree
//	frame, err := runner.Layout(ctx, t, hash, opts)
//
//	// Render with an existing frame
//	artifacts, err := runner.Render(ctx, frame, opts)
package pipeline

import (
	"encoding/json"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/davemaier/orbitmap/pkg/cache"
	"github.com/davemaier/orbitmap/pkg/engine"
	"github.com/davemaier/orbitmap/pkg/errors"
	"github.com/davemaier/orbitmap/pkg/orbit"
	"github.com/davemaier/orbitmap/pkg/physics"
	"github.com/davemaier/orbitmap/pkg/snapshot"
	"github.com/davemaier/orbitmap/pkg/tree"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 1280.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 800.0

	// DefaultMaxTicks bounds the settle loop. The simulation normally rests
	// well before this; the cap covers pathological inputs.
	DefaultMaxTicks = 3000

	// DefaultExpandDepth expands only the root ring on first layout.
	DefaultExpandDepth = 1

	// DefaultTheme is the default color theme.
	DefaultTheme = "light"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Name labels the resulting frame (map title).
	Name string `json:"name,omitempty"`

	// Layout options
	Width       float64  `json:"width,omitempty"`
	Height      float64  `json:"height,omitempty"`
	Expanded    []string `json:"expanded,omitempty"`     // Node ids to expand, in addition to ExpandDepth
	ExpandDepth int      `json:"expand_depth,omitempty"` // Expand every node shallower than this depth
	MaxTicks    int      `json:"max_ticks,omitempty"`
	Refresh     bool     `json:"refresh,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Theme    string   `json:"theme,omitempty"`
	NoLabels bool     `json:"no_labels,omitempty"`

	// Runtime options (not serialized)
	Engine engine.Config `json:"-"`
	Logger *log.Logger   `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the normalized hierarchy.
	Tree *tree.Tree

	// SnapshotHash is the content hash of the input snapshot.
	SnapshotHash string

	// Frame is the settled layout.
	Frame *snapshot.Frame

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount     int // Nodes in the normalized tree
	VisibleCount  int // Nodes placed in the frame
	Ticks         int // Simulation ticks until rest (0 on cache hit)
	NormalizeTime time.Duration
	LayoutTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	FrameHit  bool // Whether the settled frame came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateRenderFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.MaxTicks == 0 {
		o.MaxTicks = DefaultMaxTicks
	}
	if o.ExpandDepth == 0 {
		o.ExpandDepth = DefaultExpandDepth
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Engine.Logger == nil {
		o.Engine.Logger = o.Logger
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return errors.ValidateViewport(o.Width, o.Height)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// FrameKeyOpts returns cache key options for the layout stage. The engine
// config participates through a content hash so tuning the physics never
// serves stale frames.
func (o *Options) FrameKeyOpts() cache.FrameKeyOpts {
	expanded := append([]string(nil), o.Expanded...)
	sort.Strings(expanded)
	cfg, _ := json.Marshal(struct {
		Orbit       orbit.Config   `json:"orbit"`
		Physics     physics.Config `json:"physics"`
		Discard     bool           `json:"discard"`
		ExpandDepth int            `json:"expand_depth"`
		MaxTicks    int            `json:"max_ticks"`
	}{o.Engine.Orbit, o.Engine.Physics, o.Engine.DiscardCollapsed, o.ExpandDepth, o.MaxTicks})
	return cache.FrameKeyOpts{
		Width:      o.Width,
		Height:     o.Height,
		Expanded:   expanded,
		ConfigHash: cache.Hash(cfg),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	theme := o.Theme
	if o.NoLabels {
		// Label suppression changes the output; keep it out of the themed
		// cache line.
		theme += ":nolabels"
	}
	return cache.ArtifactKeyOpts{
		Format: format,
		Theme:  theme,
	}
}
