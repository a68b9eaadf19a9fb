package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/davemaier/orbitmap/pkg/cache"
	"github.com/davemaier/orbitmap/pkg/observability"
	"github.com/davemaier/orbitmap/pkg/snapshot"
	"github.com/davemaier/orbitmap/pkg/tree"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete normalize → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, snap *snapshot.Snapshot, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Normalize
	normalizeStart := time.Now()
	t, snapshotHash, err := r.Normalize(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	result.Tree = t
	result.SnapshotHash = snapshotHash
	result.Stats.NormalizeTime = time.Since(normalizeStart)
	result.Stats.NodeCount = t.Len()

	r.Logger.Info("normalized snapshot",
		"nodes", t.Len(),
		"duration", result.Stats.NormalizeTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	frame, frameHit, err := r.LayoutWithCacheInfo(ctx, t, snapshotHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Frame = frame
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.VisibleCount = len(frame.Nodes)
	result.Stats.Ticks = frame.Ticks
	result.CacheInfo.FrameHit = frameHit

	r.Logger.Info("settled layout",
		"visible", len(frame.Nodes),
		"ticks", frame.Ticks,
		"settled", frame.Settled,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, frame, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Normalize validates a snapshot and builds the rolled-up hierarchy. The
// returned hash content-addresses the snapshot for cache keys and API
// responses.
func (r *Runner) Normalize(ctx context.Context, snap *snapshot.Snapshot) (*tree.Tree, string, error) {
	itemCount := len(snap.Items) + len(snap.Entries)
	observability.Pipeline().OnNormalizeStart(ctx, itemCount)
	start := time.Now()

	if err := snap.Validate(); err != nil {
		observability.Pipeline().OnNormalizeComplete(ctx, 0, time.Since(start), err)
		return nil, "", err
	}
	t := snap.Tree()

	hash := ""
	if data, err := snapshot.MarshalSnapshot(snap); err == nil {
		hash = cache.Hash(data)
	}

	observability.Pipeline().OnNormalizeComplete(ctx, t.Len(), time.Since(start), nil)
	return t, hash, nil
}

// LayoutWithCacheInfo settles a layout with caching and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, t *tree.Tree, snapshotHash string, opts Options) (*snapshot.Frame, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.FrameKey(snapshotHash, opts.FrameKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh && snapshotHash != "" {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			cached, err := snapshot.ReadFrame(bytes.NewReader(data))
			if err == nil {
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
	}

	observability.Pipeline().OnLayoutStart(ctx, t.Len())
	start := time.Now()

	frame, err := Settle(t, opts)
	if err != nil {
		observability.Pipeline().OnLayoutComplete(ctx, 0, time.Since(start), err)
		return nil, false, err
	}
	observability.Pipeline().OnLayoutComplete(ctx, frame.Ticks, time.Since(start), nil)

	// Cache the result
	if snapshotHash != "" {
		if data, err := snapshot.MarshalFrame(frame); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLFrame)
		}
	}

	return frame, false, nil // Cache miss
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Layout(ctx context.Context, t *tree.Tree, snapshotHash string, opts Options) (*snapshot.Frame, error) {
	frame, _, err := r.LayoutWithCacheInfo(ctx, t, snapshotHash, opts)
	return frame, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, frame *snapshot.Frame, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from frame content
	frameData, err := snapshot.MarshalFrame(frame)
	if err != nil {
		return nil, false, fmt.Errorf("serialize frame for cache key: %w", err)
	}
	frameHash := cache.Hash(frameData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(frameHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil // All artifacts from cache
		}
	}

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	rendered, err := RenderFrame(frame, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(frameHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Render(ctx context.Context, frame *snapshot.Frame, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, frame, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
