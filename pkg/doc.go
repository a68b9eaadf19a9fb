// Package pkg provides the core libraries for orbitmap folder-map layout.
//
// # Overview
//
// Orbitmap turns folder hierarchies into orbital maps: every folder is a
// circle sized by its contents, and subfolders orbit their parent in rings.
// The pkg directory is organized around the layout pipeline:
//
//  1. [snapshot] - Wire formats for hierarchy input and settled output
//  2. [tree] - Hierarchy normalization (nested or flat input → stable tree)
//  3. [view] - Expansion state (which branches are open)
//  4. [orbit] - Ring planning (radii, slots, anchor targets)
//  5. [physics] - Force integration (springs, repulsion, damping)
//  6. [engine] - Live layout instances tying planner and simulation together
//  7. [pipeline] - Orchestration (normalize → settle → render) with caching
//  8. [render] - Output formats (SVG, PNG, DOT, graphviz)
//
// # Architecture
//
// The typical data flow:
//
//	Folder Snapshot (nested items or flat entries)
//	         ↓
//	    [tree] package (normalize, derive stable ids)
//	         ↓
//	    [engine] package (orbit planning + force integration)
//	         ↓
//	    [render] package (SVG/PNG/DOT/JSON output)
//
// # Quick Start
//
// Settle a snapshot and render it:
//
//	import (
//	    "context"
//	    "github.com/davemaier/orbitmap/pkg/pipeline"
//	    "github.com/davemaier/orbitmap/pkg/snapshot"
//	)
//
//	snap := &snapshot.Snapshot{
//	    Name: "home",
//	    Items: []snapshot.Item{
//	        {Name: "photos", Size: 60, Children: []snapshot.Item{
//	            {Name: "raw", Size: 40},
//	        }},
//	        {Name: "docs", Size: 30},
//	    },
//	}
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(context.Background(), snap, pipeline.Options{
//	    Formats: []string{"svg"},
//	})
//
// # Infrastructure
//
// [cache] - Content-addressed caching of settled frames and render
// artifacts. File, Redis, and null backends.
//
// [store] - Saved-map persistence for the HTTP API. Memory and MongoDB
// backends.
//
// [config] - TOML application configuration for the CLI and server.
//
// [errors] - Structured error codes and input validation shared by every
// surface.
//
// [observability] - Pluggable pipeline and HTTP hooks for metrics and
// tracing.
//
// [snapshot]: https://pkg.go.dev/github.com/davemaier/orbitmap/pkg/snapshot
// [tree]: https://pkg.go.dev/github.com/davemaier/orbitmap/pkg/tree
// [view]: https://pkg.go.dev/github.com/davemaier/orbitmap/pkg/view
// [orbit]: https://pkg.go.dev/github.com/davemaier/orbitmap/pkg/orbit
// [physics]: https://pkg.go.dev/github.com/davemaier/orbitmap/pkg/physics
// [engine]: https://pkg.go.dev/github.com/davemaier/orbitmap/pkg/engine
// [pipeline]: https://pkg.go.dev/github.com/davemaier/orbitmap/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/davemaier/orbitmap/pkg/render
// [cache]: https://pkg.go.dev/github.com/davemaier/orbitmap/pkg/cache
// [store]: https://pkg.go.dev/github.com/davemaier/orbitmap/pkg/store
// [config]: https://pkg.go.dev/github.com/davemaier/orbitmap/pkg/config
// [errors]: https://pkg.go.dev/github.com/davemaier/orbitmap/pkg/errors
// [observability]: https://pkg.go.dev/github.com/davemaier/orbitmap/pkg/observability
package pkg
