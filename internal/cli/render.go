package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davemaier/orbitmap/pkg/pipeline"
	"github.com/davemaier/orbitmap/pkg/render"
	"github.com/davemaier/orbitmap/pkg/snapshot"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string   // output file path (or base path for multiple formats)
	formats   []string // output formats: "svg", "png", "dot", "json"
	fromFrame bool     // input is an already-settled frame.json
	graphviz  bool     // route SVG output through graphviz neato
	noCache   bool
}

// renderCommand creates the render command for generating map images.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}
	popts := pipeline.Options{}
	popts.SetLayoutDefaults()
	popts.SetRenderDefaults()

	cmd := &cobra.Command{
		Use:   "render [snapshot.json]",
		Short: "Render a folder snapshot as an orbital map",
		Long: `Render a folder snapshot as an orbital map.

By default the input is a snapshot; it is settled first (using the cache
when possible) and then rendered. Pass --frame to render an existing
frame.json produced by 'orbitmap layout' without re-simulating.

The --graphviz flag renders the SVG through graphviz neato with pinned
positions instead of the native renderer; useful for comparing layouts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts, popts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.fromFrame, "frame", false, "input is a settled frame.json")
	cmd.Flags().BoolVar(&opts.graphviz, "graphviz", false, "render SVG via graphviz neato")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	cmd.Flags().Float64Var(&popts.Width, "width", popts.Width, "viewport width")
	cmd.Flags().Float64Var(&popts.Height, "height", popts.Height, "viewport height")
	cmd.Flags().IntVar(&popts.ExpandDepth, "expand-depth", popts.ExpandDepth, "open every branch shallower than this depth")
	cmd.Flags().StringVar(&popts.Theme, "theme", popts.Theme, "color theme: light (default), dark")
	cmd.Flags().BoolVar(&popts.NoLabels, "no-labels", popts.NoLabels, "omit folder name labels")

	return cmd
}

// runRender obtains a frame (by settling or loading) and writes artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts, popts pipeline.Options) error {
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	popts.Logger = c.Logger
	popts.Engine.Logger = c.Logger

	var frame *snapshot.Frame
	if opts.fromFrame {
		frame, err = snapshot.ReadFrameFile(input)
		if err != nil {
			return fmt.Errorf("load frame %s: %w", input, err)
		}
	} else {
		snap, err := snapshot.ReadSnapshotFile(input)
		if err != nil {
			return fmt.Errorf("load snapshot %s: %w", input, err)
		}
		if popts.Name == "" {
			popts.Name = snap.Name
		}

		t, hash, err := runner.Normalize(ctx, snap)
		if err != nil {
			return fmt.Errorf("normalize snapshot: %w", err)
		}

		spinner := newSpinnerWithContext(ctx, "Settling orbital layout...")
		spinner.Start()
		frame, err = runner.Layout(ctx, t, hash, popts)
		if err != nil {
			spinner.StopWithError("Layout failed")
			return fmt.Errorf("settle layout: %w", err)
		}
		spinner.Stop()
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := basePath(opts.output, input)
	single := len(opts.formats) == 1 && opts.output != ""

	// The graphviz path replaces the native SVG renderer for this run.
	formats := opts.formats
	if opts.graphviz {
		formats = without(formats, pipeline.FormatSVG)
		svg, err := render.RenderGraphvizSVG(render.ToDOT(frame))
		if err != nil {
			return fmt.Errorf("graphviz render: %w", err)
		}
		path := base + ".svg"
		if single {
			path = opts.output
		}
		if err := os.WriteFile(path, svg, 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printSuccess("Rendered %s (graphviz)", path)
	}

	if len(formats) > 0 {
		popts.Formats = formats
		artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, frame, popts)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}

		for _, format := range formats {
			path := base + "." + format
			if single {
				path = opts.output
			}
			if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
				return fmt.Errorf("write output %s: %w", path, err)
			}
			printSuccess("Rendered %s", path)
		}
		printStats(len(frame.Nodes), frame.Ticks, cacheHit)
	}

	return nil
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input. If output has a
// format extension, it strips that too so multi-format runs don't produce
// names like map.svg.png.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func without(formats []string, drop string) []string {
	out := formats[:0:0]
	for _, f := range formats {
		if f != drop {
			out = append(out, f)
		}
	}
	return out
}
