package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davemaier/orbitmap/pkg/pipeline"
	"github.com/davemaier/orbitmap/pkg/snapshot"
)

// layoutCommand creates the layout command for settling snapshots.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}
	opts.SetLayoutDefaults()

	cmd := &cobra.Command{
		Use:   "layout [snapshot.json]",
		Short: "Settle a folder snapshot into an orbital layout",
		Long: `Settle a folder snapshot into an orbital layout.

The layout command takes a snapshot.json file (a nested or flat folder
hierarchy) and runs the orbital simulation until it comes to rest. The
output is a frame.json file with final positions, radii, and connector
endpoints, ready to render with 'orbitmap render'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.frame.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")

	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "viewport width")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "viewport height")
	cmd.Flags().IntVar(&opts.ExpandDepth, "expand-depth", opts.ExpandDepth, "open every branch shallower than this depth")
	cmd.Flags().StringSliceVar(&opts.Expanded, "expand", nil, "additional node ids to expand")
	cmd.Flags().IntVar(&opts.MaxTicks, "max-ticks", opts.MaxTicks, "simulation tick budget")

	return cmd
}

// runLayout loads the snapshot, settles the layout, and writes the frame.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	snap, err := snapshot.ReadSnapshotFile(input)
	if err != nil {
		return fmt.Errorf("load snapshot %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	opts.Engine.Logger = c.Logger
	if opts.Name == "" {
		opts.Name = snap.Name
	}

	t, hash, err := runner.Normalize(ctx, snap)
	if err != nil {
		return fmt.Errorf("normalize snapshot: %w", err)
	}

	spinner := newSpinnerWithContext(ctx, "Settling orbital layout...")
	spinner.Start()

	frame, cacheHit, err := runner.LayoutWithCacheInfo(ctx, t, hash, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("settle layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".frame.json"
	}

	if err := snapshot.WriteFrameFile(frame, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout settled")
	printFile(outputPath)
	printStats(t.Len(), frame.Ticks, cacheHit)
	printNewline()
	printNextStep("Render", "orbitmap render --frame "+outputPath)

	return nil
}
