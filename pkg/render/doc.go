// Package render turns settled layout frames into visual outputs.
//
// # Overview
//
// Three output paths are provided:
//
//   - [RenderSVG]: hand-built SVG with hover styling, the primary format
//   - [RenderPNG]: direct rasterization via fogleman/gg, no external tools
//   - [ToDOT] + [RenderGraphvizSVG]: a Graphviz neato rendering with pinned
//     positions, mainly for comparing the planner against an independent
//     engine
//
// All renderers consume [snapshot.Frame] values, so anything the engine or
// pipeline produces can be rendered without further conversion:
//
//	frame := runner.Layout(ctx, snap, opts)
//	svg := render.RenderSVG(frame, render.WithTheme(render.Dark))
//	png, err := render.RenderPNG(frame, render.WithScale(2.0))
//
// # Themes
//
// Colors come from a [Theme]: a background, stroke and text colors, and a
// fill palette cycled by node depth. [Light] and [Dark] are built in;
// custom themes are plain struct values.
package render
