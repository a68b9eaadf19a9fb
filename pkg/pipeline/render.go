package pipeline

import (
	"fmt"

	"github.com/davemaier/orbitmap/pkg/render"
	"github.com/davemaier/orbitmap/pkg/snapshot"
)

// RenderFrame renders a frame into every requested format.
func RenderFrame(f *snapshot.Frame, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	theme := render.ThemeByName(opts.Theme)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		switch format {
		case FormatSVG:
			svgOpts := []render.SVGOption{render.WithTheme(theme)}
			if opts.NoLabels {
				svgOpts = append(svgOpts, render.WithoutLabels())
			}
			artifacts[format] = render.RenderSVG(f, svgOpts...)

		case FormatPNG:
			pngOpts := []render.PNGOption{render.WithPNGTheme(theme)}
			if opts.NoLabels {
				pngOpts = append(pngOpts, render.WithoutPNGLabels())
			}
			data, err := render.RenderPNG(f, pngOpts...)
			if err != nil {
				return nil, fmt.Errorf("render png: %w", err)
			}
			artifacts[format] = data

		case FormatDOT:
			artifacts[format] = []byte(render.ToDOT(f))

		case FormatJSON:
			data, err := snapshot.MarshalFrame(f)
			if err != nil {
				return nil, fmt.Errorf("render json: %w", err)
			}
			artifacts[format] = data

		default:
			return nil, fmt.Errorf("unsupported format: %q", format)
		}
	}

	return artifacts, nil
}
