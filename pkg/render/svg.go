package render

import (
	"bytes"
	"fmt"

	"github.com/davemaier/orbitmap/pkg/fonts"
	"github.com/davemaier/orbitmap/pkg/snapshot"
)

const nodeInteractionCSS = `
    .node { transition: stroke-width 0.15s ease; }
    .node:hover { stroke-width: 3; }
    .node-label { pointer-events: none; }`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	theme  Theme
	labels bool
}

// WithTheme sets the color theme (default Light).
func WithTheme(t Theme) SVGOption { return func(r *svgRenderer) { r.theme = t } }

// WithoutLabels suppresses node name labels.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// RenderSVG renders a frame as a standalone SVG document. Edges are drawn
// beneath nodes; labels go on top and only on circles large enough to hold
// them.
func RenderSVG(f *snapshot.Frame, opts ...SVGOption) []byte {
	r := svgRenderer{theme: Light, labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		f.Width, f.Height, f.Width, f.Height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", nodeInteractionCSS)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill=%q/>`+"\n", hexColor(r.theme.Background))

	for _, e := range f.Edges {
		fmt.Fprintf(&buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke=%q stroke-width="1.5"/>`+"\n",
			e.X1, e.Y1, e.X2, e.Y2, hexColor(r.theme.Edge))
	}

	for _, n := range f.Nodes {
		fmt.Fprintf(&buf, `  <circle id="node-%s" class="node" cx="%.2f" cy="%.2f" r="%.2f" fill=%q stroke=%q stroke-width="1.5"/>`+"\n",
			n.ID, n.X, n.Y, n.R, hexColor(r.theme.ringColor(n.Depth)), hexColor(r.theme.Stroke))
	}

	if r.labels {
		for _, n := range f.Nodes {
			if n.Name == "" || n.R < 12 {
				continue
			}
			fmt.Fprintf(&buf, `  <text class="node-label" x="%.2f" y="%.2f" text-anchor="middle" font-family=%q font-size="%.0f" fill=%q>%s</text>`+"\n",
				n.X, n.Y+n.R+14, fonts.FallbackFontFamily, labelSize(n.R), hexColor(r.theme.Text), escapeText(n.Name))
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// labelSize scales label text with the circle it annotates.
func labelSize(r float64) float64 {
	s := r * 0.55
	if s < 10 {
		s = 10
	}
	if s > 16 {
		s = 16
	}
	return s
}

func escapeText(s string) string {
	var buf bytes.Buffer
	for _, c := range s {
		switch c {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteRune(c)
		}
	}
	return buf.String()
}
