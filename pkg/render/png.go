package render

import (
	"bytes"

	"github.com/fogleman/gg"

	"github.com/davemaier/orbitmap/pkg/fonts"
	"github.com/davemaier/orbitmap/pkg/snapshot"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	theme  Theme
	labels bool
	scale  float64
}

// WithPNGTheme sets the color theme (default Light).
func WithPNGTheme(t Theme) PNGOption { return func(r *pngRenderer) { r.theme = t } }

// WithoutPNGLabels suppresses node name labels.
func WithoutPNGLabels() PNGOption { return func(r *pngRenderer) { r.labels = false } }

// WithScale sets the raster scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// RenderPNG rasterizes a frame directly rather than going through SVG, so
// no external SVG converter is needed.
func RenderPNG(f *snapshot.Frame, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{theme: Light, labels: true, scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := int(f.Width*r.scale), int(f.Height*r.scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dc := gg.NewContext(w, h)
	dc.Scale(r.scale, r.scale)
	dc.SetColor(r.theme.Background)
	dc.Clear()

	// Edges beneath nodes.
	dc.SetColor(r.theme.Edge)
	dc.SetLineWidth(1.5)
	for _, e := range f.Edges {
		dc.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		dc.Stroke()
	}

	for _, n := range f.Nodes {
		dc.DrawCircle(n.X, n.Y, n.R)
		dc.SetColor(r.theme.ringColor(n.Depth))
		dc.FillPreserve()
		dc.SetColor(r.theme.Stroke)
		dc.SetLineWidth(1.5)
		dc.Stroke()
	}

	if r.labels {
		dc.SetColor(r.theme.Text)
		for _, n := range f.Nodes {
			if n.Name == "" || n.R < 12 {
				continue
			}
			dc.SetFontFace(fonts.Face(labelSize(n.R)))
			dc.DrawStringAnchored(n.Name, n.X, n.Y+n.R+10, 0.5, 0.5)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
