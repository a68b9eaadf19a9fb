package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/davemaier/orbitmap/pkg/snapshot"
)

func testFrame() *snapshot.Frame {
	return &snapshot.Frame{
		Width: 800, Height: 600, Settled: true,
		Nodes: []snapshot.FrameNode{
			{ID: "r", Name: "home", X: 400, Y: 300, R: 30},
			{ID: "a", Name: "photos", Depth: 1, X: 400, Y: 160, R: 22},
			{ID: "b", Name: "docs", Depth: 1, X: 400, Y: 440, R: 18},
			{ID: "c", Name: "tiny", Depth: 2, X: 500, Y: 160, R: 8},
		},
		Edges: []snapshot.FrameEdge{
			{From: "r", To: "a", X1: 400, Y1: 300, X2: 400, Y2: 160},
			{From: "r", To: "b", X1: 400, Y1: 300, X2: 400, Y2: 440},
		},
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(testFrame()))

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.0 600.0"`) {
		t.Errorf("unexpected svg prolog: %.80s", svg)
	}
	if got := strings.Count(svg, "<circle"); got != 4 {
		t.Errorf("found %d circles, want 4", got)
	}
	if got := strings.Count(svg, "<line"); got != 2 {
		t.Errorf("found %d edges, want 2", got)
	}
	// Labels only on circles big enough to carry them.
	if !strings.Contains(svg, ">home</text>") {
		t.Error("missing label for large node")
	}
	if strings.Contains(svg, ">tiny</text>") {
		t.Error("small node should not be labeled")
	}
	if !strings.Contains(svg, `id="node-a"`) {
		t.Error("nodes should carry stable element ids")
	}
}

func TestRenderSVG_Options(t *testing.T) {
	svg := string(RenderSVG(testFrame(), WithTheme(Dark), WithoutLabels()))

	if strings.Contains(svg, "<text") {
		t.Error("WithoutLabels still emitted text")
	}
	if !strings.Contains(svg, hexColor(Dark.Background)) {
		t.Error("dark background color not applied")
	}
}

func TestRenderSVG_Deterministic(t *testing.T) {
	a := RenderSVG(testFrame())
	b := RenderSVG(testFrame())
	if !bytes.Equal(a, b) {
		t.Error("identical frames rendered differently")
	}
}

func TestRenderSVG_EscapesNames(t *testing.T) {
	f := testFrame()
	f.Nodes[0].Name = `a<b>&"c"`

	svg := string(RenderSVG(f))
	if strings.Contains(svg, `>a<b>`) {
		t.Error("unescaped markup in label")
	}
	if !strings.Contains(svg, "a&lt;b&gt;&amp;&quot;c&quot;") {
		t.Error("expected escaped label text")
	}
}

func TestRenderPNG(t *testing.T) {
	png, err := RenderPNG(testFrame(), WithScale(1.0))
	if err != nil {
		t.Fatalf("RenderPNG error: %v", err)
	}
	if len(png) < 8 || !bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")) {
		t.Errorf("output does not look like a PNG (%d bytes)", len(png))
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testFrame())

	if !strings.Contains(dot, "layout=neato;") {
		t.Error("DOT should pin the neato engine")
	}
	// Positions are pinned and y-flipped.
	if !strings.Contains(dot, `"a" [label="photos", pos="400.00,440.00!"`) {
		t.Errorf("node position not pinned as expected:\n%s", dot)
	}
	if !strings.Contains(dot, `"r" -- "a";`) {
		t.Error("missing undirected edge")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?><svg width="7in" height="5in" viewBox="0.00 0.00 504.00 360.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))

	if !strings.Contains(out, `viewBox="0 0 504.00 360.00" width="504" height="360"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if strings.Contains(out, "7in") {
		t.Error("absolute inch sizing survived normalization")
	}
}
