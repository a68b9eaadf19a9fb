// Package fonts provides font faces for raster rendering and the CSS
// font stack for SVG output.
//
// Raster faces come from the Go font family shipped with golang.org/x/image,
// so the binary needs no external font files.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	parsedFont *truetype.Font
	parseOnce  sync.Once
)

func regular() *truetype.Font {
	parseOnce.Do(func() {
		// goregular.TTF is a valid compiled-in asset; a parse failure here
		// would be a build defect, not a runtime condition.
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			panic("fonts: parse embedded Go Regular: " + err.Error())
		}
		parsedFont = f
	})
	return parsedFont
}

// Face returns a Go Regular font face at the given point size.
// Faces are cheap; callers may request one per render.
func Face(size float64) font.Face {
	return truetype.NewFace(regular(), &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// FontFamily is the CSS font-family name used in SVG output.
const FontFamily = "Go Regular"

// FallbackFontFamily provides fallback fonts for systems without the
// primary font installed.
const FallbackFontFamily = `'Go Regular', 'Helvetica Neue', Arial, sans-serif`
