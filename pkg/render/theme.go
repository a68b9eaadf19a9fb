package render

import "image/color"

// Theme controls the colors of rendered maps.
type Theme struct {
	Name       string
	Background color.RGBA
	Edge       color.RGBA
	Stroke     color.RGBA
	Text       color.RGBA

	// Ring is the fill palette indexed by node depth, cycling when the
	// tree is deeper than the palette.
	Ring []color.RGBA
}

// Light is the default theme.
var Light = Theme{
	Name:       "light",
	Background: color.RGBA{0xff, 0xff, 0xff, 0xff},
	Edge:       color.RGBA{0xb8, 0xc2, 0xcc, 0xff},
	Stroke:     color.RGBA{0x3d, 0x4a, 0x5c, 0xff},
	Text:       color.RGBA{0x22, 0x2b, 0x36, 0xff},
	Ring: []color.RGBA{
		{0x4e, 0x79, 0xa7, 0xff},
		{0x76, 0xb7, 0xb2, 0xff},
		{0xf2, 0x8e, 0x2b, 0xff},
		{0xe1, 0x57, 0x59, 0xff},
		{0x59, 0xa1, 0x4f, 0xff},
		{0xaf, 0x7a, 0xa1, 0xff},
	},
}

// Dark is an inverted theme for dark UIs.
var Dark = Theme{
	Name:       "dark",
	Background: color.RGBA{0x15, 0x1a, 0x21, 0xff},
	Edge:       color.RGBA{0x3a, 0x45, 0x52, 0xff},
	Stroke:     color.RGBA{0xc9, 0xd4, 0xe0, 0xff},
	Text:       color.RGBA{0xe8, 0xee, 0xf4, 0xff},
	Ring: []color.RGBA{
		{0x5d, 0x8d, 0xc4, 0xff},
		{0x8a, 0xcc, 0xc7, 0xff},
		{0xf5, 0xa6, 0x53, 0xff},
		{0xe8, 0x75, 0x76, 0xff},
		{0x74, 0xb8, 0x6a, 0xff},
		{0xc4, 0x94, 0xb6, 0xff},
	},
}

// ThemeByName resolves a theme name, defaulting to Light for anything
// unrecognized.
func ThemeByName(name string) Theme {
	if name == "dark" {
		return Dark
	}
	return Light
}

// ringColor returns the fill color for a node at the given depth.
func (t Theme) ringColor(depth int) color.RGBA {
	if len(t.Ring) == 0 {
		return t.Stroke
	}
	if depth < 0 {
		depth = 0
	}
	return t.Ring[depth%len(t.Ring)]
}

func hexColor(c color.RGBA) string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		b[1+2*i] = digits[v>>4]
		b[2+2*i] = digits[v&0xf]
	}
	return string(b)
}
