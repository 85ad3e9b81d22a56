package ansihtml

import colorful "github.com/lucasb-eyer/go-colorful"

// BackgroundColor is the constant backdrop behind every frame.
const BackgroundColor = "#333"

var (
	// Used when reverse video swaps an unset colour.
	defaultForeground = rgb(229, 229, 229)
	defaultBackground = rgb(51, 51, 51)
)

// Base colours 0-7 and their bright variants 8-15.
var basePalette = [16]colorful.Color{
	rgb(0, 0, 0),
	rgb(187, 0, 0),
	rgb(0, 187, 0),
	rgb(187, 187, 0),
	rgb(0, 0, 187),
	rgb(187, 0, 187),
	rgb(0, 187, 187),
	rgb(255, 255, 255),
	rgb(85, 85, 85),
	rgb(255, 85, 85),
	rgb(0, 255, 0),
	rgb(255, 255, 85),
	rgb(85, 85, 255),
	rgb(255, 85, 255),
	rgb(85, 255, 255),
	rgb(255, 255, 255),
}

var cubeLevels = [6]int{0, 95, 135, 175, 215, 255}

func rgb(r, g, b int) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// paletteColor returns entry n of the xterm 256-colour palette.
func paletteColor(n int) colorful.Color {
	switch {
	case n < 16:
		return basePalette[n]
	case n < 232:
		n -= 16
		return rgb(cubeLevels[n/36], cubeLevels[(n/6)%6], cubeLevels[n%6])
	default:
		level := 8 + 10*(n-232)
		return rgb(level, level, level)
	}
}
