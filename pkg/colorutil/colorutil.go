// Package colorutil provides shared color utilities for the slab mapper UI.
package colorutil

import (
	"image/color"
)

// Common drawing colors used throughout the application.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Blue    = color.RGBA{R: 0, G: 160, B: 255, A: 255}
	Green   = color.RGBA{R: 0, G: 220, B: 80, A: 255}
	Yellow  = color.RGBA{R: 255, G: 210, B: 0, A: 255}
	Orange  = color.RGBA{R: 255, G: 140, B: 0, A: 255}
	Gray    = color.RGBA{R: 110, G: 110, B: 110, A: 255}
)

// Blend mixes fg over bg at the given opacity (0 keeps bg, 1 replaces it).
func Blend(bg, fg color.RGBA, opacity float64) color.RGBA {
	if opacity <= 0 {
		return bg
	}
	if opacity >= 1 {
		return fg
	}
	inv := 1 - opacity
	return color.RGBA{
		R: uint8(float64(fg.R)*opacity + float64(bg.R)*inv),
		G: uint8(float64(fg.G)*opacity + float64(bg.G)*inv),
		B: uint8(float64(fg.B)*opacity + float64(bg.B)*inv),
		A: 255,
	}
}

// Dim scales a color toward black by the given factor in [0,1].
func Dim(c color.RGBA, factor float64) color.RGBA {
	return Blend(Black, c, factor)
}
