// Package render draws detection boxes and labels onto images. It owns the
// styling: per-class colors, label backgrounds and font settings.
package render

import (
	"image/color"

	"gocv.io/x/gocv"
)

// Font defines how label text is rendered.
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	// Padding placed around the text inside its background box.
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
}

// DefaultFont returns the font used when the caller has no preference.
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Color:     White,
		Thickness: 1,
		LeftPad:   4,
		RightPad:  4,
		TopPad:    4,
		BottomPad: 6,
	}
}
