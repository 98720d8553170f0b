// Package scale converts between real-world millimeters, base canvas pixels
// and source image pixels. The base canvas is the unzoomed surface the slab
// photograph is calibrated against; view zoom is a separate multiplicative
// factor that never changes the millimeter-per-pixel ratio used for labels.
package scale

import (
	"fmt"

	"slab-mapper/pkg/geometry"
)

const (
	// DefaultPxPerMm is the target base scale when the whole slab fits on screen.
	DefaultPxPerMm = 0.3

	// MaxBaseCanvasWidth and MaxBaseCanvasHeight bound the unzoomed canvas so
	// the full photographed slab is always visible without internal scrolling.
	MaxBaseCanvasWidth  = 900.0
	MaxBaseCanvasHeight = 700.0

	// MinZoom and MaxZoom clamp the view zoom factor.
	MinZoom = 0.5
	MaxZoom = 4.0
)

// Model holds the calibrated mapping for one loaded slab photograph.
// All fields refer to the unzoomed base canvas.
type Model struct {
	CalibWidthMm  float64
	CalibHeightMm float64

	BaseCanvasW float64
	BaseCanvasH float64

	ImageW int
	ImageH int
}

// New computes the base canvas for a calibration and photograph size.
// The canvas targets DefaultPxPerMm and is reduced proportionally when either
// viewport limit would be exceeded; the smaller resulting scale wins.
func New(calibWidthMm, calibHeightMm float64, imageW, imageH int) (Model, error) {
	if calibWidthMm <= 0 || calibHeightMm <= 0 {
		return Model{}, fmt.Errorf("scale: calibration must be positive, got %gx%g mm", calibWidthMm, calibHeightMm)
	}
	if imageW <= 0 || imageH <= 0 {
		return Model{}, fmt.Errorf("scale: image must be non-empty, got %dx%d px", imageW, imageH)
	}

	s := DefaultPxPerMm
	if calibWidthMm*s > MaxBaseCanvasWidth {
		s = MaxBaseCanvasWidth / calibWidthMm
	}
	if calibHeightMm*s > MaxBaseCanvasHeight {
		s = MaxBaseCanvasHeight / calibHeightMm
	}

	return Model{
		CalibWidthMm:  calibWidthMm,
		CalibHeightMm: calibHeightMm,
		BaseCanvasW:   calibWidthMm * s,
		BaseCanvasH:   calibHeightMm * s,
		ImageW:        imageW,
		ImageH:        imageH,
	}, nil
}

// PixelsPerMm returns the base (unzoomed) scale. Dimension labels always use
// this value so displayed millimeters stay accurate at any view zoom.
func (m Model) PixelsPerMm() float64 {
	return m.BaseCanvasW / m.CalibWidthMm
}

// MmToPx converts a millimeter length to base canvas pixels.
func (m Model) MmToPx(mm float64) float64 {
	return mm * m.PixelsPerMm()
}

// PxToMm converts a base canvas pixel length to millimeters.
func (m Model) PxToMm(px float64) float64 {
	return px / m.PixelsPerMm()
}

// ImageScale returns the per-axis factors from base canvas pixels to source
// image pixels. The two can differ when the calibration aspect does not match
// the photograph exactly.
func (m Model) ImageScale() (sx, sy float64) {
	return float64(m.ImageW) / m.BaseCanvasW, float64(m.ImageH) / m.BaseCanvasH
}

// CanvasRectToImage converts a rectangle in base canvas coordinates into
// source image pixel coordinates.
func (m Model) CanvasRectToImage(r geometry.Rect) geometry.Rect {
	sx, sy := m.ImageScale()
	return geometry.Rect{
		X:      r.X * sx,
		Y:      r.Y * sy,
		Width:  r.Width * sx,
		Height: r.Height * sy,
	}
}

// ZoomedToBase converts a point captured on the zoomed canvas back into base
// canvas coordinates. Selections are stored in base coordinates, so this runs
// at the pointer-event boundary and nowhere else.
func ZoomedToBase(p geometry.Point2D, zoom float64) geometry.Point2D {
	return geometry.Point2D{X: p.X / zoom, Y: p.Y / zoom}
}

// ClampZoom clamps a requested zoom factor into the allowed range.
func ClampZoom(zoom float64) float64 {
	if zoom < MinZoom {
		return MinZoom
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}

// RulerStep picks a round millimeter value whose base-scale pixel length is
// readable on screen (between roughly 60 and 300 px).
func (m Model) RulerStep() (mm float64, px float64) {
	steps := []float64{10, 20, 50, 100, 200, 250, 500, 1000, 2000, 2500, 5000}
	ppm := m.PixelsPerMm()
	for _, s := range steps {
		if s*ppm >= 60 {
			return s, s * ppm
		}
	}
	last := steps[len(steps)-1]
	return last, last * ppm
}
