package slabdetect

import (
	"fmt"
	"image"

	"slab-mapper/internal/surface"
)

// SuggestCalibration derives a full-photo calibration from a detected slab
// extent and the slab's known physical width. The detected width fixes the
// pixels-per-millimeter density; the photo's full span in millimeters follows
// from it.
func SuggestCalibration(bounds image.Rectangle, imageW, imageH int, slabWidthMm float64) (surface.Calibration, error) {
	if slabWidthMm <= 0 {
		return surface.Calibration{}, fmt.Errorf("slabdetect: slab width must be positive, got %g mm", slabWidthMm)
	}
	if bounds.Dx() <= 0 || imageW <= 0 || imageH <= 0 {
		return surface.Calibration{}, fmt.Errorf("slabdetect: degenerate bounds %v in %dx%d photo", bounds, imageW, imageH)
	}

	ppm := float64(bounds.Dx()) / slabWidthMm
	c := surface.Calibration{
		WidthMm:  float64(imageW) / ppm,
		HeightMm: float64(imageH) / ppm,
	}
	return c, c.Validate()
}
