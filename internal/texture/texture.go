// Package texture turns selection rectangles into per-face bitmaps. The
// extraction itself is a pure function of the source photograph, the
// selection transform and the scale model; calling it twice with the same
// inputs yields pixel-identical output.
package texture

import (
	"errors"
	"image"

	"slab-mapper/internal/surface"
	"slab-mapper/pkg/geometry"
)

// MaxTextureDim caps the longer edge of an extracted bitmap. Aspect is
// preserved exactly; there is no power-of-two rounding because that would
// distort real-world aspect ratios.
const MaxTextureDim = 4096

// ErrNotImplemented marks operations that exist as placeholders only.
var ErrNotImplemented = errors.New("texture: not implemented")

// ErrNoImage is returned when extraction is requested without a photograph.
var ErrNoImage = errors.New("texture: no source image")

// Texture is one extracted face bitmap plus its lossless PNG encoding,
// tagged with the surface it belongs to and the photograph it came from.
type Texture struct {
	Surface   surface.Surface
	Image     *image.NRGBA
	PNG       []byte
	FaceMm    geometry.Size
	SourceRef string
}

// Set maps each surface to its texture. A missing or nil entry means the
// face keeps its untextured default material.
type Set map[surface.Surface]*Texture

// Applier consumes a complete texture set, typically the 3D preview. The
// consumer owns wrapping, mipmaps and color space; this package guarantees
// only correct crop, rotation, mirror and aspect content.
type Applier interface {
	ApplyTextures(Set) error
}

// Request names one face extraction within a batch.
type Request struct {
	Surface   surface.Surface
	Selection surface.Selection
	FaceMm    geometry.Size
}

// CorrectPerspective is a placeholder for straightening skewed photographs
// from four user-picked corners. It is deliberately unimplemented; slabs are
// assumed to be photographed square-on.
func CorrectPerspective(src image.Image, corners [4]geometry.Point2D) (image.Image, error) {
	return nil, ErrNotImplemented
}
