package geometry

import "math"

// Orientation describes the quarter-turn rotation and mirror flags applied to
// a selection box. Rotation is in degrees clockwise on screen and is always
// one of 0, 90, 180, 270. The two flips are independent toggles and compose
// with the rotation.
//
// The same orientation is consumed by the preview renderer (forward matrix),
// the hit-tester (inverse matrix) and the texture extractor, so the three can
// never disagree about what a rotated, mirrored selection means.
type Orientation struct {
	Rotation int  `json:"rotation"`
	FlipH    bool `json:"flipH"`
	FlipV    bool `json:"flipV"`
}

// Normalize returns the orientation with rotation reduced into [0, 360).
func (o Orientation) Normalize() Orientation {
	r := o.Rotation % 360
	if r < 0 {
		r += 360
	}
	// Snap to the nearest quarter turn; any other value is a programming error
	// upstream, so round rather than propagate it.
	r = ((r + 45) / 90 * 90) % 360
	o.Rotation = r
	return o
}

// RotateCW returns the orientation stepped 90 degrees clockwise.
func (o Orientation) RotateCW() Orientation {
	o.Rotation = (o.Rotation + 90) % 360
	return o
}

// RotateCCW returns the orientation stepped 90 degrees counter-clockwise.
func (o Orientation) RotateCCW() Orientation {
	o.Rotation = (o.Rotation - 90 + 360) % 360
	return o
}

// ToggleFlipH returns the orientation with the horizontal mirror toggled.
func (o Orientation) ToggleFlipH() Orientation {
	o.FlipH = !o.FlipH
	return o
}

// ToggleFlipV returns the orientation with the vertical mirror toggled.
func (o Orientation) ToggleFlipV() Orientation {
	o.FlipV = !o.FlipV
	return o
}

// QuarterTurn reports whether the rotation swaps width and height.
func (o Orientation) QuarterTurn() bool {
	r := o.Normalize().Rotation
	return r == 90 || r == 270
}

// Radians returns the rotation angle in radians.
func (o Orientation) Radians() float64 {
	return float64(o.Normalize().Rotation) * math.Pi / 180
}

// flipScale returns the mirror transform about the origin.
func (o Orientation) flipScale() AffineTransform {
	sx, sy := 1.0, 1.0
	if o.FlipH {
		sx = -1
	}
	if o.FlipV {
		sy = -1
	}
	return Scaling(sx, sy)
}

// Matrix returns the forward transform about the given center:
// translate to center, flip, rotate, translate back. Local (unrotated)
// rectangle coordinates map through it into screen coordinates.
func (o Orientation) Matrix(center Point2D) AffineTransform {
	return Translation(center.X, center.Y).
		Compose(Rotation(o.Radians())).
		Compose(o.flipScale()).
		Compose(Translation(-center.X, -center.Y))
}

// InverseMatrix returns the inverse of Matrix. Quarter-turn rotations and
// mirrors are always invertible.
func (o Orientation) InverseMatrix(center Point2D) AffineTransform {
	inv, _ := o.Matrix(center).Inverse()
	return inv
}

// TransformSize returns the size after the rotation is applied: quarter turns
// swap width and height, mirrors never change extent.
func (o Orientation) TransformSize(s Size) Size {
	if o.QuarterTurn() {
		return Size{Width: s.Height, Height: s.Width}
	}
	return s
}
