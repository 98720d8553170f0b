package surface

import (
	"slab-mapper/pkg/geometry"
)

// defaultInsetPx is where freshly generated selections are parked.
const defaultInsetPx = 10.0

// Selection is the editable crop bound to one surface. Position and size are
// in base canvas pixels (pan-relative, zoom already divided out); rotation
// and flips describe how the crop is oriented onto the destination face.
type Selection struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation int     `json:"rotation"`
	FlipH    bool    `json:"flipH"`
	FlipV    bool    `json:"flipV"`
}

// DefaultSelection builds the selection generated whenever the owning
// dimensions change: a small inset from the origin, sized by the face's
// millimeter size at the base scale, unrotated and unflipped.
func DefaultSelection(faceMm geometry.Size, pxPerMm float64) Selection {
	return Selection{
		X:      defaultInsetPx,
		Y:      defaultInsetPx,
		Width:  faceMm.Width * pxPerMm,
		Height: faceMm.Height * pxPerMm,
	}
}

// Rect returns the unrotated rectangle.
func (s Selection) Rect() geometry.Rect {
	return geometry.NewRect(s.X, s.Y, s.Width, s.Height)
}

// Center returns the rotation center. Rotation and flips pivot here, so the
// center is shared by the unrotated rect and the footprint.
func (s Selection) Center() geometry.Point2D {
	return s.Rect().Center()
}

// Orientation returns the rotation and mirror flags as the shared transform.
func (s Selection) Orientation() geometry.Orientation {
	return geometry.Orientation{Rotation: s.Rotation, FlipH: s.FlipH, FlipV: s.FlipV}
}

// Footprint returns the axis-aligned region the selection occupies on screen:
// the unrotated rect with width and height swapped about the center for
// quarter turns. Mirrors never change the footprint.
func (s Selection) Footprint() geometry.Rect {
	size := s.Orientation().TransformSize(geometry.Size{Width: s.Width, Height: s.Height})
	c := s.Center()
	return geometry.NewRect(c.X-size.Width/2, c.Y-size.Height/2, size.Width, size.Height)
}

// Contains hit-tests a point in base canvas coordinates: the point is
// inverse-rotated around the selection center and checked against the
// unrotated half extents. Mirrors do not change the occupied region.
func (s Selection) Contains(p geometry.Point2D) bool {
	local := s.Orientation().InverseMatrix(s.Center()).Apply(p)
	return s.Rect().Contains(local)
}

// ClampTo clamps the position so the unrotated rect stays inside the canvas.
func (s *Selection) ClampTo(canvasW, canvasH float64) {
	s.X = clamp(s.X, 0, canvasW-s.Width)
	s.Y = clamp(s.Y, 0, canvasH-s.Height)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Set is the single mutable map of selections keyed by surface. All mutation
// goes through its methods so clamping is never skipped; callers outside a
// drag gesture never hold Selection copies.
type Set struct {
	selections map[Surface]Selection
}

// NewSet creates an empty selection set.
func NewSet() *Set {
	return &Set{selections: make(map[Surface]Selection)}
}

// Get returns the selection for a surface, if present.
func (set *Set) Get(s Surface) (Selection, bool) {
	sel, ok := set.selections[s]
	return sel, ok
}

// Put replaces the selection for a surface wholesale.
func (set *Set) Put(s Surface, sel Selection) {
	set.selections[s] = sel
}

// Remove deletes the selection for a surface.
func (set *Set) Remove(s Surface) {
	delete(set.selections, s)
}

// Active returns the surfaces that currently hold a selection, in hit-test
// priority order.
func (set *Set) Active() []Surface {
	var out []Surface
	for _, s := range Order() {
		if _, ok := set.selections[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// MoveTo moves a selection to the given top-left position, clamped into the
// canvas. Reports whether the surface had a selection.
func (set *Set) MoveTo(s Surface, x, y, canvasW, canvasH float64) bool {
	sel, ok := set.selections[s]
	if !ok {
		return false
	}
	sel.X, sel.Y = x, y
	sel.ClampTo(canvasW, canvasH)
	set.selections[s] = sel
	return true
}

// Rotate steps a selection's rotation by 90 degrees, clockwise or not.
func (set *Set) Rotate(s Surface, clockwise bool) bool {
	sel, ok := set.selections[s]
	if !ok {
		return false
	}
	o := sel.Orientation()
	if clockwise {
		o = o.RotateCW()
	} else {
		o = o.RotateCCW()
	}
	sel.Rotation = o.Rotation
	set.selections[s] = sel
	return true
}

// ToggleFlip toggles one of a selection's mirror flags. The two flips are
// independent and compose with rotation.
func (set *Set) ToggleFlip(s Surface, horizontal bool) bool {
	sel, ok := set.selections[s]
	if !ok {
		return false
	}
	if horizontal {
		sel.FlipH = !sel.FlipH
	} else {
		sel.FlipV = !sel.FlipV
	}
	set.selections[s] = sel
	return true
}

// HitTest returns the first surface whose selection contains the point,
// testing in priority order.
func (set *Set) HitTest(p geometry.Point2D) (Surface, bool) {
	for _, s := range Order() {
		if sel, ok := set.selections[s]; ok && sel.Contains(p) {
			return s, true
		}
	}
	return 0, false
}

// Regenerate replaces the selections for the given surfaces with defaults
// sized from dims at the base scale, leaving all other surfaces untouched.
func (set *Set) Regenerate(surfaces []Surface, dims Dimensions, pxPerMm, canvasW, canvasH float64) {
	for _, s := range surfaces {
		sel := DefaultSelection(dims.FaceSize(s), pxPerMm)
		sel.ClampTo(canvasW, canvasH)
		set.selections[s] = sel
	}
}

// Snapshot returns a copy of the full map, keyed by stable surface key, for
// export and persistence.
func (set *Set) Snapshot() map[string]Selection {
	out := make(map[string]Selection, len(set.selections))
	for s, sel := range set.selections {
		out[s.Key()] = sel
	}
	return out
}

// Restore replaces the set's contents from a snapshot, ignoring unknown keys.
func (set *Set) Restore(snapshot map[string]Selection) {
	set.selections = make(map[Surface]Selection, len(snapshot))
	for key, sel := range snapshot {
		if s, ok := ParseSurface(key); ok {
			set.selections[s] = sel
		}
	}
}
