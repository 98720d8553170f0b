package canvas

import (
	goimage "image"

	"gonum.org/v1/gonum/floats/scalar"

	"slab-mapper/pkg/colorutil"
	"slab-mapper/pkg/geometry"
)

// guideTolerancePx is how close two footprint edges must be, in base canvas
// pixels, before an alignment guide appears.
const guideTolerancePx = 10.0

// guide is one alignment line, in base canvas coordinates.
type guide struct {
	vertical bool
	pos      float64
}

// alignmentGuides compares the moving footprint's edges and center lines
// against every other footprint and returns a guide for each near-match.
func alignmentGuides(moving geometry.Rect, others []geometry.Rect, tol float64) []guide {
	movingX := []float64{moving.X, moving.X + moving.Width/2, moving.X + moving.Width}
	movingY := []float64{moving.Y, moving.Y + moving.Height/2, moving.Y + moving.Height}

	var guides []guide
	seen := make(map[guide]bool)
	add := func(g guide) {
		if !seen[g] {
			seen[g] = true
			guides = append(guides, g)
		}
	}

	for _, o := range others {
		for _, ox := range []float64{o.X, o.X + o.Width/2, o.X + o.Width} {
			for _, mx := range movingX {
				if scalar.EqualWithinAbs(mx, ox, tol) {
					add(guide{vertical: true, pos: ox})
				}
			}
		}
		for _, oy := range []float64{o.Y, o.Y + o.Height/2, o.Y + o.Height} {
			for _, my := range movingY {
				if scalar.EqualWithinAbs(my, oy, tol) {
					add(guide{vertical: false, pos: oy})
				}
			}
		}
	}
	return guides
}

// drawAlignmentGuides renders guides for the selection being dragged. Guides
// compare screen footprints, so rotated selections align by what the user
// actually sees.
func (sc *SelectorCanvas) drawAlignmentGuides(output *goimage.RGBA, zoom float64) {
	sel, ok := sc.state.Selections.Get(sc.dragSurface)
	if !ok {
		return
	}
	moving := sel.Footprint()

	var others []geometry.Rect
	for _, srf := range sc.state.Selections.Active() {
		if srf == sc.dragSurface {
			continue
		}
		other, _ := sc.state.Selections.Get(srf)
		others = append(others, other.Footprint())
	}

	m := sc.state.Scale
	zw := int(m.BaseCanvasW * zoom)
	zh := int(m.BaseCanvasH * zoom)

	for _, g := range alignmentGuides(moving, others, guideTolerancePx) {
		if g.vertical {
			x := int(g.pos * zoom)
			sc.drawDashedLine(output, x, 0, x, zh, colorutil.Magenta, 1)
		} else {
			y := int(g.pos * zoom)
			sc.drawDashedLine(output, 0, y, zw, y, colorutil.Magenta, 1)
		}
	}
}
