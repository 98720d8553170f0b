// Software rendering for the selector surface. Everything is drawn into the
// raster's RGBA buffer: the zoomed photograph, the millimeter grid, the
// oriented selection boxes and their labels.
package canvas

import (
	"fmt"
	goimage "image"
	"image/color"
	"strings"

	xdraw "golang.org/x/image/draw"

	"slab-mapper/internal/scale"
	"slab-mapper/internal/surface"
	"slab-mapper/pkg/colorutil"
	"slab-mapper/pkg/geometry"
)

var backgroundColor = color.RGBA{R: 38, G: 38, B: 42, A: 255}

// draw is the raster drawing function.
func (sc *SelectorCanvas) draw(w, h int) goimage.Image {
	output := goimage.NewRGBA(goimage.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			output.SetRGBA(x, y, backgroundColor)
		}
	}

	slab := sc.state.Slab
	if slab == nil || slab.Image == nil {
		return output
	}
	m := sc.state.Scale
	zoom := sc.state.Zoom

	photo := sc.ensureZoomedPhoto(slab.Image, m, zoom)
	copyPhoto(output, photo)

	sc.drawGrid(output, m, zoom)

	for _, srf := range sc.state.Selections.Active() {
		sel, _ := sc.state.Selections.Get(srf)
		highlighted := sc.hasSelected && sc.selected == srf
		sc.drawSelectionBox(output, srf, sel, zoom, highlighted)
	}

	if sc.dragActive {
		sc.drawAlignmentGuides(output, zoom)
	}

	return output
}

// ensureZoomedPhoto rescales the photograph to the zoomed base canvas once
// per zoom change and caches the result; redraws between zoom changes reuse
// the cache.
func (sc *SelectorCanvas) ensureZoomedPhoto(src goimage.Image, m scale.Model, zoom float64) *goimage.RGBA {
	if sc.cachedZoomed != nil && sc.cachedZoom == zoom && sc.cachedSlab == src {
		return sc.cachedZoomed
	}

	zw := int(m.BaseCanvasW*zoom + 0.5)
	zh := int(m.BaseCanvasH*zoom + 0.5)
	if zw < 1 {
		zw = 1
	}
	if zh < 1 {
		zh = 1
	}

	dst := goimage.NewRGBA(goimage.Rect(0, 0, zw, zh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	sc.cachedZoomed = dst
	sc.cachedZoom = zoom
	sc.cachedSlab = src
	return dst
}

func copyPhoto(output, photo *goimage.RGBA) {
	b := photo.Bounds().Intersect(output.Bounds())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			output.SetRGBA(x, y, photo.RGBAAt(x, y))
		}
	}
}

// drawGrid draws dashed millimeter grid lines with tick labels. The step is
// picked at base scale, so the labeled values stay round at any zoom.
func (sc *SelectorCanvas) drawGrid(output *goimage.RGBA, m scale.Model, zoom float64) {
	stepMm, stepPx := m.RulerStep()
	step := stepPx * zoom
	if step < 8 {
		return
	}

	zw := int(m.BaseCanvasW * zoom)
	zh := int(m.BaseCanvasH * zoom)
	col := colorutil.Dim(colorutil.White, 0.28)

	mm := stepMm
	for x := step; x < float64(zw); x += step {
		sc.drawDashedLine(output, int(x), 0, int(x), zh, col, 1)
		sc.drawText(output, fmt.Sprintf("%.0f", mm), int(x)+12, 6, colorutil.Gray, 1)
		mm += stepMm
	}
	mm = stepMm
	for y := step; y < float64(zh); y += step {
		sc.drawDashedLine(output, 0, int(y), zw, int(y), col, 1)
		sc.drawText(output, fmt.Sprintf("%.0f", mm), 14, int(y)+6, colorutil.Gray, 1)
		mm += stepMm
	}
}

// drawSelectionBox renders one selection: the oriented outline, a translucent
// fill, and a horizontal label with the face's real millimeter size. The box
// corners come from the same orientation matrix the extractor inverts, so
// preview and output can never disagree.
func (sc *SelectorCanvas) drawSelectionBox(output *goimage.RGBA, srf surface.Surface, sel surface.Selection, zoom float64, highlighted bool) {
	matrix := sel.Orientation().Matrix(sel.Center())
	base := sel.Rect().Corners()
	corners := make([]geometry.Point2D, len(base))
	for i, c := range base {
		p := matrix.Apply(c)
		corners[i] = geometry.Point2D{X: p.X * zoom, Y: p.Y * zoom}
	}

	col := surfaceColor(srf)
	fillOpacity := 0.18
	thickness := 2
	if highlighted {
		fillOpacity = 0.32
		thickness = 3
	}
	sc.fillQuad(output, corners, col, fillOpacity)

	n := len(corners)
	for i := 0; i < n; i++ {
		p1 := corners[i]
		p2 := corners[(i+1)%n]
		sc.drawDashedLine(output, int(p1.X), int(p1.Y), int(p2.X), int(p2.Y), col, thickness)
	}

	face := sc.state.DimensionsFor(srf).FaceSize(srf)
	center := sel.Center()
	textScale := int(zoom * 2)
	if textScale < 1 {
		textScale = 1
	}
	if textScale > 6 {
		textScale = 6
	}
	sc.drawText(output, selectionLabel(srf, sel, face),
		int(center.X*zoom), int(center.Y*zoom), colorutil.White, textScale)
}

// selectionLabel builds the box caption: surface name, face millimeters, and
// orientation markers. Millimeter values are the face's physical size and do
// not change with zoom or rotation.
func selectionLabel(srf surface.Surface, sel surface.Selection, face geometry.Size) string {
	text := fmt.Sprintf("%s %.0f X %.0f", strings.ToUpper(srf.String()), face.Width, face.Height)
	if sel.Rotation != 0 {
		text += fmt.Sprintf(" R%d", sel.Rotation)
	}
	if sel.FlipH {
		text += " FH"
	}
	if sel.FlipV {
		text += " FV"
	}
	return text
}

// surfaceColor assigns each surface a stable outline color.
func surfaceColor(srf surface.Surface) color.RGBA {
	switch srf {
	case surface.Top:
		return colorutil.Yellow
	case surface.LeftEnd:
		return colorutil.Cyan
	case surface.RightEnd:
		return colorutil.Green
	case surface.Countertop:
		return colorutil.Orange
	case surface.Backsplash:
		return colorutil.Blue
	default:
		return colorutil.White
	}
}

// fillQuad fills a convex quad with a translucent tint using a scanline pass.
func (sc *SelectorCanvas) fillQuad(output *goimage.RGBA, pts []geometry.Point2D, col color.RGBA, opacity float64) {
	if len(pts) < 3 {
		return
	}

	bounds := output.Bounds()
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	n := len(pts)
	for y := int(minY); y <= int(maxY); y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}

		var xs []float64
		for i := 0; i < n; i++ {
			p1 := pts[i]
			p2 := pts[(i+1)%n]
			fy := float64(y)
			if (p1.Y <= fy && p2.Y > fy) || (p2.Y <= fy && p1.Y > fy) {
				t := (fy - p1.Y) / (p2.Y - p1.Y)
				xs = append(xs, p1.X+t*(p2.X-p1.X))
			}
		}

		for i := 0; i < len(xs)-1; i++ {
			for j := i + 1; j < len(xs); j++ {
				if xs[j] < xs[i] {
					xs[i], xs[j] = xs[j], xs[i]
				}
			}
		}

		for i := 0; i+1 < len(xs); i += 2 {
			for x := int(xs[i]); x <= int(xs[i+1]); x++ {
				if x >= bounds.Min.X && x < bounds.Max.X {
					output.SetRGBA(x, y, colorutil.Blend(output.RGBAAt(x, y), col, opacity))
				}
			}
		}
	}
}

// drawLine draws a line between two points using Bresenham's algorithm.
func (sc *SelectorCanvas) drawLine(output *goimage.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	sc.strokeLine(output, x1, y1, x2, y2, col, thickness, false)
}

// drawDashedLine draws a line with a 4-on 4-off dash pattern.
func (sc *SelectorCanvas) drawDashedLine(output *goimage.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	sc.strokeLine(output, x1, y1, x2, y2, col, thickness, true)
}

func (sc *SelectorCanvas) strokeLine(output *goimage.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int, dashed bool) {
	bounds := output.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	step := 0

	for {
		if !dashed || step%8 < 4 {
			for t := -thickness / 2; t <= thickness/2; t++ {
				for s := -thickness / 2; s <= thickness/2; s++ {
					px, py := x1+s, y1+t
					if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
						output.SetRGBA(px, py, col)
					}
				}
			}
		}
		step++

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// digitPatterns contains 3x5 pixel patterns for digits 0-9.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

// letterPatterns contains 3x5 pixel patterns for letters and symbols used in
// selection labels.
var letterPatterns = map[rune][5]uint8{
	'A': {0b010, 0b101, 0b111, 0b101, 0b101},
	'B': {0b110, 0b101, 0b110, 0b101, 0b110},
	'C': {0b011, 0b100, 0b100, 0b100, 0b011},
	'D': {0b110, 0b101, 0b101, 0b101, 0b110},
	'E': {0b111, 0b100, 0b110, 0b100, 0b111},
	'F': {0b111, 0b100, 0b110, 0b100, 0b100},
	'G': {0b011, 0b100, 0b101, 0b101, 0b011},
	'H': {0b101, 0b101, 0b111, 0b101, 0b101},
	'I': {0b111, 0b010, 0b010, 0b010, 0b111},
	'K': {0b101, 0b101, 0b110, 0b101, 0b101},
	'L': {0b100, 0b100, 0b100, 0b100, 0b111},
	'N': {0b101, 0b111, 0b111, 0b101, 0b101},
	'O': {0b010, 0b101, 0b101, 0b101, 0b010},
	'P': {0b110, 0b101, 0b110, 0b100, 0b100},
	'R': {0b110, 0b101, 0b110, 0b101, 0b101},
	'S': {0b011, 0b100, 0b010, 0b001, 0b110},
	'T': {0b111, 0b010, 0b010, 0b010, 0b010},
	'U': {0b101, 0b101, 0b101, 0b101, 0b111},
	'V': {0b101, 0b101, 0b101, 0b101, 0b010},
	'X': {0b101, 0b101, 0b010, 0b101, 0b101},
	'Y': {0b101, 0b101, 0b010, 0b010, 0b010},
	'.': {0b000, 0b000, 0b000, 0b000, 0b010},
	'-': {0b000, 0b000, 0b111, 0b000, 0b000},
	' ': {0b000, 0b000, 0b000, 0b000, 0b000},
}

// getCharPattern returns the 3x5 pixel pattern for a character, or an empty
// pattern for anything the tiny font does not cover.
func getCharPattern(ch rune) [5]uint8 {
	if ch >= '0' && ch <= '9' {
		return digitPatterns[ch-'0']
	}
	if ch >= 'a' && ch <= 'z' {
		ch = ch - 'a' + 'A'
	}
	if pattern, ok := letterPatterns[ch]; ok {
		return pattern
	}
	return [5]uint8{}
}

// drawText draws a horizontal label centered at the given pixel position.
func (sc *SelectorCanvas) drawText(output *goimage.RGBA, text string, centerX, centerY int, col color.RGBA, textScale int) {
	if textScale < 1 {
		textScale = 1
	}

	charWidth := 3 * textScale
	charHeight := 5 * textScale
	spacing := textScale
	runes := []rune(text)
	if len(runes) == 0 {
		return
	}
	labelWidth := len(runes)*charWidth + (len(runes)-1)*spacing

	startX := centerX - labelWidth/2
	startY := centerY - charHeight/2
	bounds := output.Bounds()

	for i, ch := range runes {
		pattern := getCharPattern(ch)
		charX := startX + i*(charWidth+spacing)

		for row := 0; row < 5; row++ {
			for c := 0; c < 3; c++ {
				if (pattern[row] & (1 << (2 - c))) == 0 {
					continue
				}
				for dy := 0; dy < textScale; dy++ {
					for dx := 0; dx < textScale; dx++ {
						px := charX + c*textScale + dx
						py := startY + row*textScale + dy
						if px >= bounds.Min.X && px < bounds.Max.X &&
							py >= bounds.Min.Y && py < bounds.Max.Y {
							output.SetRGBA(px, py, col)
						}
					}
				}
			}
		}
	}
}
