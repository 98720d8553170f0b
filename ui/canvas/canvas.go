// Package canvas provides the interactive selector surface: the slab
// photograph at the current zoom with draggable per-surface selection boxes.
package canvas

import (
	goimage "image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"slab-mapper/internal/app"
	"slab-mapper/internal/scale"
	"slab-mapper/internal/surface"
	"slab-mapper/pkg/geometry"
)

const zoomStep = 1.25

// SelectorCanvas renders the zoomed slab photograph with the selection boxes
// and handles the drag gestures that move them. Selections are stored in base
// canvas coordinates; zoom is divided out at the pointer-event boundary and
// nowhere else.
type SelectorCanvas struct {
	widget.BaseWidget

	state *app.State

	raster  *fynecanvas.Raster
	scroll  *panScroll
	content *dragContent
	imgSize fyne.Size

	// Cached zoomed photograph, rebuilt when the slab or zoom changes.
	cachedZoomed *goimage.RGBA
	cachedZoom   float64
	cachedSlab   goimage.Image

	// Gesture state. A gesture is classified once, at its first event: it
	// either drags the selection it started on or pans the view.
	dragging    bool
	dragActive  bool
	dragSurface surface.Surface
	dragOffset  geometry.Point2D

	// Surface highlighted in the panels.
	selected    surface.Surface
	hasSelected bool

	onSurfaceTapped func(srf surface.Surface, ok bool)
}

// NewSelectorCanvas creates the selector surface bound to the application
// state. The canvas reacts to state events; it never mutates state fields
// directly.
func NewSelectorCanvas(state *app.State) *SelectorCanvas {
	sc := &SelectorCanvas{
		state:   state,
		imgSize: fyne.NewSize(400, 300),
	}

	sc.raster = fynecanvas.NewRaster(sc.draw)
	sc.raster.ScaleMode = fynecanvas.ImageScalePixels
	sc.raster.SetMinSize(sc.imgSize)

	sc.content = newDragContent(sc, sc.raster)
	sc.scroll = newPanScroll(sc.content, sc)

	state.On(app.EventImageLoaded, func(interface{}) {
		sc.invalidateCache()
		sc.updateContentSize()
	})
	state.On(app.EventCalibrationChanged, func(interface{}) {
		sc.invalidateCache()
		sc.updateContentSize()
	})
	state.On(app.EventZoomChanged, func(interface{}) {
		sc.updateContentSize()
	})
	state.On(app.EventSelectionChanged, func(interface{}) {
		sc.Refresh()
	})

	sc.ExtendBaseWidget(sc)
	return sc
}

// Container returns the canvas container for embedding in layouts.
func (sc *SelectorCanvas) Container() fyne.CanvasObject {
	return sc.scroll
}

// OnSurfaceTapped sets a callback invoked when a tap hits (or misses) a
// selection box.
func (sc *SelectorCanvas) OnSurfaceTapped(callback func(srf surface.Surface, ok bool)) {
	sc.onSurfaceTapped = callback
}

// Selected returns the currently highlighted surface.
func (sc *SelectorCanvas) Selected() (surface.Surface, bool) {
	return sc.selected, sc.hasSelected
}

// SetSelected highlights a surface's selection box.
func (sc *SelectorCanvas) SetSelected(srf surface.Surface, ok bool) {
	sc.selected = srf
	sc.hasSelected = ok
	sc.Refresh()
}

// ZoomIn increases the view zoom one step.
func (sc *SelectorCanvas) ZoomIn() {
	sc.state.SetZoom(sc.state.Zoom * zoomStep)
}

// ZoomOut decreases the view zoom one step.
func (sc *SelectorCanvas) ZoomOut() {
	sc.state.SetZoom(sc.state.Zoom / zoomStep)
}

// ResetZoom restores 1:1 base scale.
func (sc *SelectorCanvas) ResetZoom() {
	sc.state.SetZoom(1.0)
}

// Refresh redraws the raster.
func (sc *SelectorCanvas) Refresh() {
	sc.raster.Refresh()
}

func (sc *SelectorCanvas) invalidateCache() {
	sc.cachedZoomed = nil
	sc.cachedSlab = nil
}

// updateContentSize resizes the raster to the zoomed base canvas.
func (sc *SelectorCanvas) updateContentSize() {
	m := sc.state.Scale
	zoom := sc.state.Zoom
	if m.BaseCanvasW <= 0 || m.BaseCanvasH <= 0 {
		sc.imgSize = fyne.NewSize(400, 300)
	} else {
		sc.imgSize = fyne.NewSize(float32(m.BaseCanvasW*zoom), float32(m.BaseCanvasH*zoom))
	}

	sc.raster.SetMinSize(sc.imgSize)
	sc.raster.Resize(sc.imgSize)
	if sc.content != nil {
		sc.content.Resize(sc.imgSize)
		sc.content.Refresh()
	}
	sc.raster.Refresh()
	if sc.scroll != nil {
		sc.scroll.Refresh()
	}
}

// beginDrag classifies a gesture by hit-testing its starting point in base
// coordinates. Starting on a selection drags it; anywhere else pans.
func (sc *SelectorCanvas) beginDrag(base geometry.Point2D) {
	sc.dragging = true
	srf, ok := sc.state.HitTestSelection(base)
	if !ok {
		sc.dragActive = false
		return
	}
	sel, _ := sc.state.Selections.Get(srf)
	sc.dragActive = true
	sc.dragSurface = srf
	sc.dragOffset = geometry.Point2D{X: base.X - sel.X, Y: base.Y - sel.Y}
	sc.SetSelected(srf, true)
	if sc.onSurfaceTapped != nil {
		sc.onSurfaceTapped(srf, true)
	}
}

func (sc *SelectorCanvas) dragTo(base geometry.Point2D) {
	if !sc.dragActive {
		return
	}
	sc.state.MoveSelection(sc.dragSurface, base.X-sc.dragOffset.X, base.Y-sc.dragOffset.Y)
}

func (sc *SelectorCanvas) endDrag() {
	sc.dragging = false
	sc.dragActive = false
	sc.Refresh()
}

// panScroll wraps a scroll container but intercepts the wheel for zoom.
type panScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *SelectorCanvas
}

func newPanScroll(content fyne.CanvasObject, canvas *SelectorCanvas) *panScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	ps := &panScroll{scroll: scroll, canvas: canvas}
	ps.ExtendBaseWidget(ps)
	return ps
}

func (ps *panScroll) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		ps.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		ps.canvas.ZoomOut()
	}
}

func (ps *panScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ps.scroll)
}

// PanBy shifts the viewport by the given delta. Panning is unclamped beyond
// the scroll bounds the container itself enforces.
func (ps *panScroll) PanBy(dx, dy float32) {
	ps.scroll.Offset = fyne.Position{
		X: ps.scroll.Offset.X - dx,
		Y: ps.scroll.Offset.Y - dy,
	}
	ps.scroll.Refresh()
}

func (ps *panScroll) Refresh() {
	ps.scroll.Refresh()
	ps.BaseWidget.Refresh()
}

func (ps *panScroll) Resize(size fyne.Size) {
	ps.scroll.Resize(size)
	ps.BaseWidget.Resize(size)
}

// dragContent wraps the raster to receive pointer events.
type dragContent struct {
	widget.BaseWidget
	canvas *SelectorCanvas
	raster *fynecanvas.Raster
}

func newDragContent(sc *SelectorCanvas, raster *fynecanvas.Raster) *dragContent {
	dc := &dragContent{canvas: sc, raster: raster}
	dc.ExtendBaseWidget(dc)
	return dc
}

func (dc *dragContent) CreateRenderer() fyne.WidgetRenderer {
	return &dragContentRenderer{content: dc}
}

func (dc *dragContent) MinSize() fyne.Size {
	return dc.raster.MinSize()
}

// basePoint converts an event position to base canvas coordinates. Events are
// delivered relative to this widget, which spans the full zoomed canvas, so
// only the zoom needs dividing out.
func (dc *dragContent) basePoint(pos fyne.Position) geometry.Point2D {
	zoomed := geometry.Point2D{X: float64(pos.X), Y: float64(pos.Y)}
	return scale.ZoomedToBase(zoomed, dc.canvas.state.Zoom)
}

func (dc *dragContent) Dragged(ev *fyne.DragEvent) {
	base := dc.basePoint(ev.Position)

	if !dc.canvas.dragging {
		dc.canvas.beginDrag(base)
	}
	if dc.canvas.dragActive {
		dc.canvas.dragTo(base)
	} else {
		dc.canvas.scroll.PanBy(ev.Dragged.DX, ev.Dragged.DY)
	}
}

func (dc *dragContent) DragEnd() {
	dc.canvas.endDrag()
}

func (dc *dragContent) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		dc.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		dc.canvas.ZoomOut()
	}
}

// Tapped highlights the selection under the pointer, or clears the highlight
// on a miss.
func (dc *dragContent) Tapped(ev *fyne.PointEvent) {
	// Reject positions outside the widget; tap events can arrive with stale
	// coordinates after a resize.
	size := dc.Size()
	if ev.Position.X < 0 || ev.Position.Y < 0 ||
		ev.Position.X > size.Width || ev.Position.Y > size.Height {
		return
	}

	base := dc.basePoint(ev.Position)
	srf, ok := dc.canvas.state.HitTestSelection(base)
	dc.canvas.SetSelected(srf, ok)
	if dc.canvas.onSurfaceTapped != nil {
		dc.canvas.onSurfaceTapped(srf, ok)
	}
}

type dragContentRenderer struct {
	content *dragContent
}

func (r *dragContentRenderer) Layout(size fyne.Size) {
	r.content.raster.Resize(size)
}

func (r *dragContentRenderer) MinSize() fyne.Size {
	return r.content.raster.MinSize()
}

func (r *dragContentRenderer) Refresh() {
	r.content.raster.Refresh()
}

func (r *dragContentRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.content.raster}
}

func (r *dragContentRenderer) Destroy() {}

// CreateRenderer implements fyne.Widget.
func (sc *SelectorCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &selectorCanvasRenderer{canvas: sc}
}

type selectorCanvasRenderer struct {
	canvas *SelectorCanvas
}

func (r *selectorCanvasRenderer) Layout(size fyne.Size) {
	if r.canvas.scroll != nil {
		r.canvas.scroll.Resize(size)
	}
}

func (r *selectorCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *selectorCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *selectorCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.scroll}
}

func (r *selectorCanvasRenderer) Destroy() {}
