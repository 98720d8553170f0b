package app

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"slab-mapper/internal/project"
	"slab-mapper/internal/surface"
	"slab-mapper/internal/texture"
	"slab-mapper/pkg/geometry"
)

// writePhoto drops a small PNG on disk for load tests.
func writePhoto(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	path := filepath.Join(dir, "slab.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create photo: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode photo: %v", err)
	}
	return path
}

func TestLoadSlabImageRebuildsScale(t *testing.T) {
	s := NewState()
	path := writePhoto(t, t.TempDir(), 400, 200)

	if err := s.LoadSlabImage(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !s.HasImage() {
		t.Fatal("image not retained")
	}
	// Default calibration is 9600 mm wide; the viewport limit forces the base
	// canvas to 900 px.
	if s.Scale.BaseCanvasW != 900 {
		t.Fatalf("base canvas width = %v, want 900", s.Scale.BaseCanvasW)
	}
	// Wall is disabled by default, so only island surfaces get selections.
	active := s.Selections.Active()
	if len(active) != len(surface.IslandSurfaces()) {
		t.Fatalf("active surfaces = %v", active)
	}
}

func TestSetWallEnabledTogglesSelections(t *testing.T) {
	s := NewState()
	path := writePhoto(t, t.TempDir(), 400, 200)
	if err := s.LoadSlabImage(path); err != nil {
		t.Fatalf("load: %v", err)
	}

	s.SetWallEnabled(true)
	if got := len(s.Selections.Active()); got != 5 {
		t.Fatalf("active after enabling wall = %d, want 5", got)
	}

	// Move the top selection, then disable the wall: island selections must
	// survive untouched.
	if !s.MoveSelection(surface.Top, 123, 45) {
		t.Fatal("move failed")
	}
	s.SetWallEnabled(false)
	if got := len(s.Selections.Active()); got != 3 {
		t.Fatalf("active after disabling wall = %d, want 3", got)
	}
	sel, _ := s.Selections.Get(surface.Top)
	if sel.X != 123 || sel.Y != 45 {
		t.Fatalf("island selection lost its position: %+v", sel)
	}
}

func TestSetIslandDimensionsRegeneratesOnlyIsland(t *testing.T) {
	s := NewState()
	path := writePhoto(t, t.TempDir(), 400, 200)
	if err := s.LoadSlabImage(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	s.SetWallEnabled(true)
	if !s.MoveSelection(surface.Countertop, 300, 80) {
		t.Fatal("move failed")
	}

	d := s.Island
	d.LengthMm = 3000
	if err := s.SetIslandDimensions(d); err != nil {
		t.Fatalf("set dimensions: %v", err)
	}

	// Island selections reset to defaults at the inset position.
	top, _ := s.Selections.Get(surface.Top)
	if top.X != 10 || top.Y != 10 {
		t.Fatalf("top selection not regenerated: %+v", top)
	}
	wantW := 3000 * s.Scale.PixelsPerMm()
	if diff := top.Width - wantW; diff > 0.01 || diff < -0.01 {
		t.Fatalf("top width = %v, want %v", top.Width, wantW)
	}
	// Wall selections untouched.
	ct, _ := s.Selections.Get(surface.Countertop)
	if ct.X != 300 || ct.Y != 80 {
		t.Fatalf("countertop selection regenerated unexpectedly: %+v", ct)
	}
}

func TestSelectionEventsAndClamping(t *testing.T) {
	s := NewState()
	path := writePhoto(t, t.TempDir(), 400, 200)
	if err := s.LoadSlabImage(path); err != nil {
		t.Fatalf("load: %v", err)
	}

	var events int
	s.On(EventSelectionChanged, func(interface{}) { events++ })

	if !s.MoveSelection(surface.Top, 1e6, 1e6) {
		t.Fatal("move failed")
	}
	sel, _ := s.Selections.Get(surface.Top)
	if sel.X+sel.Width > s.Scale.BaseCanvasW+0.01 || sel.Y+sel.Height > s.Scale.BaseCanvasH+0.01 {
		t.Fatalf("selection escaped the canvas: %+v", sel)
	}
	if !s.RotateSelection(surface.Top, true) {
		t.Fatal("rotate failed")
	}
	if !s.FlipSelection(surface.Top, true) {
		t.Fatal("flip failed")
	}
	if events != 3 {
		t.Fatalf("selection events = %d, want 3", events)
	}

	// Operations on a surface with no selection report false and stay silent.
	if s.MoveSelection(surface.Backsplash, 0, 0) {
		t.Fatal("move on missing selection should fail")
	}
	if events != 3 {
		t.Fatalf("missing selection emitted an event")
	}
}

func TestHitTestSelection(t *testing.T) {
	s := NewState()
	path := writePhoto(t, t.TempDir(), 400, 200)
	if err := s.LoadSlabImage(path); err != nil {
		t.Fatalf("load: %v", err)
	}

	sel, _ := s.Selections.Get(surface.Top)
	inside := geometry.Point2D{X: sel.X + sel.Width/2, Y: sel.Y + sel.Height/2}
	srf, ok := s.HitTestSelection(inside)
	if !ok || srf != surface.Top {
		t.Fatalf("hit test = %v, %v", srf, ok)
	}
	if _, ok := s.HitTestSelection(geometry.Point2D{X: -50, Y: -50}); ok {
		t.Fatal("point outside all selections should miss")
	}
}

type captureApplier struct {
	set texture.Set
}

func (c *captureApplier) ApplyTextures(set texture.Set) error {
	c.set = set
	return nil
}

func TestExtractTextures(t *testing.T) {
	s := NewState()
	path := writePhoto(t, t.TempDir(), 400, 200)
	if err := s.LoadSlabImage(path); err != nil {
		t.Fatalf("load: %v", err)
	}

	var applied bool
	s.On(EventTexturesApplied, func(interface{}) { applied = true })

	applier := &captureApplier{}
	set, err := s.ExtractTextures(applier)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(set) != 3 {
		t.Fatalf("extracted %d textures, want 3", len(set))
	}
	if applier.set == nil {
		t.Fatal("applier never received the set")
	}
	if !applied {
		t.Fatal("no textures-applied event")
	}
	for _, srf := range surface.IslandSurfaces() {
		tex := set[srf]
		if tex == nil || len(tex.PNG) == 0 {
			t.Fatalf("missing texture for %v", srf)
		}
		if tex.SourceRef != path {
			t.Fatalf("texture source = %q, want %q", tex.SourceRef, path)
		}
	}
}

func TestExtractTexturesWithoutImage(t *testing.T) {
	s := NewState()
	if _, err := s.ExtractTextures(nil); err != texture.ErrNoImage {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
}

func TestNewDocumentClearsState(t *testing.T) {
	s := NewState()
	path := writePhoto(t, t.TempDir(), 400, 200)
	if err := s.LoadSlabImage(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := s.ExtractTextures(nil); err != nil {
		t.Fatalf("extract: %v", err)
	}
	if err := s.SaveProject(filepath.Join(t.TempDir(), "kitchen"+project.Extension)); err != nil {
		t.Fatalf("save: %v", err)
	}

	var imageEvents, selectionEvents int
	s.On(EventImageLoaded, func(interface{}) { imageEvents++ })
	s.On(EventSelectionChanged, func(interface{}) { selectionEvents++ })

	s.NewDocument()

	if s.HasImage() {
		t.Fatal("photograph survived the reset")
	}
	if s.ProjectPath != "" {
		t.Fatalf("project path = %q, want empty", s.ProjectPath)
	}
	if got := s.Selections.Active(); len(got) != 0 {
		t.Fatalf("selections survived the reset: %v", got)
	}
	if s.LastTextures() != nil {
		t.Fatal("textures survived the reset")
	}
	if s.Modified {
		t.Fatal("fresh document should not be modified")
	}
	if imageEvents != 1 || selectionEvents != 1 {
		t.Fatalf("events = %d image, %d selection, want 1 each", imageEvents, selectionEvents)
	}

	// Dimensions stay so the panels keep their values.
	if err := s.Island.Validate(); err != nil {
		t.Fatalf("island dimensions lost: %v", err)
	}

	if _, err := s.ExtractTextures(nil); err != texture.ErrNoImage {
		t.Fatalf("extraction after reset = %v, want ErrNoImage", err)
	}
}

func TestCommitTexturesDiscardsStaleBatch(t *testing.T) {
	s := NewState()
	path := writePhoto(t, t.TempDir(), 400, 200)
	if err := s.LoadSlabImage(path); err != nil {
		t.Fatalf("load: %v", err)
	}

	staleSlab := s.Slab
	set, err := s.ExtractTextures(nil)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	// The photograph changes while a batch from the old one is still in
	// flight; its commit must be refused and the stored set left alone.
	s.NewDocument()
	if err := s.commitTextures(staleSlab, set); err == nil {
		t.Fatal("stale batch committed after the photograph changed")
	}
	if s.LastTextures() != nil {
		t.Fatalf("stale textures stored: %v", s.LastTextures())
	}

	// Reloading makes a new layer; a batch keyed to the old pointer still
	// fails even though the path is identical.
	if err := s.LoadSlabImage(path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if err := s.commitTextures(staleSlab, set); err == nil {
		t.Fatal("batch from a replaced layer committed")
	}

	// A batch keyed to the current layer commits.
	if err := s.commitTextures(s.Slab, set); err != nil {
		t.Fatalf("current batch refused: %v", err)
	}
	if s.LastTextures() == nil {
		t.Fatal("committed set not stored")
	}
}

func TestProjectRoundTripThroughState(t *testing.T) {
	dir := t.TempDir()
	photo := writePhoto(t, dir, 400, 200)
	projPath := filepath.Join(dir, "kitchen"+project.Extension)

	s := NewState()
	if err := s.LoadSlabImage(photo); err != nil {
		t.Fatalf("load image: %v", err)
	}
	s.SetWallEnabled(true)
	if !s.MoveSelection(surface.Top, 77, 33) {
		t.Fatal("move failed")
	}
	s.RotateSelection(surface.Top, true)
	if err := s.SaveProject(projPath); err != nil {
		t.Fatalf("save: %v", err)
	}
	if s.Modified {
		t.Fatal("save should clear the modified flag")
	}

	loaded := NewState()
	if err := loaded.LoadProject(projPath); err != nil {
		t.Fatalf("load project: %v", err)
	}
	if !loaded.HasImage() {
		t.Fatal("project load should restore the photograph")
	}
	if !loaded.WallEnabled {
		t.Fatal("wall flag lost")
	}
	sel, ok := loaded.Selections.Get(surface.Top)
	if !ok {
		t.Fatal("top selection lost")
	}
	if sel.X != 77 || sel.Y != 33 || sel.Rotation != 90 {
		t.Fatalf("top selection corrupted: %+v", sel)
	}
	if loaded.Modified {
		t.Fatal("freshly loaded project should not be modified")
	}
}

func TestSetZoomClamps(t *testing.T) {
	s := NewState()
	s.SetZoom(100)
	if s.Zoom != 4.0 {
		t.Fatalf("zoom = %v, want clamped to 4", s.Zoom)
	}
	s.SetZoom(0.01)
	if s.Zoom != 0.5 {
		t.Fatalf("zoom = %v, want clamped to 0.5", s.Zoom)
	}
}

func TestApplyPresetUnknown(t *testing.T) {
	s := NewState()
	if err := s.ApplyPreset("no-such-preset"); err == nil {
		t.Fatal("unknown preset must error")
	}
}
