package texture

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"

	"slab-mapper/internal/scale"
	"slab-mapper/internal/surface"
	"slab-mapper/pkg/geometry"
)

// identityModel maps base canvas pixels 1:1 onto image pixels so transform
// tests can reason about exact pixels.
func identityModel(w, h int) scale.Model {
	return scale.Model{
		CalibWidthMm:  float64(w),
		CalibHeightMm: float64(h),
		BaseCanvasW:   float64(w),
		BaseCanvasH:   float64(h),
		ImageW:        w,
		ImageH:        h,
	}
}

// gradientImage builds a deterministic asymmetric fixture: every pixel is
// unique, so any misplaced crop, rotation or mirror shows up.
func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x % 251),
				G: uint8(y % 241),
				B: uint8((x*3 + y*7) % 239),
				A: 255,
			})
		}
	}
	return img
}

func TestExtractDeterministic(t *testing.T) {
	src := gradientImage(900, 450)
	m := identityModel(900, 450)
	sel := surface.Selection{X: 50, Y: 50, Width: 200, Height: 100, Rotation: 90, FlipH: true}
	face := geometry.NewSize(200, 100)

	req := Request{Surface: surface.Top, Selection: sel, FaceMm: face}
	a, err := ExtractPNG(src, "slab.png", req, m)
	if err != nil {
		t.Fatalf("first extract: %v", err)
	}
	b, err := ExtractPNG(src, "slab.png", req, m)
	if err != nil {
		t.Fatalf("second extract: %v", err)
	}
	if !bytes.Equal(a.PNG, b.PNG) {
		t.Fatal("extraction is not deterministic")
	}
}

func TestExtractUnrotatedCrop(t *testing.T) {
	src := gradientImage(900, 450)
	m := identityModel(900, 450)
	sel := surface.Selection{X: 50, Y: 60, Width: 200, Height: 100}

	out, err := Extract(src, sel, m, geometry.NewSize(200, 100))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if out.Bounds().Dx() != 200 || out.Bounds().Dy() != 100 {
		t.Fatalf("output = %v, want 200x100", out.Bounds())
	}
	// 1:1 mapping: output pixel (0,0) is source pixel (50,60).
	if got, want := out.NRGBAAt(0, 0), src.NRGBAAt(50, 60); got != want {
		t.Fatalf("top-left pixel = %v, want %v", got, want)
	}
	if got, want := out.NRGBAAt(199, 99), src.NRGBAAt(249, 159); got != want {
		t.Fatalf("bottom-right pixel = %v, want %v", got, want)
	}
}

func TestExtractAspectInvariant(t *testing.T) {
	src := gradientImage(900, 450)
	m := identityModel(900, 450)
	face := geometry.NewSize(2440, 1234)
	sel := surface.Selection{X: 10, Y: 10, Width: 488, Height: 246.8}

	for _, rot := range []int{0, 90, 180, 270} {
		sel.Rotation = rot
		out, err := Extract(src, sel, m, face)
		if err != nil {
			t.Fatalf("rotation %d: %v", rot, err)
		}
		got := float64(out.Bounds().Dx()) / float64(out.Bounds().Dy())
		want := face.Width / face.Height
		if rot == 90 || rot == 270 {
			want = face.Height / face.Width
		}
		if math.Abs(got-want)/want > 0.01 {
			t.Fatalf("rotation %d: aspect = %v, want %v", rot, got, want)
		}
	}
}

func TestExtractQuarterTurnPixels(t *testing.T) {
	src := gradientImage(900, 450)
	m := identityModel(900, 450)
	sel := surface.Selection{X: 100, Y: 100, Width: 200, Height: 100, Rotation: 90}

	out, err := Extract(src, sel, m, geometry.NewSize(200, 100))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 200 {
		t.Fatalf("quarter-turn output = %v, want 100x200", out.Bounds())
	}
	// Clockwise rotation: the sample's bottom-left pixel becomes the output's
	// top-left pixel.
	if got, want := out.NRGBAAt(0, 0), src.NRGBAAt(100, 199); got != want {
		t.Fatalf("rotated top-left = %v, want source bottom-left %v", got, want)
	}
	// The sample's top-left ends up at the output's top-right.
	if got, want := out.NRGBAAt(99, 0), src.NRGBAAt(100, 100); got != want {
		t.Fatalf("rotated top-right = %v, want source top-left %v", got, want)
	}
}

func TestExtractFlipComposition(t *testing.T) {
	src := gradientImage(900, 450)
	m := identityModel(900, 450)
	face := geometry.NewSize(200, 100)
	plain := surface.Selection{X: 50, Y: 50, Width: 200, Height: 100}
	both := plain
	both.FlipH = true
	both.FlipV = true

	outPlain, err := Extract(src, plain, m, face)
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	outBoth, err := Extract(src, both, m, face)
	if err != nil {
		t.Fatalf("flipped: %v", err)
	}

	// flipH+flipV must be the 180-degree point reflection of the plain crop.
	w, h := outPlain.Bounds().Dx(), outPlain.Bounds().Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if outBoth.NRGBAAt(x, y) != outPlain.NRGBAAt(w-1-x, h-1-y) {
				t.Fatalf("point reflection mismatch at (%d,%d)", x, y)
			}
		}
	}
}

func TestExtractFlipToggleRestores(t *testing.T) {
	src := gradientImage(900, 450)
	m := identityModel(900, 450)
	face := geometry.NewSize(200, 100)
	sel := surface.Selection{X: 50, Y: 50, Width: 200, Height: 100}

	base, err := Extract(src, sel, m, face)
	if err != nil {
		t.Fatalf("base: %v", err)
	}

	// One flip changes the output, a second identical flip restores it.
	once := Extract2(t, src, surface.Selection{X: 50, Y: 50, Width: 200, Height: 100, FlipH: true}, m, face)
	if samePixels(base, once) {
		t.Fatal("single flip should change the output")
	}
	twice := Extract2(t, src, sel, m, face)
	if !samePixels(base, twice) {
		t.Fatal("unflipped extraction should match the original")
	}
}

func Extract2(t *testing.T, src image.Image, sel surface.Selection, m scale.Model, face geometry.Size) *image.NRGBA {
	t.Helper()
	out, err := Extract(src, sel, m, face)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	return out
}

func samePixels(a, b *image.NRGBA) bool {
	if a.Bounds() != b.Bounds() {
		return false
	}
	return bytes.Equal(a.Pix, b.Pix)
}

func TestExtractClampShiftsSample(t *testing.T) {
	src := gradientImage(300, 200)
	m := identityModel(300, 200)
	// Selection hangs past the right and bottom edge; the sample must be
	// shifted fully inside, not shrunk.
	sel := surface.Selection{X: 250, Y: 150, Width: 100, Height: 100}

	out, err := Extract(src, sel, m, geometry.NewSize(100, 100))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 100 {
		t.Fatalf("output = %v, want full 100x100 sample", out.Bounds())
	}
	// Shifted sample anchors at (200,100): the bottom-right of the image.
	if got, want := out.NRGBAAt(0, 0), src.NRGBAAt(200, 100); got != want {
		t.Fatalf("shifted sample origin = %v, want %v", got, want)
	}
}

func TestExtractCapsLongEdge(t *testing.T) {
	src := gradientImage(5000, 600)
	m := identityModel(5000, 600)
	// The sample is wider than the cap allows.
	sel := surface.Selection{X: 0, Y: 0, Width: 4800, Height: 480}

	out, err := Extract(src, sel, m, geometry.NewSize(4800, 480))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	if w > MaxTextureDim || h > MaxTextureDim {
		t.Fatalf("output %dx%d exceeds cap", w, h)
	}
	got := float64(w) / float64(h)
	if math.Abs(got-10)/10 > 0.01 {
		t.Fatalf("capped aspect = %v, want 10", got)
	}
}

func TestExtractEndToEndScenario(t *testing.T) {
	// 4000x2000 px photo calibrated as 9600x2028 mm; default top selection
	// for a 2440x1234 mm island, unrotated.
	src := gradientImage(4000, 2000)
	m, err := scale.New(9600, 2028, 4000, 2000)
	if err != nil {
		t.Fatalf("scale: %v", err)
	}
	face := geometry.NewSize(2440, 1234)
	sel := surface.DefaultSelection(face, m.PixelsPerMm())

	out, err := Extract(src, sel, m, face)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	got := float64(out.Bounds().Dx()) / float64(out.Bounds().Dy())
	want := 2440.0 / 1234.0
	if math.Abs(got-want)/want > 0.01 {
		t.Fatalf("end-to-end aspect = %v, want %v within 1%%", got, want)
	}
}

func TestExtractAllBatch(t *testing.T) {
	src := gradientImage(900, 450)
	m := identityModel(900, 450)
	reqs := []Request{
		{Surface: surface.Top, Selection: surface.Selection{X: 10, Y: 10, Width: 200, Height: 100}, FaceMm: geometry.NewSize(200, 100)},
		{Surface: surface.LeftEnd, Selection: surface.Selection{X: 300, Y: 10, Width: 100, Height: 80, Rotation: 270}, FaceMm: geometry.NewSize(100, 80)},
	}

	set, err := ExtractAll(src, "slab.png", reqs, m)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("batch returned %d textures, want 2", len(set))
	}
	for _, req := range reqs {
		tex := set[req.Surface]
		if tex == nil || len(tex.PNG) == 0 {
			t.Fatalf("missing texture for %v", req.Surface)
		}
		if tex.SourceRef != "slab.png" {
			t.Fatalf("texture lost its source reference: %q", tex.SourceRef)
		}
	}
}

func TestExtractAllFailsWholeBatch(t *testing.T) {
	src := gradientImage(900, 450)
	m := identityModel(900, 450)
	reqs := []Request{
		{Surface: surface.Top, Selection: surface.Selection{X: 10, Y: 10, Width: 200, Height: 100}, FaceMm: geometry.NewSize(200, 100)},
		// Degenerate face size fails this one extraction.
		{Surface: surface.RightEnd, Selection: surface.Selection{X: 10, Y: 10, Width: 200, Height: 100}, FaceMm: geometry.Size{}},
	}

	set, err := ExtractAll(src, "slab.png", reqs, m)
	if err == nil {
		t.Fatal("batch with a failing face must fail as a whole")
	}
	if set != nil {
		t.Fatalf("failed batch must not return a partial set, got %d entries", len(set))
	}
}

func TestCorrectPerspectiveUnimplemented(t *testing.T) {
	_, err := CorrectPerspective(gradientImage(10, 10), [4]geometry.Point2D{})
	if err != ErrNotImplemented {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
}
