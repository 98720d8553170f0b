package geometry

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestOrientationRotationCycle(t *testing.T) {
	o := Orientation{}
	for i := 0; i < 4; i++ {
		o = o.RotateCW()
	}
	if o.Rotation != 0 {
		t.Fatalf("four clockwise steps should return to 0, got %d", o.Rotation)
	}

	o = o.RotateCW().RotateCCW()
	if o.Rotation != 0 {
		t.Fatalf("cw then ccw should be a no-op, got %d", o.Rotation)
	}

	o = Orientation{}.RotateCCW()
	if o.Rotation != 270 {
		t.Fatalf("ccw from 0 should be 270, got %d", o.Rotation)
	}
}

func TestOrientationFlipToggles(t *testing.T) {
	o := Orientation{}
	o = o.ToggleFlipH()
	if !o.FlipH || o.FlipV {
		t.Fatalf("unexpected flips after one H toggle: %+v", o)
	}
	o = o.ToggleFlipV()
	if !o.FlipH || !o.FlipV {
		t.Fatalf("flips should be independent: %+v", o)
	}
	o = o.ToggleFlipH().ToggleFlipV()
	if o.FlipH || o.FlipV {
		t.Fatalf("double toggle should restore unflipped state: %+v", o)
	}
}

func TestOrientationQuarterTurn(t *testing.T) {
	for _, tc := range []struct {
		rotation int
		want     bool
	}{
		{0, false}, {90, true}, {180, false}, {270, true},
	} {
		o := Orientation{Rotation: tc.rotation}
		if o.QuarterTurn() != tc.want {
			t.Errorf("rotation %d: QuarterTurn = %v, want %v", tc.rotation, o.QuarterTurn(), tc.want)
		}
	}
}

func TestOrientationMatrixMapsCorners(t *testing.T) {
	// 200x100 rect centered at (100,100), rotated 90 clockwise: the right edge
	// midpoint (200,100) must land on the bottom of the footprint (100,200).
	center := Point2D{X: 100, Y: 100}
	o := Orientation{Rotation: 90}
	m := o.Matrix(center)

	got := m.Apply(Point2D{X: 200, Y: 100})
	if !almostEqual(got.X, 100) || !almostEqual(got.Y, 200) {
		t.Fatalf("right edge midpoint mapped to (%v,%v), want (100,200)", got.X, got.Y)
	}

	// The center is a fixed point for every rotation and flip combination.
	for rot := 0; rot < 360; rot += 90 {
		for _, fh := range []bool{false, true} {
			for _, fv := range []bool{false, true} {
				m := Orientation{Rotation: rot, FlipH: fh, FlipV: fv}.Matrix(center)
				p := m.Apply(center)
				if !almostEqual(p.X, center.X) || !almostEqual(p.Y, center.Y) {
					t.Fatalf("center moved under rot=%d fh=%v fv=%v: %+v", rot, fh, fv, p)
				}
			}
		}
	}
}

func TestOrientationInverseRoundTrip(t *testing.T) {
	center := Point2D{X: 42, Y: 17}
	points := []Point2D{{0, 0}, {100, 30}, {-5, 80}, {42, 17}}

	for rot := 0; rot < 360; rot += 90 {
		for _, fh := range []bool{false, true} {
			for _, fv := range []bool{false, true} {
				o := Orientation{Rotation: rot, FlipH: fh, FlipV: fv}
				m := o.Matrix(center)
				inv := o.InverseMatrix(center)
				for _, p := range points {
					q := inv.Apply(m.Apply(p))
					if !almostEqual(q.X, p.X) || !almostEqual(q.Y, p.Y) {
						t.Fatalf("round trip failed for rot=%d fh=%v fv=%v: %+v -> %+v", rot, fh, fv, p, q)
					}
				}
			}
		}
	}
}

func TestTransformSizeSwap(t *testing.T) {
	s := Size{Width: 200, Height: 100}
	if got := (Orientation{Rotation: 90}).TransformSize(s); got.Width != 100 || got.Height != 200 {
		t.Fatalf("quarter turn should swap size, got %+v", got)
	}
	if got := (Orientation{Rotation: 180, FlipH: true}).TransformSize(s); got != s {
		t.Fatalf("half turn must not swap size, got %+v", got)
	}
}
