package surface

import (
	"testing"
)

func TestDimensionsValidate(t *testing.T) {
	good := Dimensions{LengthMm: 2440, WidthMm: 1234, HeightMm: 900, ThicknessMm: 30}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid dimensions rejected: %v", err)
	}

	for _, bad := range []Dimensions{
		{LengthMm: 0, WidthMm: 1, HeightMm: 1, ThicknessMm: 1},
		{LengthMm: 1, WidthMm: -5, HeightMm: 1, ThicknessMm: 1},
		{LengthMm: 1, WidthMm: 1, HeightMm: 1, ThicknessMm: 0},
	} {
		if err := bad.Validate(); err == nil {
			t.Fatalf("invalid dimensions accepted: %+v", bad)
		}
	}
}

func TestFaceSize(t *testing.T) {
	d := Dimensions{LengthMm: 2440, WidthMm: 1234, HeightMm: 900, ThicknessMm: 30}

	if fs := d.FaceSize(Top); fs.Width != 2440 || fs.Height != 1234 {
		t.Fatalf("top face = %+v", fs)
	}
	if fs := d.FaceSize(LeftEnd); fs.Width != 1234 || fs.Height != 900 {
		t.Fatalf("left end face = %+v", fs)
	}
	if fs := d.FaceSize(Backsplash); fs.Width != 2440 || fs.Height != 900 {
		t.Fatalf("backsplash face = %+v", fs)
	}
}

func TestCalibrationAspectWarning(t *testing.T) {
	c := Calibration{WidthMm: 9600, HeightMm: 2028}

	// 4000x2000 px is ~1.97, calibration is ~4.73: clearly mismatched.
	if w := c.AspectWarning(4000, 2000); w == "" {
		t.Fatal("expected aspect warning for mismatched photo")
	}
	// A photo matching the calibration aspect raises no warning.
	if w := c.AspectWarning(4800, 1014); w != "" {
		t.Fatalf("unexpected warning: %s", w)
	}
	// Within the 2% relative tolerance.
	if w := c.AspectWarning(4800, 1020); w != "" {
		t.Fatalf("tolerance should absorb small mismatch, got: %s", w)
	}
}

func TestPresetRegistry(t *testing.T) {
	p, ok := GetPreset("Standard Island")
	if !ok {
		t.Fatal("built-in preset missing")
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("built-in preset invalid: %v", err)
	}
	if p.Island.LengthMm != 2440 {
		t.Fatalf("unexpected island length %v", p.Island.LengthMm)
	}
	if len(ListPresets()) < 2 {
		t.Fatalf("expected at least two presets, got %v", ListPresets())
	}
}

func TestSurfaceKeys(t *testing.T) {
	for _, s := range Order() {
		parsed, ok := ParseSurface(s.Key())
		if !ok || parsed != s {
			t.Fatalf("key round trip failed for %v", s)
		}
	}
	if _, ok := ParseSurface("bogus"); ok {
		t.Fatal("bogus key should not parse")
	}
}
