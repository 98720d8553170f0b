package surface

import (
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/floats/scalar"

	"slab-mapper/pkg/geometry"
)

// Dimensions holds the real-world size of one rectangular assembly in
// millimeters. Length runs along the primary surface, Width across it,
// Height is the vertical extent of side and backsplash faces, Thickness the
// material depth (geometry only, never textured).
type Dimensions struct {
	LengthMm    float64 `json:"length_mm"`
	WidthMm     float64 `json:"width_mm"`
	HeightMm    float64 `json:"height_mm"`
	ThicknessMm float64 `json:"thickness_mm"`
}

// Validate checks that every field is positive.
func (d Dimensions) Validate() error {
	if d.LengthMm <= 0 || d.WidthMm <= 0 || d.HeightMm <= 0 || d.ThicknessMm <= 0 {
		return fmt.Errorf("surface: dimensions must be positive, got %+v", d)
	}
	return nil
}

// FaceSize returns the millimeter size of one face under these dimensions.
// Side faces stand Width wide by Height tall; the backsplash runs the full
// Length at Height tall.
func (d Dimensions) FaceSize(s Surface) geometry.Size {
	switch s {
	case Top, Countertop:
		return geometry.Size{Width: d.LengthMm, Height: d.WidthMm}
	case LeftEnd, RightEnd:
		return geometry.Size{Width: d.WidthMm, Height: d.HeightMm}
	case Backsplash:
		return geometry.Size{Width: d.LengthMm, Height: d.HeightMm}
	default:
		return geometry.Size{}
	}
}

// Calibration is the real-world size the entire loaded photograph represents,
// e.g. three slabs photographed side by side.
type Calibration struct {
	WidthMm  float64 `json:"width_mm"`
	HeightMm float64 `json:"height_mm"`
}

// Validate checks that the calibration is positive.
func (c Calibration) Validate() error {
	if c.WidthMm <= 0 || c.HeightMm <= 0 {
		return fmt.Errorf("surface: calibration must be positive, got %gx%g mm", c.WidthMm, c.HeightMm)
	}
	return nil
}

// aspectTolerance is the relative mismatch between the calibration aspect and
// the photograph pixel aspect tolerated without a warning.
const aspectTolerance = 0.02

// AspectWarning compares the calibration aspect against the photograph's
// pixel aspect. A mismatch is reported as a user-visible warning string; it
// never blocks loading or extraction. Returns "" when the aspects agree.
func (c Calibration) AspectWarning(imageW, imageH int) string {
	if imageW <= 0 || imageH <= 0 || c.Validate() != nil {
		return ""
	}
	calib := c.WidthMm / c.HeightMm
	photo := float64(imageW) / float64(imageH)
	if scalar.EqualWithinRel(calib, photo, aspectTolerance) {
		return ""
	}
	return fmt.Sprintf("calibration aspect %.3f does not match photo aspect %.3f; extracted textures may be distorted", calib, photo)
}

// Preset is a named standard size, in the style of a catalog entry.
type Preset struct {
	Name        string      `json:"name"`
	Island      Dimensions  `json:"island"`
	Wall        Dimensions  `json:"wall"`
	Calibration Calibration `json:"calibration"`
}

// Validate checks the preset's dimension records.
func (p Preset) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("surface: preset name is required")
	}
	if err := p.Island.Validate(); err != nil {
		return fmt.Errorf("preset %q island: %w", p.Name, err)
	}
	if err := p.Wall.Validate(); err != nil {
		return fmt.Errorf("preset %q wall: %w", p.Name, err)
	}
	if err := p.Calibration.Validate(); err != nil {
		return fmt.Errorf("preset %q calibration: %w", p.Name, err)
	}
	return nil
}

// SaveToFile writes the preset to a JSON file.
func (p Preset) SaveToFile(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadPresetFile reads and validates a preset from a JSON file.
func LoadPresetFile(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, err
	}
	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return Preset{}, err
	}
	if err := p.Validate(); err != nil {
		return Preset{}, fmt.Errorf("invalid preset: %w", err)
	}
	return p, nil
}

// Registry of built-in presets.
var registry = make(map[string]Preset)

// Register adds a preset to the registry.
func Register(p Preset) {
	registry[p.Name] = p
}

// GetPreset returns a preset by name, or false if unknown.
func GetPreset(name string) (Preset, bool) {
	p, ok := registry[name]
	return p, ok
}

// ListPresets returns all registered preset names.
func ListPresets() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

func init() {
	Register(Preset{
		Name: "Standard Island",
		Island: Dimensions{
			LengthMm:    2440,
			WidthMm:     1234,
			HeightMm:    900,
			ThicknessMm: 30,
		},
		Wall: Dimensions{
			LengthMm:    3000,
			WidthMm:     650,
			HeightMm:    600,
			ThicknessMm: 20,
		},
		Calibration: Calibration{WidthMm: 9600, HeightMm: 2028},
	})
	Register(Preset{
		Name: "Compact Island",
		Island: Dimensions{
			LengthMm:    1800,
			WidthMm:     900,
			HeightMm:    900,
			ThicknessMm: 20,
		},
		Wall: Dimensions{
			LengthMm:    2400,
			WidthMm:     600,
			HeightMm:    450,
			ThicknessMm: 20,
		},
		Calibration: Calibration{WidthMm: 3200, HeightMm: 2000},
	})
}
