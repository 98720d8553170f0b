package project

import (
	"path/filepath"
	"testing"

	"slab-mapper/internal/surface"
)

func TestProjectRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kitchen"+Extension)

	p := New("kitchen")
	p.WallEnabled = true
	p.SetSlabImage(path, filepath.Join(dir, "photos", "slab.jpg"))

	set := surface.NewSet()
	set.Put(surface.Top, surface.Selection{X: 10, Y: 20, Width: 200, Height: 100, Rotation: 90, FlipH: true})
	set.Put(surface.Backsplash, surface.Selection{X: 300, Y: 40, Width: 150, Height: 60})
	p.SetSelections(set)

	if err := p.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Name != "kitchen" || !loaded.WallEnabled {
		t.Fatalf("fields lost: %+v", loaded)
	}
	if loaded.Version != FileVersion {
		t.Fatalf("version = %d", loaded.Version)
	}
	if loaded.Island.LengthMm != p.Island.LengthMm {
		t.Fatalf("island dimensions lost: %+v", loaded.Island)
	}

	restored := surface.NewSet()
	loaded.RestoreSelections(restored)
	sel, ok := restored.Get(surface.Top)
	if !ok {
		t.Fatal("top selection lost")
	}
	if sel.Rotation != 90 || !sel.FlipH || sel.X != 10 {
		t.Fatalf("top selection corrupted: %+v", sel)
	}
	if _, ok := restored.Get(surface.LeftEnd); ok {
		t.Fatal("unexpected selection for unsaved surface")
	}
}

func TestProjectRelativeImagePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p"+Extension)

	p := New("p")
	p.SetSlabImage(path, filepath.Join(dir, "img", "slab.png"))
	if filepath.IsAbs(p.SlabImagePath) {
		t.Fatalf("image path stored absolute: %s", p.SlabImagePath)
	}
	if got := p.GetSlabImagePath(path); got != filepath.Join(dir, "img", "slab.png") {
		t.Fatalf("resolved path = %s", got)
	}
}

func TestProjectRejectsNewerSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "future"+Extension)

	p := New("future")
	p.Version = FileVersion + 1
	if err := p.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("newer schema version must be rejected")
	}
}

func TestLoadUnknownSelectionKeysSkipped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old"+Extension)

	p := New("old")
	p.Selections = map[string]surface.Selection{
		"top":       {X: 1, Y: 2, Width: 30, Height: 40},
		"misc-face": {X: 9, Y: 9, Width: 9, Height: 9},
	}
	if err := p.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	set := surface.NewSet()
	loaded.RestoreSelections(set)
	if _, ok := set.Get(surface.Top); !ok {
		t.Fatal("known surface should restore")
	}
	if got := len(set.Active()); got != 1 {
		t.Fatalf("unknown keys should be skipped, got %d active", got)
	}
}
