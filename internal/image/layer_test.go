package image

import (
	goimage "image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDecodesPhoto(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slab.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, goimage.NewRGBA(goimage.Rect(0, 0, 40, 20))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	layer, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if layer.Width != 40 || layer.Height != 20 {
		t.Fatalf("size = %dx%d, want 40x20", layer.Width, layer.Height)
	}
	if layer.Path != path {
		t.Fatalf("path = %q, want %q", layer.Path, path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("missing file should fail")
	}
}

func TestIsSupported(t *testing.T) {
	for _, path := range []string{"a.jpg", "b.JPEG", "c.png", "d.tif", "e.TIFF"} {
		if !IsSupported(path) {
			t.Errorf("IsSupported(%q) = false", path)
		}
	}
	for _, path := range []string{"a.bmp", "b.pdf", "noext"} {
		if IsSupported(path) {
			t.Errorf("IsSupported(%q) = true", path)
		}
	}
}
