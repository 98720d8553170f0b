// Package image provides slab photograph loading and access to the decoded
// raster shared by the canvas and the texture extractor.
package image

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/tiff"
)

// Layer is the single loaded slab photograph. The image is decoded once at
// load time; the canvas and the extractor both sample this raster and never
// re-decode. Path doubles as the stable content reference handed around with
// extraction results.
type Layer struct {
	Path   string
	Image  image.Image
	Width  int
	Height int
}

// Load decodes the photograph at path. A decode failure is terminal for the
// load operation and leaves no partial state behind.
func Load(path string) (*Layer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", filepath.Base(path), err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("decode image %s: empty %s image", filepath.Base(path), format)
	}

	return &Layer{
		Path:   path,
		Image:  img,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// SupportedExtensions lists the photo file extensions the loader accepts.
func SupportedExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".tif", ".tiff"}
}

// IsSupported reports whether a path looks like a loadable photograph.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions() {
		if ext == e {
			return true
		}
	}
	return false
}
