// Command slabcal detects the slab within a supplier photograph and suggests
// a full-photo calibration from the slab's known physical width.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	_ "golang.org/x/image/tiff"

	"slab-mapper/internal/slabdetect"
)

func main() {
	imagePath := flag.String("image", "", "Path to slab photo (TIFF, PNG, or JPEG)")
	widthMm := flag.Float64("width", 0, "Known physical width of the slab in mm")
	minArea := flag.Float64("minarea", slabdetect.DefaultParams().MinAreaFrac,
		"Minimum slab area as a fraction of the photo")
	flag.Parse()

	if *imagePath == "" || *widthMm <= 0 {
		fmt.Println("Usage: slabcal -image <path> -width <mm> [-minarea 0.05]")
		os.Exit(1)
	}

	f, err := os.Open(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open image: %v\n", err)
		os.Exit(1)
	}
	cfg, format, err := image.DecodeConfig(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read image header: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %s image: %dx%d pixels\n", format, cfg.Width, cfg.Height)

	params := slabdetect.DefaultParams()
	params.MinAreaFrac = *minArea
	fmt.Printf("\nDetection parameters:\n")
	fmt.Printf("  Blur kernel: %d\n", params.BlurKernel)
	fmt.Printf("  Close kernel: %d\n", params.CloseKernel)
	fmt.Printf("  Min area fraction: %.2f\n", params.MinAreaFrac)

	fmt.Printf("\nDetecting slab...\n")
	result, err := slabdetect.DetectFile(*imagePath, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
		os.Exit(1)
	}

	b := result.Bounds
	fmt.Printf("\nSlab extent: %dx%d px at (%d,%d), %.1f%% of photo\n",
		b.Dx(), b.Dy(), b.Min.X, b.Min.Y, 100*result.AreaFrac)
	fmt.Printf("Skew: %.2f degrees\n", result.SkewDegrees)
	if math.Abs(result.SkewDegrees) > 1.0 {
		fmt.Printf("Note: photo is skewed; consider straightening it before mapping\n")
	}

	calib, err := slabdetect.SuggestCalibration(b, cfg.Width, cfg.Height, *widthMm)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Calibration failed: %v\n", err)
		os.Exit(1)
	}

	ppm := float64(b.Dx()) / *widthMm
	fmt.Printf("\nPixel density: %.3f px/mm\n", ppm)
	fmt.Printf("Slab height: %.0f mm\n", float64(b.Dy())/ppm)
	fmt.Printf("\nSuggested calibration: %.0f x %.0f mm (aspect %.3f)\n",
		calib.WidthMm, calib.HeightMm, calib.WidthMm/calib.HeightMm)
}
