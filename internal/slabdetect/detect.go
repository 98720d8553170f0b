// Package slabdetect locates the stone slab within a photograph. Suppliers
// photograph slabs against dark warehouse backgrounds, so a threshold plus
// largest-contour pass finds the slab extent well enough to seed calibration.
package slabdetect

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Params controls slab boundary detection.
type Params struct {
	// BlurKernel is the Gaussian blur kernel size, odd.
	BlurKernel int

	// MinAreaFrac rejects contours smaller than this fraction of the photo.
	MinAreaFrac float64

	// CloseKernel is the morphological close kernel size, used to bridge
	// veining and glare speckle inside the slab mask.
	CloseKernel int
}

// DefaultParams returns detection parameters tuned for supplier photographs.
func DefaultParams() Params {
	return Params{
		BlurKernel:  5,
		MinAreaFrac: 0.05,
		CloseKernel: 9,
	}
}

// Result describes the detected slab extent in photo pixels.
type Result struct {
	// Bounds is the axis-aligned bounding box of the slab contour.
	Bounds image.Rectangle

	// SkewDegrees is the rotation of the slab's minimum-area rectangle
	// relative to the photo axes, in (-45, 45].
	SkewDegrees float64

	// AreaFrac is the contour area as a fraction of the whole photo.
	AreaFrac float64
}

// DetectFile runs slab detection on the photograph at path.
func DetectFile(path string, p Params) (Result, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		return Result{}, fmt.Errorf("slabdetect: cannot read image %s", path)
	}
	defer mat.Close()

	return detect(mat, p)
}

func detect(mat gocv.Mat, p Params) (Result, error) {
	imgArea := float64(mat.Cols() * mat.Rows())
	if imgArea == 0 {
		return Result{}, fmt.Errorf("slabdetect: empty image")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	k := p.BlurKernel
	if k%2 == 0 {
		k++
	}
	gocv.GaussianBlur(gray, &gray, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(gray, &thresh, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)

	// Close small dark veins and glare holes so the slab reads as one blob.
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(p.CloseKernel, p.CloseKernel))
	defer kernel.Close()
	gocv.MorphologyEx(thresh, &thresh, gocv.MorphClose, kernel)

	contours := gocv.FindContours(thresh, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	bestArea := 0.0
	bestIdx := -1
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area > bestArea {
			bestArea = area
			bestIdx = i
		}
	}

	if bestIdx < 0 || bestArea/imgArea < p.MinAreaFrac {
		return Result{}, fmt.Errorf("slabdetect: no slab-sized contour found (largest %.1f%% of photo)",
			100*bestArea/imgArea)
	}

	contour := contours.At(bestIdx)
	rotated := gocv.MinAreaRect(contour)

	return Result{
		Bounds:      gocv.BoundingRect(contour),
		SkewDegrees: normalizeSkew(rotated.Angle),
		AreaFrac:    bestArea / imgArea,
	}, nil
}

// normalizeSkew folds OpenCV's rotated-rect angle into (-45, 45], the smallest
// rotation that would square the slab with the photo axes.
func normalizeSkew(angle float64) float64 {
	a := math.Mod(angle, 90)
	if a > 45 {
		a -= 90
	} else if a <= -45 {
		a += 90
	}
	return a
}
