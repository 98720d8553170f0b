package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"sync"

	"github.com/disintegration/imaging"

	"slab-mapper/internal/scale"
	"slab-mapper/internal/surface"
	"slab-mapper/pkg/geometry"
)

// Extract produces the bitmap for one selection. The selection is given in
// base canvas coordinates (zoom already divided out at capture time); the
// scale model maps it into source image pixels. Rotation and mirroring are
// baked into the bitmap using the same orientation composition the canvas
// uses for preview drawing, so the on-screen box and the extracted texture
// can never disagree.
func Extract(src image.Image, sel surface.Selection, m scale.Model, faceMm geometry.Size) (*image.NRGBA, error) {
	if src == nil {
		return nil, ErrNoImage
	}
	if sel.Width <= 0 || sel.Height <= 0 {
		return nil, fmt.Errorf("texture: degenerate selection %gx%g", sel.Width, sel.Height)
	}
	if faceMm.Width <= 0 || faceMm.Height <= 0 {
		return nil, fmt.Errorf("texture: degenerate face size %gx%g mm", faceMm.Width, faceMm.Height)
	}

	// Selection rect into source image pixel space.
	imgRect := m.CanvasRectToImage(sel.Rect())
	sample := clampSampleRect(imgRect, m.ImageW, m.ImageH)

	out := imaging.Crop(src, sample)

	// Bake the orientation: mirror first, then rotate, matching the forward
	// matrix translate -> flip -> rotate used by the preview renderer.
	if sel.FlipH {
		out = imaging.FlipH(out)
	}
	if sel.FlipV {
		out = imaging.FlipV(out)
	}
	o := sel.Orientation().Normalize()
	switch o.Rotation {
	case 90:
		// imaging rotates counter-clockwise; a screen-clockwise quarter
		// turn is a 270-degree counter-clockwise image rotation.
		out = imaging.Rotate270(out)
	case 180:
		out = imaging.Rotate180(out)
	case 270:
		out = imaging.Rotate90(out)
	}

	outW, outH := outputSize(out.Bounds().Dx(), faceMm, o)
	if outW != out.Bounds().Dx() || outH != out.Bounds().Dy() {
		out = imaging.Resize(out, outW, outH, imaging.Lanczos)
	}
	return out, nil
}

// ExtractPNG runs Extract and encodes the result losslessly.
func ExtractPNG(src image.Image, srcRef string, req Request, m scale.Model) (*Texture, error) {
	img, err := Extract(src, req.Selection, m, req.FaceMm)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", req.Surface.Key(), err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode %s: %w", req.Surface.Key(), err)
	}

	return &Texture{
		Surface:   req.Surface,
		Image:     img,
		PNG:       buf.Bytes(),
		FaceMm:    req.FaceMm,
		SourceRef: srcRef,
	}, nil
}

// ExtractAll extracts every requested face concurrently. Each extraction is
// a pure function over independent inputs, so completion order is
// irrelevant; the batch waits for all of them and fails as a whole if any
// single face fails. No partial texture set is ever returned.
func ExtractAll(src image.Image, srcRef string, reqs []Request, m scale.Model) (Set, error) {
	if src == nil {
		return nil, ErrNoImage
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		set      = make(Set, len(reqs))
	)

	for _, req := range reqs {
		wg.Add(1)
		go func(req Request) {
			defer wg.Done()
			tex, err := ExtractPNG(src, srcRef, req, m)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			set[req.Surface] = tex
		}(req)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return set, nil
}

// clampSampleRect converts the float sample rect into an integer rectangle
// fully inside the image. Rects reaching past the edge are shifted back in,
// never shrunk below the image size, so the full requested sample is read
// anchored as centrally as the bounds allow.
func clampSampleRect(r geometry.Rect, imageW, imageH int) image.Rectangle {
	x := int(math.Round(r.X))
	y := int(math.Round(r.Y))
	w := int(math.Round(r.Width))
	h := int(math.Round(r.Height))

	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if w > imageW {
		w = imageW
	}
	if h > imageH {
		h = imageH
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x+w > imageW {
		x = imageW - w
	}
	if y+h > imageH {
		y = imageH - h
	}
	return image.Rect(x, y, x+w, y+h)
}

// outputSize derives the final bitmap dimensions: the destination face's
// millimeter aspect exactly (swapped for quarter turns), sized from the
// rotated sample width and capped so the longer edge never exceeds
// MaxTextureDim.
func outputSize(rotatedW int, faceMm geometry.Size, o geometry.Orientation) (int, int) {
	aspect := faceMm.Width / faceMm.Height
	if o.QuarterTurn() {
		aspect = faceMm.Height / faceMm.Width
	}

	w := float64(rotatedW)
	h := w / aspect
	if w >= h && w > MaxTextureDim {
		w = MaxTextureDim
		h = w / aspect
	} else if h > w && h > MaxTextureDim {
		h = MaxTextureDim
		w = h * aspect
	}

	outW := int(math.Round(w))
	outH := int(math.Round(h))
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}
	return outW, outH
}
