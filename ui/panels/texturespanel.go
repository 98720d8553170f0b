package panels

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"slab-mapper/internal/app"
	"slab-mapper/internal/surface"
	"slab-mapper/internal/texture"
	"slab-mapper/ui/canvas"
)

// TexturesPanel orients the selected surface's crop and runs extraction. The
// per-surface status lines update whenever a batch completes.
type TexturesPanel struct {
	state     *app.State
	canvas    *canvas.SelectorCanvas
	window    fyne.Window
	container fyne.CanvasObject

	selectedLabel *widget.Label
	extractButton *widget.Button
	status        *widget.Label
	surfaceStatus map[surface.Surface]*widget.Label

	applier texture.Applier
}

// NewTexturesPanel creates the textures panel.
func NewTexturesPanel(state *app.State, cvs *canvas.SelectorCanvas) *TexturesPanel {
	tp := &TexturesPanel{
		state:         state,
		canvas:        cvs,
		surfaceStatus: make(map[surface.Surface]*widget.Label),
	}

	tp.selectedLabel = widget.NewLabel("No surface selected")
	tp.status = widget.NewLabel("")
	tp.status.Wrapping = fyne.TextWrapWord

	rotateCCW := widget.NewButton("Rotate CCW", func() { tp.rotate(false) })
	rotateCW := widget.NewButton("Rotate CW", func() { tp.rotate(true) })
	flipH := widget.NewButton("Flip H", func() { tp.flip(true) })
	flipV := widget.NewButton("Flip V", func() { tp.flip(false) })

	tp.extractButton = widget.NewButton("Apply Textures", tp.onExtract)
	saveButton := widget.NewButton("Save Textures...", tp.onSaveTextures)

	statusRows := container.NewVBox()
	for _, srf := range surface.Order() {
		label := widget.NewLabel(srf.String() + ": no texture")
		tp.surfaceStatus[srf] = label
		statusRows.Add(label)
	}

	tp.container = container.NewVBox(
		widget.NewCard("Selected Surface", "", container.NewVBox(
			tp.selectedLabel,
			container.NewHBox(rotateCCW, rotateCW),
			container.NewHBox(flipH, flipV),
		)),
		widget.NewCard("Extraction", "", container.NewVBox(
			tp.extractButton,
			saveButton,
			tp.status,
		)),
		widget.NewCard("Surfaces", "", statusRows),
	)

	cvs.OnSurfaceTapped(func(srf surface.Surface, ok bool) {
		if ok {
			tp.selectedLabel.SetText(srf.String())
		} else {
			tp.selectedLabel.SetText("No surface selected")
		}
	})

	state.On(app.EventTexturesApplied, func(data interface{}) {
		if set, ok := data.(texture.Set); ok {
			tp.updateSurfaceStatus(set)
		}
	})
	state.On(app.EventDimensionsChanged, func(interface{}) {
		tp.clearSurfaceStatus()
	})

	return tp
}

// Container returns the panel container.
func (tp *TexturesPanel) Container() fyne.CanvasObject {
	return tp.container
}

// SetWindow sets the parent window for dialogs.
func (tp *TexturesPanel) SetWindow(w fyne.Window) {
	tp.window = w
}

// SetApplier sets the consumer that receives completed texture sets.
func (tp *TexturesPanel) SetApplier(applier texture.Applier) {
	tp.applier = applier
}

func (tp *TexturesPanel) rotate(clockwise bool) {
	srf, ok := tp.canvas.Selected()
	if !ok {
		tp.status.SetText("Select a surface first")
		return
	}
	tp.state.RotateSelection(srf, clockwise)
}

func (tp *TexturesPanel) flip(horizontal bool) {
	srf, ok := tp.canvas.Selected()
	if !ok {
		tp.status.SetText("Select a surface first")
		return
	}
	tp.state.FlipSelection(srf, horizontal)
}

func (tp *TexturesPanel) onExtract() {
	if !tp.state.HasImage() {
		tp.status.SetText("Load a slab photo first")
		return
	}

	tp.extractButton.Disable()
	tp.status.SetText("Extracting...")

	// Extraction is pure and runs off the UI thread; the state discards the
	// result if the photograph changes mid-batch.
	go func() {
		set, err := tp.state.ExtractTextures(tp.applier)
		tp.extractButton.Enable()
		if err != nil {
			tp.status.SetText(fmt.Sprintf("Extraction failed: %v", err))
			return
		}
		tp.status.SetText(fmt.Sprintf("Extracted %d textures", len(set)))
	}()
}

func (tp *TexturesPanel) onSaveTextures() {
	if tp.window == nil {
		return
	}

	set := tp.state.LastTextures()
	if len(set) == 0 {
		var err error
		if set, err = tp.state.ExtractTextures(tp.applier); err != nil {
			tp.status.SetText(fmt.Sprintf("Extraction failed: %v", err))
			return
		}
	}

	dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil || dir == nil {
			return
		}
		count := 0
		for srf, tex := range set {
			name := strings.ReplaceAll(srf.Key(), "/", "_") + ".png"
			path := filepath.Join(dir.Path(), name)
			if werr := os.WriteFile(path, tex.PNG, 0o644); werr != nil {
				tp.status.SetText(fmt.Sprintf("Save failed: %v", werr))
				return
			}
			count++
		}
		tp.status.SetText(fmt.Sprintf("Saved %d textures", count))
	}, tp.window)
}

func (tp *TexturesPanel) updateSurfaceStatus(set texture.Set) {
	for srf, label := range tp.surfaceStatus {
		tex, ok := set[srf]
		if !ok || tex == nil {
			label.SetText(srf.String() + ": no texture")
			continue
		}
		b := tex.Image.Bounds()
		label.SetText(fmt.Sprintf("%s: %dx%d px (%.0fx%.0f mm)",
			srf.String(), b.Dx(), b.Dy(), tex.FaceMm.Width, tex.FaceMm.Height))
	}
}

func (tp *TexturesPanel) clearSurfaceStatus() {
	for srf, label := range tp.surfaceStatus {
		label.SetText(srf.String() + ": no texture")
	}
}
