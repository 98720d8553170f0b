// Package dialogs provides application dialogs.
package dialogs

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"slab-mapper/internal/surface"
)

// PresetDialog provides a property sheet for editing a size preset: the slab
// calibration plus the island and wall dimension records.
type PresetDialog struct {
	preset surface.Preset
	window fyne.Window

	nameEntry *widget.Entry

	// Calibration
	calibWidth  *widget.Entry
	calibHeight *widget.Entry
	aspectLabel *widget.Label

	// Island dimensions
	islandLength    *widget.Entry
	islandWidth     *widget.Entry
	islandHeight    *widget.Entry
	islandThickness *widget.Entry

	// Wall dimensions
	wallLength    *widget.Entry
	wallWidth     *widget.Entry
	wallHeight    *widget.Entry
	wallThickness *widget.Entry

	onSave func(surface.Preset)
}

// NewPresetDialog creates a preset editor seeded from the given preset.
func NewPresetDialog(preset surface.Preset, window fyne.Window, onSave func(surface.Preset)) *PresetDialog {
	return &PresetDialog{
		preset: preset,
		window: window,
		onSave: onSave,
	}
}

// Show displays the dialog.
func (d *PresetDialog) Show() {
	content := d.createContent()

	dlg := dialog.NewCustomConfirm(
		"Size Preset: "+d.preset.Name,
		"Save",
		"Cancel",
		content,
		func(save bool) {
			if !save {
				return
			}
			p, err := d.collect()
			if err != nil {
				dialog.ShowError(err, d.window)
				return
			}
			if err := p.Validate(); err != nil {
				dialog.ShowError(err, d.window)
				return
			}
			d.preset = p
			if d.onSave != nil {
				d.onSave(p)
			}
		},
		d.window,
	)
	dlg.Resize(fyne.NewSize(460, 640))
	dlg.Show()
}

func (d *PresetDialog) createContent() fyne.CanvasObject {
	d.nameEntry = widget.NewEntry()
	d.nameEntry.SetText(d.preset.Name)

	d.calibWidth = numEntry(d.preset.Calibration.WidthMm)
	d.calibHeight = numEntry(d.preset.Calibration.HeightMm)
	d.aspectLabel = widget.NewLabel("")

	// Show the resulting aspect as the calibration entries change.
	updateAspect := func(string) {
		d.updateAspectLabel()
	}
	d.calibWidth.OnChanged = updateAspect
	d.calibHeight.OnChanged = updateAspect
	d.updateAspectLabel()

	calibForm := widget.NewForm(
		widget.NewFormItem("Width (mm)", d.calibWidth),
		widget.NewFormItem("Height (mm)", d.calibHeight),
	)

	d.islandLength = numEntry(d.preset.Island.LengthMm)
	d.islandWidth = numEntry(d.preset.Island.WidthMm)
	d.islandHeight = numEntry(d.preset.Island.HeightMm)
	d.islandThickness = numEntry(d.preset.Island.ThicknessMm)

	islandForm := widget.NewForm(
		widget.NewFormItem("Length (mm)", d.islandLength),
		widget.NewFormItem("Width (mm)", d.islandWidth),
		widget.NewFormItem("Height (mm)", d.islandHeight),
		widget.NewFormItem("Thickness (mm)", d.islandThickness),
	)

	d.wallLength = numEntry(d.preset.Wall.LengthMm)
	d.wallWidth = numEntry(d.preset.Wall.WidthMm)
	d.wallHeight = numEntry(d.preset.Wall.HeightMm)
	d.wallThickness = numEntry(d.preset.Wall.ThicknessMm)

	wallForm := widget.NewForm(
		widget.NewFormItem("Length (mm)", d.wallLength),
		widget.NewFormItem("Depth (mm)", d.wallWidth),
		widget.NewFormItem("Height (mm)", d.wallHeight),
		widget.NewFormItem("Thickness (mm)", d.wallThickness),
	)

	return container.NewVBox(
		widget.NewCard("Preset", "", widget.NewForm(
			widget.NewFormItem("Name", d.nameEntry),
		)),
		widget.NewCard("Slab Calibration", "", container.NewVBox(
			calibForm,
			d.aspectLabel,
		)),
		widget.NewCard("Island", "", islandForm),
		widget.NewCard("Wall Run", "", wallForm),
	)
}

// collect reads the entries back into a preset, failing on the first field
// that does not parse.
func (d *PresetDialog) collect() (surface.Preset, error) {
	p := surface.Preset{Name: d.nameEntry.Text}

	var err error
	if p.Calibration.WidthMm, err = parseField(d.calibWidth, "calibration width"); err != nil {
		return p, err
	}
	if p.Calibration.HeightMm, err = parseField(d.calibHeight, "calibration height"); err != nil {
		return p, err
	}

	if p.Island.LengthMm, err = parseField(d.islandLength, "island length"); err != nil {
		return p, err
	}
	if p.Island.WidthMm, err = parseField(d.islandWidth, "island width"); err != nil {
		return p, err
	}
	if p.Island.HeightMm, err = parseField(d.islandHeight, "island height"); err != nil {
		return p, err
	}
	if p.Island.ThicknessMm, err = parseField(d.islandThickness, "island thickness"); err != nil {
		return p, err
	}

	if p.Wall.LengthMm, err = parseField(d.wallLength, "wall length"); err != nil {
		return p, err
	}
	if p.Wall.WidthMm, err = parseField(d.wallWidth, "wall depth"); err != nil {
		return p, err
	}
	if p.Wall.HeightMm, err = parseField(d.wallHeight, "wall height"); err != nil {
		return p, err
	}
	if p.Wall.ThicknessMm, err = parseField(d.wallThickness, "wall thickness"); err != nil {
		return p, err
	}

	return p, nil
}

func (d *PresetDialog) updateAspectLabel() {
	w, werr := strconv.ParseFloat(d.calibWidth.Text, 64)
	h, herr := strconv.ParseFloat(d.calibHeight.Text, 64)
	if werr != nil || herr != nil || h <= 0 {
		d.aspectLabel.SetText("Aspect: -")
		return
	}
	d.aspectLabel.SetText(fmt.Sprintf("Aspect: %.3f", w/h))
}

func numEntry(v float64) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.FormatFloat(v, 'f', -1, 64))
	return e
}

func parseField(e *widget.Entry, field string) (float64, error) {
	v, err := strconv.ParseFloat(e.Text, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: not a number", field)
	}
	return v, nil
}
