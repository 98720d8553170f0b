package panels

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"slab-mapper/internal/app"
	"slab-mapper/internal/surface"
)

// DimensionsPanel edits the physical setup: slab calibration, island
// dimensions, and the optional wall run. Every change funnels through the
// state, which regenerates default selections for the affected surfaces.
type DimensionsPanel struct {
	state     *app.State
	container fyne.CanvasObject

	presetSelect *widget.Select

	calibWidth  *widget.Entry
	calibHeight *widget.Entry
	warnLabel   *widget.Label

	islandLength    *widget.Entry
	islandWidth     *widget.Entry
	islandHeight    *widget.Entry
	islandThickness *widget.Entry

	wallCheck     *widget.Check
	wallLength    *widget.Entry
	wallWidth     *widget.Entry
	wallHeight    *widget.Entry
	wallThickness *widget.Entry

	status *widget.Label
}

// NewDimensionsPanel creates the dimensions panel.
func NewDimensionsPanel(state *app.State) *DimensionsPanel {
	dp := &DimensionsPanel{state: state}

	dp.status = widget.NewLabel("")
	dp.status.Wrapping = fyne.TextWrapWord
	dp.warnLabel = widget.NewLabel("")
	dp.warnLabel.Wrapping = fyne.TextWrapWord

	dp.presetSelect = widget.NewSelect(surface.ListPresets(), func(name string) {
		if err := state.ApplyPreset(name); err != nil {
			dp.status.SetText(err.Error())
			return
		}
		dp.syncFromState()
		dp.status.SetText("Preset applied")
	})

	dp.calibWidth = newMmEntry()
	dp.calibHeight = newMmEntry()
	applyCalib := widget.NewButton("Apply Calibration", dp.onApplyCalibration)

	dp.islandLength = newMmEntry()
	dp.islandWidth = newMmEntry()
	dp.islandHeight = newMmEntry()
	dp.islandThickness = newMmEntry()
	applyIsland := widget.NewButton("Apply Island", dp.onApplyIsland)

	dp.wallLength = newMmEntry()
	dp.wallWidth = newMmEntry()
	dp.wallHeight = newMmEntry()
	dp.wallThickness = newMmEntry()
	applyWall := widget.NewButton("Apply Wall", dp.onApplyWall)

	dp.wallCheck = widget.NewCheck("Enable wall countertop", func(checked bool) {
		state.SetWallEnabled(checked)
	})

	dp.container = container.NewVBox(
		widget.NewCard("Preset", "", dp.presetSelect),
		widget.NewCard("Slab Calibration (mm)", "", container.NewVBox(
			labeled("Width:", dp.calibWidth),
			labeled("Height:", dp.calibHeight),
			applyCalib,
			dp.warnLabel,
		)),
		widget.NewCard("Island (mm)", "", container.NewVBox(
			labeled("Length:", dp.islandLength),
			labeled("Width:", dp.islandWidth),
			labeled("Height:", dp.islandHeight),
			labeled("Thickness:", dp.islandThickness),
			applyIsland,
		)),
		widget.NewCard("Wall Run (mm)", "", container.NewVBox(
			dp.wallCheck,
			labeled("Length:", dp.wallLength),
			labeled("Depth:", dp.wallWidth),
			labeled("Height:", dp.wallHeight),
			labeled("Thickness:", dp.wallThickness),
			applyWall,
		)),
		dp.status,
	)

	state.On(app.EventImageLoaded, func(interface{}) {
		dp.updateAspectWarning()
	})
	state.On(app.EventCalibrationChanged, func(interface{}) {
		dp.updateAspectWarning()
	})
	state.On(app.EventProjectLoaded, func(interface{}) {
		dp.syncFromState()
	})
	state.On(app.EventDimensionsChanged, func(interface{}) {
		dp.wallCheck.SetChecked(state.WallEnabled)
	})

	dp.syncFromState()
	return dp
}

// Container returns the panel container.
func (dp *DimensionsPanel) Container() fyne.CanvasObject {
	return dp.container
}

func newMmEntry() *widget.Entry {
	e := widget.NewEntry()
	e.SetPlaceHolder("mm")
	return e
}

func labeled(label string, entry *widget.Entry) fyne.CanvasObject {
	return container.NewBorder(nil, nil, widget.NewLabel(label), nil, entry)
}

func setMm(e *widget.Entry, v float64) {
	e.SetText(strconv.FormatFloat(v, 'f', -1, 64))
}

func parseMm(e *widget.Entry, field string) (float64, error) {
	v, err := strconv.ParseFloat(e.Text, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: not a number", field)
	}
	return v, nil
}

// syncFromState refreshes every entry from the current state.
func (dp *DimensionsPanel) syncFromState() {
	setMm(dp.calibWidth, dp.state.Calibration.WidthMm)
	setMm(dp.calibHeight, dp.state.Calibration.HeightMm)

	setMm(dp.islandLength, dp.state.Island.LengthMm)
	setMm(dp.islandWidth, dp.state.Island.WidthMm)
	setMm(dp.islandHeight, dp.state.Island.HeightMm)
	setMm(dp.islandThickness, dp.state.Island.ThicknessMm)

	setMm(dp.wallLength, dp.state.Wall.LengthMm)
	setMm(dp.wallWidth, dp.state.Wall.WidthMm)
	setMm(dp.wallHeight, dp.state.Wall.HeightMm)
	setMm(dp.wallThickness, dp.state.Wall.ThicknessMm)

	dp.wallCheck.SetChecked(dp.state.WallEnabled)
	dp.updateAspectWarning()
}

func (dp *DimensionsPanel) updateAspectWarning() {
	dp.warnLabel.SetText(dp.state.AspectWarning())
}

func (dp *DimensionsPanel) onApplyCalibration() {
	w, err := parseMm(dp.calibWidth, "calibration width")
	if err != nil {
		dp.status.SetText(err.Error())
		return
	}
	h, err := parseMm(dp.calibHeight, "calibration height")
	if err != nil {
		dp.status.SetText(err.Error())
		return
	}

	if err := dp.state.SetCalibration(surface.Calibration{WidthMm: w, HeightMm: h}); err != nil {
		dp.status.SetText(err.Error())
		return
	}
	dp.status.SetText("Calibration updated")
}

func (dp *DimensionsPanel) onApplyIsland() {
	d, err := dp.parseDims(dp.islandLength, dp.islandWidth, dp.islandHeight, dp.islandThickness)
	if err != nil {
		dp.status.SetText(err.Error())
		return
	}
	if err := dp.state.SetIslandDimensions(d); err != nil {
		dp.status.SetText(err.Error())
		return
	}
	dp.status.SetText("Island dimensions updated")
}

func (dp *DimensionsPanel) onApplyWall() {
	d, err := dp.parseDims(dp.wallLength, dp.wallWidth, dp.wallHeight, dp.wallThickness)
	if err != nil {
		dp.status.SetText(err.Error())
		return
	}
	if err := dp.state.SetWallDimensions(d); err != nil {
		dp.status.SetText(err.Error())
		return
	}
	dp.status.SetText("Wall dimensions updated")
}

func (dp *DimensionsPanel) parseDims(l, w, h, t *widget.Entry) (surface.Dimensions, error) {
	length, err := parseMm(l, "length")
	if err != nil {
		return surface.Dimensions{}, err
	}
	width, err := parseMm(w, "width")
	if err != nil {
		return surface.Dimensions{}, err
	}
	height, err := parseMm(h, "height")
	if err != nil {
		return surface.Dimensions{}, err
	}
	thickness, err := parseMm(t, "thickness")
	if err != nil {
		return surface.Dimensions{}, err
	}
	return surface.Dimensions{
		LengthMm:    length,
		WidthMm:     width,
		HeightMm:    height,
		ThicknessMm: thickness,
	}, nil
}
