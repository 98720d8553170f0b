// Package panels provides UI panels for the application.
package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"slab-mapper/internal/app"
	"slab-mapper/ui/canvas"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	state     *app.State
	canvas    *canvas.SelectorCanvas
	container *container.AppTabs

	dimensionsPanel *DimensionsPanel
	texturesPanel   *TexturesPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(state *app.State, cvs *canvas.SelectorCanvas) *SidePanel {
	sp := &SidePanel{
		state:  state,
		canvas: cvs,
	}

	sp.dimensionsPanel = NewDimensionsPanel(state)
	sp.texturesPanel = NewTexturesPanel(state, cvs)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Dimensions", sp.dimensionsPanel.Container()),
		container.NewTabItem("Textures", sp.texturesPanel.Container()),
	)

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.texturesPanel.SetWindow(w)
}
