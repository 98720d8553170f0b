// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"slab-mapper/internal/app"
	"slab-mapper/internal/image"
	"slab-mapper/internal/project"
	"slab-mapper/internal/surface"
	"slab-mapper/internal/version"
	"slab-mapper/ui/canvas"
	"slab-mapper/ui/dialogs"
	"slab-mapper/ui/panels"
	"slab-mapper/ui/prefs"
)

const appTitle = "Slab Mapper"

// DefaultSize is the initial window size.
func DefaultSize() fyne.Size {
	return fyne.NewSize(1280, 800)
}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	canvas    *canvas.SelectorCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label
	zoomLabel *widget.Label

	wallItem   *fyne.MenuItem
	recentMenu *fyne.Menu
	mainMenu   *fyne.MainMenu
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewSelectorCanvas(mw.state)

	mw.sidePanel = panels.NewSidePanel(mw.state, mw.canvas)
	mw.sidePanel.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel("Ready")
	mw.zoomLabel = widget.NewLabel("Zoom: 100%")

	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		mw.canvas.Container(),
	)

	split := container.NewHSplit(
		mw.sidePanel.Container(),
		canvasArea,
	)
	split.SetOffset(0.28)

	statusRow := container.NewBorder(nil, nil, nil, mw.zoomLabel, mw.statusBar)

	content := container.NewBorder(
		nil,
		container.NewPadded(statusRow),
		nil,
		nil,
		split,
	)

	mw.SetContent(content)
}

// createToolbar creates the toolbar with zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	zoomOutBtn := widget.NewButton("-", mw.canvas.ZoomOut)
	zoomInBtn := widget.NewButton("+", mw.canvas.ZoomIn)
	resetBtn := widget.NewButton("1:1", mw.canvas.ResetZoom)

	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
		resetBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	mw.recentMenu = fyne.NewMenu("Open Recent", mw.recentItems()...)

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Project", mw.onNewProject),
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		&fyne.MenuItem{Label: "Open Recent", ChildMenu: mw.recentMenu},
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Load Slab Photo...", mw.onLoadPhoto),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Project", mw.onSaveProject),
		fyne.NewMenuItem("Save Project As...", mw.onSaveProjectAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	mw.wallItem = fyne.NewMenuItem("  Wall Countertop", mw.onToggleWall)
	mw.updateWallItem()

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Actual Size", mw.canvas.ResetZoom),
		fyne.NewMenuItemSeparator(),
		mw.wallItem,
	)

	presetItems := []*fyne.MenuItem{}
	for _, name := range surface.ListPresets() {
		name := name
		presetItems = append(presetItems, fyne.NewMenuItem(name, func() {
			mw.onApplyPreset(name)
		}))
	}
	presetItems = append(presetItems,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Edit Preset...", mw.onEditPreset),
	)
	presetMenu := fyne.NewMenu("Presets", presetItems...)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Apply Textures", mw.onApplyTextures),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.mainMenu = fyne.NewMainMenu(fileMenu, viewMenu, presetMenu, toolsMenu, helpMenu)
	mw.SetMainMenu(mw.mainMenu)
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventProjectLoaded, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle(appTitle + " - " + filepath.Base(path))
			mw.updateStatus("Project loaded: " + path)
			mw.rememberProject(path)
		}
		mw.updateWallItem()
	})

	mw.state.On(app.EventProjectSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle(appTitle + " - " + filepath.Base(path))
			mw.updateStatus("Project saved: " + path)
			mw.rememberProject(path)
		}
	})

	mw.state.On(app.EventImageLoaded, func(data interface{}) {
		if layer, ok := data.(*image.Layer); ok {
			mw.updateStatus(fmt.Sprintf("Photo loaded: %s (%dx%d)",
				filepath.Base(layer.Path), layer.Width, layer.Height))
		}
		if warn := mw.state.AspectWarning(); warn != "" {
			mw.updateStatus("Warning: " + warn)
		}
	})

	mw.state.On(app.EventZoomChanged, func(data interface{}) {
		if zoom, ok := data.(float64); ok {
			mw.zoomLabel.SetText(fmt.Sprintf("Zoom: %.0f%%", zoom*100))
			mw.prefs.SetFloat(prefs.KeyZoom, zoom)
		}
	})

	mw.state.On(app.EventDimensionsChanged, func(interface{}) {
		mw.updateWallItem()
		mw.prefs.SetBool(prefs.KeyWallEnabled, mw.state.WallEnabled)
	})

	mw.state.On(app.EventModified, func(data interface{}) {
		if modified, ok := data.(bool); ok && modified {
			title := mw.Title()
			if len(title) > 0 && title[len(title)-1] != '*' {
				mw.SetTitle(title + " *")
			}
		}
	})
}

// RestoreSession reloads the last project and zoom from preferences. Called
// once after the window is shown.
func (mw *MainWindow) RestoreSession() {
	if zoom := mw.prefs.FloatWithFallback(prefs.KeyZoom, 1.0); zoom != 1.0 {
		mw.state.SetZoom(zoom)
	}

	last := mw.prefs.String(prefs.KeyLastProject)
	if last == "" {
		// No project to restore; the wall toggle alone carries over.
		mw.state.SetWallEnabled(mw.prefs.Bool(prefs.KeyWallEnabled, false))
		return
	}
	if err := mw.state.LoadProject(last); err != nil {
		mw.updateStatus("Could not reopen " + filepath.Base(last))
		return
	}
	mw.state.SetModified(false)
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) updateWallItem() {
	if mw.state.WallEnabled {
		mw.wallItem.Label = "✓ Wall Countertop"
	} else {
		mw.wallItem.Label = "  Wall Countertop"
	}
	if mw.mainMenu != nil {
		mw.mainMenu.Refresh()
	}
}

// rememberProject records the project in preferences and refreshes the
// recent-projects submenu.
func (mw *MainWindow) rememberProject(path string) {
	mw.prefs.SetString(prefs.KeyLastProject, path)
	mw.prefs.AddRecentProject(path)
	mw.recentMenu.Items = mw.recentItems()
	mw.recentMenu.Refresh()
}

func (mw *MainWindow) recentItems() []*fyne.MenuItem {
	recent := mw.prefs.RecentProjects()
	if len(recent) == 0 {
		none := fyne.NewMenuItem("(none)", nil)
		none.Disabled = true
		return []*fyne.MenuItem{none}
	}

	items := make([]*fyne.MenuItem, 0, len(recent))
	for _, path := range recent {
		path := path
		items = append(items, fyne.NewMenuItem(filepath.Base(path), func() {
			if err := mw.state.LoadProject(path); err != nil {
				dialog.ShowError(err, mw.Window)
			}
		}))
	}
	return items
}

// getLastDir returns the last used image directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastImageDir)
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastImageDir, filepath.Dir(filePath))
}

// Menu action handlers

func (mw *MainWindow) onNewProject() {
	mw.state.NewDocument()
	mw.SetTitle(appTitle + " - New Project")
	mw.updateStatus("New project")
}

func (mw *MainWindow) onOpenProject() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		if err := mw.state.LoadProject(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{project.Extension}))
	fd.Show()
}

func (mw *MainWindow) onLoadPhoto() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.state.LoadSlabImage(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(image.SupportedExtensions()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSaveProject() {
	if mw.state.ProjectPath == "" {
		mw.onSaveProjectAs()
		return
	}
	if err := mw.state.SaveProject(mw.state.ProjectPath); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveProjectAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != project.Extension {
			path += project.Extension
		}
		if err := mw.state.SaveProject(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFileName("countertop" + project.Extension)
	fd.Show()
}

func (mw *MainWindow) onToggleWall() {
	mw.state.SetWallEnabled(!mw.state.WallEnabled)
}

func (mw *MainWindow) onApplyPreset(name string) {
	if err := mw.state.ApplyPreset(name); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.updateStatus("Applied preset: " + name)
}

func (mw *MainWindow) onEditPreset() {
	seed := surface.Preset{
		Name:        "Custom",
		Island:      mw.state.Island,
		Wall:        mw.state.Wall,
		Calibration: mw.state.Calibration,
	}
	dlg := dialogs.NewPresetDialog(seed, mw.Window, func(p surface.Preset) {
		surface.Register(p)
		if err := mw.state.ApplyPreset(p.Name); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Applied preset: " + p.Name)
	})
	dlg.Show()
}

func (mw *MainWindow) onApplyTextures() {
	go func() {
		set, err := mw.state.ExtractTextures(nil)
		if err != nil {
			mw.updateStatus("Extraction failed: " + err.Error())
			return
		}
		mw.updateStatus(fmt.Sprintf("Extracted %d textures", len(set)))
	}()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"Maps regions of a stone slab photograph onto\n"+
			"countertop surfaces and extracts textures for them.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
