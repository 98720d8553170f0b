// Package main provides the entry point for the Slab Mapper application.
package main

import (
	"log"
	"os"
	"time"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	"slab-mapper/internal/app"
	"slab-mapper/internal/version"
	"slab-mapper/ui/mainwindow"
	"slab-mapper/ui/prefs"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting Slab Mapper %s", version.String())

	fyneApp := fyneapp.NewWithID("io.slabmapper.app")
	fyneApp.Settings().SetTheme(&app.SlabTheme{})

	appState := app.NewState()
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, appState, appPrefs)
	win.Resize(mainwindow.DefaultSize())

	// Command line: a project path opens directly, skipping session restore.
	if len(os.Args) > 1 {
		if err := appState.LoadProject(os.Args[1]); err != nil {
			log.Printf("Failed to load project %s: %v", os.Args[1], err)
		}
	} else {
		win.RestoreSession()
	}

	setupHotReload(win)

	fyneApp.Lifecycle().SetOnStopped(func() {
		if err := appPrefs.Save(); err != nil {
			log.Printf("Failed to save preferences: %v", err)
		}
	})

	win.ShowAndRun()
}

// setupHotReload configures automatic restart detection when the binary is
// recompiled during development.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}

	reloader.OnNewBinary(func() {
		log.Println("Hot reload: newer binary detected")
		dialog.ShowConfirm("New Version Available",
			"The application binary has been updated.\nRestart now?",
			func(restart bool) {
				if !restart {
					reloader.ResetBaseline()
					reloader.Start()
					return
				}
				log.Println("Hot reload: restarting...")
				if err := reloader.Restart(); err != nil {
					log.Printf("Hot reload: restart failed: %v", err)
				}
			}, win)
	})

	reloader.Start()
}
