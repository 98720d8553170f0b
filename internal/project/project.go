// Package project provides project file handling and persistence.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"slab-mapper/internal/surface"
)

// FileVersion is the current .slabproj schema version.
const FileVersion = 1

// Extension is the project file suffix.
const Extension = ".slabproj"

// File represents a slab mapping project file (.slabproj). All geometry is
// stored in base canvas coordinates and millimeters, never in zoomed or
// image pixels, so a project renders identically regardless of the window
// state it was saved from.
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Description string    `json:"description,omitempty"`

	// Slab photograph path (relative to project file when possible).
	SlabImagePath string `json:"slab_image,omitempty"`

	// Physical setup.
	Calibration surface.Calibration `json:"calibration"`
	Island      surface.Dimensions  `json:"island"`
	Wall        surface.Dimensions  `json:"wall"`
	WallEnabled bool                `json:"wall_enabled"`

	// Per-surface selection rectangles keyed by the stable surface name.
	Selections map[string]surface.Selection `json:"selections,omitempty"`
}

// New creates a new project file seeded with the standard island preset.
func New(name string) *File {
	now := time.Now()
	f := &File{
		Version:  FileVersion,
		Name:     name,
		Created:  now,
		Modified: now,
	}
	if p, ok := surface.GetPreset("Standard Island"); ok {
		f.Calibration = p.Calibration
		f.Island = p.Island
		f.Wall = p.Wall
	}
	return f
}

// Load loads a project from a .slabproj file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("parse project %s: %w", filepath.Base(path), err)
	}
	if proj.Version > FileVersion {
		return nil, fmt.Errorf("project %s uses schema version %d, newer than supported %d",
			filepath.Base(path), proj.Version, FileVersion)
	}

	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SetSlabImage sets the slab photo path, stored relative to the project file
// when both live under a common root.
func (p *File) SetSlabImage(projectPath, imagePath string) {
	rel, err := filepath.Rel(filepath.Dir(projectPath), imagePath)
	if err != nil {
		p.SlabImagePath = imagePath
	} else {
		p.SlabImagePath = rel
	}
	p.Modified = time.Now()
}

// GetSlabImagePath returns the absolute path to the slab photograph.
func (p *File) GetSlabImagePath(projectPath string) string {
	if p.SlabImagePath == "" {
		return ""
	}
	if filepath.IsAbs(p.SlabImagePath) {
		return p.SlabImagePath
	}
	return filepath.Join(filepath.Dir(projectPath), p.SlabImagePath)
}

// SetSelections replaces the stored selection map from a live selection set.
func (p *File) SetSelections(set *surface.Set) {
	p.Selections = set.Snapshot()
	p.Modified = time.Now()
}

// RestoreSelections loads the stored selections into a live set. Entries
// with unknown surface names are skipped so older or hand-edited files
// degrade gracefully.
func (p *File) RestoreSelections(set *surface.Set) {
	set.Restore(p.Selections)
}
