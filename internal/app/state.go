// Package app provides application lifecycle management, shared state, and events.
package app

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"slab-mapper/internal/image"
	"slab-mapper/internal/project"
	"slab-mapper/internal/scale"
	"slab-mapper/internal/surface"
	"slab-mapper/internal/texture"
	"slab-mapper/pkg/geometry"
)

// State holds the application state: the loaded slab photograph, the physical
// setup, the scale model derived from both, and the per-surface selections.
// All mutation funnels through State methods under the single mutex; the UI
// reacts to the events emitted afterwards and never mutates fields directly.
type State struct {
	mu sync.RWMutex

	// Project
	ProjectPath string
	Modified    bool

	// Slab photograph
	Slab *image.Layer

	// Physical setup
	Calibration surface.Calibration
	Island      surface.Dimensions
	Wall        surface.Dimensions
	WallEnabled bool

	// Derived mapping, valid only while an image is loaded.
	Scale scale.Model

	// View zoom. Selections are stored in base coordinates, so zoom is pure
	// presentation state.
	Zoom float64

	// Selections keyed by surface.
	Selections *surface.Set

	// Last successfully extracted texture set.
	Textures texture.Set

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventProjectLoaded EventType = iota
	EventProjectSaved
	EventImageLoaded
	EventCalibrationChanged
	EventDimensionsChanged
	EventSelectionChanged
	EventZoomChanged
	EventTexturesApplied
	EventModified
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state seeded with the standard island
// preset so the dimension panel never starts blank.
func NewState() *State {
	s := &State{
		Zoom:       1.0,
		Selections: surface.NewSet(),
		listeners:  make(map[EventType][]EventListener),
	}
	if p, ok := surface.GetPreset("Standard Island"); ok {
		s.Calibration = p.Calibration
		s.Island = p.Island
		s.Wall = p.Wall
	}
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the project as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// NewDocument resets to an empty untitled project: no photograph, no
// selections, no textures. Calibration and dimensions keep their values so
// the panels never go blank.
func (s *State) NewDocument() {
	s.mu.Lock()
	s.ProjectPath = ""
	s.Slab = nil
	s.Textures = nil
	for _, srf := range surface.Order() {
		s.Selections.Remove(srf)
	}
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventImageLoaded, nil)
	s.Emit(EventSelectionChanged, nil)
	s.Emit(EventModified, false)
}

// LastTextures returns the most recently committed texture set, nil when no
// batch has completed since the photograph last changed.
func (s *State) LastTextures() texture.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Textures
}

// HasImage reports whether a slab photograph is loaded.
func (s *State) HasImage() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Slab != nil
}

// LoadSlabImage loads the slab photograph, rebuilds the scale model and
// regenerates default selections for every enabled surface.
func (s *State) LoadSlabImage(path string) error {
	layer, err := image.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.Slab = layer
	if err := s.rebuildScaleLocked(); err != nil {
		s.Slab = nil
		s.mu.Unlock()
		return err
	}
	s.regenerateSelectionsLocked(s.enabledSurfacesLocked())
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventImageLoaded, layer)
	s.Emit(EventSelectionChanged, nil)
	return nil
}

// SetCalibration replaces the slab calibration. The scale model is rebuilt
// and every selection regenerated, since the millimeter-to-pixel mapping
// changed under them.
func (s *State) SetCalibration(c surface.Calibration) error {
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.Calibration = c
	if s.Slab != nil {
		if err := s.rebuildScaleLocked(); err != nil {
			s.mu.Unlock()
			return err
		}
		s.regenerateSelectionsLocked(s.enabledSurfacesLocked())
	}
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventCalibrationChanged, c)
	s.Emit(EventSelectionChanged, nil)
	return nil
}

// SetIslandDimensions replaces the island dimensions and regenerates the
// island surface selections. Wall selections are untouched.
func (s *State) SetIslandDimensions(d surface.Dimensions) error {
	if err := d.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.Island = d
	if s.Slab != nil {
		s.regenerateSelectionsLocked(surface.IslandSurfaces())
	}
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventDimensionsChanged, d)
	s.Emit(EventSelectionChanged, nil)
	return nil
}

// SetWallDimensions replaces the wall run dimensions and regenerates the wall
// surface selections when the wall is enabled.
func (s *State) SetWallDimensions(d surface.Dimensions) error {
	if err := d.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.Wall = d
	if s.Slab != nil && s.WallEnabled {
		s.regenerateSelectionsLocked(surface.WallSurfaces())
	}
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventDimensionsChanged, d)
	s.Emit(EventSelectionChanged, nil)
	return nil
}

// SetWallEnabled toggles the wall countertop and backsplash surfaces. Enabling
// generates fresh default selections for them; disabling removes theirs while
// leaving the island selections alone.
func (s *State) SetWallEnabled(enabled bool) {
	s.mu.Lock()
	changed := s.WallEnabled != enabled
	s.WallEnabled = enabled
	if changed {
		if enabled && s.Slab != nil {
			s.regenerateSelectionsLocked(surface.WallSurfaces())
		} else if !enabled {
			for _, srf := range surface.WallSurfaces() {
				s.Selections.Remove(srf)
			}
		}
	}
	s.mu.Unlock()

	if changed {
		s.SetModified(true)
		s.Emit(EventDimensionsChanged, nil)
		s.Emit(EventSelectionChanged, nil)
	}
}

// ApplyPreset installs a named preset's calibration and dimensions in one step.
func (s *State) ApplyPreset(name string) error {
	p, ok := surface.GetPreset(name)
	if !ok {
		return fmt.Errorf("app: unknown preset %q", name)
	}

	s.mu.Lock()
	s.Calibration = p.Calibration
	s.Island = p.Island
	s.Wall = p.Wall
	if s.Slab != nil {
		if err := s.rebuildScaleLocked(); err != nil {
			s.mu.Unlock()
			return err
		}
		s.regenerateSelectionsLocked(s.enabledSurfacesLocked())
	}
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventCalibrationChanged, p.Calibration)
	s.Emit(EventDimensionsChanged, p.Island)
	s.Emit(EventSelectionChanged, nil)
	return nil
}

// MoveSelection moves one surface's selection to a new top-left position in
// base canvas coordinates, clamped into the canvas.
func (s *State) MoveSelection(srf surface.Surface, x, y float64) bool {
	s.mu.Lock()
	moved := s.Selections.MoveTo(srf, x, y, s.Scale.BaseCanvasW, s.Scale.BaseCanvasH)
	s.mu.Unlock()

	if moved {
		s.SetModified(true)
		s.Emit(EventSelectionChanged, srf)
	}
	return moved
}

// RotateSelection steps one surface's selection by a quarter turn.
func (s *State) RotateSelection(srf surface.Surface, clockwise bool) bool {
	s.mu.Lock()
	rotated := s.Selections.Rotate(srf, clockwise)
	s.mu.Unlock()

	if rotated {
		s.SetModified(true)
		s.Emit(EventSelectionChanged, srf)
	}
	return rotated
}

// FlipSelection toggles one of a surface selection's mirror flags.
func (s *State) FlipSelection(srf surface.Surface, horizontal bool) bool {
	s.mu.Lock()
	flipped := s.Selections.ToggleFlip(srf, horizontal)
	s.mu.Unlock()

	if flipped {
		s.SetModified(true)
		s.Emit(EventSelectionChanged, srf)
	}
	return flipped
}

// HitTestSelection returns the topmost surface whose selection contains the
// point, in base canvas coordinates.
func (s *State) HitTestSelection(p geometry.Point2D) (surface.Surface, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Selections.HitTest(p)
}

// SetZoom clamps and stores the view zoom.
func (s *State) SetZoom(zoom float64) {
	zoom = scale.ClampZoom(zoom)

	s.mu.Lock()
	changed := s.Zoom != zoom
	s.Zoom = zoom
	s.mu.Unlock()

	if changed {
		s.Emit(EventZoomChanged, zoom)
	}
}

// AspectWarning returns a human-readable note when the calibration aspect
// does not match the loaded photograph's, empty otherwise. Extraction still
// proceeds; the mismatch only stretches the sampled pattern.
func (s *State) AspectWarning() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Slab == nil {
		return ""
	}
	return s.Calibration.AspectWarning(s.Slab.Width, s.Slab.Height)
}

// ExtractTextures extracts every active selection into a texture set and, if
// an applier is given, hands the complete set over. The batch runs against
// the photograph captured at call time; if the image is replaced while the
// batch runs the stale result is discarded rather than applied.
func (s *State) ExtractTextures(applier texture.Applier) (texture.Set, error) {
	s.mu.RLock()
	if s.Slab == nil {
		s.mu.RUnlock()
		return nil, texture.ErrNoImage
	}
	slab := s.Slab
	m := s.Scale
	reqs := s.textureRequestsLocked()
	s.mu.RUnlock()

	if len(reqs) == 0 {
		return nil, fmt.Errorf("app: no active selections to extract")
	}

	set, err := texture.ExtractAll(slab.Image, slab.Path, reqs, m)
	if err != nil {
		return nil, err
	}
	if err := s.commitTextures(slab, set); err != nil {
		return nil, err
	}

	if applier != nil {
		if err := applier.ApplyTextures(set); err != nil {
			return nil, fmt.Errorf("apply textures: %w", err)
		}
	}

	s.Emit(EventTexturesApplied, set)
	return set, nil
}

// commitTextures stores a completed batch, but only if the photograph it was
// extracted from is still the loaded one. A batch that outlived its source is
// dropped whole rather than applied to the wrong slab.
func (s *State) commitTextures(slab *image.Layer, set texture.Set) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Slab != slab {
		return fmt.Errorf("app: slab photograph changed during extraction")
	}
	s.Textures = set
	return nil
}

// LoadProject loads a project from the specified path.
func (s *State) LoadProject(path string) error {
	proj, err := project.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ProjectPath = path
	s.Modified = false
	s.Calibration = proj.Calibration
	s.Island = proj.Island
	s.Wall = proj.Wall
	s.WallEnabled = proj.WallEnabled
	s.mu.Unlock()

	if imagePath := proj.GetSlabImagePath(path); imagePath != "" {
		if err := s.LoadSlabImage(imagePath); err != nil {
			return err
		}
	}

	// Saved selections override the defaults generated by the image load.
	s.mu.Lock()
	proj.RestoreSelections(s.Selections)
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventProjectLoaded, path)
	s.Emit(EventSelectionChanged, nil)
	return nil
}

// SaveProject saves the project to the specified path.
func (s *State) SaveProject(path string) error {
	s.mu.RLock()
	proj := project.New(projectName(path))
	proj.Calibration = s.Calibration
	proj.Island = s.Island
	proj.Wall = s.Wall
	proj.WallEnabled = s.WallEnabled
	proj.SetSelections(s.Selections)
	if s.Slab != nil {
		proj.SetSlabImage(path, s.Slab.Path)
	}
	s.mu.RUnlock()

	if err := proj.Save(path); err != nil {
		return err
	}

	s.mu.Lock()
	s.ProjectPath = path
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventProjectSaved, path)
	return nil
}

// DimensionsFor returns the dimensions that size a surface's face: the wall
// run for wall surfaces, the island slab otherwise.
func (s *State) DimensionsFor(srf surface.Surface) surface.Dimensions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimensionsForLocked(srf)
}

func (s *State) dimensionsForLocked(srf surface.Surface) surface.Dimensions {
	switch srf {
	case surface.Countertop, surface.Backsplash:
		return s.Wall
	default:
		return s.Island
	}
}

func (s *State) enabledSurfacesLocked() []surface.Surface {
	if s.WallEnabled {
		return surface.Order()
	}
	return surface.IslandSurfaces()
}

// rebuildScaleLocked recomputes the scale model from the current calibration
// and photograph. Caller holds the write lock.
func (s *State) rebuildScaleLocked() error {
	m, err := scale.New(s.Calibration.WidthMm, s.Calibration.HeightMm, s.Slab.Width, s.Slab.Height)
	if err != nil {
		return err
	}
	s.Scale = m
	return nil
}

// regenerateSelectionsLocked replaces the selections for the given surfaces
// with defaults sized from their owning dimensions. Caller holds the write
// lock and an image is loaded.
func (s *State) regenerateSelectionsLocked(surfaces []surface.Surface) {
	ppm := s.Scale.PixelsPerMm()
	for _, srf := range surfaces {
		dims := s.dimensionsForLocked(srf)
		s.Selections.Regenerate([]surface.Surface{srf}, dims, ppm, s.Scale.BaseCanvasW, s.Scale.BaseCanvasH)
	}
}

// textureRequestsLocked builds the extraction batch from the active
// selections. Caller holds at least the read lock.
func (s *State) textureRequestsLocked() []texture.Request {
	var reqs []texture.Request
	for _, srf := range s.Selections.Active() {
		sel, _ := s.Selections.Get(srf)
		reqs = append(reqs, texture.Request{
			Surface:   srf,
			Selection: sel,
			FaceMm:    s.dimensionsForLocked(srf).FaceSize(srf),
		})
	}
	return reqs
}

func projectName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), project.Extension)
}
