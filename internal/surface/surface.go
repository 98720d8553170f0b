// Package surface defines the textured faces of the island and wall assembly,
// their real-world dimensions, the slab calibration, and the per-face
// selection rectangles edited on the canvas.
package surface

// Surface identifies one textured face. The set is closed; Order lists the
// hit-test priority used by the canvas.
type Surface int

const (
	Top Surface = iota
	LeftEnd
	RightEnd
	Countertop
	Backsplash
)

func (s Surface) String() string {
	switch s {
	case Top:
		return "Top"
	case LeftEnd:
		return "Left End"
	case RightEnd:
		return "Right End"
	case Countertop:
		return "Countertop"
	case Backsplash:
		return "Backsplash"
	default:
		return "Unknown"
	}
}

// Key returns the stable identifier used in project files and texture tags.
func (s Surface) Key() string {
	switch s {
	case Top:
		return "top"
	case LeftEnd:
		return "left"
	case RightEnd:
		return "right"
	case Countertop:
		return "countertop"
	case Backsplash:
		return "backsplash"
	default:
		return "unknown"
	}
}

// ParseSurface maps a project-file key back to a Surface.
func ParseSurface(key string) (Surface, bool) {
	for _, s := range Order() {
		if s.Key() == key {
			return s, true
		}
	}
	return 0, false
}

// Order returns all surfaces in hit-test priority order.
func Order() []Surface {
	return []Surface{Top, LeftEnd, RightEnd, Countertop, Backsplash}
}

// IslandSurfaces returns the faces driven by the island dimensions.
func IslandSurfaces() []Surface {
	return []Surface{Top, LeftEnd, RightEnd}
}

// WallSurfaces returns the faces driven by the wall assembly dimensions.
func WallSurfaces() []Surface {
	return []Surface{Countertop, Backsplash}
}
