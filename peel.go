package peel

import "image/color"

// Vec2 is a 2D vector used for positions, offsets, anchors and directions
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Size is a width/height pair in canvas pixels.
type Size struct {
	W, H float64
}

// Positive reports whether both dimensions are strictly greater than zero.
func (s Size) Positive() bool {
	return s.W > 0 && s.H > 0
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// RGBA converts c to a premultiplied color.RGBA for ebiten.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// LayerKind distinguishes the role a layer plays in a scene.
type LayerKind uint8

const (
	KindBackground      LayerKind = iota // the locked bottom layer
	KindElement                          // a foreground element produced by extraction
	KindExternalElement                  // an element imported from outside the extraction result
)

// String returns the wire name of the kind.
func (k LayerKind) String() string {
	switch k {
	case KindBackground:
		return "background"
	case KindElement:
		return "element"
	case KindExternalElement:
		return "external-element"
	default:
		return "unknown"
	}
}

// ImportState is the state of the import orchestrator.
type ImportState uint8

const (
	ImportIdle    ImportState = iota // no import running
	ImportLoading                    // extraction in flight; the file input is disabled
	ImportError                      // the last import failed; its message is retained
)

// String returns a lowercase name for the state.
func (s ImportState) String() string {
	switch s {
	case ImportIdle:
		return "idle"
	case ImportLoading:
		return "loading"
	case ImportError:
		return "error"
	default:
		return "unknown"
	}
}
