package peel

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	defaultViewportPadding = 16.0
	minZoom                = 0.1
	maxZoom                = 8.0
)

// zoomAnim holds an active zoom tween.
type zoomAnim struct {
	tween *gween.Tween
}

// Viewport maps the canvas into the window: the canvas is centered in Screen
// and scaled by FitZoom * Zoom, where FitZoom makes the whole canvas visible
// inside Padding.
type Viewport struct {
	// Screen is the window-space rectangle the canvas is drawn into.
	Screen Rect
	// Canvas is the canvas size being displayed.
	Canvas Size
	// Padding is the minimum gap between the canvas and the screen edges at Zoom 1.
	Padding float64
	// Zoom multiplies the fit scale (1.0 = fit).
	Zoom float64

	viewMatrix    [6]float64
	invViewMatrix [6]float64
	dirty         bool

	zoomTween *zoomAnim
}

// NewViewport creates a viewport showing canvas inside screen.
func NewViewport(screen Rect, canvas Size) *Viewport {
	return &Viewport{
		Screen:  screen,
		Canvas:  canvas,
		Padding: defaultViewportPadding,
		Zoom:    1,
		dirty:   true,
	}
}

// SetScreen updates the window rectangle, e.g. after a resize.
func (v *Viewport) SetScreen(screen Rect) {
	if v.Screen != screen {
		v.Screen = screen
		v.dirty = true
	}
}

// SetCanvas updates the canvas size, e.g. after a new scene is installed.
func (v *Viewport) SetCanvas(canvas Size) {
	if v.Canvas != canvas {
		v.Canvas = canvas
		v.dirty = true
	}
}

// SetZoom sets the zoom multiplier immediately, clamped to [0.1, 8].
func (v *Viewport) SetZoom(z float64) {
	z = math.Max(minZoom, math.Min(z, maxZoom))
	if v.Zoom != z {
		v.Zoom = z
		v.dirty = true
	}
}

// ZoomTo animates the zoom multiplier to z over duration seconds.
func (v *Viewport) ZoomTo(z float64, duration float32, easeFn ease.TweenFunc) {
	z = math.Max(minZoom, math.Min(z, maxZoom))
	v.zoomTween = &zoomAnim{tween: gween.New(float32(v.Zoom), float32(z), duration, easeFn)}
}

// Animating reports whether a zoom animation is in progress.
func (v *Viewport) Animating() bool {
	return v.zoomTween != nil
}

// update advances the zoom animation by dt seconds.
func (v *Viewport) update(dt float32) {
	if v.zoomTween == nil {
		return
	}
	val, done := v.zoomTween.tween.Update(dt)
	v.SetZoom(float64(val))
	if done {
		v.zoomTween = nil
	}
}

// Scale returns the effective canvas-to-screen scale.
func (v *Viewport) Scale() float64 {
	return v.fitZoom() * v.Zoom
}

func (v *Viewport) fitZoom() float64 {
	if !v.Canvas.Positive() {
		return 1
	}
	w := v.Screen.Width - 2*v.Padding
	h := v.Screen.Height - 2*v.Padding
	if w <= 0 || h <= 0 {
		return minZoom
	}
	return math.Min(w/v.Canvas.W, h/v.Canvas.H)
}

// computeViewMatrix recomputes the cached view matrix if dirty.
//
// viewMatrix = Translate(screen center) * Scale(s) * Translate(-canvas center)
func (v *Viewport) computeViewMatrix() [6]float64 {
	if !v.dirty {
		return v.viewMatrix
	}
	v.dirty = false

	s := v.Scale()
	cx := v.Screen.X + v.Screen.Width/2
	cy := v.Screen.Y + v.Screen.Height/2
	v.viewMatrix = [6]float64{
		s, 0, 0, s,
		cx - s*v.Canvas.W/2,
		cy - s*v.Canvas.H/2,
	}
	v.invViewMatrix = invertAffine(v.viewMatrix)
	return v.viewMatrix
}

// CanvasToScreen converts a canvas point to window coordinates.
func (v *Viewport) CanvasToScreen(x, y float64) (float64, float64) {
	return transformPoint(v.computeViewMatrix(), x, y)
}

// ScreenToCanvas converts a window point to canvas coordinates.
func (v *Viewport) ScreenToCanvas(x, y float64) (float64, float64) {
	v.computeViewMatrix()
	return transformPoint(v.invViewMatrix, x, y)
}

// CanvasRect returns the window-space rectangle covered by the canvas.
func (v *Viewport) CanvasRect() Rect {
	x0, y0 := v.CanvasToScreen(0, 0)
	x1, y1 := v.CanvasToScreen(v.Canvas.W, v.Canvas.H)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
