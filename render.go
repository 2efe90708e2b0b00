package peel

import (
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	handleSize    = 10.0 // side of a corner handle, canvas px
	rotatorOffset = 24.0 // distance of the rotation handle above the top edge
	outlineWidth  = 2.0
)

var (
	defaultClearColor  = Color{R: 0.95, G: 0.96, B: 0.97, A: 1}
	defaultCanvasColor = Color{R: 1, G: 1, B: 1, A: 1}
	selectionColor     = Color{R: 0.388, G: 0.4, B: 0.945, A: 1} // #6366f1
	handleFillColor    = Color{R: 1, G: 1, B: 1, A: 1}
)

// DrawCommand paints one layer's asset with the layer's transform.
type DrawCommand struct {
	LayerID   string
	Transform [6]float64 // layer-local to canvas
	Size      Size       // natural size the asset is stretched to
	Asset     *Asset
}

// Decoration is the selection outline and manipulation handles for the
// selected layer, in canvas coordinates.
type Decoration struct {
	LayerID string
	Corners [4]Vec2 // top-left, top-right, bottom-right, bottom-left
	Handles [4]Rect // one square per corner, centered on it
	Rotator Vec2    // rotation handle above the top edge
}

// Frame is the projection of a store state onto the canvas.
type Frame struct {
	Canvas    Size
	Commands  []DrawCommand // back-to-front
	Selection *Decoration   // nil when nothing is decorated
}

// Compose projects st into a frame. Layers are emitted in z-order; a layer
// whose asset is missing from the table emits nothing. Only the selected
// layer is decorated, and only if it exists and is unlocked.
func Compose(st State) Frame {
	return composeInto(st, nil)
}

func composeInto(st State, buf []DrawCommand) Frame {
	f := Frame{Commands: buf[:0]}
	if st.Scene == nil {
		return f
	}
	f.Canvas = st.Scene.CanvasSize()
	for i := 0; i < st.Scene.Len(); i++ {
		l := st.Scene.LayerAt(i)
		asset := st.Assets[l.ID]
		if asset == nil || asset.Image == nil {
			continue
		}
		f.Commands = append(f.Commands, DrawCommand{
			LayerID:   l.ID,
			Transform: l.Matrix(),
			Size:      l.NaturalSize,
			Asset:     asset,
		})
	}
	if l, ok := st.SelectedLayer(); ok && !l.Locked {
		d := decorate(l)
		f.Selection = &d
	}
	return f
}

func decorate(l Layer) Decoration {
	d := Decoration{LayerID: l.ID, Corners: l.Corners()}
	for i, c := range d.Corners {
		d.Handles[i] = Rect{X: c.X - handleSize/2, Y: c.Y - handleSize/2, Width: handleSize, Height: handleSize}
	}
	m := l.Matrix()
	tx, ty := transformPoint(m, l.NaturalSize.W/2, 0)
	up := rotateVec(Vec2{0, -1}, l.Transform.Rotation)
	d.Rotator = Vec2{X: tx + up.X*rotatorOffset, Y: ty + up.Y*rotatorOffset}
	return d
}

// RendererOptions configures a Renderer.
type RendererOptions struct {
	// DragDeadZone is the pointer travel in canvas pixels before a press
	// becomes a drag. Zero means 4.
	DragDeadZone float64
	// ClearColor fills the window outside the canvas.
	ClearColor Color
	// CanvasColor fills the canvas beneath the layers.
	CanvasColor Color
	Logger      *slog.Logger
}

// Renderer projects the store onto the screen and turns pointer input into
// selection and transform intents. It holds no scene data of its own: every
// store notification recomposes the frame from the new state.
type Renderer struct {
	store *Store
	sub   Subscription
	state State
	frame Frame
	view  *Viewport

	clearColor  Color
	canvasColor Color
	canvasImg   *ebiten.Image

	pointer      pointerState
	sceneGen     uint64
	dragDeadZone float64
	injectQueue  []syntheticPointerEvent

	debug bool
	log   *slog.Logger
}

// NewRenderer subscribes a renderer to store.
func NewRenderer(store *Store, opts RendererOptions) *Renderer {
	r := &Renderer{
		store:        store,
		view:         NewViewport(Rect{}, Size{}),
		clearColor:   opts.ClearColor,
		canvasColor:  opts.CanvasColor,
		dragDeadZone: opts.DragDeadZone,
		log:          opts.Logger,
	}
	if r.clearColor == (Color{}) {
		r.clearColor = defaultClearColor
	}
	if r.canvasColor == (Color{}) {
		r.canvasColor = defaultCanvasColor
	}
	if r.dragDeadZone <= 0 {
		r.dragDeadZone = defaultDragDeadZone
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	r.sub = store.Subscribe(r.onStoreChange)
	r.onStoreChange(store.State())
	return r
}

// Close detaches the renderer from its store.
func (r *Renderer) Close() {
	r.sub.Unsubscribe()
	if r.canvasImg != nil {
		r.canvasImg.Deallocate()
		r.canvasImg = nil
	}
}

// Frame returns a copy of the most recently composed frame. The renderer
// reuses its own command buffer between compositions; the returned Commands
// slice is the caller's to keep.
func (r *Renderer) Frame() Frame {
	f := r.frame
	f.Commands = slices.Clone(f.Commands)
	return f
}

// Viewport returns the renderer's canvas-to-window mapping.
func (r *Renderer) Viewport() *Viewport { return r.view }

// SetDebugMode enables per-compose stats logging and selection checks.
func (r *Renderer) SetDebugMode(enabled bool) { r.debug = enabled }

func (r *Renderer) onStoreChange(st State) {
	var t0 time.Time
	if r.debug {
		t0 = time.Now()
	}
	r.state = st
	if gen := r.store.SceneGeneration(); gen != r.sceneGen {
		r.sceneGen = gen
		r.abandonPointer()
	}
	r.frame = composeInto(st, r.frame.Commands)
	if st.Scene != nil {
		r.view.SetCanvas(st.Scene.CanvasSize())
	}
	if r.debug {
		r.debugLog(debugStats{
			composeTime:  time.Since(t0),
			commandCount: len(r.frame.Commands),
			layerCount:   sceneLen(st.Scene),
		})
		debugCheckSelection(r.log, st)
	}
}

// SelectLayer is the click intent for a layer. Locked or unknown layers are
// ignored, so the store only ever receives ids of selectable layers.
func (r *Renderer) SelectLayer(id string) bool {
	if r.state.Scene == nil {
		return false
	}
	l, ok := r.state.Scene.Layer(id)
	if !ok || l.Locked {
		return false
	}
	r.store.Select(id)
	return true
}

// ClickBackground is the click intent for empty canvas: it clears the
// selection.
func (r *Renderer) ClickBackground() {
	r.store.Select(NoSelection)
}

// HitTest returns the topmost unlocked layer under the canvas point (x, y).
// Locked layers are transparent to the pointer.
func (r *Renderer) HitTest(x, y float64) (string, bool) {
	sc := r.state.Scene
	if sc == nil {
		return "", false
	}
	for i := sc.Len() - 1; i >= 0; i-- {
		l := sc.LayerAt(i)
		if l.Locked {
			continue
		}
		if l.ContainsPoint(x, y) {
			return l.ID, true
		}
	}
	return "", false
}

// Draw paints the composed frame onto screen through the viewport.
func (r *Renderer) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	r.view.SetScreen(Rect{X: float64(b.Min.X), Y: float64(b.Min.Y), Width: float64(b.Dx()), Height: float64(b.Dy())})
	screen.Fill(r.clearColor.RGBA())

	canvas := r.frame.Canvas
	if !canvas.Positive() {
		return
	}
	w, h := int(math.Ceil(canvas.W)), int(math.Ceil(canvas.H))
	if r.canvasImg == nil || r.canvasImg.Bounds().Dx() != w || r.canvasImg.Bounds().Dy() != h {
		if r.canvasImg != nil {
			r.canvasImg.Deallocate()
		}
		r.canvasImg = ebiten.NewImage(w, h)
	}
	r.canvasImg.Fill(r.canvasColor.RGBA())

	var op ebiten.DrawImageOptions
	for i := range r.frame.Commands {
		cmd := &r.frame.Commands[i]
		ps := cmd.Asset.PixelSize()
		if !ps.Positive() {
			continue
		}
		// Stretch the pixels to the natural size, then place the layer.
		m := multiplyAffine(cmd.Transform, [6]float64{cmd.Size.W / ps.W, 0, 0, cmd.Size.H / ps.H, 0, 0})
		op.GeoM = affineGeoM(m)
		op.Filter = ebiten.FilterLinear
		r.canvasImg.DrawImage(cmd.Asset.texture(), &op)
	}
	if r.frame.Selection != nil {
		drawDecoration(r.canvasImg, r.frame.Selection)
	}

	op.GeoM = affineGeoM(r.view.computeViewMatrix())
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(r.canvasImg, &op)
}

func drawDecoration(dst *ebiten.Image, d *Decoration) {
	clr := selectionColor.RGBA()
	for i := range d.Corners {
		a, b := d.Corners[i], d.Corners[(i+1)%4]
		vector.StrokeLine(dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), outlineWidth, clr, true)
	}
	top := Vec2{(d.Corners[0].X + d.Corners[1].X) / 2, (d.Corners[0].Y + d.Corners[1].Y) / 2}
	vector.StrokeLine(dst, float32(top.X), float32(top.Y), float32(d.Rotator.X), float32(d.Rotator.Y), 1, clr, true)
	vector.DrawFilledCircle(dst, float32(d.Rotator.X), float32(d.Rotator.Y), handleSize/2, clr, true)
	for _, h := range d.Handles {
		vector.DrawFilledRect(dst, float32(h.X), float32(h.Y), float32(h.Width), float32(h.Height), clr, false)
		vector.DrawFilledRect(dst, float32(h.X+outlineWidth), float32(h.Y+outlineWidth),
			float32(h.Width-2*outlineWidth), float32(h.Height-2*outlineWidth), handleFillColor.RGBA(), false)
	}
}

// affineGeoM converts a [6]float64 affine matrix into an ebiten.GeoM.
func affineGeoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

func sceneLen(s *Scene) int {
	if s == nil {
		return 0
	}
	return s.Len()
}
