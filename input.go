package peel

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	defaultDragDeadZone = 4.0  // canvas pixels
	minLayerScale       = 0.01 // corner drags never collapse or mirror a layer
)

// dragMode is what a press is manipulating.
type dragMode uint8

const (
	dragNone   dragMode = iota // empty canvas or a locked layer
	dragMove                   // body of an unlocked layer
	dragScale                  // a corner handle of the selected layer
	dragRotate                 // the rotation handle of the selected layer
)

// pointerTarget is the result of resolving a canvas point against the
// current frame.
type pointerTarget struct {
	mode    dragMode
	layerID string
	corner  int // for dragScale, index into Decoration.Corners
}

type pointerState struct {
	down     bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	target   pointerTarget
	hover    pointerTarget
	dragging bool
	origin   Transform // layer transform at press time

	// abandoned is set when the scene is replaced under a held press. The
	// rest of the gesture is ignored until release.
	abandoned bool
}

// abandonPointer drops the gesture in progress. Its target and origin
// belong to the previous scene and must not be applied to a new one, even
// when a layer there has the same id.
func (r *Renderer) abandonPointer() {
	if !r.pointer.down {
		return
	}
	r.pointer = pointerState{
		down:      true,
		startX:    r.pointer.startX,
		startY:    r.pointer.startY,
		lastX:     r.pointer.lastX,
		lastY:     r.pointer.lastY,
		abandoned: true,
	}
}

// targetAt resolves a canvas point. The selected layer's handles take
// priority over layer bodies so a handle overlapping another layer still
// grabs the selection.
func (r *Renderer) targetAt(x, y float64) pointerTarget {
	if d := r.frame.Selection; d != nil {
		for i, h := range d.Handles {
			if h.Contains(x, y) {
				return pointerTarget{mode: dragScale, layerID: d.LayerID, corner: i}
			}
		}
		dx, dy := x-d.Rotator.X, y-d.Rotator.Y
		if dx*dx+dy*dy <= handleSize*handleSize/4 {
			return pointerTarget{mode: dragRotate, layerID: d.LayerID}
		}
	}
	if id, ok := r.HitTest(x, y); ok {
		return pointerTarget{mode: dragMove, layerID: id}
	}
	return pointerTarget{}
}

// processPointer feeds one pointer sample in canvas coordinates through the
// press/drag/release state machine. A press and release on the same target
// without leaving the dead zone is a click.
func (r *Renderer) processPointer(x, y float64, pressed bool) {
	ps := &r.pointer
	target := r.targetAt(x, y)

	if ps.abandoned {
		if !pressed {
			ps.down = false
			ps.abandoned = false
		}
		ps.lastX, ps.lastY = x, y
		ps.hover = target
		return
	}

	if pressed && !ps.down {
		ps.down = true
		ps.startX, ps.startY = x, y
		ps.lastX, ps.lastY = x, y
		ps.target = target
		ps.dragging = false
		ps.origin = IdentityTransform
		if l, ok := r.layer(target.layerID); ok {
			ps.origin = l.Transform
		}
	} else if !pressed && ps.down {
		if ps.dragging {
			if x != ps.lastX || y != ps.lastY {
				r.applyDrag(x, y)
			}
		} else if ps.target == target {
			r.click(target)
		}
		ps.down = false
		ps.target = pointerTarget{}
		ps.dragging = false
	} else if pressed && ps.down {
		if x != ps.lastX || y != ps.lastY {
			if !ps.dragging {
				dx := x - ps.startX
				dy := y - ps.startY
				if math.Sqrt(dx*dx+dy*dy) > r.dragDeadZone {
					ps.dragging = true
					r.beginDrag()
				}
			}
			if ps.dragging {
				r.applyDrag(x, y)
			}
		}
		ps.lastX, ps.lastY = x, y
	} else {
		ps.lastX, ps.lastY = x, y
	}
	ps.hover = target
}

func (r *Renderer) click(t pointerTarget) {
	switch t.mode {
	case dragMove:
		r.SelectLayer(t.layerID)
	case dragNone:
		r.ClickBackground()
	}
}

// beginDrag selects a layer grabbed by its body so the handles follow it.
func (r *Renderer) beginDrag() {
	t := r.pointer.target
	if t.mode == dragMove && r.store.Selected() != t.layerID {
		r.SelectLayer(t.layerID)
	}
	if r.debug {
		r.log.Debug("drag start", "layer", t.layerID, "mode", t.mode.String())
	}
}

// applyDrag recomputes the dragged layer's transform from the press origin
// and the current pointer position.
func (r *Renderer) applyDrag(x, y float64) {
	ps := &r.pointer
	if ps.target.mode == dragNone {
		return
	}
	l, ok := r.layer(ps.target.layerID)
	if !ok || l.Locked {
		return
	}
	l.Transform = ps.origin
	t := ps.origin
	switch ps.target.mode {
	case dragMove:
		t.TX += x - ps.startX
		t.TY += y - ps.startY
	case dragScale:
		t.SX, t.SY = scaleFromCorner(l, ps.target.corner, x, y)
	case dragRotate:
		p := l.Pivot()
		a0 := math.Atan2(ps.startY-p.Y, ps.startX-p.X)
		a1 := math.Atan2(y-p.Y, x-p.X)
		t.Rotation = ps.origin.Rotation + (a1-a0)*180/math.Pi
	}
	r.store.UpdateTransform(l.ID, t)
}

// scaleFromCorner returns the scale that puts the given corner of l under
// (x, y), keeping the pivot fixed. The pointer is unrotated into the
// layer's frame so rotated layers scale along their own axes.
func scaleFromCorner(l Layer, corner int, x, y float64) (sx, sy float64) {
	p := l.Pivot()
	u := rotateVec(Vec2{x - p.X, y - p.Y}, -l.Transform.Rotation)
	local := [4]Vec2{
		{0, 0},
		{l.NaturalSize.W, 0},
		{l.NaturalSize.W, l.NaturalSize.H},
		{0, l.NaturalSize.H},
	}[corner&3]
	c := Vec2{local.X - l.Transform.Anchor.X*l.NaturalSize.W, local.Y - l.Transform.Anchor.Y*l.NaturalSize.H}

	sx, sy = l.Transform.SX, l.Transform.SY
	if math.Abs(c.X) > 1e-9 {
		sx = math.Max(u.X/c.X, minLayerScale)
	}
	if math.Abs(c.Y) > 1e-9 {
		sy = math.Max(u.Y/c.Y, minLayerScale)
	}
	return sx, sy
}

func (r *Renderer) layer(id string) (Layer, bool) {
	if id == "" || r.state.Scene == nil {
		return Layer{}, false
	}
	return r.state.Scene.Layer(id)
}

// Dragging reports whether a drag is in progress.
func (r *Renderer) Dragging() bool { return r.pointer.dragging }

// cursorShape picks the mouse cursor for what the pointer is over.
func (r *Renderer) cursorShape() ebiten.CursorShapeType {
	t := r.pointer.hover
	if r.pointer.down {
		t = r.pointer.target
	}
	switch t.mode {
	case dragMove:
		return ebiten.CursorShapeMove
	case dragScale:
		if t.corner%2 == 0 {
			return ebiten.CursorShapeNWSEResize
		}
		return ebiten.CursorShapeNESWResize
	case dragRotate:
		return ebiten.CursorShapeCrosshair
	}
	return ebiten.CursorShapeDefault
}

// Update consumes one frame of input: an injected event if any is queued,
// otherwise the real mouse.
func (r *Renderer) Update(dt float32) {
	r.view.update(dt)
	if r.processInjectedInput() {
		return
	}
	mx, my := ebiten.CursorPosition()
	x, y := r.view.ScreenToCanvas(float64(mx), float64(my))
	r.processPointer(x, y, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
	ebiten.SetCursorShape(r.cursorShape())
}

func (m dragMode) String() string {
	switch m {
	case dragMove:
		return "move"
	case dragScale:
		return "scale"
	case dragRotate:
		return "rotate"
	default:
		return "none"
	}
}
