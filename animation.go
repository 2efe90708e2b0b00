package peel

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TransformTween animates a layer's translation, rotation and scale toward
// a target transform through the store. Call Update(dt) each frame. Every
// step is an ordinary UpdateTransform, so listeners see each frame of the
// animation. The tween stops when another scene is installed, even one
// with a layer of the same id, or when the layer becomes locked.
type TransformTween struct {
	store   *Store
	gen     uint64
	layerID string
	tweens  [5]*gween.Tween
	anchor  Vec2
	Done    bool
}

// TweenTransform creates a tween from the layer's current transform to `to`
// over duration seconds. The anchor jumps to to.Anchor immediately. Returns
// nil if the layer is unknown.
func TweenTransform(store *Store, layerID string, to Transform, duration float32, fn ease.TweenFunc) *TransformTween {
	sc := store.Scene()
	if sc == nil {
		return nil
	}
	l, ok := sc.Layer(layerID)
	if !ok {
		return nil
	}
	from := l.Transform
	return &TransformTween{
		store:   store,
		gen:     store.SceneGeneration(),
		layerID: layerID,
		anchor:  to.Anchor,
		tweens: [5]*gween.Tween{
			gween.New(float32(from.TX), float32(to.TX), duration, fn),
			gween.New(float32(from.TY), float32(to.TY), duration, fn),
			gween.New(float32(from.Rotation), float32(to.Rotation), duration, fn),
			gween.New(float32(from.SX), float32(to.SX), duration, fn),
			gween.New(float32(from.SY), float32(to.SY), duration, fn),
		},
	}
}

// TweenReset animates the layer back to unit scale and zero rotation,
// keeping its position.
func TweenReset(store *Store, layerID string, duration float32, fn ease.TweenFunc) *TransformTween {
	sc := store.Scene()
	if sc == nil {
		return nil
	}
	l, ok := sc.Layer(layerID)
	if !ok {
		return nil
	}
	to := l.Transform
	to.Rotation = 0
	to.SX, to.SY = 1, 1
	return TweenTransform(store, layerID, to, duration, fn)
}

// Update advances the tween by dt seconds and writes the interpolated
// transform to the store.
func (g *TransformTween) Update(dt float32) {
	if g == nil || g.Done {
		return
	}
	if g.store.SceneGeneration() != g.gen {
		g.Done = true
		return
	}
	var vals [5]float64
	allDone := true
	for i, tw := range g.tweens {
		v, finished := tw.Update(dt)
		vals[i] = float64(v)
		if !finished {
			allDone = false
		}
	}
	t := Transform{
		TX:       vals[0],
		TY:       vals[1],
		Rotation: vals[2],
		SX:       max(vals[3], minLayerScale),
		SY:       max(vals[4], minLayerScale),
		Anchor:   g.anchor,
	}
	if !g.store.UpdateTransform(g.layerID, t) {
		g.Done = true
		return
	}
	g.Done = allDone
}
