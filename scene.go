package peel

import "strconv"

// SceneVersion is the schema tag stamped on every scene.
const SceneVersion = "1.0.0"

// Scene is an immutable description of a composed image: the canvas size,
// the back-to-front layer order and the per-layer data. Construct scenes with
// NewScene or SceneFromMap; both panic on invariant violations since a
// malformed scene is a programming error, not a runtime condition.
type Scene struct {
	version  string
	canvas   Size
	layers   []string
	layerMap map[string]Layer
}

// NewScene builds a scene whose z-order is the order of layers.
// Panics if the canvas is not positive, an id is empty or duplicated, a
// background layer is unlocked or a scale factor is not positive.
func NewScene(canvas Size, layers ...Layer) *Scene {
	order := make([]string, 0, len(layers))
	m := make(map[string]Layer, len(layers))
	for _, l := range layers {
		if _, dup := m[l.ID]; dup {
			panic("peel: duplicate layer id " + quote(l.ID))
		}
		order = append(order, l.ID)
		m[l.ID] = l
	}
	return newScene(canvas, order, m)
}

// SceneFromMap builds a scene from an explicit z-order and layer map.
// Panics if order and layerMap disagree in either direction, plus every
// condition NewScene rejects.
func SceneFromMap(canvas Size, order []string, layerMap map[string]Layer) *Scene {
	m := make(map[string]Layer, len(layerMap))
	for id, l := range layerMap {
		if l.ID != id {
			panic("peel: layer map key " + quote(id) + " holds layer " + quote(l.ID))
		}
		m[id] = l
	}
	return newScene(canvas, append([]string(nil), order...), m)
}

func newScene(canvas Size, order []string, m map[string]Layer) *Scene {
	if !canvas.Positive() {
		panic("peel: canvas size must be positive")
	}
	if len(order) != len(m) {
		panic("peel: layer order and layer map differ in size")
	}
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if id == "" {
			panic("peel: empty layer id")
		}
		if seen[id] {
			panic("peel: duplicate layer id " + quote(id))
		}
		seen[id] = true
		l, ok := m[id]
		if !ok {
			panic("peel: layer " + quote(id) + " missing from layer map")
		}
		if l.Kind == KindBackground && !l.Locked {
			panic("peel: background layer " + quote(id) + " must be locked")
		}
		checkTransform(id, l.Transform)
	}
	return &Scene{version: SceneVersion, canvas: canvas, layers: order, layerMap: m}
}

// Version returns the scene's schema tag.
func (s *Scene) Version() string { return s.version }

// CanvasSize returns the canvas dimensions.
func (s *Scene) CanvasSize() Size { return s.canvas }

// Len returns the number of layers.
func (s *Scene) Len() int { return len(s.layers) }

// Layers returns a copy of the back-to-front layer id order.
func (s *Scene) Layers() []string {
	return append([]string(nil), s.layers...)
}

// LayerAt returns the layer at z-order index i (0 = bottommost).
func (s *Scene) LayerAt(i int) Layer {
	return s.layerMap[s.layers[i]]
}

// Layer looks up a layer by id.
func (s *Scene) Layer(id string) (Layer, bool) {
	l, ok := s.layerMap[id]
	return l, ok
}

// FirstUnlocked returns the id of the bottommost unlocked layer.
func (s *Scene) FirstUnlocked() (string, bool) {
	for _, id := range s.layers {
		if !s.layerMap[id].Locked {
			return id, true
		}
	}
	return "", false
}

// NextUnlocked returns the first unlocked layer after id in z-order,
// wrapping around. An unknown or empty id behaves like FirstUnlocked.
func (s *Scene) NextUnlocked(id string) (string, bool) {
	start := -1
	for i, lid := range s.layers {
		if lid == id {
			start = i
			break
		}
	}
	n := len(s.layers)
	for k := 1; k <= n; k++ {
		lid := s.layers[(start+k+n)%n]
		if !s.layerMap[lid].Locked {
			return lid, true
		}
	}
	return "", false
}

// WithTransform returns a copy of the scene with layer id's transform
// replaced. The receiver is left untouched. Reports false, returning the
// receiver, if id is unknown or locked. Panics if t has a non-positive scale.
func (s *Scene) WithTransform(id string, t Transform) (*Scene, bool) {
	l, ok := s.layerMap[id]
	if !ok || l.Locked {
		return s, false
	}
	checkTransform(id, t)
	m := make(map[string]Layer, len(s.layerMap))
	for k, v := range s.layerMap {
		m[k] = v
	}
	l.Transform = t
	m[id] = l
	return &Scene{version: s.version, canvas: s.canvas, layers: s.layers, layerMap: m}, true
}

func quote(s string) string { return strconv.Quote(s) }
