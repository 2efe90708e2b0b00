package peel

// NoSelection is the Selected value when no layer is selected.
const NoSelection = ""

// State is a snapshot of the store. Scene is nil until the first SetScene.
type State struct {
	Scene    *Scene
	Assets   AssetTable
	Selected string
}

// SelectedLayer returns the selected layer when one is selected and present in the
// scene.
func (st State) SelectedLayer() (Layer, bool) {
	if st.Scene == nil || st.Selected == NoSelection {
		return Layer{}, false
	}
	return st.Scene.Layer(st.Selected)
}

// Listener receives the store state after every mutation.
type Listener func(State)

type listenerEntry struct {
	id uint32
	fn Listener
}

// Subscription allows removing a registered listener.
type Subscription struct {
	id    uint32
	store *Store
}

// Unsubscribe removes the listener so it no longer fires. Safe to call more
// than once and from inside a notification.
func (sub Subscription) Unsubscribe() {
	if sub.store == nil {
		return
	}
	s := sub.store
	for i := range s.listeners {
		if s.listeners[i].id == sub.id {
			copy(s.listeners[i:], s.listeners[i+1:])
			s.listeners[len(s.listeners)-1] = listenerEntry{}
			s.listeners = s.listeners[:len(s.listeners)-1]
			return
		}
	}
}

// Store holds the current scene, its asset table and the selected layer id.
// It is the single owner of that state and is mutated only through SetScene,
// Select and UpdateTransform. Every mutation notifies all listeners
// synchronously, in registration order, before returning. The store is not
// safe for concurrent use; all calls belong on the game loop goroutine.
type Store struct {
	state     State
	listeners []listenerEntry
	nextID    uint32
	sceneGen  uint64
}

// NewStore creates an empty store with no scene.
func NewStore() *Store {
	return &Store{}
}

// State returns the current snapshot.
func (s *Store) State() State { return s.state }

// Scene returns the current scene, or nil.
func (s *Store) Scene() *Scene { return s.state.Scene }

// Assets returns the current asset table.
func (s *Store) Assets() AssetTable { return s.state.Assets }

// Selected returns the selected layer id, or NoSelection.
func (s *Store) Selected() string { return s.state.Selected }

// SceneGeneration counts SetScene calls. It changes whenever a scene is
// installed, even one that reuses layer ids, and never on Select or
// UpdateTransform.
func (s *Store) SceneGeneration() uint64 { return s.sceneGen }

// Subscribe registers fn to run after every mutation.
func (s *Store) Subscribe(fn Listener) Subscription {
	s.nextID++
	s.listeners = append(s.listeners, listenerEntry{id: s.nextID, fn: fn})
	return Subscription{id: s.nextID, store: s}
}

// SetScene replaces the scene and asset table together and resets the
// selection to the bottommost unlocked layer, or NoSelection when every
// layer is locked.
func (s *Store) SetScene(scene *Scene, assets AssetTable) {
	selected := NoSelection
	if scene != nil {
		if id, ok := scene.FirstUnlocked(); ok {
			selected = id
		}
	}
	if assets == nil {
		assets = AssetTable{}
	}
	s.sceneGen++
	s.state = State{Scene: scene, Assets: assets, Selected: selected}
	s.notify()
}

// Select sets the selected layer id. The id is not validated; callers pass
// NoSelection or the id of a rendered, unlocked layer. Listeners are
// notified even when the selection does not change.
func (s *Store) Select(id string) {
	s.state.Selected = id
	s.notify()
}

// UpdateTransform replaces the scene with a copy in which layer id has
// transform t. Assets and selection are kept. Reports false without
// notifying when there is no scene or id is unknown or locked.
func (s *Store) UpdateTransform(id string, t Transform) bool {
	if s.state.Scene == nil {
		return false
	}
	next, ok := s.state.Scene.WithTransform(id, t)
	if !ok {
		return false
	}
	s.state.Scene = next
	s.notify()
	return true
}

func (s *Store) notify() {
	if len(s.listeners) == 0 {
		return
	}
	// Copy so listeners may unsubscribe (or subscribe) while being notified.
	snapshot := make([]listenerEntry, len(s.listeners))
	copy(snapshot, s.listeners)
	st := s.state
	for _, l := range snapshot {
		l.fn(st)
	}
}
