package peel

import (
	"image"
	"io"
	"log/slog"
	"reflect"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func solidAsset(id string, w, h int) *Asset {
	return NewAsset(AssetRef{Store: DefaultAssetStore, Key: id, MIME: MIMEPNG}, image.NewNRGBA(image.Rect(0, 0, w, h)))
}

func fullAssets() AssetTable {
	return AssetTable{
		"bg":      solidAsset("bg", 8, 6),
		"elem-01": solidAsset("elem-01", 4, 4),
	}
}

func newTestRenderer(t *testing.T, store *Store) *Renderer {
	t.Helper()
	r := NewRenderer(store, RendererOptions{Logger: quietLogger()})
	t.Cleanup(r.Close)
	return r
}

func commandIDs(f Frame) []string {
	ids := make([]string, 0, len(f.Commands))
	for _, c := range f.Commands {
		ids = append(ids, c.LayerID)
	}
	return ids
}

// --- Compose ---

func TestComposeEmpty(t *testing.T) {
	f := Compose(State{})
	if f.Canvas.Positive() || len(f.Commands) != 0 || f.Selection != nil {
		t.Errorf("Compose(empty) = %+v", f)
	}
}

func TestComposeBackToFront(t *testing.T) {
	st := State{Scene: twoLayerScene(), Assets: fullAssets()}
	f := Compose(st)
	if got := commandIDs(f); !reflect.DeepEqual(got, []string{"bg", "elem-01"}) {
		t.Errorf("commands = %v, want [bg elem-01]", got)
	}
	if f.Canvas != testCanvas {
		t.Errorf("canvas = %+v", f.Canvas)
	}
	el, _ := st.Scene.Layer("elem-01")
	assertMatrix(t, "elem transform", f.Commands[1].Transform, el.Matrix())
	if f.Commands[1].Size != el.NaturalSize {
		t.Errorf("elem size = %+v", f.Commands[1].Size)
	}
}

func TestComposeSkipsUnresolved(t *testing.T) {
	assets := AssetTable{"bg": solidAsset("bg", 2, 2)}
	f := Compose(State{Scene: twoLayerScene(), Assets: assets})
	if got := commandIDs(f); !reflect.DeepEqual(got, []string{"bg"}) {
		t.Errorf("commands = %v, want [bg]", got)
	}

	f = Compose(State{Scene: twoLayerScene(), Assets: AssetTable{"elem-01": nil}})
	if len(f.Commands) != 0 {
		t.Errorf("commands = %v, want none", commandIDs(f))
	}
}

func TestComposeDecoration(t *testing.T) {
	sc := twoLayerScene()
	tests := []struct {
		name     string
		selected string
		want     bool
	}{
		{"unlocked selected", "elem-01", true},
		{"nothing selected", NoSelection, false},
		{"locked selected", "bg", false},
		{"stale id", "gone", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Compose(State{Scene: sc, Assets: fullAssets(), Selected: tt.selected})
			if (f.Selection != nil) != tt.want {
				t.Fatalf("decorated = %v, want %v", f.Selection != nil, tt.want)
			}
		})
	}
}

func TestDecorationGeometry(t *testing.T) {
	l := NewElementLayer("e", Size{W: 100, H: 50}, Vec2{X: 10, Y: 20})
	d := decorate(l)
	if d.Corners != l.Corners() {
		t.Errorf("corners = %v, want %v", d.Corners, l.Corners())
	}
	for i, h := range d.Handles {
		c := d.Corners[i]
		if !h.Contains(c.X, c.Y) || h.Width != handleSize || h.Height != handleSize {
			t.Errorf("handle %d = %+v does not center on %+v", i, h, c)
		}
	}
	assertVec(t, "rotator", d.Rotator, Vec2{60, 20 - rotatorOffset})
}

func TestDecorationFollowsRotation(t *testing.T) {
	l := NewElementLayer("e", Size{W: 100, H: 100}, Vec2{})
	l.Transform.Rotation = 90
	l.Transform.Anchor = Vec2{0.5, 0.5}
	d := decorate(l)
	// The top edge now faces +X, so the rotator sits to the right.
	assertVec(t, "rotator", d.Rotator, Vec2{100 + rotatorOffset, 50})
}

// --- Renderer ---

func TestRendererRecomposesOnNotify(t *testing.T) {
	store := NewStore()
	r := newTestRenderer(t, store)
	if len(r.Frame().Commands) != 0 {
		t.Fatal("frame not empty before SetScene")
	}

	store.SetScene(twoLayerScene(), fullAssets())
	if got := commandIDs(r.Frame()); len(got) != 2 {
		t.Errorf("commands after SetScene = %v", got)
	}
	if r.Frame().Selection == nil || r.Frame().Selection.LayerID != "elem-01" {
		t.Errorf("selection after SetScene = %+v", r.Frame().Selection)
	}
	if r.Viewport().Canvas != testCanvas {
		t.Errorf("viewport canvas = %+v", r.Viewport().Canvas)
	}

	store.Select(NoSelection)
	if r.Frame().Selection != nil {
		t.Error("decoration survived deselect")
	}
}

func TestRendererFrameIsStable(t *testing.T) {
	store := NewStore()
	r := newTestRenderer(t, store)
	store.SetScene(twoLayerScene(), fullAssets())
	before := r.Frame()

	// The next composition draws only the element into the same buffer.
	store.SetScene(twoLayerScene(), AssetTable{"elem-01": solidAsset("elem-01", 4, 4)})
	if got := commandIDs(before); !reflect.DeepEqual(got, []string{"bg", "elem-01"}) {
		t.Errorf("kept frame commands = %v, want [bg elem-01]", got)
	}
	if got := commandIDs(r.Frame()); !reflect.DeepEqual(got, []string{"elem-01"}) {
		t.Errorf("new frame commands = %v, want [elem-01]", got)
	}
}

func TestRendererCloseUnsubscribes(t *testing.T) {
	store := NewStore()
	r := NewRenderer(store, RendererOptions{Logger: quietLogger()})
	r.Close()
	store.SetScene(twoLayerScene(), fullAssets())
	if len(r.Frame().Commands) != 0 {
		t.Error("closed renderer still recomposed")
	}
}

func TestRendererHitTest(t *testing.T) {
	store := NewStore()
	r := newTestRenderer(t, store)
	if _, ok := r.HitTest(50, 50); ok {
		t.Error("HitTest without scene reported a hit")
	}

	sc := NewScene(testCanvas,
		NewBackgroundLayer("bg", testCanvas),
		NewElementLayer("low", Size{W: 100, H: 100}, Vec2{X: 0, Y: 0}),
		NewElementLayer("high", Size{W: 100, H: 100}, Vec2{X: 50, Y: 50}),
	)
	store.SetScene(sc, nil)

	tests := []struct {
		name   string
		x, y   float64
		wantID string
		wantOK bool
	}{
		{"only low", 10, 10, "low", true},
		{"overlap picks topmost", 75, 75, "high", true},
		{"only high", 140, 140, "high", true},
		{"background is transparent", 400, 400, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := r.HitTest(tt.x, tt.y)
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("HitTest(%v, %v) = %q, %v; want %q, %v", tt.x, tt.y, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestRendererHitTestUnresolvedLayer(t *testing.T) {
	// A layer without pixels still occupies its box.
	store := NewStore()
	r := newTestRenderer(t, store)
	store.SetScene(twoLayerScene(), nil)
	if id, ok := r.HitTest(50, 50); !ok || id != "elem-01" {
		t.Errorf("HitTest = %q, %v; want elem-01", id, ok)
	}
}

func TestClickToSelectScenario(t *testing.T) {
	store := NewStore()
	r := newTestRenderer(t, store)

	resp := ExtractResponse{
		BackgroundPNG: []byte("abc"),
		Elements:      []ExtractElement{{ID: "elem-01", PNG: []byte("def"), BBox: &BBox{X: 10, Y: 10, W: 100, H: 100}}},
	}
	sc, _ := Assemble(resp, Size{W: 800, H: 600})
	store.SetScene(sc, nil)
	store.Select(NoSelection)

	if !r.SelectLayer("elem-01") {
		t.Fatal("SelectLayer(elem-01) refused")
	}
	if store.Selected() != "elem-01" {
		t.Fatalf("Selected = %q, want elem-01", store.Selected())
	}

	r.ClickBackground()
	if store.Selected() != NoSelection {
		t.Fatalf("Selected after background click = %q, want none", store.Selected())
	}

	var notified int
	store.Subscribe(func(State) { notified++ })
	if r.SelectLayer("bg") {
		t.Error("SelectLayer(bg) accepted a locked layer")
	}
	if r.SelectLayer("missing") {
		t.Error("SelectLayer accepted an unknown layer")
	}
	if store.Selected() != NoSelection || notified != 0 {
		t.Errorf("locked/unknown select changed state: selected=%q notified=%d", store.Selected(), notified)
	}
}

func TestAffineGeoM(t *testing.T) {
	m := [6]float64{2, 0.5, -1, 3, 7, 9}
	g := affineGeoM(m)
	x, y := g.Apply(4, 5)
	wx, wy := transformPoint(m, 4, 5)
	assertNear(t, "x", x, wx)
	assertNear(t, "y", y, wy)
}
