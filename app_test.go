package peel

import (
	"errors"
	"image/color"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/tanema/gween/ease"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	store := NewStore()
	im := newTestImporter(t, store, MockExtractor{})
	a := NewApp(store, im, AppOptions{Logger: quietLogger()})
	t.Cleanup(a.renderer.Close)
	v := a.Renderer().Viewport()
	v.Padding = 0
	v.SetScreen(Rect{Width: 800, Height: 600})
	return a
}

func TestAppImport(t *testing.T) {
	a := newTestApp(t)
	if err := a.Import(pngBytes(t, 4, 4, color.White)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if err := a.Import([]byte("again")); !errors.Is(err, ErrImportInProgress) {
		t.Errorf("second Import err = %v, want ErrImportInProgress", err)
	}
	if err := waitImport(t, a.Importer()); err != nil {
		t.Fatal(err)
	}
	if a.Store().Scene() == nil {
		t.Fatal("scene not installed")
	}
	if len(a.Renderer().Frame().Commands) != 2 {
		t.Errorf("renderer commands = %d, want 2", len(a.Renderer().Frame().Commands))
	}
}

func TestAppCycleSelection(t *testing.T) {
	a := newTestApp(t)
	a.cycleSelection() // no scene: no-op
	sc := NewScene(testCanvas,
		NewBackgroundLayer("bg", testCanvas),
		NewElementLayer("a", Size{W: 10, H: 10}, Vec2{}),
		NewElementLayer("b", Size{W: 10, H: 10}, Vec2{}),
	)
	a.Store().SetScene(sc, nil)

	want := []string{"b", "a", "b"}
	for i, w := range want {
		a.cycleSelection()
		if got := a.Store().Selected(); got != w {
			t.Fatalf("cycle %d: Selected = %q, want %q", i, got, w)
		}
	}
}

func TestAppNudgeSelection(t *testing.T) {
	a := newTestApp(t)
	a.Store().SetScene(twoLayerScene(), nil)

	if !a.nudgeSelection(5, -3) {
		t.Fatal("nudge refused")
	}
	tr := elemTransform(t, a.Store())
	if tr.TX != 15 || tr.TY != 7 {
		t.Errorf("position = (%v, %v), want (15, 7)", tr.TX, tr.TY)
	}

	a.Store().Select(NoSelection)
	if a.nudgeSelection(1, 1) {
		t.Error("nudge with no selection reported true")
	}
}

func TestAppUpdateTweensDropsFinished(t *testing.T) {
	a := newTestApp(t)
	a.Store().SetScene(twoLayerScene(), nil)
	a.tweens = append(a.tweens, TweenTransform(a.Store(), "elem-01", Translated(0, 0), 0.1, ease.Linear))
	a.updateTweens(0.05)
	if len(a.tweens) != 1 {
		t.Fatalf("tweens = %d, want 1", len(a.tweens))
	}
	a.updateTweens(0.05)
	if len(a.tweens) != 0 {
		t.Errorf("tweens = %d, want 0", len(a.tweens))
	}
}

func TestAppStatusLines(t *testing.T) {
	a := newTestApp(t)
	lines := a.statusLines()
	if len(lines) != 2 || !strings.Contains(lines[0], MessageIdle) {
		t.Errorf("empty status = %q", lines)
	}

	a.Store().SetScene(twoLayerScene(), nil)
	lines = a.statusLines()
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "elem-01") {
		t.Errorf("selected status = %q", lines)
	}

	a.Store().Select(NoSelection)
	if lines := a.statusLines(); len(lines) != 1 {
		t.Errorf("deselected status = %q", lines)
	}
}

func TestFirstDroppedFile(t *testing.T) {
	files := fstest.MapFS{
		"dir/photo.png": {Data: []byte("png")},
		"z.txt":         {Data: []byte("txt")},
	}
	data, name, err := firstDroppedFile(files)
	if err != nil {
		t.Fatal(err)
	}
	if name != "dir/photo.png" || string(data) != "png" {
		t.Errorf("got %q %q", name, data)
	}

	if _, _, err := firstDroppedFile(fstest.MapFS{}); err == nil {
		t.Error("expected error for empty drop")
	}
}

func TestNormalizeDegrees(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{180, 180},
		{-180, 180},
		{270, -90},
		{-450, -90},
		{725, 5},
	}
	for _, tt := range tests {
		assertNear(t, "normalizeDegrees", normalizeDegrees(tt.in), tt.want)
	}
}
