package peel

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func animStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	s.SetScene(twoLayerScene(), nil)
	return s
}

func TestTweenTransformReachesTarget(t *testing.T) {
	store := animStore(t)
	to := Transform{TX: 100, TY: 200, Rotation: 45, SX: 2, SY: 0.5, Anchor: Vec2{0.5, 0.5}}
	g := TweenTransform(store, "elem-01", to, 1.0, ease.Linear)
	if g == nil {
		t.Fatal("TweenTransform returned nil")
	}

	// Exact halves avoid float32 accumulation drift.
	g.Update(0.5)
	if g.Done {
		t.Fatal("Done halfway through")
	}
	mid := elemTransform(t, store)
	if math.Abs(mid.TX-55) > 0.5 || math.Abs(mid.TY-105) > 0.5 {
		t.Errorf("midpoint position = (%v, %v), want ~(55, 105)", mid.TX, mid.TY)
	}
	g.Update(0.5)
	if !g.Done {
		t.Fatal("expected Done after full duration")
	}

	got := elemTransform(t, store)
	if math.Abs(got.TX-100) > 0.01 || math.Abs(got.TY-200) > 0.01 {
		t.Errorf("position = (%v, %v), want (100, 200)", got.TX, got.TY)
	}
	if math.Abs(got.Rotation-45) > 0.01 || math.Abs(got.SX-2) > 0.01 || math.Abs(got.SY-0.5) > 0.01 {
		t.Errorf("transform = %+v", got)
	}
	if got.Anchor != to.Anchor {
		t.Errorf("anchor = %+v, want %+v", got.Anchor, to.Anchor)
	}
}

func TestTweenTransformNotifiesEachStep(t *testing.T) {
	store := animStore(t)
	var rec recorder
	store.Subscribe(rec.listen)

	g := TweenTransform(store, "elem-01", Translated(50, 50), 0.3, ease.Linear)
	for !g.Done {
		g.Update(0.1)
	}
	if len(rec.states) < 3 {
		t.Errorf("notifications = %d, want at least 3", len(rec.states))
	}
}

func TestTweenReset(t *testing.T) {
	store := animStore(t)
	store.UpdateTransform("elem-01", Transform{TX: 30, TY: 40, Rotation: 90, SX: 3, SY: 2})

	g := TweenReset(store, "elem-01", 0.2, ease.OutCubic)
	g.Update(0.1)
	g.Update(0.1)
	if !g.Done {
		t.Fatal("expected Done")
	}
	got := elemTransform(t, store)
	if math.Abs(got.Rotation) > 0.01 || math.Abs(got.SX-1) > 0.01 || math.Abs(got.SY-1) > 0.01 {
		t.Errorf("transform after reset = %+v", got)
	}
	if math.Abs(got.TX-30) > 0.01 || math.Abs(got.TY-40) > 0.01 {
		t.Errorf("reset moved the layer: %+v", got)
	}
}

func TestTweenUnknownOrLockedLayer(t *testing.T) {
	if TweenTransform(NewStore(), "elem-01", IdentityTransform, 1, ease.Linear) != nil {
		t.Error("tween created without a scene")
	}
	store := animStore(t)
	if TweenReset(store, "missing", 1, ease.Linear) != nil {
		t.Error("tween created for unknown layer")
	}

	g := TweenTransform(store, "bg", Translated(10, 10), 1, ease.Linear)
	g.Update(0.1)
	if !g.Done {
		t.Error("tween on locked layer should stop immediately")
	}
	var nilTween *TransformTween
	nilTween.Update(0.1) // no-op
}

func TestTweenStopsWhenSceneReplaced(t *testing.T) {
	store := animStore(t)
	g := TweenTransform(store, "elem-01", Translated(500, 500), 1, ease.Linear)
	g.Update(0.25)
	store.SetScene(NewScene(testCanvas, NewBackgroundLayer("bg", testCanvas)), nil)
	g.Update(0.25)
	if !g.Done {
		t.Error("tween should stop once its layer is gone")
	}
}

func TestTweenStopsWhenSceneReusesLayerID(t *testing.T) {
	store := animStore(t)
	g := TweenTransform(store, "elem-01", Translated(500, 500), 1, ease.Linear)
	g.Update(0.25)

	// A fresh import produces the same element id at its bbox position.
	store.SetScene(twoLayerScene(), nil)
	g.Update(0.25)
	if !g.Done {
		t.Error("tween should stop once another scene is installed")
	}
	got := elemTransform(t, store)
	if got.TX != 10 || got.TY != 10 {
		t.Errorf("new layer position = (%v, %v), want (10, 10)", got.TX, got.TY)
	}
}

func TestTweenScaleNeverNonPositive(t *testing.T) {
	store := animStore(t)
	// OutBack overshoots past the target before settling.
	g := TweenTransform(store, "elem-01", Transform{SX: 0.02, SY: 0.02}, 1, ease.OutBack)
	for !g.Done {
		g.Update(0.05)
		if tr := elemTransform(t, store); tr.SX <= 0 || tr.SY <= 0 {
			t.Fatalf("scale went non-positive: %+v", tr)
		}
	}
}
