package ecs

import (
	"testing"

	"github.com/phanxgames/peel"

	"github.com/yohamta/donburi"
)

func testScene() *peel.Scene {
	canvas := peel.Size{W: 800, H: 600}
	return peel.NewScene(canvas,
		peel.NewBackgroundLayer("bg", canvas),
		peel.NewElementLayer("elem-01", peel.Size{W: 100, H: 100}, peel.Vec2{X: 10, Y: 10}),
	)
}

func TestBridge_PublishesStateEvents(t *testing.T) {
	world := donburi.NewWorld()
	store := peel.NewStore()
	sub := Bridge(world, store)
	defer sub.Unsubscribe()

	var received []StateEvent
	StateEventType.Subscribe(world, func(w donburi.World, e StateEvent) {
		received = append(received, e)
	})

	store.SetScene(testScene(), nil)
	store.Select(peel.NoSelection)

	// Events are queued; process them.
	StateEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	if received[0].Seq != 1 || received[1].Seq != 2 {
		t.Errorf("seq = %d, %d; want 1, 2", received[0].Seq, received[1].Seq)
	}
	if received[0].State.Selected != "elem-01" {
		t.Errorf("event 0 selected = %q, want elem-01", received[0].State.Selected)
	}
	if received[1].State.Selected != peel.NoSelection {
		t.Errorf("event 1 selected = %q, want none", received[1].State.Selected)
	}
}

func TestBridge_SelectionEventsOnlyOnChange(t *testing.T) {
	world := donburi.NewWorld()
	store := peel.NewStore()
	sub := Bridge(world, store)
	defer sub.Unsubscribe()

	var changes []SelectionEvent
	SelectionEventType.Subscribe(world, func(w donburi.World, e SelectionEvent) {
		changes = append(changes, e)
	})

	store.SetScene(testScene(), nil) // "" -> elem-01
	store.Select("elem-01")          // no change
	store.Select(peel.NoSelection)   // elem-01 -> ""
	SelectionEventType.ProcessEvents(world)

	want := []SelectionEvent{
		{Previous: "", Current: "elem-01"},
		{Previous: "elem-01", Current: ""},
	}
	if len(changes) != len(want) {
		t.Fatalf("got %d selection events, want %d: %+v", len(changes), len(want), changes)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, changes[i], want[i])
		}
	}
}

func TestBridge_Unsubscribe(t *testing.T) {
	world := donburi.NewWorld()
	store := peel.NewStore()
	sub := Bridge(world, store)

	var count int
	StateEventType.Subscribe(world, func(w donburi.World, e StateEvent) {
		count++
	})

	sub.Unsubscribe()
	store.Select("x")
	StateEventType.ProcessEvents(world)

	if count != 0 {
		t.Errorf("got %d events after Unsubscribe, want 0", count)
	}
}
