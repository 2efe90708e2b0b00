// Package ecs provides ECS adapters for peel.
package ecs

import (
	"github.com/phanxgames/peel"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// StateEventType carries every store notification into a Donburi world.
var StateEventType = events.NewEventType[StateEvent]()

// SelectionEventType fires only when the selected layer id changes.
var SelectionEventType = events.NewEventType[SelectionEvent]()

// StateEvent is a store snapshot. Seq counts notifications from 1.
type StateEvent struct {
	Seq   uint64
	State peel.State
}

// SelectionEvent reports a selection change. Either id may be
// peel.NoSelection.
type SelectionEvent struct {
	Previous string
	Current  string
}

type bridge struct {
	world    donburi.World
	seq      uint64
	selected string
}

// Bridge subscribes to store and publishes its notifications into world.
// Events are queued; systems consume them with ProcessEvents. Unsubscribe
// the returned subscription to detach.
func Bridge(world donburi.World, store *peel.Store) peel.Subscription {
	b := &bridge{world: world, selected: store.Selected()}
	return store.Subscribe(b.publish)
}

func (b *bridge) publish(st peel.State) {
	b.seq++
	StateEventType.Publish(b.world, StateEvent{Seq: b.seq, State: st})
	if st.Selected != b.selected {
		SelectionEventType.Publish(b.world, SelectionEvent{Previous: b.selected, Current: st.Selected})
		b.selected = st.Selected
	}
}
