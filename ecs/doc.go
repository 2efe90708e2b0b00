// Package ecs provides ECS adapters for peel's scene store.
//
// [Bridge] forwards store notifications into a [Donburi] world as typed
// events, so ECS systems can react to scene installs, transform edits and
// selection changes without holding a reference to the store.
//
// Usage:
//
//	sub := ecs.Bridge(world, store)
//	defer sub.Unsubscribe()
//	ecs.SelectionEventType.Subscribe(world, onSelect)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
