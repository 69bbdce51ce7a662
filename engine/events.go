// Package engine provides the entity/component core of keymaze: typed component
// stores, the World, views, the system pipeline and the global game state.
//
// Event System
//
// Systems do not call each other. When something noteworthy happens inside a
// frame (a key is picked up, a door opens, the goal is reached) the system that
// caused it publishes a typed event on the World's EventBus. Frontends such as
// the audio cue player and the HUD subscribe to the event types they care about.
//
// Delivery is synchronous: Publish calls every handler for that type, in
// subscription order, before returning. Handlers run on the frame loop goroutine
// and must not block; handlers that need to do slow work queue it and drain the
// queue on their own Step.
//
// Usage Example:
//
//	engine.Subscribe(world.Events, func(ev engine.DoorUnlocked) {
//	    cues.Play(audio.CueUnlock)
//	})
//
//	engine.Publish(world.Events, engine.DoorUnlocked{Door: door, Key: key, Letter: 'A'})
package engine

import (
	"reflect"
	"sync"
)

// KeySnagged is published when the player picks up a key
type KeySnagged struct {
	Key    Entity
	Letter rune
}

// DoorUnlocked is published when a held key opens a door; the key is already despawned
type DoorUnlocked struct {
	Door   Entity
	Key    Entity
	Letter rune // Door letter
}

// GoalReached is published when the camera touches the goal
type GoalReached struct {
	Goal Entity
}

// EntityFell is published for every entity removed for dropping below the floor
type EntityFell struct {
	Entity Entity
	Height float32
}

// StateChanged is published on every game phase transition
type StateChanged struct {
	From Phase
	To   Phase
}

// EventBus is a type-safe synchronous publish/subscribe hub
// Event types are identified by their Go type
type EventBus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type][]any
}

// NewEventBus creates an empty bus
func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[reflect.Type][]any)}
}

// Subscribe registers handler for events of type T
func Subscribe[T any](bus *EventBus, handler func(T)) {
	t := reflect.TypeFor[T]()
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[t] = append(bus.handlers[t], handler)
}

// Publish delivers event to every handler subscribed to T
// A nil bus drops the event
func Publish[T any](bus *EventBus, event T) {
	if bus == nil {
		return
	}
	t := reflect.TypeFor[T]()
	bus.mu.RLock()
	hs := bus.handlers[t]
	bus.mu.RUnlock()

	for _, h := range hs {
		h.(func(T))(event)
	}
}
