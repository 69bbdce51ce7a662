package engine

import (
	"fmt"
	"sync"

	"github.com/lixenwraith/keymaze/components"
)

// Entity is a unique identifier for an entity
// Issued from 1 upwards and never reused within a World
type Entity uint64

// Component is any value accepted by Spawn
type Component any

// World contains all entities and their components using typed stores
type World struct {
	mu           sync.RWMutex
	nextEntityID Entity
	alive        map[Entity]struct{}

	// Component Stores (Public for direct system access)
	Locations   *Store[components.LocationComponent]
	Cameras     *Store[components.CameraComponent]
	Collidables *Store[components.CollidableComponent]
	Doors       *Store[components.DoorComponent]
	Keys        *Store[components.KeyComponent]
	Goals       *Store[components.GoalComponent]
	Renderables *Store[components.RenderComponent]
	Decals      *Store[components.DecalComponent]

	// Events carries notifications between systems and frontends
	Events *EventBus

	// Lifecycle registry - all stores implement AnyStore for uniform cleanup
	allStores []AnyStore
}

// NewWorld creates an empty world with all component stores initialized
func NewWorld() *World {
	w := &World{
		nextEntityID: 1,
		alive:        make(map[Entity]struct{}),
		Locations:    NewStore[components.LocationComponent](),
		Cameras:      NewStore[components.CameraComponent](),
		Collidables:  NewStore[components.CollidableComponent](),
		Doors:        NewStore[components.DoorComponent](),
		Keys:         NewStore[components.KeyComponent](),
		Goals:        NewStore[components.GoalComponent](),
		Renderables:  NewStore[components.RenderComponent](),
		Decals:       NewStore[components.DecalComponent](),
		Events:       NewEventBus(),
	}

	w.allStores = []AnyStore{
		w.Locations,
		w.Cameras,
		w.Collidables,
		w.Doors,
		w.Keys,
		w.Goals,
		w.Renderables,
		w.Decals,
	}

	return w
}

// Spawn creates an entity holding the given components
// A later component of the same type replaces an earlier one
// Panics on a type that has no store, before any id is taken
func (w *World) Spawn(comps ...Component) Entity {
	for _, c := range comps {
		if !hasStore(c) {
			panic(fmt.Sprintf("no component store for %T", c))
		}
	}
	e := w.reserveEntityID()
	for _, c := range comps {
		w.attach(e, c)
	}
	return e
}

func hasStore(c Component) bool {
	switch c.(type) {
	case components.LocationComponent, components.CameraComponent, components.CollidableComponent,
		components.DoorComponent, components.KeyComponent, components.GoalComponent,
		components.RenderComponent, components.DecalComponent:
		return true
	default:
		return false
	}
}

func (w *World) attach(e Entity, c Component) {
	switch v := c.(type) {
	case components.LocationComponent:
		w.Locations.Set(e, v)
	case components.CameraComponent:
		w.Cameras.Set(e, v)
	case components.CollidableComponent:
		w.Collidables.Set(e, v)
	case components.DoorComponent:
		w.Doors.Set(e, v)
	case components.KeyComponent:
		w.Keys.Set(e, v)
	case components.GoalComponent:
		w.Goals.Set(e, v)
	case components.RenderComponent:
		w.Renderables.Set(e, v)
	case components.DecalComponent:
		w.Decals.Set(e, v)
	default:
		panic(fmt.Sprintf("no component store for %T", c))
	}
}

// Despawn removes an entity and all of its components
// Returns false and changes nothing if the entity is not alive
func (w *World) Despawn(e Entity) bool {
	w.mu.Lock()
	if _, ok := w.alive[e]; !ok {
		w.mu.Unlock()
		return false
	}
	delete(w.alive, e)
	w.mu.Unlock()

	for _, store := range w.allStores {
		store.Remove(e)
	}
	return true
}

// Alive reports whether e has been spawned and not despawned
func (w *World) Alive(e Entity) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.alive[e]
	return ok
}

// EntityCount returns the number of live entities
func (w *World) EntityCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.alive)
}

// reserveEntityID allocates a new entity ID from the world's counter and marks it alive
func (w *World) reserveEntityID() Entity {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextEntityID
	w.nextEntityID++
	w.alive[id] = struct{}{}
	return id
}
