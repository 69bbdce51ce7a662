package engine

// EntityBuilder assembles an entity one typed store at a time
// The id is reserved when the builder is created, so the entity is alive before Build
//
//	key := With(With(w.NewEntity(), w.Locations, components.At(1, 0, 2)),
//		w.Keys, components.KeyComponent{Letter: 'a'}).Build()
type EntityBuilder struct {
	world  *World
	entity Entity
	done   bool
}

// NewEntity reserves an id and returns a builder for it
func (w *World) NewEntity() *EntityBuilder {
	return &EntityBuilder{world: w, entity: w.reserveEntityID()}
}

// With stores component on the entity under construction
// The store fixes the component type, so a mismatch fails to compile
func With[T any](b *EntityBuilder, store *Store[T], component T) *EntityBuilder {
	if b.done {
		panic("engine: With called on a finished entity builder")
	}
	store.Set(b.entity, component)
	return b
}

// Build finishes the builder and returns the entity
func (b *EntityBuilder) Build() Entity {
	b.done = true
	return b.entity
}
