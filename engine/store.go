package engine

import (
	"sync"
)

// Store is a generic container for a specific component type T
// Uses sparse set pattern: dense values and entities, index maps entity to slot
type Store[T any] struct {
	mu       sync.RWMutex
	index    map[Entity]int
	dense    []T
	entities []Entity // entities[i] owns dense[i]
}

// NewStore creates a new component store for type T
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		index:    make(map[Entity]int),
		dense:    make([]T, 0, 64),
		entities: make([]Entity, 0, 64),
	}
}

// Set inserts or updates a component for an entity
func (s *Store[T]) Set(e Entity, val T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, exists := s.index[e]; exists {
		s.dense[i] = val
		return
	}
	s.index[e] = len(s.dense)
	s.dense = append(s.dense, val)
	s.entities = append(s.entities, e)
}

// Get retrieves a copy of the component for an entity
func (s *Store[T]) Get(e Entity) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[e]
	if !ok {
		var zero T
		return zero, false
	}
	return s.dense[i], true
}

// GetMut returns a pointer to the stored component, nil if absent
// The pointer is invalidated by the next Set of a new entity or Remove on this store
func (s *Store[T]) GetMut(e Entity) *T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[e]
	if !ok {
		return nil
	}
	return &s.dense[i]
}

// Remove deletes the component of an entity, reporting whether it was present
// The last slot is swapped into the hole
func (s *Store[T]) Remove(e Entity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, exists := s.index[e]
	if !exists {
		return false
	}
	last := len(s.dense) - 1
	if i != last {
		s.dense[i] = s.dense[last]
		s.entities[i] = s.entities[last]
		s.index[s.entities[i]] = i
	}
	var zero T
	s.dense[last] = zero
	s.dense = s.dense[:last]
	s.entities = s.entities[:last]
	delete(s.index, e)
	return true
}

// Has checks if entity has this component
func (s *Store[T]) Has(e Entity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[e]
	return ok
}

// All returns a snapshot of all entities with this component type
func (s *Store[T]) All() []Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Entity, len(s.entities))
	copy(result, s.entities)
	return result
}

// Count returns number of entities with this component
func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}
