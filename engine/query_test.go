package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lixenwraith/keymaze/components"
)

func TestQueryIntersectsStores(t *testing.T) {
	w := NewWorld()

	loose := w.Spawn(components.At(1, 0, 1), components.KeyComponent{Letter: 'a'})
	floor := w.Spawn(components.At(2, 0, 2))
	w.Spawn(components.KeyComponent{Letter: 'b'})
	held := w.Spawn(components.At(3, 0, 3), components.KeyComponent{Letter: 'c', Held: true})

	assert.Equal(t, []Entity{loose, held}, Join2(w.Locations, w.Keys).Entities())
	assert.Equal(t, []Entity{loose, floor, held}, Join1(w.Locations).Entities())
	assert.Empty(t, Join2(w.Locations, w.Doors).Entities())
	assert.Empty(t, query{}.entities())
}

func TestQueryOrderSurvivesSwapRemove(t *testing.T) {
	w := NewWorld()
	var es []Entity
	for i := 0; i < 5; i++ {
		es = append(es, w.Spawn(components.At(float32(i), 0, 0)))
	}
	w.Despawn(es[1])

	assert.Equal(t, []Entity{es[0], es[2], es[3], es[4]}, Join1(w.Locations).Entities())
}
