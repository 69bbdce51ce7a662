package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/keymaze/components"
)

func TestParallelEachVisitsEveryMatch(t *testing.T) {
	w := NewWorld()
	want := make(map[Entity]float32)
	for i := 0; i < 200; i++ {
		e := w.Spawn(components.At(float32(i), 0, 0), components.CollidableComponent{Active: i%2 == 0})
		want[e] = float32(i)
	}
	w.Spawn(components.At(-1, 0, 0)) // no collidable

	var mu sync.Mutex
	got := make(map[Entity]float32)
	err := Join2(w.Locations, w.Collidables).ParallelEach(context.Background(),
		func(e Entity, p Pair[components.LocationComponent, components.CollidableComponent]) error {
			mu.Lock()
			defer mu.Unlock()
			got[e] = p.First.Position[0]
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParallelEachStopsOnError(t *testing.T) {
	w := NewWorld()
	for i := 0; i < 100; i++ {
		w.Spawn(components.At(float32(i), 0, 0))
	}
	stop := errors.New("found")

	err := Join1(w.Locations).ParallelEach(context.Background(), func(e Entity, l components.LocationComponent) error {
		if l.Position[0] == 42 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
}

func TestParallelEachCancelled(t *testing.T) {
	w := NewWorld()
	w.Spawn(components.At(0, 0, 0), components.KeyComponent{}, components.CameraComponent{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	err := Join3(w.Locations, w.Keys, w.Cameras).ParallelEach(ctx,
		func(Entity, Triple[components.LocationComponent, components.KeyComponent, components.CameraComponent]) error {
			calls.Add(1)
			return nil
		})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}

func TestParallelEachEmpty(t *testing.T) {
	w := NewWorld()
	err := Join1(w.Goals).ParallelEach(context.Background(), func(Entity, components.GoalComponent) error {
		t.Error("unexpected call")
		return nil
	})
	assert.NoError(t, err)
}
