package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepFunc func(state *State, dt uint64)

func (f stepFunc) Step(state *State, dt uint64) { f(state, dt) }

func TestPipelineOrderAndTransitions(t *testing.T) {
	var order []string
	var seenByLast Phase

	p := NewPipeline(
		stepFunc(func(s *State, dt uint64) { order = append(order, "first") }),
		stepFunc(func(s *State, dt uint64) {
			order = append(order, "finisher")
			s.Finish()
		}),
		stepFunc(func(s *State, dt uint64) {
			order = append(order, "last")
			seenByLast = s.Phase()
		}),
	)

	s := NewPlaying(NewWorld())
	p.Step(s, 16)

	assert.Equal(t, []string{"first", "finisher", "last"}, order)
	assert.Equal(t, PhaseDone, seenByLast, "later systems see the new phase in the same frame")
}

func TestRunStopsWhenStateCloses(t *testing.T) {
	frames := 0
	p := NewPipeline(stepFunc(func(s *State, dt uint64) {
		frames++
		if frames == 3 {
			s.Close()
		}
	}))

	s := NewPlaying(NewWorld())
	err := Run(context.Background(), s, p, NewFrameClock(NewMonotonicTimeProvider()), time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, frames)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewPlaying(NewWorld())
	err := Run(ctx, s, NewPipeline(), NewFrameClock(NewMonotonicTimeProvider()), time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, PhaseClose, s.Phase())
}
