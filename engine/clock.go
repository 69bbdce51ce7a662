package engine

import (
	"context"
	"time"
)

// FrameClock measures whole milliseconds between frames
// Sub-millisecond remainders carry over to the next frame
type FrameClock struct {
	time TimeProvider
	last time.Time
}

// NewFrameClock starts a clock at the provider's current time
func NewFrameClock(tp TimeProvider) *FrameClock {
	return &FrameClock{time: tp, last: tp.Now()}
}

// Reset restarts measurement from now
func (c *FrameClock) Reset() {
	c.last = c.time.Now()
}

// Tick returns the milliseconds since the previous tick
func (c *FrameClock) Tick() uint64 {
	now := c.time.Now()
	elapsed := now.Sub(c.last)
	if elapsed <= 0 {
		return 0
	}
	ms := elapsed / time.Millisecond
	c.last = c.last.Add(ms * time.Millisecond)
	return uint64(ms)
}

// Run steps the pipeline once per interval until the state should close or ctx ends
// Cancelling ctx closes the state
func Run(ctx context.Context, state *State, pipeline *Pipeline, clock *FrameClock, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	clock.Reset()
	for !state.ShouldClose() {
		select {
		case <-ctx.Done():
			state.Close()
			return ctx.Err()
		case <-ticker.C:
			pipeline.Step(state, clock.Tick())
		}
	}
	return nil
}
