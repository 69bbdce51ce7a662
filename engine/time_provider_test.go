package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonotonicTimeProviderAdvances(t *testing.T) {
	provider := NewMonotonicTimeProvider()

	before := provider.Now()
	time.Sleep(5 * time.Millisecond)

	assert.GreaterOrEqual(t, provider.Now().Sub(before), 5*time.Millisecond)
}

func TestMockTimeProviderOnlyMovesWhenTold(t *testing.T) {
	start := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	mock := NewMockTimeProvider(start)
	assert.Equal(t, start, mock.Now())

	mock.Advance(250 * time.Millisecond)
	assert.Equal(t, start.Add(250*time.Millisecond), mock.Now())

	jump := start.Add(time.Hour)
	mock.SetTime(jump)
	assert.Equal(t, jump, mock.Now())
}

func TestFrameClockTick(t *testing.T) {
	mock := NewMockTimeProvider(time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC))
	clock := NewFrameClock(mock)

	steps := []struct {
		advance time.Duration
		want    uint64
	}{
		{0, 0},
		{16 * time.Millisecond, 16},
		{600 * time.Microsecond, 0},
		{600 * time.Microsecond, 1},
		{2 * time.Second, 2000},
	}
	for i, s := range steps {
		mock.Advance(s.advance)
		assert.Equal(t, s.want, clock.Tick(), "step %d", i)
	}
}
