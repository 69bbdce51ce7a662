package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
)

// TestSoundManagerGracefulDegradation verifies audio operations don't panic when not initialized
func TestSoundManagerGracefulDegradation(t *testing.T) {
	sm := NewSoundManager()
	sm.SetVolume(0.5)

	assert.NotPanics(t, func() {
		sm.Play(CueSnag)
		sm.Play(CueWin)
		sm.SetVolume(0)
		sm.Cleanup()
	})
}

// TestSoundManagerInitialization verifies sound manager can be initialized and cleaned up
func TestSoundManagerInitialization(t *testing.T) {
	sm := NewSoundManager()

	// Speaker initialization may fail in CI/test environments without audio devices
	if err := sm.Initialize(); err != nil {
		t.Logf("Sound initialization failed (expected in test environment): %v", err)
		return
	}
	assert.NoError(t, sm.Initialize(), "second initialization is a no-op")
	sm.Play(CueUnlock)
	sm.Cleanup()
}

func TestVolumeMapping(t *testing.T) {
	sm := NewSoundManager()
	assert.False(t, sm.volume.Silent, "starts at full volume")
	assert.InDelta(t, 0, sm.volume.Volume, 1e-9)

	sm.SetVolume(0)
	assert.True(t, sm.volume.Silent)

	sm.SetVolume(1)
	assert.False(t, sm.volume.Silent)
	assert.InDelta(t, 0, sm.volume.Volume, 1e-9)

	sm.SetVolume(0.25)
	assert.InDelta(t, -2, sm.volume.Volume, 1e-9)

	sm.SetVolume(3)
	assert.InDelta(t, 0, sm.volume.Volume, 1e-9, "clamped to full volume")
}

// drain streams s to completion and returns the sample count and peak amplitude
func drain(s beep.Streamer) (total int, peak float64) {
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for _, smp := range buf[:n] {
			peak = math.Max(peak, math.Abs(smp[0]))
		}
		total += n
		if !ok {
			return total, peak
		}
	}
}

func TestCueStreamersAreFiniteAndAudible(t *testing.T) {
	tests := []struct {
		cue  Cue
		want time.Duration
	}{
		{CueSnag, 120 * time.Millisecond},
		{CueUnlock, 400 * time.Millisecond},
		{CueWin, 600 * time.Millisecond},
		{CueFall, 300 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.cue.String(), func(t *testing.T) {
			total, peak := drain(CueStreamer(tt.cue))
			assert.Equal(t, sampleRate.N(tt.want), total)
			assert.Greater(t, peak, 0.01)
			assert.LessOrEqual(t, peak, 1.0)
		})
	}
}
