// Package audio plays short synthesized cues for game events.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/pkg/errors"
)

const (
	sampleRate = beep.SampleRate(48000)
)

// Cue identifies one sound effect
type Cue uint8

const (
	CueSnag   Cue = iota // Key picked up
	CueUnlock            // Door opened
	CueWin               // Goal reached
	CueFall              // Something dropped into the lava
)

func (c Cue) String() string {
	switch c {
	case CueSnag:
		return "snag"
	case CueUnlock:
		return "unlock"
	case CueWin:
		return "win"
	case CueFall:
		return "fall"
	default:
		return "unknown"
	}
}

// Player plays cues
type Player interface {
	Play(cue Cue)
}

// SoundManager manages all game audio
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      *effects.Volume
	initialized bool
}

// NewSoundManager creates a sound manager at full volume
func NewSoundManager() *SoundManager {
	sm := &SoundManager{
		mixer: &beep.Mixer{},
	}
	sm.volume = &effects.Volume{Streamer: sm.mixer, Base: 2}
	return sm
}

// Initialize sets up the audio device
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	// Initialize speaker with sample rate and buffer size
	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return errors.Wrap(err, "couldn't open audio device")
	}

	speaker.Play(sm.volume)
	sm.initialized = true
	return nil
}

// Cleanup stops all sounds
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	sm.initialized = false
}

// SetVolume changes the master volume, linear in [0, 1]; 0 mutes
func (sm *SoundManager) SetVolume(volume float64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		speaker.Lock()
		defer speaker.Unlock()
	}
	sm.setVolume(volume)
}

func (sm *SoundManager) setVolume(volume float64) {
	if volume <= 0 {
		sm.volume.Silent = true
		return
	}
	sm.volume.Silent = false
	sm.volume.Volume = math.Log2(math.Min(volume, 1))
}

// Play starts a cue; a no-op before Initialize
func (sm *SoundManager) Play(cue Cue) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Add(CueStreamer(cue))
	speaker.Unlock()
}

// CueStreamer returns a finite streamer for cue
func CueStreamer(cue Cue) beep.Streamer {
	switch cue {
	case CueSnag:
		return beep.Take(sampleRate.N(time.Millisecond*120), NewToneGenerator(sampleRate, 880, 25))
	case CueUnlock:
		return beep.Take(sampleRate.N(time.Millisecond*400), NewSweepGenerator(sampleRate, 220, 660, time.Millisecond*400))
	case CueWin:
		notes := []float64{523.25, 659.25, 783.99, 1046.50}
		parts := make([]beep.Streamer, 0, len(notes))
		for _, f := range notes {
			parts = append(parts, beep.Take(sampleRate.N(time.Millisecond*150), NewToneGenerator(sampleRate, f, 8)))
		}
		return beep.Seq(parts...)
	case CueFall:
		return beep.Take(sampleRate.N(time.Millisecond*300), NewDecayGenerator(sampleRate))
	default:
		return beep.Silence(0)
	}
}

// ToneGenerator generates a sine tone with an exponential decay
type ToneGenerator struct {
	sr    beep.SampleRate
	freq  float64
	decay float64
	pos   int
}

// NewToneGenerator creates a tone generator; decay is the envelope rate per second
func NewToneGenerator(sr beep.SampleRate, freq, decay float64) *ToneGenerator {
	return &ToneGenerator{sr: sr, freq: freq, decay: decay}
}

func (g *ToneGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		attack := math.Min(t/0.005, 1.0)
		sample := 0.3 * attack * math.Exp(-t*g.decay) * math.Sin(2*math.Pi*g.freq*t)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ToneGenerator) Err() error {
	return nil
}

// SweepGenerator glides between two frequencies
type SweepGenerator struct {
	sr       beep.SampleRate
	from, to float64
	samples  int
	phase    float64
	pos      int
}

// NewSweepGenerator creates a sweep from one frequency to another over d
func NewSweepGenerator(sr beep.SampleRate, from, to float64, d time.Duration) *SweepGenerator {
	return &SweepGenerator{
		sr:      sr,
		from:    from,
		to:      to,
		samples: max(sr.N(d), 1),
	}
}

func (g *SweepGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		progress := math.Min(float64(g.pos)/float64(g.samples), 1.0)
		freq := g.from + (g.to-g.from)*progress

		// Accumulated phase keeps the glide free of clicks
		g.phase += freq / float64(g.sr)
		g.phase -= math.Floor(g.phase)

		envelope := math.Sin(progress * math.Pi)
		sample := 0.25 * envelope * math.Sin(2*math.Pi*g.phase)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *SweepGenerator) Err() error {
	return nil
}

// DecayGenerator generates a breaking/crackling sound
type DecayGenerator struct {
	sr   beep.SampleRate
	pos  int
	seed int64
}

// NewDecayGenerator creates a decay sound generator
func NewDecayGenerator(sr beep.SampleRate) *DecayGenerator {
	return &DecayGenerator{
		sr:   sr,
		seed: time.Now().UnixNano(),
	}
}

func (g *DecayGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		// Envelope - quick attack, slower decay
		envelope := math.Exp(-t * 8)

		// Noise with low-pass filtering for crackling
		g.seed = (g.seed*1103515245 + 12345) & 0x7fffffff
		noise := float64(g.seed)/float64(0x7fffffff)*2 - 1

		// Mix with low rumble
		rumble := 0.3 * math.Sin(2*math.Pi*80*t)

		sample := envelope * (0.25*noise + rumble)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *DecayGenerator) Err() error {
	return nil
}
