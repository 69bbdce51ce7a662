package systems

import (
	"sync"

	"github.com/lixenwraith/keymaze/audio"
	"github.com/lixenwraith/keymaze/engine"
)

// AudioSystem turns game events into sound cues
// Cues queued by event handlers during a frame are played when the system steps
type AudioSystem struct {
	player audio.Player
	world  *engine.World

	mu      sync.Mutex
	pending []audio.Cue
}

// NewAudioSystem creates an audio system playing through player
func NewAudioSystem(player audio.Player) *AudioSystem {
	return &AudioSystem{
		player:  player,
		pending: make([]audio.Cue, 0, 8),
	}
}

// Attach subscribes to the events of world
// Step attaches on its own, but events published earlier in that first frame are missed
func (s *AudioSystem) Attach(world *engine.World) {
	if world == nil || world == s.world {
		return
	}
	s.world = world
	engine.Subscribe(world.Events, func(engine.KeySnagged) { s.queue(audio.CueSnag) })
	engine.Subscribe(world.Events, func(engine.DoorUnlocked) { s.queue(audio.CueUnlock) })
	engine.Subscribe(world.Events, func(engine.GoalReached) { s.queue(audio.CueWin) })
	engine.Subscribe(world.Events, func(engine.EntityFell) { s.queue(audio.CueFall) })
}

func (s *AudioSystem) queue(cue audio.Cue) {
	s.mu.Lock()
	s.pending = append(s.pending, cue)
	s.mu.Unlock()
}

// Step plays every queued cue
func (s *AudioSystem) Step(state *engine.State, dt uint64) {
	world := state.World()
	if world == nil {
		return
	}
	s.Attach(world)

	s.mu.Lock()
	cues := s.pending
	s.pending = make([]audio.Cue, 0, 8)
	s.mu.Unlock()

	for _, cue := range cues {
		s.player.Play(cue)
	}
}
