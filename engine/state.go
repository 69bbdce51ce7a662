package engine

import "fmt"

// DoneLingerMs is how long the Done phase lasts before the game asks to close
const DoneLingerMs uint64 = 3500

// Phase is the variant of the global game state
type Phase uint8

const (
	PhasePlaying Phase = iota // The player is solving the maze
	PhaseDone                 // The goal was reached; the world lingers on screen
	PhaseClose                // Terminal; the world has been dropped
)

func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhaseDone:
		return "done"
	case PhaseClose:
		return "close"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// validTransitions lists the phases reachable from each phase
var validTransitions = map[Phase][]Phase{
	PhasePlaying: {PhaseDone, PhaseClose},
	PhaseDone:    {PhaseClose},
}

// CanTransition checks if a phase transition is valid
func CanTransition(from, to Phase) bool {
	for _, phase := range validTransitions[from] {
		if phase == to {
			return true
		}
	}
	return false
}

// State is the global game state: Playing(world), Done(world, elapsed) or Close
// It is owned by the frame loop and passed to every system by pointer
type State struct {
	phase  Phase
	world  *World
	doneMs uint64
}

// NewPlaying starts a game on world
func NewPlaying(world *World) *State {
	return &State{phase: PhasePlaying, world: world}
}

// Phase returns the current variant
func (s *State) Phase() Phase {
	return s.phase
}

// World returns the world while Playing or Done, nil once closed
func (s *State) World() *World {
	return s.world
}

// Elapsed returns the milliseconds spent in Done
func (s *State) Elapsed() uint64 {
	return s.doneMs
}

// Finish moves Playing(world) to Done(world, 0)
// Returns false, changing nothing, from any other phase
func (s *State) Finish() bool {
	if !s.transition(PhaseDone) {
		return false
	}
	s.doneMs = 0
	return true
}

// AddDoneTime accumulates elapsed milliseconds while Done; ignored otherwise
func (s *State) AddDoneTime(dt uint64) {
	if s.phase == PhaseDone {
		s.doneMs += dt
	}
}

// Close moves to the terminal phase and drops the world
// Closing twice is harmless
func (s *State) Close() {
	if s.transition(PhaseClose) {
		s.world = nil
		s.doneMs = 0
	}
}

// ShouldClose reports whether the frame loop should stop
func (s *State) ShouldClose() bool {
	switch s.phase {
	case PhaseClose:
		return true
	case PhaseDone:
		return s.doneMs > DoneLingerMs
	default:
		return false
	}
}

func (s *State) transition(to Phase) bool {
	if !CanTransition(s.phase, to) {
		return false
	}
	from := s.phase
	s.phase = to
	if s.world != nil {
		Publish(s.world.Events, StateChanged{From: from, To: to})
	}
	return true
}
