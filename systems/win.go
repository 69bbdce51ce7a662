package systems

import (
	"go.uber.org/zap"

	"github.com/lixenwraith/keymaze/engine"
)

// WinSystem ends the level when the camera reaches the goal
type WinSystem struct {
	warned map[string]bool
}

// NewWinSystem creates a win system
func NewWinSystem() *WinSystem {
	return &WinSystem{warned: make(map[string]bool)}
}

// Step checks the goal while Playing and counts linger time while Done
func (s *WinSystem) Step(state *engine.State, dt uint64) {
	switch state.Phase() {
	case engine.PhaseDone:
		state.AddDoneTime(dt)
		return
	case engine.PhasePlaying:
	default:
		return
	}
	world := state.World()

	_, cam, ok := camera(world)
	if !ok {
		s.warn("camera")
		return
	}
	goalEntity, goalLoc, ok := goal(world)
	if !ok {
		s.warn("goal")
		return
	}
	decals := world.Decals.All()
	if len(decals) == 0 {
		s.warn("decal")
		return
	}

	if !cam.Collides(goalLoc) {
		return
	}

	world.Despawn(goalEntity)
	for _, e := range decals {
		if d := world.Decals.GetMut(e); d != nil {
			d.Enabled = true
		}
	}
	zap.L().Info("goal reached")
	engine.Publish(world.Events, engine.GoalReached{Goal: goalEntity})
	state.Finish()
}

// warn logs each kind of missing entity once
func (s *WinSystem) warn(what string) {
	if s.warned[what] {
		return
	}
	s.warned[what] = true
	zap.L().Warn("win check skipped, entity missing", zap.String("entity", what))
}
