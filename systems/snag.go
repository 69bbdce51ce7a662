package systems

import (
	"go.uber.org/zap"

	"github.com/lixenwraith/keymaze/engine"
)

// SnagSystem picks up keys the camera walks into
type SnagSystem struct{}

// NewSnagSystem creates a snag system
func NewSnagSystem() *SnagSystem { return &SnagSystem{} }

// Step marks colliding keys as held
func (s *SnagSystem) Step(state *engine.State, dt uint64) {
	world := state.World()
	if world == nil {
		return
	}
	_, cam, ok := camera(world)
	if !ok {
		return
	}

	for e, p := range engine.Join2(world.Keys, world.Locations).All() {
		if p.First.Held || !cam.Collides(p.Second) {
			continue
		}
		key := world.Keys.GetMut(e)
		if key == nil {
			continue
		}
		key.Held = true
		zap.L().Debug("key snagged", zap.String("letter", string(key.Letter)))
		engine.Publish(world.Events, engine.KeySnagged{Key: e, Letter: key.Letter})
	}
}
