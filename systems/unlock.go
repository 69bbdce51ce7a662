package systems

import (
	"go.uber.org/zap"

	"github.com/lixenwraith/keymaze/engine"
)

// UnlockSystem opens doors touched by a matching key
type UnlockSystem struct{}

// NewUnlockSystem creates an unlock system
func NewUnlockSystem() *UnlockSystem { return &UnlockSystem{} }

// Step consumes each key colliding with the door it fits and deactivates that door
func (s *UnlockSystem) Step(state *engine.State, dt uint64) {
	world := state.World()
	if world == nil {
		return
	}

	for door, d := range engine.Join3(world.Doors, world.Locations, world.Collidables).All() {
		if !d.Third.Active {
			continue
		}
		for key, k := range engine.Join2(world.Keys, world.Locations).All() {
			if !k.First.Opens(d.First) || !k.Second.Collides(d.Second) {
				continue
			}
			world.Despawn(key)
			if c := world.Collidables.GetMut(door); c != nil {
				c.Active = false
			}
			zap.L().Debug("door unlocked", zap.String("letter", string(d.First.Letter)))
			engine.Publish(world.Events, engine.DoorUnlocked{Door: door, Key: key, Letter: d.First.Letter})
			break
		}
	}
}
