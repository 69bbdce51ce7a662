package systems

import (
	"github.com/lixenwraith/keymaze/engine"
)

// HoldSystem keeps carried keys floating in front of the camera
type HoldSystem struct{}

// NewHoldSystem creates a hold system
func NewHoldSystem() *HoldSystem { return &HoldSystem{} }

// Step moves every held key to the camera
func (s *HoldSystem) Step(state *engine.State, dt uint64) {
	world := state.World()
	if world == nil {
		return
	}
	_, cam, ok := camera(world)
	if !ok {
		return
	}

	target := cam.Position.Add(cam.Front().Mul(HoldDistance))
	target[1] = HoldHeight

	for e, p := range engine.Join2(world.Keys, world.Locations).All() {
		if !p.First.Held {
			continue
		}
		if loc := world.Locations.GetMut(e); loc != nil {
			loc.Position = target
		}
	}
}
