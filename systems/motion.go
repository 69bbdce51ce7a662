package systems

import (
	"github.com/lixenwraith/keymaze/engine"
)

// SinkingDoorSystem lowers opened doors into the floor
type SinkingDoorSystem struct{}

// NewSinkingDoorSystem creates a sinking door system
func NewSinkingDoorSystem() *SinkingDoorSystem { return &SinkingDoorSystem{} }

// Step sinks every door whose collidable is inactive
func (s *SinkingDoorSystem) Step(state *engine.State, dt uint64) {
	world := state.World()
	if world == nil {
		return
	}
	drop := float32(dt) / SinkPeriodMs
	for e, t := range engine.Join3(world.Doors, world.Collidables, world.Locations).All() {
		if t.Second.Active {
			continue
		}
		if loc := world.Locations.GetMut(e); loc != nil {
			loc.Position[1] -= drop
		}
	}
}

// SpinningKeySystem turns every key about the vertical axis
type SpinningKeySystem struct{}

// NewSpinningKeySystem creates a spinning key system
func NewSpinningKeySystem() *SpinningKeySystem { return &SpinningKeySystem{} }

// Step adds dt/5 degrees of yaw to each key
func (s *SpinningKeySystem) Step(state *engine.State, dt uint64) {
	world := state.World()
	if world == nil {
		return
	}
	turn := float32(dt) / SpinPeriodMs
	for e := range engine.Join2(world.Keys, world.Locations).All() {
		if loc := world.Locations.GetMut(e); loc != nil {
			*loc = loc.RotateBy(0, turn)
		}
	}
}

// TheFloorIsLavaSystem removes anything that sank below the floor
type TheFloorIsLavaSystem struct{}

// NewTheFloorIsLavaSystem creates a lava system
func NewTheFloorIsLavaSystem() *TheFloorIsLavaSystem { return &TheFloorIsLavaSystem{} }

// Step despawns every entity below LavaLevel
func (s *TheFloorIsLavaSystem) Step(state *engine.State, dt uint64) {
	world := state.World()
	if world == nil {
		return
	}
	for e, loc := range engine.Join1(world.Locations).All() {
		height := loc.Position[1]
		if height < LavaLevel && world.Despawn(e) {
			engine.Publish(world.Events, engine.EntityFell{Entity: e, Height: height})
		}
	}
}
