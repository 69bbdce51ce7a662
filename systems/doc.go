// Package systems holds the per-frame game rules.
//
// Every system implements engine.System and acts only while the state still
// holds a world, i.e. while Playing or Done. The launcher runs them in this
// fixed order:
//
//	Control, Render, Hold, SinkingDoor, Snag, SpinningKey, TheFloorIsLava, Unlock, Win, Audio
package systems

import (
	"github.com/lixenwraith/keymaze/components"
	"github.com/lixenwraith/keymaze/engine"
)

const (
	// Distance held keys float in front of the camera
	HoldDistance float32 = 0.3
	// Height held keys float at
	HoldHeight float32 = -0.2
	// Milliseconds per unit an open door sinks
	SinkPeriodMs float32 = 2500
	// Milliseconds per degree a key spins
	SpinPeriodMs float32 = 5
	// Entities below this height are removed
	LavaLevel float32 = -1
)

// camera returns the first entity holding both a camera and a location
func camera(w *engine.World) (engine.Entity, components.LocationComponent, bool) {
	for e, p := range engine.Join2(w.Cameras, w.Locations).All() {
		return e, p.Second, true
	}
	return 0, components.LocationComponent{}, false
}

// goal returns the first entity holding both a goal and a location
func goal(w *engine.World) (engine.Entity, components.LocationComponent, bool) {
	for e, p := range engine.Join2(w.Goals, w.Locations).All() {
		return e, p.Second, true
	}
	return 0, components.LocationComponent{}, false
}
