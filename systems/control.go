package systems

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lixenwraith/keymaze/components"
	"github.com/lixenwraith/keymaze/engine"
	"github.com/lixenwraith/keymaze/input"
)

// errBlocked stops the collision scan at the first hit
var errBlocked = errors.New("blocked")

// ControlOptions tunes how input maps to camera motion
type ControlOptions struct {
	MoveDivisor float32 // Movement intent is divided by this per frame
	LookDivisor float32 // Pointer motion is divided by this to get degrees
}

// DefaultControlOptions returns the stock tuning
func DefaultControlOptions() ControlOptions {
	return ControlOptions{MoveDivisor: 20, LookDivisor: 10}
}

// ControlSystem moves and turns the camera from player input
type ControlSystem struct {
	source input.Source
	opts   ControlOptions

	held   map[input.Key]bool
	events []input.Event
	warned bool
}

// NewControlSystem creates a control system reading from source
func NewControlSystem(source input.Source, opts ControlOptions) *ControlSystem {
	if opts.MoveDivisor == 0 {
		opts.MoveDivisor = DefaultControlOptions().MoveDivisor
	}
	if opts.LookDivisor == 0 {
		opts.LookDivisor = DefaultControlOptions().LookDivisor
	}
	return &ControlSystem{
		source: source,
		opts:   opts,
		held:   make(map[input.Key]bool),
		events: make([]input.Event, 0, 32),
	}
}

// Step drains input and applies it to the camera
// Input arriving after Close is drained and dropped
func (s *ControlSystem) Step(state *engine.State, dt uint64) {
	s.events = s.source.Drain(s.events[:0])
	world := state.World()
	if world == nil {
		return
	}

	var dx, dy float32
	for _, ev := range s.events {
		switch ev.Kind {
		case input.KindCloseRequest:
			state.Close()
			return
		case input.KindKeyPress:
			if ev.Key == input.KeyEscape {
				state.Close()
				return
			}
			s.held[ev.Key] = true
		case input.KindKeyRelease:
			delete(s.held, ev.Key)
		case input.KindPointerMotion:
			dx += ev.DX
			dy += ev.DY
		}
	}

	cam, loc, ok := camera(world)
	if !ok {
		if !s.warned {
			zap.L().Warn("no camera in world, ignoring input")
			s.warned = true
		}
		return
	}
	s.warned = false

	forward, strafe := s.intent()
	if forward != 0 || strafe != 0 {
		moved := loc.MoveBy(forward/s.opts.MoveDivisor, strafe/s.opts.MoveDivisor)
		if !blocked(world, cam, moved) {
			loc = moved
		}
	}
	loc = loc.RotateBy(dy/s.opts.LookDivisor, -dx/s.opts.LookDivisor)

	if m := world.Locations.GetMut(cam); m != nil {
		*m = loc
	}
}

// intent returns forward and strafe in [-1, 1], normalized when both are set
func (s *ControlSystem) intent() (forward, strafe float32) {
	if s.held[input.KeyForward] {
		forward++
	}
	if s.held[input.KeyBack] {
		forward--
	}
	if s.held[input.KeyStrafeRight] {
		strafe++
	}
	if s.held[input.KeyStrafeLeft] {
		strafe--
	}
	if forward != 0 && strafe != 0 {
		forward *= math.Sqrt2 / 2
		strafe *= math.Sqrt2 / 2
	}
	return forward, strafe
}

// blocked reports whether loc overlaps any active collidable other than self
func blocked(w *engine.World, self engine.Entity, loc components.LocationComponent) bool {
	err := engine.Join2(w.Locations, w.Collidables).ParallelEach(context.Background(),
		func(e engine.Entity, p engine.Pair[components.LocationComponent, components.CollidableComponent]) error {
			if e != self && p.Second.Active && loc.Collides(p.First) {
				return errBlocked
			}
			return nil
		})
	if err != nil && !errors.Is(err, errBlocked) {
		zap.L().Error("collision scan failed", zap.Error(err))
		return true
	}
	return err != nil
}
