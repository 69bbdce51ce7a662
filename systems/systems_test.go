package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/keymaze/components"
	"github.com/lixenwraith/keymaze/engine"
	"github.com/lixenwraith/keymaze/input"
	"github.com/lixenwraith/keymaze/level"
)

const frameMs = 16

// gamePipeline mirrors the launcher order without the terminal frontends
func gamePipeline(src input.Source) *engine.Pipeline {
	return engine.NewPipeline(
		NewControlSystem(src, DefaultControlOptions()),
		NewHoldSystem(),
		NewSinkingDoorSystem(),
		NewSnagSystem(),
		NewSpinningKeySystem(),
		NewTheFloorIsLavaSystem(),
		NewUnlockSystem(),
		NewWinSystem(),
	)
}

func spawnCamera(w *engine.World, x, z, yaw float32) engine.Entity {
	loc := components.At(x, 0, z).WithScale(level.CameraScale)
	loc.Rotation[1] = yaw
	return w.Spawn(loc, components.CameraComponent{})
}

func spawnKey(w *engine.World, letter rune, x, z float32) engine.Entity {
	return w.Spawn(
		components.At(x, 0, z).WithScale(level.KeyScale),
		components.KeyComponent{Letter: letter},
	)
}

func spawnDoor(w *engine.World, letter rune, x, z float32) engine.Entity {
	return w.Spawn(
		components.At(x, 0, z).WithScale(level.WallScale),
		components.CollidableComponent{Active: true},
		components.DoorComponent{Letter: letter},
	)
}

func location(t *testing.T, w *engine.World, e engine.Entity) components.LocationComponent {
	t.Helper()
	loc, ok := w.Locations.Get(e)
	require.True(t, ok, "entity %d has no location", e)
	return loc
}

func TestScenarioSnagThenUnlock(t *testing.T) {
	m, err := level.ParseLegacyString("6 3\nWWWWWW\nWSaAGW\nWWWWWW\n")
	require.NoError(t, err)
	w := engine.NewWorld()
	require.NoError(t, level.Build(w, m, "."))
	state := engine.NewPlaying(w)

	keys := engine.Join1(w.Keys).Entities()
	require.Len(t, keys, 1)
	key := keys[0]
	doors := engine.Join1(w.Doors).Entities()
	require.Len(t, doors, 1)
	door := doors[0]

	var snagged []engine.KeySnagged
	var unlocked []engine.DoorUnlocked
	engine.Subscribe(w.Events, func(ev engine.KeySnagged) { snagged = append(snagged, ev) })
	engine.Subscribe(w.Events, func(ev engine.DoorUnlocked) { unlocked = append(unlocked, ev) })

	src := input.NewQueue()
	src.Push(input.Press(input.KeyForward))
	pipeline := gamePipeline(src)

	heldSeen := false
	for frame := 0; frame < 60 && len(unlocked) == 0; frame++ {
		pipeline.Step(state, frameMs)
		if k, ok := w.Keys.Get(key); ok && k.Held {
			heldSeen = true
		}
	}

	assert.True(t, heldSeen, "key should be held before it reaches the door")
	require.Len(t, snagged, 1)
	assert.Equal(t, 'a', snagged[0].Letter)

	require.Len(t, unlocked, 1)
	assert.Equal(t, door, unlocked[0].Door)
	assert.Equal(t, 'A', unlocked[0].Letter)
	assert.False(t, w.Alive(key), "unlocking consumes the key")

	c, ok := w.Collidables.Get(door)
	require.True(t, ok)
	assert.False(t, c.Active)
	assert.Equal(t, engine.PhasePlaying, state.Phase())
}

func TestSnagMarksKeyHeld(t *testing.T) {
	w := engine.NewWorld()
	spawnCamera(w, 1, 1, 0)
	near := spawnKey(w, 'a', 1, 1.3)
	far := spawnKey(w, 'b', 1, 3)
	state := engine.NewPlaying(w)

	NewSnagSystem().Step(state, frameMs)

	k, _ := w.Keys.Get(near)
	assert.True(t, k.Held)
	k, _ = w.Keys.Get(far)
	assert.False(t, k.Held)
}

func TestHoldSnapsKeysInFrontOfCamera(t *testing.T) {
	w := engine.NewWorld()
	spawnCamera(w, 2, 3, 90)
	key := w.Spawn(components.At(7, 0, 7).WithScale(level.KeyScale), components.KeyComponent{Letter: 'a', Held: true})
	loose := spawnKey(w, 'b', 7, 7)
	state := engine.NewPlaying(w)

	NewHoldSystem().Step(state, frameMs)

	got := location(t, w, key).Position
	want := mgl32.Vec3{2.3, HoldHeight, 3}
	assert.True(t, got.ApproxEqualThreshold(want, 1e-5), "got %v want %v", got, want)
	assert.Equal(t, mgl32.Vec3{7, 0, 7}, location(t, w, loose).Position)
}

func TestUnlockRequiresMatchingLetter(t *testing.T) {
	tests := []struct {
		name   string
		key    rune
		door   rune
		unlock bool
	}{
		{"matching", 'a', 'A', true},
		{"other key", 'b', 'A', false},
		{"reversed case", 'A', 'a', false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := engine.NewWorld()
			door := spawnDoor(w, tt.door, 3, 1)
			key := w.Spawn(components.At(2.6, -0.2, 1).WithScale(level.KeyScale), components.KeyComponent{Letter: tt.key, Held: true})
			state := engine.NewPlaying(w)

			NewUnlockSystem().Step(state, frameMs)

			c, _ := w.Collidables.Get(door)
			assert.Equal(t, !tt.unlock, c.Active)
			assert.Equal(t, !tt.unlock, w.Alive(key))
		})
	}
}

func TestUnlockOpenDoorKeepsSpareKey(t *testing.T) {
	w := engine.NewWorld()
	door := spawnDoor(w, 'A', 3, 1)
	w.Collidables.Set(door, components.CollidableComponent{Active: false})
	key := w.Spawn(components.At(3, 0, 1).WithScale(level.KeyScale), components.KeyComponent{Letter: 'a'})

	NewUnlockSystem().Step(engine.NewPlaying(w), frameMs)

	assert.True(t, w.Alive(key))
}

func TestSinkingDoorOnlyWhenOpen(t *testing.T) {
	w := engine.NewWorld()
	closed := spawnDoor(w, 'A', 1, 1)
	open := spawnDoor(w, 'B', 2, 1)
	w.Collidables.Set(open, components.CollidableComponent{Active: false})
	state := engine.NewPlaying(w)

	NewSinkingDoorSystem().Step(state, 250)

	assert.Equal(t, float32(0), location(t, w, closed).Position[1])
	assert.InDelta(t, -0.1, location(t, w, open).Position[1], 1e-6)
}

func TestSpinningKeyAddsYaw(t *testing.T) {
	w := engine.NewWorld()
	key := spawnKey(w, 'a', 1, 1)
	wall := w.Spawn(components.At(0, 0, 0))
	state := engine.NewPlaying(w)

	sys := NewSpinningKeySystem()
	sys.Step(state, 100)
	assert.InDelta(t, 20, location(t, w, key).Yaw(), 1e-4)

	sys.Step(state, 1700)
	assert.InDelta(t, 0, location(t, w, key).Yaw(), 1e-3, "yaw wraps at 360")
	assert.Equal(t, float32(0), location(t, w, wall).Yaw())
}

func TestScenarioFloorIsLava(t *testing.T) {
	w := engine.NewWorld()
	sunk := w.Spawn(components.At(0, -1.5, 0))
	level0 := w.Spawn(components.At(0, 0, 0))
	edge := w.Spawn(components.At(0, -1, 0))

	var fell []engine.EntityFell
	engine.Subscribe(w.Events, func(ev engine.EntityFell) { fell = append(fell, ev) })

	NewTheFloorIsLavaSystem().Step(engine.NewPlaying(w), frameMs)

	assert.False(t, w.Alive(sunk))
	assert.True(t, w.Alive(level0))
	assert.True(t, w.Alive(edge), "exactly -1 is not below the floor")
	require.Len(t, fell, 1)
	assert.Equal(t, sunk, fell[0].Entity)
	assert.Equal(t, float32(-1.5), fell[0].Height)
}

func TestSunkDoorFallsIntoLava(t *testing.T) {
	w := engine.NewWorld()
	door := spawnDoor(w, 'A', 1, 1)
	w.Collidables.Set(door, components.CollidableComponent{Active: false})
	state := engine.NewPlaying(w)
	pipeline := engine.NewPipeline(NewSinkingDoorSystem(), NewTheFloorIsLavaSystem())

	for i := 0; i < 20; i++ {
		pipeline.Step(state, 100)
	}
	assert.True(t, w.Alive(door))
	assert.InDelta(t, -0.8, location(t, w, door).Position[1], 1e-4)

	pipeline.Step(state, 1000)
	assert.False(t, w.Alive(door))
}

func spawnGoalWorld(camX float32) (*engine.World, engine.Entity, engine.Entity) {
	w := engine.NewWorld()
	spawnCamera(w, camX, 1, 90)
	goal := w.Spawn(components.At(2, 0, 1).WithScale(level.GoalScale), components.GoalComponent{})
	decal := w.Spawn(components.DecalComponent{Text: level.WinText})
	return w, goal, decal
}

func TestScenarioGoalEndsGame(t *testing.T) {
	w, goal, decal := spawnGoalWorld(1.8)
	state := engine.NewPlaying(w)

	var reached []engine.GoalReached
	var changes []engine.StateChanged
	engine.Subscribe(w.Events, func(ev engine.GoalReached) { reached = append(reached, ev) })
	engine.Subscribe(w.Events, func(ev engine.StateChanged) { changes = append(changes, ev) })

	win := NewWinSystem()
	win.Step(state, frameMs)

	require.Equal(t, engine.PhaseDone, state.Phase())
	assert.Same(t, w, state.World())
	assert.Equal(t, uint64(0), state.Elapsed())
	assert.False(t, w.Alive(goal))
	d, ok := w.Decals.Get(decal)
	require.True(t, ok)
	assert.True(t, d.Enabled)
	require.Len(t, reached, 1)
	assert.Equal(t, []engine.StateChanged{{From: engine.PhasePlaying, To: engine.PhaseDone}}, changes)

	for elapsed := uint64(0); elapsed < engine.DoneLingerMs; elapsed += 500 {
		assert.False(t, state.ShouldClose(), "closed early at %dms", elapsed)
		win.Step(state, 500)
	}
	assert.Equal(t, engine.DoneLingerMs, state.Elapsed())
	assert.False(t, state.ShouldClose(), "exactly the linger time is not enough")

	win.Step(state, 1)
	assert.True(t, state.ShouldClose())
}

func TestWinNeedsContact(t *testing.T) {
	w, goal, _ := spawnGoalWorld(1)
	state := engine.NewPlaying(w)

	NewWinSystem().Step(state, frameMs)

	assert.Equal(t, engine.PhasePlaying, state.Phase())
	assert.True(t, w.Alive(goal))
}

func TestWinSkipsWithoutDecal(t *testing.T) {
	w := engine.NewWorld()
	spawnCamera(w, 2, 1, 0)
	goal := w.Spawn(components.At(2, 0, 1).WithScale(level.GoalScale), components.GoalComponent{})
	state := engine.NewPlaying(w)

	win := NewWinSystem()
	win.Step(state, frameMs)
	win.Step(state, frameMs)

	assert.Equal(t, engine.PhasePlaying, state.Phase())
	assert.True(t, w.Alive(goal))
	assert.True(t, win.warned["decal"])
}

func TestSystemsIgnoreClosedState(t *testing.T) {
	w, _, _ := spawnGoalWorld(2)
	state := engine.NewPlaying(w)
	state.Close()

	src := input.NewQueue()
	src.Push(input.Press(input.KeyForward))
	assert.NotPanics(t, func() {
		gamePipeline(src).Step(state, frameMs)
	})
	assert.Equal(t, engine.PhaseClose, state.Phase())
	assert.Zero(t, src.Len(), "input is still drained once closed")
}
