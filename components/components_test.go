package components

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCollides(t *testing.T) {
	tests := []struct {
		name string
		a, b LocationComponent
		want bool
	}{
		{"same point", At(0, 0, 0), At(0, 0, 0), true},
		{"diagonal neighbours touch exactly", At(0, 0, 0), At(1, 1, 0), false},
		{"half scale diagonal touch exactly", At(0, 0, 0).WithScale(0.5), At(0.5, 0.5, 0).WithScale(0.5), false},
		{"adjacent unit spheres overlap", At(0, 0, 0), At(1, 0, 0), true},
		{"wall and camera apart", At(0, 0, 0).WithScale(0.5), At(1, 0, 0).WithScale(0.25), false},
		{"wall and camera close", At(0, 0, 0).WithScale(0.5), At(0.5, 0, 0).WithScale(0.25), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Collides(tt.b))
			assert.Equal(t, tt.want, tt.b.Collides(tt.a))
		})
	}
}

func TestKeyOpens(t *testing.T) {
	tests := []struct {
		key, door rune
		want      bool
	}{
		{'a', 'A', true},
		{'e', 'E', true},
		{'b', 'A', false},
		{'A', 'a', false},
		{'a', 'a', false},
	}

	for _, tt := range tests {
		t.Run(string(tt.key)+"->"+string(tt.door), func(t *testing.T) {
			key := KeyComponent{Letter: tt.key}
			door := DoorComponent{Letter: tt.door}
			assert.Equal(t, tt.want, key.Opens(door))
		})
	}
	assert.Equal(t, 'C', DoorLetterFor('c'))
}

func TestRotateBy(t *testing.T) {
	l := At(0, 0, 0)

	l = l.RotateBy(100, 0)
	assert.InDelta(t, MaxPitch, l.Pitch(), 1e-5)
	l = l.RotateBy(-200, 0)
	assert.InDelta(t, -MaxPitch, l.Pitch(), 1e-5)

	l = l.RotateBy(0, 350)
	l = l.RotateBy(0, 20)
	assert.InDelta(t, 10, l.Yaw(), 1e-4)

	l = At(0, 0, 0).RotateBy(0, -370)
	assert.InDelta(t, -10, l.Yaw(), 1e-4)
}

func TestMoveBy(t *testing.T) {
	l := At(0, 0, 0).MoveBy(1, 0)
	assertVec(t, mgl32.Vec3{0, 0, 1}, l.Position)

	l = At(0, 0, 0).RotateBy(0, 90).MoveBy(1, 0)
	assertVec(t, mgl32.Vec3{1, 0, 0}, l.Position)

	// Strafing is perpendicular to the heading on the ground plane
	l = At(0, 0, 0).MoveBy(0, 1)
	assertVec(t, mgl32.Vec3{-1, 0, 0}, l.Position)

	// Pitch does not lift the walker
	l = At(0, 0, 0).RotateBy(45, 0).MoveBy(1, 0)
	assertVec(t, mgl32.Vec3{0, 0, 1}, l.Position)
}

func TestForwardFollowsPitch(t *testing.T) {
	l := At(0, 0, 0).RotateBy(45, 0)
	f := l.Forward()
	assert.InDelta(t, 1, f.Len(), 1e-5)
	assert.InDelta(t, f[2], -f[1], 1e-5)
}

func TestModelAndView(t *testing.T) {
	l := At(1, 2, 3).WithScale(2)
	p := l.Model().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assertVec(t, mgl32.Vec3{3, 2, 3}, p.Vec3())

	// The camera position maps to the view-space origin
	v := l.View().Mul4x1(l.Position.Vec4(1))
	assertVec(t, mgl32.Vec3{0, 0, 0}, v.Vec3())
}

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d of %v", i, got)
	}
}
