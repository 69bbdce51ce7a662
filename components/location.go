package components

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Pitch is clamped to this many degrees either side of level
const MaxPitch = 85.0

var (
	unitY = mgl32.Vec3{0, 1, 0}
	unitZ = mgl32.Vec3{0, 0, 1}
)

// LocationComponent places an object in the world
// Rotation holds pitch, yaw and roll in degrees (X, Y, Z)
type LocationComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    float32 // Also the collision radius
}

// At creates a location with no rotation and unit scale
func At(x, y, z float32) LocationComponent {
	return LocationComponent{
		Position: mgl32.Vec3{x, y, z},
		Scale:    1,
	}
}

// WithScale returns a copy with the given scale
func (l LocationComponent) WithScale(scale float32) LocationComponent {
	l.Scale = scale
	return l
}

// Yaw returns the heading in degrees
func (l LocationComponent) Yaw() float32 { return l.Rotation[1] }

// Pitch returns the vertical look angle in degrees
func (l LocationComponent) Pitch() float32 { return l.Rotation[0] }

// Front is the ground-plane heading, ignoring pitch and roll
func (l LocationComponent) Front() mgl32.Vec3 {
	return mgl32.Rotate3DY(mgl32.DegToRad(l.Rotation[1])).Mul3x1(unitZ)
}

// MoveBy moves forwards and sideways relative to the current heading
func (l LocationComponent) MoveBy(forward, strafe float32) LocationComponent {
	front := l.Front()
	l.Position = l.Position.Add(front.Mul(forward))
	l.Position = l.Position.Add(front.Cross(unitY).Mul(strafe))
	return l
}

// RotateBy adds pitch and yaw, clamping pitch and wrapping yaw into (-360, 360)
func (l LocationComponent) RotateBy(pitch, yaw float32) LocationComponent {
	p := l.Rotation[0] + pitch
	if p > MaxPitch {
		p = MaxPitch
	} else if p < -MaxPitch {
		p = -MaxPitch
	}
	l.Rotation[0] = p
	l.Rotation[1] = float32(math.Mod(float64(l.Rotation[1]+yaw), 360))
	return l
}

// rotation composes roll, yaw and pitch in that order
func (l LocationComponent) rotation() mgl32.Mat4 {
	return mgl32.HomogRotate3DZ(mgl32.DegToRad(l.Rotation[2])).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(l.Rotation[1]))).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(l.Rotation[0])))
}

// Forward returns the full look direction including pitch
func (l LocationComponent) Forward() mgl32.Vec3 {
	return l.rotation().Mul4x1(unitZ.Vec4(0)).Vec3()
}

// Model computes the model matrix
func (l LocationComponent) Model() mgl32.Mat4 {
	return mgl32.Translate3D(l.Position[0], l.Position[1], l.Position[2]).
		Mul4(l.rotation()).
		Mul4(mgl32.Scale3D(l.Scale, l.Scale, l.Scale))
}

// View computes the view matrix looking along Forward
func (l LocationComponent) View() mgl32.Mat4 {
	return mgl32.LookAtV(l.Position, l.Position.Add(l.Forward()), unitY)
}

// Collides reports whether the spheres of the two objects overlap
// Each sphere has the object's scale as radius, shrunk by sqrt(2)/2; touching is not a collision
func (l LocationComponent) Collides(other LocationComponent) bool {
	distance := l.Position.Sub(other.Position).Len()
	minDistance := (l.Scale + other.Scale) * math.Sqrt2 / 2
	return distance < minDistance
}
