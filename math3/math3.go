// Package math3 supplies the vector, quaternion and matrix primitives the
// rest of the module treats as externally supplied, plus the two small
// aggregate types (AABB, Ray) the ecosystem library does not provide.
package math3

import "github.com/go-gl/mathgl/mgl32"

// Vec3, Quat, Mat3 and Mat4 are the primitive types shared by every
// package in the module. They are aliases, not wrappers: callers pass
// mgl32 values straight through without conversion at package boundaries.
type (
	Vec3 = mgl32.Vec3
	Quat = mgl32.Quat
	Mat3 = mgl32.Mat3
	Mat4 = mgl32.Mat4
)

// Epsilon is the default tolerance used for near-equality comparisons
// across the collision and constraint packages.
const Epsilon = 1e-6

// Zero3 is the zero vector.
var Zero3 = Vec3{0, 0, 0}

// UnitY is the world up axis used by gravity, sleep and KCC defaults.
var UnitY = Vec3{0, 1, 0}

// IdentityQuat is the identity rotation.
func IdentityQuat() Quat {
	return mgl32.QuatIdent()
}

// NearlyEqual reports whether a and b differ by no more than eps in every
// component.
func NearlyEqual(a, b Vec3, eps float32) bool {
	d := a.Sub(b)
	return Abs(d.X()) <= eps && Abs(d.Y()) <= eps && Abs(d.Z()) <= eps
}

// Pi returns math.Pi as a float32, for shapes computing volumes without
// importing "math" themselves.
func Pi() float32 { return 3.14159265358979323846 }

// Abs returns the absolute value of x.
func Abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// Clamp restricts x to [lo, hi].
func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// RotatePoint rotates p by q.
func RotatePoint(q Quat, p Vec3) Vec3 {
	return q.Rotate(p)
}

// TransformPoint applies a rigid transform (position, orientation) to a
// local-space point, producing a world-space point.
func TransformPoint(position Vec3, orientation Quat, local Vec3) Vec3 {
	return position.Add(RotatePoint(orientation, local))
}

// InverseTransformPoint maps a world-space point into the local space of
// a rigid transform.
func InverseTransformPoint(position Vec3, orientation Quat, world Vec3) Vec3 {
	return RotatePoint(orientation.Inverse(), world.Sub(position))
}

// Transform is a rigid position+orientation pair used throughout the
// shape, collision and query packages to carry a shape's placement
// without assuming uniform scale.
type Transform struct {
	Position    Vec3
	Orientation Quat
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{Position: Zero3, Orientation: IdentityQuat()}
}

// Point transforms a local-space point into the space Transform is
// relative to.
func (t Transform) Point(local Vec3) Vec3 {
	return TransformPoint(t.Position, t.Orientation, local)
}

// Direction rotates a local-space direction, ignoring translation.
func (t Transform) Direction(local Vec3) Vec3 {
	return RotatePoint(t.Orientation, local)
}

// InversePoint maps a point from this transform's space back to its
// parent space.
func (t Transform) InversePoint(world Vec3) Vec3 {
	return InverseTransformPoint(t.Position, t.Orientation, world)
}

// Then composes t followed by next: the result maps a point first
// through t, then through next.
func (t Transform) Then(next Transform) Transform {
	return Transform{
		Position:    next.Point(t.Position),
		Orientation: next.Orientation.Mul(t.Orientation).Normalize(),
	}
}

// IntegrateQuat advances an orientation by an angular velocity over dt
// using an exact axis-angle update rather than a first-order
// approximation, as required for stability at large angular steps.
func IntegrateQuat(q Quat, angularVelocity Vec3, dt float32) Quat {
	angle := angularVelocity.Len() * dt
	if angle < Epsilon {
		return q
	}
	axis := angularVelocity.Normalize()
	delta := mgl32.QuatRotate(angle, axis)
	return delta.Mul(q).Normalize()
}
