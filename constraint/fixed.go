package constraint

import (
	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/math3"
)

// FixedConstraint welds two bodies together: zero relative translation
// and zero relative rotation. Grounded on the teacher's Lock constraint
// (experimental/physics/constraint/lock.go), a PointToPoint plus 3
// Rotational equations pinning orthogonal body-local axes pairwise;
// here the 3 rotational locks run directly on world X/Y/Z instead of
// the teacher's cross-paired axis trick, since both bodies' full
// orientations are already available to compare each step.
type FixedConstraint struct {
	PointConstraint
	initialRelative math3.Quat

	rotX, rotY, rotZ AngularConstraintPart
}

// NewFixed welds bodyA to bodyB at the relative orientation given by
// initialRelative, pinned at localA/localB.
func NewFixed(a, b body.ID, localA, localB math3.Vec3, initialRelative math3.Quat) *FixedConstraint {
	f := &FixedConstraint{initialRelative: initialRelative}
	f.PointConstraint = *NewPoint(a, b, localA, localB)
	return f
}

func (c *FixedConstraint) SetupVelocity(bodies BodyLookup, dt float32) {
	c.PointConstraint.SetupVelocity(bodies, dt)
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	c.rotX.CalculateConstraintProperties(math3.Vec3{1, 0, 0}, a, b)
	c.rotY.CalculateConstraintProperties(math3.Vec3{0, 1, 0}, a, b)
	c.rotZ.CalculateConstraintProperties(math3.Vec3{0, 0, 1}, a, b)
}

func (c *FixedConstraint) WarmStartVelocity(bodies BodyLookup, ratio float32) {
	c.PointConstraint.WarmStartVelocity(bodies, ratio)
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	c.rotX.WarmStart(math3.Vec3{1, 0, 0}, a, b, ratio)
	c.rotY.WarmStart(math3.Vec3{0, 1, 0}, a, b, ratio)
	c.rotZ.WarmStart(math3.Vec3{0, 0, 1}, a, b, ratio)
}

func (c *FixedConstraint) SolveVelocity(bodies BodyLookup, dt float32) bool {
	active := c.PointConstraint.SolveVelocity(bodies, dt)
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	active = c.rotX.SolveVelocity(math3.Vec3{1, 0, 0}, a, b, 0, -UnboundedLambda, UnboundedLambda) || active
	active = c.rotY.SolveVelocity(math3.Vec3{0, 1, 0}, a, b, 0, -UnboundedLambda, UnboundedLambda) || active
	active = c.rotZ.SolveVelocity(math3.Vec3{0, 0, 1}, a, b, 0, -UnboundedLambda, UnboundedLambda) || active
	return active
}

// SolvePosition corrects both the pivot drift and orientation drift: the
// relative rotation away from initialRelative is converted to an
// axis-angle error and corrected the same way PointConstraint corrects
// linear error.
func (c *FixedConstraint) SolvePosition(bodies BodyLookup, dt, baumgarte float32) bool {
	moved := c.PointConstraint.SolvePosition(bodies, dt, baumgarte)
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)

	currentRelative := a.Orientation.Inverse().Mul(b.Orientation)
	errQuat := c.initialRelative.Inverse().Mul(currentRelative).Normalize()
	if errQuat.W < 0 {
		errQuat.W, errQuat.V = -errQuat.W, errQuat.V.Mul(-1)
	}
	// For a small rotation, errQuat.V ~= axis*sin(angle/2) ~= axis*angle/2,
	// so twice the vector part is already the axis-angle correction.
	localCorrection := errQuat.V.Mul(2 * baumgarte)
	if localCorrection.LenSqr() < math3.Epsilon*math3.Epsilon {
		return moved
	}
	worldAxis := a.Orientation.Rotate(localCorrection.Normalize())

	invInertiaSum := mulQuad(a.InvInertiaWorld(), worldAxis) + mulQuad(b.InvInertiaWorld(), worldAxis)
	if invInertiaSum < math3.Epsilon {
		return moved
	}
	correction := a.Orientation.Rotate(localCorrection)
	if a.MotionType == body.Dynamic {
		a.Orientation = math3.IntegrateQuat(a.Orientation, correction.Mul(-1), 1)
	}
	if b.MotionType == body.Dynamic {
		b.Orientation = math3.IntegrateQuat(b.Orientation, correction, 1)
	}
	return true
}
