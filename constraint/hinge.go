package constraint

import (
	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/math3"
)

// HingeConstraint pins a point shared between two bodies and restricts
// relative rotation to a single axis, optionally driven by a motor.
// LimitEnabled, LimitMin and LimitMax are stored but not enforced: the
// hinge angle is never clamped. Grounded on the teacher's Hinge constraint
// (experimental/physics/constraint/hinge.go): a PointToPoint plus two
// Rotational equations holding bodyA's two tangents to the hinge axis
// perpendicular to bodyB's hinge axis, plus an optional RotationalMotor.
type HingeConstraint struct {
	PointConstraint
	axisA, axisB math3.Vec3

	MotorEnabled  bool
	MotorSpeed    float32
	MotorMaxForce float32

	LimitEnabled bool
	LimitMin     float32
	LimitMax     float32

	tangent1, tangent2 AngularConstraintPart
	motor              AngularConstraintPart
	worldAxisA         math3.Vec3
}

// NewHinge creates a hinge pinning localA/localB with rotation allowed
// about axisA (bodyA's frame) / axisB (bodyB's frame).
func NewHinge(a, b body.ID, localA, localB, axisA, axisB math3.Vec3) *HingeConstraint {
	h := &HingeConstraint{
		axisA: axisA.Normalize(),
		axisB: axisB.Normalize(),
	}
	h.PointConstraint = *NewPoint(a, b, localA, localB)
	return h
}

func (c *HingeConstraint) SetupVelocity(bodies BodyLookup, dt float32) {
	c.PointConstraint.SetupVelocity(bodies, dt)
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)

	worldAxisA := a.Orientation.Rotate(c.axisA)
	c.worldAxisA = worldAxisA
	t1, t2 := perpendicularTangents(worldAxisA)

	c.tangent1.CalculateConstraintProperties(t1, a, b)
	c.tangent2.CalculateConstraintProperties(t2, a, b)

	if c.MotorEnabled {
		c.motor.CalculateConstraintProperties(worldAxisA, a, b)
	}
}

func (c *HingeConstraint) WarmStartVelocity(bodies BodyLookup, ratio float32) {
	c.PointConstraint.WarmStartVelocity(bodies, ratio)
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	t1, t2 := perpendicularTangents(c.worldAxisA)
	c.tangent1.WarmStart(t1, a, b, ratio)
	c.tangent2.WarmStart(t2, a, b, ratio)
	if c.MotorEnabled {
		c.motor.WarmStart(c.worldAxisA, a, b, ratio)
	}
}

func (c *HingeConstraint) SolveVelocity(bodies BodyLookup, dt float32) bool {
	active := c.PointConstraint.SolveVelocity(bodies, dt)
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	t1, t2 := perpendicularTangents(c.worldAxisA)
	active = c.tangent1.SolveVelocity(t1, a, b, 0, -UnboundedLambda, UnboundedLambda) || active
	active = c.tangent2.SolveVelocity(t2, a, b, 0, -UnboundedLambda, UnboundedLambda) || active

	if c.MotorEnabled {
		maxF := c.MotorMaxForce
		active = c.motor.SolveVelocity(c.worldAxisA, a, b, c.MotorSpeed, -maxF, maxF) || active
	}
	return active
}

func (c *HingeConstraint) SolvePosition(bodies BodyLookup, dt, baumgarte float32) bool {
	return c.PointConstraint.SolvePosition(bodies, dt, baumgarte)
}

// perpendicularTangents returns two vectors orthogonal to axis and to
// each other, grounded on the teacher's Vector3.RandomTangents (used by
// Hinge.Update to build rotEq1/rotEq2's bodyA axes).
func perpendicularTangents(axis math3.Vec3) (math3.Vec3, math3.Vec3) {
	var up math3.Vec3
	if math3.Abs(axis[1]) < 0.99 {
		up = math3.Vec3{0, 1, 0}
	} else {
		up = math3.Vec3{1, 0, 0}
	}
	t1 := axis.Cross(up).Normalize()
	t2 := axis.Cross(t1).Normalize()
	return t1, t2
}
