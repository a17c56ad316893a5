package constraint

import (
	"math"

	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/math3"
)

// ConeConstraint pins a point shared between two bodies (as
// PointConstraint) and additionally limits the swing angle between
// bodyA's cone axis and bodyB's cone axis to HalfAngle, with no twist
// limit. Grounded on the teacher's ConeTwist constraint
// (experimental/physics/constraint/conetwist.go) and its Cone equation
// (experimental/physics/equation/cone.go), which only ever push the
// axes back toward alignment (MaxForce clamped to 0) and never apart —
// the same one-sided clamp this uses.
type ConeConstraint struct {
	PointConstraint
	axisA, axisB math3.Vec3
	HalfAngle    float32

	swing      AngularConstraintPart
	swingAxis  math3.Vec3
	overLimit  bool
}

// NewCone creates a cone constraint pinning localA/localB and limiting
// the angle between axisA (bodyA's frame) and axisB (bodyB's frame) to
// halfAngle radians.
func NewCone(a, b body.ID, localA, localB, axisA, axisB math3.Vec3, halfAngle float32) *ConeConstraint {
	c := &ConeConstraint{axisA: axisA.Normalize(), axisB: axisB.Normalize(), HalfAngle: halfAngle}
	c.PointConstraint = *NewPoint(a, b, localA, localB)
	return c
}

func (c *ConeConstraint) SetupVelocity(bodies BodyLookup, dt float32) {
	c.PointConstraint.SetupVelocity(bodies, dt)
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)

	worldA := a.Orientation.Rotate(c.axisA)
	worldB := b.Orientation.Rotate(c.axisB)

	cosAngle := math3.Clamp(worldA.Dot(worldB), -1, 1)
	angle := float32(math.Acos(float64(cosAngle)))
	c.overLimit = angle > c.HalfAngle
	if !c.overLimit {
		return
	}
	// Swing axis perpendicular to both cone axes; pushes worldB back
	// toward worldA, never apart (matches the teacher's one-sided clamp).
	c.swingAxis = worldA.Cross(worldB)
	if l := c.swingAxis.Len(); l > math3.Epsilon {
		c.swingAxis = c.swingAxis.Mul(1 / l)
	}
	c.swing.CalculateConstraintProperties(c.swingAxis, a, b)
}

func (c *ConeConstraint) WarmStartVelocity(bodies BodyLookup, ratio float32) {
	c.PointConstraint.WarmStartVelocity(bodies, ratio)
	if !c.overLimit {
		return
	}
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	c.swing.WarmStart(c.swingAxis, a, b, ratio)
}

func (c *ConeConstraint) SolveVelocity(bodies BodyLookup, dt float32) bool {
	active := c.PointConstraint.SolveVelocity(bodies, dt)
	if !c.overLimit {
		return active
	}
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	return c.swing.SolveVelocity(c.swingAxis, a, b, 0, 0, UnboundedLambda) || active
}

func (c *ConeConstraint) SolvePosition(bodies BodyLookup, dt, baumgarte float32) bool {
	return c.PointConstraint.SolvePosition(bodies, dt, baumgarte)
}
