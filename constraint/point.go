package constraint

import (
	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/math3"
)

// PointConstraint pins a local point on bodyA to a local point on bodyB,
// removing all 3 translational degrees of freedom while leaving rotation
// free. Grounded on the teacher's PointToPoint constraint
// (experimental/physics/constraint/pointtopoint.go), which drives 3
// world-axis equations through the same two anchors; here the 3 axes
// are world X/Y/Z rather than the teacher's fixed equation objects, so
// SetupVelocity can recompute them from the live pose every step.
type PointConstraint struct {
	bodyA, bodyB body.ID
	localA, localB math3.Vec3
	priority       int
	enabled        bool

	axisX, axisY, axisZ AxisConstraintPart
	rA, rB              math3.Vec3
}

// NewPoint creates a point constraint pinning localA (in bodyA's frame)
// to localB (in bodyB's frame).
func NewPoint(a, b body.ID, localA, localB math3.Vec3) *PointConstraint {
	return &PointConstraint{bodyA: a, bodyB: b, localA: localA, localB: localB, enabled: true}
}

func (c *PointConstraint) BodyA() body.ID   { return c.bodyA }
func (c *PointConstraint) BodyB() body.ID   { return c.bodyB }
func (c *PointConstraint) Enabled() bool    { return c.enabled }
func (c *PointConstraint) SetEnabled(e bool) { c.enabled = e }
func (c *PointConstraint) Priority() int    { return c.priority }

func (c *PointConstraint) anchors(bodies BodyLookup) (a, b *body.Body, rA, rB math3.Vec3) {
	a = bodies.Body(c.bodyA)
	b = bodies.Body(c.bodyB)
	rA = a.Orientation.Rotate(c.localA)
	rB = b.Orientation.Rotate(c.localB)
	return
}

func (c *PointConstraint) SetupVelocity(bodies BodyLookup, dt float32) {
	a, b, rA, rB := c.anchors(bodies)
	c.rA, c.rB = rA, rB
	c.axisX.CalculateConstraintProperties(math3.Vec3{1, 0, 0}, a, b, rA, rB)
	c.axisY.CalculateConstraintProperties(math3.Vec3{0, 1, 0}, a, b, rA, rB)
	c.axisZ.CalculateConstraintProperties(math3.Vec3{0, 0, 1}, a, b, rA, rB)
}

func (c *PointConstraint) WarmStartVelocity(bodies BodyLookup, ratio float32) {
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	c.axisX.WarmStart(math3.Vec3{1, 0, 0}, a, b, c.rA, c.rB, ratio)
	c.axisY.WarmStart(math3.Vec3{0, 1, 0}, a, b, c.rA, c.rB, ratio)
	c.axisZ.WarmStart(math3.Vec3{0, 0, 1}, a, b, c.rA, c.rB, ratio)
}

func (c *PointConstraint) SolveVelocity(bodies BodyLookup, dt float32) bool {
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	anyActive := false
	anyActive = c.axisX.SolveVelocity(math3.Vec3{1, 0, 0}, a, b, c.rA, c.rB, 0, -UnboundedLambda, UnboundedLambda) || anyActive
	anyActive = c.axisY.SolveVelocity(math3.Vec3{0, 1, 0}, a, b, c.rA, c.rB, 0, -UnboundedLambda, UnboundedLambda) || anyActive
	anyActive = c.axisZ.SolveVelocity(math3.Vec3{0, 0, 1}, a, b, c.rA, c.rB, 0, -UnboundedLambda, UnboundedLambda) || anyActive
	return anyActive
}

// SolvePosition corrects positional drift directly (non-physical pseudo
// velocity would need a second velocity channel the solver doesn't keep,
// so this moves position/orientation-derived anchors by the full error
// scaled by baumgarte, matching the teacher's Baumgarte-stabilized
// contact equations in spirit though not by shared code).
func (c *PointConstraint) SolvePosition(bodies BodyLookup, dt, baumgarte float32) bool {
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	worldA := a.Position.Add(a.Orientation.Rotate(c.localA))
	worldB := b.Position.Add(b.Orientation.Rotate(c.localB))
	err := worldB.Sub(worldA)
	if err.LenSqr() < math3.Epsilon*math3.Epsilon {
		return false
	}
	correction := err.Mul(baumgarte)
	invMassSum := a.InvMass() + b.InvMass()
	if invMassSum < math3.Epsilon {
		return false
	}
	if a.MotionType == body.Dynamic {
		a.Position = a.Position.Add(correction.Mul(a.InvMass() / invMassSum))
	}
	if b.MotionType == body.Dynamic {
		b.Position = b.Position.Sub(correction.Mul(b.InvMass() / invMassSum))
	}
	return true
}
