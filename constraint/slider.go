package constraint

import (
	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/math3"
)

// SliderConstraint (a.k.a. prismatic joint) allows translation along a
// single axis while locking the other two translation axes and all
// three rotation axes, with an optional travel limit along the free
// axis. Not present in the teacher's constraint package directly, but
// generalized the same way the teacher's own Lock constraint
// (experimental/physics/constraint/lock.go) generalizes PointToPoint:
// take the fully-locked 6-DOF pattern and free exactly the axes the
// joint needs, reusing the same AxisConstraintPart/AngularConstraintPart
// building blocks as HingeConstraint and FixedConstraint.
type SliderConstraint struct {
	bodyA, bodyB   body.ID
	localA, localB math3.Vec3
	axisA          math3.Vec3 // slider direction, bodyA's local frame

	LimitEnabled    bool
	LimitMin, LimitMax float32

	priority int
	enabled  bool

	perp1, perp2     AxisConstraintPart
	rotX, rotY, rotZ AngularConstraintPart
	travel           AxisConstraintPart

	worldAxis  math3.Vec3
	rA, rB     math3.Vec3
	travelDist float32
	overLimit  bool
}

// NewSlider creates a slider pinning localA/localB and free to
// translate along axisA (bodyA's local frame, must equal bodyB's local
// slider direction once aligned).
func NewSlider(a, b body.ID, localA, localB, axisA math3.Vec3) *SliderConstraint {
	return &SliderConstraint{bodyA: a, bodyB: b, localA: localA, localB: localB, axisA: axisA.Normalize(), enabled: true}
}

func (c *SliderConstraint) BodyA() body.ID    { return c.bodyA }
func (c *SliderConstraint) BodyB() body.ID    { return c.bodyB }
func (c *SliderConstraint) Enabled() bool     { return c.enabled }
func (c *SliderConstraint) SetEnabled(e bool) { c.enabled = e }
func (c *SliderConstraint) Priority() int     { return c.priority }

func (c *SliderConstraint) SetupVelocity(bodies BodyLookup, dt float32) {
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	c.rA = a.Orientation.Rotate(c.localA)
	c.rB = b.Orientation.Rotate(c.localB)
	c.worldAxis = a.Orientation.Rotate(c.axisA)
	p1, p2 := perpendicularTangents(c.worldAxis)

	c.perp1.CalculateConstraintProperties(p1, a, b, c.rA, c.rB)
	c.perp2.CalculateConstraintProperties(p2, a, b, c.rA, c.rB)
	c.rotX.CalculateConstraintProperties(p1, a, b)
	c.rotY.CalculateConstraintProperties(p2, a, b)
	c.rotZ.CalculateConstraintProperties(c.worldAxis, a, b)

	worldA := a.Position.Add(c.rA)
	worldB := b.Position.Add(c.rB)
	c.travelDist = c.worldAxis.Dot(worldB.Sub(worldA))
	c.overLimit = c.LimitEnabled && (c.travelDist < c.LimitMin || c.travelDist > c.LimitMax)
	if c.overLimit {
		c.travel.CalculateConstraintProperties(c.worldAxis, a, b, c.rA, c.rB)
	}
}

func (c *SliderConstraint) perpAxes() (math3.Vec3, math3.Vec3) {
	return perpendicularTangents(c.worldAxis)
}

func (c *SliderConstraint) WarmStartVelocity(bodies BodyLookup, ratio float32) {
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	p1, p2 := c.perpAxes()
	c.perp1.WarmStart(p1, a, b, c.rA, c.rB, ratio)
	c.perp2.WarmStart(p2, a, b, c.rA, c.rB, ratio)
	c.rotX.WarmStart(p1, a, b, ratio)
	c.rotY.WarmStart(p2, a, b, ratio)
	c.rotZ.WarmStart(c.worldAxis, a, b, ratio)
	if c.overLimit {
		c.travel.WarmStart(c.worldAxis, a, b, c.rA, c.rB, ratio)
	}
}

func (c *SliderConstraint) SolveVelocity(bodies BodyLookup, dt float32) bool {
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	p1, p2 := c.perpAxes()
	active := c.perp1.SolveVelocity(p1, a, b, c.rA, c.rB, 0, -UnboundedLambda, UnboundedLambda)
	active = c.perp2.SolveVelocity(p2, a, b, c.rA, c.rB, 0, -UnboundedLambda, UnboundedLambda) || active
	active = c.rotX.SolveVelocity(p1, a, b, 0, -UnboundedLambda, UnboundedLambda) || active
	active = c.rotY.SolveVelocity(p2, a, b, 0, -UnboundedLambda, UnboundedLambda) || active
	active = c.rotZ.SolveVelocity(c.worldAxis, a, b, 0, -UnboundedLambda, UnboundedLambda) || active

	if c.overLimit {
		min, max := -UnboundedLambda, UnboundedLambda
		if c.travelDist > c.LimitMax {
			max = 0
		} else {
			min = 0
		}
		active = c.travel.SolveVelocity(c.worldAxis, a, b, 0, min, max) || active
	}
	return active
}

func (c *SliderConstraint) SolvePosition(bodies BodyLookup, dt, baumgarte float32) bool {
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	worldA := a.Position.Add(a.Orientation.Rotate(c.localA))
	worldB := b.Position.Add(b.Orientation.Rotate(c.localB))
	delta := worldB.Sub(worldA)
	axis := a.Orientation.Rotate(c.axisA)
	perpError := delta.Sub(axis.Mul(delta.Dot(axis)))
	if perpError.LenSqr() < math3.Epsilon*math3.Epsilon {
		return false
	}
	invMassSum := a.InvMass() + b.InvMass()
	if invMassSum < math3.Epsilon {
		return false
	}
	correction := perpError.Mul(baumgarte)
	if a.MotionType == body.Dynamic {
		a.Position = a.Position.Add(correction.Mul(a.InvMass() / invMassSum))
	}
	if b.MotionType == body.Dynamic {
		b.Position = b.Position.Sub(correction.Mul(b.InvMass() / invMassSum))
	}
	return true
}
