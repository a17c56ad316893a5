package constraint

import (
	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/math3"
)

// AxisMode selects how a SixDOFConstraint treats one degree of freedom.
type AxisMode int

const (
	AxisFree AxisMode = iota
	AxisLimited
	AxisFixed
)

// SixDOFConstraint exposes all 6 degrees of freedom (3 translation, 3
// rotation) independently as Free, Limited (translation only) or Fixed,
// generalizing the teacher's Lock constraint (experimental/physics/
// constraint/lock.go) — which is the AxisFixed/AxisFixed/AxisFixed/
// AxisFixed/AxisFixed/AxisFixed corner of this same configuration
// space — the rest built from the same AxisConstraintPart/
// AngularConstraintPart primitives as every other joint in this package.
type SixDOFConstraint struct {
	bodyA, bodyB   body.ID
	localA, localB math3.Vec3

	TranslationMode [3]AxisMode
	TranslationMin  [3]float32
	TranslationMax  [3]float32
	RotationMode    [3]AxisMode // only AxisFixed is enforced; AxisLimited solves as AxisFree: see DESIGN.md

	priority int
	enabled  bool

	linear  [3]AxisConstraintPart
	angular [3]AngularConstraintPart
	rA, rB  math3.Vec3
	offset  [3]float32
	initialRelative math3.Quat
}

// NewSixDOF creates a fully-free six-DOF constraint pinning localA/
// localB as the reference anchors; set TranslationMode/RotationMode per
// axis to restrict it.
func NewSixDOF(a, b body.ID, localA, localB math3.Vec3, initialRelative math3.Quat) *SixDOFConstraint {
	return &SixDOFConstraint{
		bodyA: a, bodyB: b, localA: localA, localB: localB,
		initialRelative: initialRelative, enabled: true,
	}
}

func (c *SixDOFConstraint) BodyA() body.ID    { return c.bodyA }
func (c *SixDOFConstraint) BodyB() body.ID    { return c.bodyB }
func (c *SixDOFConstraint) Enabled() bool     { return c.enabled }
func (c *SixDOFConstraint) SetEnabled(e bool) { c.enabled = e }
func (c *SixDOFConstraint) Priority() int     { return c.priority }

var worldAxes = [3]math3.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

func (c *SixDOFConstraint) SetupVelocity(bodies BodyLookup, dt float32) {
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	c.rA = a.Orientation.Rotate(c.localA)
	c.rB = b.Orientation.Rotate(c.localB)
	worldA := a.Position.Add(c.rA)
	worldB := b.Position.Add(c.rB)
	delta := worldB.Sub(worldA)

	for i, axis := range worldAxes {
		if c.TranslationMode[i] == AxisFree {
			continue
		}
		c.offset[i] = delta.Dot(axis)
		c.linear[i].CalculateConstraintProperties(axis, a, b, c.rA, c.rB)
	}
	for i, axis := range worldAxes {
		if c.RotationMode[i] != AxisFixed {
			continue
		}
		c.angular[i].CalculateConstraintProperties(axis, a, b)
	}
}

func (c *SixDOFConstraint) WarmStartVelocity(bodies BodyLookup, ratio float32) {
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	for i, axis := range worldAxes {
		if c.TranslationMode[i] != AxisFree {
			c.linear[i].WarmStart(axis, a, b, c.rA, c.rB, ratio)
		}
		if c.RotationMode[i] == AxisFixed {
			c.angular[i].WarmStart(axis, a, b, ratio)
		}
	}
}

func (c *SixDOFConstraint) SolveVelocity(bodies BodyLookup, dt float32) bool {
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	active := false
	for i, axis := range worldAxes {
		switch c.TranslationMode[i] {
		case AxisFree:
		case AxisFixed:
			active = c.linear[i].SolveVelocity(axis, a, b, c.rA, c.rB, 0, -UnboundedLambda, UnboundedLambda) || active
		case AxisLimited:
			min, max := -UnboundedLambda, UnboundedLambda
			if c.offset[i] > c.TranslationMax[i] {
				max = 0
			} else if c.offset[i] < c.TranslationMin[i] {
				min = 0
			} else {
				continue // inside the free range this step
			}
			active = c.linear[i].SolveVelocity(axis, a, b, c.rA, c.rB, 0, min, max) || active
		}
		if c.RotationMode[i] == AxisFixed {
			active = c.angular[i].SolveVelocity(axis, a, b, 0, -UnboundedLambda, UnboundedLambda) || active
		}
	}
	return active
}

func (c *SixDOFConstraint) SolvePosition(bodies BodyLookup, dt, baumgarte float32) bool {
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	worldA := a.Position.Add(a.Orientation.Rotate(c.localA))
	worldB := b.Position.Add(b.Orientation.Rotate(c.localB))
	delta := worldB.Sub(worldA)

	var correction math3.Vec3
	moved := false
	for i, axis := range worldAxes {
		if c.TranslationMode[i] != AxisFixed {
			continue
		}
		d := delta.Dot(axis)
		if math3.Abs(d) < math3.Epsilon {
			continue
		}
		correction = correction.Add(axis.Mul(d))
		moved = true
	}
	if moved {
		invMassSum := a.InvMass() + b.InvMass()
		if invMassSum > math3.Epsilon {
			step := correction.Mul(baumgarte)
			if a.MotionType == body.Dynamic {
				a.Position = a.Position.Add(step.Mul(a.InvMass() / invMassSum))
			}
			if b.MotionType == body.Dynamic {
				b.Position = b.Position.Sub(step.Mul(b.InvMass() / invMassSum))
			}
		}
	}

	rotated := c.solveFixedRotation(a, b, baumgarte)
	return moved || rotated
}

// solveFixedRotation corrects drift on any AxisFixed rotation axis by
// projecting the small-angle error between the current and initial
// relative orientation onto the fixed axes only, leaving AxisFree/
// AxisLimited rotation axes untouched.
func (c *SixDOFConstraint) solveFixedRotation(a, b *body.Body, baumgarte float32) bool {
	anyFixed := false
	for _, m := range c.RotationMode {
		if m == AxisFixed {
			anyFixed = true
		}
	}
	if !anyFixed {
		return false
	}

	currentRelative := a.Orientation.Inverse().Mul(b.Orientation)
	errQuat := c.initialRelative.Inverse().Mul(currentRelative).Normalize()
	if errQuat.W < 0 {
		errQuat.W, errQuat.V = -errQuat.W, errQuat.V.Mul(-1)
	}

	var localCorrection math3.Vec3
	for i, axis := range worldAxes {
		if c.RotationMode[i] != AxisFixed {
			continue
		}
		localCorrection = localCorrection.Add(axis.Mul(errQuat.V.Dot(axis)))
	}
	localCorrection = localCorrection.Mul(2 * baumgarte)
	if localCorrection.LenSqr() < math3.Epsilon*math3.Epsilon {
		return false
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
