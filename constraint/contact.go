package constraint

import (
	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/contact"
	"github.com/ironvale/physics3d/math3"
)

// RestitutionVelocityThreshold below which no bounce is applied, per
// spec.md §4.5's requirement that resting contacts not chatter from
// restitution noise.
const RestitutionVelocityThreshold = 1.0

// ContactConstraint resolves one persistent contact::Contact's manifold:
// a non-penetration axis plus two friction tangents per point, with
// friction impulse capped to the Coulomb cone by the point's own normal
// impulse from the same iteration (box friction model). Grounded on the
// teacher's Contact equation (experimental/physics/equation/equation.go
// -- NewContact/SetNormal/SetRA/SetRB) generalized from the teacher's
// single-point contact to spec.md §5's up-to-4-point manifold, and on
// AxisConstraintPart for the sequential-impulse accumulator.
type ContactConstraint struct {
	ct       *contact.Contact
	priority int
	enabled  bool

	normal [4]AxisConstraintPart
	fric1  [4]AxisConstraintPart
	fric2  [4]AxisConstraintPart
	rA, rB [4]math3.Vec3
	bias   [4]float32
	count  int

	tangent1, tangent2 math3.Vec3
}

// NewContact wraps a persistent contact record as a solver constraint.
// The cache keeps ct alive across steps so warm-start impulses survive;
// this wrapper is rebuilt fresh each step from ct's current manifold.
func NewContact(ct *contact.Contact) *ContactConstraint {
	return &ContactConstraint{ct: ct, enabled: true}
}

func (c *ContactConstraint) BodyA() body.ID    { return c.ct.BodyA }
func (c *ContactConstraint) BodyB() body.ID    { return c.ct.BodyB }
func (c *ContactConstraint) Enabled() bool     { return c.enabled }
func (c *ContactConstraint) SetEnabled(e bool) { c.enabled = e }
func (c *ContactConstraint) Priority() int     { return c.priority }

func (c *ContactConstraint) SetupVelocity(bodies BodyLookup, dt float32) {
	a, b := bodies.Body(c.ct.BodyA), bodies.Body(c.ct.BodyB)
	m := &c.ct.Manifold
	c.count = len(m.Points)
	if cap := len(c.normal); c.count > cap {
		c.count = cap
	}
	if len(c.ct.Impulses) < c.count {
		grown := make([]contact.PointImpulse, c.count)
		copy(grown, c.ct.Impulses)
		c.ct.Impulses = grown
	}

	// The manifold normal points from A into B; the velocity rows use the
	// opposite axis so a non-negative impulse pushes A and B apart.
	normal := m.Normal.Mul(-1)
	c.tangent1, c.tangent2 = perpendicularTangents(normal)

	for i := 0; i < c.count; i++ {
		p := m.Points[i]
		rA := p.PointOnA.Sub(a.Position)
		rB := p.PointOnB.Sub(b.Position)
		c.rA[i], c.rB[i] = rA, rB

		c.normal[i].CalculateConstraintProperties(normal, a, b, rA, rB)
		c.fric1[i].CalculateConstraintProperties(c.tangent1, a, b, rA, rB)
		c.fric2[i].CalculateConstraintProperties(c.tangent2, a, b, rA, rB)

		closingVelocity := relativeVelocity(normal, a, b, rA, rB)
		c.bias[i] = 0
		if closingVelocity < -RestitutionVelocityThreshold {
			c.bias[i] = -c.ct.Restitution * closingVelocity
		}
	}
}

func (c *ContactConstraint) WarmStartVelocity(bodies BodyLookup, ratio float32) {
	a, b := bodies.Body(c.ct.BodyA), bodies.Body(c.ct.BodyB)
	normal := c.ct.Manifold.Normal.Mul(-1)
	for i := 0; i < c.count; i++ {
		imp := &c.ct.Impulses[i]
		c.normal[i].totalLambda = imp.Normal
		c.fric1[i].totalLambda = imp.Friction1
		c.fric2[i].totalLambda = imp.Friction2

		c.normal[i].WarmStart(normal, a, b, c.rA[i], c.rB[i], ratio)
		c.fric1[i].WarmStart(c.tangent1, a, b, c.rA[i], c.rB[i], ratio)
		c.fric2[i].WarmStart(c.tangent2, a, b, c.rA[i], c.rB[i], ratio)

		imp.Normal = c.normal[i].totalLambda
		imp.Friction1 = c.fric1[i].totalLambda
		imp.Friction2 = c.fric2[i].totalLambda
	}
}

func (c *ContactConstraint) SolveVelocity(bodies BodyLookup, dt float32) bool {
	a, b := bodies.Body(c.ct.BodyA), bodies.Body(c.ct.BodyB)
	normal := c.ct.Manifold.Normal.Mul(-1)
	active := false

	// Normal impulses first so friction's Coulomb-cone clamp this
	// iteration uses an up-to-date bound.
	for i := 0; i < c.count; i++ {
		active = c.normal[i].SolveVelocity(normal, a, b, c.rA[i], c.rB[i], c.bias[i], 0, UnboundedLambda) || active
	}
	for i := 0; i < c.count; i++ {
		maxFriction := c.ct.Friction * c.normal[i].totalLambda
		active = c.fric1[i].SolveVelocity(c.tangent1, a, b, c.rA[i], c.rB[i], 0, -maxFriction, maxFriction) || active
		active = c.fric2[i].SolveVelocity(c.tangent2, a, b, c.rA[i], c.rB[i], 0, -maxFriction, maxFriction) || active
	}

	for i := 0; i < c.count; i++ {
		imp := &c.ct.Impulses[i]
		imp.Normal = c.normal[i].totalLambda
		imp.Friction1 = c.fric1[i].totalLambda
		imp.Friction2 = c.fric2[i].totalLambda
	}
	return active
}

// SolvePosition pushes out remaining penetration directly, a simplified
// stand-in for Jolt's pseudo-velocity NGS pass: not derived from the
// teacher (which has no position-correction pass at all), grounded
// instead on spec.md §4.5's explicit Baumgarte/NGS requirement.
func (c *ContactConstraint) SolvePosition(bodies BodyLookup, dt, baumgarte float32) bool {
	a, b := bodies.Body(c.ct.BodyA), bodies.Body(c.ct.BodyB)
	normal := c.ct.Manifold.Normal
	moved := false
	invMassSum := a.InvMass() + b.InvMass()
	if invMassSum < math3.Epsilon {
		return false
	}
	for i := 0; i < c.count; i++ {
		p := c.ct.Manifold.Points[i]
		if p.Penetration <= 0 {
			continue
		}
		correction := normal.Mul(p.Penetration * baumgarte / invMassSum)
		if a.MotionType == body.Dynamic {
			a.Position = a.Position.Sub(correction.Mul(a.InvMass()))
		}
		if b.MotionType == body.Dynamic {
			b.Position = b.Position.Add(correction.Mul(b.InvMass()))
		}
		moved = true
	}
	return moved
}
