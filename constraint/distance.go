package constraint

import (
	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/math3"
)

// DistanceConstraint holds two bodies a fixed distance apart along the
// line between their centers. The limits are enforced rigidly; there is
// no soft-spring mode. Grounded on the teacher's Distance constraint (experimental/physics/
// constraint/distance.go), which drives a single Contact equation along
// the normalized vector between the two body centers; generalized here
// with MinDistance/MaxDistance so the same type covers rope-like
// one-sided limits, not just the teacher's rigid equality.
type DistanceConstraint struct {
	bodyA, bodyB       body.ID
	MinDistance        float32
	MaxDistance        float32
	priority           int
	enabled            bool

	axis AxisConstraintPart
	dir  math3.Vec3
	err  float32
}

// NewDistance creates a rigid distance constraint holding the two body
// centers exactly distance apart.
func NewDistance(a, b body.ID, distance float32) *DistanceConstraint {
	return &DistanceConstraint{bodyA: a, bodyB: b, MinDistance: distance, MaxDistance: distance, enabled: true}
}

func (c *DistanceConstraint) BodyA() body.ID    { return c.bodyA }
func (c *DistanceConstraint) BodyB() body.ID    { return c.bodyB }
func (c *DistanceConstraint) Enabled() bool     { return c.enabled }
func (c *DistanceConstraint) SetEnabled(e bool) { c.enabled = e }
func (c *DistanceConstraint) Priority() int     { return c.priority }

func (c *DistanceConstraint) SetupVelocity(bodies BodyLookup, dt float32) {
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	delta := b.Position.Sub(a.Position)
	dist := delta.Len()
	if dist < math3.Epsilon {
		c.dir = math3.Vec3{0, 1, 0}
		c.err = 0
	} else {
		c.dir = delta.Mul(1 / dist)
		switch {
		case dist < c.MinDistance:
			c.err = dist - c.MinDistance
		case dist > c.MaxDistance:
			c.err = dist - c.MaxDistance
		default:
			c.err = 0
		}
	}
	c.axis.CalculateConstraintProperties(c.dir, a, b, math3.Vec3{}, math3.Vec3{})
}

func (c *DistanceConstraint) WarmStartVelocity(bodies BodyLookup, ratio float32) {
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	c.axis.WarmStart(c.dir, a, b, math3.Vec3{}, math3.Vec3{}, ratio)
}

func (c *DistanceConstraint) SolveVelocity(bodies BodyLookup, dt float32) bool {
	if c.err == 0 && c.MinDistance != c.MaxDistance {
		return false // within the free range, nothing to resist
	}
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	min, max := -UnboundedLambda, UnboundedLambda
	if c.MinDistance == c.MaxDistance {
		// rigid: either direction of force allowed
	} else if c.err < 0 {
		max = 0 // below MinDistance, only push apart
	} else {
		min = 0 // above MaxDistance, only pull together
	}
	return c.axis.SolveVelocity(c.dir, a, b, math3.Vec3{}, math3.Vec3{}, 0, min, max)
}

func (c *DistanceConstraint) SolvePosition(bodies BodyLookup, dt, baumgarte float32) bool {
	if c.err == 0 {
		return false
	}
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	invMassSum := a.InvMass() + b.InvMass()
	if invMassSum < math3.Epsilon {
		return false
	}
	correction := c.dir.Mul(c.err * baumgarte)
	if a.MotionType == body.Dynamic {
		a.Position = a.Position.Add(correction.Mul(a.InvMass() / invMassSum))
	}
	if b.MotionType == body.Dynamic {
		b.Position = b.Position.Sub(correction.Mul(b.InvMass() / invMassSum))
	}
	return true
}
