package constraint

import (
	"math"

	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/math3"
)

// SwingTwistConstraint is a ConeConstraint plus a twist-angle limit
// about the cone axis itself, grounded directly on the teacher's
// ConeTwist constraint (experimental/physics/constraint/conetwist.go),
// which pairs a Cone equation with a Rotational twist equation clamped
// the same one-sided way. Matches spec.md §4.7's ragdoll-shoulder use
// case: swing limited by HalfAngle, twist limited by [TwistMin,TwistMax].
type SwingTwistConstraint struct {
	ConeConstraint
	TwistMin, TwistMax float32

	twist         AngularConstraintPart
	twistOverMin  bool
	twistOverMax  bool
	twistAxis     math3.Vec3
}

// NewSwingTwist creates a swing-twist constraint pinning localA/localB,
// limiting swing off axisA/axisB to halfAngle and twist about that axis
// to [twistMin, twistMax] radians.
func NewSwingTwist(a, b body.ID, localA, localB, axisA, axisB math3.Vec3, halfAngle, twistMin, twistMax float32) *SwingTwistConstraint {
	s := &SwingTwistConstraint{TwistMin: twistMin, TwistMax: twistMax}
	s.ConeConstraint = *NewCone(a, b, localA, localB, axisA, axisB, halfAngle)
	return s
}

func (c *SwingTwistConstraint) SetupVelocity(bodies BodyLookup, dt float32) {
	c.ConeConstraint.SetupVelocity(bodies, dt)
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)

	worldA := a.Orientation.Rotate(c.axisA)
	worldB := b.Orientation.Rotate(c.axisB)
	tA1, _ := perpendicularTangents(c.axisA)
	worldTA := a.Orientation.Rotate(tA1)
	tB1, _ := perpendicularTangents(c.axisB)
	worldTB := b.Orientation.Rotate(tB1)

	// Project worldTB onto the plane perpendicular to worldA to measure
	// twist independent of swing, then signed-angle it against worldTA.
	proj := worldTB.Sub(worldA.Mul(worldA.Dot(worldTB)))
	if proj.LenSqr() < math3.Epsilon {
		c.twistOverMin, c.twistOverMax = false, false
		return
	}
	proj = proj.Normalize()
	cosT := math3.Clamp(worldTA.Dot(proj), -1, 1)
	sinT := worldA.Dot(worldTA.Cross(proj))
	twistAngle := float32(math.Atan2(float64(sinT), float64(cosT)))

	c.twistOverMin = twistAngle < c.TwistMin
	c.twistOverMax = twistAngle > c.TwistMax
	if !c.twistOverMin && !c.twistOverMax {
		return
	}
	c.twistAxis = worldA
	c.twist.CalculateConstraintProperties(c.twistAxis, a, b)
}

func (c *SwingTwistConstraint) WarmStartVelocity(bodies BodyLookup, ratio float32) {
	c.ConeConstraint.WarmStartVelocity(bodies, ratio)
	if !c.twistOverMin && !c.twistOverMax {
		return
	}
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	c.twist.WarmStart(c.twistAxis, a, b, ratio)
}

func (c *SwingTwistConstraint) SolveVelocity(bodies BodyLookup, dt float32) bool {
	active := c.ConeConstraint.SolveVelocity(bodies, dt)
	if !c.twistOverMin && !c.twistOverMax {
		return active
	}
	a, b := bodies.Body(c.bodyA), bodies.Body(c.bodyB)
	var min, max float32 = -UnboundedLambda, UnboundedLambda
	if c.twistOverMax {
		max = 0 // only push twist back down toward TwistMax
	} else if c.twistOverMin {
		min = 0 // only push twist back up toward TwistMin
	}
	return c.twist.SolveVelocity(c.twistAxis, a, b, 0, min, max) || active
}

func (c *SwingTwistConstraint) SolvePosition(bodies BodyLookup, dt, baumgarte float32) bool {
	return c.ConeConstraint.SolvePosition(bodies, dt, baumgarte)
}
