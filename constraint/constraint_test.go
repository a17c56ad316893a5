package constraint

import (
	"testing"

	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/math3"
	"github.com/ironvale/physics3d/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBodies map[body.ID]*body.Body

func (f fakeBodies) Body(id body.ID) *body.Body { return f[id] }

func newDynamicSphere(t *testing.T, id body.ID, pos math3.Vec3) *body.Body {
	t.Helper()
	s, err := shape.NewSphere(0.5)
	require.NoError(t, err)
	b := body.NewBody(id, body.Dynamic, pos, math3.IdentityQuat(), s)
	mp, ok := s.MassProperties(1)
	require.True(t, ok)
	b.Motion.Mass = body.NewMassProperties(mp.Mass, mp.Inertia, mp.CenterOfMass)
	return b
}

func TestPointConstraintPullsBodiesTogether(t *testing.T) {
	idA, idB := body.NewID(1, 1), body.NewID(2, 1)
	a := newDynamicSphere(t, idA, math3.Vec3{0, 0, 0})
	b := newDynamicSphere(t, idB, math3.Vec3{2, 0, 0})
	b.Motion.LinearVelocity = math3.Vec3{1, 0, 0} // moving away from A

	bodies := fakeBodies{idA: a, idB: b}
	c := NewPoint(idA, idB, math3.Zero3, math3.Zero3)

	c.SetupVelocity(bodies, 1.0/60)
	for i := 0; i < 10; i++ {
		c.SolveVelocity(bodies, 1.0/60)
	}

	// The constraint should have pulled B's velocity back toward A's.
	relVel := b.Motion.LinearVelocity.Sub(a.Motion.LinearVelocity)
	assert.Less(t, relVel.Dot(math3.Vec3{1, 0, 0}), float32(1))
}

func TestDistanceConstraintHoldsWithinRange(t *testing.T) {
	idA, idB := body.NewID(1, 1), body.NewID(2, 1)
	a := newDynamicSphere(t, idA, math3.Vec3{0, 0, 0})
	b := newDynamicSphere(t, idB, math3.Vec3{1, 0, 0})
	b.Motion.LinearVelocity = math3.Vec3{5, 0, 0} // stretching the link

	bodies := fakeBodies{idA: a, idB: b}
	c := NewDistance(idA, idB, 1.0)

	c.SetupVelocity(bodies, 1.0/60)
	active := c.SolveVelocity(bodies, 1.0/60)
	assert.True(t, active)

	relVel := b.Motion.LinearVelocity.Sub(a.Motion.LinearVelocity)
	assert.LessOrEqual(t, relVel.Dot(math3.Vec3{1, 0, 0}), float32(5))
}

func TestHingeConstraintLocksPerpendicularAngularVelocity(t *testing.T) {
	idA, idB := body.NewID(1, 1), body.NewID(2, 1)
	a := newDynamicSphere(t, idA, math3.Vec3{0, 0, 0})
	b := newDynamicSphere(t, idB, math3.Vec3{1, 0, 0})
	b.Motion.AngularVelocity = math3.Vec3{1, 0, 0} // spinning about a locked axis

	bodies := fakeBodies{idA: a, idB: b}
	h := NewHinge(idA, idB, math3.Zero3, math3.Zero3, math3.Vec3{0, 1, 0}, math3.Vec3{0, 1, 0})

	h.SetupVelocity(bodies, 1.0/60)
	for i := 0; i < 10; i++ {
		h.SolveVelocity(bodies, 1.0/60)
	}

	assert.Less(t, b.Motion.AngularVelocity.X(), float32(1))
}

func TestFixedConstraintLocksRelativeVelocity(t *testing.T) {
	idA, idB := body.NewID(1, 1), body.NewID(2, 1)
	a := newDynamicSphere(t, idA, math3.Vec3{0, 0, 0})
	b := newDynamicSphere(t, idB, math3.Vec3{1, 0, 0})
	b.Motion.LinearVelocity = math3.Vec3{0, 2, 0}

	bodies := fakeBodies{idA: a, idB: b}
	f := NewFixed(idA, idB, math3.Zero3, math3.Zero3, math3.IdentityQuat())

	f.SetupVelocity(bodies, 1.0/60)
	for i := 0; i < 10; i++ {
		f.SolveVelocity(bodies, 1.0/60)
	}

	relVel := b.Motion.LinearVelocity.Sub(a.Motion.LinearVelocity)
	assert.Less(t, relVel.Len(), float32(2))
}
