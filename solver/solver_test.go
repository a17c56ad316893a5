package solver

import (
	"testing"

	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/constraint"
	"github.com/ironvale/physics3d/contact"
	"github.com/ironvale/physics3d/island"
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

func noContacts(*island.Island) []constraint.Constraint { return nil }

func TestSolveIslandIntegratesPositionFromVelocity(t *testing.T) {
	idA := body.NewID(1, 1)
	a := newDynamicSphere(t, idA, math3.Zero3)
	a.Motion.LinearVelocity = math3.Vec3{1, 0, 0}
	bodies := fakeBodies{idA: a}

	isl := &island.Island{Bodies: []body.ID{idA}}
	SolveIsland(isl, bodies, 1.0/60, 1.0/60, DefaultSettings(), noContacts)

	assert.InDelta(t, 1.0/60, a.Position.X(), 1e-6)
}

func TestSolveIslandSkipsSleepingIsland(t *testing.T) {
	idA := body.NewID(1, 1)
	a := newDynamicSphere(t, idA, math3.Zero3)
	a.Motion.LinearVelocity = math3.Vec3{1, 0, 0}
	bodies := fakeBodies{idA: a}

	isl := &island.Island{Bodies: []body.ID{idA}, Asleep: true}
	SolveIsland(isl, bodies, 1.0/60, 1.0/60, DefaultSettings(), noContacts)

	assert.Equal(t, float32(0), a.Position.X())
}

func TestSolveIslandAppliesDOFMask(t *testing.T) {
	idA := body.NewID(1, 1)
	a := newDynamicSphere(t, idA, math3.Zero3)
	a.Motion.LinearVelocity = math3.Vec3{1, 2, 3}
	a.Motion.DOFs = body.DOFTranslationX // only X allowed
	bodies := fakeBodies{idA: a}

	isl := &island.Island{Bodies: []body.ID{idA}}
	SolveIsland(isl, bodies, 1.0/60, 1.0/60, DefaultSettings(), noContacts)

	assert.NotEqual(t, float32(0), a.Motion.LinearVelocity.X())
	assert.Equal(t, float32(0), a.Motion.LinearVelocity.Y())
	assert.Equal(t, float32(0), a.Motion.LinearVelocity.Z())
}

func TestSolveIslandSolvesUserConstraint(t *testing.T) {
	idA, idB := body.NewID(1, 1), body.NewID(2, 1)
	a := newDynamicSphere(t, idA, math3.Zero3)
	b := newDynamicSphere(t, idB, math3.Vec3{1, 0, 0})
	b.Motion.LinearVelocity = math3.Vec3{5, 0, 0}
	bodies := fakeBodies{idA: a, idB: b}

	c := constraint.NewDistance(idA, idB, 1.0)
	isl := &island.Island{Bodies: []body.ID{idA, idB}, Constraints: []constraint.Constraint{c}}

	SolveIsland(isl, bodies, 1.0/60, 1.0/60, DefaultSettings(), noContacts)

	relVel := b.Motion.LinearVelocity.Sub(a.Motion.LinearVelocity)
	assert.LessOrEqual(t, relVel.Dot(math3.Vec3{1, 0, 0}), float32(5))
}

func TestSolveIslandHandlesContactWithEmptyManifold(t *testing.T) {
	idA, idB := body.NewID(1, 1), body.NewID(2, 1)
	a := newDynamicSphere(t, idA, math3.Zero3)
	b := newDynamicSphere(t, idB, math3.Vec3{1, 0, 0})
	bodies := fakeBodies{idA: a, idB: b}

	cache := contact.NewCache()
	ct := cache.Create(idA, idB, shape.EmptySubShapeID, shape.EmptySubShapeID)
	ct.Touching = true

	isl := &island.Island{Bodies: []body.ID{idA, idB}, Contacts: []*contact.Contact{ct}}
	contactOf := func(i *island.Island) []constraint.Constraint {
		out := make([]constraint.Constraint, 0, len(i.Contacts))
		for _, c := range i.Contacts {
			out = append(out, constraint.NewContact(c))
		}
		return out
	}

	assert.NotPanics(t, func() {
		SolveIsland(isl, bodies, 1.0/60, 1.0/60, DefaultSettings(), contactOf)
	})
}
