package body

import (
	"testing"

	"github.com/ironvale/physics3d/math3"
	"github.com/ironvale/physics3d/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticBodyHasZeroInverseMass(t *testing.T) {
	s, err := shape.NewSphere(1)
	require.NoError(t, err)
	b := NewBody(NewID(1, 1), Static, math3.Zero3, math3.IdentityQuat(), s)
	assert.Equal(t, float32(0), b.InvMass())
}

func TestDynamicBodyAppliesImpulse(t *testing.T) {
	s, err := shape.NewSphere(1)
	require.NoError(t, err)
	b := NewBody(NewID(1, 1), Dynamic, math3.Zero3, math3.IdentityQuat(), s)
	mp, ok := s.MassProperties(1)
	require.True(t, ok)
	b.Motion.Mass = NewMassProperties(mp.Mass, mp.Inertia, mp.CenterOfMass)

	b.ApplyImpulse(math3.Vec3{1, 0, 0}, math3.Zero3)
	assert.Greater(t, b.Motion.LinearVelocity.X(), float32(0))
}

func TestDOFMaskZeroesLockedAxes(t *testing.T) {
	mp := DefaultMotionProperties()
	mp.DOFs = DOFAllRotation
	mp.LinearVelocity = math3.Vec3{1, 2, 3}
	mp.ApplyDOFMask()
	assert.Equal(t, math3.Zero3, mp.LinearVelocity)
}

func TestCombineFrictionModes(t *testing.T) {
	a := Material{Friction: 0.2, FrictionCombine: CombineMax}
	b := Material{Friction: 0.8}
	assert.InDelta(t, 0.8, CombineFriction(a, b), 1e-6)
}
