package shape

import (
	"testing"

	"github.com/ironvale/physics3d/math3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSphereMassProperties(t *testing.T) {
	s, err := NewSphere(2)
	require.NoError(t, err)

	mp, ok := s.MassProperties(1)
	require.True(t, ok)
	assert.InDelta(t, (4.0/3.0)*math3.Pi()*8, mp.Mass, 1e-3)
	assert.InDelta(t, 0.4*mp.Mass*4, mp.Inertia[0], 1e-3)
}

func TestSphereRejectsNonPositiveRadius(t *testing.T) {
	_, err := NewSphere(0)
	assert.ErrorIs(t, err, ErrDegenerateShape)
}

func TestBoxSupportPointRespectsConvexRadius(t *testing.T) {
	b, err := NewBox(math3.Vec3{1, 1, 1}, 0.1)
	require.NoError(t, err)

	inner := b.SupportPoint(math3.Vec3{1, 0, 0}, ExcludeConvexRadius)
	assert.InDelta(t, 0.9, inner.X(), 1e-5)

	outer := b.SupportPoint(math3.Vec3{1, 0, 0}, IncludeConvexRadius)
	assert.InDelta(t, 1.0, outer.X(), 1e-5)
}

func TestSubShapeIDPushPop(t *testing.T) {
	id := EmptySubShapeID.Push(5, 4).Push(2, 3)
	v1, rem := id.Pop(4)
	assert.Equal(t, uint32(5), v1)
	v2, rem2 := rem.Pop(3)
	assert.Equal(t, uint32(2), v2)
	assert.True(t, rem2.IsEmpty())
}

func TestConvexHullRejectsTooFewVertices(t *testing.T) {
	_, err := NewConvexHull([]math3.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, nil, 0)
	assert.ErrorIs(t, err, ErrDegenerateShape)
}

func TestCompoundCombinesChildMass(t *testing.T) {
	box, err := NewBox(math3.Vec3{1, 1, 1}, 0)
	require.NoError(t, err)
	c, err := NewCompound([]CompoundChild{
		{LocalPosition: math3.Vec3{-2, 0, 0}, Shape: box},
		{LocalPosition: math3.Vec3{2, 0, 0}, Shape: box},
	})
	require.NoError(t, err)

	mp, ok := c.MassProperties(1)
	require.True(t, ok)
	assert.InDelta(t, 2*box.Volume(), mp.Mass, 1e-3)
	assert.InDelta(t, 0, mp.CenterOfMass.X(), 1e-3)
}

func TestTriangleMeshActiveEdges(t *testing.T) {
	tris := []Triangle{
		{V0: math3.Vec3{0, 0, 0}, V1: math3.Vec3{1, 0, 0}, V2: math3.Vec3{0, 0, 1}},
		{V0: math3.Vec3{1, 0, 0}, V1: math3.Vec3{1, 0, 1}, V2: math3.Vec3{0, 0, 1}},
	}
	mesh, err := NewTriangleMesh(tris, 0.99)
	require.NoError(t, err)
	assert.True(t, mesh.Triangles[0].edgeActive(0))
	assert.False(t, mesh.Triangles[0].edgeActive(1))
}
