package island

import (
	"testing"

	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/contact"
	"github.com/ironvale/physics3d/math3"
	"github.com/ironvale/physics3d/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBodies map[body.ID]*body.Body

func (f fakeBodies) Body(id body.ID) *body.Body { return f[id] }

func newBody(t *testing.T, id body.ID, mt body.MotionType) *body.Body {
	t.Helper()
	s, err := shape.NewSphere(0.5)
	require.NoError(t, err)
	return body.NewBody(id, mt, math3.Zero3, math3.IdentityQuat(), s)
}

func TestBuildSeparatesDisjointIslands(t *testing.T) {
	idA := body.NewID(1, 1)
	idB := body.NewID(2, 1)
	idC := body.NewID(3, 1)
	idD := body.NewID(4, 1)

	bodies := fakeBodies{
		idA: newBody(t, idA, body.Dynamic),
		idB: newBody(t, idB, body.Dynamic),
		idC: newBody(t, idC, body.Dynamic),
		idD: newBody(t, idD, body.Dynamic),
	}

	cache := contact.NewCache()
	cache.Create(idA, idB, shape.EmptySubShapeID, shape.EmptySubShapeID)
	cache.Create(idC, idD, shape.EmptySubShapeID, shape.EmptySubShapeID)

	islands := Build([]body.ID{idA, idB, idC, idD}, bodies, cache, nil)
	require.Len(t, islands, 2)
	assert.Len(t, islands[0].Bodies, 2)
	assert.Len(t, islands[1].Bodies, 2)
}

func TestBuildTreatsStaticBodyAsSink(t *testing.T) {
	idA := body.NewID(1, 1)
	idB := body.NewID(2, 1)
	idStatic := body.NewID(3, 1)

	bodies := fakeBodies{
		idA:      newBody(t, idA, body.Dynamic),
		idB:      newBody(t, idB, body.Dynamic),
		idStatic: newBody(t, idStatic, body.Static),
	}

	cache := contact.NewCache()
	cache.Create(idA, idStatic, shape.EmptySubShapeID, shape.EmptySubShapeID)
	cache.Create(idB, idStatic, shape.EmptySubShapeID, shape.EmptySubShapeID)

	islands := Build([]body.ID{idA, idB}, bodies, cache, nil)
	// idA and idB both touch the static sink but never touch each other
	// directly, so they must remain in separate islands.
	require.Len(t, islands, 2)
}

func TestUpdateSleepPutsSlowIslandToSleep(t *testing.T) {
	idA := body.NewID(1, 1)
	b := newBody(t, idA, body.Dynamic)
	mp := body.DefaultMotionProperties()
	b.Motion = &mp
	bodies := fakeBodies{idA: b}

	isl := &Island{Bodies: []body.ID{idA}}
	for i := 0; i < 100; i++ {
		UpdateSleep([]*Island{isl}, bodies, 0.1)
	}
	assert.True(t, isl.Asleep)
	assert.False(t, b.IsActive)
}
