package character

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

type fakeBroadphase struct {
	payloads []int32
}

func (f *fakeBroadphase) QueryAABB(box math3.AABB, visit func(payload int32)) {
	for _, p := range f.payloads {
		visit(p)
	}
}

func TestSolveAgainstConstraintsSlidesAlongSinglePlane(t *testing.T) {
	velocity := math3.Vec3{1, -1, 0}
	floor := PlaneConstraint{Normal: math3.Vec3{0, 1, 0}, Point: math3.Zero3}

	solved := solveAgainstConstraints(velocity, []PlaneConstraint{floor}, 4)

	assert.InDelta(t, 0, solved.Y(), 1e-5)
	assert.InDelta(t, 1, solved.X(), 1e-5)
}

func TestDiscardOpposingContactsKeepsDeeper(t *testing.T) {
	contacts := []Contact{
		{Body: body.NewID(1, 1), ContactNormal: math3.Vec3{1, 0, 0}, Distance: -0.1},
		{Body: body.NewID(2, 1), ContactNormal: math3.Vec3{-1, 0, 0}, Distance: -0.3},
	}
	out := discardOpposingContacts(contacts, 0.02)
	require.Len(t, out, 1)
	assert.Equal(t, float32(-0.3), out[0].Distance)
}

func TestUpdateSupportingContactClassifiesFlatGround(t *testing.T) {
	sphere, err := shape.NewSphere(0.5)
	require.NoError(t, err)
	c := New(DefaultSettings(sphere), math3.Vec3{0, 1, 0})

	contacts := []Contact{
		{Body: body.NewID(1, 1), SurfaceNormal: math3.Vec3{0, 1, 0}, ContactNormal: math3.Vec3{0, 1, 0}, Position: math3.Vec3{0, 0.5, 0}},
	}
	c.updateSupportingContact(contacts)
	assert.Equal(t, OnGround, c.Ground)
}

func TestUpdateSupportingContactClassifiesSteepGround(t *testing.T) {
	sphere, err := shape.NewSphere(0.5)
	require.NoError(t, err)
	c := New(DefaultSettings(sphere), math3.Vec3{0, 1, 0})

	// Surface normal 80 degrees from up, steeper than the 50 degree default max slope.
	steepNormal := math3.Vec3{0.98, 0.17, 0}
	contacts := []Contact{
		{Body: body.NewID(1, 1), SurfaceNormal: steepNormal, ContactNormal: steepNormal, Position: math3.Vec3{0, 0.5, 0}},
	}
	c.updateSupportingContact(contacts)
	assert.Equal(t, OnSteepGround, c.Ground)
}

func TestCharacterUpdateLandsOnStaticFloor(t *testing.T) {
	sphere, err := shape.NewSphere(0.5)
	require.NoError(t, err)
	idChar := body.NewID(1, 1)
	_ = idChar

	floorBox, err := shape.NewBox(math3.Vec3{10, 0.5, 10}, 0)
	require.NoError(t, err)
	idFloor := body.NewID(2, 1)
	floor := body.NewBody(idFloor, body.Static, math3.Vec3{0, 0, 0}, math3.IdentityQuat(), floorBox)

	bodies := fakeBodies{idFloor: floor}
	bp := &fakeBroadphase{payloads: []int32{int32(idFloor.Index())}}
	resolve := func(payload int32) (body.ID, bool) {
		if payload == int32(idFloor.Index()) {
			return idFloor, true
		}
		return body.ID{}, false
	}

	c := New(DefaultSettings(sphere), math3.Vec3{0, 1.5, 0})
	gravity := math3.Vec3{0, -9.81, 0}

	for i := 0; i < 60; i++ {
		c.Update(1.0/60, gravity, bodies, bp, resolve, nil, nil)
	}

	assert.True(t, c.Ground.Supported())
	assert.GreaterOrEqual(t, c.Position.Y(), float32(0.99))
}
