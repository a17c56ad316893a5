package world

import (
	"testing"

	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/broadphase"
	"github.com/ironvale/physics3d/math3"
	"github.com/ironvale/physics3d/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	layerStatic  broadphase.ObjectLayer = 0
	layerMoving  broadphase.ObjectLayer = 1
	bpStatic     broadphase.BroadphaseLayer = 0
	bpMoving     broadphase.BroadphaseLayer = 1
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	settings := NewSettings()
	settings.AddBroadphaseLayer(bpStatic)
	settings.AddBroadphaseLayer(bpMoving)
	settings.AddObjectLayer(layerStatic, bpStatic)
	settings.AddObjectLayer(layerMoving, bpMoving)
	settings.EnableCollision(bpStatic, bpMoving)
	settings.EnableCollision(bpMoving, bpMoving)
	return CreateWorld(settings)
}

func TestCreateBodyRejectsUnregisteredLayer(t *testing.T) {
	w := newTestWorld(t)
	sphere, err := shape.NewSphere(0.5)
	require.NoError(t, err)

	_, err = w.CreateBody(BodySettings{
		Shape:       sphere,
		ObjectLayer: broadphase.ObjectLayer(99),
		MotionType:  body.Dynamic,
		Density:     1,
	})
	assert.Error(t, err)
}

func TestCreateBodyRejectsUndefinedMass(t *testing.T) {
	w := newTestWorld(t)
	mesh, err := shape.NewTriangleMesh([]shape.Triangle{
		{V0: math3.Vec3{0, 0, 0}, V1: math3.Vec3{1, 0, 0}, V2: math3.Vec3{0, 0, 1}},
	}, 0.99)
	require.NoError(t, err)

	_, err = w.CreateBody(BodySettings{
		Shape:       mesh,
		ObjectLayer: layerMoving,
		MotionType:  body.Dynamic,
		Density:     1,
	})
	assert.Error(t, err)
}

func TestStepSphereLandsOnFloor(t *testing.T) {
	w := newTestWorld(t)

	floorBox, err := shape.NewBox(math3.Vec3{10, 0.5, 10}, 0)
	require.NoError(t, err)
	_, err = w.CreateBody(BodySettings{
		Shape:       floorBox,
		ObjectLayer: layerStatic,
		MotionType:  body.Static,
		Position:    math3.Vec3{0, 0, 0},
	})
	require.NoError(t, err)

	sphere, err := shape.NewSphere(0.5)
	require.NoError(t, err)
	settings := DefaultBodySettings(sphere)
	settings.ObjectLayer = layerMoving
	settings.Position = math3.Vec3{0, 3, 0}
	settings.Restitution = 0
	id, err := w.CreateBody(settings)
	require.NoError(t, err)

	for i := 0; i < 240; i++ {
		w.Step(1.0 / 60)
	}

	b := w.Body(id)
	require.NotNil(t, b)
	assert.InDelta(t, 1.0, b.Position.Y(), 0.05)
}

func TestRemoveBodyDetachesBroadphase(t *testing.T) {
	w := newTestWorld(t)
	sphere, err := shape.NewSphere(0.5)
	require.NoError(t, err)
	settings := DefaultBodySettings(sphere)
	settings.ObjectLayer = layerMoving
	id, err := w.CreateBody(settings)
	require.NoError(t, err)

	require.True(t, w.RemoveBody(id))
	assert.Nil(t, w.Body(id))
	assert.False(t, w.RemoveBody(id))
}

func TestPointConstraintHoldsBodiesTogether(t *testing.T) {
	w := newTestWorld(t)

	sphere, err := shape.NewSphere(0.5)
	require.NoError(t, err)

	sA := DefaultBodySettings(sphere)
	sA.ObjectLayer = layerMoving
	sA.Position = math3.Vec3{0, 5, 0}
	idA, err := w.CreateBody(sA)
	require.NoError(t, err)

	sB := DefaultBodySettings(sphere)
	sB.ObjectLayer = layerMoving
	sB.Position = math3.Vec3{2, 5, 0}
	idB, err := w.CreateBody(sB)
	require.NoError(t, err)

	w.CreatePointConstraint(PointSettings{BodyA: idA, BodyB: idB, LocalA: math3.Zero3, LocalB: math3.Zero3})

	for i := 0; i < 30; i++ {
		w.Step(1.0 / 60)
	}

	a, b := w.Body(idA), w.Body(idB)
	dist := a.Position.Sub(b.Position).Len()
	assert.Less(t, dist, 0.5)
}
