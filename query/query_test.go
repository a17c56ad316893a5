package query

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

func (f *fakeBroadphase) CastRay(ray math3.Ray, maxFraction float32, visit func(payload int32)) {
	for _, p := range f.payloads {
		visit(p)
	}
}

func resolverFor(ids ...body.ID) Resolver {
	byIndex := make(map[int32]body.ID, len(ids))
	for _, id := range ids {
		byIndex[int32(id.Index())] = id
	}
	return func(payload int32) (body.ID, bool) {
		id, ok := byIndex[payload]
		return id, ok
	}
}

func TestCastRayClosestHitsSphere(t *testing.T) {
	sphere, err := shape.NewSphere(1)
	require.NoError(t, err)
	id := body.NewID(1, 1)
	b := body.NewBody(id, body.Static, math3.Vec3{0, 0, 5}, math3.IdentityQuat(), sphere)

	bodies := fakeBodies{id: b}
	bp := &fakeBroadphase{payloads: []int32{int32(id.Index())}}

	ray := math3.Ray{Origin: math3.Zero3, Direction: math3.Vec3{0, 0, 1}}
	hit, found := CastRayClosest(ray, 100, bodies, bp, resolverFor(id), nil)

	require.True(t, found)
	assert.Equal(t, id, hit.Body)
	assert.InDelta(t, 4, hit.Fraction, 1e-3)
}

func TestCastRayClosestRespectsFilter(t *testing.T) {
	sphere, err := shape.NewSphere(1)
	require.NoError(t, err)
	id := body.NewID(1, 1)
	b := body.NewBody(id, body.Static, math3.Vec3{0, 0, 5}, math3.IdentityQuat(), sphere)

	bodies := fakeBodies{id: b}
	bp := &fakeBroadphase{payloads: []int32{int32(id.Index())}}

	ray := math3.Ray{Origin: math3.Zero3, Direction: math3.Vec3{0, 0, 1}}
	_, found := CastRayClosest(ray, 100, bodies, bp, resolverFor(id), FilterFunc(func(body.ID) bool { return false }))

	assert.False(t, found)
}

func TestCollideShapeFindsOverlap(t *testing.T) {
	box, err := shape.NewBox(math3.Vec3{1, 1, 1}, 0)
	require.NoError(t, err)
	id := body.NewID(1, 1)
	b := body.NewBody(id, body.Static, math3.Zero3, math3.IdentityQuat(), box)

	bodies := fakeBodies{id: b}
	bp := &fakeBroadphase{payloads: []int32{int32(id.Index())}}

	probe, err := shape.NewSphere(0.5)
	require.NoError(t, err)
	hits := CollideShape(probe, math3.Transform{Position: math3.Vec3{0, 0, 0}, Orientation: math3.IdentityQuat()}, bodies, bp, resolverFor(id), nil)

	require.Len(t, hits, 1)
	assert.Equal(t, id, hits[0].Body)
}

func TestCollidePointInsideBox(t *testing.T) {
	box, err := shape.NewBox(math3.Vec3{1, 1, 1}, 0)
	require.NoError(t, err)
	id := body.NewID(1, 1)
	b := body.NewBody(id, body.Static, math3.Zero3, math3.IdentityQuat(), box)

	bodies := fakeBodies{id: b}
	bp := &fakeBroadphase{payloads: []int32{int32(id.Index())}}

	hits := CollidePoint(math3.Vec3{0, 0, 0}, bodies, bp, resolverFor(id), nil)
	require.Len(t, hits, 1)
	assert.Equal(t, id, hits[0])
}

func TestCastShapeClosestSweepsIntoFloor(t *testing.T) {
	floorBox, err := shape.NewBox(math3.Vec3{10, 0.5, 10}, 0)
	require.NoError(t, err)
	idFloor := body.NewID(1, 1)
	floor := body.NewBody(idFloor, body.Static, math3.Vec3{0, 0, 0}, math3.IdentityQuat(), floorBox)

	bodies := fakeBodies{idFloor: floor}
	bp := &fakeBroadphase{payloads: []int32{int32(idFloor.Index())}}

	mover, err := shape.NewSphere(0.5)
	require.NoError(t, err)
	start := math3.Transform{Position: math3.Vec3{0, 3, 0}, Orientation: math3.IdentityQuat()}

	hit, found := CastShapeClosest(mover, start, math3.Vec3{0, -10, 0}, bodies, bp, resolverFor(idFloor), nil)

	require.True(t, found)
	assert.Equal(t, idFloor, hit.Body)
}
