package ccd

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

type fakeBroadphase struct {
	payloads []int32
}

func (f *fakeBroadphase) QueryAABB(box math3.AABB, visit func(payload int32)) {
	for _, p := range f.payloads {
		visit(p)
	}
}

func TestSweepClampsThroughWall(t *testing.T) {
	idBullet := body.NewID(1, 1)
	idWall := body.NewID(2, 1)

	sphere, err := shape.NewSphere(0.1)
	require.NoError(t, err)
	bullet := body.NewBody(idBullet, body.Dynamic, math3.Vec3{-10, 0, 0}, math3.IdentityQuat(), sphere)
	bullet.Motion.Quality = body.LinearCast

	wallBox, err := shape.NewBox(math3.Vec3{0.1, 5, 5}, 0)
	require.NoError(t, err)
	wall := body.NewBody(idWall, body.Static, math3.Vec3{0, 0, 0}, math3.IdentityQuat(), wallBox)

	bodies := fakeBodies{idBullet: bullet, idWall: wall}
	bp := &fakeBroadphase{payloads: []int32{int32(idWall.Index())}}
	resolve := func(payload int32) (body.ID, bool) {
		if payload == int32(idWall.Index()) {
			return idWall, true
		}
		return body.ID{}, false
	}

	prevPosition := bullet.Position
	bullet.Position = math3.Vec3{10, 0, 0} // simulate a huge single-step displacement through the wall

	cache := contact.NewCache()
	hit, found := Sweep(idBullet, prevPosition, bodies, bp, resolve, cache, DefaultSettings())

	require.True(t, found)
	assert.Equal(t, idWall, hit.Other)
	assert.Less(t, bullet.Position.X(), float32(0))
	assert.Greater(t, bullet.Position.X(), float32(-10))

	ct, ok := cache.Find(idBullet, idWall, shape.EmptySubShapeID, shape.EmptySubShapeID)
	require.True(t, ok)
	assert.True(t, ct.CCD)
}

func TestSweepSkipsDiscreteMotionQuality(t *testing.T) {
	idBullet := body.NewID(1, 1)
	sphere, err := shape.NewSphere(0.1)
	require.NoError(t, err)
	bullet := body.NewBody(idBullet, body.Dynamic, math3.Vec3{-10, 0, 0}, math3.IdentityQuat(), sphere)
	// Quality left at its zero value, Discrete.

	bodies := fakeBodies{idBullet: bullet}
	bp := &fakeBroadphase{}
	resolve := func(payload int32) (body.ID, bool) { return body.ID{}, false }

	prevPosition := bullet.Position
	bullet.Position = math3.Vec3{10, 0, 0}

	cache := contact.NewCache()
	_, found := Sweep(idBullet, prevPosition, bodies, bp, resolve, cache, DefaultSettings())
	assert.False(t, found)
}

func TestNeedsSweepThreshold(t *testing.T) {
	sphere, err := shape.NewSphere(0.5)
	require.NoError(t, err)
	settings := DefaultSettings()

	assert.False(t, NeedsSweep(sphere, math3.Vec3{0.01, 0, 0}, settings))
	assert.True(t, NeedsSweep(sphere, math3.Vec3{5, 0, 0}, settings))
}
