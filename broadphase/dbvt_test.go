package broadphase

import (
	"testing"

	"github.com/ironvale/physics3d/math3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeInsertAndQuery(t *testing.T) {
	tree := NewTree()
	a := tree.Insert(1, math3.FromCenterHalfExtents(math3.Vec3{0, 0, 0}, math3.Vec3{1, 1, 1}))
	b := tree.Insert(2, math3.FromCenterHalfExtents(math3.Vec3{10, 0, 0}, math3.Vec3{1, 1, 1}))
	require.NotEqual(t, a, b)

	var hits []int32
	tree.QueryAABB(math3.FromCenterHalfExtents(math3.Vec3{0.5, 0, 0}, math3.Vec3{0.5, 0.5, 0.5}), func(payload int32) {
		hits = append(hits, payload)
	})
	assert.Equal(t, []int32{1}, hits)
}

func TestTreeUpdateSkipsWhenStillContained(t *testing.T) {
	tree := NewTree()
	id := tree.Insert(1, math3.FromCenterHalfExtents(math3.Vec3{0, 0, 0}, math3.Vec3{1, 1, 1}))
	moved := tree.Update(id, math3.FromCenterHalfExtents(math3.Vec3{0.01, 0, 0}, math3.Vec3{1, 1, 1}), math3.Zero3)
	assert.False(t, moved)
}

func TestCollectPairsIsDeterministic(t *testing.T) {
	layers := NewLayerInterface()
	layers.MapObjectToBroadphase(0, 0)
	layers.EnableBroadphasePair(0, 0, true)
	bp := New(layers)

	bp.Insert(3, 0, math3.FromCenterHalfExtents(math3.Vec3{0, 0, 0}, math3.Vec3{1, 1, 1}))
	bp.Insert(1, 0, math3.FromCenterHalfExtents(math3.Vec3{0.5, 0, 0}, math3.Vec3{1, 1, 1}))
	bp.Insert(2, 0, math3.FromCenterHalfExtents(math3.Vec3{0.25, 0, 0}, math3.Vec3{1, 1, 1}))

	pairs := bp.CollectPairs(func(int32) ObjectLayer { return 0 }, nil)
	require.Len(t, pairs, 3)
	for i := 1; i < len(pairs); i++ {
		less := pairs[i-1].A < pairs[i].A || (pairs[i-1].A == pairs[i].A && pairs[i-1].B < pairs[i].B)
		assert.True(t, less)
	}
}
