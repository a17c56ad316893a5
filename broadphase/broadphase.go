package broadphase

import (
	"sort"

	"github.com/ironvale/physics3d/math3"
)

// Broadphase owns one DBVT per broadphase layer and the layer registry
// needed to know which layers may ever produce pairs.
type Broadphase struct {
	Layers *LayerInterface
	trees  map[BroadphaseLayer]*Tree
	handle map[int32]BroadphaseLayer // payload -> which tree it lives in
}

// New builds a Broadphase from an already-populated layer registry.
func New(layers *LayerInterface) *Broadphase {
	return &Broadphase{
		Layers: layers,
		trees:  make(map[BroadphaseLayer]*Tree),
		handle: make(map[int32]BroadphaseLayer),
	}
}

func (bp *Broadphase) treeFor(layer BroadphaseLayer) *Tree {
	t, ok := bp.trees[layer]
	if !ok {
		t = NewTree()
		bp.trees[layer] = t
	}
	return t
}

// Insert adds a body's payload (its BodyID index) into the tree for its
// object layer's broadphase bucket.
func (bp *Broadphase) Insert(payload int32, objectLayer ObjectLayer, box math3.AABB) NodeID {
	bpLayer := bp.Layers.Broadphase(objectLayer)
	bp.handle[payload] = bpLayer
	return bp.treeFor(bpLayer).Insert(payload, box)
}

// Remove detaches a body's leaf from whichever tree it lives in.
func (bp *Broadphase) Remove(payload int32, node NodeID) {
	layer, ok := bp.handle[payload]
	if !ok {
		return
	}
	bp.treeFor(layer).Remove(node)
	delete(bp.handle, payload)
}

// Update re-fits a body's leaf, returning whether a re-insert happened.
func (bp *Broadphase) Update(payload int32, node NodeID, box math3.AABB, velocity math3.Vec3) bool {
	layer, ok := bp.handle[payload]
	if !ok {
		return false
	}
	return bp.treeFor(layer).Update(node, box, velocity)
}

// CollectPairs returns every deterministic candidate pair across all
// layers allowed to collide with each other.
func (bp *Broadphase) CollectPairs(objectLayerOf func(payload int32) ObjectLayer, filter ObjectLayerFilter) []BodyPair {
	return CollectPairs(bp.trees, bp.Layers, objectLayerOf, filter)
}

// QueryAABB visits every payload across every registered layer whose leaf
// box overlaps box, layer by layer in increasing broadphase-layer order;
// within one layer, payloads arrive in tree traversal order.
func (bp *Broadphase) QueryAABB(box math3.AABB, visit func(payload int32)) {
	for _, layer := range bp.sortedLayers() {
		bp.trees[layer].QueryAABB(box, visit)
	}
}

// CastRay visits every payload across every registered layer whose leaf
// box the ray crosses within [0, maxFraction].
func (bp *Broadphase) CastRay(ray math3.Ray, maxFraction float32, visit func(payload int32)) {
	for _, layer := range bp.sortedLayers() {
		bp.trees[layer].QueryRay(ray, maxFraction, visit)
	}
}

func (bp *Broadphase) sortedLayers() []BroadphaseLayer {
	ids := make([]BroadphaseLayer, 0, len(bp.trees))
	for id := range bp.trees {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
