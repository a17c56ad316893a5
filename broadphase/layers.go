package broadphase

import "sort"

// ObjectLayer groups bodies for narrow, user-defined collision rules
// (spec.md §3: "object layers filter at the pair-collection stage").
type ObjectLayer uint16

// BroadphaseLayer groups object layers into coarser buckets the DBVT
// partitions into separate trees, so e.g. static geometry never shares a
// tree with fast-moving debris (spec.md §3).
type BroadphaseLayer uint8

// LayerInterface maps object layers to broadphase layers and decides
// whether two broadphase layers should ever be tested against each
// other, mirroring Jolt's ObjectVsBroadPhaseLayerFilter split.
type LayerInterface struct {
	objectToBroadphase map[ObjectLayer]BroadphaseLayer
	broadphaseCount    int
	pairEnabled        map[[2]BroadphaseLayer]bool
}

// NewLayerInterface returns an empty layer registry.
func NewLayerInterface() *LayerInterface {
	return &LayerInterface{
		objectToBroadphase: make(map[ObjectLayer]BroadphaseLayer),
		pairEnabled:        make(map[[2]BroadphaseLayer]bool),
	}
}

// AddBroadphaseLayer registers a new broadphase layer bucket.
func (l *LayerInterface) AddBroadphaseLayer(layer BroadphaseLayer) {
	if int(layer)+1 > l.broadphaseCount {
		l.broadphaseCount = int(layer) + 1
	}
}

// MapObjectToBroadphase assigns an object layer to a broadphase bucket.
func (l *LayerInterface) MapObjectToBroadphase(object ObjectLayer, broadphase BroadphaseLayer) {
	l.objectToBroadphase[object] = broadphase
	l.AddBroadphaseLayer(broadphase)
}

// EnableBroadphasePair allows (or, called again with enabled=false,
// forbids) collisions between two broadphase layers.
func (l *LayerInterface) EnableBroadphasePair(a, b BroadphaseLayer, enabled bool) {
	l.pairEnabled[orderedPair(a, b)] = enabled
}

func orderedPair(a, b BroadphaseLayer) [2]BroadphaseLayer {
	if a > b {
		a, b = b, a
	}
	return [2]BroadphaseLayer{a, b}
}

// Broadphase returns the broadphase layer an object layer maps to.
func (l *LayerInterface) Broadphase(object ObjectLayer) BroadphaseLayer {
	return l.objectToBroadphase[object]
}

// ObjectLayerRegistered reports whether object was ever passed to
// MapObjectToBroadphase, distinguishing a deliberate mapping to
// BroadphaseLayer 0 from a layer nobody registered at all — the world
// package uses this to reject body creation against an unknown object
// layer (spec.md §7's configuration-error mode).
func (l *LayerInterface) ObjectLayerRegistered(object ObjectLayer) (BroadphaseLayer, bool) {
	bp, ok := l.objectToBroadphase[object]
	return bp, ok
}

// ShouldCollide reports whether two broadphase layers are allowed to
// produce pairs at all.
func (l *LayerInterface) ShouldCollide(a, b BroadphaseLayer) bool {
	return l.pairEnabled[orderedPair(a, b)]
}

// BroadphaseLayerCount returns one more than the highest broadphase layer
// registered so far (0 when none is registered).
func (l *LayerInterface) BroadphaseLayerCount() int { return l.broadphaseCount }

// ObjectLayerFilter decides, at pair-collection time, whether two object
// layers should actually be tested against each other (finer-grained
// than the broadphase-layer gate).
type ObjectLayerFilter func(a, b ObjectLayer) bool

// BodyPair is one candidate colliding pair, identified by the int32
// payload each side was inserted into the tree with (a body's BodyID
// index). Pairs are always reported with the smaller payload first,
// which is also the module's deterministic ordering for downstream
// contact/constraint processing (spec.md §8 determinism requirement).
type BodyPair struct {
	A, B int32
}

func newBodyPair(a, b int32) BodyPair {
	if a > b {
		a, b = b, a
	}
	return BodyPair{A: a, B: b}
}

// CollectPairs finds every pair of overlapping leaves across all trees
// whose broadphase layers are allowed to collide, applies objectLayerOf
// + filter to narrow further, and returns them sorted by (A, B) so two
// runs over the same body set produce identical pair order (spec.md §8).
func CollectPairs(trees map[BroadphaseLayer]*Tree, layers *LayerInterface, objectLayerOf func(payload int32) ObjectLayer, filter ObjectLayerFilter) []BodyPair {
	seen := make(map[BodyPair]bool)
	var pairs []BodyPair

	layerIDs := make([]BroadphaseLayer, 0, len(trees))
	for id := range trees {
		layerIDs = append(layerIDs, id)
	}
	sort.Slice(layerIDs, func(i, j int) bool { return layerIDs[i] < layerIDs[j] })

	for _, layerA := range layerIDs {
		treeA := trees[layerA]
		for _, layerB := range layerIDs {
			if layerB < layerA {
				continue
			}
			if !layers.ShouldCollide(layerA, layerB) {
				continue
			}
			treeB := trees[layerB]
			collectTreePairs(treeA, treeB, layerA == layerB, objectLayerOf, filter, seen, &pairs)
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

func collectTreePairs(treeA, treeB *Tree, sameTree bool, objectLayerOf func(int32) ObjectLayer, filter ObjectLayerFilter, seen map[BodyPair]bool, out *[]BodyPair) {
	for pa, nodeA := range treeA.payloadOf {
		box := treeA.Box(nodeA)
		treeB.QueryAABB(box, func(pb int32) {
			if sameTree && pb <= pa {
				return
			}
			if !sameTree && pa == pb {
				return
			}
			oa, ob := objectLayerOf(pa), objectLayerOf(pb)
			if filter != nil && !filter(oa, ob) {
				return
			}
			pair := newBodyPair(pa, pb)
			if seen[pair] {
				return
			}
			seen[pair] = true
			*out = append(*out, pair)
		})
	}
}
