// Package broadphase implements the dynamic bounding-volume tree
// spec.md §3 calls for: a DBVT keyed on opaque caller-supplied payloads,
// with margin-fattened leaf boxes so small motion doesn't force a
// re-insert every step (spec.md §3: "leaf AABBs are fattened by a margin").
package broadphase

import "github.com/ironvale/physics3d/math3"

// NodeID identifies a leaf previously returned by Insert. Node slots are
// numbered from 0; the invalid handle is -1.
type NodeID int32

const invalidNode NodeID = -1

// Margin fattens every inserted/updated leaf box so that small motions
// don't require a tree update, per spec.md §3.
const Margin = 0.05

// PredictionExpansion additionally expands a leaf's fattened box along
// its velocity direction, letting fast-but-not-CCD bodies still produce
// broadphase pairs one step ahead of actually overlapping.
const PredictionExpansion = 2.0

type dbvtNode struct {
	box         math3.AABB
	parent      NodeID
	left, right NodeID
	payload     int32 // caller-supplied id; only meaningful on leaves
	isLeaf      bool
}

// Tree is a dynamic AABB tree over opaque int32 payloads (bodies
// register themselves with a payload of their own BodyID index).
type Tree struct {
	nodes     []dbvtNode
	root      NodeID
	freeList  []NodeID
	payloadOf map[int32]NodeID
}

// NewTree returns an empty DBVT.
func NewTree() *Tree {
	return &Tree{root: invalidNode, payloadOf: make(map[int32]NodeID)}
}

func (t *Tree) allocNode() NodeID {
	if n := len(t.freeList); n > 0 {
		id := t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		return id
	}
	t.nodes = append(t.nodes, dbvtNode{})
	return NodeID(len(t.nodes) - 1)
}

func (t *Tree) node(id NodeID) *dbvtNode { return &t.nodes[id] }

// Insert adds payload with world-space box, fattened by Margin, and
// returns its node handle.
func (t *Tree) Insert(payload int32, box math3.AABB) NodeID {
	id := t.allocNode()
	*t.node(id) = dbvtNode{
		box:     box.Expand(Margin),
		parent:  invalidNode,
		left:    invalidNode,
		right:   invalidNode,
		payload: payload,
		isLeaf:  true,
	}
	t.payloadOf[payload] = id
	t.insertLeaf(id)
	return id
}

// Remove detaches a leaf from the tree and frees its node slot.
func (t *Tree) Remove(id NodeID) {
	t.removeLeaf(id)
	delete(t.payloadOf, t.node(id).payload)
	*t.node(id) = dbvtNode{}
	t.freeList = append(t.freeList, id)
}

// Update moves a leaf to a new box if the new (unfattened) box is no
// longer contained by the leaf's current fattened box, returning whether
// a re-insertion happened (the caller uses this to decide whether to
// recompute broadphase pairs touching this leaf).
func (t *Tree) Update(id NodeID, box math3.AABB, velocity math3.Vec3) bool {
	n := t.node(id)
	if n.box.Contains(box) {
		return false
	}
	fattened := box.Expand(Margin)
	pred := velocity.Mul(PredictionExpansion)
	if pred.X() < 0 {
		fattened.Min[0] += pred.X()
	} else {
		fattened.Max[0] += pred.X()
	}
	if pred.Y() < 0 {
		fattened.Min[1] += pred.Y()
	} else {
		fattened.Max[1] += pred.Y()
	}
	if pred.Z() < 0 {
		fattened.Min[2] += pred.Z()
	} else {
		fattened.Max[2] += pred.Z()
	}
	t.removeLeaf(id)
	n.box = fattened
	t.insertLeaf(id)
	return true
}

func (t *Tree) insertLeaf(leaf NodeID) {
	if t.root == invalidNode {
		t.root = leaf
		t.node(leaf).parent = invalidNode
		return
	}

	box := t.node(leaf).box
	sibling := t.root
	for !t.node(sibling).isLeaf {
		n := t.node(sibling)
		left, right := n.left, n.right
		area := n.box.SurfaceArea()
		combined := math3.Union(n.box, box)
		combinedArea := combined.SurfaceArea()
		costHere := 2 * combinedArea

		inheritCost := 2 * (combinedArea - area)
		costLeft := childCost(t, left, box) + inheritCost
		costRight := childCost(t, right, box) + inheritCost

		if costHere < costLeft && costHere < costRight {
			break
		}
		if costLeft < costRight {
			sibling = left
		} else {
			sibling = right
		}
	}

	oldParent := t.node(sibling).parent
	newParent := t.allocNode()
	t.node(newParent).parent = oldParent
	t.node(newParent).box = math3.Union(box, t.node(sibling).box)
	t.node(newParent).isLeaf = false

	if oldParent != invalidNode {
		p := t.node(oldParent)
		if p.left == sibling {
			p.left = newParent
		} else {
			p.right = newParent
		}
		t.node(newParent).left = sibling
		t.node(newParent).right = leaf
		t.node(sibling).parent = newParent
		t.node(leaf).parent = newParent
	} else {
		t.node(newParent).left = sibling
		t.node(newParent).right = leaf
		t.node(sibling).parent = newParent
		t.node(leaf).parent = newParent
		t.root = newParent
	}

	t.refitFrom(t.node(leaf).parent)
}

func childCost(t *Tree, child NodeID, box math3.AABB) float32 {
	n := t.node(child)
	if n.isLeaf {
		return math3.Union(n.box, box).SurfaceArea()
	}
	return math3.Union(n.box, box).SurfaceArea() - n.box.SurfaceArea()
}

func (t *Tree) removeLeaf(leaf NodeID) {
	if leaf == t.root {
		t.root = invalidNode
		return
	}
	parent := t.node(leaf).parent
	grandparent := t.node(parent).parent
	var sibling NodeID
	if t.node(parent).left == leaf {
		sibling = t.node(parent).right
	} else {
		sibling = t.node(parent).left
	}

	if grandparent != invalidNode {
		gp := t.node(grandparent)
		if gp.left == parent {
			gp.left = sibling
		} else {
			gp.right = sibling
		}
		t.node(sibling).parent = grandparent
		t.freeList = append(t.freeList, parent)
		*t.node(parent) = dbvtNode{}
		t.refitFrom(grandparent)
	} else {
		t.root = sibling
		t.node(sibling).parent = invalidNode
		t.freeList = append(t.freeList, parent)
		*t.node(parent) = dbvtNode{}
	}
}

func (t *Tree) refitFrom(node NodeID) {
	for node != invalidNode {
		n := t.node(node)
		n.box = math3.Union(t.node(n.left).box, t.node(n.right).box)
		node = n.parent
	}
}

// QueryAABB visits every payload whose fattened leaf box overlaps box.
func (t *Tree) QueryAABB(box math3.AABB, visit func(payload int32)) {
	if t.root == invalidNode {
		return
	}
	t.queryNode(t.root, box, visit)
}

func (t *Tree) queryNode(id NodeID, box math3.AABB, visit func(int32)) {
	n := t.node(id)
	if !n.box.Intersects(box) {
		return
	}
	if n.isLeaf {
		visit(n.payload)
		return
	}
	t.queryNode(n.left, box, visit)
	t.queryNode(n.right, box, visit)
}

// QueryRay visits every payload whose fattened leaf box the ray crosses
// within [0, maxFraction].
func (t *Tree) QueryRay(ray math3.Ray, maxFraction float32, visit func(payload int32)) {
	if t.root == invalidNode {
		return
	}
	t.queryRayNode(t.root, ray, maxFraction, visit)
}

func (t *Tree) queryRayNode(id NodeID, ray math3.Ray, maxFraction float32, visit func(int32)) {
	n := t.node(id)
	if _, _, hit := ray.IntersectAABB(n.box, maxFraction); !hit {
		return
	}
	if n.isLeaf {
		visit(n.payload)
		return
	}
	t.queryRayNode(n.left, ray, maxFraction, visit)
	t.queryRayNode(n.right, ray, maxFraction, visit)
}

// Box returns the current fattened box of a node, mainly for tests.
func (t *Tree) Box(id NodeID) math3.AABB { return t.node(id).box }
