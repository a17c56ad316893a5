package shape

import (
	"fmt"
	"sort"

	"github.com/ironvale/physics3d/math3"
)

// meshBVHNode is one node of the mesh's median-split bounding volume
// hierarchy. Leaves store a contiguous run into TriangleMesh.order.
type meshBVHNode struct {
	box         math3.AABB
	left, right int // child node indices, -1 if leaf
	start, count int
}

// TriangleMesh wraps an immutable BVH of static triangles. It is treated
// as static-only in practice (spec.md §4.6 mirrors this for Plane; the
// same applies here because meshes rarely have meaningful mass).
type TriangleMesh struct {
	Triangles []Triangle
	nodes     []meshBVHNode
	order     []int
}

// NewTriangleMesh validates triangle count, derives active edges at the
// given dihedral cosine threshold, and builds the BVH.
func NewTriangleMesh(triangles []Triangle, activeEdgeCosThreshold float32) (*TriangleMesh, error) {
	if len(triangles) == 0 {
		return nil, fmt.Errorf("shape: triangle mesh needs at least 1 triangle: %w", ErrDegenerateShape)
	}
	ComputeActiveEdges(triangles, activeEdgeCosThreshold)
	m := &TriangleMesh{Triangles: triangles}
	m.build()
	return m, nil
}

func (m *TriangleMesh) triBox(i int) math3.AABB {
	t := &m.Triangles[i]
	b := math3.NewAABB(t.V0, t.V0)
	return b.ExpandByPoint(t.V1).ExpandByPoint(t.V2)
}

func (m *TriangleMesh) build() {
	m.order = make([]int, len(m.Triangles))
	for i := range m.order {
		m.order[i] = i
	}
	m.nodes = make([]meshBVHNode, 0, 2*len(m.Triangles))
	m.buildRange(0, len(m.order))
}

const meshLeafSize = 4

func (m *TriangleMesh) buildRange(start, end int) int {
	box := math3.EmptyAABB()
	for i := start; i < end; i++ {
		box = math3.Union(box, m.triBox(m.order[i]))
	}
	idx := len(m.nodes)
	m.nodes = append(m.nodes, meshBVHNode{box: box, left: -1, right: -1, start: start, count: end - start})
	if end-start <= meshLeafSize {
		return idx
	}
	extents := box.Extents()
	axis := 0
	if extents.Y() > extents.X() {
		axis = 1
	}
	if extents.Z() > extents[axis] {
		axis = 2
	}
	sub := m.order[start:end]
	sort.Slice(sub, func(a, b int) bool {
		ca := m.triBox(sub[a]).Center()
		cb := m.triBox(sub[b]).Center()
		return ca[axis] < cb[axis]
	})
	mid := start + (end-start)/2
	left := m.buildRange(start, mid)
	right := m.buildRange(mid, end)
	m.nodes[idx].left = left
	m.nodes[idx].right = right
	m.nodes[idx].count = 0
	return idx
}

// QueryAABB visits every triangle index whose AABB overlaps box.
func (m *TriangleMesh) QueryAABB(box math3.AABB, visit func(triIndex int)) {
	if len(m.nodes) == 0 {
		return
	}
	m.queryNode(0, box, visit)
}

func (m *TriangleMesh) queryNode(nodeIdx int, box math3.AABB, visit func(int)) {
	n := &m.nodes[nodeIdx]
	if !n.box.Intersects(box) {
		return
	}
	if n.left < 0 {
		for i := n.start; i < n.start+n.count; i++ {
			visit(m.order[i])
		}
		return
	}
	m.queryNode(n.left, box, visit)
	m.queryNode(n.right, box, visit)
}

// QueryRay visits every triangle index whose AABB the ray crosses within
// [0, maxT].
func (m *TriangleMesh) QueryRay(r math3.Ray, maxT float32, visit func(triIndex int)) {
	if len(m.nodes) == 0 {
		return
	}
	m.queryRayNode(0, r, maxT, visit)
}

func (m *TriangleMesh) queryRayNode(nodeIdx int, r math3.Ray, maxT float32, visit func(int)) {
	n := &m.nodes[nodeIdx]
	if _, _, hit := r.IntersectAABB(n.box, maxT); !hit {
		return
	}
	if n.left < 0 {
		for i := n.start; i < n.start+n.count; i++ {
			visit(m.order[i])
		}
		return
	}
	m.queryRayNode(n.left, r, maxT, visit)
	m.queryRayNode(n.right, r, maxT, visit)
}

func (m *TriangleMesh) Type() Type { return TypeTriangleMesh }

func (m *TriangleMesh) AABB(t math3.Transform) math3.AABB {
	if len(m.nodes) == 0 {
		return math3.EmptyAABB()
	}
	return m.nodes[0].box.Transform(t.Position, t.Orientation)
}

func (m *TriangleMesh) SupportPoint(direction math3.Vec3, mode SupportMode) math3.Vec3 {
	best := m.Triangles[0].V0
	bestDot := best.Dot(direction)
	for i := range m.Triangles {
		t := &m.Triangles[i]
		for _, v := range [3]math3.Vec3{t.V0, t.V1, t.V2} {
			d := v.Dot(direction)
			if d > bestDot {
				bestDot = d
				best = v
			}
		}
	}
	return best
}

func (m *TriangleMesh) CenterOfMass() math3.Vec3 { return math3.Zero3 }

func (m *TriangleMesh) Volume() float32 { return 0 }

// MassProperties is undefined for triangle meshes per spec.md §3/§7; the
// caller must supply a MassOverride.
func (m *TriangleMesh) MassProperties(float32) (MassProperties, bool) { return MassProperties{}, false }

func (m *TriangleMesh) SurfaceNormal(localPoint math3.Vec3, id SubShapeID) math3.Vec3 {
	idx, _ := id.Pop(24)
	if int(idx) < len(m.Triangles) {
		return m.Triangles[idx].normal()
	}
	return math3.UnitY
}

func (m *TriangleMesh) SupportingFace(direction math3.Vec3, id SubShapeID) Face {
	idx, _ := id.Pop(24)
	if int(idx) < len(m.Triangles) {
		return m.Triangles[idx].SupportingFace(direction, EmptySubShapeID)
	}
	return nil
}

// GetLeafShape resolves a sub-shape id's leading 24 bits to a triangle
// index and returns that Triangle as the leaf shape.
func (m *TriangleMesh) GetLeafShape(id SubShapeID) (Shape, SubShapeID) {
	idx, remainder := id.Pop(24)
	if int(idx) >= len(m.Triangles) {
		return m, remainder
	}
	return &m.Triangles[idx], remainder
}

func (m *TriangleMesh) GetSubShapeTransformedShape(id SubShapeID, accumulated math3.Transform) (Shape, math3.Transform, SubShapeID) {
	leaf, remainder := m.GetLeafShape(id)
	return leaf, accumulated, remainder
}

func (m *TriangleMesh) ConvexRadius() float32 { return 0 }

// TriangleSubShapeID packs a triangle index into a fresh sub-shape id.
func TriangleSubShapeID(triIndex int) SubShapeID {
	return EmptySubShapeID.Push(uint32(triIndex), 24)
}
