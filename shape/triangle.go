package shape

import "github.com/ironvale/physics3d/math3"

// activeEdge bits, one per triangle edge (v0-v1, v1-v2, v2-v0).
const (
	ActiveEdge0 uint8 = 1 << iota
	ActiveEdge1
	ActiveEdge2
	AllEdgesActive = ActiveEdge0 | ActiveEdge1 | ActiveEdge2
)

// Triangle is the leaf shape produced when descending into a
// TriangleMesh: a single triangle with a normal, an active-edge mask
// (spec.md §4.1: "derived offline from dihedral angles against neighbours
// using a cosine threshold") and a material index carried through from
// the mesh.
type Triangle struct {
	V0, V1, V2   math3.Vec3
	ActiveEdges  uint8
	MaterialIdx  uint16
}

func (t *Triangle) normal() math3.Vec3 {
	n := t.V1.Sub(t.V0).Cross(t.V2.Sub(t.V0))
	if n.LenSqr() < math3.Epsilon {
		return math3.UnitY
	}
	return n.Normalize()
}

func (t *Triangle) Type() Type { return TypeTriangleMesh }

func (t *Triangle) AABB(tr math3.Transform) math3.AABB {
	box := math3.NewAABB(tr.Point(t.V0), tr.Point(t.V0))
	box = box.ExpandByPoint(tr.Point(t.V1))
	box = box.ExpandByPoint(tr.Point(t.V2))
	return box
}

func (t *Triangle) SupportPoint(direction math3.Vec3, _ SupportMode) math3.Vec3 {
	best := t.V0
	bestDot := best.Dot(direction)
	for _, v := range [2]math3.Vec3{t.V1, t.V2} {
		d := v.Dot(direction)
		if d > bestDot {
			bestDot = d
			best = v
		}
	}
	return best
}

func (t *Triangle) CenterOfMass() math3.Vec3 {
	return t.V0.Add(t.V1).Add(t.V2).Mul(1.0 / 3.0)
}

func (t *Triangle) Volume() float32 { return 0 }

func (t *Triangle) MassProperties(float32) (MassProperties, bool) { return MassProperties{}, false }

func (t *Triangle) SurfaceNormal(math3.Vec3, SubShapeID) math3.Vec3 { return t.normal() }

func (t *Triangle) SupportingFace(direction math3.Vec3, _ SubShapeID) Face {
	if t.normal().Dot(direction) < 0 {
		return Face{t.V0, t.V2, t.V1}
	}
	return Face{t.V0, t.V1, t.V2}
}

func (t *Triangle) GetLeafShape(id SubShapeID) (Shape, SubShapeID) { return t, id }

func (t *Triangle) GetSubShapeTransformedShape(id SubShapeID, accumulated math3.Transform) (Shape, math3.Transform, SubShapeID) {
	return t, accumulated, id
}

func (t *Triangle) ConvexRadius() float32 { return 0 }

// edgeActive reports whether edge index (0,1,2) is active, i.e. not an
// internal seam that enhanced-internal-edge-removal should suppress.
func (t *Triangle) edgeActive(edge int) bool {
	switch edge {
	case 0:
		return t.ActiveEdges&ActiveEdge0 != 0
	case 1:
		return t.ActiveEdges&ActiveEdge1 != 0
	default:
		return t.ActiveEdges&ActiveEdge2 != 0
	}
}

// ComputeActiveEdges derives active-edge flags for a set of connected
// triangles by comparing dihedral angles between triangles that share an
// edge against cosThreshold; edges shallower than the threshold (i.e.
// nearly coplanar/convex from the outside) are marked inactive. This is
// the offline step spec.md §4.1 describes as "derived offline" — callers
// run it once when building a TriangleMesh, not per step.
func ComputeActiveEdges(triangles []Triangle, cosThreshold float32) {
	type edgeKey struct{ a, b uint64 }
	key := func(p, q math3.Vec3) edgeKey {
		ka, kb := vertexKey(p), vertexKey(q)
		if ka > kb {
			ka, kb = kb, ka
		}
		return edgeKey{ka, kb}
	}
	owners := make(map[edgeKey][]int, len(triangles)*3/2)
	for i := range triangles {
		t := &triangles[i]
		owners[key(t.V0, t.V1)] = append(owners[key(t.V0, t.V1)], i<<2|0)
		owners[key(t.V1, t.V2)] = append(owners[key(t.V1, t.V2)], i<<2|1)
		owners[key(t.V2, t.V0)] = append(owners[key(t.V2, t.V0)], i<<2|2)
	}
	for i := range triangles {
		triangles[i].ActiveEdges = 0
	}
	for _, owner := range owners {
		if len(owner) != 2 {
			// Boundary edge (mesh border): always active.
			for _, packed := range owner {
				ti, e := packed>>2, packed&3
				setActive(&triangles[ti], e)
			}
			continue
		}
		t0 := &triangles[owner[0]>>2]
		t1 := &triangles[owner[1]>>2]
		cosAngle := t0.normal().Dot(t1.normal())
		if cosAngle < cosThreshold {
			setActive(&triangles[owner[0]>>2], owner[0]&3)
			setActive(&triangles[owner[1]>>2], owner[1]&3)
		}
	}
}

func setActive(t *Triangle, edge int) {
	switch edge {
	case 0:
		t.ActiveEdges |= ActiveEdge0
	case 1:
		t.ActiveEdges |= ActiveEdge1
	default:
		t.ActiveEdges |= ActiveEdge2
	}
}

func vertexKey(v math3.Vec3) uint64 {
	// Quantize to merge vertices that are bit-identical, which is all a
	// watertight mesh needs for edge adjacency.
	qx := uint64(uint32(v.X() * 1024))
	qy := uint64(uint32(v.Y() * 1024))
	qz := uint64(uint32(v.Z() * 1024))
	return qx<<42 ^ qy<<21 ^ qz
}
