package collision

import (
	"github.com/ironvale/physics3d/math3"
	"github.com/ironvale/physics3d/shape"
)

// PairResult is the outcome of a CollideShapes dispatch: either a
// separation distance (Intersect == false, Manifold empty) or a contact
// manifold ready for the solver.
type PairResult struct {
	Intersect bool
	Distance  float32
	Manifold  Manifold
	SubShapeA shape.SubShapeID
	SubShapeB shape.SubShapeID
}

// SpeculativeMargin is the extra separation CollideShapes still reports a
// (negative-penetration) manifold for, letting the solver create
// speculative contacts before shapes actually touch (spec.md §5).
const SpeculativeMargin = 0.02

// CollideShapes dispatches on (a.Type(), b.Type()), recursing through
// composite shapes (Compound, Transformed, OffsetCenterOfMass,
// TriangleMesh) until both sides are convex primitives, then runs
// GJK/EPA and builds a manifold. Results are appended to out.
func CollideShapes(a shape.Shape, ta math3.Transform, idA shape.SubShapeID, b shape.Shape, tb math3.Transform, idB shape.SubShapeID, out *[]PairResult) {
	// A Triangle is tagged TypeTriangleMesh (it is the mesh's leaf shape)
	// but is itself convex, so it is excluded from the composite check
	// even though its Type() reports the mesh's tag.
	_, aIsLeafTriangle := a.(*shape.Triangle)
	_, bIsLeafTriangle := b.(*shape.Triangle)

	if !aIsLeafTriangle && shape.IsComposite(a.Type()) {
		collideCompositeVsAny(a, ta, idA, b, tb, idB, out, true)
		return
	}
	if !bIsLeafTriangle && shape.IsComposite(b.Type()) {
		collideCompositeVsAny(b, tb, idB, a, ta, idA, out, false)
		return
	}
	collideConvexPair(a, ta, idA, b, tb, idB, out)
}

// collideCompositeVsAny descends composite into its children/triangles
// and recurses. compositeIsA records which side the composite was so the
// recursive call restores (a, b) ordering.
func collideCompositeVsAny(composite shape.Shape, tc math3.Transform, idC shape.SubShapeID, other shape.Shape, to math3.Transform, idO shape.SubShapeID, out *[]PairResult, compositeIsA bool) {
	switch c := composite.(type) {
	case *shape.Compound:
		otherBoxInCompoundLocal := aabbInSpace(other, to, tc)
		c.QueryAABB(otherBoxInCompoundLocal, func(childIdx int) {
			ch := c.Children[childIdx]
			childTransform := math3.Transform{Position: ch.LocalPosition, Orientation: ch.LocalRotation}.Then(tc)
			childID := idC.Push(uint32(childIdx), ch.Bits)
			if compositeIsA {
				CollideShapes(ch.Shape, childTransform, childID, other, to, idO, out)
			} else {
				CollideShapes(other, to, idO, ch.Shape, childTransform, childID, out)
			}
		})
	case *shape.Transformed:
		childTransform := math3.Transform{Position: c.LocalPosition, Orientation: c.LocalRotation}.Then(tc)
		if compositeIsA {
			CollideShapes(c.Inner, childTransform, idC, other, to, idO, out)
		} else {
			CollideShapes(other, to, idO, c.Inner, childTransform, idC, out)
		}
	case *shape.OffsetCenterOfMass:
		if compositeIsA {
			CollideShapes(c.Inner, tc, idC, other, to, idO, out)
		} else {
			CollideShapes(other, to, idO, c.Inner, tc, idC, out)
		}
	case *shape.TriangleMesh:
		otherBoxInMeshLocal := aabbInSpace(other, to, tc)
		c.QueryAABB(otherBoxInMeshLocal, func(triIdx int) {
			tri := &c.Triangles[triIdx]
			triID := shape.TriangleSubShapeID(triIdx)
			if compositeIsA {
				CollideShapes(tri, tc, triID, other, to, idO, out)
			} else {
				CollideShapes(other, to, idO, tri, tc, triID, out)
			}
		})
	}
}

// aabbInSpace returns other's world AABB re-expressed in the coordinate
// space whose origin/orientation is given by into.
func aabbInSpace(other shape.Shape, to math3.Transform, into math3.Transform) math3.AABB {
	worldBox := other.AABB(to)
	he := worldBox.HalfExtents()
	// Conservative: rotate the half-extent box's 8 corners into local
	// space and rebuild an axis-aligned box there, rather than assume the
	// rotation is axis-preserving.
	box := math3.EmptyAABB()
	for _, s := range [8][3]float32{
		{-1, -1, -1}, {1, -1, -1}, {-1, 1, -1}, {1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {-1, 1, 1}, {1, 1, 1},
	} {
		corner := worldBox.Center().Add(math3.Vec3{he.X() * s[0], he.Y() * s[1], he.Z() * s[2]})
		local := into.Orientation.Inverse().Rotate(corner.Sub(into.Position))
		box = box.ExpandByPoint(local)
	}
	return box
}

// collideConvexPair runs GJK, follows up with EPA on overlap, and builds
// a manifold from the resulting normal and each shape's supporting face.
func collideConvexPair(a shape.Shape, ta math3.Transform, idA shape.SubShapeID, b shape.Shape, tb math3.Transform, idB shape.SubShapeID, out *[]PairResult) {
	supportA := WorldSupport(a, ta, shape.ExcludeConvexRadius)
	supportB := WorldSupport(b, tb, shape.ExcludeConvexRadius)
	radiusSum := a.ConvexRadius() + b.ConvexRadius()

	gjk := Closest(supportA, supportB)

	if gjk.Intersect {
		epa := Penetration(gjk, supportA, supportB)
		if !epa.Valid {
			return
		}
		depth := epa.Depth + radiusSum
		if depth <= 0 {
			return
		}
		manifold := buildManifoldForNormal(a, ta, idA, b, tb, idB, epa.Normal, epa.PointOnA, epa.PointOnB, depth)
		*out = append(*out, PairResult{Intersect: true, Manifold: manifold, SubShapeA: idA, SubShapeB: idB})
		return
	}

	separation := gjk.Distance - radiusSum
	if separation > SpeculativeMargin {
		*out = append(*out, PairResult{Intersect: false, Distance: separation, SubShapeA: idA, SubShapeB: idB})
		return
	}

	normal := gjk.Normal
	if radiusSum > 0 {
		// Push the witness points out onto each shape's skin.
		gjk.PointOnA = gjk.PointOnA.Add(normal.Mul(a.ConvexRadius()))
		gjk.PointOnB = gjk.PointOnB.Sub(normal.Mul(b.ConvexRadius()))
	}
	manifold := buildManifoldForNormal(a, ta, idA, b, tb, idB, normal, gjk.PointOnA, gjk.PointOnB, -separation)
	*out = append(*out, PairResult{Intersect: true, Manifold: manifold, SubShapeA: idA, SubShapeB: idB})
}

func buildManifoldForNormal(a shape.Shape, ta math3.Transform, idA shape.SubShapeID, b shape.Shape, tb math3.Transform, idB shape.SubShapeID, normal, pointOnA, pointOnB math3.Vec3, depth float32) Manifold {
	localNormalA := ta.Orientation.Inverse().Rotate(normal)
	localNormalB := tb.Orientation.Inverse().Rotate(normal.Mul(-1))
	faceA := worldFace(a, ta, idA, localNormalA)
	faceB := worldFace(b, tb, idB, localNormalB)
	return BuildManifold(normal, faceA, faceB, pointOnA, pointOnB, depth)
}

func worldFace(s shape.Shape, t math3.Transform, id shape.SubShapeID, localDir math3.Vec3) shape.Face {
	face := s.SupportingFace(localDir, id)
	out := make(shape.Face, len(face))
	for i, p := range face {
		out[i] = t.Point(p)
	}
	return out
}
