// Package collision implements GJK/EPA distance and penetration queries,
// raycasting, shape casting and manifold extraction between the shapes
// in package shape, plus the collector interfaces results are reported
// through.
package collision

import (
	"github.com/ironvale/physics3d/math3"
	"github.com/ironvale/physics3d/shape"
)

// SupportFn returns the farthest point of a convex set along direction,
// in the same space the caller is working in (usually world space after
// the shape's transform has already been folded in).
type SupportFn func(direction math3.Vec3) math3.Vec3

// MinkowskiSupport builds the support function of the Minkowski
// difference A⊖B from two world-space supports.
func MinkowskiSupport(a, b SupportFn) SupportFn {
	return func(d math3.Vec3) math3.Vec3 {
		return a(d).Sub(b(d.Mul(-1)))
	}
}

// WorldSupport adapts a shape's local-space SupportPoint into a
// world-space support function for a given rigid transform.
func WorldSupport(s shape.Shape, t math3.Transform, mode shape.SupportMode) SupportFn {
	return func(direction math3.Vec3) math3.Vec3 {
		localDir := t.Orientation.Inverse().Rotate(direction)
		localPoint := s.SupportPoint(localDir, mode)
		return t.Point(localPoint)
	}
}

// CollisionTolerance controls GJK's convergence test: iteration stops
// when a new support point fails to improve the closest distance by more
// than this amount (spec.md §4.2).
const CollisionTolerance = 1e-4

// MaxGJKIterations bounds GJK so a degenerate configuration returns the
// best-so-far result instead of looping forever (spec.md §7).
const MaxGJKIterations = 32

// gjkVertex is one point of the evolving simplex: the Minkowski
// difference point plus the two shape-space support points that
// produced it, needed later to reconstruct witness points.
type gjkVertex struct {
	w        math3.Vec3 // point on A⊖B
	onA, onB math3.Vec3 // witness points on A and B
}

// GJKResult is the outcome of a closest-points query.
type GJKResult struct {
	Distance   float32
	PointOnA   math3.Vec3
	PointOnB   math3.Vec3
	Normal     math3.Vec3 // from A to B, valid only when Distance > 0
	Intersect  bool       // true if GJK enclosed the origin (shapes overlap, ignoring convex radius)
	simplex    []gjkVertex
	iterations int
}

// Closest runs GJK between two world-space supports (already including
// whatever convex radius handling the caller wants baked into supportA/
// supportB) and returns the closest-points result. When the Minkowski
// difference encloses the origin, Intersect is set and Distance is 0;
// the caller should follow up with EPA for penetration depth.
func Closest(supportA, supportB SupportFn) GJKResult {
	support := func(d math3.Vec3) gjkVertex {
		if d.LenSqr() < math3.Epsilon {
			d = math3.Vec3{1, 0, 0}
		}
		pa := supportA(d)
		pb := supportB(d.Mul(-1))
		return gjkVertex{w: pa.Sub(pb), onA: pa, onB: pb}
	}

	dir := math3.Vec3{1, 0, 0}
	simplex := []gjkVertex{support(dir)}
	closestDist := float32(1e30)

	for iter := 0; iter < MaxGJKIterations; iter++ {
		dir = closestDirectionToOrigin(simplex)
		if dir.LenSqr() < math3.Epsilon*math3.Epsilon {
			// Origin lies on or inside the simplex.
			res := GJKResult{Intersect: true, simplex: simplex, iterations: iter}
			return res
		}
		searchDir := dir
		v := support(searchDir)

		improvement := v.w.Dot(searchDir.Normalize()) - (-dir).Dot(searchDir.Normalize())
		newDist := dir.Len()
		if newDist >= closestDist-CollisionTolerance && iter > 0 {
			break
		}
		_ = improvement
		closestDist = newDist

		if containsVertex(simplex, v.w) {
			break
		}
		simplex = append(simplex, v)
		simplex = reduceSimplex(simplex)
	}

	a, b := witnessPoints(simplex)
	d := b.Sub(a)
	dist := d.Len()
	var normal math3.Vec3
	if dist > math3.Epsilon {
		normal = d.Mul(1 / dist)
	}
	return GJKResult{
		Distance:   dist,
		PointOnA:   a,
		PointOnB:   b,
		Normal:     normal,
		simplex:    simplex,
		iterations: MaxGJKIterations,
	}
}

func containsVertex(simplex []gjkVertex, w math3.Vec3) bool {
	for _, v := range simplex {
		if math3.NearlyEqual(v.w, w, 1e-7) {
			return true
		}
	}
	return false
}

// closestDirectionToOrigin returns the vector from the closest point of
// the current simplex to the origin, using the point/segment/triangle/
// tetrahedron cases. The simplex itself is not modified.
func closestDirectionToOrigin(simplex []gjkVertex) math3.Vec3 {
	switch len(simplex) {
	case 1:
		return simplex[0].w.Mul(-1)
	case 2:
		return closestOnSegment(simplex)
	case 3:
		return closestOnTriangle(simplex)
	default:
		return closestOnTetrahedron(simplex)
	}
}

func closestOnSegment(simplex []gjkVertex) math3.Vec3 {
	a, b := simplex[1].w, simplex[0].w
	ab := b.Sub(a)
	t := math3.Clamp(a.Mul(-1).Dot(ab)/maxEps(ab.Dot(ab)), 0, 1)
	closest := a.Add(ab.Mul(t))
	return closest.Mul(-1)
}

func closestOnTriangle(simplex []gjkVertex) math3.Vec3 {
	a, b, c := simplex[2].w, simplex[1].w, simplex[0].w
	n := b.Sub(a).Cross(c.Sub(a))
	if n.LenSqr() < math3.Epsilon {
		return closestOnSegment(simplex[len(simplex)-2:])
	}
	// Project origin onto the triangle plane, clamp to the triangle by
	// falling back to the nearest edge when outside.
	dist := a.Dot(n) / n.LenSqr()
	proj := n.Mul(-dist)
	if pointInTriangle(proj, a, b, c) {
		return proj
	}
	best := closestOnSegment([]gjkVertex{{w: a}, {w: b}})
	bd := best.LenSqr()
	for _, seg := range [][2]math3.Vec3{{b, c}, {c, a}} {
		cand := closestOnSegment([]gjkVertex{{w: seg[0]}, {w: seg[1]}})
		if cand.LenSqr() < bd {
			best, bd = cand, cand.LenSqr()
		}
	}
	return best
}

func pointInTriangle(p, a, b, c math3.Vec3) bool {
	v0 := c.Sub(a)
	v1 := b.Sub(a)
	v2 := p.Sub(a)
	dot00 := v0.Dot(v0)
	dot01 := v0.Dot(v1)
	dot02 := v0.Dot(v2)
	dot11 := v1.Dot(v1)
	dot12 := v1.Dot(v2)
	denom := dot00*dot11 - dot01*dot01
	if math3.Abs(denom) < math3.Epsilon {
		return false
	}
	invDenom := 1 / denom
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom
	return u >= -1e-5 && v >= -1e-5 && u+v <= 1+1e-5
}

func closestOnTetrahedron(simplex []gjkVertex) math3.Vec3 {
	// If the origin is not contained, fall back to the nearest face; a
	// full tetrahedron should only ever be reported as an intersection
	// by the caller, this is the non-intersecting recovery path.
	faces := [][3]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}}
	best := math3.Vec3{}
	bestDist := float32(1e30)
	for i, f := range faces {
		tri := []gjkVertex{simplex[f[0]], simplex[f[1]], simplex[f[2]]}
		cand := closestOnTriangle(tri)
		if d := cand.LenSqr(); d < bestDist {
			bestDist = d
			best = cand
			_ = i
		}
	}
	return best
}

func maxEps(x float32) float32 {
	if x < math3.Epsilon {
		return math3.Epsilon
	}
	return x
}

// reduceSimplex keeps the simplex at or below 4 points (a tetrahedron)
// by keeping the 4 most recently added points.
func reduceSimplex(simplex []gjkVertex) []gjkVertex {
	if len(simplex) <= 4 {
		return simplex
	}
	return simplex[len(simplex)-4:]
}

// witnessPoints reconstructs the closest points on A and B from the
// final simplex: a single point's stored witnesses, interpolation along
// the segment for two points, and the stored witnesses of the vertex
// nearest the origin for three or four points.
func witnessPoints(simplex []gjkVertex) (a, b math3.Vec3) {
	switch len(simplex) {
	case 1:
		return simplex[0].onA, simplex[0].onB
	case 2:
		p0, p1 := simplex[0], simplex[1]
		ab := p1.w.Sub(p0.w)
		t := math3.Clamp(p0.w.Mul(-1).Dot(ab)/maxEps(ab.Dot(ab)), 0, 1)
		return lerp(p0.onA, p1.onA, t), lerp(p0.onB, p1.onB, t)
	default:
		// Triangle/tetrahedron: approximate via the nearest-vertex
		// witness, which is exact at the corners and a stable
		// approximation elsewhere for the contact generation that
		// follows (EPA refines penetrating cases with exact faces).
		best := simplex[0]
		bestDist := best.w.LenSqr()
		for _, v := range simplex[1:] {
			if d := v.w.LenSqr(); d < bestDist {
				best, bestDist = v, d
			}
		}
		return best.onA, best.onB
	}
}

func lerp(a, b math3.Vec3, t float32) math3.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
