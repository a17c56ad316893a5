package collision

import (
	"sort"

	"github.com/ironvale/physics3d/math3"
	"github.com/ironvale/physics3d/shape"
)

// MaxManifoldPoints bounds the contact manifold spec.md §5 asks for: no
// more than 4 persistent points per contact pair.
const MaxManifoldPoints = 4

// ManifoldPoint is one contact point on the manifold, carrying the
// witness points on each body and the accumulated penetration at that
// point.
type ManifoldPoint struct {
	PointOnA    math3.Vec3
	PointOnB    math3.Vec3
	Penetration float32
}

// Manifold is the reduced contact patch between two shapes: a single
// shared normal (from A into B) plus up to MaxManifoldPoints points.
type Manifold struct {
	Normal math3.Vec3
	Points []ManifoldPoint
}

// BuildManifold clips the supporting face of each shape against the
// other's supporting face along the EPA/GJK normal and reduces the
// resulting polygon to at most MaxManifoldPoints points, per spec.md §5
// ("manifold generation clips the supporting faces of the two shapes").
func BuildManifold(normal math3.Vec3, faceA, faceB shape.Face, fallbackA, fallbackB math3.Vec3, depth float32) Manifold {
	if len(faceA) < 3 || len(faceB) < 3 {
		return Manifold{
			Normal: normal,
			Points: []ManifoldPoint{{PointOnA: fallbackA, PointOnB: fallbackB, Penetration: depth}},
		}
	}

	refIsA := true
	ref, inc := faceA, faceB
	refNormal := normal
	// Pick whichever face is more nearly perpendicular to the normal as
	// the reference face, matching the standard Sutherland-Hodgman contact
	// clipping used by box/hull narrowphase.
	if faceNormalDeviation(faceB, normal) < faceNormalDeviation(faceA, normal) {
		refIsA = false
		ref, inc = faceB, faceA
		refNormal = normal.Mul(-1)
	}

	clipped := clipPolygonAgainstFace(inc, ref, refNormal)
	if len(clipped) == 0 {
		return Manifold{
			Normal: normal,
			Points: []ManifoldPoint{{PointOnA: fallbackA, PointOnB: fallbackB, Penetration: depth}},
		}
	}

	refPlanePoint := ref[0]
	points := make([]ManifoldPoint, 0, len(clipped))
	for _, p := range clipped {
		pen := refNormal.Dot(refPlanePoint.Sub(p))
		if pen < 0 {
			continue
		}
		var onA, onB math3.Vec3
		if refIsA {
			onA = p.Add(refNormal.Mul(pen))
			onB = p
		} else {
			onB = p.Add(refNormal.Mul(pen))
			onA = p
		}
		points = append(points, ManifoldPoint{PointOnA: onA, PointOnB: onB, Penetration: pen})
	}
	if len(points) == 0 {
		return Manifold{
			Normal: normal,
			Points: []ManifoldPoint{{PointOnA: fallbackA, PointOnB: fallbackB, Penetration: depth}},
		}
	}

	points = reduceManifoldPoints(points)
	return Manifold{Normal: normal, Points: points}
}

func faceNormalDeviation(f shape.Face, normal math3.Vec3) float32 {
	if len(f) < 3 {
		return 2
	}
	n := f[1].Sub(f[0]).Cross(f[2].Sub(f[0]))
	if n.LenSqr() < math3.Epsilon {
		return 2
	}
	n = n.Normalize()
	return 1 - math3.Abs(n.Dot(normal))
}

// clipPolygonAgainstFace clips the incident polygon against each side
// plane of the reference face (Sutherland-Hodgman), projecting the result
// onto the reference plane.
func clipPolygonAgainstFace(incident, reference shape.Face, refNormal math3.Vec3) []math3.Vec3 {
	poly := make([]math3.Vec3, len(incident))
	copy(poly, incident)

	n := len(reference)
	for i := 0; i < n; i++ {
		a := reference[i]
		b := reference[(i+1)%n]
		edge := b.Sub(a)
		sideNormal := edge.Cross(refNormal)
		if sideNormal.LenSqr() < math3.Epsilon {
			continue
		}
		sideNormal = sideNormal.Normalize()
		poly = clipPolygonPlane(poly, a, sideNormal)
		if len(poly) == 0 {
			return nil
		}
	}
	return poly
}

func clipPolygonPlane(poly []math3.Vec3, planePoint, planeNormal math3.Vec3) []math3.Vec3 {
	if len(poly) == 0 {
		return nil
	}
	out := make([]math3.Vec3, 0, len(poly)+1)
	for i := range poly {
		cur := poly[i]
		next := poly[(i+1)%len(poly)]
		curIn := planeNormal.Dot(cur.Sub(planePoint)) <= 0
		nextIn := planeNormal.Dot(next.Sub(planePoint)) <= 0
		if curIn {
			out = append(out, cur)
		}
		if curIn != nextIn {
			t := planeNormal.Dot(planePoint.Sub(cur)) / maxEps(planeNormal.Dot(next.Sub(cur)))
			out = append(out, lerp(cur, next, math3.Clamp(t, 0, 1)))
		}
	}
	return out
}

// reduceManifoldPoints keeps at most MaxManifoldPoints points, chosen
// deterministically: the deepest point first, then repeatedly the point
// with the largest sum of squared distances to the points already kept.
// Inputs of MaxManifoldPoints or fewer are returned sorted by
// penetration, deepest first (spec.md §5's deterministic tie-break
// requirement is met by iterating candidates in their clip order rather
// than by hash/pointer order).
func reduceManifoldPoints(points []ManifoldPoint) []ManifoldPoint {
	if len(points) <= MaxManifoldPoints {
		sort.SliceStable(points, func(i, j int) bool {
			return points[i].Penetration > points[j].Penetration
		})
		return points
	}

	deepestIdx := 0
	for i, p := range points {
		if p.Penetration > points[deepestIdx].Penetration {
			deepestIdx = i
		}
	}
	kept := []int{deepestIdx}

	farthestIdx := -1
	farthestDist := float32(-1)
	for i, p := range points {
		if i == deepestIdx {
			continue
		}
		d := p.PointOnA.Sub(points[deepestIdx].PointOnA).LenSqr()
		if d > farthestDist {
			farthestDist = d
			farthestIdx = i
		}
	}
	kept = append(kept, farthestIdx)

	for len(kept) < MaxManifoldPoints {
		bestIdx := -1
		bestDist := float32(-1)
		for i := range points {
			if containsInt(kept, i) {
				continue
			}
			d := float32(0)
			for _, k := range kept {
				d += points[i].PointOnA.Sub(points[k].PointOnA).LenSqr()
			}
			if d > bestDist {
				bestDist = d
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		kept = append(kept, bestIdx)
	}

	out := make([]ManifoldPoint, 0, len(kept))
	for _, i := range kept {
		out = append(out, points[i])
	}
	return out
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
