package collision

import (
	"github.com/ironvale/physics3d/math3"
	"github.com/ironvale/physics3d/shape"
)

// RayCastTolerance is the convergence tolerance for the GJK-based
// conservative-advancement ray cast (spec.md §4.3).
const RayCastTolerance = 1e-4

// MaxRayCastIterations bounds conservative advancement the same way GJK
// bounds its own iteration count.
const MaxRayCastIterations = 32

// RayHit is one ray/shape intersection, reported in the cast's own local
// space (the caller supplies whatever transform that space means).
type RayHit struct {
	Fraction  float32
	Point     math3.Vec3
	Normal    math3.Vec3
	SubShape  shape.SubShapeID
}

// pointSupport is the degenerate SupportFn of a single point: every
// direction returns the same point.
func pointSupport(p math3.Vec3) SupportFn {
	return func(math3.Vec3) math3.Vec3 { return p }
}

// CastRay intersects ray against s placed at t, using conservative
// advancement driven by GJK's point-to-convex distance (Ericson,
// "Real-Time Collision Detection" §5.5.1 adapted to our support-function
// GJK). Composite shapes are descended by the caller (the query
// package's castRayShape); this function handles convex primitives and
// the Plane directly.
func CastRay(ray math3.Ray, maxFraction float32, s shape.Shape, t math3.Transform) (RayHit, bool) {
	switch s.Type() {
	case shape.TypePlane:
		return castRayPlane(ray, maxFraction, s.(*shape.Plane), t)
	}

	dir := ray.Direction
	if dir.LenSqr() < math3.Epsilon {
		return RayHit{}, false
	}

	lambda := float32(0)
	x := ray.Origin
	var normal math3.Vec3
	worldSupport := WorldSupport(s, t, shape.IncludeConvexRadius)

	for iter := 0; iter < MaxRayCastIterations; iter++ {
		res := Closest(pointSupport(x), worldSupport)
		if res.Intersect || res.Distance < RayCastTolerance {
			if lambda > maxFraction {
				return RayHit{}, false
			}
			return RayHit{Fraction: lambda, Point: x, Normal: normal}, true
		}
		v := res.Normal // points from point (A) to shape (B)
		denom := v.Dot(dir)
		if denom >= -math3.Epsilon {
			return RayHit{}, false
		}
		lambda -= res.Distance / denom
		if lambda > maxFraction {
			return RayHit{}, false
		}
		normal = v.Mul(-1)
		x = ray.Origin.Add(dir.Mul(lambda))
	}
	return RayHit{}, false
}

func castRayPlane(ray math3.Ray, maxFraction float32, p *shape.Plane, t math3.Transform) (RayHit, bool) {
	n := t.Orientation.Rotate(p.Normal)
	pointOnPlane := t.Point(p.Normal.Mul(p.Constant))
	denom := n.Dot(ray.Direction)
	if math3.Abs(denom) < math3.Epsilon {
		return RayHit{}, false
	}
	frac := n.Dot(pointOnPlane.Sub(ray.Origin)) / denom
	if frac < 0 || frac > maxFraction {
		return RayHit{}, false
	}
	hitPoint := ray.At(frac)
	if n.Dot(ray.Direction) > 0 {
		n = n.Mul(-1)
	}
	return RayHit{Fraction: frac, Point: hitPoint, Normal: n}, true
}

// CastRayMesh intersects ray against a triangle mesh by walking its BVH
// and testing each candidate triangle, reporting every hit not pruned by
// the collector's early-out fraction; the collector decides which hits
// to keep.
func CastRayMesh(ray math3.Ray, maxFraction float32, m *shape.TriangleMesh, t math3.Transform, collector Collector) {
	localOrigin := t.InversePoint(ray.Origin)
	localDir := t.Orientation.Inverse().Rotate(ray.Direction)
	localRay := math3.Ray{Origin: localOrigin, Direction: localDir}

	m.QueryRay(localRay, maxFraction, func(triIdx int) {
		tri := &m.Triangles[triIdx]
		frac, n, hit := rayTriangle(localRay, maxFraction, tri.V0, tri.V1, tri.V2)
		if !hit {
			return
		}
		if shouldEarlyOut(collector, frac) {
			return
		}
		worldPoint := t.Point(localRay.At(frac))
		worldNormal := t.Orientation.Rotate(n)
		collector.AddHit(frac, RayHit{
			Fraction: frac,
			Point:    worldPoint,
			Normal:   worldNormal,
			SubShape: shape.TriangleSubShapeID(triIdx),
		})
	})
}

// rayTriangle is the Möller–Trumbore ray/triangle intersection test.
func rayTriangle(ray math3.Ray, maxFraction float32, v0, v1, v2 math3.Vec3) (float32, math3.Vec3, bool) {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if math3.Abs(a) < math3.Epsilon {
		return 0, math3.Vec3{}, false
	}
	f := 1 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, math3.Vec3{}, false
	}
	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, math3.Vec3{}, false
	}
	dist := f * edge2.Dot(q)
	if dist < 0 || dist > maxFraction {
		return 0, math3.Vec3{}, false
	}
	n := edge1.Cross(edge2).Normalize()
	if n.Dot(ray.Direction) > 0 {
		n = n.Mul(-1)
	}
	return dist, n, true
}
