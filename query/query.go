// Package query implements spec.md §6's read-only query surface: ray
// casts, shape casts, and shape/point overlap tests run against a live
// broadphase plus its bodies. It is a thin coarse-to-fine wrapper —
// broadphase.Broadphase narrows to candidate payloads, collision does
// the exact narrowphase test — grounded on jolt-go's own CastRay/
// CollideShape collector-callback surface (other_examples/jolt.go),
// which this package's Collector-style visit callbacks mirror.
package query

import (
	"sort"

	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/collision"
	"github.com/ironvale/physics3d/math3"
	"github.com/ironvale/physics3d/shape"
)

// BodyLookup resolves a body.ID to its live *body.Body.
type BodyLookup interface {
	Body(id body.ID) *body.Body
}

// Broadphase is the subset of broadphase.Broadphase the query layer
// needs to narrow a world-space test down to candidate bodies.
type Broadphase interface {
	QueryAABB(box math3.AABB, visit func(payload int32))
	CastRay(ray math3.Ray, maxFraction float32, visit func(payload int32))
}

// Resolver maps a broadphase payload back to a body.ID.
type Resolver func(payload int32) (body.ID, bool)

// Filter lets a caller exclude bodies from a query, per spec.md §6's
// object-layer/body filter concept (e.g. ignore sensors, ignore a
// specific body).
type Filter interface {
	ShouldCollide(id body.ID) bool
}

// FilterFunc adapts a plain function to Filter.
type FilterFunc func(id body.ID) bool

func (f FilterFunc) ShouldCollide(id body.ID) bool { return f(id) }

// RayHit reports one CastRay result in world space.
type RayHit struct {
	Body     body.ID
	Fraction float32
	Point    math3.Vec3
	Normal   math3.Vec3
	SubShape shape.SubShapeID
}

// CastRayClosest returns the single closest hit along ray, or false if
// nothing was hit within [0, maxFraction]. Grounded on jolt-go's
// CastRayClosest convenience wrapper over its general collector API.
func CastRayClosest(ray math3.Ray, maxFraction float32, bodies BodyLookup, bp Broadphase, resolve Resolver, filter Filter) (RayHit, bool) {
	best, found := RayHit{}, false
	CastRayAll(ray, maxFraction, bodies, bp, resolve, filter, func(hit RayHit) bool {
		if !found || hit.Fraction < best.Fraction {
			best, found = hit, true
		}
		return true
	})
	return best, found
}

// CastRayAll visits every hit along ray up to maxFraction, in ascending
// body-index order for any hits that tie exactly on fraction so results
// are deterministic (spec.md §5). visit returning false stops the walk
// early, mirroring collision.Collector's early-exit contract.
func CastRayAll(ray math3.Ray, maxFraction float32, bodies BodyLookup, bp Broadphase, resolve Resolver, filter Filter, visit func(RayHit) bool) {
	var hits []RayHit
	bp.CastRay(ray, maxFraction, func(payload int32) {
		id, ok := resolve(payload)
		if !ok {
			return
		}
		if filter != nil && !filter.ShouldCollide(id) {
			return
		}
		b := bodies.Body(id)
		if b == nil {
			return
		}
		localRay := math3.Ray{
			Origin:    ray.Origin,
			Direction: ray.Direction,
		}
		hit, ok2 := castRayShape(localRay, maxFraction, b.Shape, b.Transform(), shape.EmptySubShapeID)
		if !ok2 {
			return
		}
		hits = append(hits, RayHit{Body: id, Fraction: hit.Fraction, Point: hit.Point, Normal: hit.Normal, SubShape: hit.SubShape})
	})
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Fraction != hits[j].Fraction {
			return hits[i].Fraction < hits[j].Fraction
		}
		return hits[i].Body.Index() < hits[j].Body.Index()
	})
	for _, h := range hits {
		if !visit(h) {
			return
		}
	}
}

// castRayShape descends composite shapes the same way collision's
// CollideShapes dispatch table does (collision/dispatch.go), since
// collision.CastRay itself only handles convex primitives and Plane.
func castRayShape(ray math3.Ray, maxFraction float32, s shape.Shape, t math3.Transform, id shape.SubShapeID) (collision.RayHit, bool) {
	switch c := s.(type) {
	case *shape.Compound:
		best, found := collision.RayHit{}, false
		for i, ch := range c.Children {
			childTransform := math3.Transform{Position: ch.LocalPosition, Orientation: ch.LocalRotation}.Then(t)
			childID := id.Push(uint32(i), ch.Bits)
			if hit, ok := castRayShape(ray, maxFraction, ch.Shape, childTransform, childID); ok {
				if !found || hit.Fraction < best.Fraction {
					best, found = hit, true
				}
			}
		}
		return best, found
	case *shape.Transformed:
		childTransform := math3.Transform{Position: c.LocalPosition, Orientation: c.LocalRotation}.Then(t)
		return castRayShape(ray, maxFraction, c.Inner, childTransform, id)
	case *shape.OffsetCenterOfMass:
		return castRayShape(ray, maxFraction, c.Inner, t, id)
	case *shape.TriangleMesh:
		col := collision.NewClosestHitCollector()
		collision.CastRayMesh(ray, maxFraction, c, t, col)
		if !col.HasHit() {
			return collision.RayHit{}, false
		}
		return col.Hit.(collision.RayHit), true
	default:
		return collision.CastRay(ray, maxFraction, s, t)
	}
}

// CollideShapeHit is one overlap result from CollideShape/CollidePoint.
type CollideShapeHit struct {
	Body     body.ID
	Manifold collision.Manifold
}

// CollideShape finds every body overlapping s placed at t (spec.md §6's
// CollideShape operation), grounded on collision.CollideShapes for the
// exact GJK/EPA/manifold test per candidate.
func CollideShape(s shape.Shape, t math3.Transform, bodies BodyLookup, bp Broadphase, resolve Resolver, filter Filter) []CollideShapeHit {
	box := s.AABB(t)
	var out []CollideShapeHit
	bp.QueryAABB(box, func(payload int32) {
		id, ok := resolve(payload)
		if !ok {
			return
		}
		if filter != nil && !filter.ShouldCollide(id) {
			return
		}
		b := bodies.Body(id)
		if b == nil {
			return
		}
		var results []collision.PairResult
		collision.CollideShapes(s, t, shape.EmptySubShapeID, b.Shape, b.Transform(), shape.EmptySubShapeID, &results)
		for _, r := range results {
			if r.Intersect {
				out = append(out, CollideShapeHit{Body: id, Manifold: r.Manifold})
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Body.Index() < out[j].Body.Index() })
	return out
}

// pointProbeRadius is small enough that CollidePoint's sphere probe
// behaves as a point test against anything but another equally-tiny
// shape, while staying above NewSphere's positive-radius requirement.
const pointProbeRadius = 1e-5

// CollidePoint reports every body containing point, spec.md §6's
// CollidePoint operation — implemented as a degenerate CollideShape
// against a vanishingly small sphere rather than a bespoke point-in-
// shape test, since collision.CollideShapes already handles every
// shape variant through one code path.
func CollidePoint(point math3.Vec3, bodies BodyLookup, bp Broadphase, resolve Resolver, filter Filter) []body.ID {
	probe, err := shape.NewSphere(pointProbeRadius)
	if err != nil {
		return nil
	}
	t := math3.Transform{Position: point, Orientation: math3.IdentityQuat()}
	hits := CollideShape(probe, t, bodies, bp, resolve, filter)
	out := make([]body.ID, len(hits))
	for i, h := range hits {
		out[i] = h.Body
	}
	return out
}

// ShapeCastHit is one CastShape result against a live body.
type ShapeCastHit struct {
	Body     body.ID
	Fraction float32
	Normal   math3.Vec3
	Point    math3.Vec3
}

// CastShapeClosest sweeps mover from startTransform along displacement
// and returns the earliest hit against any body in bp, grounded on
// collision.CastShape the same way ccd.Sweep and character.sweep already
// use it — composite targets are not descended here either, consistent
// with those two existing callers.
func CastShapeClosest(mover shape.Shape, startTransform math3.Transform, displacement math3.Vec3, bodies BodyLookup, bp Broadphase, resolve Resolver, filter Filter) (ShapeCastHit, bool) {
	endBox := mover.AABB(math3.Transform{Position: startTransform.Position.Add(displacement), Orientation: startTransform.Orientation})
	sweptBox := math3.Union(mover.AABB(startTransform), endBox)

	best, found := ShapeCastHit{}, false
	bp.QueryAABB(sweptBox, func(payload int32) {
		id, ok := resolve(payload)
		if !ok {
			return
		}
		if filter != nil && !filter.ShouldCollide(id) {
			return
		}
		b := bodies.Body(id)
		if b == nil {
			return
		}
		hit, ok2 := collision.CastShape(mover, startTransform, displacement, b.Shape, b.Transform(), 1.0)
		if !ok2 {
			return
		}
		if !found || hit.Fraction < best.Fraction || (hit.Fraction == best.Fraction && id.Index() < best.Body.Index()) {
			best, found = ShapeCastHit{Body: id, Fraction: hit.Fraction, Normal: hit.Normal, Point: hit.PointOnTarget}, true
		}
	})
	return best, found
}
