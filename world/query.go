package world

import (
	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/math3"
	"github.com/ironvale/physics3d/query"
	"github.com/ironvale/physics3d/shape"
)

// CastRayClosest runs query.CastRayClosest against this world's live
// bodies and broadphase, spec.md §6's CastRay operation.
func (w *World) CastRayClosest(ray math3.Ray, maxFraction float32, filter query.Filter) (query.RayHit, bool) {
	return query.CastRayClosest(ray, maxFraction, w, w.broadphase, w.resolvePayload, filter)
}

// CastRayAll visits every hit along ray, spec.md §6's CastRay operation
// in "report every hit" mode.
func (w *World) CastRayAll(ray math3.Ray, maxFraction float32, filter query.Filter, visit func(query.RayHit) bool) {
	query.CastRayAll(ray, maxFraction, w, w.broadphase, w.resolvePayload, filter, visit)
}

// CollideShape finds every body overlapping s at t, spec.md §6's
// CollideShape operation.
func (w *World) CollideShape(s shape.Shape, t math3.Transform, filter query.Filter) []query.CollideShapeHit {
	return query.CollideShape(s, t, w, w.broadphase, w.resolvePayload, filter)
}

// CollidePoint reports every body containing point, spec.md §6's
// CollidePoint operation.
func (w *World) CollidePoint(point math3.Vec3, filter query.Filter) []body.ID {
	return query.CollidePoint(point, w, w.broadphase, w.resolvePayload, filter)
}

// CastShapeClosest sweeps mover and returns the earliest hit, spec.md
// §6's CastShape operation.
func (w *World) CastShapeClosest(mover shape.Shape, start math3.Transform, displacement math3.Vec3, filter query.Filter) (query.ShapeCastHit, bool) {
	return query.CastShapeClosest(mover, start, displacement, w, w.broadphase, w.resolvePayload, filter)
}
