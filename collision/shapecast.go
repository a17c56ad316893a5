package collision

import (
	"github.com/ironvale/physics3d/math3"
	"github.com/ironvale/physics3d/shape"
)

// ShapeCastTolerance and MaxShapeCastIterations bound conservative
// advancement for a moving convex shape the same way raycasting bounds
// the degenerate point case (spec.md §4.3, §7).
const ShapeCastTolerance = 1e-4
const MaxShapeCastIterations = 32

// ShapeCastHit is the result of sweeping a convex shape along a linear
// displacement against a stationary target.
type ShapeCastHit struct {
	Fraction float32
	Normal   math3.Vec3 // points from the target into the moving shape
	PointOnTarget math3.Vec3
}

// CastShape sweeps mover (placed at startTransform) along displacement
// against target (placed at targetTransform) using conservative
// advancement on the Minkowski difference: the same GJK distance loop
// raycasting uses, but walking the moving shape's own support function
// instead of a single point (Jolt's GJKClosestPoint-driven shape cast,
// van den Bergen 2004).
func CastShape(mover shape.Shape, startTransform math3.Transform, displacement math3.Vec3, target shape.Shape, targetTransform math3.Transform, maxFraction float32) (ShapeCastHit, bool) {
	if displacement.LenSqr() < math3.Epsilon {
		return ShapeCastHit{}, false
	}

	lambda := float32(0)
	cur := startTransform
	var normal math3.Vec3
	targetSupport := WorldSupport(target, targetTransform, shape.IncludeConvexRadius)
	radiusSum := mover.ConvexRadius()

	for iter := 0; iter < MaxShapeCastIterations; iter++ {
		moverSupport := WorldSupport(mover, cur, shape.ExcludeConvexRadius)
		res := Closest(moverSupport, targetSupport)
		dist := res.Distance - radiusSum
		if res.Intersect || dist < ShapeCastTolerance {
			if lambda > maxFraction {
				return ShapeCastHit{}, false
			}
			return ShapeCastHit{Fraction: lambda, Normal: normal, PointOnTarget: res.PointOnB}, true
		}
		v := res.Normal // from mover to target
		denom := v.Dot(displacement)
		if denom <= math3.Epsilon {
			return ShapeCastHit{}, false
		}
		lambda += dist / denom
		if lambda > maxFraction {
			return ShapeCastHit{}, false
		}
		normal = v.Mul(-1)
		cur = math3.Transform{Position: startTransform.Position.Add(displacement.Mul(lambda)), Orientation: startTransform.Orientation}
	}
	return ShapeCastHit{}, false
}
