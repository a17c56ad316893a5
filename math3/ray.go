package math3

import "math"

// Ray is a parametric ray: points are Origin + t*Direction for t >= 0.
// A raycast3 in spec terms. Direction is not required to be normalized;
// callers that need t to mean "world units along the ray" normalize it
// themselves and keep the pre-normalization length separately.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// At returns the point on the ray at parameter t.
func (r Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectAABB returns the entry/exit parameters (tMin, tMax) at which
// the ray crosses box, and whether it hits at all within [0, maxT].
// Uses the slab method; degenerate (zero) direction components are
// treated as parallel to that axis.
func (r Ray) IntersectAABB(box AABB, maxT float32) (tMin, tMax float32, hit bool) {
	tMin, tMax = 0, maxT

	axes := [3]struct{ o, d, lo, hi float32 }{
		{r.Origin.X(), r.Direction.X(), box.Min.X(), box.Max.X()},
		{r.Origin.Y(), r.Direction.Y(), box.Min.Y(), box.Max.Y()},
		{r.Origin.Z(), r.Direction.Z(), box.Min.Z(), box.Max.Z()},
	}

	for _, a := range axes {
		if Abs(a.d) < Epsilon {
			if a.o < a.lo || a.o > a.hi {
				return 0, 0, false
			}
			continue
		}
		inv := 1.0 / a.d
		t1 := (a.lo - a.o) * inv
		t2 := (a.hi - a.o) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, 0, false
		}
	}
	return tMin, tMax, true
}

// IntersectSphere returns the nearest non-negative hit fraction against a
// sphere of the given radius centered at center, within [0, maxT].
func (r Ray) IntersectSphere(center Vec3, radius, maxT float32) (t float32, hit bool) {
	oc := r.Origin.Sub(center)
	a := r.Direction.Dot(r.Direction)
	if a < Epsilon {
		return 0, false
	}
	b := 2 * oc.Dot(r.Direction)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}
	sq := float32(math.Sqrt(float64(disc)))
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	if t0 >= 0 && t0 <= maxT {
		return t0, true
	}
	if t1 >= 0 && t1 <= maxT {
		return t1, true
	}
	return 0, false
}
