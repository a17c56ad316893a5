package math3

import "math"

// AABB is an axis-aligned bounding box, used by shapes, the broadphase
// tree, and CCD sweeps. A box3 in spec terms.
type AABB struct {
	Min Vec3
	Max Vec3
}

// EmptyAABB returns an AABB that contains no points; the first
// ExpandByPoint/Union call establishes its real extent.
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{Min: Vec3{inf, inf, inf}, Max: Vec3{-inf, -inf, -inf}}
}

// NewAABB builds an AABB from explicit min/max corners.
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// FromCenterHalfExtents builds an AABB from a center point and
// per-axis half extents.
func FromCenterHalfExtents(center, halfExtents Vec3) AABB {
	return AABB{Min: center.Sub(halfExtents), Max: center.Add(halfExtents)}
}

// IsValid reports whether the box is non-empty on every axis.
func (b AABB) IsValid() bool {
	return b.Min.X() <= b.Max.X() && b.Min.Y() <= b.Max.Y() && b.Min.Z() <= b.Max.Z()
}

// Center returns the midpoint of the box.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// HalfExtents returns the per-axis half extents of the box.
func (b AABB) HalfExtents() Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Extents returns the full per-axis size of the box.
func (b AABB) Extents() Vec3 {
	return b.Max.Sub(b.Min)
}

// MinHalfExtent returns the smallest of the three half-extent
// components, used by CCD to scale its tunneling threshold.
func (b AABB) MinHalfExtent() float32 {
	he := b.HalfExtents()
	m := he.X()
	if he.Y() < m {
		m = he.Y()
	}
	if he.Z() < m {
		m = he.Z()
	}
	return m
}

// Volume returns the box's volume, or zero if degenerate.
func (b AABB) Volume() float32 {
	if !b.IsValid() {
		return 0
	}
	e := b.Extents()
	return e.X() * e.Y() * e.Z()
}

// SurfaceArea returns the total surface area of the box, used by the
// DBVT's SAH-style cost heuristic.
func (b AABB) SurfaceArea() float32 {
	e := b.Extents()
	return 2 * (e.X()*e.Y() + e.Y()*e.Z() + e.Z()*e.X())
}

// ExpandByPoint grows the box, if necessary, to contain p.
func (b AABB) ExpandByPoint(p Vec3) AABB {
	return AABB{Min: minVec(b.Min, p), Max: maxVec(b.Max, p)}
}

// Expand grows the box by a uniform margin on every side. Used by the
// broadphase to fatten leaf AABBs and reduce reinsertion churn.
func (b AABB) Expand(margin float32) AABB {
	m := Vec3{margin, margin, margin}
	return AABB{Min: b.Min.Sub(m), Max: b.Max.Add(m)}
}

// Union returns the smallest box containing both a and b.
func Union(a, b AABB) AABB {
	return AABB{Min: minVec(a.Min, b.Min), Max: maxVec(a.Max, b.Max)}
}

// Translate offsets the box by delta.
func (b AABB) Translate(delta Vec3) AABB {
	return AABB{Min: b.Min.Add(delta), Max: b.Max.Add(delta)}
}

// Transform returns the AABB of the box after applying a rigid
// transform (position, orientation), re-deriving tight bounds by
// projecting all eight corners.
func (b AABB) Transform(position Vec3, orientation Quat) AABB {
	out := EmptyAABB()
	for i := 0; i < 8; i++ {
		corner := Vec3{
			pick(i&1 != 0, b.Min.X(), b.Max.X()),
			pick(i&2 != 0, b.Min.Y(), b.Max.Y()),
			pick(i&4 != 0, b.Min.Z(), b.Max.Z()),
		}
		out = out.ExpandByPoint(TransformPoint(position, orientation, corner))
	}
	return out
}

// Contains reports whether other is entirely inside b.
func (b AABB) Contains(other AABB) bool {
	return b.Min.X() <= other.Min.X() && b.Min.Y() <= other.Min.Y() && b.Min.Z() <= other.Min.Z() &&
		b.Max.X() >= other.Max.X() && b.Max.Y() >= other.Max.Y() && b.Max.Z() >= other.Max.Z()
}

// ContainsPoint reports whether p lies inside b.
func (b AABB) ContainsPoint(p Vec3) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y() &&
		p.Z() >= b.Min.Z() && p.Z() <= b.Max.Z()
}

// Intersects reports whether a and b overlap on all three axes.
func (a AABB) Intersects(b AABB) bool {
	return a.Min.X() <= b.Max.X() && a.Max.X() >= b.Min.X() &&
		a.Min.Y() <= b.Max.Y() && a.Max.Y() >= b.Min.Y() &&
		a.Min.Z() <= b.Max.Z() && a.Max.Z() >= b.Min.Z()
}

func minVec(a, b Vec3) Vec3 {
	return Vec3{min32(a.X(), b.X()), min32(a.Y(), b.Y()), min32(a.Z(), b.Z())}
}

func maxVec(a, b Vec3) Vec3 {
	return Vec3{max32(a.X(), b.X()), max32(a.Y(), b.Y()), max32(a.Z(), b.Z())}
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func pick(cond bool, ifTrue, ifFalse float32) float32 {
	if cond {
		return ifTrue
	}
	return ifFalse
}
