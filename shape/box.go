package shape

import (
	"fmt"

	"github.com/ironvale/physics3d/math3"
)

// Box is the Minkowski sum of a (possibly much smaller) inner box with a
// sphere of radius ConvexRadius; per spec.md §4.1 GJK operates on the
// inner box and the radius is added as a margin during penetration
// resolution.
type Box struct {
	HalfExtents  math3.Vec3
	Radius       float32
	innerExtents math3.Vec3 // HalfExtents shrunk by Radius on each axis, clamped at zero
}

// NewBox validates and builds a Box shape.
func NewBox(halfExtents math3.Vec3, convexRadius float32) (*Box, error) {
	if halfExtents.X() <= 0 || halfExtents.Y() <= 0 || halfExtents.Z() <= 0 {
		return nil, fmt.Errorf("shape: box half-extents must be positive, got %v: %w", halfExtents, ErrDegenerateShape)
	}
	if convexRadius < 0 {
		return nil, fmt.Errorf("shape: box convex radius must be non-negative, got %v: %w", convexRadius, ErrDegenerateShape)
	}
	b := &Box{HalfExtents: halfExtents, Radius: convexRadius}
	b.innerExtents = math3.Vec3{
		math3.Clamp(halfExtents.X()-convexRadius, 0, halfExtents.X()),
		math3.Clamp(halfExtents.Y()-convexRadius, 0, halfExtents.Y()),
		math3.Clamp(halfExtents.Z()-convexRadius, 0, halfExtents.Z()),
	}
	return b, nil
}

func (b *Box) Type() Type { return TypeBox }

func (b *Box) AABB(t math3.Transform) math3.AABB {
	local := math3.FromCenterHalfExtents(math3.Zero3, b.HalfExtents)
	return local.Transform(t.Position, t.Orientation)
}

func (b *Box) SupportPoint(direction math3.Vec3, mode SupportMode) math3.Vec3 {
	he := b.HalfExtents
	if mode == ExcludeConvexRadius {
		he = b.innerExtents
	}
	return math3.Vec3{
		signedExtent(direction.X(), he.X()),
		signedExtent(direction.Y(), he.Y()),
		signedExtent(direction.Z(), he.Z()),
	}
}

func signedExtent(d, he float32) float32 {
	if d < 0 {
		return -he
	}
	return he
}

func (b *Box) CenterOfMass() math3.Vec3 { return math3.Zero3 }

func (b *Box) Volume() float32 {
	return 8 * b.HalfExtents.X() * b.HalfExtents.Y() * b.HalfExtents.Z()
}

func (b *Box) MassProperties(density float32) (MassProperties, bool) {
	mass := b.Volume() * density
	w, h, d := 2*b.HalfExtents.X(), 2*b.HalfExtents.Y(), 2*b.HalfExtents.Z()
	ix := mass / 12 * (h*h + d*d)
	iy := mass / 12 * (w*w + d*d)
	iz := mass / 12 * (w*w + h*h)
	return MassProperties{
		Mass:         mass,
		Inertia:      math3.Mat3{ix, 0, 0, 0, iy, 0, 0, 0, iz},
		CenterOfMass: math3.Zero3,
	}, true
}

func (b *Box) SurfaceNormal(localPoint math3.Vec3, _ SubShapeID) math3.Vec3 {
	he := b.HalfExtents
	dx := math3.Abs(math3.Abs(localPoint.X()) - he.X())
	dy := math3.Abs(math3.Abs(localPoint.Y()) - he.Y())
	dz := math3.Abs(math3.Abs(localPoint.Z()) - he.Z())
	switch {
	case dx <= dy && dx <= dz:
		return math3.Vec3{signOf(localPoint.X()), 0, 0}
	case dy <= dx && dy <= dz:
		return math3.Vec3{0, signOf(localPoint.Y()), 0}
	default:
		return math3.Vec3{0, 0, signOf(localPoint.Z())}
	}
}

func signOf(x float32) float32 {
	if x < 0 {
		return -1
	}
	return 1
}

// SupportingFace returns the face of the inner box most nearly facing
// direction, as a quad in consistent winding order.
func (b *Box) SupportingFace(direction math3.Vec3, _ SubShapeID) Face {
	he := b.innerExtents
	ax, ay, az := math3.Abs(direction.X()), math3.Abs(direction.Y()), math3.Abs(direction.Z())
	switch {
	case ax >= ay && ax >= az:
		s := signOf(direction.X())
		return Face{
			{s * he.X(), -he.Y(), -he.Z()},
			{s * he.X(), he.Y(), -he.Z()},
			{s * he.X(), he.Y(), he.Z()},
			{s * he.X(), -he.Y(), he.Z()},
		}
	case ay >= ax && ay >= az:
		s := signOf(direction.Y())
		return Face{
			{-he.X(), s * he.Y(), -he.Z()},
			{-he.X(), s * he.Y(), he.Z()},
			{he.X(), s * he.Y(), he.Z()},
			{he.X(), s * he.Y(), -he.Z()},
		}
	default:
		s := signOf(direction.Z())
		return Face{
			{-he.X(), -he.Y(), s * he.Z()},
			{he.X(), -he.Y(), s * he.Z()},
			{he.X(), he.Y(), s * he.Z()},
			{-he.X(), he.Y(), s * he.Z()},
		}
	}
}

func (b *Box) GetLeafShape(id SubShapeID) (Shape, SubShapeID) { return b, id }

func (b *Box) GetSubShapeTransformedShape(id SubShapeID, accumulated math3.Transform) (Shape, math3.Transform, SubShapeID) {
	return b, accumulated, id
}

func (b *Box) ConvexRadius() float32 { return b.Radius }
