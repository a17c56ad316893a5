package shape

import (
	"fmt"

	"github.com/ironvale/physics3d/math3"
)

// Sphere is the simplest convex primitive: a single point support plus a
// radius acting entirely as convex radius.
type Sphere struct {
	Radius float32
}

// NewSphere validates and builds a Sphere shape.
func NewSphere(radius float32) (*Sphere, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("shape: sphere radius must be positive, got %v: %w", radius, ErrDegenerateShape)
	}
	return &Sphere{Radius: radius}, nil
}

func (s *Sphere) Type() Type { return TypeSphere }

func (s *Sphere) AABB(t math3.Transform) math3.AABB {
	r := math3.Vec3{s.Radius, s.Radius, s.Radius}
	return math3.FromCenterHalfExtents(t.Position, r)
}

func (s *Sphere) SupportPoint(direction math3.Vec3, mode SupportMode) math3.Vec3 {
	if mode == ExcludeConvexRadius {
		return math3.Zero3
	}
	if direction.LenSqr() < math3.Epsilon {
		return math3.Vec3{0, s.Radius, 0}
	}
	return direction.Normalize().Mul(s.Radius)
}

func (s *Sphere) CenterOfMass() math3.Vec3 { return math3.Zero3 }

func (s *Sphere) Volume() float32 {
	return (4.0 / 3.0) * math3.Pi() * s.Radius * s.Radius * s.Radius
}

func (s *Sphere) MassProperties(density float32) (MassProperties, bool) {
	mass := s.Volume() * density
	i := 0.4 * mass * s.Radius * s.Radius
	return MassProperties{
		Mass:         mass,
		Inertia:      math3.Mat3{i, 0, 0, 0, i, 0, 0, 0, i},
		CenterOfMass: math3.Zero3,
	}, true
}

func (s *Sphere) SurfaceNormal(localPoint math3.Vec3, _ SubShapeID) math3.Vec3 {
	if localPoint.LenSqr() < math3.Epsilon {
		return math3.UnitY
	}
	return localPoint.Normalize()
}

func (s *Sphere) SupportingFace(direction math3.Vec3, id SubShapeID) Face {
	return Face{s.SupportPoint(direction, IncludeConvexRadius)}
}

func (s *Sphere) GetLeafShape(id SubShapeID) (Shape, SubShapeID) { return s, id }

func (s *Sphere) GetSubShapeTransformedShape(id SubShapeID, accumulated math3.Transform) (Shape, math3.Transform, SubShapeID) {
	return s, accumulated, id
}

func (s *Sphere) ConvexRadius() float32 { return s.Radius }
