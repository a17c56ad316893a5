package shape

import (
	"fmt"

	"github.com/ironvale/physics3d/math3"
)

// Cylinder is a true cylinder (flat caps) axis-aligned with local Y. It
// carries a small convex radius purely for GJK/EPA numerical robustness
// at the cap edges, the way the teacher's convex shapes avoid degenerate
// edge cases at sharp corners.
type Cylinder struct {
	HalfHeight float32
	Radius     float32
	EdgeRadius float32
}

// DefaultCylinderEdgeRadius is used when callers do not need to tune the
// edge-rounding margin.
const DefaultCylinderEdgeRadius = 0.05

// NewCylinder validates and builds a Cylinder shape with the default
// edge-rounding radius.
func NewCylinder(halfHeight, radius float32) (*Cylinder, error) {
	return NewCylinderWithEdgeRadius(halfHeight, radius, DefaultCylinderEdgeRadius)
}

// NewCylinderWithEdgeRadius builds a Cylinder with an explicit edge
// convex radius.
func NewCylinderWithEdgeRadius(halfHeight, radius, edgeRadius float32) (*Cylinder, error) {
	if halfHeight <= 0 || radius <= 0 {
		return nil, fmt.Errorf("shape: cylinder half height and radius must be positive, got (%v, %v): %w", halfHeight, radius, ErrDegenerateShape)
	}
	if edgeRadius < 0 || edgeRadius > radius || edgeRadius > halfHeight {
		return nil, fmt.Errorf("shape: cylinder edge radius %v out of range: %w", edgeRadius, ErrDegenerateShape)
	}
	return &Cylinder{HalfHeight: halfHeight, Radius: radius, EdgeRadius: edgeRadius}, nil
}

func (c *Cylinder) Type() Type { return TypeCylinder }

func (c *Cylinder) AABB(t math3.Transform) math3.AABB {
	local := math3.FromCenterHalfExtents(math3.Zero3, math3.Vec3{c.Radius, c.HalfHeight, c.Radius})
	return local.Transform(t.Position, t.Orientation)
}

func (c *Cylinder) innerHalfHeight() float32 { return c.HalfHeight - c.EdgeRadius }
func (c *Cylinder) innerRadius() float32     { return c.Radius - c.EdgeRadius }

func (c *Cylinder) SupportPoint(direction math3.Vec3, mode SupportMode) math3.Vec3 {
	r, h := c.Radius, c.HalfHeight
	if mode == ExcludeConvexRadius {
		r, h = c.innerRadius(), c.innerHalfHeight()
	}
	xz := math3.Vec3{direction.X(), 0, direction.Z()}
	y := signOf(direction.Y()) * h
	if xz.LenSqr() < math3.Epsilon {
		return math3.Vec3{0, y, 0}
	}
	xz = xz.Normalize().Mul(r)
	return math3.Vec3{xz.X(), y, xz.Z()}
}

func (c *Cylinder) CenterOfMass() math3.Vec3 { return math3.Zero3 }

func (c *Cylinder) Volume() float32 {
	return math3.Pi() * c.Radius * c.Radius * (2 * c.HalfHeight)
}

func (c *Cylinder) MassProperties(density float32) (MassProperties, bool) {
	mass := c.Volume() * density
	iy := 0.5 * mass * c.Radius * c.Radius
	ix := mass / 12 * (3*c.Radius*c.Radius + (2*c.HalfHeight)*(2*c.HalfHeight))
	return MassProperties{
		Mass:         mass,
		Inertia:      math3.Mat3{ix, 0, 0, 0, iy, 0, 0, 0, ix},
		CenterOfMass: math3.Zero3,
	}, true
}

func (c *Cylinder) SurfaceNormal(localPoint math3.Vec3, _ SubShapeID) math3.Vec3 {
	xz := math3.Vec3{localPoint.X(), 0, localPoint.Z()}
	distTop := math3.Abs(localPoint.Y() - c.HalfHeight)
	distBot := math3.Abs(localPoint.Y() + c.HalfHeight)
	distSide := math3.Abs(xz.Len() - c.Radius)
	switch {
	case distTop <= distBot && distTop <= distSide:
		return math3.Vec3{0, 1, 0}
	case distBot <= distTop && distBot <= distSide:
		return math3.Vec3{0, -1, 0}
	default:
		if xz.LenSqr() < math3.Epsilon {
			return math3.UnitY
		}
		return xz.Normalize()
	}
}

func (c *Cylinder) SupportingFace(direction math3.Vec3, _ SubShapeID) Face {
	if math3.Abs(direction.Y()) > 0.7 {
		// The cap facing direction, approximated as an octagon.
		y := signOf(direction.Y()) * c.innerHalfHeight()
		const n = 8
		face := make(Face, 0, n)
		for i := 0; i < n; i++ {
			angle := float32(i) * (2 * math3.Pi() / n)
			face = append(face, math3.Vec3{c.innerRadius() * cos32(angle), y, c.innerRadius() * sin32(angle)})
		}
		return face
	}
	return Face{c.SupportPoint(direction, IncludeConvexRadius)}
}

func (c *Cylinder) GetLeafShape(id SubShapeID) (Shape, SubShapeID) { return c, id }

func (c *Cylinder) GetSubShapeTransformedShape(id SubShapeID, accumulated math3.Transform) (Shape, math3.Transform, SubShapeID) {
	return c, accumulated, id
}

func (c *Cylinder) ConvexRadius() float32 { return c.EdgeRadius }
