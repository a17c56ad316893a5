package shape

import (
	"fmt"

	"github.com/ironvale/physics3d/math3"
)

// Capsule is a cylinder axis-aligned with local Y, entirely defined by
// its convex radius: the inner core is the line segment between the two
// cylinder-cap centers.
type Capsule struct {
	HalfHeight float32 // half height of the cylindrical part, excluding the caps
	Radius     float32
}

// NewCapsule validates and builds a Capsule shape.
func NewCapsule(halfHeight, radius float32) (*Capsule, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("shape: capsule radius must be positive, got %v: %w", radius, ErrDegenerateShape)
	}
	if halfHeight < 0 {
		return nil, fmt.Errorf("shape: capsule half height must be non-negative, got %v: %w", halfHeight, ErrDegenerateShape)
	}
	return &Capsule{HalfHeight: halfHeight, Radius: radius}, nil
}

func (c *Capsule) Type() Type { return TypeCapsule }

func (c *Capsule) AABB(t math3.Transform) math3.AABB {
	top := t.Point(math3.Vec3{0, c.HalfHeight, 0})
	bot := t.Point(math3.Vec3{0, -c.HalfHeight, 0})
	r := math3.Vec3{c.Radius, c.Radius, c.Radius}
	box := math3.NewAABB(top, top).ExpandByPoint(bot)
	return math3.AABB{Min: box.Min.Sub(r), Max: box.Max.Add(r)}
}

func (c *Capsule) segmentEnd(direction math3.Vec3) math3.Vec3 {
	if direction.Y() < 0 {
		return math3.Vec3{0, -c.HalfHeight, 0}
	}
	return math3.Vec3{0, c.HalfHeight, 0}
}

func (c *Capsule) SupportPoint(direction math3.Vec3, mode SupportMode) math3.Vec3 {
	core := c.segmentEnd(direction)
	if mode == ExcludeConvexRadius {
		return core
	}
	if direction.LenSqr() < math3.Epsilon {
		return core.Add(math3.Vec3{0, c.Radius, 0})
	}
	return core.Add(direction.Normalize().Mul(c.Radius))
}

func (c *Capsule) CenterOfMass() math3.Vec3 { return math3.Zero3 }

func (c *Capsule) Volume() float32 {
	cyl := math3.Pi() * c.Radius * c.Radius * (2 * c.HalfHeight)
	sph := (4.0 / 3.0) * math3.Pi() * c.Radius * c.Radius * c.Radius
	return cyl + sph
}

func (c *Capsule) MassProperties(density float32) (MassProperties, bool) {
	r := c.Radius
	h := 2 * c.HalfHeight
	cylMass := math3.Pi() * r * r * h * density
	sphMass := (4.0 / 3.0) * math3.Pi() * r * r * r * density
	mass := cylMass + sphMass

	// Standard capsule inertia: cylinder about its axis + two hemispheres
	// offset by the parallel axis theorem.
	iyCyl := 0.5 * cylMass * r * r
	ixCyl := cylMass*(3*r*r+h*h)/12 + 0
	ix := ixCyl + sphMass*(0.4*r*r) + sphMass*(c.HalfHeight*c.HalfHeight+0.75*c.HalfHeight*r)
	iy := iyCyl + sphMass*0.4*r*r
	iz := ix
	return MassProperties{
		Mass:         mass,
		Inertia:      math3.Mat3{ix, 0, 0, 0, iy, 0, 0, 0, iz},
		CenterOfMass: math3.Zero3,
	}, true
}

func (c *Capsule) SurfaceNormal(localPoint math3.Vec3, _ SubShapeID) math3.Vec3 {
	closest := closestPointOnSegment(localPoint, math3.Vec3{0, -c.HalfHeight, 0}, math3.Vec3{0, c.HalfHeight, 0})
	d := localPoint.Sub(closest)
	if d.LenSqr() < math3.Epsilon {
		return math3.UnitY
	}
	return d.Normalize()
}

func closestPointOnSegment(p, a, b math3.Vec3) math3.Vec3 {
	ab := b.Sub(a)
	denom := ab.Dot(ab)
	if denom < math3.Epsilon {
		return a
	}
	t := math3.Clamp(p.Sub(a).Dot(ab)/denom, 0, 1)
	return a.Add(ab.Mul(t))
}

func (c *Capsule) SupportingFace(direction math3.Vec3, id SubShapeID) Face {
	return Face{c.SupportPoint(direction, IncludeConvexRadius)}
}

func (c *Capsule) GetLeafShape(id SubShapeID) (Shape, SubShapeID) { return c, id }

func (c *Capsule) GetSubShapeTransformedShape(id SubShapeID, accumulated math3.Transform) (Shape, math3.Transform, SubShapeID) {
	return c, accumulated, id
}

func (c *Capsule) ConvexRadius() float32 { return c.Radius }
