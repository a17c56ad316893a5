package shape

import (
	"fmt"

	"github.com/ironvale/physics3d/math3"
)

// Plane is a half-space (dot(Normal, x) = Constant) clipped to a finite
// square region of side 2*HalfExtent, centered on the plane's own
// projection of the origin. Static-only in practice per spec.md §4.1.
type Plane struct {
	Normal    math3.Vec3
	Constant  float32
	HalfExtent float32
}

// NewPlane validates and builds a Plane shape.
func NewPlane(normal math3.Vec3, constant, halfExtent float32) (*Plane, error) {
	if normal.LenSqr() < math3.Epsilon {
		return nil, fmt.Errorf("shape: plane normal must be non-zero: %w", ErrDegenerateShape)
	}
	if halfExtent <= 0 {
		return nil, fmt.Errorf("shape: plane half extent must be positive, got %v: %w", halfExtent, ErrDegenerateShape)
	}
	return &Plane{Normal: normal.Normalize(), Constant: constant, HalfExtent: halfExtent}, nil
}

// basis returns two unit vectors spanning the plane, used to build the
// clipped quad.
func (p *Plane) basis() (math3.Vec3, math3.Vec3) {
	up := math3.UnitY
	if math3.Abs(p.Normal.Dot(up)) > 0.99 {
		up = math3.Vec3{1, 0, 0}
	}
	tangent := p.Normal.Cross(up).Normalize()
	bitangent := p.Normal.Cross(tangent)
	return tangent, bitangent
}

func (p *Plane) origin() math3.Vec3 {
	return p.Normal.Mul(p.Constant)
}

func (p *Plane) corners() [4]math3.Vec3 {
	t, b := p.basis()
	o := p.origin()
	he := p.HalfExtent
	return [4]math3.Vec3{
		o.Add(t.Mul(-he)).Add(b.Mul(-he)),
		o.Add(t.Mul(he)).Add(b.Mul(-he)),
		o.Add(t.Mul(he)).Add(b.Mul(he)),
		o.Add(t.Mul(-he)).Add(b.Mul(he)),
	}
}

func (p *Plane) Type() Type { return TypePlane }

func (p *Plane) AABB(t math3.Transform) math3.AABB {
	box := math3.EmptyAABB()
	for _, c := range p.corners() {
		box = box.ExpandByPoint(t.Point(c))
	}
	// Planes have zero thickness; fatten slightly so broadphase/raycast
	// slabs never collapse to a degenerate box on the normal axis.
	return box.Expand(1e-4)
}

func (p *Plane) SupportPoint(direction math3.Vec3, _ SupportMode) math3.Vec3 {
	best := p.corners()[0]
	bestDot := best.Dot(direction)
	for _, c := range p.corners()[1:] {
		d := c.Dot(direction)
		if d > bestDot {
			bestDot = d
			best = c
		}
	}
	return best
}

func (p *Plane) CenterOfMass() math3.Vec3 { return p.origin() }

func (p *Plane) Volume() float32 { return 0 }

func (p *Plane) MassProperties(float32) (MassProperties, bool) { return MassProperties{}, false }

func (p *Plane) SurfaceNormal(math3.Vec3, SubShapeID) math3.Vec3 { return p.Normal }

func (p *Plane) SupportingFace(direction math3.Vec3, _ SubShapeID) Face {
	c := p.corners()
	if p.Normal.Dot(direction) < 0 {
		return Face{c[0], c[3], c[2], c[1]}
	}
	return Face{c[0], c[1], c[2], c[3]}
}

func (p *Plane) GetLeafShape(id SubShapeID) (Shape, SubShapeID) { return p, id }

func (p *Plane) GetSubShapeTransformedShape(id SubShapeID, accumulated math3.Transform) (Shape, math3.Transform, SubShapeID) {
	return p, accumulated, id
}

func (p *Plane) ConvexRadius() float32 { return 0 }
