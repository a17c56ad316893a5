package shape

import "github.com/ironvale/physics3d/math3"

// Empty is a shape with no volume and no collision surface, used as the
// default when a body's shape setting is left nil (spec.md §6).
type Empty struct{}

var sharedEmpty = &Empty{}

// NewEmpty returns the shared Empty shape instance.
func NewEmpty() *Empty { return sharedEmpty }

func (e *Empty) Type() Type { return TypeEmpty }

func (e *Empty) AABB(t math3.Transform) math3.AABB {
	return math3.NewAABB(t.Position, t.Position)
}

func (e *Empty) SupportPoint(math3.Vec3, SupportMode) math3.Vec3 { return math3.Zero3 }

func (e *Empty) CenterOfMass() math3.Vec3 { return math3.Zero3 }

func (e *Empty) Volume() float32 { return 0 }

func (e *Empty) MassProperties(float32) (MassProperties, bool) {
	return MassProperties{Mass: 0, Inertia: math3.Mat3{}, CenterOfMass: math3.Zero3}, true
}

func (e *Empty) SurfaceNormal(math3.Vec3, SubShapeID) math3.Vec3 { return math3.UnitY }

func (e *Empty) SupportingFace(math3.Vec3, SubShapeID) Face { return nil }

func (e *Empty) GetLeafShape(id SubShapeID) (Shape, SubShapeID) { return e, id }

func (e *Empty) GetSubShapeTransformedShape(id SubShapeID, accumulated math3.Transform) (Shape, math3.Transform, SubShapeID) {
	return e, accumulated, id
}

func (e *Empty) ConvexRadius() float32 { return 0 }
