package shape

import (
	"fmt"

	"github.com/ironvale/physics3d/math3"
)

// OffsetCenterOfMass decorates an inner shape, overriding where its
// center of mass is reported to be without moving the shape's geometry —
// used when a body's mass distribution is known to differ from its
// collision volume's natural centroid.
type OffsetCenterOfMass struct {
	Offset math3.Vec3
	Inner  Shape
}

// NewOffsetCenterOfMass validates and builds an OffsetCenterOfMass shape.
func NewOffsetCenterOfMass(offset math3.Vec3, inner Shape) (*OffsetCenterOfMass, error) {
	if inner == nil {
		return nil, fmt.Errorf("shape: offset center of mass requires a non-nil inner shape: %w", ErrDegenerateShape)
	}
	return &OffsetCenterOfMass{Offset: offset, Inner: inner}, nil
}

func (o *OffsetCenterOfMass) Type() Type { return TypeOffsetCenterOfMass }

func (o *OffsetCenterOfMass) AABB(t math3.Transform) math3.AABB { return o.Inner.AABB(t) }

func (o *OffsetCenterOfMass) SupportPoint(direction math3.Vec3, mode SupportMode) math3.Vec3 {
	return o.Inner.SupportPoint(direction, mode)
}

func (o *OffsetCenterOfMass) CenterOfMass() math3.Vec3 {
	return o.Inner.CenterOfMass().Add(o.Offset)
}

func (o *OffsetCenterOfMass) Volume() float32 { return o.Inner.Volume() }

func (o *OffsetCenterOfMass) MassProperties(density float32) (MassProperties, bool) {
	mp, ok := o.Inner.MassProperties(density)
	if !ok {
		return MassProperties{}, false
	}
	mp.CenterOfMass = mp.CenterOfMass.Add(o.Offset)
	return mp, true
}

func (o *OffsetCenterOfMass) SurfaceNormal(localPoint math3.Vec3, id SubShapeID) math3.Vec3 {
	return o.Inner.SurfaceNormal(localPoint, id)
}

func (o *OffsetCenterOfMass) SupportingFace(direction math3.Vec3, id SubShapeID) Face {
	return o.Inner.SupportingFace(direction, id)
}

func (o *OffsetCenterOfMass) GetLeafShape(id SubShapeID) (Shape, SubShapeID) {
	return o.Inner.GetLeafShape(id)
}

func (o *OffsetCenterOfMass) GetSubShapeTransformedShape(id SubShapeID, accumulated math3.Transform) (Shape, math3.Transform, SubShapeID) {
	return o.Inner.GetSubShapeTransformedShape(id, accumulated)
}

func (o *OffsetCenterOfMass) ConvexRadius() float32 { return o.Inner.ConvexRadius() }
