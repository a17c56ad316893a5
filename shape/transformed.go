package shape

import (
	"fmt"

	"github.com/ironvale/physics3d/math3"
)

// Transformed decorates an inner shape with an additional local
// position/rotation, letting a shape be reused at a fixed offset without
// duplicating its data (spec.md §9: "composite shapes box their inner
// shape").
type Transformed struct {
	LocalPosition math3.Vec3
	LocalRotation math3.Quat
	Inner         Shape
}

// NewTransformed validates and builds a Transformed shape.
func NewTransformed(localPosition math3.Vec3, localRotation math3.Quat, inner Shape) (*Transformed, error) {
	if inner == nil {
		return nil, fmt.Errorf("shape: transformed requires a non-nil inner shape: %w", ErrDegenerateShape)
	}
	if localRotation == (math3.Quat{}) {
		localRotation = math3.IdentityQuat()
	}
	return &Transformed{LocalPosition: localPosition, LocalRotation: localRotation, Inner: inner}, nil
}

func (t *Transformed) local() math3.Transform {
	return math3.Transform{Position: t.LocalPosition, Orientation: t.LocalRotation}
}

func (t *Transformed) Type() Type { return TypeTransformed }

func (t *Transformed) AABB(tr math3.Transform) math3.AABB {
	return t.Inner.AABB(t.local().Then(tr))
}

func (t *Transformed) SupportPoint(direction math3.Vec3, mode SupportMode) math3.Vec3 {
	localDir := t.LocalRotation.Inverse().Rotate(direction)
	sp := t.Inner.SupportPoint(localDir, mode)
	return t.LocalPosition.Add(t.LocalRotation.Rotate(sp))
}

func (t *Transformed) CenterOfMass() math3.Vec3 {
	return t.LocalPosition.Add(t.LocalRotation.Rotate(t.Inner.CenterOfMass()))
}

func (t *Transformed) Volume() float32 { return t.Inner.Volume() }

func (t *Transformed) MassProperties(density float32) (MassProperties, bool) {
	mp, ok := t.Inner.MassProperties(density)
	if !ok {
		return MassProperties{}, false
	}
	mp.CenterOfMass = t.LocalPosition.Add(t.LocalRotation.Rotate(mp.CenterOfMass))
	mp.Inertia = rotateInertia(mp.Inertia, t.LocalRotation)
	return mp, true
}

func (t *Transformed) SurfaceNormal(localPoint math3.Vec3, id SubShapeID) math3.Vec3 {
	inner := t.LocalRotation.Inverse().Rotate(localPoint.Sub(t.LocalPosition))
	n := t.Inner.SurfaceNormal(inner, id)
	return t.LocalRotation.Rotate(n)
}

func (t *Transformed) SupportingFace(direction math3.Vec3, id SubShapeID) Face {
	localDir := t.LocalRotation.Inverse().Rotate(direction)
	face := t.Inner.SupportingFace(localDir, id)
	out := make(Face, len(face))
	for i, p := range face {
		out[i] = t.LocalPosition.Add(t.LocalRotation.Rotate(p))
	}
	return out
}

func (t *Transformed) GetLeafShape(id SubShapeID) (Shape, SubShapeID) {
	return t.Inner.GetLeafShape(id)
}

func (t *Transformed) GetSubShapeTransformedShape(id SubShapeID, accumulated math3.Transform) (Shape, math3.Transform, SubShapeID) {
	return t.Inner.GetSubShapeTransformedShape(id, t.local().Then(accumulated))
}

func (t *Transformed) ConvexRadius() float32 { return t.Inner.ConvexRadius() }
