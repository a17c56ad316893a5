// Package shape implements the closed set of collision shape variants:
// analytic convex primitives, user-built convex hulls, static meshes and
// planes, and the composite/decorator shapes that combine them.
package shape

import (
	"errors"

	"github.com/ironvale/physics3d/math3"
)

// Type tags every concrete shape for dispatch and the serialization
// marker spec.md §4.1 asks for. Narrowphase dispatch is a compile-time
// exhaustive switch on this tag (spec.md §9: "no runtime registration
// required").
type Type int

const (
	TypeSphere Type = iota
	TypeBox
	TypeCapsule
	TypeCylinder
	TypeConvexHull
	TypeTriangleMesh
	TypePlane
	TypeCompound
	TypeTransformed
	TypeOffsetCenterOfMass
	TypeEmpty
)

func (t Type) String() string {
	switch t {
	case TypeSphere:
		return "Sphere"
	case TypeBox:
		return "Box"
	case TypeCapsule:
		return "Capsule"
	case TypeCylinder:
		return "Cylinder"
	case TypeConvexHull:
		return "ConvexHull"
	case TypeTriangleMesh:
		return "TriangleMesh"
	case TypePlane:
		return "Plane"
	case TypeCompound:
		return "Compound"
	case TypeTransformed:
		return "Transformed"
	case TypeOffsetCenterOfMass:
		return "OffsetCenterOfMass"
	case TypeEmpty:
		return "Empty"
	default:
		return "Unknown"
	}
}

// SupportMode selects whether a support function should report the
// surface of a shape's strictly-convex inner core, or that core
// expanded by its convex radius.
type SupportMode int

const (
	ExcludeConvexRadius SupportMode = iota
	IncludeConvexRadius
)

// MaxFaceVertices bounds the polygon returned by SupportingFace; manifold
// clipping only ever needs a handful of points.
const MaxFaceVertices = 16

// Face is a supporting polygon, ordered as a vertex loop.
type Face []math3.Vec3

// MassProperties carries a shape's mass, body-space inertia tensor and
// body-space center of mass, each at the density the caller requested.
type MassProperties struct {
	Mass         float32
	Inertia      math3.Mat3
	CenterOfMass math3.Vec3
}

// Scale scales mass properties computed at unit density by an actual
// density, scaling the inertia tensor (which is mass-linear) to match.
func (m MassProperties) Scale(density float32) MassProperties {
	return MassProperties{
		Mass:         m.Mass * density,
		Inertia:      scaleMat3(m.Inertia, density),
		CenterOfMass: m.CenterOfMass,
	}
}

func scaleMat3(m math3.Mat3, s float32) math3.Mat3 {
	for i := range m {
		m[i] *= s
	}
	return m
}

// ErrDegenerateShape is returned by fallible shape constructors when the
// input cannot describe a valid collision volume (spec.md §7 "invalid
// shape construction").
var ErrDegenerateShape = errors.New("shape: degenerate construction input")

// Shape is the uniform capability set every collision primitive and
// composite exposes, per spec.md §4.1.
type Shape interface {
	// Type identifies the concrete variant for dispatch/serialization.
	Type() Type

	// AABB returns the world-space bounding box of the shape placed at
	// localTransform.
	AABB(localTransform math3.Transform) math3.AABB

	// SupportPoint returns the farthest point on the shape along
	// direction (in the shape's local space), per mode.
	SupportPoint(direction math3.Vec3, mode SupportMode) math3.Vec3

	// CenterOfMass returns the shape's local-space center of mass.
	CenterOfMass() math3.Vec3

	// Volume returns the shape's volume; zero for shapes with no
	// interior (Plane, Empty).
	Volume() float32

	// MassProperties returns mass, body-space inertia and center of mass
	// at the given density. Shapes that cannot provide inertia (meshes,
	// triangles, planes) return ok=false so the caller can require an
	// override; Empty returns ok=true with zero mass.
	MassProperties(density float32) (MassProperties, bool)

	// SurfaceNormal returns the outward unit normal at a local-space
	// point on the named sub-shape.
	SurfaceNormal(localPoint math3.Vec3, id SubShapeID) math3.Vec3

	// SupportingFace returns the polygon most nearly facing direction on
	// the named sub-shape, capped at MaxFaceVertices.
	SupportingFace(direction math3.Vec3, id SubShapeID) Face

	// GetLeafShape resolves id to the leaf shape it names and the
	// remaining (already-consumed) bits.
	GetLeafShape(id SubShapeID) (leaf Shape, remainder SubShapeID)

	// GetSubShapeTransformedShape resolves id to its leaf shape and the
	// accumulated transform of that leaf relative to the shape's own
	// local space, composed onto accumulated.
	GetSubShapeTransformedShape(id SubShapeID, accumulated math3.Transform) (leaf Shape, transform math3.Transform, remainder SubShapeID)

	// ConvexRadius returns the Minkowski-sum skin radius GJK should add
	// as a margin; zero for shapes with no inner-core distinction.
	ConvexRadius() float32
}

// IsConvexPrimitive reports whether t names one of the non-composite,
// non-mesh convex shapes GJK/EPA operate on directly.
func IsConvexPrimitive(t Type) bool {
	switch t {
	case TypeSphere, TypeBox, TypeCapsule, TypeCylinder, TypeConvexHull:
		return true
	default:
		return false
	}
}

// IsComposite reports whether t is a shape that contains other shapes
// and must be descended via SubShapeID rather than dispatched to GJK
// directly.
func IsComposite(t Type) bool {
	switch t {
	case TypeCompound, TypeTransformed, TypeOffsetCenterOfMass, TypeTriangleMesh:
		return true
	default:
		return false
	}
}
