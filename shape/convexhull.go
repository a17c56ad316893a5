package shape

import (
	"fmt"

	"github.com/ironvale/physics3d/math3"
)

// HullFace is an ordered vertex-index loop into ConvexHull.Vertices,
// together with its outward plane.
type HullFace struct {
	Indices []int
	Plane   HullPlane
}

// HullPlane is a plane in the form dot(Normal, x) = Constant.
type HullPlane struct {
	Normal   math3.Vec3
	Constant float32
}

// ConvexHull is a user-authored convex polyhedron. Building one from a
// raw point cloud is the offline convex-hull *builder*, explicitly out of
// scope per spec.md §1; ConvexHull itself only consumes the already-built
// vertices/faces/planes.
type ConvexHull struct {
	Vertices []math3.Vec3
	Faces    []HullFace
	Radius   float32
}

// NewConvexHull validates and builds a ConvexHull shape. Per spec.md §7 a
// hull needs at least four non-coplanar points; we check vertex count and
// that the input provides at least four faces as a proxy for
// non-coplanarity (a true coplanarity check belongs to the builder this
// spec does not define).
func NewConvexHull(vertices []math3.Vec3, faces []HullFace, convexRadius float32) (*ConvexHull, error) {
	if len(vertices) < 4 {
		return nil, fmt.Errorf("shape: convex hull needs at least 4 vertices, got %d: %w", len(vertices), ErrDegenerateShape)
	}
	if len(faces) < 4 {
		return nil, fmt.Errorf("shape: convex hull needs at least 4 faces, got %d: %w", len(faces), ErrDegenerateShape)
	}
	if convexRadius < 0 {
		return nil, fmt.Errorf("shape: convex radius must be non-negative: %w", ErrDegenerateShape)
	}
	return &ConvexHull{Vertices: vertices, Faces: faces, Radius: convexRadius}, nil
}

func (h *ConvexHull) Type() Type { return TypeConvexHull }

func (h *ConvexHull) AABB(t math3.Transform) math3.AABB {
	box := math3.EmptyAABB()
	for _, v := range h.Vertices {
		box = box.ExpandByPoint(t.Point(v))
	}
	return box.Expand(h.Radius)
}

func (h *ConvexHull) innerSupport(direction math3.Vec3) math3.Vec3 {
	best := h.Vertices[0]
	bestDot := best.Dot(direction)
	for _, v := range h.Vertices[1:] {
		d := v.Dot(direction)
		if d > bestDot {
			bestDot = d
			best = v
		}
	}
	return best
}

func (h *ConvexHull) SupportPoint(direction math3.Vec3, mode SupportMode) math3.Vec3 {
	core := h.innerSupport(direction)
	if mode == ExcludeConvexRadius || direction.LenSqr() < math3.Epsilon {
		return core
	}
	return core.Add(direction.Normalize().Mul(h.Radius))
}

func (h *ConvexHull) CenterOfMass() math3.Vec3 {
	mp, _ := h.MassProperties(1)
	return mp.CenterOfMass
}

func (h *ConvexHull) centroid() math3.Vec3 {
	sum := math3.Zero3
	for _, v := range h.Vertices {
		sum = sum.Add(v)
	}
	return sum.Mul(1.0 / float32(len(h.Vertices)))
}

// Volume decomposes the hull into tetrahedra fanned from its vertex
// centroid to each triangulated face.
func (h *ConvexHull) Volume() float32 {
	ref := h.centroid()
	var vol float32
	for _, f := range h.Faces {
		for i := 1; i+1 < len(f.Indices); i++ {
			a := h.Vertices[f.Indices[0]]
			b := h.Vertices[f.Indices[i]]
			c := h.Vertices[f.Indices[i+1]]
			vol += tetraVolume(ref, a, b, c)
		}
	}
	if vol < 0 {
		vol = -vol
	}
	return vol
}

func tetraVolume(p0, p1, p2, p3 math3.Vec3) float32 {
	a := p1.Sub(p0)
	b := p2.Sub(p0)
	c := p3.Sub(p0)
	return a.Cross(b).Dot(c) / 6
}

// MassProperties computes mass, inertia and center of mass by summing
// contributions from the tetrahedra of Volume's decomposition, the
// standard approach for arbitrary convex (or even non-convex watertight)
// polyhedra.
func (h *ConvexHull) MassProperties(density float32) (MassProperties, bool) {
	ref := h.centroid()
	var totalMass float32
	comNumerator := math3.Zero3
	var ixx, iyy, izz, ixy, ixz, iyz float32

	for _, f := range h.Faces {
		for i := 1; i+1 < len(f.Indices); i++ {
			a := h.Vertices[f.Indices[0]]
			b := h.Vertices[f.Indices[i]]
			c := h.Vertices[f.Indices[i+1]]
			vol := tetraVolume(ref, a, b, c)
			mass := vol * density
			totalMass += mass
			centroid4 := ref.Add(a).Add(b).Add(c).Mul(0.25)
			comNumerator = comNumerator.Add(centroid4.Mul(mass))

			// Covariance-based inertia accumulation for the tetrahedron,
			// approximated by treating its mass as concentrated at its
			// own centroid relative to ref (sufficiently accurate for a
			// physics core that does not claim exact mesh inertia).
			rel := centroid4.Sub(ref)
			ixx += mass * (rel.Y()*rel.Y() + rel.Z()*rel.Z())
			iyy += mass * (rel.X()*rel.X() + rel.Z()*rel.Z())
			izz += mass * (rel.X()*rel.X() + rel.Y()*rel.Y())
			ixy -= mass * rel.X() * rel.Y()
			ixz -= mass * rel.X() * rel.Z()
			iyz -= mass * rel.Y() * rel.Z()
		}
	}
	if totalMass <= math3.Epsilon {
		return MassProperties{}, false
	}
	com := comNumerator.Mul(1 / totalMass)
	// Shift inertia from ref to com via the parallel axis theorem.
	d := com.Sub(ref)
	ixx -= totalMass * (d.Y()*d.Y() + d.Z()*d.Z())
	iyy -= totalMass * (d.X()*d.X() + d.Z()*d.Z())
	izz -= totalMass * (d.X()*d.X() + d.Y()*d.Y())
	ixy += totalMass * d.X() * d.Y()
	ixz += totalMass * d.X() * d.Z()
	iyz += totalMass * d.Y() * d.Z()

	return MassProperties{
		Mass:         totalMass,
		Inertia:      math3.Mat3{ixx, ixy, ixz, ixy, iyy, iyz, ixz, iyz, izz},
		CenterOfMass: com,
	}, true
}

func (h *ConvexHull) SurfaceNormal(localPoint math3.Vec3, id SubShapeID) math3.Vec3 {
	idx, _ := id.Pop(16)
	if int(idx) < len(h.Faces) {
		return h.Faces[idx].Plane.Normal
	}
	// Fall back to nearest-plane search.
	best := 0
	bestDist := float32(-1e30)
	for i, f := range h.Faces {
		d := f.Plane.Normal.Dot(localPoint) - f.Plane.Constant
		if d > bestDist {
			bestDist = d
			best = i
		}
	}
	return h.Faces[best].Plane.Normal
}

func (h *ConvexHull) SupportingFace(direction math3.Vec3, _ SubShapeID) Face {
	best := 0
	bestDot := float32(-1e30)
	for i, f := range h.Faces {
		d := f.Plane.Normal.Dot(direction)
		if d > bestDot {
			bestDot = d
			best = i
		}
	}
	f := h.Faces[best]
	n := len(f.Indices)
	if n > MaxFaceVertices {
		n = MaxFaceVertices
	}
	face := make(Face, n)
	for i := 0; i < n; i++ {
		face[i] = h.Vertices[f.Indices[i]]
	}
	return face
}

func (h *ConvexHull) GetLeafShape(id SubShapeID) (Shape, SubShapeID) { return h, id }

func (h *ConvexHull) GetSubShapeTransformedShape(id SubShapeID, accumulated math3.Transform) (Shape, math3.Transform, SubShapeID) {
	return h, accumulated, id
}

func (h *ConvexHull) ConvexRadius() float32 { return h.Radius }
