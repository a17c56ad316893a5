package shape

import (
	"fmt"
	"sort"

	"github.com/ironvale/physics3d/math3"
)

// CompoundChild is one member of a Compound shape: a shape placed at a
// local offset, addressed by SubShapeIDBits bits of a sub-shape id.
type CompoundChild struct {
	LocalPosition math3.Vec3
	LocalRotation math3.Quat
	Shape         Shape
	Bits          uint8 // width of the selector consumed to reach this child
}

type compoundBVHNode struct {
	box         math3.AABB
	left, right int
	childIdx    int // >= 0 for leaves
}

// Compound groups several shapes under one rigid hierarchy, each with
// its own local placement. Descent consumes ceil(log2(len(Children)))
// bits (rounded up per child's declared Bits) from the sub-shape id.
type Compound struct {
	Children []CompoundChild
	nodes    []compoundBVHNode
}

// NewCompound validates and builds a Compound shape, deriving each
// child's selector width from the number of children if Bits is left 0.
func NewCompound(children []CompoundChild) (*Compound, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("shape: compound needs at least 1 child: %w", ErrDegenerateShape)
	}
	width := bitsNeeded(len(children))
	for i := range children {
		if children[i].Shape == nil {
			return nil, fmt.Errorf("shape: compound child %d has nil shape: %w", i, ErrDegenerateShape)
		}
		if children[i].Bits == 0 {
			children[i].Bits = width
		}
		if children[i].LocalRotation == (math3.Quat{}) {
			children[i].LocalRotation = math3.IdentityQuat()
		}
	}
	c := &Compound{Children: children}
	c.build()
	return c, nil
}

func bitsNeeded(n int) uint8 {
	bits := uint8(0)
	for (1 << bits) < n {
		bits++
	}
	if bits == 0 {
		bits = 1
	}
	return bits
}

func (c *Compound) childLocalBox(i int) math3.AABB {
	ch := c.Children[i]
	local := ch.Shape.AABB(math3.Identity())
	return local.Transform(ch.LocalPosition, ch.LocalRotation)
}

func (c *Compound) build() {
	indices := make([]int, len(c.Children))
	for i := range indices {
		indices[i] = i
	}
	c.nodes = make([]compoundBVHNode, 0, 2*len(c.Children))
	c.buildRange(indices)
}

func (c *Compound) buildRange(indices []int) int {
	box := math3.EmptyAABB()
	for _, i := range indices {
		box = math3.Union(box, c.childLocalBox(i))
	}
	idx := len(c.nodes)
	if len(indices) == 1 {
		c.nodes = append(c.nodes, compoundBVHNode{box: box, left: -1, right: -1, childIdx: indices[0]})
		return idx
	}
	c.nodes = append(c.nodes, compoundBVHNode{box: box, left: -1, right: -1, childIdx: -1})
	extents := box.Extents()
	axis := 0
	if extents.Y() > extents[axis] {
		axis = 1
	}
	if extents.Z() > extents[axis] {
		axis = 2
	}
	sort.Slice(indices, func(a, b int) bool {
		return c.childLocalBox(indices[a]).Center()[axis] < c.childLocalBox(indices[b]).Center()[axis]
	})
	mid := len(indices) / 2
	left := c.buildRange(indices[:mid])
	right := c.buildRange(indices[mid:])
	c.nodes[idx].left = left
	c.nodes[idx].right = right
	return idx
}

// QueryAABB visits every child index whose local AABB overlaps box
// (given in the compound's own local space).
func (c *Compound) QueryAABB(box math3.AABB, visit func(childIdx int)) {
	if len(c.nodes) == 0 {
		return
	}
	c.queryNode(0, box, visit)
}

func (c *Compound) queryNode(nodeIdx int, box math3.AABB, visit func(int)) {
	n := &c.nodes[nodeIdx]
	if !n.box.Intersects(box) {
		return
	}
	if n.childIdx >= 0 {
		visit(n.childIdx)
		return
	}
	c.queryNode(n.left, box, visit)
	c.queryNode(n.right, box, visit)
}

func (c *Compound) Type() Type { return TypeCompound }

func (c *Compound) AABB(t math3.Transform) math3.AABB {
	box := math3.EmptyAABB()
	for _, ch := range c.Children {
		childBox := ch.Shape.AABB(math3.Transform{Position: ch.LocalPosition, Orientation: ch.LocalRotation})
		box = math3.Union(box, childBox)
	}
	return box.Transform(t.Position, t.Orientation)
}

// SupportPoint is not generally meaningful for a non-convex compound;
// narrowphase dispatch descends into children instead of calling this
// directly, but we provide the best single-child approximation so the
// interface stays total.
func (c *Compound) SupportPoint(direction math3.Vec3, mode SupportMode) math3.Vec3 {
	var best math3.Vec3
	bestDot := float32(-1e30)
	for _, ch := range c.Children {
		localDir := ch.LocalRotation.Inverse().Rotate(direction)
		sp := ch.Shape.SupportPoint(localDir, mode)
		world := ch.LocalPosition.Add(ch.LocalRotation.Rotate(sp))
		d := world.Dot(direction)
		if d > bestDot {
			bestDot = d
			best = world
		}
	}
	return best
}

func (c *Compound) CenterOfMass() math3.Vec3 {
	mp, _ := c.MassProperties(1)
	return mp.CenterOfMass
}

func (c *Compound) Volume() float32 {
	var v float32
	for _, ch := range c.Children {
		v += ch.Shape.Volume()
	}
	return v
}

// MassProperties combines children via the parallel axis theorem.
// Succeeds only if every child provides mass properties.
func (c *Compound) MassProperties(density float32) (MassProperties, bool) {
	var totalMass float32
	com := math3.Zero3
	type childMass struct {
		mp  MassProperties
		pos math3.Vec3
		rot math3.Quat
	}
	masses := make([]childMass, 0, len(c.Children))
	for _, ch := range c.Children {
		mp, ok := ch.Shape.MassProperties(density)
		if !ok {
			return MassProperties{}, false
		}
		worldCom := ch.LocalPosition.Add(ch.LocalRotation.Rotate(mp.CenterOfMass))
		totalMass += mp.Mass
		com = com.Add(worldCom.Mul(mp.Mass))
		masses = append(masses, childMass{mp, ch.LocalPosition, ch.LocalRotation})
	}
	if totalMass <= math3.Epsilon {
		return MassProperties{}, false
	}
	com = com.Mul(1 / totalMass)

	var inertia math3.Mat3
	for _, cm := range masses {
		worldCom := cm.pos.Add(cm.rot.Rotate(cm.mp.CenterOfMass))
		rotated := rotateInertia(cm.mp.Inertia, cm.rot)
		offset := worldCom.Sub(com)
		shifted := parallelAxisShift(rotated, cm.mp.Mass, offset)
		inertia = addMat3(inertia, shifted)
	}
	return MassProperties{Mass: totalMass, Inertia: inertia, CenterOfMass: com}, true
}

func (c *Compound) SurfaceNormal(localPoint math3.Vec3, id SubShapeID) math3.Vec3 {
	child, remainder, ok := c.popChild(id)
	if !ok {
		return math3.UnitY
	}
	localInChild := child.LocalRotation.Inverse().Rotate(localPoint.Sub(child.LocalPosition))
	n := child.Shape.SurfaceNormal(localInChild, remainder)
	return child.LocalRotation.Rotate(n)
}

func (c *Compound) SupportingFace(direction math3.Vec3, id SubShapeID) Face {
	child, remainder, ok := c.popChild(id)
	if !ok {
		return nil
	}
	localDir := child.LocalRotation.Inverse().Rotate(direction)
	face := child.Shape.SupportingFace(localDir, remainder)
	out := make(Face, len(face))
	for i, p := range face {
		out[i] = child.LocalPosition.Add(child.LocalRotation.Rotate(p))
	}
	return out
}

func (c *Compound) popChild(id SubShapeID) (CompoundChild, SubShapeID, bool) {
	width := c.Children[0].Bits
	idx, remainder := id.Pop(width)
	if int(idx) >= len(c.Children) {
		return CompoundChild{}, id, false
	}
	return c.Children[idx], remainder, true
}

func (c *Compound) GetLeafShape(id SubShapeID) (Shape, SubShapeID) {
	child, remainder, ok := c.popChild(id)
	if !ok {
		return c, id
	}
	return child.Shape.GetLeafShape(remainder)
}

func (c *Compound) GetSubShapeTransformedShape(id SubShapeID, accumulated math3.Transform) (Shape, math3.Transform, SubShapeID) {
	child, remainder, ok := c.popChild(id)
	if !ok {
		return c, accumulated, id
	}
	childTransform := math3.Transform{Position: child.LocalPosition, Orientation: child.LocalRotation}.Then(accumulated)
	return child.Shape.GetSubShapeTransformedShape(remainder, childTransform)
}

func (c *Compound) ConvexRadius() float32 { return 0 }

func rotateInertia(i math3.Mat3, q math3.Quat) math3.Mat3 {
	r := q.Mat4().Mat3()
	rt := r.Transpose()
	return r.Mul3(i).Mul3(rt)
}

func parallelAxisShift(i math3.Mat3, mass float32, d math3.Vec3) math3.Mat3 {
	dx, dy, dz := d.X(), d.Y(), d.Z()
	shift := math3.Mat3{
		dy*dy + dz*dz, -dx * dy, -dx * dz,
		-dx * dy, dx*dx + dz*dz, -dy * dz,
		-dx * dz, -dy * dz, dx*dx + dy*dy,
	}
	return addMat3(i, scaleMat3(shift, mass))
}

func addMat3(a, b math3.Mat3) math3.Mat3 {
	var out math3.Mat3
	for i := range out {
		out[i] = a[i] + b[i]
	}
	return out
}
