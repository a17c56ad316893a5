package world

import (
	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/constraint"
	"github.com/ironvale/physics3d/math3"
)

// PointSettings, DistanceSettings, ... mirror spec.md §6's one
// create(world, options) per constraint kind, each carrying exactly the
// fields that kind's constructor needs.
type PointSettings struct {
	BodyA, BodyB   body.ID
	LocalA, LocalB math3.Vec3
}

type DistanceSettings struct {
	BodyA, BodyB body.ID
	MinDistance  float32
	MaxDistance  float32
}

type HingeSettings struct {
	BodyA, BodyB           body.ID
	LocalA, LocalB         math3.Vec3
	AxisA, AxisB           math3.Vec3
}

type FixedSettings struct {
	BodyA, BodyB    body.ID
	LocalA, LocalB  math3.Vec3
	InitialRelative math3.Quat
}

type ConeSettings struct {
	BodyA, BodyB   body.ID
	LocalA, LocalB math3.Vec3
	AxisA, AxisB   math3.Vec3
	HalfAngle      float32
}

type SwingTwistSettings struct {
	BodyA, BodyB           body.ID
	LocalA, LocalB         math3.Vec3
	AxisA, AxisB           math3.Vec3
	HalfAngle              float32
	TwistMin, TwistMax     float32
}

type SliderSettings struct {
	BodyA, BodyB   body.ID
	LocalA, LocalB math3.Vec3
	AxisA          math3.Vec3
}

type SixDOFSettings struct {
	BodyA, BodyB    body.ID
	LocalA, LocalB  math3.Vec3
	InitialRelative math3.Quat
}

// addConstraint stores c under its Kind's pool, reusing a free slot if
// one exists, and wakes both bodies it connects the way the teacher's
// own AddConstraint does (experimental/physics/simulation.go).
func (w *World) addConstraint(kind constraint.Kind, c constraint.Constraint) constraint.ID {
	pool := w.constraints[kind]
	var index uint32
	if free := w.constraintFree[kind]; len(free) > 0 {
		index = free[len(free)-1]
		w.constraintFree[kind] = free[:len(free)-1]
		pool[index] = c
	} else {
		index = uint32(len(pool))
		pool = append(pool, c)
	}
	w.constraints[kind] = pool

	id := constraint.ID{Kind: kind, Index: index}
	w.attachConstraintToBody(c.BodyA(), id)
	w.attachConstraintToBody(c.BodyB(), id)
	w.WakeUp(c.BodyA())
	w.WakeUp(c.BodyB())
	return id
}

func (w *World) attachConstraintToBody(id body.ID, cid constraint.ID) {
	if b := w.Body(id); b != nil {
		b.ConstraintIDs = append(b.ConstraintIDs, packConstraintID(cid))
	}
}

func packConstraintID(id constraint.ID) uint32 {
	return uint32(id.Kind)<<24 | id.Index&0x00FFFFFF
}

func unpackConstraintID(packed uint32) constraint.ID {
	return constraint.ID{Kind: constraint.Kind(packed >> 24), Index: packed & 0x00FFFFFF}
}

// CreatePointConstraint pins a point on each body together, spec.md
// §4.7's Point joint.
func (w *World) CreatePointConstraint(s PointSettings) constraint.ID {
	return w.addConstraint(constraint.KindPoint, constraint.NewPoint(s.BodyA, s.BodyB, s.LocalA, s.LocalB))
}

// CreateDistanceConstraint holds two bodies within [MinDistance,
// MaxDistance] of each other.
func (w *World) CreateDistanceConstraint(s DistanceSettings) constraint.ID {
	c := constraint.NewDistance(s.BodyA, s.BodyB, s.MaxDistance)
	c.MinDistance = s.MinDistance
	c.MaxDistance = s.MaxDistance
	return w.addConstraint(constraint.KindDistance, c)
}

// CreateHingeConstraint restricts two bodies to rotate about a shared
// axis.
func (w *World) CreateHingeConstraint(s HingeSettings) constraint.ID {
	return w.addConstraint(constraint.KindHinge, constraint.NewHinge(s.BodyA, s.BodyB, s.LocalA, s.LocalB, s.AxisA, s.AxisB))
}

// CreateFixedConstraint welds two bodies at the relative orientation
// s.InitialRelative, pinned at s.LocalA/s.LocalB.
func (w *World) CreateFixedConstraint(s FixedSettings) constraint.ID {
	return w.addConstraint(constraint.KindFixed, constraint.NewFixed(s.BodyA, s.BodyB, s.LocalA, s.LocalB, s.InitialRelative))
}

// CreateConeConstraint limits the swing between two axes to a half-angle
// cone.
func (w *World) CreateConeConstraint(s ConeSettings) constraint.ID {
	return w.addConstraint(constraint.KindCone, constraint.NewCone(s.BodyA, s.BodyB, s.LocalA, s.LocalB, s.AxisA, s.AxisB, s.HalfAngle))
}

// CreateSwingTwistConstraint is a Cone joint plus a twist-angle range
// about the cone axis, spec.md §4.7's ragdoll-shoulder joint.
func (w *World) CreateSwingTwistConstraint(s SwingTwistSettings) constraint.ID {
	c := constraint.NewSwingTwist(s.BodyA, s.BodyB, s.LocalA, s.LocalB, s.AxisA, s.AxisB, s.HalfAngle, s.TwistMin, s.TwistMax)
	return w.addConstraint(constraint.KindSwingTwist, c)
}

// CreateSliderConstraint restricts two bodies to translate along a
// shared axis.
func (w *World) CreateSliderConstraint(s SliderSettings) constraint.ID {
	return w.addConstraint(constraint.KindSlider, constraint.NewSlider(s.BodyA, s.BodyB, s.LocalA, s.LocalB, s.AxisA))
}

// CreateSixDOFConstraint is the general joint spec.md §4.7 describes,
// independently limiting each of the 6 relative degrees of freedom.
func (w *World) CreateSixDOFConstraint(s SixDOFSettings) constraint.ID {
	return w.addConstraint(constraint.KindSixDOF, constraint.NewSixDOF(s.BodyA, s.BodyB, s.LocalA, s.LocalB, s.InitialRelative))
}

// RemoveConstraint unwinds a constraint's back-references from both
// bodies it connects and frees its pool slot. Returns false if id was
// already removed or never issued.
func (w *World) RemoveConstraint(id constraint.ID) bool {
	pool := w.constraints[id.Kind]
	if id.Index >= uint32(len(pool)) || pool[id.Index] == nil {
		return false
	}
	c := pool[id.Index]
	w.detachConstraintFromBody(c.BodyA(), id)
	w.detachConstraintFromBody(c.BodyB(), id)
	pool[id.Index] = nil
	w.constraintFree[id.Kind] = append(w.constraintFree[id.Kind], id.Index)
	return true
}

func (w *World) detachConstraintFromBody(bodyID body.ID, id constraint.ID) {
	b := w.Body(bodyID)
	if b == nil {
		return
	}
	packed := packConstraintID(id)
	for i, p := range b.ConstraintIDs {
		if p == packed {
			b.ConstraintIDs = append(b.ConstraintIDs[:i], b.ConstraintIDs[i+1:]...)
			break
		}
	}
}

func (w *World) removeConstraintsTouching(id body.ID) {
	b := w.Body(id)
	if b == nil {
		return
	}
	ids := append([]uint32(nil), b.ConstraintIDs...)
	for _, packed := range ids {
		w.RemoveConstraint(unpackConstraintID(packed))
	}
}

// liveConstraints collects every enabled constraint across all kinds, in
// (kind, index) order, for the island builder to further sort stably by
// priority per spec.md §8.
func (w *World) liveConstraints() []constraint.Constraint {
	var out []constraint.Constraint
	for kind := constraint.KindPoint; kind <= constraint.KindSixDOF; kind++ {
		for _, c := range w.constraints[kind] {
			if c != nil {
				out = append(out, c)
			}
		}
	}
	return out
}
