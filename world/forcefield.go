package world

import "github.com/ironvale/physics3d/math3"

// ForceField reports its per-unit-mass force at a world-space point;
// each step the world multiplies it by every active dynamic body's mass
// and adds it to that body's accumulated force, grounded directly on the teacher's ForceField interface
// (experimental/physics/forcefield.go).
type ForceField interface {
	ForceAt(pos math3.Vec3) math3.Vec3
}

// maxForceFieldMagnitude caps an inverse-square field's strength near its
// singularity, the teacher's own stability guard in AttractorForceField/
// RepellerForceField.ForceAt.
const maxForceFieldMagnitude = 100

// ConstantForceField exerts the same force everywhere, e.g. a surface
// gravity different from the world's own Gravity.
type ConstantForceField struct {
	Force math3.Vec3
}

func (f *ConstantForceField) ForceAt(math3.Vec3) math3.Vec3 { return f.Force }

// AttractorForceField pulls every body toward Position with inverse-
// square falloff, grounded on the teacher's AttractorForceField.
type AttractorForceField struct {
	Position math3.Vec3
	Mass     float32
}

func (f *AttractorForceField) ForceAt(pos math3.Vec3) math3.Vec3 {
	return inverseSquareForce(f.Position.Sub(pos), f.Mass)
}

// RepellerForceField pushes every body away from Position with inverse-
// square falloff, grounded on the teacher's RepellerForceField.
type RepellerForceField struct {
	Position math3.Vec3
	Mass     float32
}

func (f *RepellerForceField) ForceAt(pos math3.Vec3) math3.Vec3 {
	return inverseSquareForce(pos.Sub(f.Position), f.Mass)
}

func inverseSquareForce(dir math3.Vec3, mass float32) math3.Vec3 {
	dist := dir.Len()
	if dist <= math3.Epsilon {
		return math3.Zero3
	}
	magnitude := mass / (dist * dist)
	if magnitude > maxForceFieldMagnitude {
		magnitude = maxForceFieldMagnitude
	}
	return dir.Normalize().Mul(magnitude)
}
