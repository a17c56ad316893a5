package constraint

import (
	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/math3"
)

// AxisConstraintPart solves a single scalar constraint along a world
// direction between two bodies, with per-body lever arms from each
// body's center of mass to the constraint anchor. Every joint kind in
// this package is built from one or more of these, grounded on the
// teacher's JacobianElement/Equation split (experimental/physics/
// equation/jacobian.go, equation.go) but collapsed into the single
// sequential-impulse accumulator form Jolt and Box2D both use, since
// spec.md §4.7 asks for a warm-started iterative solve rather than the
// teacher's direct SPOOK-equation solve.
type AxisConstraintPart struct {
	invEffectiveMass float32
	totalLambda      float32
}

// effectiveMassDenominator returns invMassA + invMassB plus each body's
// angular contribution (rXaxis)·invInertia·(rXaxis).
func effectiveMassDenominator(axis math3.Vec3, bodyA, bodyB *body.Body, rA, rB math3.Vec3) float32 {
	denom := bodyA.InvMass() + bodyB.InvMass()

	rAxAxis := rA.Cross(axis)
	rBxAxis := rB.Cross(axis)
	denom += mulQuad(bodyA.InvInertiaWorld(), rAxAxis)
	denom += mulQuad(bodyB.InvInertiaWorld(), rBxAxis)
	return denom
}

func mulQuad(m math3.Mat3, v math3.Vec3) float32 {
	mv := math3.Vec3{
		m[0]*v[0] + m[3]*v[1] + m[6]*v[2],
		m[1]*v[0] + m[4]*v[1] + m[7]*v[2],
		m[2]*v[0] + m[5]*v[1] + m[8]*v[2],
	}
	return v.Dot(mv)
}

// CalculateConstraintProperties computes the effective mass for this
// axis given the current geometry; called once per step in
// setupVelocity.
func (p *AxisConstraintPart) CalculateConstraintProperties(axis math3.Vec3, bodyA, bodyB *body.Body, rA, rB math3.Vec3) {
	denom := effectiveMassDenominator(axis, bodyA, bodyB, rA, rB)
	if denom < math3.Epsilon {
		p.invEffectiveMass = 0
		return
	}
	p.invEffectiveMass = 1 / denom
}

// WarmStart reapplies totalLambda scaled by the ratio between this
// step's and the previous step's dt, per spec.md §4.7's warm-start
// requirement.
func (p *AxisConstraintPart) WarmStart(axis math3.Vec3, bodyA, bodyB *body.Body, rA, rB math3.Vec3, ratio float32) {
	p.totalLambda *= ratio
	p.applyImpulse(axis, bodyA, bodyB, rA, rB, p.totalLambda)
}

// SolveVelocity runs one sequential-impulse iteration toward
// targetVelocity (0 for a hard equality constraint), clamped to
// [minLambda, maxLambda] cumulative impulse, returning whether the
// accumulated impulse changed enough to mark the constraint active.
func (p *AxisConstraintPart) SolveVelocity(axis math3.Vec3, bodyA, bodyB *body.Body, rA, rB math3.Vec3, targetVelocity, minLambda, maxLambda float32) bool {
	if p.invEffectiveMass == 0 {
		return false
	}
	jv := relativeVelocity(axis, bodyA, bodyB, rA, rB)
	lambda := -(jv - targetVelocity) * p.invEffectiveMass

	oldTotal := p.totalLambda
	newTotal := math3.Clamp(oldTotal+lambda, minLambda, maxLambda)
	lambda = newTotal - oldTotal
	p.totalLambda = newTotal
	if lambda == 0 {
		return false
	}
	p.applyImpulse(axis, bodyA, bodyB, rA, rB, lambda)
	return true
}

func relativeVelocity(axis math3.Vec3, bodyA, bodyB *body.Body, rA, rB math3.Vec3) float32 {
	var va, wa, vb, wb math3.Vec3
	if bodyA.Motion != nil {
		va, wa = bodyA.Motion.LinearVelocity, bodyA.Motion.AngularVelocity
	}
	if bodyB.Motion != nil {
		vb, wb = bodyB.Motion.LinearVelocity, bodyB.Motion.AngularVelocity
	}
	pointVelA := va.Add(wa.Cross(rA))
	pointVelB := vb.Add(wb.Cross(rB))
	return axis.Dot(pointVelA) - axis.Dot(pointVelB)
}

func (p *AxisConstraintPart) applyImpulse(axis math3.Vec3, bodyA, bodyB *body.Body, rA, rB math3.Vec3, lambda float32) {
	impulse := axis.Mul(lambda)
	if bodyA.MotionType == body.Dynamic && bodyA.Motion != nil {
		bodyA.Motion.LinearVelocity = bodyA.Motion.LinearVelocity.Add(impulse.Mul(bodyA.InvMass()))
		bodyA.Motion.AngularVelocity = bodyA.Motion.AngularVelocity.Add(mulMat3Vec3(bodyA.InvInertiaWorld(), rA.Cross(impulse)))
	}
	if bodyB.MotionType == body.Dynamic && bodyB.Motion != nil {
		bodyB.Motion.LinearVelocity = bodyB.Motion.LinearVelocity.Sub(impulse.Mul(bodyB.InvMass()))
		bodyB.Motion.AngularVelocity = bodyB.Motion.AngularVelocity.Sub(mulMat3Vec3(bodyB.InvInertiaWorld(), rB.Cross(impulse)))
	}
}

func mulMat3Vec3(m math3.Mat3, v math3.Vec3) math3.Vec3 {
	return math3.Vec3{
		m[0]*v[0] + m[3]*v[1] + m[6]*v[2],
		m[1]*v[0] + m[4]*v[1] + m[7]*v[2],
		m[2]*v[0] + m[5]*v[1] + m[8]*v[2],
	}
}

// TotalLambda returns the accumulated impulse, for solvePosition's
// stability checks and for reporting constraint forces to listeners.
func (p *AxisConstraintPart) TotalLambda() float32 { return p.totalLambda }

// UnboundedLambda is the clamp bound for an axis with no force limit.
const UnboundedLambda = 1e30
