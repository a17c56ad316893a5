package constraint

import (
	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/math3"
)

// AngularConstraintPart solves a single scalar constraint on relative
// angular velocity about a world axis, with no linear component.
// Grounded on the teacher's Rotational equation (experimental/physics/
// equation/rotational.go), whose Jacobian has a zero linear block and a
// +axisA/-axisB angular block; collapsed into the same sequential-
// impulse accumulator form as AxisConstraintPart.
type AngularConstraintPart struct {
	invEffectiveMass float32
	totalLambda      float32
}

func (p *AngularConstraintPart) CalculateConstraintProperties(axis math3.Vec3, bodyA, bodyB *body.Body) {
	denom := mulQuad(bodyA.InvInertiaWorld(), axis) + mulQuad(bodyB.InvInertiaWorld(), axis)
	if denom < math3.Epsilon {
		p.invEffectiveMass = 0
		return
	}
	p.invEffectiveMass = 1 / denom
}

func (p *AngularConstraintPart) WarmStart(axis math3.Vec3, bodyA, bodyB *body.Body, ratio float32) {
	p.totalLambda *= ratio
	p.applyImpulse(axis, bodyA, bodyB, p.totalLambda)
}

func (p *AngularConstraintPart) SolveVelocity(axis math3.Vec3, bodyA, bodyB *body.Body, targetVelocity, minLambda, maxLambda float32) bool {
	if p.invEffectiveMass == 0 {
		return false
	}
	var wa, wb math3.Vec3
	if bodyA.Motion != nil {
		wa = bodyA.Motion.AngularVelocity
	}
	if bodyB.Motion != nil {
		wb = bodyB.Motion.AngularVelocity
	}
	jv := axis.Dot(wa) - axis.Dot(wb)
	lambda := -(jv - targetVelocity) * p.invEffectiveMass

	oldTotal := p.totalLambda
	newTotal := math3.Clamp(oldTotal+lambda, minLambda, maxLambda)
	lambda = newTotal - oldTotal
	p.totalLambda = newTotal
	if lambda == 0 {
		return false
	}
	p.applyImpulse(axis, bodyA, bodyB, lambda)
	return true
}

func (p *AngularConstraintPart) applyImpulse(axis math3.Vec3, bodyA, bodyB *body.Body, lambda float32) {
	angImpulse := axis.Mul(lambda)
	if bodyA.MotionType == body.Dynamic && bodyA.Motion != nil {
		bodyA.Motion.AngularVelocity = bodyA.Motion.AngularVelocity.Add(mulMat3Vec3(bodyA.InvInertiaWorld(), angImpulse))
	}
	if bodyB.MotionType == body.Dynamic && bodyB.Motion != nil {
		bodyB.Motion.AngularVelocity = bodyB.Motion.AngularVelocity.Sub(mulMat3Vec3(bodyB.InvInertiaWorld(), angImpulse))
	}
}

func (p *AngularConstraintPart) TotalLambda() float32 { return p.totalLambda }
