package character

import (
	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/math3"
)

// applyImpulses pushes each contacted dynamic body using the
// effective-mass formula spec.md §4.10 step 6 specifies:
// P = Δv / (1/m + jᵀ·I⁻¹·j), clamped by MaxStrength·dt, with the
// component along the up-axis removed since gravity is handled
// separately from character-body contact pushing.
func (c *Character) applyImpulses(contacts []Contact, dt float32, bodies BodyLookup) {
	for _, ct := range contacts {
		if !ct.CanPushCharacter {
			continue
		}
		b := bodies.Body(ct.Body)
		if b == nil || b.MotionType != body.Dynamic || b.Motion == nil {
			continue
		}

		push := ct.ContactNormal.Mul(-1) // direction from the character into the body
		closingSpeed := c.LinearVelocity.Dot(push)
		if closingSpeed <= 0 {
			continue
		}

		r := ct.Position.Sub(b.Position)
		angularTerm := r.Cross(push)
		invInertiaTerm := mulMat3Vec3(b.InvInertiaWorld(), angularTerm).Dot(angularTerm)
		denom := b.InvMass() + invInertiaTerm
		if denom < math3.Epsilon {
			continue
		}

		magnitude := closingSpeed / denom
		if max := c.Settings.MaxStrength * dt; magnitude > max {
			magnitude = max
		}

		impulse := push.Mul(magnitude)
		impulse = impulse.Sub(c.Settings.Up.Mul(impulse.Dot(c.Settings.Up)))

		b.ApplyImpulse(impulse, ct.Position)
	}
}

func mulMat3Vec3(m math3.Mat3, v math3.Vec3) math3.Vec3 {
	return math3.Vec3{
		m[0]*v[0] + m[3]*v[1] + m[6]*v[2],
		m[1]*v[0] + m[4]*v[1] + m[7]*v[2],
		m[2]*v[0] + m[5]*v[1] + m[8]*v[2],
	}
}
