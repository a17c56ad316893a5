package body

import "github.com/ironvale/physics3d/math3"

// MassProperties is the solved mass/inertia a body actually integrates
// with: inverse mass and the full 3x3 inverse inertia tensor in body
// space, since every velocity update only ever needs the inverses.
type MassProperties struct {
	Mass           float32
	InvMass        float32
	Inertia        math3.Mat3
	InvInertia     math3.Mat3
	CenterOfMass   math3.Vec3
}

// NewMassProperties derives inverse mass/inertia from a shape's raw mass
// properties. Both inverses stay zero when mass is not above
// math3.Epsilon; zero inverse mass for static and kinematic bodies is
// applied separately by Body.InvMass and Body.InvInertiaWorld.
func NewMassProperties(mass float32, inertia math3.Mat3, com math3.Vec3) MassProperties {
	mp := MassProperties{Mass: mass, Inertia: inertia, CenterOfMass: com}
	if mass > math3.Epsilon {
		mp.InvMass = 1 / mass
		mp.InvInertia = invertMat3(inertia)
	}
	return mp
}

// Infinite returns the all-zero mass properties used for static and
// kinematic bodies.
func Infinite(com math3.Vec3) MassProperties {
	return MassProperties{CenterOfMass: com}
}

func invertMat3(m math3.Mat3) math3.Mat3 {
	det := m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[3]*(m[1]*m[8]-m[2]*m[7]) +
		m[6]*(m[1]*m[5]-m[2]*m[4])
	if det > -math3.Epsilon && det < math3.Epsilon {
		return math3.Mat3{}
	}
	invDet := 1 / det
	return math3.Mat3{
		(m[4]*m[8] - m[5]*m[7]) * invDet,
		(m[2]*m[7] - m[1]*m[8]) * invDet,
		(m[1]*m[5] - m[2]*m[4]) * invDet,
		(m[5]*m[6] - m[3]*m[8]) * invDet,
		(m[0]*m[8] - m[2]*m[6]) * invDet,
		(m[2]*m[3] - m[0]*m[5]) * invDet,
		(m[3]*m[7] - m[4]*m[6]) * invDet,
		(m[1]*m[6] - m[0]*m[7]) * invDet,
		(m[0]*m[4] - m[1]*m[3]) * invDet,
	}
}
