package body

import (
	"github.com/ironvale/physics3d/broadphase"
	"github.com/ironvale/physics3d/math3"
	"github.com/ironvale/physics3d/shape"
)

// MotionType classifies how a body participates in simulation, per
// spec.md §2 and grounded on the teacher's own BodyType enum
// (experimental/physics/object.BodyType), generalized with the explicit
// "static/kinematic report zero inverse mass" semantics spec.md adds.
type MotionType int

const (
	Static MotionType = iota
	Kinematic
	Dynamic
)

// MotionQuality selects how a dynamic body is swept through a step:
// Discrete bodies only test their end-of-step pose (spec.md §2), while
// LinearCast bodies additionally run a CCD sweep when their motion this
// step exceeds the tunneling threshold.
type MotionQuality int

const (
	Discrete MotionQuality = iota
	LinearCast
)

// DOFMask selects which of a dynamic body's 3 translational + 3
// rotational degrees of freedom the solver is allowed to move, per
// spec.md §4.7's six-bit DOF mask requirement (used to build 2D-plane or
// axis-locked rigid bodies without a dedicated constraint).
type DOFMask uint8

const (
	DOFTranslationX DOFMask = 1 << iota
	DOFTranslationY
	DOFTranslationZ
	DOFRotationX
	DOFRotationY
	DOFRotationZ
	DOFAllTranslation = DOFTranslationX | DOFTranslationY | DOFTranslationZ
	DOFAllRotation    = DOFRotationX | DOFRotationY | DOFRotationZ
	DOFAll            = DOFAllTranslation | DOFAllRotation
)

// MotionProperties holds everything only a non-static body needs:
// velocities, accumulated forces, damping, limits and the sleep-tracking
// state the island builder reads. Grounded on the teacher's Body
// velocity/force/damping fields (experimental/physics/object.Body),
// extended with the mass-properties split, DOF mask, motion quality and
// sleep-timer fields spec.md §2/§6 add.
type MotionProperties struct {
	LinearVelocity  math3.Vec3
	AngularVelocity math3.Vec3

	Force  math3.Vec3
	Torque math3.Vec3

	LinearDamping  float32
	AngularDamping float32
	MaxLinearVelocity  float32
	MaxAngularVelocity float32

	GravityFactor float32
	DOFs          DOFMask
	Quality       MotionQuality

	Mass MassProperties

	AllowSleep       bool
	SleepTimer       float32
	SleepLinearSqr   float32 // cached sleepLinearVelocity^2
	SleepAngularSqr  float32 // cached sleepAngularVelocity^2
}

// DefaultMotionProperties returns the settings a freshly created dynamic
// body starts with.
func DefaultMotionProperties() MotionProperties {
	return MotionProperties{
		LinearDamping:      0.05,
		AngularDamping:     0.05,
		MaxLinearVelocity:  500,
		MaxAngularVelocity: 47, // ~15*pi, Jolt's own default ceiling
		GravityFactor:      1,
		DOFs:               DOFAll,
		AllowSleep:         true,
		SleepLinearSqr:     0.01 * 0.01,
		SleepAngularSqr:    0.05 * 0.05,
	}
}

// ApplyDOFMask zeroes out velocity components the mask forbids, called
// after every velocity update so a locked axis never accumulates drift
// from solver impulses (spec.md §4.7).
func (mp *MotionProperties) ApplyDOFMask() {
	lv := mp.LinearVelocity
	if mp.DOFs&DOFTranslationX == 0 {
		lv[0] = 0
	}
	if mp.DOFs&DOFTranslationY == 0 {
		lv[1] = 0
	}
	if mp.DOFs&DOFTranslationZ == 0 {
		lv[2] = 0
	}
	mp.LinearVelocity = lv

	av := mp.AngularVelocity
	if mp.DOFs&DOFRotationX == 0 {
		av[0] = 0
	}
	if mp.DOFs&DOFRotationY == 0 {
		av[1] = 0
	}
	if mp.DOFs&DOFRotationZ == 0 {
		av[2] = 0
	}
	mp.AngularVelocity = av
}

// ClampVelocities caps linear/angular speed at MaxLinearVelocity/
// MaxAngularVelocity, preventing a single bad impulse from launching a
// body into a tunneling trajectory (spec.md §2).
func (mp *MotionProperties) ClampVelocities() {
	if l := mp.LinearVelocity.Len(); l > mp.MaxLinearVelocity && l > math3.Epsilon {
		mp.LinearVelocity = mp.LinearVelocity.Mul(mp.MaxLinearVelocity / l)
	}
	if a := mp.AngularVelocity.Len(); a > mp.MaxAngularVelocity && a > math3.Epsilon {
		mp.AngularVelocity = mp.AngularVelocity.Mul(mp.MaxAngularVelocity / a)
	}
}

// SpeedBelowSleepThreshold reports whether the body is slow enough right
// now to accumulate sleep time (spec.md §6's sleep-test spheres reduce to
// a velocity-threshold test for the common case).
func (mp *MotionProperties) SpeedBelowSleepThreshold() bool {
	return mp.LinearVelocity.LenSqr() < mp.SleepLinearSqr && mp.AngularVelocity.LenSqr() < mp.SleepAngularSqr
}

// Body is the full rigid-body record the world pool owns, per spec.md §2.
type Body struct {
	ID ID

	MotionType MotionType
	Position   math3.Vec3
	Orientation math3.Quat

	Shape       shape.Shape
	ObjectLayer broadphase.ObjectLayer
	Material    Material

	Motion *MotionProperties // nil for Static bodies

	CollisionGroup uint32
	CollisionMask  uint32
	IsSensor       bool
	EnhancedInternalEdgeRemoval bool

	broadphaseNode broadphase.NodeID
	hasBroadphase  bool

	IslandIndex int
	ActiveIndex int
	CCDIndex    int
	IsActive    bool

	ContactHead   int32 // index into the world's contact pool, -1 if none
	ConstraintIDs []uint32
}

// NewBody builds a body in the given motion state. Dynamic and Kinematic
// bodies get DefaultMotionProperties, whose mass the caller still fills
// in for Dynamic bodies; Static bodies carry a nil Motion pointer since
// they never move.
func NewBody(id ID, motionType MotionType, position math3.Vec3, orientation math3.Quat, s shape.Shape) *Body {
	b := &Body{
		ID:             id,
		MotionType:     motionType,
		Position:       position,
		Orientation:    orientation,
		Shape:          s,
		Material:       DefaultMaterial,
		CollisionGroup: 1,
		CollisionMask:  0xFFFFFFFF,
		ContactHead:    -1,
		IslandIndex:    -1,
		ActiveIndex:    -1,
		CCDIndex:       -1,
	}
	if motionType != Static {
		mp := DefaultMotionProperties()
		b.Motion = &mp
	}
	if orientation == (math3.Quat{}) {
		b.Orientation = math3.IdentityQuat()
	}
	return b
}

// Transform returns the body's current rigid transform.
func (b *Body) Transform() math3.Transform {
	return math3.Transform{Position: b.Position, Orientation: b.Orientation}
}

// WorldAABB returns the body's current world-space bounding box.
func (b *Body) WorldAABB() math3.AABB {
	return b.Shape.AABB(b.Transform())
}

// InvMass returns the inverse mass the solver should use: zero for
// Static and Kinematic bodies regardless of what MotionProperties says,
// so a caller can never accidentally move an immovable body.
func (b *Body) InvMass() float32 {
	if b.MotionType != Dynamic || b.Motion == nil {
		return 0
	}
	return b.Motion.Mass.InvMass
}

// InvInertiaWorld returns the inverse inertia tensor rotated into world
// space, zero for non-dynamic bodies.
func (b *Body) InvInertiaWorld() math3.Mat3 {
	if b.MotionType != Dynamic || b.Motion == nil {
		return math3.Mat3{}
	}
	r := b.Orientation.Mat4().Mat3()
	return r.Mul3(b.Motion.Mass.InvInertia).Mul3(r.Transpose())
}

// CanCollideWith applies the collision group/mask filter, independent of
// the object-layer filter the broadphase already applied.
func (b *Body) CanCollideWith(other *Body) bool {
	if b.MotionType != Dynamic && other.MotionType != Dynamic {
		return false
	}
	return b.CollisionMask&other.CollisionGroup != 0 && other.CollisionMask&b.CollisionGroup != 0
}

// SetBroadphaseHandle records which DBVT leaf this body owns; the world
// is the only caller.
func (b *Body) SetBroadphaseHandle(node broadphase.NodeID) {
	b.broadphaseNode = node
	b.hasBroadphase = true
}

// BroadphaseHandle returns the body's DBVT leaf, if it has been inserted.
func (b *Body) BroadphaseHandle() (broadphase.NodeID, bool) {
	return b.broadphaseNode, b.hasBroadphase
}

// ApplyImpulse adds an impulse at a world-space point, updating linear
// and angular velocity, grounded on the teacher's own
// Body.ApplyImpulse (experimental/physics/object/body.go).
func (b *Body) ApplyImpulse(impulse, worldPoint math3.Vec3) {
	if b.MotionType != Dynamic || b.Motion == nil {
		return
	}
	r := worldPoint.Sub(b.Position)
	b.Motion.LinearVelocity = b.Motion.LinearVelocity.Add(impulse.Mul(b.InvMass()))
	angImpulse := r.Cross(impulse)
	b.Motion.AngularVelocity = b.Motion.AngularVelocity.Add(mulMat3Vec3(b.InvInertiaWorld(), angImpulse))
	b.Motion.ApplyDOFMask()
}

func mulMat3Vec3(m math3.Mat3, v math3.Vec3) math3.Vec3 {
	return math3.Vec3{
		m[0]*v[0] + m[3]*v[1] + m[6]*v[2],
		m[1]*v[0] + m[4]*v[1] + m[7]*v[2],
		m[2]*v[0] + m[5]*v[1] + m[8]*v[2],
	}
}

// Integrate advances position/orientation by the current velocities over
// dt using exact quaternion integration, grounded on the teacher's own
// Body.Integrate but replacing its first-order quaternion update with
// math3.IntegrateQuat per spec.md §4.8.
func (b *Body) Integrate(dt float32) {
	if b.MotionType == Static || b.Motion == nil {
		return
	}
	b.Position = b.Position.Add(b.Motion.LinearVelocity.Mul(dt))
	b.Orientation = math3.IntegrateQuat(b.Orientation, b.Motion.AngularVelocity, dt)
}
