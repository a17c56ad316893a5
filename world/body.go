package world

import (
	"math"

	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/broadphase"
	"github.com/ironvale/physics3d/math3"
	"github.com/ironvale/physics3d/shape"
)

// BodySettings enumerates the body-construction fields spec.md §6 lists
// under "Body surface (concept level)". Shape and ObjectLayer are
// required; MotionType defaults to Static if left unset.
type BodySettings struct {
	Shape       shape.Shape
	ObjectLayer broadphase.ObjectLayer
	MotionType  body.MotionType

	Position    math3.Vec3
	Orientation math3.Quat

	MotionQuality body.MotionQuality
	AllowedDOFs   body.DOFMask

	GravityFactor      float32
	LinearDamping      float32
	AngularDamping     float32
	MaxLinearVelocity  float32
	MaxAngularVelocity float32

	Friction           float32
	Restitution        float32
	FrictionCombine    body.CombineMode
	RestitutionCombine body.CombineMode

	CollisionGroup uint32
	CollisionMask  uint32

	AllowSleeping               bool
	IsSensor                    bool
	EnhancedInternalEdgeRemoval bool

	// Density feeds shape.Shape.MassProperties when MassOverride is nil;
	// ignored for Static/Kinematic bodies.
	Density float32
	// MassOverride lets the caller supply mass properties a shape can't
	// compute on its own (e.g. a triangle mesh), per spec.md §7's "mass
	// undefined" failure mode.
	MassOverride *body.MassProperties
}

// DefaultBodySettings returns a Dynamic body template with the same
// defaults body.DefaultMotionProperties and body.DefaultMaterial carry,
// plus unit density.
func DefaultBodySettings(s shape.Shape) BodySettings {
	mp := body.DefaultMotionProperties()
	return BodySettings{
		Shape:              s,
		MotionType:         body.Dynamic,
		Orientation:        math3.IdentityQuat(),
		AllowedDOFs:        mp.DOFs,
		GravityFactor:      mp.GravityFactor,
		LinearDamping:      mp.LinearDamping,
		AngularDamping:     mp.AngularDamping,
		MaxLinearVelocity:  mp.MaxLinearVelocity,
		MaxAngularVelocity: mp.MaxAngularVelocity,
		Friction:           body.DefaultMaterial.Friction,
		Restitution:        body.DefaultMaterial.Restitution,
		FrictionCombine:    body.DefaultMaterial.FrictionCombine,
		RestitutionCombine: body.DefaultMaterial.RestitutionCombine,
		CollisionGroup:     1,
		CollisionMask:      0xFFFFFFFF,
		AllowSleeping:      true,
		Density:            1,
	}
}

// CreateBody allocates a body from the world's pool, computes its mass
// properties if Dynamic, and inserts it into the broadphase, per
// spec.md §6's create(world, bodySettings) -> Body.
func (w *World) CreateBody(settings BodySettings) (body.ID, error) {
	if settings.Shape == nil {
		settings.Shape = shape.NewEmpty()
	}
	if settings.Orientation == (math3.Quat{}) {
		settings.Orientation = math3.IdentityQuat()
	}
	if _, ok := w.settings.Layers.ObjectLayerRegistered(settings.ObjectLayer); !ok {
		w.log.Warnf("CreateBody rejected: object layer %d was never registered", settings.ObjectLayer)
		return body.InvalidID, &ConfigError{Reason: "creating a body with an unregistered object layer"}
	}

	index, generation := w.allocateSlot()
	id := body.NewID(index, generation)

	b := body.NewBody(id, settings.MotionType, settings.Position, settings.Orientation, settings.Shape)
	b.ObjectLayer = settings.ObjectLayer
	b.Material = body.Material{
		Friction: settings.Friction, Restitution: settings.Restitution,
		FrictionCombine: settings.FrictionCombine, RestitutionCombine: settings.RestitutionCombine,
	}
	b.CollisionGroup = settings.CollisionGroup
	b.CollisionMask = settings.CollisionMask
	b.IsSensor = settings.IsSensor
	b.EnhancedInternalEdgeRemoval = settings.EnhancedInternalEdgeRemoval
	b.IsActive = settings.MotionType != body.Static

	if b.Motion != nil {
		b.Motion.DOFs = settings.AllowedDOFs
		b.Motion.Quality = settings.MotionQuality
		b.Motion.GravityFactor = settings.GravityFactor
		b.Motion.LinearDamping = settings.LinearDamping
		b.Motion.AngularDamping = settings.AngularDamping
		b.Motion.MaxLinearVelocity = settings.MaxLinearVelocity
		b.Motion.MaxAngularVelocity = settings.MaxAngularVelocity
		b.Motion.AllowSleep = settings.AllowSleeping

		if settings.MotionType == body.Dynamic {
			switch {
			case settings.MassOverride != nil:
				b.Motion.Mass = *settings.MassOverride
			default:
				mp, ok := settings.Shape.MassProperties(settings.Density)
				if !ok {
					w.freeSlot(index)
					w.log.Warnf("CreateBody rejected: shape cannot compute mass and no MassOverride was given")
					return body.InvalidID, &ConfigError{Reason: "dynamic body's shape cannot compute mass and no MassOverride was given"}
				}
				b.Motion.Mass = body.NewMassProperties(mp.Mass, mp.Inertia, mp.CenterOfMass)
			}
		}
	}

	w.bodies[index] = b
	node := w.broadphase.Insert(int32(index), settings.ObjectLayer, b.WorldAABB())
	b.SetBroadphaseHandle(node)

	w.log.Debugf("CreateBody %s motionType=%v layer=%d", id, settings.MotionType, settings.ObjectLayer)
	return id, nil
}

func (w *World) allocateSlot() (index, generation uint32) {
	if n := len(w.freeList); n > 0 {
		index = w.freeList[n-1]
		w.freeList = w.freeList[:n-1]
		w.generations[index]++
		return index, w.generations[index]
	}
	index = uint32(len(w.bodies))
	w.bodies = append(w.bodies, nil)
	w.generations = append(w.generations, 1)
	return index, 1
}

func (w *World) freeSlot(index uint32) {
	w.bodies[index] = nil
	w.freeList = append(w.freeList, index)
}

// RemoveBody detaches a body from the broadphase, destroys its
// contacts, drops any constraint referencing it, and frees its pool
// slot. Returns false if id was already stale.
func (w *World) RemoveBody(id body.ID) bool {
	b := w.Body(id)
	if b == nil {
		return false
	}
	if node, ok := b.BroadphaseHandle(); ok {
		w.broadphase.Remove(int32(id.Index()), node)
	}
	w.contacts.DestroyAllForBody(id.Index())
	w.removeConstraintsTouching(id)
	w.freeSlot(id.Index())
	return true
}

// Body resolves id to its live *body.Body, returning nil if the slot is
// empty or the generation has advanced past id's (spec.md §7: "invalid
// handle... reported by returning an absent value; never throws").
func (w *World) Body(id body.ID) *body.Body {
	idx := id.Index()
	if idx >= uint32(len(w.bodies)) {
		return nil
	}
	if w.generations[idx] != id.Generation() {
		return nil
	}
	return w.bodies[idx]
}

// SetPosition moves a body directly, bypassing velocity, and refreshes
// its broadphase leaf.
func (w *World) SetPosition(id body.ID, pos math3.Vec3) {
	b := w.Body(id)
	if b == nil {
		return
	}
	b.Position = pos
	w.refreshBroadphase(b)
}

// SetOrientation sets a body's orientation directly.
func (w *World) SetOrientation(id body.ID, q math3.Quat) {
	b := w.Body(id)
	if b == nil {
		return
	}
	b.Orientation = q
	w.refreshBroadphase(b)
}

// SetTransform sets both position and orientation in one broadphase
// update.
func (w *World) SetTransform(id body.ID, pos math3.Vec3, q math3.Quat) {
	b := w.Body(id)
	if b == nil {
		return
	}
	b.Position = pos
	b.Orientation = q
	w.refreshBroadphase(b)
}

// SetLinearVelocity overwrites a dynamic or kinematic body's velocity.
func (w *World) SetLinearVelocity(id body.ID, v math3.Vec3) {
	if b := w.Body(id); b != nil && b.Motion != nil {
		b.Motion.LinearVelocity = v
	}
}

// SetAngularVelocity overwrites a dynamic or kinematic body's angular
// velocity.
func (w *World) SetAngularVelocity(id body.ID, v math3.Vec3) {
	if b := w.Body(id); b != nil && b.Motion != nil {
		b.Motion.AngularVelocity = v
	}
}

// AddLinearVelocity adds to a body's current linear velocity.
func (w *World) AddLinearVelocity(id body.ID, v math3.Vec3) {
	if b := w.Body(id); b != nil && b.Motion != nil {
		b.Motion.LinearVelocity = b.Motion.LinearVelocity.Add(v)
	}
}

// AddForce accumulates a world-space force at the center of mass,
// consumed and cleared the next time Step integrates forces into
// velocity.
func (w *World) AddForce(id body.ID, force math3.Vec3) {
	if b := w.Body(id); b != nil && b.Motion != nil {
		b.Motion.Force = b.Motion.Force.Add(force)
	}
}

// AddTorque accumulates a world-space torque.
func (w *World) AddTorque(id body.ID, torque math3.Vec3) {
	if b := w.Body(id); b != nil && b.Motion != nil {
		b.Motion.Torque = b.Motion.Torque.Add(torque)
	}
}

// AddForceAtPosition accumulates force applied at a world-space point,
// splitting it into the center-of-mass force plus the torque the lever
// arm produces.
func (w *World) AddForceAtPosition(id body.ID, force, worldPoint math3.Vec3) {
	b := w.Body(id)
	if b == nil || b.Motion == nil {
		return
	}
	b.Motion.Force = b.Motion.Force.Add(force)
	b.Motion.Torque = b.Motion.Torque.Add(worldPoint.Sub(b.Position).Cross(force))
}

// AddImpulse applies an instantaneous impulse at the center of mass.
func (w *World) AddImpulse(id body.ID, impulse math3.Vec3) {
	if b := w.Body(id); b != nil {
		b.ApplyImpulse(impulse, b.Position)
	}
}

// AddImpulseAtPosition applies an instantaneous impulse at a world-space
// point.
func (w *World) AddImpulseAtPosition(id body.ID, impulse, worldPoint math3.Vec3) {
	if b := w.Body(id); b != nil {
		b.ApplyImpulse(impulse, worldPoint)
	}
}

// AddAngularImpulse applies an instantaneous angular impulse.
func (w *World) AddAngularImpulse(id body.ID, angularImpulse math3.Vec3) {
	b := w.Body(id)
	if b == nil || b.MotionType != body.Dynamic || b.Motion == nil {
		return
	}
	b.Motion.AngularVelocity = b.Motion.AngularVelocity.Add(mulMat3Vec3(b.InvInertiaWorld(), angularImpulse))
}

// MoveKinematic derives the linear/angular velocity a Kinematic body
// needs this step to reach targetPosition/targetOrientation exactly
// after dt, per spec.md §6's moveKinematic.
func (w *World) MoveKinematic(id body.ID, targetPosition math3.Vec3, targetOrientation math3.Quat, dt float32) {
	b := w.Body(id)
	if b == nil || b.MotionType != body.Kinematic || b.Motion == nil || dt <= math3.Epsilon {
		return
	}
	b.Motion.LinearVelocity = targetPosition.Sub(b.Position).Mul(1 / dt)
	delta := targetOrientation.Mul(b.Orientation.Inverse())
	axis, angle := quatToAxisAngle(delta)
	b.Motion.AngularVelocity = axis.Mul(angle / dt)
}

// WakeUp marks a body (and its island, next island rebuild) active.
func (w *World) WakeUp(id body.ID) {
	b := w.Body(id)
	if b == nil {
		return
	}
	b.IsActive = true
	if b.Motion != nil {
		b.Motion.SleepTimer = 0
	}
}

// Sleep immediately zeroes a dynamic body's velocity and marks it
// inactive, independent of the automatic sleep-timer path.
func (w *World) Sleep(id body.ID) {
	b := w.Body(id)
	if b == nil || b.Motion == nil {
		return
	}
	b.Motion.LinearVelocity = math3.Zero3
	b.Motion.AngularVelocity = math3.Zero3
	b.IsActive = false
}

// WakeInAABB wakes every body whose broadphase leaf overlaps box, per
// spec.md §6.
func (w *World) WakeInAABB(box math3.AABB) {
	w.broadphase.QueryAABB(box, func(payload int32) {
		if b := w.bodyByPayload(payload); b != nil {
			w.WakeUp(b.ID)
		}
	})
}

// SetMotionType changes a body's motion classification, optionally
// waking it (spec.md §6: setMotionType(..., wake: bool)). Switching into
// Dynamic from Static/Kinematic allocates a fresh zeroed
// MotionProperties if the body never had one.
func (w *World) SetMotionType(id body.ID, mt body.MotionType, wake bool) {
	b := w.Body(id)
	if b == nil {
		return
	}
	if b.Motion == nil && mt != body.Static {
		mp := body.DefaultMotionProperties()
		b.Motion = &mp
	}
	b.MotionType = mt
	if wake {
		w.WakeUp(id)
	}
}

// SetObjectLayer moves a body to a different object layer, re-inserting
// its broadphase leaf under the new layer's bucket.
func (w *World) SetObjectLayer(id body.ID, layer broadphase.ObjectLayer) {
	b := w.Body(id)
	if b == nil {
		return
	}
	if node, ok := b.BroadphaseHandle(); ok {
		w.broadphase.Remove(int32(id.Index()), node)
	}
	b.ObjectLayer = layer
	node := w.broadphase.Insert(int32(id.Index()), layer, b.WorldAABB())
	b.SetBroadphaseHandle(node)
}

func (w *World) refreshBroadphase(b *body.Body) {
	node, ok := b.BroadphaseHandle()
	if !ok {
		return
	}
	velocity := math3.Zero3
	if b.Motion != nil {
		velocity = b.Motion.LinearVelocity
	}
	if w.broadphase.Update(int32(b.ID.Index()), node, b.WorldAABB(), velocity) {
		b.SetBroadphaseHandle(node)
	}
}

func (w *World) bodyByPayload(payload int32) *body.Body {
	idx := uint32(payload)
	if idx >= uint32(len(w.bodies)) {
		return nil
	}
	return w.bodies[idx]
}

func (w *World) resolvePayload(payload int32) (body.ID, bool) {
	b := w.bodyByPayload(payload)
	if b == nil {
		return body.InvalidID, false
	}
	return b.ID, true
}

// quatToAxisAngle decomposes a unit quaternion into a rotation axis and
// angle, the inverse of math3.IntegrateQuat's axis-angle construction.
func quatToAxisAngle(q math3.Quat) (math3.Vec3, float32) {
	w := q.W
	if w > 1 {
		w = 1
	} else if w < -1 {
		w = -1
	}
	angle := 2 * float32(math.Acos(float64(w)))
	s := float32(math.Sqrt(float64(1 - w*w)))
	if s < math3.Epsilon {
		return math3.Vec3{1, 0, 0}, 0
	}
	return q.V.Mul(1 / s), angle
}

func mulMat3Vec3(m math3.Mat3, v math3.Vec3) math3.Vec3 {
	return math3.Vec3{
		m[0]*v[0] + m[3]*v[1] + m[6]*v[2],
		m[1]*v[0] + m[4]*v[1] + m[7]*v[2],
		m[2]*v[0] + m[5]*v[1] + m[8]*v[2],
	}
}
