package world

import (
	"math"
	"sort"

	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/broadphase"
	"github.com/ironvale/physics3d/ccd"
	"github.com/ironvale/physics3d/collision"
	"github.com/ironvale/physics3d/constraint"
	"github.com/ironvale/physics3d/contact"
	"github.com/ironvale/physics3d/island"
	"github.com/ironvale/physics3d/math3"
	"github.com/ironvale/physics3d/shape"
	"github.com/ironvale/physics3d/solver"
)

// Step advances the world by dt, following the teacher's internalStep
// pipeline (experimental/physics/simulation.go) generalized into
// spec.md §4/§6's island-based version: integrate forces into velocity,
// find and validate contacts, solve each island independently, sweep
// fast bodies for tunneling, then update sleep state.
func (w *World) Step(dt float32) {
	if dt <= math3.Epsilon {
		return
	}

	prevPositions := w.capturePositions()

	w.integrateForces(dt)

	pairs := w.broadphase.CollectPairs(w.objectLayerOf, nil)
	w.narrowphase(pairs)

	active := w.activeBodies()
	islands := island.Build(active, w, w.contacts, w.liveConstraints())
	w.islands = islands

	for _, isl := range islands {
		solver.SolveIsland(isl, w, dt, w.previousDt, w.settings.Solver, w.contactOf)
	}

	w.runCCD(active, prevPositions)

	w.contacts.PruneUntouched(w.onContactRemoved)
	island.UpdateSleep(islands, w, dt)

	w.previousDt = dt
	w.log.Debugf("step dt=%.4f active=%d islands=%d pairs=%d", dt, len(active), len(islands), len(pairs))
}

// integrateForces converts each active dynamic body's accumulated
// force/torque plus gravity and every registered ForceField into a
// velocity change, then applies exponential damping, grounded on the
// teacher's Body.ApplyForceField/ApplyDamping/Integrate
// (experimental/physics/object/body.go) — split out here since this
// module's body.Body.Integrate only does velocity-to-position motion.
func (w *World) integrateForces(dt float32) {
	for _, b := range w.bodies {
		if b == nil || !b.IsActive || b.MotionType != body.Dynamic || b.Motion == nil {
			continue
		}
		mp := b.Motion

		for _, f := range w.forceFields {
			if f != nil {
				mp.Force = mp.Force.Add(f.ForceAt(b.Position).Mul(mp.Mass.Mass))
			}
		}

		linearAccel := mp.Force.Mul(b.InvMass()).Add(w.settings.Gravity.Mul(mp.GravityFactor))
		mp.LinearVelocity = mp.LinearVelocity.Add(linearAccel.Mul(dt))

		angularAccel := mulMat3Vec3(b.InvInertiaWorld(), mp.Torque)
		mp.AngularVelocity = mp.AngularVelocity.Add(angularAccel.Mul(dt))

		mp.LinearVelocity = mp.LinearVelocity.Mul(dampingFactor(mp.LinearDamping, dt))
		mp.AngularVelocity = mp.AngularVelocity.Mul(dampingFactor(mp.AngularDamping, dt))

		mp.Force = math3.Zero3
		mp.Torque = math3.Zero3
		mp.ApplyDOFMask()
	}
}

// dampingFactor is the teacher's own per-axis exponential damping,
// velocity *= (1-damping)^dt (experimental/physics/object/body.go's
// ApplyDamping).
func dampingFactor(damping, dt float32) float32 {
	return float32(math.Pow(float64(1-damping), float64(dt)))
}

func (w *World) objectLayerOf(payload int32) broadphase.ObjectLayer {
	b := w.bodyByPayload(payload)
	if b == nil {
		return 0
	}
	return b.ObjectLayer
}

// narrowphase runs exact collision tests on every broadphase-reported
// pair, creates or refreshes each pair's persistent contact, and
// dispatches Listener events in the order spec.md §6 implies: validate
// the pair, validate each manifold, then report added/persisted.
func (w *World) narrowphase(pairs []broadphase.BodyPair) {
	for _, pair := range pairs {
		a := w.bodyByPayload(pair.A)
		b := w.bodyByPayload(pair.B)
		if a == nil || b == nil {
			continue
		}

		if !a.IsActive && !b.IsActive {
			// Neither side moved; keep any existing contact alive without
			// re-running narrowphase so a sleeping island's contacts
			// survive PruneUntouched.
			if ct, ok := w.contacts.Find(a.ID, b.ID, shape.EmptySubShapeID, shape.EmptySubShapeID); ok {
				ct.Touching = true
			}
			continue
		}
		if !a.CanCollideWith(b) {
			continue
		}
		if !w.listener.OnBodyPairValidate(a.ID, b.ID) {
			continue
		}

		var results []collision.PairResult
		collision.CollideShapes(a.Shape, a.Transform(), shape.EmptySubShapeID, b.Shape, b.Transform(), shape.EmptySubShapeID, &results)

		for _, r := range results {
			if !r.Intersect {
				continue
			}
			if !w.listener.OnContactValidate(a.ID, b.ID, r.Manifold) {
				continue
			}

			_, existed := w.contacts.Find(a.ID, b.ID, r.SubShapeA, r.SubShapeB)
			ct := w.contacts.Create(a.ID, b.ID, r.SubShapeA, r.SubShapeB)
			ct.Manifold = r.Manifold
			ct.Touching = true
			ct.CCD = false
			if !existed {
				w.log.Debugf("contact added %s<->%s points=%d", a.ID, b.ID, len(r.Manifold.Points))
			}

			settings := ContactSettings{
				CanPushCharacter:   true,
				CanReceiveImpulses: true,
				Friction:           body.CombineFriction(a.Material, b.Material),
				Restitution:        body.CombineRestitution(a.Material, b.Material),
			}
			if existed {
				w.listener.OnContactPersisted(a.ID, b.ID, r.Manifold, &settings)
			} else {
				w.listener.OnContactAdded(a.ID, b.ID, r.Manifold, &settings)
			}
			ct.Friction = settings.Friction
			ct.Restitution = settings.Restitution
			ct.IsSensor = a.IsSensor || b.IsSensor || !settings.CanReceiveImpulses
		}
	}
}

// contactOf builds one ContactConstraint per non-sensor contact the
// island owns; sensor contacts stay in the island (so they still
// contribute to connectivity/sleep bookkeeping) but are excluded from
// the actual solve, since island.Build has no filter of its own for
// contacts that should never produce an impulse.
func (w *World) contactOf(isl *island.Island) []constraint.Constraint {
	out := make([]constraint.Constraint, 0, len(isl.Contacts))
	for _, ct := range isl.Contacts {
		if ct.IsSensor {
			continue
		}
		out = append(out, constraint.NewContact(ct))
	}
	return out
}

func (w *World) onContactRemoved(ct *contact.Contact) {
	w.log.Debugf("contact removed %s<->%s", ct.BodyA, ct.BodyB)
	w.listener.OnContactRemoved(ct.BodyA, ct.BodyB, ct.SubShapeA, ct.SubShapeB)
}

// capturePositions snapshots every dynamic LinearCast body's
// pre-integration position, the baseline ccd.Sweep clamps against.
func (w *World) capturePositions() map[body.ID]math3.Vec3 {
	out := make(map[body.ID]math3.Vec3)
	for _, b := range w.bodies {
		if b == nil || b.MotionType != body.Dynamic || b.Motion == nil || b.Motion.Quality != body.LinearCast {
			continue
		}
		out[b.ID] = b.Position
	}
	return out
}

// activeBodies returns every currently-active body (spec.md §4.7's
// island input), sorted by index for deterministic downstream ordering.
func (w *World) activeBodies() []body.ID {
	var out []body.ID
	for _, b := range w.bodies {
		if b != nil && b.IsActive {
			out = append(out, b.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index() < out[j].Index() })
	return out
}

func (w *World) runCCD(active []body.ID, prevPositions map[body.ID]math3.Vec3) {
	for _, id := range active {
		prev, ok := prevPositions[id]
		if !ok {
			continue
		}
		ccd.Sweep(id, prev, w, w.broadphase, w.resolvePayload, w.contacts, w.settings.CCD)
	}
}
