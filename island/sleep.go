package island

import (
	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/math3"
)

// SleepTimeThreshold is the default time a body must stay below its
// sleep-speed thresholds before its island is allowed to sleep,
// mirroring Jolt's default (0.5s) since neither the teacher nor the
// rest of the pack specifies one explicitly.
const SleepTimeThreshold = 0.5

// WakeSpeedMultiplier is how far above SleepLinearSqr/SleepAngularSqr a
// neighbor's speed must be to wake a sleeping body it touches, grounded
// directly on the teacher's Simulation.updateSleepAndCollisionMatrix
// (experimental/physics/simulation.go): "if speedSquaredB >=
// speedLimitSquaredB*2 { bodyA.SetWakeUpAfterNarrowphase(true) }".
const WakeSpeedMultiplier = 2

// UpdateSleep advances each island's sleep timer and puts islands whose
// every dynamic body has been below its sleep-speed threshold for
// SleepTimeThreshold to sleep; then propagates wake-ups from any moving
// body into a sleeping neighbor it is touching, per spec.md §4.7
// ("touching a sleeping island... wakes the whole island atomically").
func UpdateSleep(islands []*Island, bodies BodyLookup, dt float32) {
	for _, isl := range islands {
		updateIslandSleepTimer(isl, bodies, dt)
	}
	propagateWakeUps(islands, bodies)
}

func updateIslandSleepTimer(isl *Island, bodies BodyLookup, dt float32) {
	allBelowThreshold := true
	for _, id := range isl.Bodies {
		b := bodies.Body(id)
		if b == nil || b.Motion == nil {
			continue
		}
		if !b.Motion.AllowSleep {
			allBelowThreshold = false
			break
		}
		if !b.Motion.SpeedBelowSleepThreshold() {
			allBelowThreshold = false
			break
		}
	}

	if !allBelowThreshold {
		for _, id := range isl.Bodies {
			if b := bodies.Body(id); b != nil && b.Motion != nil {
				b.Motion.SleepTimer = 0
			}
		}
		isl.Asleep = false
		return
	}

	minTimer := float32(-1)
	for _, id := range isl.Bodies {
		b := bodies.Body(id)
		if b == nil || b.Motion == nil {
			continue
		}
		b.Motion.SleepTimer += dt
		if minTimer < 0 || b.Motion.SleepTimer < minTimer {
			minTimer = b.Motion.SleepTimer
		}
	}
	if minTimer >= SleepTimeThreshold {
		putIslandToSleep(isl, bodies)
	}
}

func putIslandToSleep(isl *Island, bodies BodyLookup) {
	isl.Asleep = true
	for _, id := range isl.Bodies {
		b := bodies.Body(id)
		if b == nil || b.Motion == nil {
			continue
		}
		b.Motion.LinearVelocity = math3.Zero3
		b.Motion.AngularVelocity = math3.Zero3
		b.IsActive = false
	}
}

// propagateWakeUps wakes any sleeping island touched, via a shared
// contact, by a body whose squared speed (linear plus angular) reaches
// WakeSpeedMultiplier times the sum of its squared sleep-speed limits —
// the teacher's exact activation rule.
func propagateWakeUps(islands []*Island, bodies BodyLookup) {
	for _, isl := range islands {
		if !isl.Asleep {
			continue
		}
		if touchedByFastNeighbor(isl, bodies) {
			wakeIsland(isl, bodies)
		}
	}
}

func touchedByFastNeighbor(isl *Island, bodies BodyLookup) bool {
	inIsland := make(map[body.ID]bool, len(isl.Bodies))
	for _, id := range isl.Bodies {
		inIsland[id] = true
	}
	for _, ct := range isl.Contacts {
		for _, other := range [2]body.ID{ct.BodyA, ct.BodyB} {
			if inIsland[other] {
				continue
			}
			ob := bodies.Body(other)
			if ob == nil || ob.Motion == nil {
				continue
			}
			speedSqr := ob.Motion.LinearVelocity.LenSqr() + ob.Motion.AngularVelocity.LenSqr()
			limitSqr := ob.Motion.SleepLinearSqr + ob.Motion.SleepAngularSqr
			if speedSqr >= limitSqr*WakeSpeedMultiplier {
				return true
			}
		}
	}
	return false
}

func wakeIsland(isl *Island, bodies BodyLookup) {
	isl.Asleep = false
	for _, id := range isl.Bodies {
		b := bodies.Body(id)
		if b == nil {
			continue
		}
		b.IsActive = true
		if b.Motion != nil {
			b.Motion.SleepTimer = 0
		}
	}
}
