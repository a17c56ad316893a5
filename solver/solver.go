// Package solver implements the sequential-impulse velocity/position
// solver spec.md §4.8 describes, grounded on the teacher's own
// Gauss-Seidel solver shape (experimental/physics/solver/solver.go's
// ISolver interface: gather every equation, then Solve once per step)
// but run once per island instead of once per whole world, and split
// into the explicit warm-start/velocity-iterate/integrate/position-
// iterate/DOF-mask phases spec.md §4.8 enumerates — phases the teacher
// collapses into a single opaque solver.Solve call.
package solver

import (
	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/constraint"
	"github.com/ironvale/physics3d/island"
	"github.com/ironvale/physics3d/math3"
)

// Settings holds the solver's per-world tunables, defaulted per
// spec.md §4.8: 10 velocity iterations, 2 position iterations, 0.2
// Baumgarte factor.
type Settings struct {
	VelocityIterations int
	PositionIterations int
	Baumgarte          float32
}

// DefaultSettings returns spec.md §4.8's defaults.
func DefaultSettings() Settings {
	return Settings{VelocityIterations: 10, PositionIterations: 2, Baumgarte: 0.2}
}

// BodyLookup resolves a body.ID to its live *body.Body; island.Build's
// caller and this package share the same lookup contract so the world
// package can pass one object to both.
type BodyLookup interface {
	constraint.BodyLookup
	island.BodyLookup
}

// SolveIsland runs the full per-island pipeline: warm start, velocity
// iterations, position integration, position iterations, DOF masking.
// contactOf builds one ContactConstraint per contact the island owns;
// the world package supplies it so this package never needs to know how
// contacts map to constraints.
func SolveIsland(isl *island.Island, bodies BodyLookup, dt, previousDt float32, settings Settings, contactOf func(*island.Island) []constraint.Constraint) {
	if isl.Asleep {
		return
	}

	ratio := float32(1)
	if previousDt > math3.Epsilon {
		ratio = dt / previousDt
	}

	// Contact constraints first, then user constraints in priority
	// order, per spec.md §4.8: "Each iteration visits contact
	// constraints then user constraints (priority order)."
	all := make([]constraint.Constraint, 0, len(isl.Constraints)+len(isl.Contacts))
	all = append(all, contactOf(isl)...)
	all = append(all, isl.Constraints...)

	// 1. setupVelocity on contact and user constraints.
	for _, c := range all {
		if c.Enabled() {
			c.SetupVelocity(bodies, dt)
		}
	}

	// 2. Warm start with ratio = dt/previousDt.
	for _, c := range all {
		if c.Enabled() {
			c.WarmStartVelocity(bodies, ratio)
		}
	}

	// 3. Velocity iterations.
	iterations := settings.VelocityIterations
	if iterations <= 0 {
		iterations = 1
	}
	for i := 0; i < iterations; i++ {
		for _, c := range all {
			if c.Enabled() {
				c.SolveVelocity(bodies, dt)
			}
		}
	}

	// 4. Integrate positions with post-solve velocities, exact
	// axis-angle quaternion update (body.Integrate already does this).
	for _, id := range isl.Bodies {
		if b := bodies.Body(id); b != nil {
			b.Integrate(dt)
		}
	}

	// 5. Position iterations with Baumgarte stabilization, early-out
	// once a full sweep reports no correction.
	posIterations := settings.PositionIterations
	for i := 0; i < posIterations; i++ {
		anyCorrection := false
		for _, c := range all {
			if c.Enabled() && c.SolvePosition(bodies, dt, settings.Baumgarte) {
				anyCorrection = true
			}
		}
		if !anyCorrection {
			break
		}
	}

	// 6. Apply DOF masks to zero out disallowed velocity components.
	for _, id := range isl.Bodies {
		b := bodies.Body(id)
		if b == nil || b.Motion == nil {
			continue
		}
		b.Motion.ApplyDOFMask()
		b.Motion.ClampVelocities()
	}
}

var _ = body.Static // referenced only to document the BodyLookup contract's source package
