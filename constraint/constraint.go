package constraint

import "github.com/ironvale/physics3d/body"

// Constraint is the lifecycle every joint kind in this package
// implements, matching the four-phase sequential-impulse solve spec.md
// §4.7 and §2 describe: the solver calls SetupVelocity once per step,
// WarmStartVelocity once before the velocity-iteration loop,
// SolveVelocity once per velocity iteration, and SolvePosition once per
// position iteration to correct drift. Grounded on the teacher's
// IEquation interface (experimental/physics/equation/equation.go),
// split into named phases instead of a single Solve call so the solver
// package can warm-start and iterate without re-deriving Jacobians
// every pass.
type Constraint interface {
	// BodyA and BodyB name the two bodies this constraint links.
	BodyA() body.ID
	BodyB() body.ID

	// Enabled reports whether the solver should process this constraint
	// this step; a disabled constraint still exists in the pool.
	Enabled() bool
	SetEnabled(bool)

	// Priority orders constraint solving within an island; the island
	// builder sorts stably by priority, so equal priorities keep the
	// world's (kind, pool index) order, for determinism (spec.md §8).
	Priority() int

	// SetupVelocity recomputes Jacobians and effective masses from the
	// current pose, called once at the start of each step.
	SetupVelocity(bodies BodyLookup, dt float32)

	// WarmStartVelocity reapplies last step's accumulated impulse scaled
	// by warmStartRatio (dt/previousDt), seeding the velocity-iteration
	// loop from a state close to the true solution.
	WarmStartVelocity(bodies BodyLookup, warmStartRatio float32)

	// SolveVelocity runs one sequential-impulse pass, returning whether
	// any axis applied a nonzero impulse. The solver runs every
	// iteration regardless of the result.
	SolveVelocity(bodies BodyLookup, dt float32) bool

	// SolvePosition runs one Baumgarte-style positional correction pass
	// against any drift velocity iterations left behind, returning
	// whether it moved anything.
	SolvePosition(bodies BodyLookup, dt, baumgarte float32) bool
}

// BodyLookup resolves a body.ID to its live *body.Body; the world
// satisfies this through World.Body, so constraints never import the
// world package.
type BodyLookup interface {
	Body(id body.ID) *body.Body
}
