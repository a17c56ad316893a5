// Package world ties every other package together into the aggregate
// spec.md §6 calls World: body/constraint pools, broadphase, the contact
// cache, force fields and the per-step orchestration in step.go.
// Structurally grounded on the teacher's Simulation type
// (experimental/physics/simulation.go), which owns the same collection
// of bodies/equations/solver/force-fields and drives one internalStep
// per frame; generalized here into islands, a persistent contact cache
// and a pluggable Listener spec.md §6 requires and the teacher's single
// flat step never needed.
package world

import (
	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/broadphase"
	"github.com/ironvale/physics3d/constraint"
	"github.com/ironvale/physics3d/contact"
	"github.com/ironvale/physics3d/island"
	"github.com/ironvale/physics3d/telemetry"
)

// World owns every body, constraint, contact and force field in one
// simulation, plus the broadphase that narrows step-to-step collision
// candidates.
type World struct {
	settings *Settings

	bodies      []*body.Body
	generations []uint32
	freeList    []uint32

	broadphase *broadphase.Broadphase
	contacts   *contact.Cache

	constraints    [int(constraint.KindSixDOF) + 1][]constraint.Constraint
	constraintFree [int(constraint.KindSixDOF) + 1][]uint32

	forceFields []ForceField
	listener    Listener

	previousDt float32
	islands    []*island.Island

	log *telemetry.Logger
}

// CreateWorld builds a World from settings, per spec.md §6's
// createWorld(settings). A nil settings uses NewSettings()'s defaults.
func CreateWorld(settings *Settings) *World {
	if settings == nil {
		settings = NewSettings()
	}
	w := &World{
		settings:   settings,
		broadphase: broadphase.New(settings.Layers),
		contacts:   contact.NewCache(),
		listener:   NopListener{},
		log:        telemetry.New("world", telemetry.Root),
	}
	w.log.Infof("world created")
	return w
}

// Log returns this world's telemetry.Logger ("physics3d/world"), letting
// a host application adjust its level or attach additional writers
// (file, net) without reaching into package internals.
func (w *World) Log() *telemetry.Logger { return w.log }

// Settings returns the settings this world was created with.
func (w *World) Settings() *Settings { return w.settings }

// SetListener installs the contact listener Step dispatches events
// through; passing nil restores the no-op default.
func (w *World) SetListener(l Listener) {
	if l == nil {
		l = NopListener{}
	}
	w.listener = l
}

// AddForceField registers a force field applied to every active dynamic
// body each step, returning a handle for RemoveForceField.
func (w *World) AddForceField(f ForceField) int {
	w.forceFields = append(w.forceFields, f)
	return len(w.forceFields) - 1
}

// RemoveForceField clears a previously added force field by its handle.
func (w *World) RemoveForceField(handle int) {
	if handle < 0 || handle >= len(w.forceFields) {
		return
	}
	w.forceFields[handle] = nil
}

// BodyCount returns how many body slots are currently live (allocated,
// not freed) — used by tests and telemetry rather than any solver path.
func (w *World) BodyCount() int {
	return len(w.bodies) - len(w.freeList)
}
