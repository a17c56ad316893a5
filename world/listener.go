package world

import (
	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/collision"
	"github.com/ironvale/physics3d/shape"
)

// ContactSettings is the per-contact tuning a Listener callback can
// adjust before the solver ever sees it, spec.md §6's "contact settings"
// concept: CanPushCharacter/CanReceiveImpulses gate whether the contact
// participates physically at all, while Friction/Restitution override
// the two materials' combined values for this pair only.
type ContactSettings struct {
	CanPushCharacter  bool
	CanReceiveImpulses bool
	Friction           float32
	Restitution        float32
}

// Listener receives contact lifecycle callbacks during Step, mirroring
// spec.md §6's rigid-body contact listener and this module's own
// character.Listener for the character-controller analogue. Every method
// is optional in spirit — embed NopListener to pick only the hooks a
// caller actually needs.
type Listener interface {
	// OnBodyPairValidate runs once per broadphase-reported pair before
	// narrowphase, letting a caller reject a pair outright (e.g. a
	// gameplay-specific "ignore my own projectile" rule) cheaper than
	// running full narrowphase just to discard the result.
	OnBodyPairValidate(a, b body.ID) bool

	// OnContactValidate runs after narrowphase confirms an overlap but
	// before the contact is created or updated, letting a caller reject
	// specific manifolds (e.g. one-way platforms).
	OnContactValidate(a, b body.ID, manifold collision.Manifold) bool

	// OnContactAdded fires the step a new persistent contact is created.
	// settings is pre-filled from the two bodies' combined materials and
	// may be mutated in place to override friction/restitution or disable
	// physical response for this pair.
	OnContactAdded(a, b body.ID, manifold collision.Manifold, settings *ContactSettings)

	// OnContactPersisted fires every step after the first for a contact
	// that is still touching.
	OnContactPersisted(a, b body.ID, manifold collision.Manifold, settings *ContactSettings)

	// OnContactRemoved fires once a previously-touching pair stops
	// overlapping and its cache entry is pruned.
	OnContactRemoved(a, b body.ID, subA, subB shape.SubShapeID)
}

// NopListener implements Listener with every hook a no-op except the two
// validate callbacks, which accept everything.
type NopListener struct{}

func (NopListener) OnBodyPairValidate(body.ID, body.ID) bool { return true }
func (NopListener) OnContactValidate(body.ID, body.ID, collision.Manifold) bool {
	return true
}
func (NopListener) OnContactAdded(body.ID, body.ID, collision.Manifold, *ContactSettings)     {}
func (NopListener) OnContactPersisted(body.ID, body.ID, collision.Manifold, *ContactSettings) {}
func (NopListener) OnContactRemoved(body.ID, body.ID, shape.SubShapeID, shape.SubShapeID)      {}
