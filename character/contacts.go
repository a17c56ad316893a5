package character

import (
	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/math3"
	"github.com/ironvale/physics3d/shape"
)

// contactKey identifies one tracked contact by the body and sub-shape it
// touches, per spec.md §4.10's "pool of tracked contact records keyed by
// (bodyId, subShapeId)".
type contactKey struct {
	body body.ID
	sub  uint64
}

// Contact records one collision the character shape found this step,
// field-for-field grounded on the jolt-go CharacterContact binding.
type Contact struct {
	Body             body.ID
	SubShapeID       shape.SubShapeID
	Position         math3.Vec3
	LinearVelocity   math3.Vec3
	ContactNormal    math3.Vec3 // points toward the character
	SurfaceNormal    math3.Vec3
	Distance         float32
	Fraction         float32
	IsSensor         bool
	CanPushCharacter bool
}

func (ct Contact) key() contactKey {
	return contactKey{body: ct.Body, sub: ct.SubShapeID.Raw()}
}

// IsSteep reports whether this contact's surface normal is steeper than
// the character's configured max walkable slope.
func (ct Contact) IsSteep(up math3.Vec3, maxSlopeCos float32) bool {
	return ct.SurfaceNormal.Dot(up) < maxSlopeCos
}

// Listener receives contact lifecycle callbacks, mirroring spec.md §6's
// rigid-body Listener but scoped to the character's own contacts.
type Listener interface {
	OnContactAdded(c *Character, ct Contact)
	OnContactPersisted(c *Character, ct Contact)
	OnContactRemoved(c *Character, id body.ID, sub shape.SubShapeID)
	OnContactValidate(c *Character, id body.ID, sub shape.SubShapeID) bool
}

// NopListener implements Listener with every callback a no-op except
// OnContactValidate, which accepts every contact.
type NopListener struct{}

func (NopListener) OnContactAdded(*Character, Contact)                 {}
func (NopListener) OnContactPersisted(*Character, Contact)             {}
func (NopListener) OnContactRemoved(*Character, body.ID, shape.SubShapeID) {}
func (NopListener) OnContactValidate(*Character, body.ID, shape.SubShapeID) bool {
	return true
}

// dispatchContacts diffs this step's contacts against the previous
// step's tracked set, firing Added/Persisted/Removed in that order.
func (c *Character) dispatchContacts(current []Contact, listener Listener) {
	seen := make(map[contactKey]bool, len(current))
	for _, ct := range current {
		if !listener.OnContactValidate(c, ct.Body, ct.SubShapeID) {
			continue
		}
		k := ct.key()
		seen[k] = true
		if _, existed := c.contacts[k]; existed {
			listener.OnContactPersisted(c, ct)
		} else {
			listener.OnContactAdded(c, ct)
		}
		c.contacts[k] = ct
	}
	for k, old := range c.contacts {
		if !seen[k] {
			listener.OnContactRemoved(c, old.Body, old.SubShapeID)
			delete(c.contacts, k)
		}
	}
}
