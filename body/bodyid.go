// Package body implements the rigid-body state spec.md §2 describes:
// the Body aggregate, its motion/mass properties, and the physics
// material bodies collide through.
package body

import "fmt"

// ID is a generational handle into the world's body pool: an index plus
// a generation counter that increments every time the slot is reused, so
// a stale ID from a destroyed body is never silently mistaken for a
// later body occupying the same slot (spec.md §2, explicitly not a UUID
// since the index must stay a cheap dense array lookup).
type ID struct {
	index      uint32
	generation uint32
}

// InvalidID is the zero value; no real body is ever assigned it since
// generation 0 is reserved for unallocated slots.
var InvalidID = ID{}

// NewID builds an ID from a raw index and generation, used only by the
// body pool that owns index assignment.
func NewID(index, generation uint32) ID { return ID{index: index, generation: generation} }

// Index returns the dense array index this ID addresses.
func (id ID) Index() uint32 { return id.index }

// Generation returns the reuse counter recorded at allocation time.
func (id ID) Generation() uint32 { return id.generation }

// IsValid reports whether id could name a real body (generation 0 is
// never issued to a live body).
func (id ID) IsValid() bool { return id.generation != 0 }

func (id ID) String() string {
	return fmt.Sprintf("Body#%d.%d", id.index, id.generation)
}
