// Package contact implements the persistent contact cache spec.md §5
// describes: one record per currently-overlapping shape pair, carrying
// warm-start impulses across steps and linked per-body so a body's
// contacts can be walked without a separate index.
package contact

import (
	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/collision"
	"github.com/ironvale/physics3d/shape"
)

// Key packs a contact's pool index with which body (A=0, B=1) a
// traversal arrived from, per spec.md §5's "(contactIndex<<1)|whichBody"
// encoding — cheap to store inline in a body's linked-list pointers
// without a separate side flag.
type Key uint32

// InvalidKey marks the end of a per-body contact list.
const InvalidKey Key = 0xFFFFFFFF

func makeKey(index uint32, whichBody int) Key {
	return Key(index<<1) | Key(whichBody&1)
}

func (k Key) index() uint32    { return uint32(k) >> 1 }
func (k Key) whichBody() int   { return int(k) & 1 }

// PointImpulse caches one manifold point's accumulated impulses across
// steps so the solver can warm-start instead of resolving from zero
// every frame (spec.md §5).
type PointImpulse struct {
	Normal    float32
	Friction1 float32
	Friction2 float32
}

// Contact is one persistent manifold between two bodies.
type Contact struct {
	BodyA, BodyB body.ID
	SubShapeA, SubShapeB shape.SubShapeID

	Manifold collision.Manifold
	Impulses []PointImpulse // parallel to Manifold.Points

	Friction    float32
	Restitution float32

	IsSensor bool
	Touching bool // set during narrowphase, cleared (then pruned) if not refreshed
	CCD      bool // this step's manifold came from the CCD pass, not discrete narrowphase

	nextForA, prevForA Key
	nextForB, prevForB Key
}

func (c *Contact) next(whichBody int) Key {
	if whichBody == 0 {
		return c.nextForA
	}
	return c.nextForB
}

func (c *Contact) setNext(whichBody int, k Key) {
	if whichBody == 0 {
		c.nextForA = k
	} else {
		c.nextForB = k
	}
}

func (c *Contact) prev(whichBody int) Key {
	if whichBody == 0 {
		return c.prevForA
	}
	return c.prevForB
}

func (c *Contact) setPrev(whichBody int, k Key) {
	if whichBody == 0 {
		c.prevForA = k
	} else {
		c.prevForB = k
	}
}

// bodySide returns 0 if id matches BodyA, 1 if it matches BodyB, and -1
// otherwise.
func (c *Contact) bodySide(id body.ID) int {
	switch id {
	case c.BodyA:
		return 0
	case c.BodyB:
		return 1
	default:
		return -1
	}
}
