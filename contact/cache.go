package contact

import (
	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/shape"
)

// pairKey identifies a shape pair independent of pool slot, used to find
// last step's cached impulses for warm starting.
type pairKey struct {
	a, b     body.ID
	subA, subB uint64
}

func makePairKey(bodyA, bodyB body.ID, subA, subB shape.SubShapeID) pairKey {
	if bodyB.Index() < bodyA.Index() {
		bodyA, bodyB = bodyB, bodyA
		subA, subB = subB, subA
	}
	return pairKey{a: bodyA, b: bodyB, subA: subA.Raw(), subB: subB.Raw()}
}

// headFor tracks the per-body intrusive linked-list head.
type headFor map[uint32]Key

// Cache owns the contact pool plus the per-body linked lists and the
// pair index used to recover last step's contact for warm starting.
type Cache struct {
	pool   []Contact
	free   []uint32
	byPair map[pairKey]uint32
	heads  headFor
}

// NewCache returns an empty contact cache.
func NewCache() *Cache {
	return &Cache{byPair: make(map[pairKey]uint32), heads: make(headFor)}
}

// Find returns the existing contact for a shape pair, if any (used by
// narrowphase to warm-start before overwriting the manifold).
func (c *Cache) Find(bodyA, bodyB body.ID, subA, subB shape.SubShapeID) (*Contact, bool) {
	idx, ok := c.byPair[makePairKey(bodyA, bodyB, subA, subB)]
	if !ok {
		return nil, false
	}
	return &c.pool[idx], true
}

// Create allocates a new contact and links it into both bodies' contact
// lists. If a contact for the same pair already exists, it is returned
// unchanged (manifold and list links included); the caller replaces its
// manifold.
func (c *Cache) Create(bodyA, bodyB body.ID, subA, subB shape.SubShapeID) *Contact {
	key := makePairKey(bodyA, bodyB, subA, subB)
	if idx, ok := c.byPair[key]; ok {
		return &c.pool[idx]
	}

	var idx uint32
	if n := len(c.free); n > 0 {
		idx = c.free[n-1]
		c.free = c.free[:n-1]
	} else {
		c.pool = append(c.pool, Contact{})
		idx = uint32(len(c.pool) - 1)
	}

	ct := &c.pool[idx]
	*ct = Contact{
		BodyA: bodyA, BodyB: bodyB,
		SubShapeA: subA, SubShapeB: subB,
		nextForA: InvalidKey, prevForA: InvalidKey,
		nextForB: InvalidKey, prevForB: InvalidKey,
	}
	c.byPair[key] = idx

	c.linkIntoBody(idx, bodyA.Index(), 0)
	c.linkIntoBody(idx, bodyB.Index(), 1)
	return ct
}

func (c *Cache) linkIntoBody(idx uint32, bodyIndex uint32, whichBody int) {
	newKey := makeKey(idx, whichBody)
	oldHead, hasHead := c.heads[bodyIndex]
	c.pool[idx].setNext(whichBody, InvalidKey)
	if hasHead && oldHead != InvalidKey {
		c.pool[idx].setNext(whichBody, oldHead)
		headContact, headSide := c.resolve(oldHead)
		headContact.setPrev(headSide, newKey)
	}
	c.pool[idx].setPrev(whichBody, InvalidKey)
	c.heads[bodyIndex] = newKey
}

func (c *Cache) resolve(k Key) (*Contact, int) {
	return &c.pool[k.index()], k.whichBody()
}

// IterateBody calls visit for every contact touching the given body
// index, in linked-list order.
func (c *Cache) IterateBody(bodyIndex uint32, visit func(ct *Contact, whichBody int)) {
	key, ok := c.heads[bodyIndex]
	for ok && key != InvalidKey {
		ct, side := c.resolve(key)
		next := ct.next(side)
		visit(ct, side)
		key = next
		ok = key != InvalidKey
	}
}

// DestroyAllForBody removes every contact touching bodyIndex, on both
// sides of each contact, and frees their pool slots.
func (c *Cache) DestroyAllForBody(bodyIndex uint32) {
	var toDestroy []uint32
	c.IterateBody(bodyIndex, func(ct *Contact, whichBody int) {
		toDestroy = append(toDestroy, contactPoolIndex(c, ct))
	})
	for _, idx := range toDestroy {
		c.destroy(idx)
	}
	delete(c.heads, bodyIndex)
}

func contactPoolIndex(c *Cache, ct *Contact) uint32 {
	for i := range c.pool {
		if &c.pool[i] == ct {
			return uint32(i)
		}
	}
	return 0
}

func (c *Cache) destroy(idx uint32) {
	ct := &c.pool[idx]
	c.unlink(idx, ct.BodyA.Index(), 0)
	c.unlink(idx, ct.BodyB.Index(), 1)
	delete(c.byPair, makePairKey(ct.BodyA, ct.BodyB, ct.SubShapeA, ct.SubShapeB))
	*ct = Contact{}
	c.free = append(c.free, idx)
}

func (c *Cache) unlink(idx uint32, bodyIndex uint32, whichBody int) {
	ct := &c.pool[idx]
	prev := ct.prev(whichBody)
	next := ct.next(whichBody)

	if prev != InvalidKey {
		prevCt, prevSide := c.resolve(prev)
		prevCt.setNext(prevSide, next)
	} else {
		if next == InvalidKey {
			delete(c.heads, bodyIndex)
		} else {
			c.heads[bodyIndex] = next
		}
	}
	if next != InvalidKey {
		nextCt, nextSide := c.resolve(next)
		nextCt.setPrev(nextSide, prev)
	}
}

// ForEach calls visit for every live contact in the pool, in pool-slot
// order. Used by the island builder to union bodies touching each other
// without needing a second per-body index of its own.
func (c *Cache) ForEach(visit func(*Contact)) {
	for i := range c.pool {
		ct := &c.pool[i]
		if ct.BodyA == (body.ID{}) && ct.BodyB == (body.ID{}) {
			continue
		}
		visit(ct)
	}
}

// PruneUntouched destroys every contact not marked Touching this step
// (end-of-narrowphase cleanup, spec.md §5), invoking onDestroy for each
// before removal so a listener can be notified in a stable order.
func (c *Cache) PruneUntouched(onDestroy func(*Contact)) {
	for i := range c.pool {
		ct := &c.pool[i]
		if ct.BodyA == (body.ID{}) && ct.BodyB == (body.ID{}) {
			continue // free slot
		}
		if ct.Touching {
			ct.Touching = false // reset for next step's narrowphase pass
			continue
		}
		if onDestroy != nil {
			onDestroy(ct)
		}
		c.destroy(uint32(i))
	}
}
