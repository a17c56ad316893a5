package contact

import (
	"testing"

	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFindAndDestroy(t *testing.T) {
	c := NewCache()
	a := body.NewID(1, 1)
	b := body.NewID(2, 1)

	ct := c.Create(a, b, shape.EmptySubShapeID, shape.EmptySubShapeID)
	require.NotNil(t, ct)

	found, ok := c.Find(a, b, shape.EmptySubShapeID, shape.EmptySubShapeID)
	require.True(t, ok)
	assert.Same(t, ct, found)

	found2, ok := c.Find(b, a, shape.EmptySubShapeID, shape.EmptySubShapeID)
	require.True(t, ok)
	assert.Same(t, ct, found2)

	var count int
	c.IterateBody(a.Index(), func(*Contact, int) { count++ })
	assert.Equal(t, 1, count)

	c.DestroyAllForBody(a.Index())
	_, ok = c.Find(a, b, shape.EmptySubShapeID, shape.EmptySubShapeID)
	assert.False(t, ok)
}

func TestPruneUntouchedDestroysStaleContacts(t *testing.T) {
	c := NewCache()
	a := body.NewID(1, 1)
	b := body.NewID(2, 1)
	ct := c.Create(a, b, shape.EmptySubShapeID, shape.EmptySubShapeID)
	ct.Touching = false

	var destroyed int
	c.PruneUntouched(func(*Contact) { destroyed++ })
	assert.Equal(t, 1, destroyed)

	_, ok := c.Find(a, b, shape.EmptySubShapeID, shape.EmptySubShapeID)
	assert.False(t, ok)
}
