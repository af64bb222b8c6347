package bappa

import (
	"testing"

	"github.com/TheBitDrifter/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T) *ArchetypeGraph {
	t.Helper()
	schema := table.Factory.NewSchema()
	entryIndex := table.Factory.NewEntryIndex()
	g, err := newArchetypeGraph(schema, entryIndex)
	require.NoError(t, err)
	return g
}

func TestArchetypeGraphStartsWithEmptyArchetype(t *testing.T) {
	g := newTestGraph(t)
	assert.Len(t, g.All(), 1)
	assert.Equal(t, EmptyArchetypeId, g.Get(EmptyArchetypeId).ID())
	assert.Empty(t, g.Get(EmptyArchetypeId).Components())
}

func TestArchetypeGraphFindOrCreateIsIdempotent(t *testing.T) {
	g := newTestGraph(t)
	type A struct{ X int }
	comp := NewComponent[A]()

	id1, err := g.findOrCreate([]ComponentId{comp.Id()})
	require.NoError(t, err)
	before := len(g.All())

	id2, err := g.findOrCreate([]ComponentId{comp.Id()})
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Len(t, g.All(), before, "requesting an existing component set must not grow the archetype vector")
}

func TestArchetypeGraphCanonicalizesOrder(t *testing.T) {
	g := newTestGraph(t)
	type A struct{ X int }
	type B struct{ Y int }
	a := NewComponent[A]()
	b := NewComponent[B]()

	id1, err := g.findOrCreate([]ComponentId{a.Id(), b.Id()})
	require.NoError(t, err)
	id2, err := g.findOrCreate([]ComponentId{b.Id(), a.Id()})
	require.NoError(t, err)

	assert.Equal(t, id1, id2, "component set identity must not depend on argument order")
}

func TestArchetypeGraphAddRemoveEdgesRoundTrip(t *testing.T) {
	g := newTestGraph(t)
	type A struct{ X int }
	a := NewComponent[A]()

	to, err := g.GetAddEdge(EmptyArchetypeId, a.Id())
	require.NoError(t, err)
	assert.True(t, g.Get(to).Has(a.Id()))

	back, ok, err := g.GetRemoveEdge(to, a.Id())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, EmptyArchetypeId, back)
}

func TestArchetypeGraphAddEdgeSelfLoopWhenAlreadyPresent(t *testing.T) {
	g := newTestGraph(t)
	type A struct{ X int }
	a := NewComponent[A]()

	to, err := g.GetAddEdge(EmptyArchetypeId, a.Id())
	require.NoError(t, err)

	again, err := g.GetAddEdge(to, a.Id())
	require.NoError(t, err)
	assert.Equal(t, to, again, "adding a component the archetype already has must be a no-op self-edge")
}

func TestArchetypeGraphRemoveEdgeMissingComponent(t *testing.T) {
	g := newTestGraph(t)
	type A struct{ X int }
	a := NewComponent[A]()

	_, ok, err := g.GetRemoveEdge(EmptyArchetypeId, a.Id())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArchetypeGraphVersionIncrementsOnlyOnNewArchetype(t *testing.T) {
	g := newTestGraph(t)
	type A struct{ X int }
	a := NewComponent[A]()

	before := g.version
	g.findOrCreate([]ComponentId{a.Id()})
	afterFirst := g.version
	assert.Greater(t, afterFirst, before)

	g.findOrCreate([]ComponentId{a.Id()})
	assert.Equal(t, afterFirst, g.version, "re-requesting an existing set must not bump version")
}
