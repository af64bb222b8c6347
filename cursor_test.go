package bappa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cPosition struct{ X int }

func TestCursorIteratesAllMatches(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)

	pos := NewComponent[cPosition]()
	var entities []Entity
	for i := 0; i < 5; i++ {
		e := w.SpawnEmpty()
		Insert(w, e, cPosition{X: i})
		entities = append(entities, e)
	}

	q := NewQuery()
	root := q.And(pos.Id())
	cache := NewQueryCache(root)

	cur := NewCursor(w, cache)
	cur.Initialize()
	var seen []Entity
	for cur.Next() {
		seen = append(seen, cur.CurrentEntity())
	}
	assert.ElementsMatch(t, entities, seen)
}

func TestCursorLocksWorldUntilReset(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	pos := NewComponent[cPosition]()
	e := w.SpawnEmpty()
	Insert(w, e, cPosition{})

	q := NewQuery()
	root := q.And(pos.Id())
	cache := NewQueryCache(root)

	cur := NewCursor(w, cache)
	cur.Initialize()
	assert.True(t, w.Locked())
	cur.Reset()
	assert.False(t, w.Locked())
}

func TestCursorNextReleasesLockWhenExhausted(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	pos := NewComponent[cPosition]()
	e := w.SpawnEmpty()
	Insert(w, e, cPosition{})

	q := NewQuery()
	root := q.And(pos.Id())
	cache := NewQueryCache(root)

	cur := NewCursor(w, cache)
	cur.Initialize()
	for cur.Next() {
	}
	assert.False(t, w.Locked(), "exhausting a cursor must release the structural lock without an explicit Reset")
}

func TestCursorNoMatchesIsEmpty(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	pos := NewComponent[cPosition]()

	q := NewQuery()
	root := q.And(pos.Id())
	cache := NewQueryCache(root)

	cur := NewCursor(w, cache)
	cur.Initialize()
	assert.False(t, cur.Next())
}

func TestCursorRowsIterator(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	pos := NewComponent[cPosition]()
	for i := 0; i < 3; i++ {
		e := w.SpawnEmpty()
		Insert(w, e, cPosition{X: i})
	}

	q := NewQuery()
	root := q.And(pos.Id())
	cache := NewQueryCache(root)

	cur := NewCursor(w, cache)
	count := 0
	for arch, row := range cur.Rows() {
		assert.True(t, arch.Has(pos.Id()))
		assert.GreaterOrEqual(t, row, 0)
		count++
	}
	assert.Equal(t, 3, count)
	assert.False(t, w.Locked())
}

func TestCursorTotalMatched(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	pos := NewComponent[cPosition]()
	for i := 0; i < 4; i++ {
		e := w.SpawnEmpty()
		Insert(w, e, cPosition{X: i})
	}

	q := NewQuery()
	root := q.And(pos.Id())
	cache := NewQueryCache(root)

	cur := NewCursor(w, cache)
	assert.Equal(t, 4, cur.TotalMatched())
	assert.False(t, w.Locked())
}
