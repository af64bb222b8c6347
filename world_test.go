package bappa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wPosition struct{ X, Y float64 }
type wVelocity struct{ DX, DY float64 }

func TestWorldSpawnDespawn(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)

	e := w.SpawnEmpty()
	assert.True(t, w.IsAlive(e))
	assert.Equal(t, 1, w.EntityCount())

	assert.True(t, w.Despawn(e))
	assert.False(t, w.IsAlive(e))
	assert.Equal(t, 0, w.EntityCount())
	assert.False(t, w.Despawn(e), "despawning a dead entity must report false, not panic")
}

func TestWorldSpawnBatch(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)

	entities := w.SpawnBatch(10)
	assert.Len(t, entities, 10)
	assert.Equal(t, 10, w.EntityCount())

	n := w.DespawnBatch(entities)
	assert.Equal(t, 10, n)
	assert.Equal(t, 0, w.EntityCount())
}

func TestWorldInsertMovesEntityToNewArchetype(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)

	e := w.SpawnEmpty()
	emptyArch, _ := w.ArchetypeOf(e)
	assert.Equal(t, EmptyArchetypeId, emptyArch.ID())

	Insert(w, e, wPosition{X: 1, Y: 2})
	posArch, _ := w.ArchetypeOf(e)
	assert.NotEqual(t, EmptyArchetypeId, posArch.ID())
	assert.True(t, Has[wPosition](w, e))

	got := Get[wPosition](w, e)
	require.NotNil(t, got)
	assert.Equal(t, wPosition{X: 1, Y: 2}, *got)
}

func TestWorldInsertOnExistingComponentUpdatesInPlace(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)

	e := w.SpawnEmpty()
	Insert(w, e, wPosition{X: 1, Y: 1})
	archBefore, _ := w.ArchetypeOf(e)

	old, hadOld := Insert(w, e, wPosition{X: 2, Y: 2})
	assert.True(t, hadOld)
	assert.Equal(t, wPosition{X: 1, Y: 1}, old)

	archAfter, _ := w.ArchetypeOf(e)
	assert.Equal(t, archBefore.ID(), archAfter.ID(), "re-inserting an already-present component must not move the entity")

	got := Get[wPosition](w, e)
	assert.Equal(t, wPosition{X: 2, Y: 2}, *got)
}

func TestWorldInsertMultipleComponentsPreservesBoth(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)

	e := w.SpawnEmpty()
	Insert(w, e, wPosition{X: 1, Y: 1})
	Insert(w, e, wVelocity{DX: 1, DY: 0})

	pos := Get[wPosition](w, e)
	vel := Get[wVelocity](w, e)
	require.NotNil(t, pos)
	require.NotNil(t, vel)
	assert.Equal(t, wPosition{X: 1, Y: 1}, *pos)
	assert.Equal(t, wVelocity{DX: 1, DY: 0}, *vel)
}

func TestWorldRemoveMovesEntityBack(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)

	e := w.SpawnEmpty()
	Insert(w, e, wPosition{X: 1, Y: 1})
	Insert(w, e, wVelocity{DX: 1, DY: 0})

	removed, ok := Remove[wVelocity](w, e)
	assert.True(t, ok)
	assert.Equal(t, wVelocity{DX: 1, DY: 0}, removed)
	assert.False(t, Has[wVelocity](w, e))
	assert.True(t, Has[wPosition](w, e), "removing one component must not disturb the entity's other components")

	pos := Get[wPosition](w, e)
	require.NotNil(t, pos)
	assert.Equal(t, wPosition{X: 1, Y: 1}, *pos)
}

func TestWorldRemoveAbsentComponent(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	e := w.SpawnEmpty()

	_, ok := Remove[wVelocity](w, e)
	assert.False(t, ok)
}

func TestWorldGetHasOnDeadEntity(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	e := w.SpawnEmpty()
	Insert(w, e, wPosition{X: 1, Y: 1})
	w.Despawn(e)

	assert.Nil(t, Get[wPosition](w, e))
	assert.False(t, Has[wPosition](w, e))
}

func TestWorldSpawnDespawnChurnReclaimsTableRows(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)

	e := w.SpawnEmpty()
	Insert(w, e, wPosition{X: 1, Y: 1})
	arch, _ := w.ArchetypeOf(e)

	for i := 0; i < 500; i++ {
		w.Despawn(e)
		e = w.SpawnEmpty()
		Insert(w, e, wPosition{X: float64(i), Y: float64(i)})
	}

	assert.Equal(t, 1, arch.Table().Length(), "despawn/respawn churn must reclaim table rows via DeleteEntries, not grow the table unboundedly")
}

func TestWorldInsertRemoveChurnReclaimsOriginTableRows(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)

	e := w.SpawnEmpty()
	emptyArch, _ := w.ArchetypeOf(e)

	for i := 0; i < 500; i++ {
		Insert(w, e, wVelocity{DX: float64(i)})
		Remove[wVelocity](w, e)
	}

	assert.Equal(t, 1, emptyArch.Table().Length(), "insert/remove churn must transfer rows out of the origin table via TransferEntries, not leak them")
}

func TestWorldDespawnDropsAllComponentValues(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)

	e1 := w.SpawnEmpty()
	Insert(w, e1, wPosition{X: 1, Y: 1})
	w.Despawn(e1)

	e2 := w.SpawnEmpty()
	assert.False(t, Has[wPosition](w, e2), "a freshly spawned entity must never inherit a despawned entity's components")
}
