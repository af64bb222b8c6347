package bappa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityAllocatorLifecycle(t *testing.T) {
	var a entityAllocator

	e := a.allocate()
	assert.True(t, a.isAlive(e))

	assert.True(t, a.deallocate(e))
	assert.False(t, a.isAlive(e))
}

func TestEntityAllocatorRecyclesGeneration(t *testing.T) {
	var a entityAllocator

	e1 := a.allocate()
	a.deallocate(e1)
	e2 := a.allocate()

	assert.Equal(t, e1.Index, e2.Index)
	assert.NotEqual(t, e1.Generation, e2.Generation)
	assert.False(t, a.isAlive(e1))
	assert.True(t, a.isAlive(e2))
}

func TestEntityAllocatorBatch(t *testing.T) {
	var a entityAllocator
	entities := a.allocateBatch(20)
	assert.Len(t, entities, 20)

	results := a.deallocateBatch(entities)
	for _, ok := range results {
		assert.True(t, ok)
	}
	for _, e := range entities {
		assert.False(t, a.isAlive(e))
	}
}

func TestPlaceholderIsNeverAlive(t *testing.T) {
	var a entityAllocator
	assert.True(t, PLACEHOLDER.IsPlaceholder())
	assert.False(t, a.isAlive(PLACEHOLDER))
}
