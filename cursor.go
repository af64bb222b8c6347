package bappa

import "iter"

// Cursor iterates the entities/rows matching a QueryCache against a
// World, holding the World's structural lock for its lifetime so a
// CommandBuffer.Apply attempted mid-iteration defers instead of
// reshuffling the archetypes being walked. The World's direct
// SpawnEmpty/Despawn/Insert/Remove calls do not check the lock.
type Cursor struct {
	world *World
	cache *QueryCache

	matched      []*Archetype
	archIndex    int
	entityIndex  int
	remaining    int
	initialized  bool
}

// NewCursor returns a Cursor over w for the archetypes cache currently
// matches.
func NewCursor(w *World, cache *QueryCache) *Cursor {
	return &Cursor{world: w, cache: cache}
}

// Initialize snapshots the matching archetype list and takes the
// World's structural lock. Idempotent until Reset.
func (c *Cursor) Initialize() {
	if c.initialized {
		return
	}
	c.world.lock(lockBitCursor)
	c.matched = c.cache.Matches(c.world)
	if len(c.matched) > 0 {
		c.remaining = c.matched[0].Len()
	}
	c.initialized = true
}

// Reset releases the World's structural lock and clears iteration
// state, allowing the Cursor to be reused for another pass.
func (c *Cursor) Reset() {
	if c.initialized {
		c.world.unlock(lockBitCursor)
	}
	c.archIndex = 0
	c.entityIndex = 0
	c.remaining = 0
	c.matched = nil
	c.initialized = false
}

// Next advances to the next matching row, returning false once every
// matched archetype is exhausted (and releasing the lock via Reset).
func (c *Cursor) Next() bool {
	if !c.initialized {
		c.Initialize()
	}
	if c.entityIndex < c.remaining {
		c.entityIndex++
		return true
	}
	for c.archIndex+1 < len(c.matched) {
		c.archIndex++
		c.entityIndex = 0
		c.remaining = c.matched[c.archIndex].Len()
		if c.entityIndex < c.remaining {
			c.entityIndex++
			return true
		}
	}
	c.Reset()
	return false
}

// Archetype returns the archetype the cursor is currently positioned
// in. Only valid between a Next() returning true and the following
// Next()/Reset() call.
func (c *Cursor) Archetype() *Archetype {
	return c.matched[c.archIndex]
}

// Row returns the current index within Archetype().Entities(). The
// canonical component values are the ones Get[T] returns; the
// archetype table's columns are written only when an entity is inserted
// into or moved between archetypes, so writes made through Get[T] do not
// reach them.
func (c *Cursor) Row() int {
	return c.entityIndex - 1
}

// CurrentEntity returns the entity at the cursor's current position.
func (c *Cursor) CurrentEntity() Entity {
	return c.matched[c.archIndex].Entities()[c.entityIndex-1]
}

// EntityAtOffset returns the entity offset rows from the current
// position within the current archetype.
func (c *Cursor) EntityAtOffset(offset int) (Entity, bool) {
	idx := c.entityIndex - 1 + offset
	entities := c.matched[c.archIndex].Entities()
	if idx < 0 || idx >= len(entities) {
		return Entity{}, false
	}
	return entities[idx], true
}

// RemainingInArchetype returns how many rows are left to visit in the
// current archetype, including the current one.
func (c *Cursor) RemainingInArchetype() int {
	return c.remaining - c.entityIndex + 1
}

// TotalMatched returns the total row count across every matching
// archetype, initializing (and then resetting) the cursor if needed.
func (c *Cursor) TotalMatched() int {
	c.Initialize()
	total := 0
	for _, arch := range c.matched {
		total += arch.Len()
	}
	c.Reset()
	return total
}

// Rows returns an iterator over (Archetype, row index) pairs for every
// matching entity, for range-over-func style system bodies. Iteration
// holds the structural lock for its full duration; breaking early still
// releases it via Reset.
func (c *Cursor) Rows() iter.Seq2[*Archetype, int] {
	return func(yield func(*Archetype, int) bool) {
		c.Initialize()
		for _, arch := range c.matched {
			n := arch.Len()
			for row := 0; row < n; row++ {
				if !yield(arch, row) {
					c.Reset()
					return
				}
			}
		}
		c.Reset()
	}
}
