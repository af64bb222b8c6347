/*
Package bappa is the engine core for a 2D game framework: an
archetype-based Entity-Component-System, a parallel system scheduler,
and a stable C ABI for hosting the engine from another language.

Core Concepts:

  - Entity: a generational handle to a game object, invalidated once
    despawned so stale copies are detectable rather than dangling.
  - Component: a plain Go value type, registered once per process and
    addressed through a stable ComponentId.
  - Archetype: a table of entities sharing the same exact component set,
    backed by github.com/TheBitDrifter/table for columnar storage, with
    a parallel SparseSet per component for O(1) random access.
  - Query: a composable AND/OR/NOT filter over component sets, matched
    against archetypes and cached until the archetype graph changes.
  - System: a named unit of work with a declared read/write access
    pattern; the Scheduler batches non-conflicting systems to run
    concurrently within a frame's stages.

Basic Usage:

	w, _ := bappa.NewWorld()

	type Position struct{ X, Y float64 }
	pos := bappa.NewComponent[Position]()

	e := w.SpawnEmpty()
	bappa.Insert(w, e, Position{X: 1, Y: 2})

	q := bappa.NewQuery()
	root := q.And(pos.Id())
	cache := bappa.NewQueryCache(root)

	cur := bappa.NewCursor(w, cache)
	cur.Initialize()
	defer cur.Reset()
	for cur.Next() {
		p := bappa.Get[Position](w, cur.CurrentEntity())
		p.X++
	}

Package ffi exposes the same World and Scheduler across a stable C ABI
for hosts written in another language.
*/
package bappa
