package bappa

import (
	"sort"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

type addEdgeKey struct {
	from ArchetypeId
	c    ComponentId
}

// ArchetypeGraph owns every Archetype ever created in a World and caches
// the add/remove transition edges between them (spec.md §3.1, §4.4).
// Archetype 0 is always the empty archetype.
type ArchetypeGraph struct {
	schema     table.Schema
	entryIndex table.EntryIndex

	archetypes []*Archetype
	byMask     map[mask.Mask]ArchetypeId

	addEdges    map[addEdgeKey]ArchetypeId
	removeEdges map[addEdgeKey]ArchetypeId

	// version increments every time a new archetype is created, letting
	// QueryCache skip recomputation when nothing has changed.
	version int
}

func newArchetypeGraph(schema table.Schema, entryIndex table.EntryIndex) (*ArchetypeGraph, error) {
	g := &ArchetypeGraph{
		schema:      schema,
		entryIndex:  entryIndex,
		byMask:      make(map[mask.Mask]ArchetypeId),
		addEdges:    make(map[addEdgeKey]ArchetypeId),
		removeEdges: make(map[addEdgeKey]ArchetypeId),
	}
	if _, err := g.findOrCreate(nil); err != nil {
		return nil, err
	}
	return g, nil
}

// canonicalize sorts and dedupes a component set, establishing the
// canonical ordering spec.md §3.1 requires for archetype identity.
func canonicalize(components []ComponentId) []ComponentId {
	out := append([]ComponentId(nil), components...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	deduped := out[:0]
	for i, c := range out {
		if i == 0 || c != out[i-1] {
			deduped = append(deduped, c)
		}
	}
	return deduped
}

func maskOf(components []ComponentId) mask.Mask {
	var m mask.Mask
	for _, c := range components {
		m.Mark(uint32(c))
	}
	return m
}

// findOrCreate canonicalizes components and returns the matching
// archetype, creating it if this is the first time the set has been
// requested. A second call with an equal set returns the same id and does
// not grow the archetype vector (spec.md §8).
func (g *ArchetypeGraph) findOrCreate(components []ComponentId) (ArchetypeId, error) {
	canon := canonicalize(components)
	m := maskOf(canon)
	if id, ok := g.byMask[m]; ok {
		return id, nil
	}
	id := ArchetypeId(len(g.archetypes))
	arch, err := newArchetype(g.schema, g.entryIndex, id, canon)
	if err != nil {
		return 0, err
	}
	g.archetypes = append(g.archetypes, arch)
	g.byMask[m] = id
	g.version++
	return id, nil
}

// Get returns the archetype for id. Panics on an out-of-range id, which
// can only happen on a caller bug (every id this graph ever hands out is
// backed by an entry in g.archetypes for the graph's lifetime).
func (g *ArchetypeGraph) Get(id ArchetypeId) *Archetype {
	return g.archetypes[id]
}

// All returns every archetype currently known to the graph, including the
// empty archetype at index 0.
func (g *ArchetypeGraph) All() []*Archetype {
	return g.archetypes
}

// GetAddEdge returns the archetype reached by adding c to the archetype
// set `from` currently belongs to. If from already has c, it is returned
// unchanged (a cached self-edge); spec.md §4.4 and §8's idempotence
// property.
func (g *ArchetypeGraph) GetAddEdge(from ArchetypeId, c ComponentId) (ArchetypeId, error) {
	key := addEdgeKey{from, c}
	if to, ok := g.addEdges[key]; ok {
		return to, nil
	}
	fromArch := g.archetypes[from]
	if fromArch.Has(c) {
		g.addEdges[key] = from
		return from, nil
	}
	next := append(append([]ComponentId(nil), fromArch.components...), c)
	to, err := g.findOrCreate(next)
	if err != nil {
		return 0, err
	}
	g.addEdges[key] = to
	return to, nil
}

// GetRemoveEdge returns the archetype reached by removing c from the
// archetype set `from` belongs to, or ok=false if `from` does not have c.
func (g *ArchetypeGraph) GetRemoveEdge(from ArchetypeId, c ComponentId) (to ArchetypeId, ok bool, err error) {
	key := addEdgeKey{from, c}
	if cached, hit := g.removeEdges[key]; hit {
		return cached, true, nil
	}
	fromArch := g.archetypes[from]
	if !fromArch.Has(c) {
		return 0, false, nil
	}
	next := make([]ComponentId, 0, len(fromArch.components)-1)
	for _, existing := range fromArch.components {
		if existing != c {
			next = append(next, existing)
		}
	}
	to, err = g.findOrCreate(next)
	if err != nil {
		return 0, false, err
	}
	g.removeEdges[key] = to
	return to, true, nil
}

// EmptyArchetypeId is the id of the archetype holding zero component
// types, always present at graph construction.
const EmptyArchetypeId ArchetypeId = 0
