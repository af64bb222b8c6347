package bappa

import (
	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

// ArchetypeId indexes into ArchetypeGraph.archetypes. Id 0 is always the
// empty archetype (spec.md §3.1).
type ArchetypeId uint32

// Archetype groups every entity that currently carries exactly one
// canonical set of component types (spec.md §3.1). Entity bookkeeping
// (entities / entityIndex) is owned outright by this type so that
// RemoveEntity can report the swap-compaction spec.md §4.4 requires;
// component *values* live in a table.Table, the teacher's columnar
// storage engine. Rows are grown and reclaimed through the table's own
// NewEntries/DeleteEntries/TransferEntries, the same primitives the
// teacher's storage.go and entity.go use, so a row is never left behind
// to grow the table unboundedly across spawn/despawn/insert/remove
// churn. entryIDs tracks each live entity's stable table.EntryID, the
// handle DeleteEntries/TransferEntries key off (a row's physical
// position moves under compaction; the entry id does not).
type Archetype struct {
	id         ArchetypeId
	components []ComponentId // canonical: sorted ascending
	set        mask.Mask
	tbl        table.Table

	entities    []Entity
	entityIndex map[Entity]int
	entryIDs    map[Entity]table.EntryID
}

func newArchetype(schema table.Schema, entryIndex table.EntryIndex, id ArchetypeId, components []ComponentId) (*Archetype, error) {
	elementTypes := make([]table.ElementType, len(components))
	for i, c := range components {
		elementTypes[i] = componentElementType(c)
	}
	tbl, err := table.NewTableBuilder().
		WithSchema(schema).
		WithEntryIndex(entryIndex).
		WithElementTypes(elementTypes...).
		WithEvents(Config.tableEvents).
		Build()
	if err != nil {
		return nil, wrapErr(KindInternalError, err, "build archetype table for %v", components)
	}
	var m mask.Mask
	for _, c := range components {
		m.Mark(uint32(c))
	}
	return &Archetype{
		id:          id,
		components:  components,
		set:         m,
		tbl:         tbl,
		entityIndex: make(map[Entity]int),
		entryIDs:    make(map[Entity]table.EntryID),
	}, nil
}

// ID returns the archetype's process-lifetime identifier.
func (a *Archetype) ID() ArchetypeId { return a.id }

// Components returns the canonical, sorted component set.
func (a *Archetype) Components() []ComponentId { return a.components }

// Mask returns the bitset identity used for query filter evaluation.
func (a *Archetype) Mask() mask.Mask { return a.set }

// Table returns the underlying columnar storage. Its columns are written
// on Insert and on archetype moves; writes through Get[T] do not reach it.
func (a *Archetype) Table() table.Table { return a.tbl }

// Len returns the number of entities currently in this archetype.
func (a *Archetype) Len() int { return len(a.entities) }

// Entities returns the archetype's entity list in dense (row) order. The
// returned slice aliases internal storage and must not be mutated.
func (a *Archetype) Entities() []Entity { return a.entities }

// Has reports whether c is one of this archetype's component types.
func (a *Archetype) Has(c ComponentId) bool {
	var m mask.Mask
	m.Mark(uint32(c))
	return a.set.ContainsAll(m)
}

// IndexOf returns entity's row index within this archetype.
func (a *Archetype) IndexOf(e Entity) (int, bool) {
	idx, ok := a.entityIndex[e]
	return idx, ok
}

// AddEntity appends entity to this archetype, growing the backing table
// by one row. Idempotent: adding an entity already present returns its
// existing index without mutating anything (spec.md §4.4). Only used for
// entities with no origin table to move a row out of (SpawnEmpty/
// SpawnBatch); archetype-to-archetype moves go through TransferEntity
// instead.
func (a *Archetype) AddEntity(e Entity) (int, error) {
	if idx, ok := a.entityIndex[e]; ok {
		return idx, nil
	}
	entries, err := a.tbl.NewEntries(1)
	if err != nil {
		return 0, wrapErr(KindInternalError, err, "grow archetype %d table", a.id)
	}
	idx := len(a.entities)
	a.entities = append(a.entities, e)
	a.entityIndex[e] = idx
	a.entryIDs[e] = entries[0].ID()
	return idx, nil
}

// RemoveEntity removes entity, deleting its row from the backing table
// via table.Table.DeleteEntries (the same primitive storage.go's
// DestroyEntities uses) so the row is actually reclaimed rather than
// left to grow the table unboundedly, and swap-removing it from the
// archetype's own bookkeeping so Len/Entities/IndexOf stay dense.
// Returns the removed index and, if a different entity occupied the
// last slot, that entity (spec.md §4.4). A non-nil err means the table
// row itself failed to delete; the archetype's own bookkeeping is
// compacted regardless so Len/Entities/IndexOf never see a dangling
// entity.
func (a *Archetype) RemoveEntity(e Entity) (removedIndex int, swapped Entity, swappedOK bool, ok bool, err error) {
	idx, present := a.entityIndex[e]
	if !present {
		return 0, Entity{}, false, false, nil
	}
	if id, idOK := a.entryIDs[e]; idOK {
		if _, delErr := a.tbl.DeleteEntries(int(id)); delErr != nil {
			err = wrapErr(KindInternalError, delErr, "delete archetype %d table row", a.id)
		}
	}
	delete(a.entryIDs, e)
	swapped, swappedOK = a.compactOut(e, idx)
	return idx, swapped, swappedOK, true, err
}

// TransferEntity moves e's row from this archetype's table straight into
// dest's table via table.Table.TransferEntries, the single-step move the
// teacher's entity.go uses in AddComponent/RemoveComponent instead of a
// separate grow-then-delete pair. Matching columns carry over
// automatically; the caller is responsible for writing any newly added
// or dropped component's value afterward. Returns e's row index in dest.
func (a *Archetype) TransferEntity(e Entity, dest *Archetype) (int, error) {
	idx, present := a.entityIndex[e]
	if !present {
		return 0, newErr(KindInvalidArgument, "entity not present in archetype %d", a.id)
	}
	if err := a.tbl.TransferEntries(dest.tbl, idx); err != nil {
		return 0, wrapErr(KindInternalError, err, "transfer entity from archetype %d to %d", a.id, dest.id)
	}
	delete(a.entryIDs, e)
	a.compactOut(e, idx)

	newIdx := len(dest.entities)
	dest.entities = append(dest.entities, e)
	dest.entityIndex[e] = newIdx
	if entry, err := dest.tbl.Entry(newIdx); err == nil {
		dest.entryIDs[e] = entry.ID()
	}
	return newIdx, nil
}

// compactOut removes e (already known to sit at idx) from entities/
// entityIndex via swap-remove, matching the dense-row contract AddEntity
// and TransferEntity maintain.
func (a *Archetype) compactOut(e Entity, idx int) (swapped Entity, swappedOK bool) {
	lastIdx := len(a.entities) - 1
	if idx != lastIdx {
		lastEntity := a.entities[lastIdx]
		a.entities[idx] = lastEntity
		a.entityIndex[lastEntity] = idx
		swapped, swappedOK = lastEntity, true
	}
	a.entities = a.entities[:lastIdx]
	delete(a.entityIndex, e)
	return swapped, swappedOK
}
