package bappa

import (
	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
	"github.com/sirupsen/logrus"
)

// Structural-lock bits, mirroring the teacher's storage.go mask.Mask256
// lock counter (AddLock/RemoveLock by bit) generalized to name the two
// holders of the World's structural lock: an in-flight Cursor, or an
// in-flight command-buffer apply pass.
const (
	lockBitCursor   uint32 = 0
	lockBitCommands uint32 = 1
)

// componentOps is the type-erased function table spec.md §9.1 calls for
// "dynamic dispatch over components... replaced by type-erased function
// tables for cold paths (per-storage drop + untyped remove, used during
// despawn)". One is registered per ComponentId the first time a value of
// that type is inserted anywhere in the World.
type componentOps struct {
	remove    func(e Entity)
	contains  func(e Entity) bool
	syncToRow func(e Entity, row int, tbl table.Table)
}

// World is the hub described in spec.md §3.1 and §4.5: it exclusively
// owns entities, archetypes, per-component storages, and resources.
type World struct {
	entities        entityAllocator
	graph           *ArchetypeGraph
	entityArchetype map[Entity]ArchetypeId

	stores   map[ComponentId]any
	storeOps map[ComponentId]componentOps
	raw      *RawComponents

	resources    *Resources
	nonSend      *NonSendResources
	rawResources map[uint64][]byte

	structLock mask.Mask256

	engine EngineConfig
	log    *logrus.Entry
}

// EngineConfig holds the per-World knobs SPEC_FULL.md's Configuration
// section calls for, generalizing the teacher's package-level Config
// (config.go, process-wide table-engine knobs) to per-instance settings
// a host picks when it builds a World: how a Scheduler reacts to a
// system failure, how wide a parallel batch's worker pool may grow, and
// which stages a fresh Scheduler starts with.
type EngineConfig struct {
	// HaltOnError aborts the rest of the current frame on a system's
	// first error when true. The default, false, matches spec.md §7.2:
	// the scheduler records the failure and continues with the rest of
	// the frame.
	HaltOnError bool
	// WorkerPoolLimit bounds how many systems in one parallel batch may
	// run concurrently. Zero (the default) leaves errgroup unbounded,
	// letting the Go scheduler multiplex the whole batch onto GOMAXPROCS.
	WorkerPoolLimit int
	// DefaultStages overrides CoreStages for Schedulers built against
	// this World. Nil (the default) keeps the six built-in stages.
	DefaultStages []StageLabel
}

// WorldOption configures a World at construction, the same "functional
// options for per-instance knobs" split SPEC_FULL.md's ambient-stack
// section calls for (the teacher uses a builder for table.Table; World
// uses options for the same reason: optional, independently-ordered
// configuration).
type WorldOption func(*World)

// WithLogger overrides the World's logger. Defaults to a field-scoped
// entry off logrus.StandardLogger().
func WithLogger(log *logrus.Logger) WorldOption {
	return func(w *World) { w.log = log.WithField("component", "world") }
}

// WithHaltOnError sets the Scheduler's error policy for this World
// (spec.md §7.2).
func WithHaltOnError(halt bool) WorldOption {
	return func(w *World) { w.engine.HaltOnError = halt }
}

// WithWorkerPoolLimit bounds concurrent systems per parallel batch for
// Schedulers built against this World. n <= 0 leaves it unbounded.
func WithWorkerPoolLimit(n int) WorldOption {
	return func(w *World) { w.engine.WorkerPoolLimit = n }
}

// WithDefaultStages overrides the stage list a Scheduler built against
// this World starts with, in place of CoreStages.
func WithDefaultStages(stages ...StageLabel) WorldOption {
	return func(w *World) { w.engine.DefaultStages = stages }
}

// Config returns the World's EngineConfig.
func (w *World) Config() EngineConfig { return w.engine }

// NewWorld constructs an empty World: an entity allocator, an archetype
// graph seeded with the empty archetype, and empty resource containers.
func NewWorld(opts ...WorldOption) (*World, error) {
	schema := table.Factory.NewSchema()
	entryIndex := table.Factory.NewEntryIndex()
	graph, err := newArchetypeGraph(schema, entryIndex)
	if err != nil {
		return nil, err
	}
	w := &World{
		graph:           graph,
		entityArchetype: make(map[Entity]ArchetypeId),
		stores:          make(map[ComponentId]any),
		storeOps:        make(map[ComponentId]componentOps),
		raw:             newRawComponents(),
		resources:       newResources(),
		nonSend:         newNonSendResources(),
		rawResources:    make(map[uint64][]byte),
		log:             logrus.StandardLogger().WithField("component", "world"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Locked reports whether a Cursor or a command-buffer apply pass
// currently holds the World's structural lock. CommandBuffer.Apply
// defers while it is held; SpawnEmpty, SpawnBatch, Despawn, Insert and
// Remove do not check it.
func (w *World) Locked() bool { return !w.structLock.IsEmpty() }

func (w *World) lock(bit uint32)   { w.structLock.Mark(bit) }
func (w *World) unlock(bit uint32) { w.structLock.Unmark(bit) }

// IsAlive reports whether e currently refers to a live entity attached to
// an archetype. An entity reserved by CommandBuffer.Spawn is not alive
// until the buffer is applied.
func (w *World) IsAlive(e Entity) bool {
	_, attached := w.entityArchetype[e]
	return attached && w.entities.isAlive(e)
}

// EntityCount returns the number of currently-live entities.
func (w *World) EntityCount() int {
	return len(w.entityArchetype)
}

// Archetypes exposes every archetype the World has ever created, for the
// query cache and for diagnostics.
func (w *World) Archetypes() []*Archetype { return w.graph.All() }

// ArchetypeOf returns the archetype an entity currently belongs to.
func (w *World) ArchetypeOf(e Entity) (*Archetype, bool) {
	id, ok := w.entityArchetype[e]
	if !ok {
		return nil, false
	}
	return w.graph.Get(id), true
}

// SpawnEmpty allocates a new entity and attaches it to the empty
// archetype (spec.md §4.5).
func (w *World) SpawnEmpty() Entity {
	e := w.entities.allocate()
	if _, err := w.graph.Get(EmptyArchetypeId).AddEntity(e); err != nil {
		w.log.WithError(err).Error("attach spawned entity to empty archetype")
	}
	w.entityArchetype[e] = EmptyArchetypeId
	return e
}

// SpawnBatch allocates n entities, all attached to the empty archetype.
// n <= 0 returns an empty, non-nil slice and mutates nothing.
func (w *World) SpawnBatch(n int) []Entity {
	if n <= 0 {
		return []Entity{}
	}
	entities := w.entities.allocateBatch(n)
	empty := w.graph.Get(EmptyArchetypeId)
	for _, e := range entities {
		if _, err := empty.AddEntity(e); err != nil {
			w.log.WithError(err).Error("attach batch-spawned entity to empty archetype")
			continue
		}
		w.entityArchetype[e] = EmptyArchetypeId
	}
	return entities
}

// Despawn removes e entirely: every component value is dropped via the
// type-erased ops table, e is removed from its archetype, and its
// generation is bumped so any outstanding copy becomes stale
// (spec.md §4.5, §8).
func (w *World) Despawn(e Entity) bool {
	if !w.entities.isAlive(e) {
		return false
	}
	archId := w.entityArchetype[e]
	arch := w.graph.Get(archId)
	for _, c := range arch.Components() {
		if ops, ok := w.storeOps[c]; ok {
			ops.remove(e)
		}
	}
	if _, _, _, _, err := arch.RemoveEntity(e); err != nil {
		w.log.WithError(err).Error("remove despawned entity's archetype row")
	}
	w.despawnRaw(e)
	delete(w.entityArchetype, e)
	w.entities.deallocate(e)
	return true
}

// DespawnBatch despawns every entity in es, returning how many actually
// were alive (and thus despawned).
func (w *World) DespawnBatch(es []Entity) int {
	count := 0
	for _, e := range es {
		if w.Despawn(e) {
			count++
		}
	}
	return count
}

func storeFor[T any](w *World, comp Component[T]) *SparseSet[T] {
	if existing, ok := w.stores[comp.id]; ok {
		return existing.(*SparseSet[T])
	}
	set := NewSparseSet[T]()
	w.stores[comp.id] = set
	w.storeOps[comp.id] = componentOps{
		remove:   func(e Entity) { set.Remove(e) },
		contains: func(e Entity) bool { return set.Contains(e) },
		syncToRow: func(e Entity, row int, tbl table.Table) {
			if v, ok := set.Get(e); ok {
				*comp.Get(row, tbl) = v
			}
		},
	}
	return set
}

// Insert attaches component value v of type T to e, moving e to the
// archetype reached by the add-edge if T is new to e, or updating the
// value in place if e already carries T. Returns the previous value, if
// any (spec.md §4.5). A dead entity is a no-op returning (zero, false).
func Insert[T any](w *World, e Entity, v T) (T, bool) {
	var zero T
	if !w.entities.isAlive(e) {
		return zero, false
	}
	comp := NewComponent[T]()
	store := storeFor(w, comp)
	old, hadOld := store.Insert(e, v)

	archId := w.entityArchetype[e]
	arch := w.graph.Get(archId)
	if arch.Has(comp.Id()) {
		idx, _ := arch.IndexOf(e)
		*comp.Get(idx, arch.Table()) = v
		return old, hadOld
	}

	newArchId, err := w.graph.GetAddEdge(archId, comp.Id())
	if err != nil {
		w.log.WithError(err).Error("resolve add-edge")
		return old, hadOld
	}
	newArch := w.graph.Get(newArchId)
	idx, err := arch.TransferEntity(e, newArch)
	if err != nil {
		w.log.WithError(err).Error("transfer entity to new archetype")
		return old, hadOld
	}
	for _, c := range newArch.Components() {
		if ops, ok := w.storeOps[c]; ok {
			ops.syncToRow(e, idx, newArch.Table())
		}
	}
	w.entityArchetype[e] = newArchId
	return old, hadOld
}

// Remove detaches component T from e, moving e to the archetype reached
// by the remove-edge. Returns the removed value, or (zero, false) if e
// did not have T (spec.md §4.5, §8).
func Remove[T any](w *World, e Entity) (T, bool) {
	var zero T
	if !w.entities.isAlive(e) {
		return zero, false
	}
	comp := NewComponent[T]()
	archId := w.entityArchetype[e]
	arch := w.graph.Get(archId)
	if !arch.Has(comp.Id()) {
		return zero, false
	}
	store := storeFor(w, comp)
	old, _ := store.Remove(e)

	newArchId, ok, err := w.graph.GetRemoveEdge(archId, comp.Id())
	if err != nil || !ok {
		if err != nil {
			w.log.WithError(err).Error("resolve remove-edge")
		}
		return old, true
	}
	newArch := w.graph.Get(newArchId)
	idx, err := arch.TransferEntity(e, newArch)
	if err != nil {
		w.log.WithError(err).Error("transfer entity to post-remove archetype")
		return old, true
	}
	for _, c := range newArch.Components() {
		if ops, ok := w.storeOps[c]; ok {
			ops.syncToRow(e, idx, newArch.Table())
		}
	}
	w.entityArchetype[e] = newArchId
	return old, true
}

// Get returns a pointer to e's value of type T, or nil if e is dead or
// does not carry T. The pointer is invalidated by any subsequent
// Insert/Remove of T on any entity (sparse-set compaction may relocate
// it).
func Get[T any](w *World, e Entity) *T {
	if !w.entities.isAlive(e) {
		return nil
	}
	id := componentIdFor[T]()
	s, ok := w.stores[id]
	if !ok {
		return nil
	}
	return s.(*SparseSet[T]).GetPtr(e)
}

// Has reports whether e currently carries a component of type T.
func Has[T any](w *World, e Entity) bool {
	if !w.entities.isAlive(e) {
		return false
	}
	archId, ok := w.entityArchetype[e]
	if !ok {
		return false
	}
	return w.graph.Get(archId).Has(componentIdFor[T]())
}
