package bappa

// EntityCommand is one deferred structural mutation, applied to a World
// once it is safe to do so (spec.md §4.7, "command buffers: deferred
// structural mutations enqueued during system execution, applied after
// the batch completes", the same shape as the teacher's
// operation_queue.go EntityOperation).
type EntityCommand interface {
	Apply(*World)
}

// CommandBuffer collects EntityCommands during a system body, where an
// active Cursor may hold the World's structural lock, and replays them
// once the owning batch/frame finishes
// (spec.md §6.2). Not safe for concurrent use by multiple goroutines;
// the scheduler gives each parallel system its own buffer.
type CommandBuffer struct {
	world *World
	ops   []EntityCommand
}

// NewCommandBuffer returns a buffer that will apply its queued commands
// to w.
func NewCommandBuffer(w *World) *CommandBuffer {
	return &CommandBuffer{world: w}
}

// Len reports how many commands are currently queued.
func (b *CommandBuffer) Len() int { return len(b.ops) }

// Apply runs every queued command against the buffer's World in order,
// then clears the queue. If the World is still locked (nested inside
// another Cursor or buffer apply), Apply is a no-op and the queue is
// left intact for a later retry, mirroring the teacher's
// entityOperationsQueue.ProcessAll.
func (b *CommandBuffer) Apply() {
	if b.world.Locked() {
		return
	}
	b.world.lock(lockBitCommands)
	defer b.world.unlock(lockBitCommands)
	for _, op := range b.ops {
		op.Apply(b.world)
	}
	b.ops = b.ops[:0]
}

type spawnCommand struct {
	entity Entity
}

func (c spawnCommand) Apply(w *World) {
	if _, err := w.graph.Get(EmptyArchetypeId).AddEntity(c.entity); err != nil {
		w.log.WithError(err).Error("apply buffered spawn")
		return
	}
	w.entityArchetype[c.entity] = EmptyArchetypeId
}

// Spawn reserves a new entity immediately (allocation itself never
// touches an archetype table, so it need not be deferred) and enqueues
// its attachment to the empty archetype. The returned handle is valid
// for further buffered Insert calls before Apply runs.
func (b *CommandBuffer) Spawn() Entity {
	e := b.world.entities.allocate()
	b.ops = append(b.ops, spawnCommand{entity: e})
	return e
}

type despawnCommand struct {
	entity Entity
}

func (c despawnCommand) Apply(w *World) {
	w.Despawn(c.entity)
}

// Despawn enqueues e's destruction.
func (b *CommandBuffer) Despawn(e Entity) {
	b.ops = append(b.ops, despawnCommand{entity: e})
}

type insertCommand[T any] struct {
	entity Entity
	value  T
}

func (c insertCommand[T]) Apply(w *World) {
	Insert(w, c.entity, c.value)
}

// BufferInsert enqueues attaching component value v of type T to e.
func BufferInsert[T any](b *CommandBuffer, e Entity, v T) {
	b.ops = append(b.ops, insertCommand[T]{entity: e, value: v})
}

type removeCommand[T any] struct {
	entity Entity
}

func (c removeCommand[T]) Apply(w *World) {
	Remove[T](w, c.entity)
}

// BufferRemove enqueues detaching component T from e.
func BufferRemove[T any](b *CommandBuffer, e Entity) {
	b.ops = append(b.ops, removeCommand[T]{entity: e})
}

type insertResourceCommand[T any] struct {
	value T
}

func (c insertResourceCommand[T]) Apply(w *World) {
	InsertResource(w, c.value)
}

// BufferInsertResource enqueues replacing the World's singleton instance
// of T once the buffer applies (spec.md §3.1 and §4.9 both list
// insert_resource alongside spawn/despawn/insert/remove as a required
// deferred command, since a system may only learn it needs to publish a
// resource while it still holds the World locked).
func BufferInsertResource[T any](b *CommandBuffer, v T) {
	b.ops = append(b.ops, insertResourceCommand[T]{value: v})
}

type insertRawCommand struct {
	id     ComponentId
	entity Entity
	data   []byte
}

func (c insertRawCommand) Apply(w *World) {
	w.InsertRaw(c.id, c.entity, c.data)
}

// BufferInsertRaw enqueues attaching a raw (FFI-declared) component
// value to e, the byte-oriented counterpart to BufferInsert[T] for
// components whose Go type the caller cannot name (spec.md §6.1) - the
// FFI boundary's only legal way to perform this structural mutation
// from inside a host-registered system without re-entering the World
// directly while it's locked for the batch's duration.
func BufferInsertRaw(b *CommandBuffer, id ComponentId, e Entity, data []byte) {
	b.ops = append(b.ops, insertRawCommand{id: id, entity: e, data: append([]byte(nil), data...)})
}

type removeRawCommand struct {
	id     ComponentId
	entity Entity
}

func (c removeRawCommand) Apply(w *World) {
	w.RemoveRaw(c.id, c.entity)
}

// BufferRemoveRaw enqueues detaching a raw component from e.
func BufferRemoveRaw(b *CommandBuffer, id ComponentId, e Entity) {
	b.ops = append(b.ops, removeRawCommand{id: id, entity: e})
}

type insertRawResourceCommand struct {
	hash uint64
	data []byte
}

func (c insertRawResourceCommand) Apply(w *World) {
	w.InsertRawResource(c.hash, c.data)
}

// BufferInsertRawResource enqueues replacing the World's raw resource
// singleton for hash, the byte-oriented counterpart to
// BufferInsertResource[T] for resources declared across the FFI
// boundary.
func BufferInsertRawResource(b *CommandBuffer, hash uint64, data []byte) {
	b.ops = append(b.ops, insertRawResourceCommand{hash: hash, data: append([]byte(nil), data...)})
}

type sendEventCommand[T any] struct {
	events *Events[T]
	value  T
}

func (c sendEventCommand[T]) Apply(*World) {
	c.events.Send(c.value)
}

// BufferSendEvent enqueues sending v on events, deferred until the
// buffer applies (spec.md §3.1, §4.9). Events queues are independent of
// any World (spec.md §4.7), so the command names the specific queue to
// send on rather than looking one up by type.
func BufferSendEvent[T any](b *CommandBuffer, events *Events[T], v T) {
	b.ops = append(b.ops, sendEventCommand[T]{events: events, value: v})
}
