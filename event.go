package bappa

import "sync"

// eventSlice exists only so Events[T] can name a slice of T in a field
// without the type parameter shadowing syntax getting in the way; it
// carries no behavior of its own.
type eventSlice[T any] []T

// Events is a double-buffered queue of T, generalizing the teacher's
// HandleAllocator mutex-guarded-slice style (handle.go) to the
// publish/drain pattern spec.md §4.7 describes: writers append to the
// current frame's buffer and that same buffer is immediately readable
// (an event is visible the instant it's sent, not after the next
// Swap), and Swap (called once per scheduler tick) rotates which
// buffer is active, clearing the one about to receive new writes. Each
// reader sees exactly the events sent since its own last Read as long as
// at most one Swap happened in between; events sent before an earlier
// Swap have already been cleared.
type Events[T any] struct {
	mu         sync.Mutex
	buffers    [2]eventSlice[T]
	current    int
	generation int
}

// NewEvents returns an empty, ready-to-use Events queue.
func NewEvents[T any]() *Events[T] {
	return &Events[T]{}
}

// Send appends an event to the current frame's write buffer.
func (e *Events[T]) Send(v T) {
	e.mu.Lock()
	e.buffers[e.current] = append(e.buffers[e.current], v)
	e.mu.Unlock()
}

// SendBatch appends every event in vs to the current frame's write
// buffer.
func (e *Events[T]) SendBatch(vs []T) {
	if len(vs) == 0 {
		return
	}
	e.mu.Lock()
	e.buffers[e.current] = append(e.buffers[e.current], vs...)
	e.mu.Unlock()
}

// Swap rotates the double buffer: the buffer that held this frame's
// writes stays readable as the previous buffer until the next Swap, and the other
// buffer (last active two Swaps ago, already stale) is cleared and
// made the new write target. Called once per scheduler tick, never
// from inside a system.
func (e *Events[T]) Swap() {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := e.current ^ 1
	e.buffers[next] = e.buffers[next][:0]
	e.current = next
	e.generation++
}

// readable returns the buffer currently receiving Sends (same-frame
// events are readable immediately, per spec.md §4.7), the buffer that
// received Sends before the last Swap, and the current generation.
func (e *Events[T]) readable() (cur, prev eventSlice[T], gen int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffers[e.current], e.buffers[e.current^1], e.generation
}

// EventReader tracks an independent read cursor into an Events queue,
// so multiple systems can each consume every event exactly once without
// coordinating with each other (spec.md §4.8).
type EventReader[T any] struct {
	events     *Events[T]
	cursor     int
	generation int
}

// NewEventReader returns a reader that has consumed nothing: its first
// Read returns every event still held in either buffer.
func NewEventReader[T any](events *Events[T]) *EventReader[T] {
	return &EventReader[T]{events: events, generation: -1}
}

// Read returns every event the reader has not yet consumed, oldest
// first, advancing the cursor. After one Swap since the last Read, the
// unread tail of the previous buffer comes first; after more than one,
// the whole previous buffer does. The cursor then restarts at the
// beginning of the current buffer. The returned slice is a fresh copy.
func (r *EventReader[T]) Read() []T {
	buf, prev, gen := r.events.readable()
	var out []T
	if gen != r.generation {
		if gen == r.generation+1 {
			if r.cursor < len(prev) {
				out = append(out, prev[r.cursor:]...)
			}
		} else {
			out = append(out, prev...)
		}
		r.cursor = 0
		r.generation = gen
	}
	if r.cursor < len(buf) {
		out = append(out, buf[r.cursor:]...)
		r.cursor = len(buf)
	}
	return out
}
