package bappa

import "sync"

// Handle is a 64-bit generational reference: an Index into an owning
// allocator/map plus a Generation that invalidates stale copies once the
// slot has been freed and reused. T is a phantom type tag only — Handle[T]
// carries no value of type T, it only prevents a Handle[Texture] from being
// accepted where a Handle[Mesh] is expected.
type Handle[T any] struct {
	Index      uint32
	Generation uint32
}

// InvalidHandle is the sentinel returned by failed lookups. Its Index is
// math.MaxUint32 so it can never collide with a real allocation.
func InvalidHandle[T any]() Handle[T] {
	return Handle[T]{Index: invalidIndex, Generation: 0}
}

const invalidIndex uint32 = 1<<32 - 1

// IsValid reports whether h could plausibly reference a live allocation. It
// does not check liveness against an allocator; use HandleAllocator.IsAlive
// or HandleMap.Get for that.
func (h Handle[T]) IsValid() bool {
	return h.Index != invalidIndex
}

// HandleAllocator hands out Handle[T] values backed by a generation table
// and a free list, per spec.md §4.1. Zero value is ready to use.
type HandleAllocator[T any] struct {
	mu          sync.Mutex
	generations []uint32
	freeList    []uint32
}

// Allocate returns a fresh handle: either a recycled index whose generation
// has already been bumped by Deallocate, or a brand-new index starting at
// generation 1 (0 is reserved for "never allocated").
func (a *HandleAllocator[T]) Allocate() Handle[T] {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocateLocked()
}

func (a *HandleAllocator[T]) allocateLocked() Handle[T] {
	if n := len(a.freeList); n > 0 {
		idx := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		return Handle[T]{Index: idx, Generation: a.generations[idx]}
	}
	a.generations = append(a.generations, 1)
	idx := uint32(len(a.generations) - 1)
	return Handle[T]{Index: idx, Generation: a.generations[idx]}
}

// AllocateBatch allocates n handles in one locked section. n == 0 returns
// an empty, non-nil slice and mutates nothing.
func (a *HandleAllocator[T]) AllocateBatch(n int) []Handle[T] {
	if n <= 0 {
		return []Handle[T]{}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Handle[T], n)
	for i := range out {
		out[i] = a.allocateLocked()
	}
	return out
}

// Reserve grows the backing storage so the next n allocations do not need
// to grow the generation table, without allocating any handles.
func (a *HandleAllocator[T]) Reserve(n int) {
	if n <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if cap(a.generations)-len(a.generations) < n {
		grown := make([]uint32, len(a.generations), len(a.generations)+n)
		copy(grown, a.generations)
		a.generations = grown
	}
}

// Deallocate frees h's index for reuse, bumping its generation so any
// outstanding copy of h becomes stale. Returns false (no panic) if h's
// generation does not match the slot's current generation: a stale or
// double deallocation.
func (a *HandleAllocator[T]) Deallocate(h Handle[T]) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deallocateLocked(h)
}

func (a *HandleAllocator[T]) deallocateLocked(h Handle[T]) bool {
	if int(h.Index) >= len(a.generations) || a.generations[h.Index] != h.Generation {
		return false
	}
	// 0 is reserved for "never allocated": wrap MaxUint32 to 1, not 0.
	if a.generations[h.Index] == 1<<32-1 {
		a.generations[h.Index] = 1
	} else {
		a.generations[h.Index]++
	}
	a.freeList = append(a.freeList, h.Index)
	return true
}

// DeallocateBatch frees every handle in hs with single-step semantics,
// under one locked section. Each element's success is independent.
func (a *HandleAllocator[T]) DeallocateBatch(hs []Handle[T]) []bool {
	results := make([]bool, len(hs))
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, h := range hs {
		results[i] = a.deallocateLocked(h)
	}
	return results
}

// IsAlive reports whether h's generation matches the slot's current
// generation. A slot currently on the free list always has a generation
// that cannot match any handle still referencing it, because Deallocate
// bumps the generation before pushing the index onto the free list.
func (a *HandleAllocator[T]) IsAlive(h Handle[T]) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(h.Index) < len(a.generations) && a.generations[h.Index] == h.Generation
}

// Len returns the number of slots ever allocated (live + freed).
func (a *HandleAllocator[T]) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.generations)
}

// HandleMap pairs a HandleAllocator[T] with a parallel values slice, per
// spec.md §4.1: values[i] is populated iff index i is not on the free list.
type HandleMap[T any, V any] struct {
	alloc  HandleAllocator[T]
	values []optionalValue[V]
}

type optionalValue[V any] struct {
	set   bool
	value V
}

// Insert allocates a new handle for v and returns it.
func (m *HandleMap[T, V]) Insert(v V) Handle[T] {
	m.alloc.mu.Lock()
	h := m.alloc.allocateLocked()
	m.alloc.mu.Unlock()
	m.growTo(int(h.Index) + 1)
	m.values[h.Index] = optionalValue[V]{set: true, value: v}
	return h
}

func (m *HandleMap[T, V]) growTo(n int) {
	if len(m.values) >= n {
		return
	}
	grown := make([]optionalValue[V], n)
	copy(grown, m.values)
	m.values = grown
}

// Get returns the value for h, or ok=false if h is stale, invalid, or has
// been removed.
func (m *HandleMap[T, V]) Get(h Handle[T]) (V, bool) {
	var zero V
	if !m.alloc.IsAlive(h) || int(h.Index) >= len(m.values) {
		return zero, false
	}
	ov := m.values[h.Index]
	if !ov.set {
		return zero, false
	}
	return ov.value, true
}

// GetPtr returns a pointer to the stored value for in-place mutation, or
// nil if h does not resolve to a live value.
func (m *HandleMap[T, V]) GetPtr(h Handle[T]) *V {
	if !m.alloc.IsAlive(h) || int(h.Index) >= len(m.values) || !m.values[h.Index].set {
		return nil
	}
	return &m.values[h.Index].value
}

// Remove deallocates h and clears its stored value, returning it if present.
func (m *HandleMap[T, V]) Remove(h Handle[T]) (V, bool) {
	v, ok := m.Get(h)
	if !ok {
		return v, false
	}
	m.values[h.Index] = optionalValue[V]{}
	m.alloc.Deallocate(h)
	return v, true
}

// Contains reports whether h currently resolves to a stored value.
func (m *HandleMap[T, V]) Contains(h Handle[T]) bool {
	_, ok := m.Get(h)
	return ok
}
