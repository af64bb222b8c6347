package bappa

import (
	"reflect"
	"sync/atomic"
)

// SystemId is a process-unique, monotonically assigned system identifier
// (spec.md §4.8).
type SystemId uint64

var nextSystemId atomic.Uint64

// AccessKind distinguishes a read from a write for conflict analysis.
type AccessKind uint8

const (
	AccessRead AccessKind = iota
	AccessWrite
)

// AccessPattern declares everything a System touches: component types,
// resources, and non-send resources, each tagged Read or Write. The
// scheduler uses this to detect conflicts and build parallel batches
// (spec.md §4.8, §6).
type AccessPattern struct {
	components map[ComponentId]AccessKind
	resources  map[reflect.Type]AccessKind
	nonSend    map[reflect.Type]AccessKind
	// MainThreadOnly is forced true by any UsesNonSend call: "any
	// non-send access additionally forces its system to the main
	// thread" (spec.md §4.6).
	MainThreadOnly bool
}

// NewAccessPattern returns an empty access pattern ready for the
// Reads/Writes/ReadsResource/... builder calls.
func NewAccessPattern() *AccessPattern {
	return &AccessPattern{
		components: make(map[ComponentId]AccessKind),
		resources:  make(map[reflect.Type]AccessKind),
		nonSend:    make(map[reflect.Type]AccessKind),
	}
}

// Reads declares read access to the given component ids.
func (a *AccessPattern) Reads(ids ...ComponentId) *AccessPattern {
	for _, id := range ids {
		a.components[id] = AccessRead
	}
	return a
}

// Writes declares write access to the given component ids. A component
// declared both Read and Write by the same pattern is treated as Write
// for conflict purposes.
func (a *AccessPattern) Writes(ids ...ComponentId) *AccessPattern {
	for _, id := range ids {
		a.components[id] = AccessWrite
	}
	return a
}

// ReadsResource declares read access to resource type T.
func ReadsResource[T any](a *AccessPattern) *AccessPattern {
	a.resources[reflect.TypeFor[T]()] = AccessRead
	return a
}

// WritesResource declares write access to resource type T.
func WritesResource[T any](a *AccessPattern) *AccessPattern {
	a.resources[reflect.TypeFor[T]()] = AccessWrite
	return a
}

// UsesNonSend declares access (always exclusive) to the non-send
// resource type T, and pins the system to the main thread.
func UsesNonSend[T any](a *AccessPattern) *AccessPattern {
	a.nonSend[reflect.TypeFor[T]()] = AccessWrite
	a.MainThreadOnly = true
	return a
}

// ConflictsWith reports whether a and b may not run concurrently: a
// write in either on the same id conflicts with any access to that id
// in the other; read/read never conflicts (spec.md §4.6). A
// MainThreadOnly pattern conflicts with every other pattern, so such a
// system always gets a batch of its own.
func (a *AccessPattern) ConflictsWith(b *AccessPattern) bool {
	if conflictsOn(a.components, b.components) {
		return true
	}
	if conflictsOn(a.resources, b.resources) {
		return true
	}
	if conflictsOn(a.nonSend, b.nonSend) {
		return true
	}
	if a.MainThreadOnly || b.MainThreadOnly {
		return true
	}
	return false
}

func conflictsOn[K comparable](a, b map[K]AccessKind) bool {
	small, large := a, b
	if len(large) < len(small) {
		small, large = large, small
	}
	for id, kind := range small {
		other, ok := large[id]
		if !ok {
			continue
		}
		if kind == AccessWrite || other == AccessWrite {
			return true
		}
	}
	return false
}

// RunFunc is a system body: given the World and a CommandBuffer for its
// deferred structural mutations, do the system's work for one tick.
type RunFunc func(w *World, cmd *CommandBuffer) error

// System is an opaque, schedulable unit of work: a name, a declared
// access pattern, and a run function (spec.md §3.1, §4.8). SystemId is
// assigned once, at construction, and never reused.
type System struct {
	id     SystemId
	name   string
	access *AccessPattern
	run    RunFunc
}

// NewSystem registers a new System with a fresh process-unique id.
func NewSystem(name string, access *AccessPattern, run RunFunc) *System {
	return &System{
		id:     SystemId(nextSystemId.Add(1)),
		name:   name,
		access: access,
		run:    run,
	}
}

// ID returns the system's process-unique identifier.
func (s *System) ID() SystemId { return s.id }

// Name returns the system's display name.
func (s *System) Name() string { return s.name }

// Access returns the system's declared access pattern.
func (s *System) Access() *AccessPattern { return s.access }
