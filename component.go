package bappa

import (
	"reflect"
	"sync"

	"github.com/TheBitDrifter/table"
)

// ComponentId is the process-stable identifier for a registered component
// type (spec.md §3.1). Ids are assigned in first-registration order
// starting at 0, giving a total, stable-within-process ordering for free:
// canonical archetype identity sorts on this numeric value.
type ComponentId uint32

type componentRegistration struct {
	id   ComponentId
	typ  reflect.Type // nil for a component registered across the FFI boundary
	elem table.ElementType
	name string

	// rawSize/rawAlign are set only for components registered via
	// registerRawComponentId (spec.md §6.1), where the host declares a
	// byte layout instead of a Go type.
	rawSize  uint32
	rawAlign uint32
}

var componentRegistry = struct {
	mu        sync.Mutex
	byType    map[reflect.Type]ComponentId
	byRawHash map[uint64]ComponentId
	entries   []componentRegistration
}{
	byType:    make(map[reflect.Type]ComponentId),
	byRawHash: make(map[uint64]ComponentId),
}

// registerRawComponentId registers (or looks up) the ComponentId for a
// component declared across the FFI boundary by a stable type-id hash
// rather than a Go type (spec.md §6.1: "register type (type-id hash +
// name + size + alignment; idempotent)"). Raw components never gain a
// table.ElementType, so they are never members of an Archetype; they
// live only in a World's raw component stores (rawcomponent.go).
func registerRawComponentId(hash uint64, name string, size, align uint32) ComponentId {
	componentRegistry.mu.Lock()
	defer componentRegistry.mu.Unlock()
	if id, ok := componentRegistry.byRawHash[hash]; ok {
		return id
	}
	id := ComponentId(len(componentRegistry.entries))
	componentRegistry.entries = append(componentRegistry.entries, componentRegistration{
		id: id, name: name, rawSize: size, rawAlign: align,
	})
	componentRegistry.byRawHash[hash] = id
	return id
}

// rawComponentSize returns the registered byte size for a raw
// component, or 0 if id is not a raw component.
func rawComponentSize(id ComponentId) uint32 {
	componentRegistry.mu.Lock()
	defer componentRegistry.mu.Unlock()
	if int(id) >= len(componentRegistry.entries) {
		return 0
	}
	return componentRegistry.entries[id].rawSize
}

// RegisterRawComponent is the exported entry point package ffi uses to
// implement the C-ABI's idempotent component-type registration
// (spec.md §6.1).
func RegisterRawComponent(hash uint64, name string, size, align uint32) ComponentId {
	return registerRawComponentId(hash, name, size, align)
}

// componentIdFor returns the stable ComponentId for T, registering it with
// the process-global registry on first use. The registry also stores T's
// table.ElementType, which drives the teacher's columnar storage engine
// (table.Schema / table.Table) for the archetype's dense half.
func componentIdFor[T any]() ComponentId {
	t := reflect.TypeFor[T]()
	componentRegistry.mu.Lock()
	defer componentRegistry.mu.Unlock()
	if id, ok := componentRegistry.byType[t]; ok {
		return id
	}
	id := ComponentId(len(componentRegistry.entries))
	elem := table.FactoryNewElementType[T]()
	componentRegistry.entries = append(componentRegistry.entries, componentRegistration{
		id: id, typ: t, elem: elem, name: t.String(),
	})
	componentRegistry.byType[t] = id
	return id
}

func componentElementType(id ComponentId) table.ElementType {
	componentRegistry.mu.Lock()
	defer componentRegistry.mu.Unlock()
	return componentRegistry.entries[id].elem
}

// ComponentName returns the registered type's name, for diagnostics such
// as InsertRaw's size-mismatch panic message.
func ComponentName(id ComponentId) string {
	componentRegistry.mu.Lock()
	defer componentRegistry.mu.Unlock()
	if int(id) >= len(componentRegistry.entries) {
		return "<unregistered>"
	}
	return componentRegistry.entries[id].name
}

// registeredComponentCount reports how many distinct component types have
// been registered in this process.
func registeredComponentCount() int {
	componentRegistry.mu.Lock()
	defer componentRegistry.mu.Unlock()
	return len(componentRegistry.entries)
}

// Component[T] is the typed handle callers use to declare, query, and
// fetch a component, analogous to the teacher's AccessibleComponent[T]
// (componentaccessible.go) but backed by the stable ComponentId above
// rather than raw table.ElementType identity.
type Component[T any] struct {
	id  ComponentId
	acc table.Accessor[T]
}

// NewComponent registers (or looks up) the ComponentId for T and returns a
// typed handle for declaring it in archetypes, queries, and World calls.
func NewComponent[T any]() Component[T] {
	id := componentIdFor[T]()
	elem := componentElementType(id)
	return Component[T]{id: id, acc: table.FactoryNewAccessor[T](elem)}
}

// Id returns the component's process-stable identifier.
func (c Component[T]) Id() ComponentId { return c.id }

// Get fetches a pointer to the value at row index within tbl, same
// contract as the teacher's AccessibleComponent[T].Get.
func (c Component[T]) Get(index int, tbl table.Table) *T {
	return c.acc.Get(index, tbl)
}

// Check reports whether tbl's archetype carries this component at all.
func (c Component[T]) Check(tbl table.Table) bool {
	return c.acc.Check(tbl)
}
