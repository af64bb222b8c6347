package bappa

// entityTag is the phantom type parameter for Entity's underlying handle.
// Entity itself is not generic (spec.md §3.1: "identical shape and
// invariants to Handle<_> but NOT generic over a type").
type entityTag struct{}

// Entity is the universal key across all component stores: a generational
// handle with no type parameter. Two Entity values are equal iff both
// Index and Generation match.
type Entity struct {
	Index      uint32
	Generation uint32
}

// PLACEHOLDER is the sentinel Entity value with Generation 0, which the
// allocator never issues (generations start at 1), so PLACEHOLDER can
// never collide with a real, live entity.
var PLACEHOLDER = Entity{Index: invalidIndex, Generation: 0}

// IsPlaceholder reports whether e is the zero/placeholder sentinel.
func (e Entity) IsPlaceholder() bool {
	return e.Generation == 0
}

func (e Entity) asHandle() Handle[entityTag] {
	return Handle[entityTag]{Index: e.Index, Generation: e.Generation}
}

func fromHandle(h Handle[entityTag]) Entity {
	return Entity{Index: h.Index, Generation: h.Generation}
}

// entityAllocator allocates and recycles Entity values. It is semantically
// identical to HandleAllocator[entityTag] (spec.md §4.2); it exists as its
// own type only so World can expose Entity-flavored batch APIs without
// every caller writing out the generic instantiation.
type entityAllocator struct {
	alloc HandleAllocator[entityTag]
}

func (a *entityAllocator) allocate() Entity {
	return fromHandle(a.alloc.Allocate())
}

func (a *entityAllocator) allocateBatch(n int) []Entity {
	handles := a.alloc.AllocateBatch(n)
	out := make([]Entity, len(handles))
	for i, h := range handles {
		out[i] = fromHandle(h)
	}
	return out
}

func (a *entityAllocator) reserve(n int) {
	a.alloc.Reserve(n)
}

func (a *entityAllocator) deallocate(e Entity) bool {
	return a.alloc.Deallocate(e.asHandle())
}

func (a *entityAllocator) deallocateBatch(es []Entity) []bool {
	handles := make([]Handle[entityTag], len(es))
	for i, e := range es {
		handles[i] = e.asHandle()
	}
	return a.alloc.DeallocateBatch(handles)
}

func (a *entityAllocator) isAlive(e Entity) bool {
	if e.IsPlaceholder() {
		return false
	}
	return a.alloc.IsAlive(e.asHandle())
}
