package bappa

// SparseSet is an O(1) map from Entity to a value of type T, with
// iteration order matching physical (dense) layout rather than insertion
// order (spec.md §4.3). It is the random-access half of the
// archetype/sparse-set duality described in spec.md §9.2; Archetype (backed
// by table.Table) is the iteration-friendly half.
type SparseSet[T any] struct {
	sparse []int32 // indexed by Entity.Index; -1 means absent
	dense  []Entity
	values []T
}

const sparseAbsent int32 = -1

// NewSparseSet returns an empty, ready-to-use SparseSet.
func NewSparseSet[T any]() *SparseSet[T] {
	return &SparseSet[T]{}
}

func (s *SparseSet[T]) growSparse(n int) {
	if len(s.sparse) >= n {
		return
	}
	grown := make([]int32, n)
	for i := len(s.sparse); i < n; i++ {
		grown[i] = sparseAbsent
	}
	copy(grown, s.sparse)
	s.sparse = grown
}

// Insert stores value for entity, returning the previous value if one
// existed. O(1) amortized.
func (s *SparseSet[T]) Insert(entity Entity, value T) (old T, hadOld bool) {
	s.growSparse(int(entity.Index) + 1)
	if d := s.sparse[entity.Index]; d != sparseAbsent {
		old = s.values[d]
		s.values[d] = value
		return old, true
	}
	d := int32(len(s.dense))
	s.dense = append(s.dense, entity)
	s.values = append(s.values, value)
	s.sparse[entity.Index] = d
	return old, false
}

// Remove deletes entity's value via swap-remove, returning it if present.
// The entity previously occupying the last dense slot, if any, takes the
// removed slot's position, and its sparse entry is fixed up accordingly.
func (s *SparseSet[T]) Remove(entity Entity) (T, bool) {
	var zero T
	if int(entity.Index) >= len(s.sparse) {
		return zero, false
	}
	d := s.sparse[entity.Index]
	if d == sparseAbsent {
		return zero, false
	}
	removed := s.values[d]
	lastIdx := int32(len(s.dense) - 1)
	if d != lastIdx {
		lastEntity := s.dense[lastIdx]
		s.dense[d] = lastEntity
		s.values[d] = s.values[lastIdx]
		s.sparse[lastEntity.Index] = d
	}
	s.dense = s.dense[:lastIdx]
	s.values = s.values[:lastIdx]
	s.sparse[entity.Index] = sparseAbsent
	return removed, true
}

// Get returns entity's value and whether it was present. O(1).
func (s *SparseSet[T]) Get(entity Entity) (T, bool) {
	var zero T
	if int(entity.Index) >= len(s.sparse) {
		return zero, false
	}
	d := s.sparse[entity.Index]
	if d == sparseAbsent {
		return zero, false
	}
	return s.values[d], true
}

// GetPtr returns a pointer into dense storage for in-place mutation, or
// nil if entity has no value. The pointer is invalidated by any
// subsequent Insert/Remove on this set (dense storage may reallocate or
// swap).
func (s *SparseSet[T]) GetPtr(entity Entity) *T {
	if int(entity.Index) >= len(s.sparse) {
		return nil
	}
	d := s.sparse[entity.Index]
	if d == sparseAbsent {
		return nil
	}
	return &s.values[d]
}

// Contains reports whether entity has a value in this set. O(1).
func (s *SparseSet[T]) Contains(entity Entity) bool {
	if int(entity.Index) >= len(s.sparse) {
		return false
	}
	return s.sparse[entity.Index] != sparseAbsent
}

// Len returns the number of entries currently stored.
func (s *SparseSet[T]) Len() int {
	return len(s.dense)
}

// All iterates (Entity, *T) pairs in dense order, which is cache-friendly
// but not insertion order.
func (s *SparseSet[T]) All(yield func(Entity, *T) bool) {
	for i := range s.dense {
		if !yield(s.dense[i], &s.values[i]) {
			return
		}
	}
}
