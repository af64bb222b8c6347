package bappa

import "reflect"

// Resources is a type-erased, one-of-each-type singleton store (spec.md
// §5.3). Values are addressed by their reflect.Type, mirroring the
// teacher's componentRegistry keying pattern in component.go but for
// world-global singletons rather than per-entity data. Each slot holds a
// *T boxed as any, so GetResource's returned pointer always aliases the
// live stored value.
type Resources struct {
	values map[reflect.Type]any
}

func newResources() *Resources {
	return &Resources{values: make(map[reflect.Type]any)}
}

// NonSendResources is the same store for values that are not safe to
// touch off the goroutine that owns the World (spec.md §5.4) -
// typically a handle into a non-thread-safe external library (a GPU
// context, a platform window handle). The scheduler is responsible for
// never dispatching a system that declares a NonSend access onto a
// worker-pool goroutine; this type itself only owns the storage.
type NonSendResources struct {
	values map[reflect.Type]any
}

func newNonSendResources() *NonSendResources {
	return &NonSendResources{values: make(map[reflect.Type]any)}
}

// InsertResource stores v as the World's singleton instance of T,
// replacing and returning any previous value.
func InsertResource[T any](w *World, v T) (T, bool) {
	var zero T
	t := reflect.TypeFor[T]()
	prev, hadOld := w.resources.values[t]
	boxed := new(T)
	*boxed = v
	w.resources.values[t] = boxed
	if !hadOld {
		return zero, false
	}
	return *prev.(*T), true
}

// GetResource returns a pointer to the World's singleton instance of T,
// or nil if none has been inserted. The pointer aliases live storage:
// mutating *GetResource[T](w) is visible to every later GetResource[T]
// call until T is replaced or removed.
func GetResource[T any](w *World) *T {
	v, ok := w.resources.values[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return v.(*T)
}

// HasResource reports whether T has been inserted into the World.
func HasResource[T any](w *World) bool {
	_, ok := w.resources.values[reflect.TypeFor[T]()]
	return ok
}

// RemoveResource deletes and returns the World's singleton instance of
// T, if any.
func RemoveResource[T any](w *World) (T, bool) {
	var zero T
	t := reflect.TypeFor[T]()
	v, ok := w.resources.values[t]
	if !ok {
		return zero, false
	}
	delete(w.resources.values, t)
	return *v.(*T), true
}

// InsertNonSendResource stores v as the World's non-send singleton
// instance of T.
func InsertNonSendResource[T any](w *World, v T) {
	boxed := new(T)
	*boxed = v
	w.nonSend.values[reflect.TypeFor[T]()] = boxed
}

// GetNonSendResource returns a pointer to the World's non-send singleton
// instance of T, or nil if none has been inserted. Callers must only
// invoke this from the goroutine that owns the World, or from a system
// the scheduler has pinned to that goroutine because it declares a
// NonSend access (spec.md §5.4).
func GetNonSendResource[T any](w *World) *T {
	v, ok := w.nonSend.values[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return v.(*T)
}

// RemoveNonSendResource deletes and returns the World's non-send
// singleton instance of T, if any.
func RemoveNonSendResource[T any](w *World) (T, bool) {
	var zero T
	t := reflect.TypeFor[T]()
	v, ok := w.nonSend.values[t]
	if !ok {
		return zero, false
	}
	delete(w.nonSend.values, t)
	return *v.(*T), true
}

// InsertRawResource stores a copy of data as the World's singleton for
// the host type identified by hash, the FFI-boundary counterpart to
// InsertResource[T] (spec.md §6.1, "Resource — parallel surface for
// resources").
func (w *World) InsertRawResource(hash uint64, data []byte) {
	w.rawResources[hash] = append([]byte(nil), data...)
}

// GetRawResource returns a copy of the World's singleton for hash, if
// any has been inserted.
func (w *World) GetRawResource(hash uint64) ([]byte, bool) {
	v, ok := w.rawResources[hash]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

// HasRawResource reports whether hash has a singleton inserted.
func (w *World) HasRawResource(hash uint64) bool {
	_, ok := w.rawResources[hash]
	return ok
}

// RemoveRawResource deletes the World's singleton for hash, reporting
// whether one existed.
func (w *World) RemoveRawResource(hash uint64) bool {
	if _, ok := w.rawResources[hash]; !ok {
		return false
	}
	delete(w.rawResources, hash)
	return true
}
