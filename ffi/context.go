package ffi

/*
#include <stdint.h>
*/
import "C"

import (
	"sync"

	"github.com/TheBitDrifter/bappa"
)

// apiVersion is returned by bappa_version for host-side compatibility
// checks; bumped whenever the C ABI gains or changes an entry point.
const apiVersion = 1

// ContextId is the opaque handle a host process holds for one engine
// instance: its own World and Scheduler, independent of every other
// context in the process (spec.md §6.1, "Lifecycle* — create context,
// destroy context...").
type ContextId uint64

// Context bundles one World with the Scheduler that drives it and
// serializes every FFI call against it: the C ABI gives no way for a
// host to promise single-threaded access, so each context owns a mutex
// rather than relying on callers to coordinate (the teacher's
// storage.go mask.Mask256 lock protects only structural mutation
// *within* a World; this protects the whole context, including
// Scheduler bookkeeping, across concurrent host threads).
type Context struct {
	mu        *reentrantMutex
	world     *bappa.World
	scheduler *bappa.Scheduler
}

var registry = struct {
	mu     sync.RWMutex
	byID   map[ContextId]*Context
	nextID ContextId
}{byID: make(map[ContextId]*Context), nextID: 1}

func createContext() (ContextId, error) {
	w, err := bappa.NewWorld()
	if err != nil {
		return 0, err
	}
	ctx := &Context{mu: newReentrantMutex(), world: w, scheduler: bappa.NewScheduler(w)}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	id := registry.nextID
	registry.nextID++
	registry.byID[id] = ctx
	return id, nil
}

func destroyContext(id ContextId) bool {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, ok := registry.byID[id]; !ok {
		return false
	}
	delete(registry.byID, id)
	return true
}

func lookupContext(id ContextId) (*Context, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	ctx, ok := registry.byID[id]
	return ctx, ok
}

//export bappa_context_create
func bappa_context_create() C.uint64_t {
	id, err := createContext()
	if err != nil {
		setLastError(bappaErrCode(err), err.Error())
		return 0
	}
	clearLastError()
	return C.uint64_t(id)
}

//export bappa_context_destroy
func bappa_context_destroy(id C.uint64_t) C.int {
	if destroyContext(ContextId(id)) {
		return 1
	}
	setLastError(int32(bappa.KindContextInvalid), "invalid context")
	return 0
}

//export bappa_context_is_valid
func bappa_context_is_valid(id C.uint64_t) C.int {
	if _, ok := lookupContext(ContextId(id)); ok {
		return 1
	}
	return 0
}

//export bappa_version
func bappa_version() C.uint32_t {
	return C.uint32_t(apiVersion)
}
