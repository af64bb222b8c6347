package ffi

/*
#include <stdint.h>
*/
import "C"

import (
	"unsafe"

	"github.com/TheBitDrifter/bappa"
)

// packEntity/unpackEntity cross the C ABI as a single uint64: the
// generation in the high 32 bits, the index in the low 32 (spec.md
// §6.1, "Handles cross the boundary as packed 64-bit integers").
func packEntity(e bappa.Entity) uint64 {
	return uint64(e.Generation)<<32 | uint64(e.Index)
}

func unpackEntity(h uint64) bappa.Entity {
	return bappa.Entity{Index: uint32(h), Generation: uint32(h >> 32)}
}

//export bappa_entity_spawn
func bappa_entity_spawn(ctxID C.uint64_t) C.uint64_t {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok {
		setLastError(int32(bappa.KindContextInvalid), "invalid context")
		return 0
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return C.uint64_t(packEntity(ctx.world.SpawnEmpty()))
}

//export bappa_entity_spawn_batch
func bappa_entity_spawn_batch(ctxID C.uint64_t, n C.uint32_t, out *C.uint64_t) C.uint32_t {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok || out == nil || n == 0 {
		return 0
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	entities := ctx.world.SpawnBatch(int(n))
	dst := unsafe.Slice((*uint64)(unsafe.Pointer(out)), int(n))
	for i, e := range entities {
		dst[i] = packEntity(e)
	}
	return C.uint32_t(len(entities))
}

//export bappa_entity_despawn
func bappa_entity_despawn(ctxID C.uint64_t, handle C.uint64_t) C.int {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok {
		return 0
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.world.Despawn(unpackEntity(uint64(handle))) {
		return 1
	}
	return 0
}

//export bappa_entity_despawn_batch
func bappa_entity_despawn_batch(ctxID C.uint64_t, handles *C.uint64_t, n C.uint32_t) C.uint32_t {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok || handles == nil || n == 0 {
		return 0
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	src := unsafe.Slice((*uint64)(unsafe.Pointer(handles)), int(n))
	es := make([]bappa.Entity, len(src))
	for i, h := range src {
		es[i] = unpackEntity(h)
	}
	return C.uint32_t(ctx.world.DespawnBatch(es))
}

//export bappa_entity_is_alive
func bappa_entity_is_alive(ctxID C.uint64_t, handle C.uint64_t) C.int {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok {
		return 0
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.world.IsAlive(unpackEntity(uint64(handle))) {
		return 1
	}
	return 0
}

//export bappa_entity_is_alive_batch
func bappa_entity_is_alive_batch(ctxID C.uint64_t, handles *C.uint64_t, n C.uint32_t, out *C.uint8_t) {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok || handles == nil || out == nil || n == 0 {
		return
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	src := unsafe.Slice((*uint64)(unsafe.Pointer(handles)), int(n))
	dst := unsafe.Slice((*uint8)(unsafe.Pointer(out)), int(n))
	for i, h := range src {
		if ctx.world.IsAlive(unpackEntity(h)) {
			dst[i] = 1
		} else {
			dst[i] = 0
		}
	}
}

//export bappa_entity_count
func bappa_entity_count(ctxID C.uint64_t) C.uint32_t {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok {
		return 0
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return C.uint32_t(ctx.world.EntityCount())
}
