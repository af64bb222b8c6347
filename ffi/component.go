package ffi

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"github.com/TheBitDrifter/bappa"
)

//export bappa_component_register
func bappa_component_register(hash C.uint64_t, name *C.char, size C.uint32_t, align C.uint32_t) C.uint32_t {
	var goName string
	if name != nil {
		goName = C.GoString(name)
	}
	id := bappa.RegisterRawComponent(uint64(hash), goName, uint32(size), uint32(align))
	return C.uint32_t(id)
}

//export bappa_component_add
func bappa_component_add(ctxID C.uint64_t, compID C.uint32_t, handle C.uint64_t, data *C.uint8_t, dataLen C.uint32_t) C.int {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok {
		setLastError(int32(bappa.KindContextInvalid), "invalid context")
		return 0
	}
	var payload []byte
	if dataLen > 0 {
		payload = C.GoBytes(unsafe.Pointer(data), C.int(dataLen))
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.world.InsertRaw(bappa.ComponentId(compID), unpackEntity(uint64(handle)), payload)
	clearLastError()
	return 1
}

//export bappa_component_remove
func bappa_component_remove(ctxID C.uint64_t, compID C.uint32_t, handle C.uint64_t) C.int {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok {
		return 0
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if _, ok := ctx.world.RemoveRaw(bappa.ComponentId(compID), unpackEntity(uint64(handle))); ok {
		return 1
	}
	return 0
}

//export bappa_component_has
func bappa_component_has(ctxID C.uint64_t, compID C.uint32_t, handle C.uint64_t) C.int {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok {
		return 0
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.world.HasRaw(bappa.ComponentId(compID), unpackEntity(uint64(handle))) {
		return 1
	}
	return 0
}

// bappa_component_get returns a fresh C-allocated copy of the component
// bytes; the host owns it after the call and must release it with
// bappa_free_bytes. cgo forbids C code retaining pointers into
// Go-managed memory past the call, so no pointer into the engine's
// SparseSet is ever handed across the boundary directly.
//
//export bappa_component_get
func bappa_component_get(ctxID C.uint64_t, compID C.uint32_t, handle C.uint64_t, outLen *C.uint32_t) *C.uint8_t {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok {
		if outLen != nil {
			*outLen = 0
		}
		return nil
	}
	ctx.mu.Lock()
	data, found := ctx.world.GetRaw(bappa.ComponentId(compID), unpackEntity(uint64(handle)))
	ctx.mu.Unlock()
	if !found {
		if outLen != nil {
			*outLen = 0
		}
		return nil
	}
	if outLen != nil {
		*outLen = C.uint32_t(len(data))
	}
	if len(data) == 0 {
		return nil
	}
	return (*C.uint8_t)(C.CBytes(data))
}

// bappa_component_set writes host-mutated bytes back, completing the
// copy-out/mutate/copy-in pattern bappa_component_get starts.
//
//export bappa_component_set
func bappa_component_set(ctxID C.uint64_t, compID C.uint32_t, handle C.uint64_t, data *C.uint8_t, dataLen C.uint32_t) C.int {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok {
		return 0
	}
	var payload []byte
	if dataLen > 0 {
		payload = C.GoBytes(unsafe.Pointer(data), C.int(dataLen))
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	e := unpackEntity(uint64(handle))
	id := bappa.ComponentId(compID)
	if !ctx.world.HasRaw(id, e) {
		return 0
	}
	ctx.world.InsertRaw(id, e, payload)
	return 1
}

//export bappa_free_bytes
func bappa_free_bytes(p *C.uint8_t) {
	C.free(unsafe.Pointer(p))
}
