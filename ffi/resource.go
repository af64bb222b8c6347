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

// Resources cross the FFI boundary keyed by a host-assigned hash rather
// than a Go reflect.Type, the same raw/typed split rawcomponent.go makes
// for components (spec.md §6.1, "Resource — parallel surface for
// resources").

//export bappa_resource_set
func bappa_resource_set(ctxID C.uint64_t, hash C.uint64_t, data *C.uint8_t, dataLen C.uint32_t) C.int {
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
	ctx.world.InsertRawResource(uint64(hash), payload)
	clearLastError()
	return 1
}

//export bappa_resource_get
func bappa_resource_get(ctxID C.uint64_t, hash C.uint64_t, outLen *C.uint32_t) *C.uint8_t {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok {
		if outLen != nil {
			*outLen = 0
		}
		return nil
	}
	ctx.mu.Lock()
	data, found := ctx.world.GetRawResource(uint64(hash))
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

//export bappa_resource_has
func bappa_resource_has(ctxID C.uint64_t, hash C.uint64_t) C.int {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok {
		return 0
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.world.HasRawResource(uint64(hash)) {
		return 1
	}
	return 0
}

//export bappa_resource_remove
func bappa_resource_remove(ctxID C.uint64_t, hash C.uint64_t) C.int {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok {
		return 0
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.world.RemoveRawResource(uint64(hash)) {
		return 1
	}
	return 0
}
