package ffi

/*
#include <stdint.h>
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/TheBitDrifter/bappa"
)

// activeCommandBuffers maps the OS thread currently running a
// host-registered system to that system's *bappa.CommandBuffer, the
// same per-calling-OS-thread keying lasterror.go uses. A host system
// runs synchronously underneath bappa_scheduler_run_frame, which already
// holds ctx.mu for the whole frame; structural mutation from inside the
// callback must go through this buffer instead of re-entering
// bappa_entity_spawn/bappa_component_add/etc., which would try to
// re-take a lock the calling thread already holds (spec.md §4.9 - the
// World forbids direct structural mutation during a system's run in the
// first place, buffered or not).
var activeCommandBuffers = struct {
	mu   sync.Mutex
	byID map[uint64]*bappa.CommandBuffer
}{byID: make(map[uint64]*bappa.CommandBuffer)}

func setActiveCommandBuffer(tid uint64, cmd *bappa.CommandBuffer) {
	activeCommandBuffers.mu.Lock()
	activeCommandBuffers.byID[tid] = cmd
	activeCommandBuffers.mu.Unlock()
}

func clearActiveCommandBuffer(tid uint64) {
	activeCommandBuffers.mu.Lock()
	delete(activeCommandBuffers.byID, tid)
	activeCommandBuffers.mu.Unlock()
}

func activeCommandBuffer() *bappa.CommandBuffer {
	tid := threadID()
	activeCommandBuffers.mu.Lock()
	defer activeCommandBuffers.mu.Unlock()
	return activeCommandBuffers.byID[tid]
}

//export bappa_command_spawn
func bappa_command_spawn(ctxID C.uint64_t) C.uint64_t {
	if _, ok := lookupContext(ContextId(ctxID)); !ok {
		setLastError(int32(bappa.KindContextInvalid), "invalid context")
		return 0
	}
	cmd := activeCommandBuffer()
	if cmd == nil {
		setLastError(int32(bappa.KindInvalidArgument), "no host system is currently running on this thread")
		return 0
	}
	clearLastError()
	return C.uint64_t(packEntity(cmd.Spawn()))
}

//export bappa_command_despawn
func bappa_command_despawn(ctxID C.uint64_t, handle C.uint64_t) C.int {
	if _, ok := lookupContext(ContextId(ctxID)); !ok {
		setLastError(int32(bappa.KindContextInvalid), "invalid context")
		return 0
	}
	cmd := activeCommandBuffer()
	if cmd == nil {
		setLastError(int32(bappa.KindInvalidArgument), "no host system is currently running on this thread")
		return 0
	}
	cmd.Despawn(unpackEntity(uint64(handle)))
	clearLastError()
	return 1
}

//export bappa_command_insert_raw
func bappa_command_insert_raw(ctxID C.uint64_t, compID C.uint32_t, handle C.uint64_t, data *C.uint8_t, dataLen C.uint32_t) C.int {
	if _, ok := lookupContext(ContextId(ctxID)); !ok {
		setLastError(int32(bappa.KindContextInvalid), "invalid context")
		return 0
	}
	cmd := activeCommandBuffer()
	if cmd == nil {
		setLastError(int32(bappa.KindInvalidArgument), "no host system is currently running on this thread")
		return 0
	}
	var payload []byte
	if dataLen > 0 {
		payload = C.GoBytes(unsafe.Pointer(data), C.int(dataLen))
	}
	bappa.BufferInsertRaw(cmd, bappa.ComponentId(compID), unpackEntity(uint64(handle)), payload)
	clearLastError()
	return 1
}

//export bappa_command_remove_raw
func bappa_command_remove_raw(ctxID C.uint64_t, compID C.uint32_t, handle C.uint64_t) C.int {
	if _, ok := lookupContext(ContextId(ctxID)); !ok {
		setLastError(int32(bappa.KindContextInvalid), "invalid context")
		return 0
	}
	cmd := activeCommandBuffer()
	if cmd == nil {
		setLastError(int32(bappa.KindInvalidArgument), "no host system is currently running on this thread")
		return 0
	}
	bappa.BufferRemoveRaw(cmd, bappa.ComponentId(compID), unpackEntity(uint64(handle)))
	clearLastError()
	return 1
}
