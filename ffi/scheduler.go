package ffi

/*
#include <stdint.h>

// bappa_system_fn is the shape of a host-registered system: it receives
// the owning context id and the opaque user_data pointer the host
// supplied at registration time.
typedef void (*bappa_system_fn)(uint64_t ctx_id, void *user_data);

static inline void bappa_invoke_system(bappa_system_fn fn, uint64_t ctx_id, void *user_data) {
	fn(ctx_id, user_data);
}
*/
import "C"

import (
	"unsafe"

	"github.com/TheBitDrifter/bappa"
)

// hostSystem closes over everything needed to call back into a
// host-supplied C function pointer from a Go RunFunc: Go cannot invoke a
// raw C function pointer value without a cgo-declared C function to
// dispatch through, hence the bappa_invoke_system trampoline above.
type hostSystem struct {
	ctxID    C.uint64_t
	fn       C.bappa_system_fn
	userData unsafe.Pointer
}

func (h *hostSystem) run(w *bappa.World, cmd *bappa.CommandBuffer) error {
	tid := threadID()
	setActiveCommandBuffer(tid, cmd)
	defer clearActiveCommandBuffer(tid)
	C.bappa_invoke_system(h.fn, h.ctxID, h.userData)
	return nil
}

func buildAccessPattern(reads, writes *C.uint32_t, readsLen, writesLen C.uint32_t, mainThreadOnly C.int) *bappa.AccessPattern {
	a := bappa.NewAccessPattern()
	if readsLen > 0 && reads != nil {
		for _, id := range unsafe.Slice((*uint32)(unsafe.Pointer(reads)), int(readsLen)) {
			a.Reads(bappa.ComponentId(id))
		}
	}
	if writesLen > 0 && writes != nil {
		for _, id := range unsafe.Slice((*uint32)(unsafe.Pointer(writes)), int(writesLen)) {
			a.Writes(bappa.ComponentId(id))
		}
	}
	if mainThreadOnly != 0 {
		a.MainThreadOnly = true
	}
	return a
}

//export bappa_scheduler_register_stage
func bappa_scheduler_register_stage(ctxID C.uint64_t, name *C.char) C.int {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok || name == nil {
		return 0
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.scheduler.AddStage(bappa.StageLabel(C.GoString(name)))
	return 1
}

//export bappa_scheduler_register_system
func bappa_scheduler_register_system(
	ctxID C.uint64_t,
	stageName *C.char,
	sysName *C.char,
	reads *C.uint32_t, readsLen C.uint32_t,
	writes *C.uint32_t, writesLen C.uint32_t,
	mainThreadOnly C.int,
	fn C.bappa_system_fn,
	userData unsafe.Pointer,
) C.uint64_t {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok || stageName == nil || fn == nil {
		setLastError(int32(bappa.KindContextInvalid), "invalid context")
		return 0
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	stage := ctx.scheduler.Stage(bappa.StageLabel(C.GoString(stageName)))
	if stage == nil {
		setLastError(int32(bappa.KindInvalidArgument), "unknown stage")
		return 0
	}

	name := ""
	if sysName != nil {
		name = C.GoString(sysName)
	}
	access := buildAccessPattern(reads, writes, readsLen, writesLen, mainThreadOnly)
	host := &hostSystem{ctxID: ctxID, fn: fn, userData: userData}
	sys := bappa.NewSystem(name, access, host.run)
	stage.AddSystem(sys)
	return C.uint64_t(sys.ID())
}

//export bappa_scheduler_add_before
func bappa_scheduler_add_before(ctxID C.uint64_t, stageName *C.char, a, b C.uint64_t) C.int {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok || stageName == nil {
		return 0
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	stage := ctx.scheduler.Stage(bappa.StageLabel(C.GoString(stageName)))
	if stage == nil {
		return 0
	}
	sysA, okA := stage.SystemByID(bappa.SystemId(a))
	sysB, okB := stage.SystemByID(bappa.SystemId(b))
	if !okA || !okB {
		return 0
	}
	stage.Before(sysA, sysB)
	return 1
}

//export bappa_scheduler_add_after
func bappa_scheduler_add_after(ctxID C.uint64_t, stageName *C.char, a, b C.uint64_t) C.int {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok || stageName == nil {
		return 0
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	stage := ctx.scheduler.Stage(bappa.StageLabel(C.GoString(stageName)))
	if stage == nil {
		return 0
	}
	sysA, okA := stage.SystemByID(bappa.SystemId(a))
	sysB, okB := stage.SystemByID(bappa.SystemId(b))
	if !okA || !okB {
		return 0
	}
	stage.After(sysA, sysB)
	return 1
}

//export bappa_scheduler_run_frame
func bappa_scheduler_run_frame(ctxID C.uint64_t) C.int {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok {
		setLastError(int32(bappa.KindContextInvalid), "invalid context")
		return 0
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if err := ctx.scheduler.RunFrame(); err != nil {
		setLastError(bappaErrCode(err), err.Error())
		return 0
	}
	clearLastError()
	return 1
}
