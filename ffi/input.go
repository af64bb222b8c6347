package ffi

/*
#include <stdint.h>
*/
import "C"

import (
	"github.com/TheBitDrifter/bappa"
)

// bappa_input_push_key is the thin pass-through spec.md §6.1 describes:
// the host's event pump is the only thing that ever reads a platform
// event queue, and it calls this once per key transition to push state
// into the engine's InputState resource.
//
//export bappa_input_push_key
func bappa_input_push_key(ctxID C.uint64_t, keyCode C.uint32_t, pressed C.int) C.int {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok {
		setLastError(int32(bappa.KindContextInvalid), "invalid context")
		return 0
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	state := bappa.GetResource[bappa.InputState](ctx.world)
	if state == nil {
		fresh := bappa.NewInputState()
		bappa.InsertResource(ctx.world, fresh)
		state = bappa.GetResource[bappa.InputState](ctx.world)
	}
	state.SetKey(uint32(keyCode), pressed != 0)
	return 1
}

//export bappa_input_pressed
func bappa_input_pressed(ctxID C.uint64_t, keyCode C.uint32_t) C.int {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok {
		return 0
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	state := bappa.GetResource[bappa.InputState](ctx.world)
	if state == nil {
		return 0
	}
	if state.Pressed(uint32(keyCode)) {
		return 1
	}
	return 0
}

//export bappa_input_just_pressed
func bappa_input_just_pressed(ctxID C.uint64_t, keyCode C.uint32_t) C.int {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok {
		return 0
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	state := bappa.GetResource[bappa.InputState](ctx.world)
	if state == nil {
		return 0
	}
	if state.JustPressed(uint32(keyCode)) {
		return 1
	}
	return 0
}

//export bappa_input_clear_just_pressed
func bappa_input_clear_just_pressed(ctxID C.uint64_t) {
	ctx, ok := lookupContext(ContextId(ctxID))
	if !ok {
		return
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	state := bappa.GetResource[bappa.InputState](ctx.world)
	if state == nil {
		return
	}
	state.ClearJustPressed()
}
