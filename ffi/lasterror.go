package ffi

/*
#include <pthread.h>
#include <stdlib.h>
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/TheBitDrifter/bappa"
)

// lastError is the per-calling-OS-thread error slot spec.md §7.2
// requires ("Inside FFI entry points: all errors are converted to
// codes; no exceptions cross the boundary"). Go has no public API for
// the current OS thread id, so the slot is keyed on pthread_self() via
// cgo, the same identity C hosts already use to reason about which
// thread called in.
type lastError struct {
	code    int32
	message string
}

var (
	errMu sync.Mutex
	errs  = make(map[uint64]lastError)
)

func threadID() uint64 {
	return uint64(C.pthread_self())
}

func setLastError(code int32, message string) {
	errMu.Lock()
	errs[threadID()] = lastError{code: code, message: message}
	errMu.Unlock()
}

func clearLastError() {
	errMu.Lock()
	delete(errs, threadID())
	errMu.Unlock()
}

func getLastError() (int32, string) {
	errMu.Lock()
	defer errMu.Unlock()
	e, ok := errs[threadID()]
	if !ok {
		return 0, ""
	}
	return e.code, e.message
}

// bappaErrCode extracts the stable numeric code from an engine error,
// falling back to the internal-error range for an error type the core
// never actually returns (a defensive default, not an expected path).
func bappaErrCode(err error) int32 {
	if ee, ok := err.(*bappa.EngineError); ok {
		return ee.Code()
	}
	return int32(bappa.KindInternalError)
}

//export bappa_last_error_code
func bappa_last_error_code() C.int32_t {
	code, _ := getLastError()
	return C.int32_t(code)
}

//export bappa_last_error_message
func bappa_last_error_message(outLen *C.uint32_t) *C.char {
	_, msg := getLastError()
	if outLen != nil {
		*outLen = C.uint32_t(len(msg))
	}
	return C.CString(msg)
}

//export bappa_last_error_clear
func bappa_last_error_clear() {
	clearLastError()
}

//export bappa_free_string
func bappa_free_string(s *C.char) {
	C.free(unsafe.Pointer(s))
}
