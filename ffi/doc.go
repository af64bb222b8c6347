// Package ffi exposes the engine core across a stable C ABI (spec.md
// §6.1): opaque ContextIds, packed 64-bit entity handles, (pointer,
// length) byte payloads, and a uniform code/success error convention.
// Every exported function is safe to call from C; none may be called
// from other Go code in this module, since cgo export functions may not
// be referenced from Go (they exist solely for the generated C header).
package ffi
