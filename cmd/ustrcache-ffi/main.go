// Command ustrcache-ffi builds a C shared library (`-buildmode=c-shared`)
// exposing ustrcache's interner to non-Go callers. A Go module cannot
// export C symbols on its own — that requires a main package compiled with
// cgo's `import "C"` and `//export` directives — so this is a thin shim,
// not a reimplementation: every exported function delegates straight into
// package ustrcache.
//
// Build:
//
//	go build -buildmode=c-shared -o libustrcache.so ./cmd/ustrcache-ffi
//
// This produces libustrcache.so and a generated libustrcache.h with the
// following C-callable signatures:
//
//	uintptr_t ustr_intern(const char *s);
//	size_t    ustr_len(uintptr_t handle);
//	uint64_t  ustr_hash(uintptr_t handle);
//	const char *ustr_cstr(uintptr_t handle);
//
// The returned uintptr_t handle is the same process-lifetime pointer
// ustrcache.Ustr wraps internally; it is valid for as long as this process
// runs and needs no explicit release — nothing is ever freed.
//
// © 2025 arena-cache authors. MIT License.
package main

/*
#include <stdint.h>
*/
import "C"

import (
	"unsafe"

	ustrcache "github.com/Voskan/ustrcache/pkg"
)

//export ustr_intern
func ustr_intern(s *C.char) C.uintptr_t {
	u := ustrcache.Intern(C.GoString(s))
	return C.uintptr_t(u.Ptr())
}

//export ustr_len
func ustr_len(handle C.uintptr_t) C.size_t {
	u := ustrcache.FromHandle(uintptr(handle))
	return C.size_t(u.Len())
}

//export ustr_hash
func ustr_hash(handle C.uintptr_t) C.uint64_t {
	u := ustrcache.FromHandle(uintptr(handle))
	return C.uint64_t(u.Hash())
}

//export ustr_cstr
func ustr_cstr(handle C.uintptr_t) *C.char {
	u := ustrcache.FromHandle(uintptr(handle))
	return (*C.char)(unsafe.Pointer(u.CStr()))
}

func main() {}
