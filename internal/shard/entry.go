package shard

// entry.go owns the one piece of memory layout the rest of the repository
// depends on: the in-arena record written for every canonical string.
//
//	hash             len       H  e  l  l  o  \0  (padding to align)
//	|. . . . . . . .|. . . . . . . .|. . . . . . .|. . . .|
//	0               8               16        16+len  +1
//	^ header                        ^ char pointer (returned to callers)
//
// The header (hash, len) sits at negative offsets from the returned char
// pointer. This is the ABI every accessor — here, in pkg.Ustr, and in the
// cgo shim — relies on; it must never change without a version bump.

import (
	"bytes"
	"unsafe"

	"github.com/Voskan/ustrcache/internal/unsafehelpers"
)

type header struct {
	hash uint64
	len  uintptr
}

// HeaderSize is the byte distance from the start of an entry record to the
// char pointer returned to callers.
const HeaderSize = unsafe.Sizeof(header{})

// Footprint returns the total number of bytes an entry holding n content
// bytes occupies once alignment padding is accounted for: header + bytes +
// NUL, rounded up to align. This is the exact stride the iterator must use
// to advance from one entry to the next.
func Footprint(n uintptr, align uintptr) uintptr {
	return unsafehelpers.AlignUp(HeaderSize+n+1, align)
}

// Write initializes a new entry at dst (which must be Footprint(len(s),
// align) bytes long) and returns the char pointer — the address callers
// receive and the address every other accessor in this file expects.
func Write(dst unsafe.Pointer, hash uint64, s string) unsafe.Pointer {
	hdr := (*header)(dst)
	hdr.hash = hash
	hdr.len = uintptr(len(s))

	charPtr := unsafe.Add(dst, HeaderSize)
	if len(s) > 0 {
		copy(unsafehelpers.ByteSliceFrom(charPtr, uintptr(len(s))), s)
	}
	*(*byte)(unsafe.Add(charPtr, len(s))) = 0
	return charPtr
}

// headerOf recovers the header address from a char pointer.
func headerOf(charPtr unsafe.Pointer) *header {
	return (*header)(unsafe.Add(charPtr, -int(HeaderSize)))
}

// Hash reads the precomputed 64-bit hash stored ahead of charPtr.
func Hash(charPtr unsafe.Pointer) uint64 {
	return headerOf(charPtr).hash
}

// Len reads the byte length (excluding the trailing NUL) stored ahead of
// charPtr.
func Len(charPtr unsafe.Pointer) uintptr {
	return headerOf(charPtr).len
}

// Bytes returns a []byte view of the entry's content. The slice aliases
// arena memory directly — it is valid for the life of the process and must
// never be written to.
func Bytes(charPtr unsafe.Pointer) []byte {
	n := Len(charPtr)
	if n == 0 {
		return nil
	}
	return unsafehelpers.ByteSliceFrom(charPtr, n)
}

// Equal reports whether the entry at charPtr holds exactly hash/s — the
// three-part check (hash, length, bytes) required before treating
// a probed slot as a match.
func Equal(charPtr unsafe.Pointer, hash uint64, s string) bool {
	hdr := headerOf(charPtr)
	if hdr.hash != hash || hdr.len != uintptr(len(s)) {
		return false
	}
	if len(s) == 0 {
		return true
	}
	return bytes.Equal(unsafehelpers.ByteSliceFrom(charPtr, hdr.len), unsafehelpers.StringToBytes(s))
}
