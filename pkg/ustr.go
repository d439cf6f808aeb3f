package ustrcache

// ustr.go defines the handle every interned string is represented by: a
// single pointer-sized value whose identity (not its content) is the
// canonical representation. Two Ustr values compare equal, in O(1), iff
// they were produced by interning byte-identical strings — the comparison
// never touches the referenced bytes.
//
// © 2025 arena-cache authors. MIT License.

import (
	"unsafe"

	"github.com/Voskan/ustrcache/internal/shard"
	"github.com/Voskan/ustrcache/internal/unsafehelpers"
)

// Ustr is an opaque handle to a canonical, process-lifetime string. The
// zero value is not a valid handle — it does not point at an entry; always
// obtain a Ustr from Intern or LookupExisting. On the zero value, Len,
// Hash, Bytes, String, Less and Compare read through the nil pointer and
// crash; IsZero, Equal, EqualString and EqualBytes (both false), GoString,
// CStr, Ptr and IdentityHash never dereference it.
//
// Ustr is safe to copy, hash (by pointer), compare (by pointer), and share
// across goroutines without synchronization: the memory it refers to is
// immutable and never freed for the life of the process.
type Ustr struct {
	ptr unsafe.Pointer
}

// IsZero reports whether u is the zero value (never interned anything).
func (u Ustr) IsZero() bool { return u.ptr == nil }

// Len returns the byte length of the string, excluding the trailing NUL.
func (u Ustr) Len() int { return int(shard.Len(u.ptr)) }

// Hash returns the 64-bit hash computed at intern time and stored with the
// entry — the same value Hash(s) would produce for the original string.
func (u Ustr) Hash() uint64 { return shard.Hash(u.ptr) }

// Bytes returns a []byte view of the string's content. The slice aliases
// arena memory directly: it must never be written to, and it remains valid
// for the life of the process (never garbage collected, never moved).
func (u Ustr) Bytes() []byte { return shard.Bytes(u.ptr) }

// String returns a copy-free string view of the content, safe to use
// exactly like any other Go string: it is backed by immutable, permanent
// memory, so no copy is needed to uphold Go's string-immutability
// contract.
func (u Ustr) String() string {
	b := shard.Bytes(u.ptr)
	if len(b) == 0 {
		return ""
	}
	return unsafehelpers.BytesToString(b)
}

// GoString implements fmt.GoStringer so that %#v on a Ustr prints something
// useful instead of the raw pointer value.
func (u Ustr) GoString() string {
	if u.IsZero() {
		return "ustrcache.Ustr(nil)"
	}
	return "ustrcache.Ustr(" + u.String() + ")"
}

// CStr returns a pointer to the first byte of the string's NUL-terminated
// backing storage — every entry is written with a trailing 0x00 byte
// specifically so this pointer is directly usable as a C `const char *`
// across a cgo or FFI boundary, with no copy.
func (u Ustr) CStr() *byte { return (*byte)(u.ptr) }

// Ptr exposes the raw handle value. It exists for FFI shims (cmd/ustrcache-ffi)
// that need to round-trip a Ustr through a uintptr; ordinary callers should
// never need it; use Equal, Hash, or the Ustr value itself instead.
func (u Ustr) Ptr() uintptr { return uintptr(u.ptr) }

// FromHandle reconstructs a Ustr from a raw handle value previously
// obtained via Ptr. It exists for FFI shims (cmd/ustrcache-ffi) receiving a
// handle back from C code; ordinary callers should always prefer Intern or
// LookupExisting.
func FromHandle(h uintptr) Ustr { return Ustr{ptr: unsafe.Pointer(h)} }

// Equal reports whether u and v refer to the same canonical entry. This is
// a single pointer comparison — it never inspects the underlying bytes.
func (u Ustr) Equal(v Ustr) bool { return u.ptr == v.ptr }

// EqualString reports whether u's content equals s, without requiring s to
// have been interned. Prefer Equal when comparing two Ustr values: it is
// O(1) and never touches memory.
func (u Ustr) EqualString(s string) bool {
	if u.IsZero() {
		return false
	}
	return shard.Equal(u.ptr, Hash(s), s)
}

// EqualBytes reports whether u's content equals b byte-for-byte.
func (u Ustr) EqualBytes(b []byte) bool {
	if u.IsZero() {
		return false
	}
	content := shard.Bytes(u.ptr)
	if len(content) != len(b) {
		return false
	}
	for i := range content {
		if content[i] != b[i] {
			return false
		}
	}
	return true
}

// Less defines a lexicographic (byte-wise) ordering over Ustr values,
// deliberately independent of pointer/arena layout — useful for producing
// deterministic, reproducible output (e.g. sorted dumps) despite the
// nondeterministic order strings are admitted in. It is not related to,
// and must never be confused with, pointer-identity comparisons.
func (u Ustr) Less(v Ustr) bool { return u.String() < v.String() }

// Compare is the three-way counterpart to Less, matching strings.Compare's
// contract: -1, 0, or 1.
func (u Ustr) Compare(v Ustr) int {
	a, b := u.String(), v.String()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// IdentityHash returns a hash suitable for use as a map/set key derived
// from the handle's identity rather than its content — an O(1) alternative
// to Hash() for callers who only need a fast bucket key and already know
// their Ustr values were produced by this package (so equal content implies
// equal pointer). It is not stable across process restarts.
func (u Ustr) IdentityHash() uint64 {
	return uint64(uintptr(u.ptr))
}

// IdentityHasher adapts Ustr for use as a key in hash-container types that
// require an explicit hasher (rather than relying on Go's built-in map
// key hashing, which already uses pointer identity for a struct wrapping a
// single pointer). It is a free function, not a method, so it matches the
// func(Ustr) uint64 shape generic hash-map implementations typically want.
func IdentityHasher(u Ustr) uint64 { return u.IdentityHash() }
