package ustrcache

import (
	"testing"
	"unsafe"
)

func TestUstrEqualityIsPointerBased(t *testing.T) {
	ClearForTest()
	a := Intern("same-content")
	b := Intern("same-content")
	if !a.Equal(b) {
		t.Fatalf("interning the same content twice must yield equal handles")
	}
	c := Intern("different-content")
	if a.Equal(c) {
		t.Fatalf("interning different content must yield unequal handles")
	}
}

func TestUstrStringRoundTrips(t *testing.T) {
	ClearForTest()
	want := "héllo, wörld"
	u := Intern(want)
	if u.String() != want {
		t.Fatalf("String() = %q, want %q", u.String(), want)
	}
	if u.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", u.Len(), len(want))
	}
}

func TestUstrEmptyString(t *testing.T) {
	ClearForTest()
	u := Intern("")
	if u.Len() != 0 {
		t.Fatalf("Len() of empty string = %d, want 0", u.Len())
	}
	if u.String() != "" {
		t.Fatalf("String() of empty string = %q, want empty", u.String())
	}
}

func TestUstrCStrIsNulTerminated(t *testing.T) {
	ClearForTest()
	u := Intern("abc")
	p := u.CStr()
	view := unsafe.Slice(p, u.Len()+1)
	if string(view[:u.Len()]) != "abc" {
		t.Fatalf("CStr content = %q, want %q", view[:u.Len()], "abc")
	}
	if view[u.Len()] != 0 {
		t.Fatalf("expected trailing NUL byte after content, got %d", view[u.Len()])
	}
}

func TestUstrEqualStringAndEqualBytes(t *testing.T) {
	ClearForTest()
	u := Intern("xyz")
	if !u.EqualString("xyz") {
		t.Fatalf("EqualString should match identical content")
	}
	if u.EqualString("xy") {
		t.Fatalf("EqualString should not match a prefix")
	}
	if !u.EqualBytes([]byte("xyz")) {
		t.Fatalf("EqualBytes should match identical content")
	}
}

func TestUstrLessIsLexicographic(t *testing.T) {
	ClearForTest()
	a := Intern("apple")
	b := Intern("banana")
	if !a.Less(b) {
		t.Fatalf("expected %q < %q lexicographically", "apple", "banana")
	}
	if a.Compare(b) != -1 {
		t.Fatalf("Compare(apple, banana) = %d, want -1", a.Compare(b))
	}
	if b.Compare(a) != 1 {
		t.Fatalf("Compare(banana, apple) = %d, want 1", b.Compare(a))
	}
	if a.Compare(a) != 0 {
		t.Fatalf("Compare(apple, apple) = %d, want 0", a.Compare(a))
	}
}

func TestUstrIdentityHashIsStableForSameHandle(t *testing.T) {
	ClearForTest()
	u := Intern("stable")
	if u.IdentityHash() != IdentityHasher(u) {
		t.Fatalf("IdentityHasher must agree with the method")
	}
	v := Intern("stable")
	if u.IdentityHash() != v.IdentityHash() {
		t.Fatalf("identity hash must match for canonicalized duplicates")
	}
}

func TestUstrZeroValue(t *testing.T) {
	var z Ustr
	if !z.IsZero() {
		t.Fatalf("zero value Ustr must report IsZero")
	}
	u := Intern("not zero")
	if u.IsZero() {
		t.Fatalf("interned value must not report IsZero")
	}
}
