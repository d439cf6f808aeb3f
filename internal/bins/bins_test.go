package bins

import (
	"testing"
	"unsafe"
)

func hashOf(s string) uint64 {
	var h uint64 = 1469598103934665603
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

func newTestArray() *Array {
	return New(Config{
		NumBins:           8,
		InitialSlots:      4,
		InitialArenaBytes: 4096,
		Align:             8,
	})
}

func TestRoutingIsConsistent(t *testing.T) {
	a := newTestArray()
	h := hashOf("stable-routing-key")
	i1 := a.indexFor(h)
	i2 := a.indexFor(h)
	if i1 != i2 {
		t.Fatalf("routing must be a pure function of the hash: got %d then %d", i1, i2)
	}
}

func TestInsertOrGetCanonicalizesAcrossBins(t *testing.T) {
	a := newTestArray()
	strs := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta"}
	first := make(map[string]uintptr)
	for _, s := range strs {
		p := a.InsertOrGet(s, hashOf(s))
		first[s] = uintptr(p)
	}
	for _, s := range strs {
		p := a.InsertOrGet(s, hashOf(s))
		if uintptr(p) != first[s] {
			t.Fatalf("second InsertOrGet(%q) returned a different pointer", s)
		}
	}
}

func TestStatsAndPerShardStatsAgree(t *testing.T) {
	a := newTestArray()
	strs := []string{"one", "two", "three"}
	for _, s := range strs {
		a.InsertOrGet(s, hashOf(s))
	}
	allocated, capacity, entries := a.Stats()
	if entries != len(strs) {
		t.Fatalf("Stats entries = %d, want %d", entries, len(strs))
	}

	var sumEntries int
	var sumAllocated, sumCapacity uintptr
	for _, st := range a.PerShardStats() {
		sumEntries += st.Entries
		sumAllocated += st.Allocated
		sumCapacity += st.Capacity
	}
	if sumEntries != entries || sumAllocated != allocated || sumCapacity != capacity {
		t.Fatalf("PerShardStats disagrees with Stats: (%d,%d,%d) vs (%d,%d,%d)",
			sumEntries, sumAllocated, sumCapacity, entries, allocated, capacity)
	}
}

func TestAllVisitsEveryEntryExactlyOnce(t *testing.T) {
	a := newTestArray()
	strs := []string{"a", "bb", "ccc", "dddd", "eeeee", "f", "gg", "hhh"}
	for _, s := range strs {
		a.InsertOrGet(s, hashOf(s))
	}

	seen := make(map[unsafe.Pointer]bool)
	a.All(func(p unsafe.Pointer) bool {
		if seen[p] {
			t.Fatalf("entry visited twice")
		}
		seen[p] = true
		return true
	})
	if len(seen) != len(strs) {
		t.Fatalf("visited %d entries, want %d", len(seen), len(strs))
	}
}

func TestAllStopsEarly(t *testing.T) {
	a := newTestArray()
	for _, s := range []string{"one", "two", "three", "four", "five"} {
		a.InsertOrGet(s, hashOf(s))
	}
	count := 0
	a.All(func(p unsafe.Pointer) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Fatalf("expected early stop after 2 entries, visited %d", count)
	}
}

func TestClearForTestResetsAllShards(t *testing.T) {
	a := newTestArray()
	for _, s := range []string{"one", "two", "three"} {
		a.InsertOrGet(s, hashOf(s))
	}
	a.ClearForTest()
	_, _, entries := a.Stats()
	if entries != 0 {
		t.Fatalf("expected 0 entries after ClearForTest, got %d", entries)
	}
}
