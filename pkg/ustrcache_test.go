package ustrcache

import (
	"fmt"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestInternCanonicalizesRepeatedCalls(t *testing.T) {
	ClearForTest()
	a := Intern("repeat-me")
	b := Intern("repeat-me")
	if !a.Equal(b) {
		t.Fatalf("repeated Intern calls must canonicalize to the same handle")
	}
	if NumEntries() != 1 {
		t.Fatalf("NumEntries() = %d, want 1", NumEntries())
	}
}

func TestLookupExistingBeforeAndAfterIntern(t *testing.T) {
	ClearForTest()
	if _, ok := LookupExisting("ghost"); ok {
		t.Fatalf("LookupExisting must miss before any Intern")
	}
	want := Intern("ghost")
	got, ok := LookupExisting("ghost")
	if !ok {
		t.Fatalf("LookupExisting must hit after Intern")
	}
	if !got.Equal(want) {
		t.Fatalf("LookupExisting returned a different handle than Intern")
	}
}

func TestInternUTF8Content(t *testing.T) {
	ClearForTest()
	greek := "ελληνικά"
	u := Intern(greek)
	if u.String() != greek {
		t.Fatalf("String() = %q, want %q", u.String(), greek)
	}
	if u.Len() != len(greek) {
		t.Fatalf("Len() = %d, want %d (byte length, not rune count)", u.Len(), len(greek))
	}
}

func TestInternLargeVocabularyFromSmallPool(t *testing.T) {
	ClearForTest()
	pool := make([]string, 1315)
	for i := range pool {
		pool[i] = fmt.Sprintf("token-%d", i)
	}

	seen := make(map[string]Ustr, len(pool))
	for i := 0; i < 100_000; i++ {
		s := pool[i%len(pool)]
		u := Intern(s)
		if prev, ok := seen[s]; ok {
			if !prev.Equal(u) {
				t.Fatalf("token %q produced two different handles", s)
			}
		} else {
			seen[s] = u
		}
	}
	if NumEntries() != len(pool) {
		t.Fatalf("NumEntries() = %d, want %d (the pool size, not the call count)", NumEntries(), len(pool))
	}
}

func TestConcurrentInternIsLinearizablePerString(t *testing.T) {
	ClearForTest()

	const goroutines = 8
	const perGoroutine = 10_000
	const vocab = 64

	results := make([][]Ustr, goroutines)
	var mu sync.Mutex

	var g errgroup.Group
	for gi := 0; gi < goroutines; gi++ {
		gi := gi
		g.Go(func() error {
			local := make([]Ustr, perGoroutine)
			for i := 0; i < perGoroutine; i++ {
				s := fmt.Sprintf("concurrent-token-%d", i%vocab)
				local[i] = Intern(s)
			}
			mu.Lock()
			results[gi] = local
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error from errgroup: %v", err)
	}

	canonical := make(map[int]Ustr, vocab)
	for _, local := range results {
		for i, u := range local {
			idx := i % vocab
			if prev, ok := canonical[idx]; ok {
				if !prev.Equal(u) {
					t.Fatalf("token %d interned to two different handles across goroutines", idx)
				}
			} else {
				canonical[idx] = u
			}
		}
	}
	if NumEntries() != vocab {
		t.Fatalf("NumEntries() = %d, want %d", NumEntries(), vocab)
	}
}

func TestIterateAllVisitsEveryInternedString(t *testing.T) {
	ClearForTest()
	want := map[string]bool{"alpha": false, "beta": false, "gamma": false}
	for s := range want {
		Intern(s)
	}
	IterateAll(func(s string) bool {
		if _, ok := want[s]; ok {
			want[s] = true
		}
		return true
	})
	for s, seen := range want {
		if !seen {
			t.Fatalf("IterateAll never visited %q", s)
		}
	}
}

func TestHashIsConsistentWithUstrHash(t *testing.T) {
	ClearForTest()
	u := Intern("hash-me")
	if u.Hash() != Hash("hash-me") {
		t.Fatalf("Ustr.Hash() must match the package-level Hash of the same content")
	}
}

func TestTotalAllocatedGrowsMonotonically(t *testing.T) {
	ClearForTest()
	before := TotalAllocated()
	Intern("grows-the-arena")
	after := TotalAllocated()
	if after <= before {
		t.Fatalf("TotalAllocated did not grow after admitting a new string: before=%d after=%d", before, after)
	}
}
