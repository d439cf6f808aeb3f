// Package ustrcache implements a process-wide, sharded string interner: a
// concurrent cache that canonicalizes byte-identical strings into a single
// immutable, arena-backed copy and hands callers back an opaque, pointer-
// sized handle (Ustr) with O(1) identity comparison.
//
// Once admitted, a string lives for the remainder of the process — there is
// no eviction, reference counting, or compaction. This trades unbounded
// memory growth for comparisons and hashing that never touch content bytes,
// which is the right trade for long-running processes interning a bounded
// vocabulary (symbol tables, tokenizers, protocol field names, log keys).
//
// © 2025 arena-cache authors. MIT License.
package ustrcache

import (
	"hash/maphash"
	"sync"
	"unsafe"

	"github.com/Voskan/ustrcache/internal/bins"
	"go.uber.org/zap"
)

var (
	singletonOnce sync.Once
	array         *bins.Array
	metrics       metricsSink
	logger        *zap.Logger

	hashSeed = maphash.MakeSeed()
)

// build lazily constructs the process-wide shard array from whatever
// configuration is in effect at the time of the first call, and freezes
// Configure against further changes. It is safe for concurrent first use:
// sync.Once guarantees exactly one goroutine runs the initializer and every
// other caller blocks until it completes, and bins.New itself only builds
// the (cheap) bin slice — individual shards are still constructed lazily,
// under their own bin's lock, on first touch — so this path never
// recurses back into Intern/LookupExisting.
func build() {
	singletonOnce.Do(func() {
		configFrozen.Store(true)
		c := globalConfig

		array = bins.New(bins.Config{
			NumBins:           c.numBins,
			InitialSlots:      c.initialSlots,
			InitialArenaBytes: c.initialArenaBytes,
			Align:             c.align,
		})
		metrics = newMetricsSink(c.registry)
		logger = c.logger
		logger.Debug("ustrcache: shard array initialized",
			zap.Int("shards", c.numBins),
			zap.Int("initial_slots", c.initialSlots),
			zap.Uint64("initial_arena_bytes", uint64(c.initialArenaBytes)),
		)
	})
}

// Hash returns the 64-bit hash ustrcache would compute for s. It is exposed
// so callers can pre-hash a batch of strings, or compare a hash against
// Ustr.Hash without re-interning.
func Hash(s string) uint64 {
	return maphash.String(hashSeed, s)
}

// Intern returns the canonical Ustr for s, admitting s as a new permanent
// entry the first time it is seen. Subsequent calls with an equal string —
// from any goroutine — return a Ustr equal (by pointer) to the first.
//
// s is copied into arena storage; the caller's copy is never retained or
// mutated.
func Intern(s string) Ustr {
	build()
	hash := Hash(s)

	if _, ok := metrics.(noopMetrics); ok {
		return Ustr{ptr: array.InsertOrGet(s, hash)}
	}
	ptr, idx, stats := array.InsertOrGetWithStats(s, hash)
	observe(idx, stats)
	return Ustr{ptr: ptr}
}

// LookupExisting returns the Ustr for s without admitting it: ok is false
// if s has never been interned.
func LookupExisting(s string) (Ustr, bool) {
	build()
	ptr, ok := array.Lookup(s, Hash(s))
	if !ok {
		return Ustr{}, false
	}
	return Ustr{ptr: ptr}, true
}

// NumEntries returns the total number of distinct strings interned so far,
// across every shard.
func NumEntries() int {
	build()
	_, _, entries := array.Stats()
	return entries
}

// TotalAllocated returns the total number of arena bytes handed out across
// every shard's arena chain: string content plus entry headers, NUL bytes
// and alignment padding.
func TotalAllocated() uintptr {
	build()
	allocated, _, _ := array.Stats()
	return allocated
}

// TotalCapacity returns the total capacity reserved across every arena —
// current and retired — this process has ever allocated.
func TotalCapacity() uintptr {
	build()
	_, capacity, _ := array.Stats()
	return capacity
}

// TableGrows returns the lifetime count of open-addressed table doublings
// summed across every shard.
func TableGrows() int64 {
	build()
	var total int64
	for _, st := range array.PerShardStats() {
		total += st.Grows
	}
	return total
}

// ArenaRetirements returns the lifetime count of arena retirements summed
// across every shard.
func ArenaRetirements() int64 {
	build()
	var total int64
	for _, st := range array.PerShardStats() {
		total += st.Retires
	}
	return total
}

// IterateAll invokes yield once for every string interned so far, stopping
// early if yield returns false. The walk is assembled shard by shard, each
// under its own lock: it is a point-in-time view, not a single atomic
// snapshot of the whole cache, so a string admitted on one shard during the
// walk may or may not be observed depending on whether its shard was
// already visited.
func IterateAll(yield func(s string) bool) {
	build()
	array.All(func(ptr unsafe.Pointer) bool {
		return yield(Ustr{ptr: ptr}.String())
	})
}

// ClearForTest releases every shard's arenas and resets every table to its
// initial size. It exists solely for test isolation between otherwise
// independent test cases sharing this package's process-wide singleton.
//
// It is profoundly unsafe: every Ustr handed out before this call becomes a
// dangling pointer the instant it returns. Never call this outside tests,
// and never call it while any other goroutine might still dereference a
// previously obtained Ustr.
func ClearForTest() {
	build()
	array.ClearForTest()
}

// observe updates the metrics gauges for exactly the shard idx/stats
// describe — the one InsertOrGetWithStats just touched — never the other
// shards in the array. Intern only calls this once metrics are configured;
// the default, metrics-free hot path never runs it.
func observe(idx int, st bins.ShardStats) {
	metrics.setEntries(idx, int64(st.Entries))
	metrics.setBytesAllocated(idx, int64(st.Allocated))
	metrics.setBytesCapacity(idx, int64(st.Capacity))
	metrics.setGrows(idx, st.Grows)
	metrics.setRetires(idx, st.Retires)
}
