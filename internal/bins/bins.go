// Package bins implements the shard array: a fixed set of independently
// mutex-protected internal/shard.Shard instances, plus the routing function
// that maps a 64-bit hash to the shard that owns it.
//
// Routing uses the top BinShift bits of the hash; in-shard probing (see
// internal/shard) uses the low bits. Using disjoint bit ranges keeps shard
// selection uncorrelated with the hash quality seen inside any one table.
//
// © 2025 arena-cache authors. MIT License.
package bins

import (
	"sync"
	"unsafe"

	"github.com/Voskan/ustrcache/internal/shard"
)

// bin wraps one Shard behind its own mutex. The padding keeps two
// neighbouring bins from sharing a cache line under contention; it is an
// approximation (Go gives no hard alignment guarantee for slice elements)
// sized generously past a single 64-byte cache line.
type bin struct {
	mu   sync.Mutex
	s    *shard.Shard
	_pad [88]byte
}

// Array is the process-wide set of shards. It is built once, lazily, from
// a Config snapshot; individual bins construct their Shard lazily too, on
// first touch, under their own lock — so Array construction itself never
// re-enters the intern path.
type Array struct {
	bins     []*bin
	topShift uint
	numBins  uint64

	initialSlots      int
	initialArenaBytes uintptr
	align             uintptr
}

// Config bundles the knobs needed to lazily build shards.
type Config struct {
	NumBins           int
	InitialSlots      int
	InitialArenaBytes uintptr
	Align             uintptr
}

// New constructs an Array with NumBins empty bins (each initialized to a
// nil *shard.Shard — built on first use). NumBins must be a power of two.
func New(cfg Config) *Array {
	a := &Array{
		bins:              make([]*bin, cfg.NumBins),
		numBins:           uint64(cfg.NumBins),
		topShift:          topShiftFor(cfg.NumBins),
		initialSlots:      cfg.InitialSlots,
		initialArenaBytes: cfg.InitialArenaBytes,
		align:             cfg.Align,
	}
	for i := range a.bins {
		a.bins[i] = &bin{}
	}
	return a
}

func topShiftFor(numBins int) uint {
	shift := uint(0)
	for 1<<shift < numBins {
		shift++
	}
	return 64 - shift
}

// indexFor routes a hash to its owning bin using the top bits of the hash.
func (a *Array) indexFor(hash uint64) uint64 {
	return (hash >> a.topShift) & (a.numBins - 1)
}

// withShard locks the bin owning hash, lazily constructing its Shard if
// this is the first touch, and runs fn under the lock.
func (a *Array) withShard(hash uint64, fn func(s *shard.Shard)) {
	b := a.bins[a.indexFor(hash)]
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.s == nil {
		b.s = shard.New(a.initialSlots, a.initialArenaBytes, a.align)
	}
	fn(b.s)
}

// Lookup returns the char pointer for str/hash if it has already been
// interned.
func (a *Array) Lookup(str string, hash uint64) (ptr unsafe.Pointer, ok bool) {
	a.withShard(hash, func(s *shard.Shard) {
		ptr, ok = s.Lookup(str, hash)
	})
	return
}

// InsertOrGet returns the canonical char pointer for str/hash, admitting it
// if this is the first time this exact string has been seen.
func (a *Array) InsertOrGet(str string, hash uint64) (ptr unsafe.Pointer) {
	a.withShard(hash, func(s *shard.Shard) {
		ptr = s.InsertOrGet(str, hash)
	})
	return
}

// InsertOrGetWithStats behaves like InsertOrGet but additionally reports the
// index of the shard it touched and a snapshot of that shard's counters,
// taken inside the same locked critical section InsertOrGet already pays
// for. This lets a caller wiring per-shard metrics update only the one
// gauge row that changed, instead of re-locking every shard in the array on
// every call (see PerShardStats, which does lock everything and is meant
// for occasional full-array snapshots, not the hot path).
func (a *Array) InsertOrGetWithStats(str string, hash uint64) (ptr unsafe.Pointer, idx int, stats ShardStats) {
	idx = int(a.indexFor(hash))
	a.withShard(hash, func(s *shard.Shard) {
		ptr = s.InsertOrGet(str, hash)
		stats = ShardStats{
			Allocated: s.TotalAllocated(),
			Capacity:  s.TotalCapacity(),
			Entries:   s.NumEntries(),
			Grows:     s.Grows(),
			Retires:   s.Retires(),
		}
	})
	return
}

// Stats sums the per-shard snapshots taken under each shard's own lock.
func (a *Array) Stats() (allocated, capacity uintptr, entries int) {
	for _, b := range a.bins {
		b.mu.Lock()
		if b.s != nil {
			allocated += b.s.TotalAllocated()
			capacity += b.s.TotalCapacity()
			entries += b.s.NumEntries()
		}
		b.mu.Unlock()
	}
	return
}

// ShardStats is a point-in-time snapshot of one shard's counters, indexed by
// shard position for metrics labelling.
type ShardStats struct {
	Allocated uintptr
	Capacity  uintptr
	Entries   int
	Grows     int64
	Retires   int64
}

// PerShardStats returns one ShardStats per bin, in shard-index order.
// Untouched (nil-shard) bins report a zeroed entry.
func (a *Array) PerShardStats() []ShardStats {
	stats := make([]ShardStats, len(a.bins))
	for i, b := range a.bins {
		b.mu.Lock()
		if b.s != nil {
			stats[i] = ShardStats{
				Allocated: b.s.TotalAllocated(),
				Capacity:  b.s.TotalCapacity(),
				Entries:   b.s.NumEntries(),
				Grows:     b.s.Grows(),
				Retires:   b.s.Retires(),
			}
		}
		b.mu.Unlock()
	}
	return stats
}

// All walks every shard under its own lock, yielding every admitted entry's
// char pointer. It is a point-in-time view, assembled shard by shard —
// strings interned on one shard after that shard's snapshot was taken but
// before another shard is visited may or may not appear.
func (a *Array) All(yield func(charPtr unsafe.Pointer) bool) {
	for _, b := range a.bins {
		b.mu.Lock()
		stop := false
		if b.s != nil {
			b.s.All(func(p unsafe.Pointer) bool {
				if !yield(p) {
					stop = true
					return false
				}
				return true
			})
		}
		b.mu.Unlock()
		if stop {
			return
		}
	}
}

// ClearForTest resets every shard. Unsafe by nature: every outstanding
// handle becomes invalid the moment this returns.
func (a *Array) ClearForTest() {
	for _, b := range a.bins {
		b.mu.Lock()
		if b.s != nil {
			b.s.ClearForTest(a.initialSlots, a.initialArenaBytes)
		}
		b.mu.Unlock()
	}
}
