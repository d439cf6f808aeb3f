// Package shard implements the per-partition string cache: an
// open-addressed table of pointers into a chain of bump arenas. This is an
// unprotected data structure — callers (internal/bins) are responsible for
// serialising access with a mutex; this package assumes single-goroutine
// use of any one *Shard at a time.
//
// Arenas are retired (kept, never freed) the moment the current one would
// overflow, and a new one — sized to fit the triggering request — takes
// over; nothing is ever rotated out or expired.
//
// © 2025 arena-cache authors. MIT License.
package shard

import (
	"unsafe"

	"github.com/Voskan/ustrcache/internal/arena"
)

// Shard owns one slice of the key space: a triangular-probed open-addressed
// table of entry pointers, plus the arena (and its retired predecessors)
// those pointers live in.
type Shard struct {
	slots    []unsafe.Pointer // power-of-two table; nil slot == empty
	mask     uint64
	occupied int

	current *arena.Arena
	retired []*arena.Arena

	align          uintptr
	totalAllocated uintptr // sum of Allocated() across retired arenas only; current is added on read

	grows   int64 // lifetime count of table doublings
	retires int64 // lifetime count of arena retirements
}

// New constructs an empty shard with the given initial table size (rounded
// up to a power of two) and initial arena capacity.
func New(initialSlots int, initialArenaBytes uintptr, align uintptr) *Shard {
	n := nextPowerOfTwo(initialSlots)
	return &Shard{
		slots:   make([]unsafe.Pointer, n),
		mask:    uint64(n - 1),
		current: arena.New(initialArenaBytes, align),
		align:   align,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// triangular probe offsets: T_0=0, T_i = T_{i-1}+i, i.e. 0,1,3,6,10,...
// visiting every slot of a power-of-two table exactly once.
func probe(slots []unsafe.Pointer, mask uint64, hash uint64, found func(unsafe.Pointer) bool) (pos uint64, stoppedAt unsafe.Pointer) {
	pos = hash & mask
	var step uint64
	for {
		slot := slots[pos]
		if slot == nil {
			return pos, nil
		}
		if found(slot) {
			return pos, slot
		}
		step++
		pos = (pos + step) & mask
	}
}

// Lookup returns the char pointer of the entry matching s/hash, if present.
func (s *Shard) Lookup(str string, hash uint64) (unsafe.Pointer, bool) {
	_, hit := probe(s.slots, s.mask, hash, func(p unsafe.Pointer) bool {
		return Equal(p, hash, str)
	})
	return hit, hit != nil
}

// InsertOrGet returns the canonical char pointer for str, admitting it into
// the current arena on first sight.
func (s *Shard) InsertOrGet(str string, hash uint64) unsafe.Pointer {
	pos, hit := probe(s.slots, s.mask, hash, func(p unsafe.Pointer) bool {
		return Equal(p, hash, str)
	})
	if hit != nil {
		return hit
	}

	footprint := Footprint(uintptr(len(str)), s.align)
	if s.current.Allocated()+footprint > s.current.Capacity() {
		s.retireAndGrow(footprint)
	}

	entryPtr := s.current.Allocate(footprint)
	charPtr := Write(entryPtr, hash, str)

	s.slots[pos] = charPtr
	s.occupied++

	if uint64(s.occupied)*2 > s.mask {
		s.Grow()
	}
	return charPtr
}

// retireAndGrow moves the current arena into the retired list and installs
// a fresh one sized to at least fit request, doubling the previous
// capacity as a baseline growth policy.
func (s *Shard) retireAndGrow(request uintptr) {
	newCap := s.current.Capacity() * 2
	if newCap < request {
		newCap = request
	}
	s.totalAllocated += s.current.Allocated()
	s.retired = append(s.retired, s.current)
	s.current = arena.New(newCap, s.align)
	s.retires++
}

// Grow doubles the slot table and re-probes every existing entry into it.
// Entries themselves are never moved — only the index is rebuilt.
func (s *Shard) Grow() {
	newLen := len(s.slots) * 2
	newSlots := make([]unsafe.Pointer, newLen)
	newMask := uint64(newLen - 1)

	for _, p := range s.slots {
		if p == nil {
			continue
		}
		h := Hash(p)
		pos := h & newMask
		var step uint64
		for newSlots[pos] != nil {
			step++
			pos = (pos + step) & newMask
		}
		newSlots[pos] = p
	}
	s.slots = newSlots
	s.mask = newMask
	s.grows++
}

// ClearForTest releases every arena (retired and current) and resets the
// table. It is documented as unsafe: every outstanding char pointer handed
// out by this shard becomes invalid the instant this returns.
func (s *Shard) ClearForTest(initialSlots int, initialArenaBytes uintptr) {
	for i := range s.slots {
		s.slots[i] = nil
	}
	s.occupied = 0
	s.retired = nil
	s.totalAllocated = 0
	s.grows = 0
	s.retires = 0
	n := nextPowerOfTwo(initialSlots)
	s.slots = make([]unsafe.Pointer, n)
	s.mask = uint64(n - 1)
	s.current = arena.New(initialArenaBytes, s.align)
}

// TotalAllocated returns the sum of bytes handed out across every arena
// this shard has ever owned, including the current one.
func (s *Shard) TotalAllocated() uintptr {
	return s.totalAllocated + s.current.Allocated()
}

// TotalCapacity returns the sum of capacities across every arena this shard
// has ever owned, including the current one.
func (s *Shard) TotalCapacity() uintptr {
	total := s.current.Capacity()
	for _, a := range s.retired {
		total += a.Capacity()
	}
	return total
}

// NumEntries returns the number of live (i.e. all — nothing is ever
// deleted) entries in this shard.
func (s *Shard) NumEntries() int {
	return s.occupied
}

// Grows returns the lifetime count of table-doubling events.
func (s *Shard) Grows() int64 { return s.grows }

// Retires returns the lifetime count of arena retirements.
func (s *Shard) Retires() int64 { return s.retires }

// All invokes yield for every entry this shard has ever admitted, walking
// every retired arena and then the current one. Returning false from yield
// stops the walk early. This is a point-in-time snapshot of the ranges
// handed out at call time; the caller (internal/bins) is expected to hold
// the shard's lock while calling it.
func (s *Shard) All(yield func(charPtr unsafe.Pointer) bool) {
	arenas := make([]*arena.Arena, 0, len(s.retired)+1)
	arenas = append(arenas, s.retired...)
	arenas = append(arenas, s.current)

	for _, a := range arenas {
		cursor, end := a.Bounds()
		for uintptr(cursor) < uintptr(end) {
			charPtr := unsafe.Add(cursor, HeaderSize)
			if !yield(charPtr) {
				return
			}
			cursor = unsafe.Add(charPtr, Footprint(Len(charPtr), s.align)-HeaderSize)
		}
	}
}
