package ustrcache

// config.go defines the package-level configuration for the process-wide
// interner and the functional options that tune it before first use.
//
// Design notes
// ------------
// • Unlike a per-instance cache, the interner is a single
//   process-wide singleton: there is exactly one config, applied exactly
//   once, before the first call into the interner (Intern, LookupExisting,
//   the statistics functions, IterateAll or ClearForTest) lazily builds the
//   shard array.
// • Options never allocate unless strictly necessary — they just capture
//   values or pointers to external objects (registry, logger).
//
// © 2025 arena-cache authors. MIT License.

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/Voskan/ustrcache/internal/unsafehelpers"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// config bundles every knob that influences interner behaviour. All fields
// are immutable once the shard array is built.
type config struct {
	numBins           int
	initialSlots      int
	initialArenaBytes uintptr
	align             uintptr

	registry *prometheus.Registry
	logger   *zap.Logger
}

func defaultConfig() *config {
	return &config{
		numBins:           64,
		initialSlots:      16384,
		initialArenaBytes: 65536,
		align:             8,
		logger:            zap.NewNop(),
	}
}

// Option is a functional option applied by Configure.
type Option func(*config)

// WithShards overrides the number of shards (bins). Must be a power of two;
// invalid values are rejected at Configure time.
func WithShards(n int) Option {
	return func(c *config) { c.numBins = n }
}

// WithInitialTableSlots overrides each shard's initial open-addressed table
// size (rounded up to a power of two internally).
func WithInitialTableSlots(n int) Option {
	return func(c *config) { c.initialSlots = n }
}

// WithInitialArenaBytes overrides each shard's initial bump-arena capacity.
func WithInitialArenaBytes(n uintptr) Option {
	return func(c *config) { c.initialArenaBytes = n }
}

// WithMetrics enables Prometheus metrics collection. Passing nil disables
// metrics (the default).
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *config) { c.registry = reg }
}

// WithLogger plugs an external zap.Logger. The interner never logs on the
// hot path; the only event emitted is the first-use construction of the
// shard array, at Debug level. Shard table growth and arena retirement are
// not logged.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

var (
	globalConfig = defaultConfig()
	configFrozen atomic.Bool
)

// Configure applies opts to the package-level configuration. It may only be
// called before the first call to Intern, LookupExisting, NumEntries,
// TotalAllocated, TotalCapacity, TableGrows, ArenaRetirements, IterateAll or
// ClearForTest — each of those lazily builds the shard array from whatever
// config is in effect at the time, and a process-wide singleton cannot be
// reconfigured once born.
// Calling Configure afterward is a fatal misuse: invariant violations
// abort rather than being silently ignored.
func Configure(opts ...Option) {
	if configFrozen.Load() {
		fmt.Fprintln(os.Stderr, "ustrcache: Configure called after the interner was already initialized")
		os.Exit(2)
	}
	for _, opt := range opts {
		opt(globalConfig)
	}
	if err := validateConfig(globalConfig); err != nil {
		fmt.Fprintln(os.Stderr, "ustrcache:", err)
		os.Exit(2)
	}
}

func validateConfig(c *config) error {
	if c.numBins <= 0 || !unsafehelpers.IsPowerOfTwo(uintptr(c.numBins)) {
		return fmt.Errorf("shard count must be a power of two and > 0, got %d", c.numBins)
	}
	if c.initialSlots <= 0 {
		return fmt.Errorf("initial table slots must be > 0, got %d", c.initialSlots)
	}
	if c.initialArenaBytes == 0 {
		return fmt.Errorf("initial arena bytes must be > 0")
	}
	if !unsafehelpers.IsPowerOfTwo(c.align) {
		return fmt.Errorf("alignment must be a power of two, got %d", c.align)
	}
	return nil
}
