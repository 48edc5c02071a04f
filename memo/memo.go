package memo

import (
	"context"
	"time"

	"github.com/rgbygv/syncbox/internal/util"
)

// Options configures the cache. Zero values are safe; defaults are applied
// in New():
//   - Shards <= 0 => auto (≈ 2*GOMAXPROCS, rounded up to a power of two)
//   - nil Metrics => NoopMetrics
type Options struct {
	// Shards defines the number of slot-table shards. If 0, an automatic
	// value is chosen and rounded to the next power of two.
	Shards int

	// Metrics receives Hit/Miss/Compute/Poisoned signals.
	Metrics Metrics
}

// cache is a sharded slot table. Each shard's lock covers only slot
// existence (check-or-insert); publication of a computed value goes
// through the slot itself, so same-key callers serialize without ever
// touching callers for other keys.
type cache[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   func(K) uint64
	opt    Options
}

// New constructs a memoizing cache with the provided Options.
//
// K is constrained to comparable, but shard hashing supports only string,
// byte-slice/array, integer and fmt.Stringer keys; see Cache for details.
func New[K comparable, V any](opt Options) Cache[K, V] {
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}

	sh := opt.Shards
	if sh <= 0 {
		sh = util.ReasonableShardCount()
	} else {
		sh = int(util.NextPow2(uint64(sh)))
	}

	cs := make([]*shard[K, V], sh)
	for i := 0; i < sh; i++ {
		cs[i] = newShard[K, V]()
	}

	return &cache[K, V]{
		shards: cs,
		hash:   util.Fnv64a[K],
		opt:    opt,
	}
}

// ---- Cache[K,V] implementation ----

// GetOrInsert returns the memoized value for k, computing it at most once.
func (c *cache[K, V]) GetOrInsert(k K, factory func(K) V) V {
	sl, existed := c.getShard(k).lookup(k)
	if existed {
		c.opt.Metrics.Hit()
		<-sl.done
		return sl.value()
	}
	c.opt.Metrics.Miss()
	return c.compute(k, sl, factory)
}

// GetOrInsertContext is the context-aware variant. Only the wait is
// cancellable; a caller that won the right to compute runs factory to
// completion regardless of ctx.
func (c *cache[K, V]) GetOrInsertContext(ctx context.Context, k K, factory func(K) V) (V, error) {
	sl, existed := c.getShard(k).lookup(k)
	if existed {
		c.opt.Metrics.Hit()
		select {
		case <-sl.done:
			if sl.failure != nil {
				var zero V
				return zero, sl.failure
			}
			return sl.val, nil
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}
	c.opt.Metrics.Miss()
	return c.compute(k, sl, factory), nil
}

// Len returns the total number of resident slots across all shards.
func (c *cache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.len()
	}
	return total
}

// ---- internals ----

// compute runs factory for a freshly inserted slot and publishes the
// outcome. Publication (value or poison) happens-before close(sl.done),
// so waiters observe a fully written slot. No lock is held here: the
// shard lock was released by lookup, and the slot's done channel is the
// only gate same-key callers block on.
func (c *cache[K, V]) compute(k K, sl *slot[V], factory func(K) V) V {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			sl.failure = &PoisonedError{Key: k, Cause: r}
			close(sl.done)
			c.opt.Metrics.Poisoned()
			panic(r)
		}
	}()

	v := factory(k)
	sl.val = v
	close(sl.done)
	c.opt.Metrics.Compute(time.Since(start))
	return v
}

// getShard picks a shard by hashing the key and masking with len-1.
// len(c.shards) is guaranteed to be a power of two.
func (c *cache[K, V]) getShard(k K) *shard[K, V] {
	h := c.hash(k)
	return c.shards[util.ShardIndex(h, len(c.shards))]
}
