package memo

import (
	"sync"

	"github.com/rgbygv/syncbox/internal/util"
)

// shard is an independent partition of the slot table with its own lock.
// The lock guards only the key->slot map; it is held for the duration of a
// single check-or-insert and never across a factory call or a slot wait.
type shard[K comparable, V any] struct {
	mu    sync.Mutex
	slots map[K]*slot[V]

	// hot counters (separate cache line to avoid false sharing)
	_    util.CacheLinePad
	size util.PaddedAtomicInt64
}

func newShard[K comparable, V any]() *shard[K, V] {
	return &shard[K, V]{slots: make(map[K]*slot[V])}
}

// lookup returns the slot for k, creating an empty one on first miss.
// The second result reports whether the slot already existed; a caller
// that gets existed == false owns the computation rights for the key.
func (s *shard[K, V]) lookup(k K) (*slot[V], bool) {
	s.mu.Lock()
	sl, ok := s.slots[k]
	if !ok {
		sl = &slot[V]{done: make(chan struct{})}
		s.slots[k] = sl
		s.size.Add(1)
	}
	s.mu.Unlock()
	return sl, ok
}

// len returns the number of resident slots in this shard.
func (s *shard[K, V]) len() int {
	return int(s.size.Load())
}

// slot is a per-key computation cell: empty on creation, then computed or
// poisoned exactly once. val and failure are written before done is
// closed and only read after done is observed closed.
type slot[V any] struct {
	done    chan struct{}
	val     V
	failure *PoisonedError
}

// value returns the published value, panicking if the slot was poisoned.
func (sl *slot[V]) value() V {
	if sl.failure != nil {
		panic(sl.failure)
	}
	return sl.val
}
