package memo

import "context"

// Cache is a memoizing keyed cache.
// All methods are safe for concurrent use by multiple goroutines.
//
// A Cache never evicts: a slot, once created for a key, lives for the
// lifetime of the cache. The factory supplied for a key runs at most once
// over that lifetime, no matter how many callers race on the key.
//
// Keys are hashed for shard selection. Supported key types are strings,
// []byte, [16|32|64]byte arrays, all integer widths, uintptr, and
// fmt.Stringer; any other comparable type (e.g. a plain struct) panics on
// the first lookup. Convert such keys to strings first.
type Cache[K comparable, V any] interface {
	// GetOrInsert returns the memoized value for k, computing it via
	// factory on the first call for that key. Concurrent callers for the
	// same key block until the first computation publishes its result;
	// callers for distinct keys never wait on each other.
	//
	// If factory panics, the panic propagates to the computing caller and
	// the slot is poisoned: every caller blocked on or arriving at that
	// key afterwards panics with a *PoisonedError. The slot is never
	// retried or healed.
	GetOrInsert(k K, factory func(K) V) V

	// GetOrInsertContext behaves like GetOrInsert, except that a caller
	// *waiting* for another goroutine's computation may abandon the wait
	// when ctx is cancelled, returning ctx.Err(). Cancellation never stops
	// the computation itself; exactly-once execution is unaffected.
	// A poisoned slot is reported as a *PoisonedError return rather than
	// a panic.
	GetOrInsertContext(ctx context.Context, k K, factory func(K) V) (V, error)

	// Len returns the total number of resident slots across all shards,
	// including slots whose computation is still in flight.
	Len() int
}
