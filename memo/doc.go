// Package memo provides a generic, sharded memoizing cache that guarantees
// at-most-once computation per key under concurrent access.
//
// # Design
//
//   - Two-level locking: a sharded table lock answers "does a slot for this
//     key exist" in a short critical section, and a per-slot publish gate
//     answers "is the value ready". The table lock is never held across a
//     factory call, which is what lets computations for distinct keys run
//     fully in parallel while callers for the same key coalesce.
//
//   - Exactly-once: the first caller to insert a slot for a key owns the
//     computation; everyone else waits on the slot's done channel. Writes
//     to the slot happen-before the close, so waiters always observe the
//     final value.
//
//   - No eviction: slots are permanent. This is a memo table, not an LRU;
//     if the keyspace is unbounded the table grows without bound.
//
//   - Poisoning: a factory panic is fatal for its key. The panic propagates
//     to the computing caller, and the slot is marked with a *PoisonedError
//     delivered to all other past and future callers for that key. There is
//     no retry and no recovery; callers must treat it as a programming error.
//
// # Basic usage
//
//	c := memo.New[int, int](memo.Options{})
//	v := c.GetOrInsert(12, func(k int) int { return k * k }) // computes 144
//	v = c.GetOrInsert(12, func(k int) int { panic("never runs") })
//
// # Cancellation
//
// GetOrInsertContext lets a *waiting* caller give up when its context is
// cancelled. The computation itself is never cancelled: the winning caller
// runs the factory to completion and the result is published for everyone
// who keeps waiting.
package memo
