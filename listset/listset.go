package listset

import (
	"cmp"
	"iter"
	"sync"

	"github.com/rgbygv/syncbox/internal/util"
)

// node is one list element. mu guards the next pointer only; the value is
// immutable after insertion. The head sentinel carries no value.
type node[T cmp.Ordered] struct {
	val  T
	mu   sync.Mutex
	next *node[T]
}

// Set is a sorted set of unique values backed by a singly linked list with
// per-node locking. Traversals and mutations acquire node locks strictly
// in list order (hand-over-hand), which is the sole deadlock-avoidance
// mechanism: no operation ever holds a later node's lock while waiting for
// an earlier one.
//
// All methods are safe for concurrent use by multiple goroutines.
type Set[T cmp.Ordered] struct {
	head node[T]

	// hot counters (separate cache lines to avoid false sharing)
	_        util.CacheLinePad
	size     util.PaddedAtomicInt64
	searches util.PaddedAtomicUint64
	inserts  util.PaddedAtomicUint64
	removes  util.PaddedAtomicUint64
}

// New creates an empty set.
func New[T cmp.Ordered]() *Set[T] {
	return &Set[T]{}
}

// find walks the list until it stands on v or on the first node greater
// than v. It returns the predecessor node with its lock HELD: the caller
// owns prev.next until it unlocks prev. found reports whether prev.next
// holds v.
//
// The walk locks the next node before releasing the current one, so a
// concurrent Remove can never redirect a traversal through an unlinked
// node's stale successor.
func (s *Set[T]) find(v T) (prev *node[T], found bool) {
	prev = &s.head
	prev.mu.Lock()
	for {
		cur := prev.next
		if cur == nil || cur.val > v {
			return prev, false
		}
		if cur.val == v {
			return prev, true
		}
		cur.mu.Lock()
		prev.mu.Unlock()
		prev = cur
	}
}

// Contains reports whether v is in the set.
func (s *Set[T]) Contains(v T) bool {
	s.searches.Add(1)
	prev, found := s.find(v)
	prev.mu.Unlock()
	return found
}

// Insert adds v to the set. It returns false, without mutation, if v is
// already present.
func (s *Set[T]) Insert(v T) bool {
	s.inserts.Add(1)
	prev, found := s.find(v)
	if found {
		prev.mu.Unlock()
		return false
	}
	// Single pointer swing under the held predecessor lock. Any traversal
	// must take prev's lock to move past this point, so the new node is
	// either fully linked or not visible at all.
	prev.next = &node[T]{val: v, next: prev.next}
	prev.mu.Unlock()
	s.size.Add(1)
	return true
}

// Remove deletes v from the set. It returns false if v is not present.
func (s *Set[T]) Remove(v T) bool {
	s.removes.Add(1)
	prev, found := s.find(v)
	if !found {
		prev.mu.Unlock()
		return false
	}
	target := prev.next
	// Locking the target as well is required correctness, not an
	// optimization: a traversal standing on target is blocked on this
	// lock, and unlinking without it would let that traversal read a
	// successor pointer mid-swing.
	target.mu.Lock()
	prev.next = target.next
	target.mu.Unlock()
	prev.mu.Unlock()
	s.size.Add(-1)
	return true
}

// All returns a lazy, single-pass, strictly ascending sequence of the
// set's values. Each step re-acquires a fresh lock hand-over-hand, so the
// iteration is weakly consistent: mutations ahead of the current position
// are visible, mutations behind it are not revisited.
//
// One node lock stays held between steps. Mutating the set from inside the
// loop body can therefore self-deadlock; collect first, then mutate.
//
// A panic in the loop body releases the held lock as it unwinds. Iteration
// never mutates the chain, so the set stays consistent and usable.
func (s *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		held := &s.head
		held.mu.Lock()
		// The consumer's loop body runs inside yield; if it panics, the
		// deferred unlock keeps the current node from being locked forever.
		defer func() { held.mu.Unlock() }()
		for {
			cur := held.next
			if cur == nil {
				return
			}
			cur.mu.Lock()
			held.mu.Unlock()
			held = cur
			if !yield(cur.val) {
				return
			}
		}
	}
}

// Len returns the number of values in the set.
func (s *Set[T]) Len() int {
	return int(s.size.Load())
}

// Stats is a point-in-time snapshot of operation counters.
type Stats struct {
	Searches uint64
	Inserts  uint64
	Removes  uint64
}

// Stats returns cumulative operation counts. Counters are sampled
// independently, so the snapshot is not atomic across fields.
func (s *Set[T]) Stats() Stats {
	return Stats{
		Searches: s.searches.Load(),
		Inserts:  s.inserts.Load(),
		Removes:  s.removes.Load(),
	}
}
