// Package listset implements a concurrent sorted set as a singly linked
// list with fine-grained lock coupling.
//
// Every node's successor pointer is guarded by that node's own mutex.
// Traversal acquires the next node's lock before releasing the current
// one and always proceeds head-to-tail, so any number of concurrent
// Contains/Insert/Remove/All calls are deadlock-free without a global
// lock and without blocking each other beyond the nodes they actually
// touch.
//
// There is no lock-free fast path: the set trades peak throughput for a
// locking discipline that is easy to reason about. For read-mostly maps
// with no ordering requirement, a sharded hash map is the better tool.
package listset
