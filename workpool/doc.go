// Package workpool provides a fixed-size worker pool with an unbounded
// multi-producer job queue and a completion barrier.
//
// Workers are long-lived goroutines started by New and joined by Close.
// Execute is fire-and-forget: it enqueues and returns immediately. Join
// blocks until the queue is drained and no job is in flight; it makes no
// promise about jobs submitted concurrently with the wait.
//
// Jobs have no cancellation hook and no deadline: once submitted, a job
// always runs to completion. A job that panics does not kill its worker;
// the panic is recovered, recorded, and returned by Close as a
// *WorkerError (the first one wins).
//
//	p := workpool.New(4)
//	defer p.Close()
//
//	var n atomic.Int64
//	for i := 0; i < 10; i++ {
//		_ = p.Execute(func() { n.Add(1) })
//	}
//	p.Join() // n.Load() == 10
package workpool
