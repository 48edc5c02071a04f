package workpool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/eapache/queue"
)

// Job is a deferred unit of work submitted to the pool. A Job is owned by
// the queue until a worker claims it, then by that worker until it returns.
type Job func()

// ErrClosed is returned by Execute once pool shutdown has begun.
var ErrClosed = errors.New("workpool: pool is closed")

// WorkerError reports that a submitted job panicked while executing.
// Fire-and-forget submission has no per-job error channel, so the first
// such failure is recorded and surfaced by Close instead.
type WorkerError struct {
	// Cause is the value recovered from the job's panic.
	Cause any
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("workpool: job panicked: %v", e.Cause)
}

// Pool is a fixed-size pool of long-lived worker goroutines consuming jobs
// from a shared unbounded queue, with a completion barrier (Join).
// All methods are safe for concurrent use by multiple goroutines.
type Pool struct {
	// mu guards jobs, active, closed and failure. The active counter is
	// incremented exactly once per job start and decremented exactly once
	// per job finish, both under mu.
	mu      sync.Mutex
	jobs    *queue.Queue // of Job; unbounded ring buffer
	active  int
	closed  bool
	failure *WorkerError

	notEmpty *sync.Cond // a job was enqueued, or shutdown began
	idle     *sync.Cond // queue drained and no job in flight

	wg   sync.WaitGroup
	size int
	met  Metrics
}

// Option configures a Pool.
type Option func(*Pool)

// WithMetrics installs a Metrics backend. The default is NoopMetrics.
func WithMetrics(m Metrics) Option {
	return func(p *Pool) {
		if m != nil {
			p.met = m
		}
	}
}

// New constructs a pool and starts size worker goroutines immediately.
// It panics if size is not positive: a pool with no workers can accept
// jobs but never run them, which is a programming error, not a state to
// limp along in.
func New(size int, opts ...Option) *Pool {
	if size <= 0 {
		panic("workpool: size must be > 0")
	}
	p := &Pool{
		jobs: queue.New(),
		size: size,
		met:  NoopMetrics{},
	}
	p.notEmpty = sync.NewCond(&p.mu)
	p.idle = sync.NewCond(&p.mu)

	for _, opt := range opts {
		opt(p)
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

// Size returns the number of worker goroutines.
func (p *Pool) Size() int { return p.size }

// Execute enqueues a job for some idle worker to pick up and returns
// immediately, without waiting for execution. Submission is unbounded and
// never blocks. Once Close has been called, Execute returns ErrClosed.
func (p *Pool) Execute(job Job) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.jobs.Add(job)
	depth := p.jobs.Length()
	p.notEmpty.Signal()
	p.mu.Unlock()

	p.met.Submitted()
	p.met.Depth(depth)
	return nil
}

// Join blocks until all currently outstanding work has finished: the queue
// is drained and no worker has a job in flight.
//
// This is a one-shot barrier, not a generational one. If another goroutine
// submits new jobs while Join is waiting, no guarantee is made about
// whether those jobs are included. Callers that need only-already-submitted
// jobs waited on must not submit concurrently with Join.
func (p *Pool) Join() {
	p.mu.Lock()
	for p.jobs.Length() != 0 || p.active != 0 {
		p.idle.Wait()
	}
	p.mu.Unlock()
}

// Close shuts the pool down: further Execute calls fail with ErrClosed,
// already queued jobs are drained, and Close blocks until every worker
// goroutine has terminated. If any job panicked during the pool's
// lifetime, the first recorded failure is returned as a *WorkerError.
// Close is idempotent.
func (p *Pool) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		p.notEmpty.Broadcast()
	}
	p.mu.Unlock()

	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failure != nil {
		return p.failure
	}
	return nil
}

// worker loops: claim a job under the lock, run it outside the lock,
// account for it, repeat. Terminates once the pool is closed and the
// queue is drained.
func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for p.jobs.Length() == 0 && !p.closed {
			p.notEmpty.Wait()
		}
		if p.jobs.Length() == 0 {
			// closed and drained
			p.mu.Unlock()
			return
		}
		job := p.jobs.Remove().(Job)
		p.active++
		depth := p.jobs.Length()
		p.mu.Unlock()

		p.met.Depth(depth)
		p.run(job)
	}
}

// run executes one job, recovering a panic so a faulting job cannot wedge
// the pool. The decrement and the idle broadcast happen even on panic;
// otherwise a single bad job would hang every Join forever.
func (p *Pool) run(job Job) {
	defer func() {
		r := recover()

		p.mu.Lock()
		p.active--
		if r != nil && p.failure == nil {
			p.failure = &WorkerError{Cause: r}
		}
		if p.active == 0 && p.jobs.Length() == 0 {
			p.idle.Broadcast()
		}
		p.mu.Unlock()

		if r != nil {
			p.met.Recovered()
		} else {
			p.met.Completed()
		}
	}()
	job()
}
