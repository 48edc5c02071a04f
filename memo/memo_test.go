package memo

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

// N concurrent callers for the same key must trigger exactly one factory
// execution, and every caller must observe the same value.
func TestCache_ExactlyOnce(t *testing.T) {
	t.Parallel()

	var calls int64
	c := New[string, string](Options{})

	const N = 64
	var g errgroup.Group
	for i := 0; i < N; i++ {
		g.Go(func() error {
			v := c.GetOrInsert("k", func(k string) string {
				atomic.AddInt64(&calls, 1)
				time.Sleep(5 * time.Millisecond) // widen the race window
				return "v:" + k
			})
			if v != "v:k" {
				return fmt.Errorf("got %q", v)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("factory must run exactly once, got %d", got)
	}
	if c.Len() != 1 {
		t.Fatalf("want 1 slot, got %d", c.Len())
	}
}

// A call for one key must complete even while another key's factory is
// still blocked. If cross-key calls serialized, this test would deadlock:
// the slow factory is only released after the fast call returns.
func TestCache_CrossKeyParallelism(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options{})
	release := make(chan struct{})
	slowDone := make(chan struct{})

	go func() {
		defer close(slowDone)
		c.GetOrInsert("slow", func(string) int {
			<-release
			return 1
		})
	}()

	// Wait until the slow slot is resident so the computations overlap.
	waitFor(t, func() bool { return c.Len() == 1 })

	if v := c.GetOrInsert("fast", func(string) int { return 2 }); v != 2 {
		t.Fatalf("fast key: got %d", v)
	}

	close(release)
	<-slowDone
}

// GetOrInsert(1, k*k) memoizes 1; a second call for the same key must not
// invoke its factory at all.
func TestCache_MemoizedFactoryNotReinvoked(t *testing.T) {
	t.Parallel()

	c := New[int, int](Options{})
	if v := c.GetOrInsert(1, func(k int) int { return k * k }); v != 1 {
		t.Fatalf("want 1, got %d", v)
	}
	v := c.GetOrInsert(1, func(int) int {
		t.Error("factory must not run for a memoized key")
		return -1
	})
	if v != 1 {
		t.Fatalf("want memoized 1, got %d", v)
	}
}

// A panicking factory must propagate to the computing caller and leave the
// slot poisoned for everyone else: no retry, no silent recovery, no hang.
func TestCache_PoisonedSlot(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options{})

	func() {
		defer func() {
			if recover() == nil {
				t.Error("factory panic must propagate to the computing caller")
			}
		}()
		c.GetOrInsert("k", func(string) int { panic("boom") })
	}()

	// Later callers for the key observe the poison as a fatal error.
	func() {
		defer func() {
			r := recover()
			pe, ok := r.(*PoisonedError)
			if !ok {
				t.Errorf("want *PoisonedError, got %v", r)
				return
			}
			if pe.Key != "k" || pe.Cause != "boom" {
				t.Errorf("unexpected poison: %v", pe)
			}
		}()
		c.GetOrInsert("k", func(string) int { return 1 })
		t.Error("poisoned lookup must not return normally")
	}()

	// Other keys are unaffected.
	if v := c.GetOrInsert("healthy", func(string) int { return 7 }); v != 7 {
		t.Fatalf("healthy key: got %d", v)
	}

	// The context variant reports the poison as an error value.
	if _, err := c.GetOrInsertContext(context.Background(), "k", func(string) int { return 1 }); err == nil {
		t.Fatal("context variant must surface the poison as an error")
	}
}

// A waiter may abandon the wait on ctx cancellation; the computation keeps
// going and still publishes exactly once.
func TestCache_ContextCancelledWaiter(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options{})
	release := make(chan struct{})
	leaderDone := make(chan struct{})

	go func() {
		defer close(leaderDone)
		c.GetOrInsert("k", func(string) int {
			<-release
			return 42
		})
	}()
	waitFor(t, func() bool { return c.Len() == 1 })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.GetOrInsertContext(ctx, "k", nil); err != context.Canceled {
		t.Fatalf("want context.Canceled, got %v", err)
	}

	close(release)
	<-leaderDone

	// The published value is still there for patient callers.
	v, err := c.GetOrInsertContext(context.Background(), "k", nil)
	if err != nil || v != 42 {
		t.Fatalf("want 42, got %d err=%v", v, err)
	}
}

// Keys outside the supported hash types fail loudly on first use, as the
// Cache godoc promises, rather than sharding everything onto one shard.
func TestCache_UnsupportedKeyTypePanics(t *testing.T) {
	t.Parallel()

	type point struct{ x, y int }
	c := New[point, int](Options{})

	defer func() {
		if recover() == nil {
			t.Fatal("struct key must panic on first lookup")
		}
	}()
	c.GetOrInsert(point{1, 2}, func(point) int { return 0 })
}

// The context variant's cold path: a caller that wins the slot runs the
// factory to completion even under an already-cancelled context, and the
// result is published for later callers. Only the wait is cancellable.
func TestCache_ContextLeaderComputes(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int64
	v, err := c.GetOrInsertContext(ctx, "key", func(k string) int {
		atomic.AddInt64(&calls, 1)
		return len(k)
	})
	if err != nil || v != 3 {
		t.Fatalf("leader: got %d err=%v, want 3 nil", v, err)
	}
	if atomic.LoadInt64(&calls) != 1 {
		t.Fatalf("factory ran %d times, want 1", calls)
	}

	v, err = c.GetOrInsertContext(context.Background(), "key", func(string) int {
		t.Error("factory must not rerun for a memoized key")
		return -1
	})
	if err != nil || v != 3 {
		t.Fatalf("follow-up: got %d err=%v, want 3 nil", v, err)
	}
}

func TestCache_Len(t *testing.T) {
	t.Parallel()

	c := New[int, int](Options{Shards: 4})
	for i := 0; i < 100; i++ {
		c.GetOrInsert(i, func(k int) int { return k })
	}
	if c.Len() != 100 {
		t.Fatalf("want 100 slots, got %d", c.Len())
	}
}

// waitFor polls cond with a deadline; avoids sleeping for a fixed guess.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached in time")
		}
		runtime.Gosched()
	}
}
