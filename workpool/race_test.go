package workpool

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

// Many producers submit concurrently while another goroutine repeatedly
// calls Join. Every accepted job must run exactly once; the run should
// pass under `-race` without detector reports.
func TestRace_ProducersAndJoin(t *testing.T) {
	p := New(runtime.GOMAXPROCS(0))

	const producers = 8
	const perProducer = 2_000

	var executed atomic.Int64

	stop := make(chan struct{})
	joinLoopDone := make(chan struct{})
	go func() {
		defer close(joinLoopDone)
		for {
			select {
			case <-stop:
				return
			default:
				p.Join()
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(producers)
	for i := 0; i < producers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				// The pool is not closed yet, so every submission must land.
				if err := p.Execute(func() { executed.Add(1) }); err != nil {
					t.Errorf("Execute: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	close(stop)
	<-joinLoopDone

	p.Join()
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if executed.Load() != producers*perProducer {
		t.Fatalf("executed %d, want %d", executed.Load(), producers*perProducer)
	}
}
