package workpool

// Metrics exposes pool-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	// Submitted is called once per accepted Execute.
	Submitted()
	// Completed is called once per job that returned normally.
	Completed()
	// Recovered is called once per job that panicked.
	Recovered()
	// Depth reports the queue length after an enqueue or dequeue.
	Depth(n int)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Submitted() {}
func (NoopMetrics) Completed() {}
func (NoopMetrics) Recovered() {}
func (NoopMetrics) Depth(int)  {}

// Ensure NoopMetrics implements the Metrics interface at compile time.
var _ Metrics = NoopMetrics{}
