package memo

import "time"

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
//
// Hit means the slot for the key already existed (its computation may
// still be in flight); Miss means this call created the slot and will
// run the factory.
type Metrics interface {
	Hit()
	Miss()
	Compute(d time.Duration)
	Poisoned()
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
// Safe for concurrent use; the default when no backend is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                   {}
func (NoopMetrics) Miss()                  {}
func (NoopMetrics) Compute(time.Duration)  {}
func (NoopMetrics) Poisoned()              {}

// Ensure NoopMetrics implements the Metrics interface at compile time.
var _ Metrics = NoopMetrics{}
