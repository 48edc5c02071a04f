package listset

import (
	"math/rand"
	"sync/atomic"
	"testing"
)

// benchmarkMix runs a contains/insert/remove mix over a warm set.
// Note that a linked list is O(n) per operation; the interesting number
// here is how throughput degrades under contention, not absolute speed.
func benchmarkMix(b *testing.B, valueRange, readsPct int) {
	s := New[int]()
	for i := 0; i < valueRange/2; i++ {
		s.Insert(i * 2)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		for pb.Next() {
			v := r.Intn(valueRange)
			if r.Intn(100) < readsPct {
				s.Contains(v)
			} else if v%2 == 0 {
				s.Insert(v)
			} else {
				s.Remove(v)
			}
		}
	})
}

func BenchmarkSet_Small_90r(b *testing.B) { benchmarkMix(b, 128, 90) }
func BenchmarkSet_Small_50r(b *testing.B) { benchmarkMix(b, 128, 50) }
func BenchmarkSet_Large_90r(b *testing.B) { benchmarkMix(b, 4_096, 90) }
