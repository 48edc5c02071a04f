package memo

import (
	"strconv"
	"sync/atomic"
	"testing"
)

// Warm-path benchmark: every lookup hits an existing slot, so the cost is
// one shard map read plus one closed-channel receive.
func BenchmarkCache_Hit(b *testing.B) {
	c := New[string, int](Options{})
	for i := 0; i < 1<<16; i++ {
		v := i
		c.GetOrInsert("k:"+strconv.Itoa(i), func(string) int { return v })
	}

	b.ReportAllocs()
	b.ResetTimer()

	keyMask := (1 << 16) - 1
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			c.GetOrInsert("k:"+strconv.Itoa(i&keyMask), func(string) int { return 0 })
			i++
		}
	})
}

// Cold-path benchmark with int keys: each iteration inserts a fresh slot.
// Int keys avoid strconv noise and expose table-insert costs.
func BenchmarkCache_Insert(b *testing.B) {
	c := New[int, int](Options{})

	b.ReportAllocs()
	b.ResetTimer()

	var next atomic.Int64
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			k := int(next.Add(1))
			c.GetOrInsert(k, func(k int) int { return k })
		}
	})
}
