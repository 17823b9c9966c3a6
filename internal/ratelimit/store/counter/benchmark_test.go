package counter

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// BenchmarkMemoryIncr measures single-threaded throughput
func BenchmarkMemoryIncr(b *testing.B) {
	store := NewMemoryStore()
	ctx := context.Background()

	b.ResetTimer()
	for range b.N {
		_, _, _ = store.Incr(ctx, "bench-key", time.Minute)
	}
}

// BenchmarkMemoryIncr_Parallel measures concurrent throughput on one key
func BenchmarkMemoryIncr_Parallel(b *testing.B) {
	store := NewMemoryStore()
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _, _ = store.Incr(ctx, "bench-key", time.Minute)
		}
	})
}

// BenchmarkMemoryIncr_HighCardinality measures performance with many unique keys
func BenchmarkMemoryIncr_HighCardinality(b *testing.B) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; b.Loop(); i++ {
		key := fmt.Sprintf("ratelimit:default:ip:10.0.%d.%d", (i/256)%256, i%256)
		_, _, _ = store.Incr(ctx, key, time.Minute)
	}
}
