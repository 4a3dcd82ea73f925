package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/xCarter93/lineupiq/domain/core"
	"github.com/xCarter93/lineupiq/models"
)

func qbPred(yards float64) models.Prediction {
	return models.QBPrediction{PassingYards: yards, PassingTDs: 1.5}
}

func key(i int) core.CacheKey {
	return core.ComputeCacheKey("QB", map[string]float64{"f": float64(i)})
}

func TestCache_HitAndMissCounters(t *testing.T) {
	c, err := New(10, time.Minute)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, ok := c.Get(key(1)); ok {
		t.Error("empty cache returned a hit")
	}

	c.Put(key(1), qbPred(250))
	if pred, ok := c.Get(key(1)); !ok {
		t.Error("expected a hit after Put")
	} else if pred.Flatten()["passing_yards"] != 250 {
		t.Error("hit returned the wrong prediction")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("counters = %d hits / %d misses, want 1/1", stats.Hits, stats.Misses)
	}
	if stats.Size != 1 || stats.MaxSize != 10 {
		t.Errorf("size = %d/%d, want 1/10", stats.Size, stats.MaxSize)
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New(2, time.Minute)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	c.Put(key(1), qbPred(1))
	c.Put(key(2), qbPred(2))

	// Touch key 1 so key 2 becomes the eviction candidate.
	if _, ok := c.Get(key(1)); !ok {
		t.Fatal("expected hit for key 1")
	}

	c.Put(key(3), qbPred(3))

	if _, ok := c.Get(key(2)); ok {
		t.Error("least recently used entry survived eviction")
	}
	if _, ok := c.Get(key(1)); !ok {
		t.Error("recently used entry was evicted")
	}
	if _, ok := c.Get(key(3)); !ok {
		t.Error("new entry missing after insert")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c, err := New(10, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Clock injection keeps the test free of sleeps.
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put(key(1), qbPred(1))
	if _, ok := c.Get(key(1)); !ok {
		t.Fatal("fresh entry missing")
	}

	now = now.Add(51 * time.Millisecond)
	if _, ok := c.Get(key(1)); ok {
		t.Error("expired entry returned as a hit")
	}
	if size := c.Stats().Size; size != 0 {
		t.Errorf("expired entry still occupies the cache (size %d)", size)
	}
}

func TestCache_RePutRefreshesTTL(t *testing.T) {
	c, err := New(10, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put(key(1), qbPred(1))
	now = now.Add(80 * time.Millisecond)
	c.Put(key(1), qbPred(2))
	now = now.Add(80 * time.Millisecond)

	pred, ok := c.Get(key(1))
	if !ok {
		t.Fatal("refreshed entry expired on the original TTL")
	}
	if pred.Flatten()["passing_yards"] != 2 {
		t.Error("re-put did not replace the value")
	}
}

func TestCache_ClearResetsEntriesAndCounters(t *testing.T) {
	c, err := New(10, time.Minute)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	c.Put(key(1), qbPred(1))
	c.Get(key(1))
	c.Get(key(2))
	c.Clear()

	stats := c.Stats()
	if stats.Size != 0 {
		t.Errorf("size after clear = %d, want 0", stats.Size)
	}
	if stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("counters after clear = %d hits / %d misses, want 0/0", stats.Hits, stats.Misses)
	}
	if _, ok := c.Get(key(1)); ok {
		t.Error("cleared entry still retrievable")
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c, err := New(64, time.Minute)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := key(i % 32)
				if i%3 == 0 {
					c.Put(k, qbPred(float64(i)))
				} else {
					c.Get(k)
				}
			}
		}(g)
	}
	wg.Wait()

	stats := c.Stats()
	if stats.Size > 64 {
		t.Errorf("cache grew past capacity: %d", stats.Size)
	}
	if stats.Hits+stats.Misses == 0 {
		t.Error("no lookups recorded")
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		capacity int
		ttl      time.Duration
	}{
		{0, time.Minute},
		{-1, time.Minute},
		{10, 0},
		{10, -time.Second},
	}
	for _, tt := range tests {
		if _, err := New(tt.capacity, tt.ttl); err == nil {
			t.Errorf("New(%d, %s) succeeded, want error", tt.capacity, tt.ttl)
		}
	}
}

func TestCacheKey_OrderIndependent(t *testing.T) {
	a := core.ComputeCacheKey("QB", map[string]float64{"x": 1, "y": 2})
	b := core.ComputeCacheKey("QB", map[string]float64{"y": 2, "x": 1})
	if a != b {
		t.Error("cache key depends on map iteration order")
	}

	c := core.ComputeCacheKey("RB", map[string]float64{"x": 1, "y": 2})
	if a == c {
		t.Error("cache key ignores position")
	}
}

func BenchmarkCacheGet(b *testing.B) {
	c, _ := New(1024, time.Minute)
	for i := 0; i < 512; i++ {
		c.Put(key(i), qbPred(float64(i)))
	}
	keys := make([]core.CacheKey, 512)
	for i := range keys {
		keys[i] = key(i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(keys[i%512])
	}
	_ = fmt.Sprint(c.Stats().Hits)
}
