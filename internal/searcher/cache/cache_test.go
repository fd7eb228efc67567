package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/liber-scholasticum/live-search/internal/searchtypes"
)

func TestGetOrComputeCachesResult(t *testing.T) {
	c := New(time.Minute, 0)
	defer c.Close()

	calls := 0
	compute := func() (searchtypes.SearchResult, error) {
		calls++
		return searchtypes.SearchResult{Query: "aquinas", TotalMatches: 3}, nil
	}

	result, hit, err := c.GetOrCompute(context.Background(), "live", 10, "aquinas", compute)
	if err != nil || hit {
		t.Fatalf("first call: result=%+v hit=%v err=%v", result, hit, err)
	}
	result2, hit2, err2 := c.GetOrCompute(context.Background(), "live", 10, "aquinas", compute)
	if err2 != nil || !hit2 {
		t.Fatalf("second call: result=%+v hit=%v err=%v", result2, hit2, err2)
	}
	if calls != 1 {
		t.Errorf("computeFn called %d times, want 1", calls)
	}
}

func TestGetOrComputeCollapsesConcurrentCalls(t *testing.T) {
	c := New(time.Minute, 0)
	defer c.Close()

	var calls int
	var mu sync.Mutex
	compute := func() (searchtypes.SearchResult, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		return searchtypes.SearchResult{Query: "augustine"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.GetOrCompute(context.Background(), "live", 10, "augustine", compute)
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("computeFn called %d times concurrently, want 1 (singleflight collapse)", calls)
	}
}

func TestEntryExpiresAfterTTL(t *testing.T) {
	c := New(10*time.Millisecond, 0)
	defer c.Close()

	c.Set(context.Background(), "live", 10, "aquinas", searchtypes.SearchResult{Query: "aquinas"})
	if _, ok := c.Get(context.Background(), "live", 10, "aquinas"); !ok {
		t.Fatal("expected an immediate hit before TTL expiry")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get(context.Background(), "live", 10, "aquinas"); ok {
		t.Fatal("expected a miss after TTL expiry")
	}
}

func TestNormalizeQueryIgnoresWordOrder(t *testing.T) {
	if normalizeQuery("natural law") != normalizeQuery("law natural") {
		t.Error("normalizeQuery should ignore word order")
	}
}

func TestModeAndTopNAreDistinctKeys(t *testing.T) {
	c := New(time.Minute, 0)
	defer c.Close()

	c.Set(context.Background(), "live", 10, "aquinas", searchtypes.SearchResult{Query: "live-10"})
	c.Set(context.Background(), "indexed", 10, "aquinas", searchtypes.SearchResult{Query: "indexed-10"})
	c.Set(context.Background(), "live", 20, "aquinas", searchtypes.SearchResult{Query: "live-20"})

	r1, _ := c.Get(context.Background(), "live", 10, "aquinas")
	r2, _ := c.Get(context.Background(), "indexed", 10, "aquinas")
	r3, _ := c.Get(context.Background(), "live", 20, "aquinas")
	if r1.Query != "live-10" || r2.Query != "indexed-10" || r3.Query != "live-20" {
		t.Errorf("expected distinct entries per (mode, topN), got %q %q %q", r1.Query, r2.Query, r3.Query)
	}
}
