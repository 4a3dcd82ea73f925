package cache

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"github.com/xCarter93/lineupiq/domain/core"
	"github.com/xCarter93/lineupiq/models"
)

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Size    int    `json:"size"`
	MaxSize int    `json:"max_size"`
}

type entry struct {
	key       core.CacheKey
	value     models.Prediction
	expiresAt time.Time
}

// PredictionCache is a bounded LRU cache with per-entry TTL. All
// operations hold a single mutex; callers must not run model inference
// while inside a cache call.
type PredictionCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List // front = most recently used
	items    map[core.CacheKey]*list.Element
	hits     uint64
	misses   uint64
	now      func() time.Time
}

// New returns a cache bounded to capacity entries, each live for ttl
// after insertion.
func New(capacity int, ttl time.Duration) (*PredictionCache, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}
	return &PredictionCache{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		items:    make(map[core.CacheKey]*list.Element),
		now:      time.Now,
	}, nil
}

// Get returns the cached prediction for key. Expired entries are
// removed on access and count as misses.
func (c *PredictionCache) Get(key core.CacheKey) (models.Prediction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	ent := el.Value.(*entry)
	if c.now().After(ent.expiresAt) {
		c.removeLocked(el)
		c.misses++
		return nil, false
	}
	c.order.MoveToFront(el)
	c.hits++
	return ent.value, true
}

// Put stores a prediction, evicting the least recently used entry when
// the cache is full. Re-putting an existing key refreshes its value and
// TTL.
func (c *PredictionCache) Put(key core.CacheKey, value models.Prediction) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry)
		ent.value = value
		ent.expiresAt = c.now().Add(c.ttl)
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.removeLocked(oldest)
		}
	}
	el := c.order.PushFront(&entry{key: key, value: value, expiresAt: c.now().Add(c.ttl)})
	c.items[key] = el
}

// Clear empties the cache and resets the hit and miss counters, so a
// flush starts a fresh measurement window.
func (c *PredictionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[core.CacheKey]*list.Element)
	c.hits = 0
	c.misses = 0
}

// Stats reports current counters and occupancy.
func (c *PredictionCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Size: c.order.Len(), MaxSize: c.capacity}
}

func (c *PredictionCache) removeLocked(el *list.Element) {
	ent := el.Value.(*entry)
	c.order.Remove(el)
	delete(c.items, ent.key)
}
