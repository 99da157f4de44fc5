package dataset

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"shoplens/domain/dataset"
	"shoplens/internal"
	"shoplens/ports"
)

// DefaultMaxEntries bounds how many source identities the cache keeps
const DefaultMaxEntries = 4

type entry struct {
	ds       *dataset.Dataset
	loadedAt time.Time
	lastUsed time.Time
}

// CacheStats reports cache effectiveness
type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// Cache holds loaded datasets keyed by the loader's source identity. A
// dataset is immutable, so one cached copy is shared by every request.
// Concurrent misses for the same identity trigger a single load.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]*entry
	maxEntries int
	hits       int64
	misses     int64

	group  singleflight.Group
	logger *internal.Logger
}

// NewCache creates a dataset cache. maxEntries <= 0 uses DefaultMaxEntries.
func NewCache(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		entries:    make(map[string]*entry),
		maxEntries: maxEntries,
		logger:     internal.DefaultLogger,
	}
}

// Get returns the dataset for the loader's current source identity, loading
// it on a miss. A changed identity (for example a rewritten file) is a miss.
// A caller whose ctx ends stops waiting but the load keeps going for the
// others.
func (c *Cache) Get(ctx context.Context, loader ports.DatasetLoader) (*dataset.Dataset, error) {
	id := loader.SourceID()

	c.mu.Lock()
	if e, ok := c.entries[id]; ok {
		e.lastUsed = time.Now()
		c.hits++
		c.mu.Unlock()
		return e.ds, nil
	}
	c.misses++
	c.mu.Unlock()

	// the shared load outlives any single caller
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(id, func() (interface{}, error) {
		start := time.Now()
		ds, err := loader.Load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.store(id, ds)
		c.logger.Info("[DatasetCache] Loaded %s (%d rows, %d columns) in %s", id, ds.Len(), len(ds.Specs()), time.Since(start))
		return ds, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			c.logger.Error("[DatasetCache] Load of %s failed: %v", id, res.Err)
			return nil, res.Err
		}
		return res.Val.(*dataset.Dataset), nil
	}
}

func (c *Cache) store(id string, ds *dataset.Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.entries[id] = &entry{ds: ds, loadedAt: now, lastUsed: now}
	if len(c.entries) <= c.maxEntries {
		return
	}

	ids := make([]string, 0, len(c.entries))
	for k := range c.entries {
		ids = append(ids, k)
	}
	sort.Slice(ids, func(i, j int) bool {
		return c.entries[ids[i]].lastUsed.Before(c.entries[ids[j]].lastUsed)
	})
	for _, k := range ids[:len(ids)-c.maxEntries] {
		c.logger.Debug("[DatasetCache] Evicting %s", k)
		delete(c.entries, k)
	}
}

// Invalidate drops one source identity
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// Stats returns a snapshot of the cache counters
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}
