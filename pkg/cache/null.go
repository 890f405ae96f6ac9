package cache

import (
	"context"
	"sync/atomic"
	"time"
)

// NullCache backs runs with caching disabled (render --no-cache, or when no
// cache directory can be resolved). Lookups always miss. Writes are dropped
// but tallied, so the CLI can report how many artifacts and replay logs a
// cached run would have kept.
type NullCache struct {
	dropped      atomic.Int64
	droppedBytes atomic.Int64
}

// NewNullCache returns an empty NullCache.
func NewNullCache() *NullCache {
	return &NullCache{}
}

// Get misses.
func (c *NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards data and counts it.
func (c *NullCache) Set(_ context.Context, _ string, data []byte, _ time.Duration) error {
	c.dropped.Add(1)
	c.droppedBytes.Add(int64(len(data)))
	return nil
}

func (c *NullCache) Delete(context.Context, string) error { return nil }

func (c *NullCache) Close() error { return nil }

// Dropped returns the number of writes discarded so far and their total size.
func (c *NullCache) Dropped() (entries int, bytes int64) {
	return int(c.dropped.Load()), c.droppedBytes.Load()
}

var _ Cache = (*NullCache)(nil)
