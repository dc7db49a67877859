package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// PopularCache holds the random fallback sample shown when no recipe has
// likes. At most one refresh runs per expiry window.
type PopularCache struct {
	mu          sync.RWMutex
	ids         []uuid.UUID
	refreshedAt time.Time
	ttl         time.Duration
	now         func() time.Time
	group       singleflight.Group
}

func NewPopularCache(ttl time.Duration) *PopularCache {
	return &PopularCache{ttl: ttl, now: time.Now}
}

func (c *PopularCache) fresh() ([]uuid.UUID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ids == nil || c.now().Sub(c.refreshedAt) >= c.ttl {
		return nil, false
	}
	out := make([]uuid.UUID, len(c.ids))
	copy(out, c.ids)
	return out, true
}

// Get returns the cached sample, calling load when it is missing or stale.
// An empty sample is returned but not cached. The load is detached from
// the cancellation of the caller that started it.
func (c *PopularCache) Get(ctx context.Context, load func(context.Context) ([]uuid.UUID, error)) ([]uuid.UUID, error) {
	if ids, ok := c.fresh(); ok {
		return ids, nil
	}

	v, err, _ := c.group.Do("popular", func() (interface{}, error) {
		if ids, ok := c.fresh(); ok {
			return ids, nil
		}
		ids, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			c.mu.Lock()
			c.ids = ids
			c.refreshedAt = c.now()
			c.mu.Unlock()
		}
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	ids := v.([]uuid.UUID)
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	return out, nil
}

// Invalidate drops the sample so the next Get reloads it.
func (c *PopularCache) Invalidate() {
	c.mu.Lock()
	c.ids = nil
	c.mu.Unlock()
}
