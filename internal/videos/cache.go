package videos

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/sohansahooo/vidshort/internal/models"
)

// Lister returns the most recent videos, newest first.
type Lister interface {
	ListRecent(ctx context.Context, limit int) ([]models.Video, error)
}

type cacheEntry struct {
	videos  []models.Video
	expires time.Time
}

// CachingLister wraps another Lister with a TTL-based in-memory cache keyed by
// page size.
type CachingLister struct {
	base Lister
	ttl  time.Duration
	now  func() time.Time

	mu    sync.RWMutex
	items map[int]cacheEntry
	// generation is bumped by Invalidate; a listing fetched under an older
	// generation is returned but never stored.
	generation uint64
}

// NewCachingLister returns a Lister that caches listings for the provided TTL.
func NewCachingLister(base Lister, ttl time.Duration) *CachingLister {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachingLister{
		base:  base,
		ttl:   ttl,
		now:   time.Now,
		items: make(map[int]cacheEntry),
	}
}

// ListRecent returns a cached listing when one is fresh, otherwise it delegates
// to the underlying lister and stores the result. Errors are never cached.
func (c *CachingLister) ListRecent(ctx context.Context, limit int) ([]models.Video, error) {
	if c == nil || c.base == nil {
		return nil, ErrListerUnavailable
	}

	now := c.now()

	c.mu.RLock()
	entry, ok := c.items[limit]
	generation := c.generation
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return slices.Clone(entry.videos), nil
	}

	videos, err := c.base.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.generation == generation {
		c.items[limit] = cacheEntry{videos: slices.Clone(videos), expires: now.Add(c.ttl)}
	}
	c.mu.Unlock()

	return videos, nil
}

// Invalidate drops every cached listing. It is called after a video is created.
func (c *CachingLister) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.generation++
	clear(c.items)
	c.mu.Unlock()
}
