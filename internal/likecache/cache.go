// Package likecache keeps per-business like status on the client side so a
// page can render without one request per business.
package likecache

import (
	"context"
	"sync"
	"time"

	"bizdir/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWindow      = time.Hour
	DefaultConcurrency = 8
)

// Fetcher is the slice of the API the cache reads from.
type Fetcher interface {
	ListBusinesses(ctx context.Context, typ, city string) ([]domain.Business, error)
	LikeStatus(ctx context.Context, userID, businessID string) (domain.LikeStatus, error)
}

// Cache holds one like status per business. It starts empty, is populated
// by RefreshAll and goes stale after the refresh window. Create one per
// signed-in session and Clear it on logout.
type Cache struct {
	fetcher     Fetcher
	store       Store
	window      time.Duration
	concurrency int
	now         func() time.Time
	log         *zap.Logger

	mu        sync.RWMutex
	entries   map[string]domain.LikeStatus
	lastFetch time.Time
	fetching  bool
	gen       uint64 // bumped by Clear
	rev       uint64 // bumped by every mutation

	saveMu sync.Mutex
	saved  uint64 // rev of the last persisted snapshot
}

type Option func(*Cache)

func WithWindow(d time.Duration) Option {
	return func(c *Cache) { c.window = d }
}

// WithStore persists the cache after every change and lets Restore reload it.
func WithStore(s Store) Option {
	return func(c *Cache) { c.store = s }
}

func WithConcurrency(n int) Option {
	return func(c *Cache) { c.concurrency = n }
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) { c.log = l }
}

func New(fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetcher:     fetcher,
		window:      DefaultWindow,
		concurrency: DefaultConcurrency,
		now:         time.Now,
		log:         zap.L(),
		entries:     map[string]domain.LikeStatus{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.concurrency <= 0 {
		c.concurrency = DefaultConcurrency
	}
	return c
}

// Status returns the cached status of businessID, or the zero status when
// it is unknown. It never fetches.
func (c *Cache) Status(businessID string) domain.LikeStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[businessID]
}

// Len is the number of cached businesses.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// LastFetch is when the cache was last fully populated.
func (c *Cache) LastFetch() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastFetch
}

// Stale reports whether RefreshAll would fetch right now.
func (c *Cache) Stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.staleLocked()
}

func (c *Cache) staleLocked() bool {
	return c.lastFetch.IsZero() || c.now().Sub(c.lastFetch) >= c.window
}

// RefreshAll rebuilds the cache for userID when it is stale and no other
// refresh is running. It reports whether a refresh happened. A failing
// per-business lookup stores the zero status for that business. Failing to
// list businesses or an ended ctx aborts and leaves the cache untouched, as
// does a Clear while the refresh was running.
func (c *Cache) RefreshAll(ctx context.Context, userID string) (bool, error) {
	c.mu.Lock()
	if c.fetching || !c.staleLocked() {
		c.mu.Unlock()
		return false, nil
	}
	c.fetching = true
	gen := c.gen
	c.mu.Unlock()

	entries, err := c.fetchAll(ctx, userID)

	c.mu.Lock()
	c.fetching = false
	if err != nil {
		c.mu.Unlock()
		return false, err
	}
	if c.gen != gen {
		c.mu.Unlock()
		c.log.Debug("like cache cleared during refresh, result dropped")
		return false, nil
	}
	c.entries = entries
	c.lastFetch = c.now()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.log.Debug("like cache refreshed", zap.Int("businesses", len(entries)))
	c.persist(ctx, snap)
	return true, nil
}

func (c *Cache) fetchAll(ctx context.Context, userID string) (map[string]domain.LikeStatus, error) {
	businesses, err := c.fetcher.ListBusinesses(ctx, "", "")
	if err != nil {
		return nil, err
	}

	statuses := make([]domain.LikeStatus, len(businesses))
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, b := range businesses {
		g.Go(func() error {
			st, err := c.fetcher.LikeStatus(ctx, userID, b.ID)
			if err != nil {
				c.log.Warn("like status fetch failed", zap.String("business", b.ID), zap.Error(err))
				return nil
			}
			statuses[i] = st
			return nil
		})
	}
	_ = g.Wait()

	// a cancelled ctx fails every lookup, not one item
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := make(map[string]domain.LikeStatus, len(businesses))
	for i, b := range businesses {
		entries[b.ID] = statuses[i]
	}
	return entries, nil
}

// ApplyToggleResult overwrites one entry with a server toggle outcome and
// persists the cache.
func (c *Cache) ApplyToggleResult(ctx context.Context, businessID string, liked bool, count int64) {
	c.mu.Lock()
	c.entries[businessID] = domain.LikeStatus{Liked: liked, Count: count}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.persist(ctx, snap)
}

// Apply folds a live event into the cache. Events only move the count of
// businesses the cache already holds; the liked flag changes through
// ApplyToggleResult.
func (c *Cache) Apply(ctx context.Context, ev domain.LikeEvent) {
	c.mu.Lock()
	st, ok := c.entries[ev.BusinessID]
	if !ok || st.Count == ev.Count {
		c.mu.Unlock()
		return
	}
	st.Count = ev.Count
	c.entries[ev.BusinessID] = st
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.persist(ctx, snap)
}

// Follow applies events until the channel closes or ctx ends.
func (c *Cache) Follow(ctx context.Context, events <-chan domain.LikeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.Apply(ctx, ev)
		}
	}
}

// Clear empties the cache and removes any persisted snapshot. A refresh
// still running for the previous session is discarded when it returns.
func (c *Cache) Clear(ctx context.Context) error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.Lock()
	c.gen++
	c.rev++
	c.entries = map[string]domain.LikeStatus{}
	c.lastFetch = time.Time{}
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	return c.store.Delete(ctx)
}
