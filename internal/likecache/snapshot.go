package likecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bizdir/internal/domain"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const (
	SnapshotKey     = "bizdir:likes"
	SnapshotVersion = 1
)

// ErrNoSnapshot is returned by a Store that holds nothing.
var ErrNoSnapshot = errors.New("no like cache snapshot")

// Store keeps one serialized snapshot.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte, ttl time.Duration) error
	Delete(ctx context.Context) error
}

// Snapshot is the persisted form of the cache. A snapshot with another
// version or older than TTL is discarded on restore.
type Snapshot struct {
	Key       string                       `json:"key"`
	Version   int                          `json:"version"`
	SavedAt   time.Time                    `json:"savedAt"`
	TTL       int64                        `json:"ttl"`
	LastFetch time.Time                    `json:"lastFetch"`
	Entries   map[string]domain.LikeStatus `json:"entries"`
}

func (s Snapshot) expired(now time.Time) bool {
	return now.Sub(s.SavedAt) >= time.Duration(s.TTL)*time.Millisecond
}

// pendingSnapshot is a snapshot plus the cache state it was taken from.
type pendingSnapshot struct {
	Snapshot
	gen, rev uint64
}

// snapshotLocked copies the cache for persisting. Callers hold c.mu and
// have just mutated the cache.
func (c *Cache) snapshotLocked() pendingSnapshot {
	c.rev++
	entries := make(map[string]domain.LikeStatus, len(c.entries))
	for k, v := range c.entries {
		entries[k] = v
	}
	return pendingSnapshot{
		Snapshot: Snapshot{
			Key:       SnapshotKey,
			Version:   SnapshotVersion,
			SavedAt:   c.now(),
			TTL:       c.window.Milliseconds(),
			LastFetch: c.lastFetch,
			Entries:   entries,
		},
		gen: c.gen,
		rev: c.rev,
	}
}

// persist saves snap unless the cache was cleared since it was taken or a
// newer snapshot is already stored.
func (c *Cache) persist(ctx context.Context, snap pendingSnapshot) {
	if c.store == nil {
		return
	}

	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()
	if snap.gen != gen || snap.rev <= c.saved {
		return
	}

	data, err := json.Marshal(snap.Snapshot)
	if err != nil {
		c.log.Warn("encode like cache snapshot", zap.Error(err))
		return
	}
	if err := c.store.Save(ctx, data, c.window); err != nil {
		c.log.Warn("save like cache snapshot", zap.Error(err))
		return
	}
	c.saved = snap.rev
}

// Restore loads a persisted snapshot into an empty cache. It reports
// whether anything was restored; stale or foreign snapshots are ignored.
func (c *Cache) Restore(ctx context.Context) (bool, error) {
	if c.store == nil {
		return false, nil
	}

	data, err := c.store.Load(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return false, fmt.Errorf("decode like cache snapshot: %w", err)
	}
	if snap.Key != SnapshotKey || snap.Version != SnapshotVersion || snap.expired(c.now()) {
		c.log.Debug("discarding like cache snapshot", zap.Int("version", snap.Version), zap.Time("savedAt", snap.SavedAt))
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) > 0 {
		return false, nil
	}
	c.entries = snap.Entries
	if c.entries == nil {
		c.entries = map[string]domain.LikeStatus{}
	}
	c.lastFetch = snap.LastFetch
	return true, nil
}
