package likecache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bizdir/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	businesses []domain.Business
	statuses   map[string]domain.LikeStatus
	failing    map[string]bool
	listErr    error

	lists   atomic.Int32
	lookups atomic.Int32
	gate    chan struct{}
}

func (f *fakeFetcher) ListBusinesses(ctx context.Context, _, _ string) ([]domain.Business, error) {
	f.lists.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	return f.businesses, f.listErr
}

func (f *fakeFetcher) LikeStatus(ctx context.Context, userID, businessID string) (domain.LikeStatus, error) {
	f.lookups.Add(1)
	if err := ctx.Err(); err != nil {
		return domain.LikeStatus{}, err
	}
	if f.failing[businessID] {
		return domain.LikeStatus{}, errors.New("boom")
	}
	return f.statuses[businessID], nil
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newFetcher() *fakeFetcher {
	return &fakeFetcher{
		businesses: []domain.Business{{ID: "b1"}, {ID: "b2"}, {ID: "b3"}},
		statuses: map[string]domain.LikeStatus{
			"b1": {Liked: true, Count: 4},
			"b2": {Liked: false, Count: 2},
			"b3": {Liked: true, Count: 1},
		},
		failing: map[string]bool{},
	}
}

func TestStatus_UnknownIsZeroWithoutFetching(t *testing.T) {
	f := newFetcher()
	c := New(f)

	assert.Equal(t, domain.LikeStatus{Liked: false, Count: 0}, c.Status("nope"))
	assert.EqualValues(t, 0, f.lists.Load())
	assert.EqualValues(t, 0, f.lookups.Load())
}

func TestRefreshAll_OncePerWindow(t *testing.T) {
	f := newFetcher()
	clk := &clock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	c := New(f, WithClock(clk.Now))
	ctx := context.Background()

	refreshed, err := c.RefreshAll(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, refreshed)

	refreshed, err = c.RefreshAll(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, refreshed)

	assert.EqualValues(t, 1, f.lists.Load())
	assert.EqualValues(t, 3, f.lookups.Load())
	assert.Equal(t, domain.LikeStatus{Liked: true, Count: 4}, c.Status("b1"))

	clk.Advance(59 * time.Minute)
	refreshed, _ = c.RefreshAll(ctx, "u1")
	assert.False(t, refreshed)

	clk.Advance(time.Minute)
	refreshed, err = c.RefreshAll(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.EqualValues(t, 2, f.lists.Load())
}

func TestRefreshAll_ConcurrentCallsFetchOnce(t *testing.T) {
	f := newFetcher()
	f.gate = make(chan struct{})
	c := New(f)
	ctx := context.Background()

	first := make(chan bool)
	go func() {
		refreshed, _ := c.RefreshAll(ctx, "u1")
		first <- refreshed
	}()
	require.Eventually(t, func() bool { return f.lists.Load() == 1 }, time.Second, time.Millisecond)

	refreshed, err := c.RefreshAll(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, refreshed, "a refresh in flight makes the second call a no-op")

	close(f.gate)
	assert.True(t, <-first)
	assert.EqualValues(t, 1, f.lists.Load())
}

func TestRefreshAll_ItemFailureDefaultsEntry(t *testing.T) {
	f := newFetcher()
	f.failing["b1"] = true
	c := New(f)

	c.ApplyToggleResult(context.Background(), "b1", true, 9)
	_, err := c.RefreshAll(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, domain.LikeStatus{}, c.Status("b1"))
	assert.Equal(t, domain.LikeStatus{Liked: true, Count: 1}, c.Status("b3"))
	assert.Equal(t, 3, c.Len())
}

func TestRefreshAll_ListFailureKeepsCache(t *testing.T) {
	f := newFetcher()
	f.listErr = errors.New("offline")
	c := New(f)
	c.ApplyToggleResult(context.Background(), "b1", true, 5)

	refreshed, err := c.RefreshAll(context.Background(), "u1")
	require.Error(t, err)
	assert.False(t, refreshed)
	assert.Equal(t, domain.LikeStatus{Liked: true, Count: 5}, c.Status("b1"))
	assert.True(t, c.Stale())
}

func TestRefreshAll_CancelledContextKeepsCache(t *testing.T) {
	f := newFetcher()
	c := New(f)
	c.ApplyToggleResult(context.Background(), "b1", true, 7)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	refreshed, err := c.RefreshAll(ctx, "u1")
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, refreshed)
	assert.Equal(t, domain.LikeStatus{Liked: true, Count: 7}, c.Status("b1"))
	assert.True(t, c.Stale())

	refreshed, err = c.RefreshAll(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, domain.LikeStatus{Liked: true, Count: 4}, c.Status("b1"))
}

func TestApplyToggleResultAndEvents(t *testing.T) {
	c := New(newFetcher())
	ctx := context.Background()
	_, err := c.RefreshAll(ctx, "u1")
	require.NoError(t, err)

	c.ApplyToggleResult(ctx, "b2", true, 3)
	assert.Equal(t, domain.LikeStatus{Liked: true, Count: 3}, c.Status("b2"))

	events := make(chan domain.LikeEvent, 3)
	events <- domain.LikeEvent{BusinessID: "b1", Count: 5}
	events <- domain.LikeEvent{BusinessID: "b3", Count: 0}
	events <- domain.LikeEvent{BusinessID: "unknown", Count: 1}
	close(events)
	c.Follow(ctx, events)

	assert.Equal(t, domain.LikeStatus{Liked: true, Count: 5}, c.Status("b1"))
	assert.Equal(t, domain.LikeStatus{Liked: true, Count: 0}, c.Status("b3"), "events never touch the liked flag")
	assert.Equal(t, domain.LikeStatus{}, c.Status("unknown"))
	assert.Equal(t, 3, c.Len())
}

func TestSnapshot_ToggleSurvivesReload(t *testing.T) {
	clk := &clock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := NewFileStore(t.TempDir() + "/likes.json")
	ctx := context.Background()

	c := New(newFetcher(), WithStore(store), WithClock(clk.Now))
	_, err := c.RefreshAll(ctx, "u1")
	require.NoError(t, err)

	c.ApplyToggleResult(ctx, "b1", false, 3)
	c.Apply(ctx, domain.LikeEvent{BusinessID: "b2", Count: 6})

	reloaded := New(newFetcher(), WithStore(store), WithClock(clk.Now))
	ok, err := reloaded.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.LikeStatus{Liked: false, Count: 3}, reloaded.Status("b1"))
	assert.Equal(t, domain.LikeStatus{Liked: false, Count: 6}, reloaded.Status("b2"))
}

func TestClear_DropsRefreshInFlight(t *testing.T) {
	f := newFetcher()
	f.gate = make(chan struct{})
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	c := New(f, WithStore(NewRedisStore(rdb, "")))
	ctx := context.Background()

	done := make(chan bool)
	go func() {
		refreshed, _ := c.RefreshAll(ctx, "u1")
		done <- refreshed
	}()
	require.Eventually(t, func() bool { return f.lists.Load() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, c.Clear(ctx))
	close(f.gate)

	assert.False(t, <-done)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, domain.LikeStatus{}, c.Status("b1"))
	assert.True(t, c.Stale())
	assert.False(t, mr.Exists(SnapshotKey))
}

func TestRestore_SkipsNonEmptyCache(t *testing.T) {
	store := NewFileStore(t.TempDir() + "/likes.json")
	ctx := context.Background()

	_, err := New(newFetcher(), WithStore(store)).RefreshAll(ctx, "u1")
	require.NoError(t, err)

	c := New(newFetcher(), WithStore(store))
	c.ApplyToggleResult(ctx, "b9", true, 1)
	ok, err := c.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestSnapshot_RedisRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	clk := &clock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := NewRedisStore(rdb, "")
	ctx := context.Background()

	c := New(newFetcher(), WithStore(store), WithClock(clk.Now))
	_, err := c.RefreshAll(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(SnapshotKey))

	f := newFetcher()
	restored := New(f, WithStore(store), WithClock(clk.Now))
	ok, err := restored.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.LikeStatus{Liked: true, Count: 4}, restored.Status("b1"))

	refreshed, _ := restored.RefreshAll(ctx, "u1")
	assert.False(t, refreshed, "restored timestamp keeps the window")
	assert.EqualValues(t, 0, f.lists.Load())

	require.NoError(t, restored.Clear(ctx))
	assert.False(t, mr.Exists(SnapshotKey))
	assert.Equal(t, 0, restored.Len())
}

func TestSnapshot_FileExpiryAndVersion(t *testing.T) {
	clk := &clock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := NewFileStore(t.TempDir() + "/cache/likes.json")
	ctx := context.Background()

	ok, err := New(newFetcher(), WithStore(store)).Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	c := New(newFetcher(), WithStore(store), WithClock(clk.Now))
	_, err = c.RefreshAll(ctx, "u1")
	require.NoError(t, err)

	clk.Advance(2 * time.Hour)
	ok, err = New(newFetcher(), WithStore(store), WithClock(clk.Now)).Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "expired snapshot is ignored")

	require.NoError(t, store.Save(ctx, []byte(`{"key":"bizdir:likes","version":99,"savedAt":"2024-03-01T12:00:00Z","ttl":3600000,"entries":{}}`), time.Hour))
	ok, err = New(newFetcher(), WithStore(store), WithClock(clk.Now)).Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "other schema versions are ignored")

	require.NoError(t, store.Delete(ctx))
	require.NoError(t, store.Delete(ctx))
}
