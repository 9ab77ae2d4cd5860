package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"cotdex/internal"
	"cotdex/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestBadger(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := OpenBadger(BadgerConfig{InMemory: true}, internal.NewLogger(internal.LogLevelError))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// Both backends satisfy the same contract.
func TestStores_RoundTripAndFlush(t *testing.T) {
	stores := map[string]ports.CacheStore{
		"memory": NewMemoryStore(),
		"badger": newTestBadger(t),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := store.Get(ctx, "graph/v1|view=network")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set(ctx, "graph/v1|view=network", []byte(`{"nodes":[]}`), time.Hour))
			got, ok, err := store.Get(ctx, "graph/v1|view=network")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"nodes":[]}`, string(got))

			// last write wins
			require.NoError(t, store.Set(ctx, "graph/v1|view=network", []byte(`{"nodes":[1]}`), time.Hour))
			got, _, _ = store.Get(ctx, "graph/v1|view=network")
			assert.Equal(t, `{"nodes":[1]}`, string(got))

			require.NoError(t, store.Flush(ctx))
			_, ok, err = store.Get(ctx, "graph/v1|view=network")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 18, 9, 0, 0, 0, time.UTC)}
	store := NewMemoryStore().WithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Hour))

	clock.Advance(59 * time.Minute)
	_, ok, _ := store.Get(ctx, "k")
	assert.True(t, ok)

	clock.Advance(time.Minute)
	_, ok, _ = store.Get(ctx, "k")
	assert.False(t, ok, "entry must be absent once its ttl has elapsed")
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_Sweep(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	store := NewMemoryStore().WithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short", []byte("1"), time.Minute))
	require.NoError(t, store.Set(ctx, "long", []byte("2"), time.Hour))
	clock.Advance(2 * time.Minute)

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_SweeperDropsUnreadKeys(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	store := NewMemoryStore().WithClock(clock.Now)
	ctx := context.Background()

	for _, key := range []string{"fu=1", "fu=2", "fu=3"} {
		require.NoError(t, store.Set(ctx, key, []byte("{}"), time.Minute))
	}
	require.NoError(t, store.Set(ctx, "fu=4", []byte("{}"), time.Hour))
	clock.Advance(5 * time.Minute)

	store.StartSweeper(5 * time.Millisecond)
	assert.Eventually(t, func() bool { return store.Len() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

func TestMemoryStore_CopiesPayload(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", buf, time.Hour))
	buf[0] = 'z'

	got, _, _ := store.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}

func TestBadgerStore_Expiry(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a badger ttl to lapse")
	}
	store := newTestBadger(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Second))
	time.Sleep(2100 * time.Millisecond)

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenBadger_RequiresPath(t *testing.T) {
	_, err := OpenBadger(BadgerConfig{}, nil)
	assert.Error(t, err)
}

func TestOpenBadger_OnDisk(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenBadger(BadgerConfig{Path: dir, GCInterval: time.Minute}, internal.NewLogger(internal.LogLevelError))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Hour))
	require.NoError(t, store.Close())

	reopened, err := OpenBadger(BadgerConfig{Path: dir}, internal.NewLogger(internal.LogLevelError))
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(got))
}
