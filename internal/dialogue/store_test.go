package dialogue

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/meeting-assistant/internal/meetings"
)

func samplePending() *meetings.Meeting {
	start := time.Date(2026, 10, 23, 14, 0, 0, 0, time.UTC)
	return meetings.New("m-1", "s", "Alice", start, meetings.KnownMinutes(30), monday)
}

func TestMemoryStoreRoundTripIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10, time.Hour)

	fresh, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "s", fresh.SessionID)
	assert.Nil(t, fresh.Pending)

	fresh.Customer = "Alice"
	fresh.Pending = samplePending()
	require.NoError(t, store.Save(ctx, fresh))

	fresh.Customer = "changed after save"
	fresh.Pending.Customer = "changed after save"

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "Alice", loaded.Customer)
	assert.Equal(t, "Alice", loaded.Pending.Customer)

	require.NoError(t, store.Delete(ctx, "s"))
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreEvictsOldestSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(2, 0)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Save(ctx, &State{SessionID: id, Customer: id}))
	}

	assert.Equal(t, 2, store.Len())
	st, _ := store.Load(ctx, "a")
	assert.Empty(t, st.Customer)
}

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	k := newKeyedMutex()
	ctx := context.Background()

	var mu sync.Mutex
	inside, maxInside := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := k.Lock(ctx, "s")
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside)
	assert.Equal(t, 0, k.size(), "idle keys are dropped")
}

func TestKeyedMutexDifferentKeysDoNotContend(t *testing.T) {
	k := newKeyedMutex()
	ctx := context.Background()

	unlockA, err := k.Lock(ctx, "a")
	require.NoError(t, err)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB, err := k.Lock(ctx, "b")
		if err == nil {
			unlockB()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked behind a")
	}
}

func TestKeyedMutexHonoursContext(t *testing.T) {
	k := newKeyedMutex()
	unlock, err := k.Lock(context.Background(), "s")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = k.Lock(ctx, "s")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // second call is a no-op
	assert.Equal(t, 0, k.size())
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Hour, time.Second, nil), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	fresh, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Nil(t, fresh.Pending)

	open := samplePending()
	open.Duration = meetings.UnknownMinutes()
	open.End = nil
	state := &State{SessionID: "s", Customer: "Alice", Pending: open, UpdatedAt: monday}
	require.NoError(t, store.Save(ctx, state))
	assert.True(t, mr.Exists("meeting_session:s"))
	assert.Equal(t, time.Hour, mr.TTL("meeting_session:s"))

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "Alice", loaded.Customer)
	require.NotNil(t, loaded.Pending)
	assert.Equal(t, open.Details(), loaded.Pending.Details())
	assert.Nil(t, loaded.Pending.End)

	require.NoError(t, store.Delete(ctx, "s"))
	assert.False(t, mr.Exists("meeting_session:s"))
}

func TestRedisStoreCorruptState(t *testing.T) {
	store, mr := newRedisStore(t)
	require.NoError(t, mr.Set("meeting_session:s", "{not json"))

	_, err := store.Load(context.Background(), "s")
	assert.Error(t, err)
}

func TestRedisStoreLock(t *testing.T) {
	store, mr := newRedisStore(t)

	unlock, err := store.Lock(context.Background(), "s")
	require.NoError(t, err)
	assert.True(t, mr.Exists("meeting_session_lock:s"))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_, err = store.Lock(ctx, "s")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.False(t, mr.Exists("meeting_session_lock:s"))

	again, err := store.Lock(context.Background(), "s")
	require.NoError(t, err)
	again()
}

func TestRedisStoreUnlockKeepsForeignLock(t *testing.T) {
	store, mr := newRedisStore(t)

	unlock, err := store.Lock(context.Background(), "s")
	require.NoError(t, err)

	// Lock expired and another replica took it.
	require.NoError(t, mr.Set("meeting_session_lock:s", "someone-else"))
	unlock()

	got, err := mr.Get("meeting_session_lock:s")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestEngineWithRedisStore(t *testing.T) {
	store, _ := newRedisStore(t)
	e := NewEngine(store, nil, WithClock(func() time.Time { return monday }))

	turn(t, e, "s", "customer is Alice")
	pending := turn(t, e, "s", "schedule a meeting next monday at 3pm for 45 minutes")
	confirmed := turn(t, e, "s", "yes confirm")

	assert.Equal(t, StatusConfirmed, confirmed.Status)
	assert.Equal(t, *pending.Meeting, *confirmed.Meeting)
}
