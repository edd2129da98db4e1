package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type draft struct {
	Name string `json:"name"`
	Age  *int   `json:"age,omitempty"`
}

const stateAsking State = "asking"

func TestMemoryManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager[draft]()

	s, err := m.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, s.Idle())

	require.NoError(t, m.Set(ctx, 1, Session[draft]{State: stateAsking, Data: draft{Name: "Jane"}}))
	s, err = m.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, stateAsking, s.State)
	assert.Equal(t, "Jane", s.Data.Name)

	require.NoError(t, m.Clear(ctx, 1))
	s, err = m.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, s.Idle())
	assert.Empty(t, s.Data.Name)
}

func TestMemoryManagerIdleSetDeletes(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager[draft]().(*memoryManager[draft])

	require.NoError(t, m.Set(ctx, 7, Session[draft]{State: stateAsking}))
	require.Len(t, m.sessions, 1)
	require.NoError(t, m.Set(ctx, 7, Session[draft]{State: StateIdle}))
	assert.Empty(t, m.sessions)
}

type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	ttl  map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, exp time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttl[key] = exp
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisManagerRoundTrip(t *testing.T) {
	ctx := context.Background()
	fr := newFakeRedis()
	m := NewRedisManager[draft](fr, "reg", 15*time.Minute)

	assert.Equal(t, "reg:42", m.Key(42))

	s, err := m.Get(ctx, 42)
	require.NoError(t, err)
	assert.True(t, s.Idle())

	age := 21
	require.NoError(t, m.Set(ctx, 42, Session[draft]{State: stateAsking, Data: draft{Name: "Jane", Age: &age}}))
	assert.Equal(t, 15*time.Minute, fr.ttl["reg:42"])
	assert.JSONEq(t, `{"state":"asking","data":{"name":"Jane","age":21}}`, fr.data["reg:42"])

	s, err = m.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, stateAsking, s.State)
	require.NotNil(t, s.Data.Age)
	assert.Equal(t, 21, *s.Data.Age)

	require.NoError(t, m.Set(ctx, 42, Session[draft]{State: StateIdle}))
	assert.NotContains(t, fr.data, "reg:42")
}

func TestRedisManagerCorruptValue(t *testing.T) {
	fr := newFakeRedis()
	fr.data["fsm:1"] = "{not json"
	m := NewRedisManager[draft](fr, "", 0)

	_, err := m.Get(context.Background(), 1)
	require.Error(t, err)
}

func TestKeyedLockerSerializesSameUser(t *testing.T) {
	locker := NewKeyedLocker()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock(5)
			defer unlock()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, locker.Len())
}

func TestKeyedLockerIndependentUsers(t *testing.T) {
	locker := NewKeyedLocker()
	unlockA := locker.Lock(1)
	done := make(chan struct{})
	go func() {
		unlockB := locker.Lock(2)
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for user 2 blocked on user 1")
	}
	unlockA()
	assert.Equal(t, 0, locker.Len())
}
