package avatar

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type failingStore struct {
	MemoryStore
}

func (f *failingStore) Load(context.Context, string) (string, bool, error) {
	return "", false, errors.New("unavailable")
}

func (f *failingStore) Save(context.Context, string, string) error {
	return errors.New("unavailable")
}

func TestService_Set(t *testing.T) {
	svc := NewChackService(NewMemoryStore(), discardLogger())
	ctx := context.Background()

	var fired []string
	svc.Subscribe(func(e string) { fired = append(fired, e) })

	assert.Equal(t, Neutral, svc.Current())

	got, err := svc.Set(ctx, "happy")
	require.NoError(t, err)
	assert.Equal(t, "Happy", got)

	_, err = svc.Set(ctx, "Happy")
	require.NoError(t, err)

	_, err = svc.Set(ctx, "HEAVYMETAL")
	require.NoError(t, err)

	assert.Equal(t, []string{"Happy", "HeavyMetal"}, fired)
	assert.Equal(t, "HeavyMetal", svc.Current())
}

func TestService_ConcurrentSetBroadcastsInOrder(t *testing.T) {
	store := NewMemoryStore()
	svc := NewChackService(store, discardLogger())
	ctx := context.Background()

	var mu sync.Mutex
	var fired []string
	svc.Subscribe(func(e string) {
		// A slow subscriber widens the window between state change and delivery.
		time.Sleep(50 * time.Microsecond)
		mu.Lock()
		fired = append(fired, e)
		mu.Unlock()
	})

	emotions := []string{"Happy", "Excited", "Sad", "Neutral"}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := svc.Set(ctx, emotions[(i+j)%len(emotions)])
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, fired)
	for i := 1; i < len(fired); i++ {
		require.NotEqual(t, fired[i-1], fired[i], "consecutive notifications must differ (index %d)", i)
	}

	current := svc.Current()
	assert.Equal(t, current, fired[len(fired)-1], "last notification matches the current emotion")

	stored, ok, err := store.Load(ctx, CharacterChack)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, current, stored, "store holds the current emotion")
}

func TestService_SetInvalid(t *testing.T) {
	tests := []struct {
		name    string
		svc     *Service
		emotion string
	}{
		{name: "drew cannot be evil", svc: NewDrewService(NewMemoryStore(), discardLogger()).Service, emotion: "Evil"},
		{name: "chack cannot be scared", svc: NewChackService(NewMemoryStore(), discardLogger()).Service, emotion: "Scared"},
		{name: "empty", svc: NewChackService(NewMemoryStore(), discardLogger()).Service, emotion: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fired := false
			tt.svc.Subscribe(func(string) { fired = true })

			_, err := tt.svc.Set(context.Background(), tt.emotion)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "Neutral, Happy, Excited")
			assert.False(t, fired)
			assert.Equal(t, Neutral, tt.svc.Current())
		})
	}
}

func TestService_PersistsAndRestores(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := NewDrewService(store, discardLogger())
	_, err := first.Set(ctx, "Scared")
	require.NoError(t, err)

	second := NewDrewService(store, discardLogger())
	fired := false
	second.Subscribe(func(string) { fired = true })
	require.NoError(t, second.Restore(ctx))

	assert.Equal(t, "Scared", second.Current())
	assert.False(t, fired)

	// A different character does not see Drew's state.
	chack := NewChackService(store, discardLogger())
	require.NoError(t, chack.Restore(ctx))
	assert.Equal(t, Neutral, chack.Current())
}

func TestService_RestoreIgnoresUnknownValue(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), CharacterDrew, "Evil"))

	svc := NewDrewService(store, discardLogger())
	require.NoError(t, svc.Restore(context.Background()))
	assert.Equal(t, Neutral, svc.Current())
}

func TestService_StoreFailureDoesNotBlockChange(t *testing.T) {
	svc := NewChackService(&failingStore{}, discardLogger())

	got, err := svc.Set(context.Background(), "Sad")
	require.NoError(t, err)
	assert.Equal(t, "Sad", got)
	assert.Equal(t, "Sad", svc.Current())
	assert.Error(t, svc.Restore(context.Background()))
}

func TestRedisStore_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	store := NewRedisStore(client, "test:")
	t.Cleanup(func() { _ = store.Close() })

	assert.Equal(t, "test:avatar:chack:emotion", store.key(CharacterChack))

	ctx := context.Background()
	_, _, err := store.Load(ctx, CharacterChack)
	assert.Error(t, err)
	assert.Error(t, store.Save(ctx, CharacterChack, "Happy"))
	assert.Error(t, store.Check(ctx))
}
