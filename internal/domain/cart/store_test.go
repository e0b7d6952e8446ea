package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTTL = 24 * time.Hour

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewStore(client, testTTL), mr
}

func TestGetAbsentCartReturnsEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	c, err := store.Get(context.Background(), 42)

	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Equal(t, int64(42), c.OwnerID)
}

func TestAddItemCreatesKeyedCart(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	c, err := store.AddItem(ctx, 42, 10, "Margherita Pizza", 1250, 2)

	require.NoError(t, err)
	assert.Equal(t, int64(2500), c.Total)
	assert.True(t, mr.Exists("cart:user:42"))

	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, c.Total, got.Total)
	assert.Equal(t, c.Version, got.Version)
}

func TestWritesReArmTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, 42, 10, "Pad Thai", 900, 1)
	require.NoError(t, err)
	assert.Equal(t, testTTL, mr.TTL("cart:user:42"))

	// Burn half the window, then write again.
	mr.FastForward(12 * time.Hour)
	_, err = store.AddItem(ctx, 42, 11, "Spring Rolls", 450, 1)
	require.NoError(t, err)

	assert.Equal(t, testTTL, mr.TTL("cart:user:42"))
}

func TestExpiredCartReadsAsEmpty(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, 42, 10, "Pad Thai", 900, 1)
	require.NoError(t, err)

	mr.FastForward(testTTL + time.Minute)

	c, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestSetItemQuantityOnAbsentCart(t *testing.T) {
	store, mr := newTestStore(t)

	_, err := store.SetItemQuantity(context.Background(), 42, 10, 3)

	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.False(t, mr.Exists("cart:user:42"))
}

func TestStoreSetItemQuantityUnknownItem(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, 42, 10, "Pad Thai", 900, 1)
	require.NoError(t, err)

	_, err = store.SetItemQuantity(ctx, 42, 99, 3)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRemoveItemOnAbsentCartCreatesNothing(t *testing.T) {
	store, mr := newTestStore(t)

	c, err := store.RemoveItem(context.Background(), 42, 10)

	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.False(t, mr.Exists("cart:user:42"))
}

func TestClearIsIdempotent(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, 42, 10, "Pad Thai", 900, 1)
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx, 42))
	require.NoError(t, store.Clear(ctx, 42))
	assert.False(t, mr.Exists("cart:user:42"))
}

func TestClearIfUnchangedDeletesMatchingVersion(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	c, err := store.AddItem(ctx, 42, 10, "Pad Thai", 900, 1)
	require.NoError(t, err)

	cleared, err := store.ClearIfUnchanged(ctx, 42, c.Version)

	require.NoError(t, err)
	assert.True(t, cleared)
	assert.False(t, mr.Exists("cart:user:42"))
}

func TestClearIfUnchangedKeepsMutatedCart(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	c, err := store.AddItem(ctx, 42, 10, "Pad Thai", 900, 1)
	require.NoError(t, err)

	// Another writer lands after the snapshot.
	_, err = store.AddItem(ctx, 42, 11, "Spring Rolls", 450, 2)
	require.NoError(t, err)

	cleared, err := store.ClearIfUnchanged(ctx, 42, c.Version)

	require.NoError(t, err)
	assert.False(t, cleared)
	assert.True(t, mr.Exists("cart:user:42"))

	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
}

func TestClearIfUnchangedOnAbsentCart(t *testing.T) {
	store, _ := newTestStore(t)

	cleared, err := store.ClearIfUnchanged(context.Background(), 42, 3)

	require.NoError(t, err)
	assert.True(t, cleared)
}

// Concurrent increments of the same line must not lose updates.
func TestConcurrentAddItem(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	const writers = 20

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.AddItem(ctx, 42, 10, "Pad Thai", 900, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	c, err := store.Get(ctx, 42)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, writers, c.Items[0].Quantity)
	assert.Equal(t, int64(writers)*900, c.Total)
	assert.Equal(t, int64(writers), c.Version)
}
