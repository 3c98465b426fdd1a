package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestKVStore connects to TEST_DATABASE_URL, skipping when it is unset.
func setupTestKVStore(t *testing.T) *KVStore {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, `DELETE FROM ephemeral_kv`)
	require.NoError(t, err)

	return NewKVStore(db)
}

func TestKVStore_SetGetTake(t *testing.T) {
	store := setupTestKVStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "credentials:hubspot:org:user", []byte(`{"a":1}`), time.Minute))

	value, err := store.Get(ctx, "credentials:hubspot:org:user")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(value))

	value, err = store.Take(ctx, "credentials:hubspot:org:user")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(value))

	value, err = store.Take(ctx, "credentials:hubspot:org:user")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestKVStore_Upsert(t *testing.T) {
	store := setupTestKVStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("first"), time.Minute))
	require.NoError(t, store.Set(ctx, "k", []byte("second"), time.Minute))

	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "second", string(value))
}

func TestKVStore_Expiry(t *testing.T) {
	store := setupTestKVStore(t)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }
	require.NoError(t, store.Set(ctx, "state:notion:org:user", []byte("token"), time.Minute))

	store.now = func() time.Time { return now.Add(time.Minute) }

	value, err := store.Get(ctx, "state:notion:org:user")
	require.NoError(t, err)
	assert.Nil(t, value, "key must be invisible at its expiry instant")

	removed, err := store.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestKVStore_Delete(t *testing.T) {
	store := setupTestKVStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))

	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestKVStore_RejectsNonPositiveTTL(t *testing.T) {
	store := NewKVStore(nil)
	err := store.Set(context.Background(), "k", []byte("v"), 0)
	assert.Error(t, err)
}
