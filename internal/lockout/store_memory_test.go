package lockout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_LocksAfterThreshold(t *testing.T) {
	store := NewMemoryStore(3, time.Minute)
	ctx := context.Background()

	for i := int64(1); i <= 2; i++ {
		count, err := store.RecordFailure(ctx, "ada@x.com")
		require.NoError(t, err)
		assert.Equal(t, i, count)

		locked, err := store.IsLocked(ctx, "ada@x.com")
		require.NoError(t, err)
		assert.False(t, locked)
	}

	_, err := store.RecordFailure(ctx, "ada@x.com")
	require.NoError(t, err)

	locked, err := store.IsLocked(ctx, "ada@x.com")
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestMemoryStore_IdentifiersAreIndependent(t *testing.T) {
	store := NewMemoryStore(1, time.Minute)
	ctx := context.Background()

	_, err := store.RecordFailure(ctx, "ada@x.com")
	require.NoError(t, err)

	locked, err := store.IsLocked(ctx, "grace@x.com")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestMemoryStore_ClearUnlocks(t *testing.T) {
	store := NewMemoryStore(1, time.Minute)
	ctx := context.Background()

	_, err := store.RecordFailure(ctx, "ada@x.com")
	require.NoError(t, err)

	locked, err := store.IsLocked(ctx, "ada@x.com")
	require.NoError(t, err)
	require.True(t, locked)

	require.NoError(t, store.Clear(ctx, "ada@x.com"))

	locked, err = store.IsLocked(ctx, "ada@x.com")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestMemoryStore_WindowExpiryResetsCount(t *testing.T) {
	store := NewMemoryStore(2, 10*time.Millisecond)
	ctx := context.Background()

	_, err := store.RecordFailure(ctx, "ada@x.com")
	require.NoError(t, err)
	_, err = store.RecordFailure(ctx, "ada@x.com")
	require.NoError(t, err)

	locked, err := store.IsLocked(ctx, "ada@x.com")
	require.NoError(t, err)
	require.True(t, locked)

	time.Sleep(20 * time.Millisecond)

	locked, err = store.IsLocked(ctx, "ada@x.com")
	require.NoError(t, err)
	assert.False(t, locked)

	count, err := store.RecordFailure(ctx, "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
