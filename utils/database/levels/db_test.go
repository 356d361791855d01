package levels

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "levels.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_CreditRecalculatesLevel(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	now := time.Unix(1_700_000_000, 0)

	before, after, err := store.Credit(ctx, "1", "2", Activity{XP: 90, Messages: 1}, now)
	require.NoError(t, err)
	assert.Zero(t, before.XP)
	assert.Equal(t, 0, after.Level)

	before, after, err = store.Credit(ctx, "1", "2", Activity{XP: 20, Messages: 1}, now)
	require.NoError(t, err)
	assert.Equal(t, 0, before.Level)
	assert.Equal(t, 1, after.Level)
	assert.Equal(t, int64(110), after.XP)
	assert.Equal(t, int64(2), after.Messages)

	_, after, err = store.Credit(ctx, "1", "2", Activity{XP: 300, VoiceMinutes: 30}, now)
	require.NoError(t, err)
	assert.Equal(t, 2, after.Level)
	assert.Equal(t, int64(30), after.VoiceMinutes)

	got, err := store.Get(ctx, "1", "2")
	require.NoError(t, err)
	assert.Equal(t, after, got)
}

func TestStore_GetUnknownMember(t *testing.T) {
	got, err := openTestStore(t).Get(context.Background(), "1", "404")
	require.NoError(t, err)
	assert.Equal(t, "404", got.UserID)
	assert.Zero(t, got.XP)
}

func TestStore_TopAndRank(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	now := time.Now()

	for user, xp := range map[string]int64{"a": 50, "b": 500, "c": 200} {
		_, _, err := store.Credit(ctx, "1", user, Activity{XP: xp}, now)
		require.NoError(t, err)
	}
	_, _, err := store.Credit(ctx, "other", "z", Activity{XP: 9999}, now)
	require.NoError(t, err)

	top, err := store.Top(ctx, "1", 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "b", top[0].UserID)
	assert.Equal(t, "c", top[1].UserID)

	rank, err := store.Rank(ctx, "1", "a")
	require.NoError(t, err)
	assert.Equal(t, 3, rank)

	rank, err = store.Rank(ctx, "1", "nobody")
	require.NoError(t, err)
	assert.Zero(t, rank)
}

func TestStore_ConcurrentCredits(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := store.Credit(ctx, "1", "2", Activity{XP: 10, Messages: 1}, time.Now())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "1", "2")
	require.NoError(t, err)
	assert.Equal(t, int64(200), got.XP)
	assert.Equal(t, int64(20), got.Messages)
	assert.Equal(t, 1, got.Level)
}
