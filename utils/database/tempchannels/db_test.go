package tempchannels

import (
	"context"
	"path/filepath"
	"testing"

	"community-bot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "temp_channels.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveAndUpdate(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Save(ctx, model.TemporaryChannel{ChannelID: "10", GuildID: "1", OwnerID: "2"}))

	ch, err := store.Get(ctx, "10")
	require.NoError(t, err)
	assert.Equal(t, model.VisibilityPublic, ch.Visibility)
	assert.Empty(t, ch.Permitted())
	created := ch.CreatedAt

	ch.Visibility = model.VisibilityLocked
	ch.Permit("3")
	require.NoError(t, store.Save(ctx, *ch))

	ch, err = store.Get(ctx, "10")
	require.NoError(t, err)
	assert.Equal(t, model.VisibilityLocked, ch.Visibility)
	assert.Equal(t, []string{"3"}, ch.Permitted())
	assert.Equal(t, created, ch.CreatedAt)

	owned, err := store.ByOwner(ctx, "1", "2")
	require.NoError(t, err)
	assert.Equal(t, "10", owned.ChannelID)

	_, err = store.ByOwner(ctx, "1", "3")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListDelete(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Save(ctx, model.TemporaryChannel{ChannelID: "10", GuildID: "1", OwnerID: "2", CreatedAt: 2}))
	require.NoError(t, store.Save(ctx, model.TemporaryChannel{ChannelID: "11", GuildID: "1", OwnerID: "3", CreatedAt: 1}))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "11", list[0].ChannelID)

	require.NoError(t, store.Delete(ctx, "11"))
	require.NoError(t, store.Delete(ctx, "11"))

	_, err = store.Get(ctx, "11")
	assert.ErrorIs(t, err, ErrNotFound)
}
