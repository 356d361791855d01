package events

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"community-bot/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newEvent(date, clock string) model.Event {
	return model.Event{
		ID:        uuid.NewString(),
		GuildID:   "1",
		Title:     "Game night " + date,
		Date:      date,
		Time:      clock,
		Managers:  model.EncodeIDs([]string{"5"}),
		CreatedBy: "4",
	}
}

func TestStore_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	e := newEvent("2030-01-02", "20:00")
	e.Description = "bring snacks"
	require.NoError(t, store.Create(ctx, e))

	got, err := store.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.Title, got.Title)
	assert.Equal(t, []string{"5"}, got.ManagerIDs())
	assert.False(t, got.ReminderDaySent)

	require.NoError(t, store.Delete(ctx, e.ID))
	_, err = store.Get(ctx, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, e.ID), ErrNotFound)
}

func TestStore_ListUpcoming(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	for _, e := range []model.Event{
		newEvent("2030-01-03", "09:00"),
		newEvent("2030-01-02", "21:00"),
		newEvent("2030-01-02", "08:00"),
		newEvent("2029-12-31", "08:00"),
	} {
		require.NoError(t, store.Create(ctx, e))
	}

	from := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	list, err := store.ListUpcoming(ctx, "1", from)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "08:00", list[0].Time)
	assert.Equal(t, "21:00", list[1].Time)
	assert.Equal(t, "2030-01-03", list[2].Date)

	n, err := store.DeleteBefore(ctx, from)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStore_Reminders(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	e := newEvent("2030-01-02", "20:00")
	require.NoError(t, store.Create(ctx, e))

	require.NoError(t, store.MarkReminderSent(ctx, e.ID, ReminderDay))
	pending, err := store.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.True(t, pending[0].ReminderDaySent)
	assert.False(t, pending[0].ReminderHourSent)

	require.NoError(t, store.MarkReminderSent(ctx, e.ID, ReminderHour))
	pending, err = store.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.Error(t, store.MarkReminderSent(ctx, e.ID, "reminder_week_sent"))
	assert.ErrorIs(t, store.MarkReminderSent(ctx, "missing", ReminderDay), ErrNotFound)
}
