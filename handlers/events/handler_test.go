package events

import (
	"context"
	"strings"
	"testing"
	"time"

	"community-bot/bot"
	"community-bot/bot/bottest"
	"community-bot/model"
	"community-bot/utils/discordtest"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*bot.Bot, *discordtest.Server) {
	t.Helper()
	b, srv := bottest.New(t, bottest.Config())
	Register(b)
	return b, srv
}

func seedEvent(t *testing.T, b *bot.Bot, id, title, createdBy string, start time.Time, managers ...string) {
	t.Helper()
	require.NoError(t, b.Stores.Events.Create(context.Background(), model.Event{
		ID: id, GuildID: bottest.GuildID, Title: title,
		Date:      start.UTC().Format(model.EventDateLayout),
		Time:      start.UTC().Format(model.EventTimeLayout),
		Managers:  model.EncodeIDs(managers),
		CreatedBy: createdBy,
	}))
}

func TestCreateOpensModalForManagers(t *testing.T) {
	b, srv := setup(t)

	b.Dispatcher.HandleInteraction(b.Session, bottest.Member().Command("event", discordtest.SubCommand("create")))
	resp, ok := srv.Response()
	require.True(t, ok)
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
	assert.Contains(t, resp.Data.Content, "Only event managers")

	b.Dispatcher.HandleInteraction(b.Session, bottest.Moderator().Command("event", discordtest.SubCommand("create")))
	resp, ok = srv.Response()
	require.True(t, ok)
	assert.Equal(t, discordgo.InteractionResponseModal, resp.Type)
	require.True(t, strings.HasPrefix(resp.Data.CustomID, createModalPrefix))
	_, err := uuid.Parse(strings.TrimPrefix(resp.Data.CustomID, createModalPrefix))
	assert.NoError(t, err)
}

func TestCreateSubmitSavesEvent(t *testing.T) {
	b, srv := setup(t)
	id := uuid.NewString()

	b.Dispatcher.HandleInteraction(b.Session, bottest.Moderator().ModalSubmit(createModalPrefix+id, map[string]string{
		fieldTitle:       "Movie night",
		fieldWhen:        "in 3 hours",
		fieldDescription: "Bring snacks",
		fieldManagers:    "<@" + bottest.OtherMemberID + "> " + bottest.ModeratorID,
	}))

	resp, ok := srv.Response()
	require.True(t, ok)
	require.Len(t, resp.Data.Embeds, 1)
	assert.Contains(t, resp.Data.Embeds[0].Title, "Movie night")
	assert.Zero(t, resp.Data.Flags, "the announcement is public")

	ev, err := b.Stores.Events.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Movie night", ev.Title)
	assert.Equal(t, "Bring snacks", ev.Description)
	assert.Equal(t, bottest.ModeratorID, ev.CreatedBy)
	assert.Equal(t, []string{bottest.OtherMemberID}, ev.ManagerIDs())

	start, err := ev.StartsAt(time.UTC)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(3*time.Hour), start, 2*time.Minute)

	assert.Len(t, srv.Requests("POST", "/channels/"+bottest.LogChannelID+"/messages"), 1)
}

func TestCreateSubmitRejectsBadInput(t *testing.T) {
	tests := []struct {
		name     string
		customID string
		fields   map[string]string
		want     string
	}{
		{name: "stale form", customID: createModalPrefix + "not-a-uuid", fields: map[string]string{fieldTitle: "x", fieldWhen: "in 1 hour"}, want: "expired"},
		{name: "no title", customID: createModalPrefix + uuid.NewString(), fields: map[string]string{fieldTitle: " ", fieldWhen: "in 1 hour"}, want: "title"},
		{name: "past", customID: createModalPrefix + uuid.NewString(), fields: map[string]string{fieldTitle: "x", fieldWhen: "2020-01-01 10:00"}, want: "future"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, srv := setup(t)

			b.Dispatcher.HandleInteraction(b.Session, bottest.Moderator().ModalSubmit(tt.customID, tt.fields))

			resp, ok := srv.Response()
			require.True(t, ok)
			assert.Contains(t, resp.Data.Content, tt.want)
			pending, err := b.Stores.Events.Pending(context.Background())
			require.NoError(t, err)
			assert.Empty(t, pending)
		})
	}
}

func TestDeleteRequiresCreatorManagerOrAdmin(t *testing.T) {
	b, srv := setup(t)
	start := time.Now().Add(48 * time.Hour)
	seedEvent(t, b, "e1", "Game night", bottest.ModeratorID, start, bottest.OtherMemberID)

	b.Dispatcher.HandleInteraction(b.Session, bottest.Member().Command("event",
		discordtest.SubCommand("delete", discordtest.StringOpt("id", "e1"))))
	resp, ok := srv.Response()
	require.True(t, ok)
	assert.Contains(t, resp.Data.Content, "Only the event's creator")
	_, err := b.Stores.Events.Get(context.Background(), "e1")
	require.NoError(t, err)

	manager := bottest.Member()
	manager.UserID = bottest.OtherMemberID
	b.Dispatcher.HandleInteraction(b.Session, manager.Command("event",
		discordtest.SubCommand("delete", discordtest.StringOpt("id", "e1"))))
	resp, ok = srv.Response()
	require.True(t, ok)
	assert.Contains(t, resp.Data.Content, "cancelled")
	_, err = b.Stores.Events.Get(context.Background(), "e1")
	assert.Error(t, err)
}

func TestDeleteUnknownEvent(t *testing.T) {
	b, srv := setup(t)

	b.Dispatcher.HandleInteraction(b.Session, bottest.Moderator().Command("event",
		discordtest.SubCommand("delete", discordtest.StringOpt("id", "missing"))))

	resp, ok := srv.Response()
	require.True(t, ok)
	assert.Contains(t, resp.Data.Content, "does not exist")
}

func TestListShowsUpcomingOnly(t *testing.T) {
	b, srv := setup(t)
	seedEvent(t, b, "past", "Yesterday's quiz", bottest.ModeratorID, time.Now().Add(-26*time.Hour))
	seedEvent(t, b, "next", "Karaoke", bottest.ModeratorID, time.Now().Add(50*time.Hour))

	b.Dispatcher.HandleInteraction(b.Session, bottest.Member().Command("event", discordtest.SubCommand("list")))

	resp, ok := srv.Response()
	require.True(t, ok)
	require.Len(t, resp.Data.Embeds, 1)
	assert.Contains(t, resp.Data.Embeds[0].Description, "Karaoke")
	assert.NotContains(t, resp.Data.Embeds[0].Description, "quiz")
}

func TestAutocompleteFiltersByTitle(t *testing.T) {
	b, srv := setup(t)
	seedEvent(t, b, "a", "Karaoke", bottest.ModeratorID, time.Now().Add(50*time.Hour))
	seedEvent(t, b, "b", "Chess club", bottest.ModeratorID, time.Now().Add(60*time.Hour))

	b.Dispatcher.HandleInteraction(b.Session, bottest.Moderator().Autocomplete("event",
		discordtest.SubCommand("delete", discordtest.FocusedOpt("id", "kara"))))

	resp, ok := srv.Response()
	require.True(t, ok)
	assert.Equal(t, discordgo.InteractionApplicationCommandAutocompleteResult, resp.Type)
	require.Len(t, resp.Data.Choices, 1)
	assert.Equal(t, "a", resp.Data.Choices[0].Value)
}

func TestRegisterSchedulesReminders(t *testing.T) {
	b, _ := setup(t)
	assert.Contains(t, b.Scheduler.Jobs(), "event-reminders")
}
