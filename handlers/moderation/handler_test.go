package moderation

import (
	"context"
	"net/http"
	"testing"
	"time"

	"community-bot/bot"
	"community-bot/bot/bottest"
	"community-bot/model"
	"community-bot/utils/discordtest"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dmChannelID = "600000000000000001"

func setup(t *testing.T) (*bot.Bot, *discordtest.Server) {
	t.Helper()
	b, srv := bottest.New(t, bottest.Config())
	Register(b)
	srv.Reply("POST", "/users/@me/channels", http.StatusOK, map[string]any{"id": dmChannelID, "type": 1})
	return b, srv
}

func sanctionsOf(t *testing.T, b *bot.Bot, userID string) []model.Sanction {
	t.Helper()
	list, err := b.Stores.Sanctions.ListByUser(context.Background(), bottest.GuildID, userID, 50)
	require.NoError(t, err)
	return list
}

func indexOf(reqs []discordtest.Request, method, path string) int {
	for n, r := range reqs {
		if r.Method == method && r.Path == path {
			return n
		}
	}
	return -1
}

func TestWarnRecordsNotifiesAndAudits(t *testing.T) {
	b, srv := setup(t)

	b.Dispatcher.HandleInteraction(b.Session, bottest.Moderator().Command("warn",
		discordtest.UserOpt("user", bottest.MemberID),
		discordtest.StringOpt("reason", "spamming links"),
	))

	resp, ok := srv.Response()
	require.True(t, ok)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, resp.Type)

	list := sanctionsOf(t, b, bottest.MemberID)
	require.Len(t, list, 1)
	assert.Equal(t, model.SanctionWarn, list[0].Type)
	assert.Equal(t, bottest.ModeratorID, list[0].ModeratorID)
	assert.Equal(t, "spamming links", list[0].Reason)
	assert.True(t, list[0].Active)
	assert.Zero(t, list[0].ExpiresAt)

	assert.Len(t, srv.Requests("POST", "/channels/"+dmChannelID+"/messages"), 1, "member is notified")
	assert.Len(t, srv.Requests("POST", "/channels/"+bottest.LogChannelID+"/messages"), 1, "action is audited")

	content, ok := srv.Edited()
	require.True(t, ok)
	assert.Contains(t, content, "Warned <@"+bottest.MemberID+">")
}

func TestCommandsRequireModerator(t *testing.T) {
	b, srv := setup(t)

	b.Dispatcher.HandleInteraction(b.Session, bottest.Member().Command("ban",
		discordtest.UserOpt("user", bottest.OtherMemberID),
		discordtest.StringOpt("reason", "no"),
	))

	resp, ok := srv.Response()
	require.True(t, ok)
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
	assert.Contains(t, resp.Data.Content, "permission")
	assert.Empty(t, srv.Requests("PUT", "/guilds/"+bottest.GuildID+"/bans/"+bottest.OtherMemberID))
	assert.Empty(t, sanctionsOf(t, b, bottest.OtherMemberID))
}

func TestMuteRejectsBadInputBeforeCallingDiscord(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		duration string
		want     string
	}{
		{name: "unparseable", target: bottest.MemberID, duration: "soon", want: "not a duration"},
		{name: "too long", target: bottest.MemberID, duration: "29d", want: "28 days"},
		{name: "overflowing days", target: bottest.MemberID, duration: "200000d", want: "not a duration"},
		{name: "negative remainder", target: bottest.MemberID, duration: "1d-5m", want: "not a duration"},
		{name: "self", target: bottest.ModeratorID, duration: "1h", want: "yourself"},
		{name: "bot", target: discordtest.BotUserID, duration: "1h", want: "myself"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, srv := setup(t)

			b.Dispatcher.HandleInteraction(b.Session, bottest.Moderator().Command("mute",
				discordtest.UserOpt("user", tt.target),
				discordtest.StringOpt("duration", tt.duration),
				discordtest.StringOpt("reason", "flooding"),
			))

			resp, ok := srv.Response()
			require.True(t, ok)
			assert.Contains(t, resp.Data.Content, tt.want)
			assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
			assert.Len(t, srv.Requests("", ""), 1, "only the reply is sent")
			assert.Empty(t, sanctionsOf(t, b, tt.target))
		})
	}
}

func TestBanRejectsOverflowingDuration(t *testing.T) {
	b, srv := setup(t)

	b.Dispatcher.HandleInteraction(b.Session, bottest.Moderator().Command("ban",
		discordtest.UserOpt("user", bottest.MemberID),
		discordtest.StringOpt("reason", "raiding"),
		discordtest.StringOpt("duration", "200000d"),
	))

	resp, ok := srv.Response()
	require.True(t, ok)
	assert.Contains(t, resp.Data.Content, "not a duration")
	assert.Empty(t, srv.Requests("PUT", "/guilds/"+bottest.GuildID+"/bans/"+bottest.MemberID))
	assert.Empty(t, sanctionsOf(t, b, bottest.MemberID))
}

func TestMuteTimesOutAndAddsRole(t *testing.T) {
	b, srv := setup(t)
	before := time.Now()

	b.Dispatcher.HandleInteraction(b.Session, bottest.Moderator().Command("mute",
		discordtest.UserOpt("user", bottest.MemberID),
		discordtest.StringOpt("duration", "2h"),
		discordtest.StringOpt("reason", "flooding"),
	))

	patches := srv.Requests("PATCH", "/guilds/"+bottest.GuildID+"/members/"+bottest.MemberID)
	require.Len(t, patches, 1)
	var body struct {
		Until *time.Time `json:"communication_disabled_until"`
	}
	require.NoError(t, patches[0].Decode(&body))
	require.NotNil(t, body.Until)
	assert.WithinDuration(t, before.Add(2*time.Hour), *body.Until, 5*time.Second)

	assert.Len(t, srv.Requests("PUT", "/guilds/"+bottest.GuildID+"/members/"+bottest.MemberID+"/roles/"+bottest.MuteRoleID), 1)

	list := sanctionsOf(t, b, bottest.MemberID)
	require.Len(t, list, 1)
	assert.Equal(t, model.SanctionMute, list[0].Type)
	assert.InDelta(t, before.Add(2*time.Hour).Unix(), list[0].ExpiresAt, 5)
}

func TestBanNotifiesBeforeRemoving(t *testing.T) {
	b, srv := setup(t)

	b.Dispatcher.HandleInteraction(b.Session, bottest.Moderator().Command("ban",
		discordtest.UserOpt("user", bottest.MemberID),
		discordtest.StringOpt("reason", "raiding"),
		discordtest.StringOpt("duration", "7d"),
	))

	all := srv.Requests("", "")
	dm := indexOf(all, "POST", "/channels/"+dmChannelID+"/messages")
	ban := indexOf(all, "PUT", "/guilds/"+bottest.GuildID+"/bans/"+bottest.MemberID)
	require.NotEqual(t, -1, dm)
	require.NotEqual(t, -1, ban)
	assert.Less(t, dm, ban)

	list := sanctionsOf(t, b, bottest.MemberID)
	require.Len(t, list, 1)
	assert.True(t, list[0].Active)
	assert.NotZero(t, list[0].ExpiresAt)
}

func TestBanWithoutPermissionIsReported(t *testing.T) {
	b, srv := setup(t)
	srv.Reply("PUT", "/guilds/"+bottest.GuildID+"/bans/"+bottest.MemberID, http.StatusForbidden,
		map[string]any{"code": 50013, "message": "Missing Permissions"})

	b.Dispatcher.HandleInteraction(b.Session, bottest.Moderator().Command("ban",
		discordtest.UserOpt("user", bottest.MemberID),
		discordtest.StringOpt("reason", "raiding"),
	))

	content, ok := srv.Edited()
	require.True(t, ok)
	assert.Contains(t, content, "missing the permissions")
	assert.Len(t, srv.Requests("PUT", "/guilds/"+bottest.GuildID+"/bans/"+bottest.MemberID), 1, "403 is not retried")
	assert.Empty(t, sanctionsOf(t, b, bottest.MemberID))
}

func TestKickIsRecordedInactive(t *testing.T) {
	b, srv := setup(t)

	b.Dispatcher.HandleInteraction(b.Session, bottest.Moderator().Command("kick",
		discordtest.UserOpt("user", bottest.MemberID),
		discordtest.StringOpt("reason", "alt account"),
	))

	assert.Len(t, srv.Requests("DELETE", "/guilds/"+bottest.GuildID+"/members/"+bottest.MemberID), 1)
	list := sanctionsOf(t, b, bottest.MemberID)
	require.Len(t, list, 1)
	assert.Equal(t, model.SanctionKick, list[0].Type)
	assert.False(t, list[0].Active)
}

func TestUnsanctionLiftsBan(t *testing.T) {
	b, srv := setup(t)
	id, err := b.Stores.Sanctions.Add(context.Background(), model.Sanction{
		GuildID: bottest.GuildID, UserID: bottest.MemberID, ModeratorID: bottest.ModeratorID,
		Type: model.SanctionBan, Reason: "raiding", Active: true,
	})
	require.NoError(t, err)

	b.Dispatcher.HandleInteraction(b.Session, bottest.Moderator().Command("unsanction",
		discordtest.IntOpt("id", id),
	))

	assert.Len(t, srv.Requests("DELETE", "/guilds/"+bottest.GuildID+"/bans/"+bottest.MemberID), 1)
	rec, err := b.Stores.Sanctions.Get(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, rec.Active)

	content, ok := srv.Edited()
	require.True(t, ok)
	assert.Contains(t, content, "Lifted ban")
}

func TestUnsanctionUnknownOrInactive(t *testing.T) {
	b, srv := setup(t)
	id, err := b.Stores.Sanctions.Add(context.Background(), model.Sanction{
		GuildID: bottest.GuildID, UserID: bottest.MemberID, Type: model.SanctionWarn, Active: false,
	})
	require.NoError(t, err)

	b.Dispatcher.HandleInteraction(b.Session, bottest.Moderator().Command("unsanction", discordtest.IntOpt("id", id+100)))
	resp, ok := srv.Response()
	require.True(t, ok)
	assert.Contains(t, resp.Data.Content, "no sanction")

	b.Dispatcher.HandleInteraction(b.Session, bottest.Moderator().Command("unsanction", discordtest.IntOpt("id", id)))
	resp, ok = srv.Response()
	require.True(t, ok)
	assert.Contains(t, resp.Data.Content, "no longer active")
}

func TestSanctionsListsHistory(t *testing.T) {
	b, srv := setup(t)
	ctx := context.Background()
	for _, typ := range []model.SanctionType{model.SanctionWarn, model.SanctionMute} {
		_, err := b.Stores.Sanctions.Add(ctx, model.Sanction{
			GuildID: bottest.GuildID, UserID: bottest.MemberID, ModeratorID: bottest.ModeratorID,
			Type: typ, Reason: "reason " + string(typ), Active: true,
		})
		require.NoError(t, err)
	}

	b.Dispatcher.HandleInteraction(b.Session, bottest.Moderator().UserCommand("View sanctions", bottest.MemberID))

	resp, ok := srv.Response()
	require.True(t, ok)
	require.Len(t, resp.Data.Embeds, 1)
	embed := resp.Data.Embeds[0]
	assert.Contains(t, embed.Description, "reason warn")
	assert.Contains(t, embed.Description, "reason mute")
	assert.Contains(t, embed.Footer.Text, "2 active")
}

func TestRegisterSchedulesExpiry(t *testing.T) {
	b, _ := setup(t)
	assert.Contains(t, b.Scheduler.Jobs(), "sanction-expiry")
}
