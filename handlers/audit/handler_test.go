package audit

import (
	"testing"
	"time"

	"community-bot/bot/bottest"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var auditPath = "/channels/" + bottest.LogChannelID + "/messages"

func decodeEmbed(t *testing.T, body interface{ Decode(any) error }) *discordgo.MessageEmbed {
	t.Helper()
	var msg discordgo.MessageSend
	require.NoError(t, body.Decode(&msg))
	require.Len(t, msg.Embeds, 1)
	return msg.Embeds[0]
}

func TestMemberJoinAndLeave(t *testing.T) {
	b, srv := bottest.New(t, bottest.Config())
	h := register(b)
	require.NotNil(t, h)

	user := &discordgo.User{ID: bottest.MemberID, Username: "alice"}
	h.onMemberAdd(b.Session, &discordgo.GuildMemberAdd{Member: &discordgo.Member{GuildID: bottest.GuildID, User: user}})
	h.onMemberRemove(b.Session, &discordgo.GuildMemberRemove{Member: &discordgo.Member{GuildID: bottest.GuildID, User: user, JoinedAt: time.Now().Add(-time.Hour)}})
	h.onMemberAdd(b.Session, &discordgo.GuildMemberAdd{Member: &discordgo.Member{GuildID: "100000000000000099", User: user}})

	reqs := srv.Requests("POST", auditPath)
	require.Len(t, reqs, 2, "other guilds are ignored")
	assert.Equal(t, "📥 Member joined", decodeEmbed(t, reqs[0]).Title)
	left := decodeEmbed(t, reqs[1])
	assert.Equal(t, "📤 Member left", left.Title)
	assert.Contains(t, left.Fields[0].Value, "alice")
}

func TestMessageDeleteShowsCachedContent(t *testing.T) {
	b, srv := bottest.New(t, bottest.Config())
	h := register(b)

	h.onMessageDelete(b.Session, &discordgo.MessageDelete{
		Message: &discordgo.Message{ID: "800000000000000001", GuildID: bottest.GuildID, ChannelID: "400000000000000001"},
		BeforeDelete: &discordgo.Message{
			Author:    &discordgo.User{ID: bottest.MemberID},
			Content:   "something rude",
			Timestamp: time.Now().Add(-time.Minute),
		},
	})
	h.onMessageDelete(b.Session, &discordgo.MessageDelete{
		Message: &discordgo.Message{ID: "800000000000000002", GuildID: bottest.GuildID, ChannelID: "400000000000000001"},
	})
	h.onMessageDelete(b.Session, &discordgo.MessageDelete{
		Message:      &discordgo.Message{ID: "800000000000000003", GuildID: bottest.GuildID, ChannelID: "400000000000000001"},
		BeforeDelete: &discordgo.Message{Author: &discordgo.User{ID: "1", Bot: true}, Content: "bot output"},
	})

	reqs := srv.Requests("POST", auditPath)
	require.Len(t, reqs, 2, "bot messages are not audited")
	assert.Equal(t, "something rude", decodeEmbed(t, reqs[0]).Description)
	assert.Contains(t, decodeEmbed(t, reqs[1]).Description, "not cached")
}

func TestBanAdd(t *testing.T) {
	b, srv := bottest.New(t, bottest.Config())
	h := register(b)

	h.onBanAdd(b.Session, &discordgo.GuildBanAdd{GuildID: bottest.GuildID, User: &discordgo.User{ID: bottest.MemberID, Username: "alice"}})

	reqs := srv.Requests("POST", auditPath)
	require.Len(t, reqs, 1)
	assert.Equal(t, "⛔ Member banned", decodeEmbed(t, reqs[0]).Title)
}

func TestRegisterRaisesMessageCache(t *testing.T) {
	b, _ := bottest.New(t, bottest.Config())
	register(b)
	assert.Equal(t, cachedMessages, b.Session.State.MaxMessageCount)
}

func TestRegisterWithoutChannel(t *testing.T) {
	cfg := bottest.Config()
	cfg.Features.AuditLog = false
	b, _ := bottest.New(t, cfg)
	assert.Nil(t, register(b))
}
