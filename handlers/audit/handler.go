// Package audit mirrors membership changes, deleted messages and bans into
// the audit channel.
package audit

import (
	"fmt"
	"time"

	"community-bot/bot"
	"community-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// cachedMessages is how many messages per channel the state keeps so deleted
// messages can still be shown.
const cachedMessages = 200

type handler struct {
	b *bot.Bot
}

// Register subscribes the audit listeners. It does nothing without an audit channel.
func Register(b *bot.Bot) {
	register(b)
}

func register(b *bot.Bot) *handler {
	if !b.Audit.Enabled() {
		b.Logger.Info("audit channel not configured, gateway audit disabled")
		return nil
	}
	if b.Session.State != nil && b.Session.State.MaxMessageCount < cachedMessages {
		b.Session.State.MaxMessageCount = cachedMessages
	}

	h := &handler{b: b}
	b.Dispatcher.OnGuildMemberAdd(h.onMemberAdd)
	b.Dispatcher.OnGuildMemberRemove(h.onMemberRemove)
	b.Dispatcher.OnMessageDelete(h.onMessageDelete)
	b.Dispatcher.OnGuildBanAdd(h.onBanAdd)
	return h
}

func (h *handler) inGuild(guildID string) bool {
	return guildID == h.b.Config().GuildID
}

func (h *handler) onMemberAdd(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.Member == nil || m.User == nil || !h.inGuild(m.GuildID) {
		return
	}
	embed := &discordgo.MessageEmbed{
		Title: "📥 Member joined",
		Color: utils.ColorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Member", Value: fmt.Sprintf("%s (%s)", utils.Mention(m.User.ID), m.User.Username), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "ID " + m.User.ID},
	}
	if created, err := discordgo.SnowflakeTimestamp(m.User.ID); err == nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Account created", Value: utils.Timestamp(created, "R"), Inline: true,
		})
	}
	h.b.Audit.Send(embed)
}

func (h *handler) onMemberRemove(_ *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.Member == nil || m.User == nil || !h.inGuild(m.GuildID) {
		return
	}
	embed := &discordgo.MessageEmbed{
		Title: "📤 Member left",
		Color: utils.ColorOrange,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Member", Value: fmt.Sprintf("%s (%s)", utils.Mention(m.User.ID), m.User.Username), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "ID " + m.User.ID},
	}
	if !m.JoinedAt.IsZero() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Joined", Value: utils.Timestamp(m.JoinedAt, "R"), Inline: true,
		})
	}
	h.b.Audit.Send(embed)
}

func (h *handler) onMessageDelete(_ *discordgo.Session, m *discordgo.MessageDelete) {
	if m.Message == nil || !h.inGuild(m.GuildID) {
		return
	}
	embed := &discordgo.MessageEmbed{
		Title: "🗑️ Message deleted",
		Color: utils.ColorRed,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Channel", Value: "<#" + m.ChannelID + ">", Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Message " + m.ID},
	}

	before := m.BeforeDelete
	if before == nil || before.Author == nil {
		embed.Description = "The message was not cached, its content is unknown."
		h.b.Audit.Send(embed)
		return
	}
	if before.Author.Bot {
		return
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "Author", Value: utils.Mention(before.Author.ID), Inline: true,
	})
	content := before.Content
	if content == "" && len(before.Attachments) > 0 {
		content = fmt.Sprintf("(%d attachment(s))", len(before.Attachments))
	}
	embed.Description = utils.Truncate(content, 4000)
	if !before.Timestamp.IsZero() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Sent", Value: utils.Timestamp(before.Timestamp, "R"), Inline: true,
		})
	}
	h.b.Audit.Send(embed)
}

func (h *handler) onBanAdd(_ *discordgo.Session, ban *discordgo.GuildBanAdd) {
	if ban.User == nil || !h.inGuild(ban.GuildID) {
		return
	}
	h.b.Audit.Send(&discordgo.MessageEmbed{
		Title: "⛔ Member banned",
		Color: utils.ColorRed,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Member", Value: fmt.Sprintf("%s (%s)", utils.Mention(ban.User.ID), ban.User.Username), Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "ID " + ban.User.ID},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
