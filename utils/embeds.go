package utils

import (
	"fmt"
	"strings"
	"time"

	"community-bot/model"

	"github.com/bwmarrin/discordgo"
)

var sanctionTitles = map[model.SanctionType]string{
	model.SanctionWarn: "⚠️ Member warned",
	model.SanctionMute: "🔇 Member muted",
	model.SanctionBan:  "🔨 Member banned",
	model.SanctionKick: "👢 Member kicked",
}

var sanctionColors = map[model.SanctionType]int{
	model.SanctionWarn: ColorOrange,
	model.SanctionMute: ColorOrange,
	model.SanctionBan:  ColorRed,
	model.SanctionKick: ColorRed,
}

// SanctionEmbed describes a newly applied sanction for the audit channel.
func SanctionEmbed(s model.Sanction) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: sanctionTitles[s.Type],
		Color: sanctionColors[s.Type],
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Member", Value: Mention(s.UserID), Inline: true},
			{Name: "Moderator", Value: Mention(s.ModeratorID), Inline: true},
			{Name: "Case", Value: fmt.Sprintf("#%d", s.ID), Inline: true},
			{Name: "Reason", Value: Truncate(orDash(s.Reason), 1024)},
		},
		Timestamp: time.Unix(s.CreatedAt, 0).Format(time.RFC3339),
	}
	if s.ExpiresAt > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Expires", Value: Timestamp(s.ExpiresTime(), "R"), Inline: true,
		})
	}
	return embed
}

// SanctionLiftedEmbed records that a sanction ended, either by expiry or by a moderator.
func SanctionLiftedEmbed(s model.Sanction, liftedBy string) *discordgo.MessageEmbed {
	by := "expired"
	if liftedBy != "" {
		by = Mention(liftedBy)
	}
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("✅ %s lifted", strings.ToUpper(string(s.Type[:1]))+string(s.Type[1:])),
		Color: ColorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Member", Value: Mention(s.UserID), Inline: true},
			{Name: "Case", Value: fmt.Sprintf("#%d", s.ID), Inline: true},
			{Name: "Lifted by", Value: by, Inline: true},
		},
	}
}

// SanctionNoticeEmbed is sent to the sanctioned member.
func SanctionNoticeEmbed(s model.Sanction, guildName string) *discordgo.MessageEmbed {
	if guildName == "" {
		guildName = "the server"
	}
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("You received a %s in %s", s.Type, guildName),
		Color:       sanctionColors[s.Type],
		Description: Truncate(orDash(s.Reason), 2048),
	}
	if s.ExpiresAt > 0 {
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Ends", Value: Timestamp(s.ExpiresTime(), "F")},
		}
	}
	return embed
}

// SanctionLine formats one sanction for a history listing.
func SanctionLine(s model.Sanction) string {
	state := "active"
	if !s.Active {
		state = "inactive"
	}
	line := fmt.Sprintf("`#%d` **%s** %s by %s (%s)", s.ID, s.Type, Timestamp(time.Unix(s.CreatedAt, 0), "d"), Mention(s.ModeratorID), state)
	if s.Reason != "" {
		line += ": " + Truncate(s.Reason, 120)
	}
	return line
}

// Mention renders a user mention.
func Mention(userID string) string {
	return "<@" + userID + ">"
}

// Timestamp renders t as a Discord timestamp with the given style.
func Timestamp(t time.Time, style string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
