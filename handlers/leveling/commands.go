package leveling

import (
	"fmt"
	"strings"

	"community-bot/utils"

	"github.com/bwmarrin/discordgo"
)

const progressWidth = 12

func (h *handler) handleRank(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	target := utils.OptionUser(i, opts["user"])
	if target == nil {
		target = &discordgo.User{ID: utils.InteractionUserID(i)}
		if i.Member != nil && i.Member.User != nil {
			target = i.Member.User
		}
	}

	ctx, cancel := h.context()
	defer cancel()

	rec, err := h.b.Stores.Levels.Get(ctx, i.GuildID, target.ID)
	if err != nil {
		h.b.Logger.Error("failed to load level", "user", target.ID, "error", err)
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}
	rank, err := h.b.Stores.Levels.Rank(ctx, i.GuildID, target.ID)
	if err != nil {
		h.b.Logger.Error("failed to rank member", "user", target.ID, "error", err)
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}

	into, span := rec.Progress()
	position := "unranked"
	if rank > 0 {
		position = fmt.Sprintf("#%d", rank)
	}
	embed := &discordgo.MessageEmbed{
		Title: utils.DisplayName(target),
		Color: utils.ColorBlurple,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Level", Value: fmt.Sprintf("%d", rec.Level), Inline: true},
			{Name: "Rank", Value: position, Inline: true},
			{Name: "Experience", Value: fmt.Sprintf("%d XP", rec.XP), Inline: true},
			{Name: "Next level", Value: fmt.Sprintf("%s %d / %d", progressBar(into, span), into, span)},
			{Name: "Messages", Value: fmt.Sprintf("%d", rec.Messages), Inline: true},
			{Name: "Voice", Value: fmt.Sprintf("%d min", rec.VoiceMinutes), Inline: true},
		},
	}
	utils.SendEmbedResponse(s, i, false, embed)
}

func (h *handler) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := h.context()
	defer cancel()

	top, err := h.b.Stores.Levels.Top(ctx, i.GuildID, leaderboardSize)
	if err != nil {
		h.b.Logger.Error("failed to load leaderboard", "error", err)
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}

	embed := &discordgo.MessageEmbed{Title: "🏆 Leaderboard", Color: utils.ColorBlurple}
	if len(top) == 0 {
		embed.Description = "Nobody has earned experience yet."
	} else {
		lines := make([]string, len(top))
		for n, rec := range top {
			lines[n] = fmt.Sprintf("**%d.** %s · level %d · %d XP", n+1, utils.Mention(rec.UserID), rec.Level, rec.XP)
		}
		embed.Description = strings.Join(lines, "\n")
	}
	utils.SendEmbedResponse(s, i, false, embed)
}

func progressBar(into, span int64) string {
	filled := 0
	if span > 0 {
		filled = int(into * progressWidth / span)
	}
	if filled > progressWidth {
		filled = progressWidth
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("▰", filled) + strings.Repeat("▱", progressWidth-filled)
}
