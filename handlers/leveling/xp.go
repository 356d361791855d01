package leveling

import (
	"context"
	"fmt"

	"community-bot/utils"
	"community-bot/utils/database/levels"

	"github.com/bwmarrin/discordgo"
)

type activity = levels.Activity

// credit records activity and announces a level-up. The announcement goes to
// the level-up channel, or to fallbackChannel when none is configured.
func (h *handler) credit(ctx context.Context, s *discordgo.Session, guildID, userID string, a activity, fallbackChannel string) {
	before, after, err := h.b.Stores.Levels.Credit(ctx, guildID, userID, a, h.now())
	if err != nil {
		h.b.Logger.Error("failed to credit experience", "user", userID, "error", err)
		return
	}
	if after.Level <= before.Level {
		return
	}

	h.b.Logger.Info("member levelled up", "user", userID, "level", after.Level, "xp", after.XP)
	channelID := h.b.Config().LevelUpChannelID
	if channelID == "" {
		channelID = fallbackChannel
	}
	if channelID == "" {
		return
	}
	_, err = s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         fmt.Sprintf("🎉 %s reached **level %d**!", utils.Mention(userID), after.Level),
		AllowedMentions: &discordgo.MessageAllowedMentions{Users: []string{userID}},
	})
	if err != nil {
		h.b.Logger.Warn("failed to announce level-up", "user", userID, "error", err)
	}
}
