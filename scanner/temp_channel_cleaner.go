package scanner

import (
	"context"
	"time"

	"community-bot/utils"
	"community-bot/utils/database/tempchannels"
)

// tempChannelGrace protects a channel between its creation and the owner being moved in.
const tempChannelGrace = time.Minute

// CleanTempChannels deletes stored temporary channels that are empty or no
// longer exist on Discord, and forgets them. Channels whose guild is not in
// the state cache yet are left alone. It returns how many were removed.
func CleanTempChannels(ctx context.Context, env Env, store *tempchannels.Store, now time.Time) (int, error) {
	log := env.logger("temp-channels")

	list, err := store.List(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, ch := range list {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if now.Sub(time.Unix(ch.CreatedAt, 0)) < tempChannelGrace {
			continue
		}
		occupants, known := utils.VoiceOccupants(env.Session, ch.GuildID, ch.ChannelID)
		if !known || occupants > 0 {
			continue
		}

		if _, err := env.Session.ChannelDelete(ch.ChannelID); err != nil && !utils.IsNotFound(err) {
			log.Warn("failed to delete stale temp channel", "channel", ch.ChannelID, "error", err)
			continue
		}
		if err := store.Delete(ctx, ch.ChannelID); err != nil {
			log.Error("failed to forget temp channel", "channel", ch.ChannelID, "error", err)
			continue
		}
		removed++
		log.Info("removed stale temp channel", "channel", ch.ChannelID, "owner", ch.OwnerID)
	}
	return removed, nil
}
