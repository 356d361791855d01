package tempvoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"community-bot/model"
	"community-bot/utils"
	"community-bot/utils/database/tempchannels"

	"github.com/bwmarrin/discordgo"
)

// createFor gives the member a channel of their own and moves them into it.
// A member who still owns one is moved back into it instead.
func (h *handler) createFor(ctx context.Context, s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	log := h.b.Logger.With("logger", "tempvoice", "user", vs.UserID)
	store := h.b.Stores.TempChannels

	existing, err := store.ByOwner(ctx, vs.GuildID, vs.UserID)
	switch {
	case err == nil:
		channelID := existing.ChannelID
		if err := s.GuildMemberMove(vs.GuildID, vs.UserID, &channelID); err == nil {
			return
		} else if !utils.IsNotFound(err) {
			log.Warn("failed to move member back to their channel", "channel", channelID, "error", err)
			return
		}
		// The channel was deleted by hand.
		_ = store.Delete(ctx, channelID)
	case !errors.Is(err, tempchannels.ErrNotFound):
		log.Error("failed to look up owned channel", "error", err)
		return
	}

	ch, err := s.GuildChannelCreateComplex(vs.GuildID, discordgo.GuildChannelCreateData{
		Name:     channelName(vs),
		Type:     discordgo.ChannelTypeGuildVoice,
		ParentID: h.b.Config().TempVoiceCategoryID,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{ID: vs.UserID, Type: discordgo.PermissionOverwriteTypeMember, Allow: ownerPermissions},
		},
	})
	if err != nil {
		log.Error("failed to create temp channel", "error", err)
		h.b.Audit.LogError("tempvoice", "create", fmt.Sprintf("could not create a channel for %s: %v", utils.Mention(vs.UserID), err))
		return
	}

	rec := model.TemporaryChannel{
		ChannelID:  ch.ID,
		GuildID:    vs.GuildID,
		OwnerID:    vs.UserID,
		Visibility: model.VisibilityPublic,
		CreatedAt:  time.Now().Unix(),
	}
	if err := store.Save(ctx, rec); err != nil {
		log.Error("failed to save temp channel, removing it", "channel", ch.ID, "error", err)
		h.b.Audit.LogWarn("tempvoice", "create", fmt.Sprintf("channel for %s was removed because it could not be stored", utils.Mention(vs.UserID)))
		h.deleteChannel(ctx, s, ch.ID)
		return
	}

	if err := s.GuildMemberMove(vs.GuildID, vs.UserID, &ch.ID); err != nil {
		// The member left voice before the move.
		log.Info("could not move member into new channel, removing it", "channel", ch.ID, "error", err)
		h.deleteChannel(ctx, s, ch.ID)
		return
	}
	log.Info("temp channel created", "channel", ch.ID)
}

// removeIfEmpty deletes channelID if it is a temporary channel nobody is in.
func (h *handler) removeIfEmpty(ctx context.Context, s *discordgo.Session, guildID, channelID string) {
	rec, err := h.b.Stores.TempChannels.Get(ctx, channelID)
	if errors.Is(err, tempchannels.ErrNotFound) {
		return
	}
	if err != nil {
		h.b.Logger.Error("failed to look up temp channel", "channel", channelID, "error", err)
		return
	}

	occupants, known := utils.VoiceOccupants(s, guildID, channelID)
	if !known || occupants > 0 {
		return
	}
	h.deleteChannel(ctx, s, rec.ChannelID)
	h.b.Logger.Info("temp channel emptied and removed", "channel", rec.ChannelID, "owner", rec.OwnerID)
}

func (h *handler) deleteChannel(ctx context.Context, s *discordgo.Session, channelID string) {
	if _, err := s.ChannelDelete(channelID); err != nil && !utils.IsNotFound(err) {
		// Left in the store, the stale channel sweep retries.
		h.b.Logger.Warn("failed to delete temp channel", "channel", channelID, "error", err)
		return
	}
	if err := h.b.Stores.TempChannels.Delete(ctx, channelID); err != nil {
		h.b.Logger.Error("failed to forget temp channel", "channel", channelID, "error", err)
	}
}

func channelName(vs *discordgo.VoiceStateUpdate) string {
	name := ""
	if vs.Member != nil {
		name = vs.Member.Nick
		if name == "" {
			name = utils.DisplayName(vs.Member.User)
		}
	}
	if name == "" {
		name = "Member"
	}
	return utils.Truncate(name+"'s channel", 100)
}
