package tempvoice

import (
	"context"
	"errors"
	"fmt"

	"community-bot/model"
	"community-bot/utils"
	"community-bot/utils/database/tempchannels"

	"github.com/bwmarrin/discordgo"
)

// everyoneOverwrite returns the @everyone allow and deny masks for v.
func everyoneOverwrite(v model.Visibility) (allow, deny int64) {
	switch v {
	case model.VisibilityLocked:
		return discordgo.PermissionViewChannel, discordgo.PermissionVoiceConnect
	case model.VisibilityHidden:
		return 0, joinPermissions
	default:
		return joinPermissions, 0
	}
}

func (h *handler) handleVoice(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		utils.SendErrorResponse(s, i, "Pick a subcommand.")
		return
	}
	sub := options[0]
	opts := utils.OptionMap(sub.Options)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	userID := utils.InteractionUserID(i)
	rec, err := h.b.Stores.TempChannels.ByOwner(ctx, i.GuildID, userID)
	if errors.Is(err, tempchannels.ErrNotFound) {
		utils.SendErrorResponse(s, i, "You do not own a temporary voice channel. Join the trigger channel to get one.")
		return
	}
	if err != nil {
		h.b.Logger.Error("failed to look up owned channel", "user", userID, "error", err)
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}

	switch sub.Name {
	case "visibility":
		h.setVisibility(ctx, s, i, rec, model.Visibility(utils.OptionString(opts["mode"])))
	case "permit":
		h.permit(ctx, s, i, rec, utils.OptionUser(i, opts["user"]))
	case "reject":
		h.reject(ctx, s, i, rec, utils.OptionUser(i, opts["user"]))
	default:
		utils.SendErrorResponse(s, i, "Unknown subcommand.")
	}
}

func (h *handler) setVisibility(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, rec *model.TemporaryChannel, v model.Visibility) {
	if !v.Valid() {
		utils.SendErrorResponse(s, i, "Visibility must be public, locked or hidden.")
		return
	}

	allow, deny := everyoneOverwrite(v)
	// The @everyone role shares the guild's id.
	if err := s.ChannelPermissionSet(rec.ChannelID, rec.GuildID, discordgo.PermissionOverwriteTypeRole, allow, deny); err != nil {
		h.b.Logger.Error("failed to set channel visibility", "channel", rec.ChannelID, "error", err)
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}

	rec.Visibility = v
	if err := h.b.Stores.TempChannels.Save(ctx, *rec); err != nil {
		h.b.Logger.Error("failed to save visibility", "channel", rec.ChannelID, "error", err)
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("🔊 Your channel is now **%s**.", v))
}

func (h *handler) permit(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, rec *model.TemporaryChannel, target *discordgo.User) {
	if target == nil || target.ID == rec.OwnerID {
		utils.SendErrorResponse(s, i, "Pick another member.")
		return
	}
	if err := s.ChannelPermissionSet(rec.ChannelID, target.ID, discordgo.PermissionOverwriteTypeMember, joinPermissions, 0); err != nil {
		h.b.Logger.Error("failed to permit member", "channel", rec.ChannelID, "user", target.ID, "error", err)
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}

	rec.Permit(target.ID)
	if err := h.b.Stores.TempChannels.Save(ctx, *rec); err != nil {
		h.b.Logger.Error("failed to save whitelist", "channel", rec.ChannelID, "error", err)
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("✅ %s can now join your channel.", utils.Mention(target.ID)))
}

func (h *handler) reject(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, rec *model.TemporaryChannel, target *discordgo.User) {
	if target == nil || target.ID == rec.OwnerID {
		utils.SendErrorResponse(s, i, "Pick another member.")
		return
	}
	if err := s.ChannelPermissionSet(rec.ChannelID, target.ID, discordgo.PermissionOverwriteTypeMember, 0, joinPermissions); err != nil {
		h.b.Logger.Error("failed to reject member", "channel", rec.ChannelID, "user", target.ID, "error", err)
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}

	rec.Reject(target.ID)
	if err := h.b.Stores.TempChannels.Save(ctx, *rec); err != nil {
		h.b.Logger.Error("failed to save blacklist", "channel", rec.ChannelID, "error", err)
	}

	if vs, err := s.State.VoiceState(rec.GuildID, target.ID); err == nil && vs.ChannelID == rec.ChannelID {
		if err := s.GuildMemberMove(rec.GuildID, target.ID, nil); err != nil {
			h.b.Logger.Warn("failed to disconnect rejected member", "user", target.ID, "error", err)
		}
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("🚫 %s can no longer join your channel.", utils.Mention(target.ID)))
}
