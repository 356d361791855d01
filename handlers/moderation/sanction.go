package moderation

import (
	"fmt"
	"strings"
	"time"

	"community-bot/model"
	"community-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// action is a validated sanction request.
type action struct {
	kind     model.SanctionType
	target   *discordgo.User
	reason   string
	duration time.Duration // 0 means permanent
}

func (h *handler) handleWarn(s *discordgo.Session, i *discordgo.InteractionCreate) {
	act, err := h.parseAction(s, i, model.SanctionWarn)
	if err != nil {
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}
	h.apply(s, i, act)
}

func (h *handler) handleMute(s *discordgo.Session, i *discordgo.InteractionCreate) {
	act, err := h.parseAction(s, i, model.SanctionMute)
	if err != nil {
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}
	h.apply(s, i, act)
}

func (h *handler) handleBan(s *discordgo.Session, i *discordgo.InteractionCreate) {
	act, err := h.parseAction(s, i, model.SanctionBan)
	if err != nil {
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}
	h.apply(s, i, act)
}

func (h *handler) handleKick(s *discordgo.Session, i *discordgo.InteractionCreate) {
	act, err := h.parseAction(s, i, model.SanctionKick)
	if err != nil {
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}
	h.apply(s, i, act)
}

// parseAction reads and validates the command options. Nothing is sent to
// Discord for a request that fails here.
func (h *handler) parseAction(s *discordgo.Session, i *discordgo.InteractionCreate, kind model.SanctionType) (action, error) {
	opts := utils.OptionMap(i.ApplicationCommandData().Options)

	act := action{
		kind:   kind,
		target: utils.OptionUser(i, opts["user"]),
		reason: strings.TrimSpace(utils.OptionString(opts["reason"])),
	}
	if act.target == nil {
		return act, fmt.Errorf("%w: pick a member", utils.ErrInvalidInput)
	}
	if act.target.ID == utils.InteractionUserID(i) {
		return act, fmt.Errorf("%w: you cannot sanction yourself", utils.ErrInvalidInput)
	}
	if s.State != nil && s.State.User != nil && act.target.ID == s.State.User.ID {
		return act, fmt.Errorf("%w: I cannot sanction myself", utils.ErrInvalidInput)
	}
	if act.reason == "" {
		return act, fmt.Errorf("%w: a reason is required", utils.ErrInvalidInput)
	}

	if raw := strings.TrimSpace(utils.OptionString(opts["duration"])); raw != "" {
		d, err := utils.ParseDuration(raw)
		if err != nil || d < 0 {
			return act, fmt.Errorf("%w: %q is not a duration, use e.g. 30m, 2h or 7d", utils.ErrInvalidInput, raw)
		}
		act.duration = d
	}
	if kind == model.SanctionMute {
		if act.duration == 0 {
			return act, fmt.Errorf("%w: a mute needs a duration", utils.ErrInvalidInput)
		}
		if act.duration > MaxMuteDuration {
			return act, fmt.Errorf("%w: a mute cannot last longer than 28 days", utils.ErrInvalidInput)
		}
	}
	return act, nil
}

// apply enforces the sanction on Discord, records it, notifies the member and
// writes the audit entry.
func (h *handler) apply(s *discordgo.Session, i *discordgo.InteractionCreate, act action) {
	log := h.b.Logger.With("logger", "moderation", "type", act.kind, "user", act.target.ID)

	// 1. Defer, enforcing may take several calls
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Error("failed to defer interaction", "error", err)
		return
	}

	ctx, cancel := h.context()
	defer cancel()

	now := time.Now()
	rec := model.Sanction{
		GuildID:     i.GuildID,
		UserID:      act.target.ID,
		ModeratorID: utils.InteractionUserID(i),
		Type:        act.kind,
		Reason:      act.reason,
		CreatedAt:   now.Unix(),
		Active:      true,
	}
	if act.duration > 0 {
		rec.ExpiresAt = now.Add(act.duration).Unix()
	}
	// Kicks are over as soon as they happen.
	if act.kind == model.SanctionKick {
		rec.Active = false
	}

	// 2. A kicked or banned member can no longer be reached once removed
	removes := act.kind == model.SanctionBan || act.kind == model.SanctionKick
	if removes {
		h.notify(s, rec)
	}

	// 3. Enforce on Discord
	if err := h.enforce(s, rec, act.duration); err != nil {
		log.Error("failed to enforce sanction", "error", err)
		h.b.Audit.LogError("moderation", string(act.kind), fmt.Sprintf("%s for %s failed: %v", act.kind, utils.Mention(act.target.ID), err))
		utils.SendFollowUpError(s, i.Interaction, utils.UserMessage(err))
		return
	}

	// 4. Record
	id, err := h.b.Stores.Sanctions.Add(ctx, rec)
	if err != nil {
		log.Error("sanction enforced but not recorded", "error", err)
		utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf("The %s was applied but could not be recorded.", act.kind))
		return
	}
	rec.ID = id

	if !removes {
		h.notify(s, rec)
	}

	// 5. Audit and confirm
	h.b.Audit.Send(utils.SanctionEmbed(rec))
	log.Info("sanction applied", "sanction", id, "moderator", rec.ModeratorID)

	msg := fmt.Sprintf("✅ %s %s (case #%d).", pastTense(act.kind), utils.Mention(act.target.ID), id)
	if act.duration > 0 {
		msg += " Ends " + utils.Timestamp(rec.ExpiresTime(), "R") + "."
	}
	utils.SendFollowUp(s, i.Interaction, msg)
}

func (h *handler) enforce(s *discordgo.Session, rec model.Sanction, d time.Duration) error {
	switch rec.Type {
	case model.SanctionMute:
		until := time.Unix(rec.CreatedAt, 0).Add(d)
		if err := s.GuildMemberTimeout(rec.GuildID, rec.UserID, &until); err != nil {
			return fmt.Errorf("failed to time out user %s: %w", rec.UserID, err)
		}
		if role := h.b.Config().MuteRoleID; role != "" {
			if err := s.GuildMemberRoleAdd(rec.GuildID, rec.UserID, role); err != nil {
				// The timeout already holds, the role is cosmetic.
				h.b.Logger.Warn("failed to add mute role", "user", rec.UserID, "error", err)
			}
		}
	case model.SanctionBan:
		if err := s.GuildBanCreateWithReason(rec.GuildID, rec.UserID, rec.Reason, 0); err != nil {
			return fmt.Errorf("failed to ban user %s: %w", rec.UserID, err)
		}
	case model.SanctionKick:
		if err := s.GuildMemberDeleteWithReason(rec.GuildID, rec.UserID, rec.Reason); err != nil {
			return fmt.Errorf("failed to kick user %s: %w", rec.UserID, err)
		}
	}
	return nil
}

// notify DMs the member. Members with closed DMs are common, so failures are only logged.
func (h *handler) notify(s *discordgo.Session, rec model.Sanction) {
	guildName := ""
	if s.State != nil {
		if g, err := s.State.Guild(rec.GuildID); err == nil {
			guildName = g.Name
		}
	}
	if err := utils.SendPrivateEmbedMessage(s, rec.UserID, utils.SanctionNoticeEmbed(rec, guildName)); err != nil {
		h.b.Logger.Debug("could not notify sanctioned member", "user", rec.UserID, "error", err)
	}
}

func pastTense(t model.SanctionType) string {
	switch t {
	case model.SanctionWarn:
		return "Warned"
	case model.SanctionMute:
		return "Muted"
	case model.SanctionBan:
		return "Banned"
	case model.SanctionKick:
		return "Kicked"
	}
	return string(t)
}
