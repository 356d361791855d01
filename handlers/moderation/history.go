package moderation

import (
	"errors"
	"fmt"
	"strings"

	"community-bot/scanner"
	"community-bot/utils"
	"community-bot/utils/database/sanctions"

	"github.com/bwmarrin/discordgo"
)

func (h *handler) handleUnsanction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	opt, ok := opts["id"]
	if !ok {
		utils.SendErrorResponse(s, i, "A sanction id is required.")
		return
	}
	id := opt.IntValue()
	if id <= 0 {
		utils.SendErrorResponse(s, i, "Sanction ids are positive numbers.")
		return
	}

	ctx, cancel := h.context()
	defer cancel()

	rec, err := h.b.Stores.Sanctions.Get(ctx, id)
	if errors.Is(err, sanctions.ErrNotFound) || (err == nil && rec.GuildID != i.GuildID) {
		utils.SendErrorResponse(s, i, fmt.Sprintf("There is no sanction #%d.", id))
		return
	}
	if err != nil {
		h.b.Logger.Error("failed to load sanction", "sanction", id, "error", err)
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}
	if !rec.Active {
		utils.SendErrorResponse(s, i, fmt.Sprintf("Sanction #%d is no longer active.", id))
		return
	}

	if err := utils.DeferResponse(s, i, true); err != nil {
		h.b.Logger.Error("failed to defer interaction", "error", err)
		return
	}
	env := scanner.Env{Session: s, Audit: h.b.Audit, Logger: h.b.Logger}
	if err := scanner.LiftSanction(env, *rec, h.b.Config().MuteRoleID); err != nil {
		h.b.Logger.Error("failed to lift sanction", "sanction", id, "error", err)
		utils.SendFollowUpError(s, i.Interaction, utils.UserMessage(err))
		return
	}
	if _, err := h.b.Stores.Sanctions.Deactivate(ctx, id); err != nil {
		h.b.Logger.Error("sanction lifted but not deactivated", "sanction", id, "error", err)
		utils.SendFollowUpError(s, i.Interaction, "The sanction was lifted but its record could not be updated.")
		return
	}

	moderatorID := utils.InteractionUserID(i)
	h.b.Audit.Send(utils.SanctionLiftedEmbed(*rec, moderatorID))
	h.b.Logger.Info("sanction lifted", "sanction", id, "moderator", moderatorID)
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ Lifted %s #%d for %s.", rec.Type, id, utils.Mention(rec.UserID)))
}

func (h *handler) handleSanctions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	target := utils.OptionUser(i, opts["user"])
	if target == nil {
		utils.SendErrorResponse(s, i, "Pick a member.")
		return
	}
	h.showHistory(s, i, target)
}

func (h *handler) handleSanctionsContext(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	target := &discordgo.User{ID: data.TargetID}
	if data.Resolved != nil {
		if u, ok := data.Resolved.Users[data.TargetID]; ok {
			target = u
		}
	}
	h.showHistory(s, i, target)
}

func (h *handler) showHistory(s *discordgo.Session, i *discordgo.InteractionCreate, target *discordgo.User) {
	ctx, cancel := h.context()
	defer cancel()

	records, err := h.b.Stores.Sanctions.ListByUser(ctx, i.GuildID, target.ID, historyLimit)
	if err != nil {
		h.b.Logger.Error("failed to list sanctions", "user", target.ID, "error", err)
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}
	active, err := h.b.Stores.Sanctions.CountActive(ctx, i.GuildID, target.ID)
	if err != nil {
		h.b.Logger.Error("failed to count sanctions", "user", target.ID, "error", err)
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "Sanctions for " + utils.DisplayName(target),
		Color: utils.ColorBlue,
	}
	if len(records) == 0 {
		embed.Description = utils.Mention(target.ID) + " has a clean record."
	} else {
		lines := make([]string, 0, len(records))
		for _, rec := range records {
			lines = append(lines, utils.SanctionLine(rec))
		}
		embed.Description = utils.Truncate(strings.Join(lines, "\n"), 4096)
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d active · showing the latest %d", active, len(records)),
		}
	}
	utils.SendEmbedResponse(s, i, true, embed)
}
