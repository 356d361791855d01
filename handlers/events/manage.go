package events

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"community-bot/model"
	"community-bot/utils"
	eventsdb "community-bot/utils/database/events"

	"github.com/bwmarrin/discordgo"
)

func (h *handler) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := h.context()
	defer cancel()

	now := h.now().In(h.location())
	list, err := h.b.Stores.Events.ListUpcoming(ctx, i.GuildID, now)
	if err != nil {
		h.b.Logger.Error("failed to list events", "error", err)
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}

	var lines []string
	for _, ev := range list {
		start, err := ev.StartsAt(h.location())
		if err != nil || start.Before(now) {
			continue
		}
		lines = append(lines, fmt.Sprintf("**%s** %s\n`%s` · %s", ev.Title, utils.Timestamp(start, "F"), ev.ID, utils.Timestamp(start, "R")))
		if len(lines) == listLimit {
			break
		}
	}

	embed := &discordgo.MessageEmbed{Title: "Upcoming events", Color: utils.ColorBlurple}
	if len(lines) == 0 {
		embed.Description = "Nothing is scheduled. Event managers can add one with /event create."
	} else {
		embed.Description = strings.Join(lines, "\n\n")
	}
	utils.SendEmbedResponse(s, i, false, embed)
}

func (h *handler) handleDelete(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	id := strings.TrimSpace(utils.OptionString(opts["id"]))
	if id == "" {
		utils.SendErrorResponse(s, i, "Pick an event.")
		return
	}

	ctx, cancel := h.context()
	defer cancel()

	ev, err := h.b.Stores.Events.Get(ctx, id)
	if errors.Is(err, eventsdb.ErrNotFound) || (err == nil && ev.GuildID != i.GuildID) {
		utils.SendErrorResponse(s, i, "That event does not exist.")
		return
	}
	if err != nil {
		h.b.Logger.Error("failed to load event", "event", id, "error", err)
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}

	userID := utils.InteractionUserID(i)
	if !ev.CanManage(userID) && !h.b.Config().IsEventManager(utils.InteractionRoles(i)) {
		utils.SendErrorResponse(s, i, "Only the event's creator, its managers or an admin can cancel it.")
		return
	}

	if err := h.b.Stores.Events.Delete(ctx, id); err != nil && !errors.Is(err, eventsdb.ErrNotFound) {
		h.b.Logger.Error("failed to delete event", "event", id, "error", err)
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}

	h.b.Logger.Info("event cancelled", "event", id, "by", userID)
	h.b.Audit.LogInfo("events", "delete", fmt.Sprintf("%s cancelled %q", utils.Mention(userID), ev.Title))
	utils.SendPublicResponse(s, i, fmt.Sprintf("🗑️ **%s** has been cancelled.", ev.Title))
}

func (h *handler) handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	query := strings.ToLower(focusedValue(i.ApplicationCommandData().Options))

	ctx, cancel := h.context()
	defer cancel()

	choices := []*discordgo.ApplicationCommandOptionChoice{}
	list, err := h.b.Stores.Events.ListUpcoming(ctx, i.GuildID, h.now().In(h.location()))
	if err != nil {
		h.b.Logger.Error("failed to list events for autocomplete", "error", err)
	}
	for _, ev := range list {
		if query != "" && !strings.Contains(strings.ToLower(ev.Title), query) && !strings.HasPrefix(ev.ID, query) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  utils.Truncate(fmt.Sprintf("%s (%s %s)", ev.Title, ev.Date, ev.Time), 100),
			Value: ev.ID,
		})
		if len(choices) == choiceLimit {
			break
		}
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		h.b.Logger.Error("failed to answer autocomplete", "error", err)
	}
}

// focusedValue finds the option being typed, looking inside subcommands.
func focusedValue(options []*discordgo.ApplicationCommandInteractionDataOption) string {
	for _, opt := range options {
		if opt.Focused {
			return utils.OptionString(opt)
		}
		if v := focusedValue(opt.Options); v != "" {
			return v
		}
	}
	return ""
}

func eventEmbed(ev model.Event, start time.Time, title string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: utils.Truncate(ev.Description, 2048),
		Color:       utils.ColorBlurple,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Starts", Value: utils.Timestamp(start, "F") + " (" + utils.Timestamp(start, "R") + ")"},
			{Name: "Host", Value: utils.Mention(ev.CreatedBy), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Event " + ev.ID},
	}
	if ids := ev.ManagerIDs(); len(ids) > 0 {
		mentions := make([]string, len(ids))
		for n, id := range ids {
			mentions[n] = utils.Mention(id)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Managers", Value: strings.Join(mentions, " "), Inline: true})
	}
	return embed
}
