package events

import (
	"fmt"
	"regexp"
	"strings"

	"community-bot/model"
	"community-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

// Modal input ids.
const (
	fieldTitle       = "title"
	fieldWhen        = "when"
	fieldDescription = "description"
	fieldManagers    = "managers"
)

var snowflake = regexp.MustCompile(`\d{15,21}`)

func (h *handler) canCreate(i *discordgo.InteractionCreate) bool {
	cfg := h.b.Config()
	roles := utils.InteractionRoles(i)
	return cfg.IsEventManager(roles) || cfg.IsModerator(roles)
}

// handleCreate opens the modal. Its custom id carries the id the event will get.
func (h *handler) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.canCreate(i) {
		utils.SendErrorResponse(s, i, "Only event managers can schedule events.")
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: createModalPrefix + uuid.NewString(),
			Title:    "Schedule an event",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  fieldTitle,
						Label:     "Title",
						Style:     discordgo.TextInputShort,
						Required:  true,
						MaxLength: 100,
					},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    fieldWhen,
						Label:       "When (" + h.location().String() + ")",
						Style:       discordgo.TextInputShort,
						Placeholder: "2026-05-01 20:00, tomorrow 8pm, in 3 hours",
						Required:    true,
						MaxLength:   100,
					},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  fieldDescription,
						Label:     "Description",
						Style:     discordgo.TextInputParagraph,
						Required:  false,
						MaxLength: 2000,
					},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    fieldManagers,
						Label:       "Co-managers (mentions or ids)",
						Style:       discordgo.TextInputShort,
						Placeholder: "<@123456789012345678> 234567890123456789",
						Required:    false,
						MaxLength:   400,
					},
				}},
			},
		},
	})
	if err != nil {
		h.b.Logger.Error("failed to open event modal", "error", err)
	}
}

func (h *handler) handleCreateSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	id := strings.TrimPrefix(data.CustomID, createModalPrefix)
	if _, err := uuid.Parse(id); err != nil {
		utils.SendErrorResponse(s, i, "This form has expired, run /event create again.")
		return
	}
	if !h.canCreate(i) {
		utils.SendErrorResponse(s, i, "Only event managers can schedule events.")
		return
	}

	values := utils.ModalValues(data)
	title := strings.TrimSpace(values[fieldTitle])
	if title == "" {
		utils.SendErrorResponse(s, i, "The event needs a title.")
		return
	}
	start, err := h.parser.Parse(values[fieldWhen], h.now())
	if err != nil {
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}

	creator := utils.InteractionUserID(i)
	ev := model.Event{
		ID:          id,
		GuildID:     i.GuildID,
		Title:       title,
		Date:        start.Format(model.EventDateLayout),
		Time:        start.Format(model.EventTimeLayout),
		Managers:    model.EncodeIDs(parseManagers(values[fieldManagers], creator)),
		Description: strings.TrimSpace(values[fieldDescription]),
		CreatedBy:   creator,
		CreatedAt:   h.now().Unix(),
	}

	ctx, cancel := h.context()
	defer cancel()
	if err := h.b.Stores.Events.Create(ctx, ev); err != nil {
		h.b.Logger.Error("failed to save event", "event", id, "error", err)
		utils.SendErrorResponse(s, i, "The event could not be saved, it may already exist.")
		return
	}

	h.b.Logger.Info("event scheduled", "event", id, "title", title, "start", start, "by", creator)
	h.b.Audit.LogInfo("events", "create", fmt.Sprintf("%s scheduled %q for %s", utils.Mention(creator), title, utils.Timestamp(start, "F")))
	utils.SendEmbedResponse(s, i, false, eventEmbed(ev, start, "📅 "+title))
}

// parseManagers extracts unique user ids from free text, leaving out the creator.
func parseManagers(raw, creator string) []string {
	seen := map[string]bool{creator: true}
	var ids []string
	for _, id := range snowflake.FindAllString(raw, -1) {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
