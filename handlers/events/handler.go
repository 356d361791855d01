// Package events schedules server events through a slash command and modal,
// and posts reminders before they start.
package events

import (
	"context"
	"time"

	"community-bot/bot"
	"community-bot/commands/defs"
	"community-bot/scanner"
	"community-bot/utils"

	"github.com/bwmarrin/discordgo"
)

const (
	createModalPrefix = "event-create:"

	reminderInterval = time.Minute
	requestTimeout   = 30 * time.Second
	listLimit        = 10
	choiceLimit      = 25
)

type handler struct {
	b      *bot.Bot
	parser *TimeParser
	now    func() time.Time
}

// Register wires /event, its modal and autocomplete, and the reminder sweep.
func Register(b *bot.Bot) {
	h := &handler{b: b, parser: NewTimeParser(b.Config().EventLocation), now: time.Now}

	b.Dispatcher.Command(defs.Event.Name, h.handleEvent)
	b.Dispatcher.Autocomplete(defs.Event.Name, h.handleAutocomplete)
	b.Dispatcher.Modal(createModalPrefix, h.handleCreateSubmit)

	b.Scheduler.Add(bot.Job{
		Name:       "event-reminders",
		Interval:   reminderInterval,
		RunAtStart: true,
		Run:        h.sendReminders,
	})
}

func (h *handler) handleEvent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		utils.SendErrorResponse(s, i, "Pick a subcommand.")
		return
	}
	sub := options[0]
	switch sub.Name {
	case "create":
		h.handleCreate(s, i)
	case "list":
		h.handleList(s, i)
	case "delete":
		h.handleDelete(s, i, utils.OptionMap(sub.Options))
	default:
		utils.SendErrorResponse(s, i, "Unknown subcommand.")
	}
}

func (h *handler) sendReminders(ctx context.Context) error {
	cfg := h.b.Config()
	env := scanner.Env{Session: h.b.Session, Audit: h.b.Audit, Logger: h.b.Logger}
	_, err := scanner.SendEventReminders(ctx, env, h.b.Stores.Events, cfg.EventChannelID, cfg.EventLocation, h.now())
	return err
}

func (h *handler) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func (h *handler) location() *time.Location {
	if loc := h.b.Config().EventLocation; loc != nil {
		return loc
	}
	return time.UTC
}
