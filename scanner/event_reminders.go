package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"community-bot/model"
	"community-bot/utils"
	"community-bot/utils/database/events"

	"github.com/bwmarrin/discordgo"
)

// Reminder lead times.
const (
	DayReminderLead  = 24 * time.Hour
	HourReminderLead = time.Hour

	// eventRetention is how long finished events are kept for /event list history.
	eventRetention = 7 * 24 * time.Hour
)

// SendEventReminders posts the day-ahead and hour-ahead reminders that are due
// in channelID and sets the matching flags. Events already started when first
// seen get their flags set without a post. It returns how many reminders were posted.
func SendEventReminders(ctx context.Context, env Env, store *events.Store, channelID string, loc *time.Location, now time.Time) (int, error) {
	log := env.logger("event-reminders")

	pending, err := store.Pending(ctx)
	if err != nil {
		return 0, err
	}

	posted := 0
	for _, ev := range pending {
		if err := ctx.Err(); err != nil {
			return posted, err
		}
		start, err := ev.StartsAt(loc)
		if err != nil {
			log.Warn("skipping event with unreadable start", "event", ev.ID, "error", err)
			continue
		}
		until := start.Sub(now)

		var due []events.Reminder
		var lead time.Duration
		switch {
		case until <= 0:
			markAll(ctx, log, store, ev)
			continue
		case until <= HourReminderLead && !ev.ReminderHourSent:
			// The hour reminder supersedes a day reminder that never went out.
			due = []events.Reminder{events.ReminderHour, events.ReminderDay}
			lead = HourReminderLead
		case until <= DayReminderLead && !ev.ReminderDaySent:
			due = []events.Reminder{events.ReminderDay}
			lead = DayReminderLead
		default:
			continue
		}

		if _, err := env.Session.ChannelMessageSendComplex(channelID, reminderMessage(ev, start, lead)); err != nil {
			log.Warn("failed to post event reminder", "event", ev.ID, "error", err)
			continue
		}
		posted++
		for _, r := range due {
			if r == events.ReminderDay && ev.ReminderDaySent {
				continue
			}
			if err := store.MarkReminderSent(ctx, ev.ID, r); err != nil {
				log.Error("reminder posted but flag not saved", "event", ev.ID, "reminder", r, "error", err)
			}
		}
	}

	if n, err := store.DeleteBefore(ctx, now.Add(-eventRetention).In(locOrUTC(loc))); err != nil {
		log.Warn("failed to prune old events", "error", err)
	} else if n > 0 {
		log.Info("pruned old events", "count", n)
	}
	return posted, nil
}

func markAll(ctx context.Context, log *slog.Logger, store *events.Store, ev model.Event) {
	for _, r := range []events.Reminder{events.ReminderDay, events.ReminderHour} {
		if err := store.MarkReminderSent(ctx, ev.ID, r); err != nil {
			log.Error("failed to close reminders for started event", "event", ev.ID, "error", err)
		}
	}
}

func reminderMessage(ev model.Event, start time.Time, lead time.Duration) *discordgo.MessageSend {
	when := "tomorrow"
	if lead == HourReminderLead {
		when = "in one hour"
	}

	mentions := make([]string, 0, len(ev.ManagerIDs()))
	for _, id := range ev.ManagerIDs() {
		mentions = append(mentions, utils.Mention(id))
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("⏰ %s starts %s", ev.Title, when),
		Description: utils.Truncate(ev.Description, 2048),
		Color:       utils.ColorBlurple,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Starts", Value: utils.Timestamp(start, "F") + " (" + utils.Timestamp(start, "R") + ")"},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Event " + ev.ID},
	}
	msg := &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}
	if len(mentions) > 0 {
		msg.Content = strings.Join(mentions, " ")
		msg.AllowedMentions = &discordgo.MessageAllowedMentions{Users: ev.ManagerIDs()}
	}
	return msg
}

func locOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
