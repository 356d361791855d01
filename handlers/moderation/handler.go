// Package moderation implements the sanction commands: /warn, /mute, /ban,
// /kick, /unsanction, /sanctions and the "View sanctions" user command.
package moderation

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
	// MaxMuteDuration is the longest timeout Discord accepts.
	MaxMuteDuration = 28 * 24 * time.Hour

	expiryInterval = time.Minute
	requestTimeout = 30 * time.Second
	historyLimit   = 15
)

type handler struct {
	b *bot.Bot
}

// Register wires the moderation commands and the sanction expiry sweep.
func Register(b *bot.Bot) {
	h := &handler{b: b}
	d := b.Dispatcher

	d.Command(defs.Warn.Name, h.moderatorOnly(h.handleWarn))
	d.Command(defs.Mute.Name, h.moderatorOnly(h.handleMute))
	d.Command(defs.Ban.Name, h.moderatorOnly(h.handleBan))
	d.Command(defs.Kick.Name, h.moderatorOnly(h.handleKick))
	d.Command(defs.Unsanction.Name, h.moderatorOnly(h.handleUnsanction))
	d.Command(defs.Sanctions.Name, h.moderatorOnly(h.handleSanctions))
	d.Command(defs.SanctionsContext.Name, h.moderatorOnly(h.handleSanctionsContext))

	b.Scheduler.Add(bot.Job{
		Name:       "sanction-expiry",
		Interval:   expiryInterval,
		RunAtStart: true,
		Run:        h.expireSanctions,
	})
}

func (h *handler) moderatorOnly(next bot.InteractionHandler) bot.InteractionHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if !utils.HasPermission(utils.InteractionRoles(i), h.b.Config(), utils.ModeratorPermission) {
			utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
			return
		}
		next(s, i)
	}
}

func (h *handler) env() scanner.Env {
	return scanner.Env{Session: h.b.Session, Audit: h.b.Audit, Logger: h.b.Logger}
}

func (h *handler) expireSanctions(ctx context.Context) error {
	_, err := scanner.ExpireSanctions(ctx, h.env(), h.b.Stores.Sanctions, h.b.Config().MuteRoleID, time.Now())
	return err
}

func (h *handler) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
