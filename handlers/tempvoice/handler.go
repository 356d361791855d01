// Package tempvoice creates a voice channel for each member who joins the
// trigger channel and removes it once everybody has left.
package tempvoice

import (
	"context"
	"time"

	"community-bot/bot"
	"community-bot/commands/defs"
	"community-bot/scanner"

	"github.com/bwmarrin/discordgo"
)

const (
	staleInterval  = 5 * time.Minute
	requestTimeout = 30 * time.Second

	joinPermissions  = int64(discordgo.PermissionViewChannel | discordgo.PermissionVoiceConnect)
	ownerPermissions = joinPermissions |
		discordgo.PermissionManageChannels |
		discordgo.PermissionVoiceMoveMembers |
		discordgo.PermissionVoiceMuteMembers
)

type handler struct {
	b *bot.Bot
}

// Register wires the voice state listener, /voice and the stale channel sweep.
func Register(b *bot.Bot) {
	register(b)
}

func register(b *bot.Bot) *handler {
	h := &handler{b: b}
	b.Dispatcher.OnVoiceStateUpdate(h.onVoiceStateUpdate)
	b.Dispatcher.Command(defs.Voice.Name, h.handleVoice)
	b.Scheduler.Add(bot.Job{
		Name:       "temp-channel-cleanup",
		Interval:   staleInterval,
		RunAtStart: true,
		Run:        h.cleanStale,
	})
	return h
}

func (h *handler) onVoiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	if vs.VoiceState == nil || vs.GuildID != h.b.Config().GuildID {
		return
	}
	trigger := h.b.Config().TempVoiceTriggerChannelID

	before := ""
	if vs.BeforeUpdate != nil {
		before = vs.BeforeUpdate.ChannelID
	}
	if before == vs.ChannelID {
		// Mute, deafen or stream changes.
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if vs.ChannelID == trigger {
		h.createFor(ctx, s, vs)
	}
	if before != "" && before != trigger {
		h.removeIfEmpty(ctx, s, vs.GuildID, before)
	}
}

func (h *handler) cleanStale(ctx context.Context) error {
	env := scanner.Env{Session: h.b.Session, Audit: h.b.Audit, Logger: h.b.Logger}
	_, err := scanner.CleanTempChannels(ctx, env, h.b.Stores.TempChannels, time.Now())
	return err
}
