// Package leveling grants experience for messages and time spent in voice,
// announces level-ups and serves /rank and /leaderboard.
package leveling

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"community-bot/bot"
	"community-bot/commands/defs"
	"community-bot/utils"

	"github.com/bwmarrin/discordgo"
)

const (
	MinMessageXP     = 15
	MaxMessageXP     = 25
	VoiceXPPerMinute = 10

	cooldownCleanupInterval = 10 * time.Minute
	requestTimeout          = 10 * time.Second
	leaderboardSize         = 10
)

type handler struct {
	b   *bot.Bot
	now func() time.Time
	// roll picks the experience for one qualifying message.
	roll func() int64

	mu         sync.Mutex
	voiceSince map[string]time.Time // user id -> joined voice
}

// Register wires the activity listeners and the level commands.
func Register(b *bot.Bot) {
	register(b)
}

func register(b *bot.Bot) *handler {
	h := &handler{
		b:          b,
		now:        time.Now,
		roll:       func() int64 { return int64(MinMessageXP + rand.IntN(MaxMessageXP-MinMessageXP+1)) },
		voiceSince: make(map[string]time.Time),
	}
	b.Dispatcher.OnMessageCreate(h.onMessageCreate)
	b.Dispatcher.OnVoiceStateUpdate(h.onVoiceStateUpdate)
	b.Dispatcher.Command(defs.Rank.Name, h.handleRank)
	b.Dispatcher.Command(defs.Leaderboard.Name, h.handleLeaderboard)

	if mem, ok := b.Cooldowns.(*utils.MemoryCooldowns); ok {
		b.Scheduler.Every("xp-cooldown-cleanup", cooldownCleanupInterval, func(context.Context) error {
			if n := mem.Cleanup(); n > 0 {
				b.Logger.Debug("dropped expired xp cooldowns", "count", n)
			}
			return nil
		})
	}
	return h
}

func (h *handler) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// onMessageCreate grants message experience once per cooldown window.
func (h *handler) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	cfg := h.b.Config()
	if m.Author == nil || m.Author.Bot || m.WebhookID != "" || m.GuildID != cfg.GuildID {
		return
	}
	if !cfg.CountsForXP(m.ChannelID) {
		return
	}

	ctx, cancel := h.context()
	defer cancel()

	allowed, err := h.b.Cooldowns.Allow(ctx, "xp:"+m.GuildID+":"+m.Author.ID, cfg.XPCooldown)
	if err != nil {
		h.b.Logger.Warn("cooldown check failed", "user", m.Author.ID, "error", err)
		return
	}
	if !allowed {
		return
	}

	h.credit(ctx, s, m.GuildID, m.Author.ID, activity{XP: h.roll(), Messages: 1}, m.ChannelID)
}

// onVoiceStateUpdate credits voice minutes when a member leaves voice.
// Moving between channels keeps the session running.
func (h *handler) onVoiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	if vs.VoiceState == nil || vs.GuildID != h.b.Config().GuildID {
		return
	}
	if vs.Member != nil && vs.Member.User != nil && vs.Member.User.Bot {
		return
	}
	before := ""
	if vs.BeforeUpdate != nil {
		before = vs.BeforeUpdate.ChannelID
	}

	now := h.now()
	switch {
	case before == "" && vs.ChannelID != "":
		h.mu.Lock()
		h.voiceSince[vs.UserID] = now
		h.mu.Unlock()
	case vs.ChannelID == "":
		h.mu.Lock()
		since, ok := h.voiceSince[vs.UserID]
		delete(h.voiceSince, vs.UserID)
		h.mu.Unlock()
		if !ok {
			// Joined before the bot started.
			return
		}
		minutes := int64(now.Sub(since) / time.Minute)
		if minutes <= 0 {
			return
		}
		ctx, cancel := h.context()
		defer cancel()
		h.credit(ctx, s, vs.GuildID, vs.UserID, activity{XP: minutes * VoiceXPPerMinute, VoiceMinutes: minutes}, "")
	}
}
