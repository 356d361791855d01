// Package bottest builds a Bot wired to a fake Discord API for feature tests.
package bottest

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"community-bot/bot"
	"community-bot/model"
	"community-bot/ratelimit"
	"community-bot/utils/discordtest"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

// Snowflakes used by Config.
const (
	GuildID          = "100000000000000001"
	LogChannelID     = "100000000000000002"
	EventChannelID   = "100000000000000003"
	TriggerChannelID = "100000000000000004"
	CategoryID       = "100000000000000005"
	LevelUpChannelID = "100000000000000006"
	ModeratorRoleID  = "200000000000000001"
	AdminRoleID      = "200000000000000002"
	MuteRoleID       = "200000000000000003"
	ModeratorID      = "300000000000000001"
	MemberID         = "300000000000000002"
	OtherMemberID    = "300000000000000003"
)

// Config returns a configuration with every feature enabled.
func Config() *model.Config {
	return &model.Config{
		BotToken:                  "test-token",
		AppID:                     discordtest.BotUserID,
		GuildID:                   GuildID,
		LogChannelID:              LogChannelID,
		ModeratorRoleIDs:          []string{ModeratorRoleID},
		AdminRoleIDs:              []string{AdminRoleID},
		MuteRoleID:                MuteRoleID,
		EventChannelID:            EventChannelID,
		EventLocation:             time.UTC,
		TempVoiceTriggerChannelID: TriggerChannelID,
		TempVoiceCategoryID:       CategoryID,
		LevelUpChannelID:          LevelUpChannelID,
		XPCooldown:                time.Minute,
		DataDir:                   "",
		Features: model.Features{
			Moderation: true,
			Events:     true,
			TempVoice:  true,
			Leveling:   true,
			AuditLog:   true,
		},
		RateLimit: model.RateLimitConfig{
			GlobalRPS:     -1,
			MaxRetries:    2,
			BackoffStep:   time.Millisecond,
			ServerBackoff: time.Millisecond,
			BucketGrace:   time.Minute,
			SweepInterval: time.Minute,
		},
	}
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// New returns a bot whose REST calls reach a fresh fake server, with stores in a temp dir.
func New(t testing.TB, cfg *model.Config) (*bot.Bot, *discordtest.Server) {
	t.Helper()

	srv := discordtest.NewServer(t)
	stores, err := bot.OpenStores(t.TempDir())
	require.NoError(t, err)

	th := ratelimit.New(ratelimit.Options{
		GlobalRPS:     cfg.RateLimit.GlobalRPS,
		MaxRetries:    cfg.RateLimit.MaxRetries,
		BackoffStep:   cfg.RateLimit.BackoffStep,
		ServerBackoff: cfg.RateLimit.ServerBackoff,
		Logger:        Logger(),
	})
	b, err := bot.New(cfg, bot.Options{
		Logger:    Logger(),
		Throttle:  th,
		Stores:    stores,
		Transport: srv.Transport(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	b.Session.State.User = &discordgo.User{ID: discordtest.BotUserID, Username: "bot", Bot: true}
	return b, srv
}

// Moderator invokes interactions as a moderator in the test guild.
func Moderator() discordtest.Invoker {
	return discordtest.Invoker{GuildID: GuildID, ChannelID: "400000000000000001", UserID: ModeratorID, Roles: []string{ModeratorRoleID}}
}

// Member invokes interactions as a member without special roles.
func Member() discordtest.Invoker {
	return discordtest.Invoker{GuildID: GuildID, ChannelID: "400000000000000001", UserID: MemberID}
}

// AddGuild puts the test guild into the state cache so voice occupancy can be read.
func AddGuild(t testing.TB, b *bot.Bot) *discordgo.Guild {
	t.Helper()
	g := &discordgo.Guild{ID: GuildID, Name: "test"}
	require.NoError(t, b.Session.State.GuildAdd(g))
	got, err := b.Session.State.Guild(GuildID)
	require.NoError(t, err)
	return got
}

// Join records userID in channelID in the state cache.
func Join(t testing.TB, b *bot.Bot, userID, channelID string) *discordgo.VoiceState {
	t.Helper()
	vs := &discordgo.VoiceState{GuildID: GuildID, UserID: userID, ChannelID: channelID}
	require.NoError(t, b.Session.State.OnInterface(b.Session, &discordgo.VoiceStateUpdate{VoiceState: vs}))
	return vs
}

// Leave removes userID from voice in the state cache.
func Leave(t testing.TB, b *bot.Bot, userID string) {
	t.Helper()
	vs := &discordgo.VoiceState{GuildID: GuildID, UserID: userID}
	require.NoError(t, b.Session.State.OnInterface(b.Session, &discordgo.VoiceStateUpdate{VoiceState: vs}))
}
