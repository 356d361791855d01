package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("GUILD_ID", "123456789012345678")
	t.Setenv("EVENT_CHANNEL_ID", "223456789012345678")
	t.Setenv("TEMP_VOICE_TRIGGER_CHANNEL_ID", "323456789012345678")
}

func TestFromViper_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.BotToken)
	assert.Equal(t, "123456789012345678", cfg.GuildID)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, time.UTC, cfg.EventLocation)
	assert.Equal(t, time.Minute, cfg.XPCooldown)
	assert.True(t, cfg.Features.Moderation)
	assert.True(t, cfg.Features.Events)
	assert.True(t, cfg.Features.TempVoice)
	assert.True(t, cfg.Features.Leveling)
	assert.True(t, cfg.Features.AuditLog)
	assert.False(t, cfg.DisableCommandUnregister)

	assert.Equal(t, float64(50), cfg.RateLimit.GlobalRPS)
	assert.Equal(t, 5, cfg.RateLimit.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.RateLimit.BackoffStep)
	assert.Equal(t, 500*time.Millisecond, cfg.RateLimit.ServerBackoff)
	assert.Equal(t, time.Minute, cfg.RateLimit.BucketGrace)
	assert.Equal(t, time.Minute, cfg.RateLimit.SweepInterval)
}

func TestFromViper_Lists(t *testing.T) {
	setRequired(t)
	t.Setenv("MODERATOR_ROLE_IDS", "123456789012345671, 123456789012345672,")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("EVENT_TIMEZONE", "Europe/Berlin")
	t.Setenv("FEATURE_LEVELING", "false")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, []string{"123456789012345671", "123456789012345672"}, cfg.ModeratorRoleIDs)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "Europe/Berlin", cfg.EventLocation.String())
	assert.False(t, cfg.Features.Leveling)
}

func TestFromViper_ReportsEveryProblem(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("GUILD_ID", "not-a-guild")
	t.Setenv("ADMIN_ROLE_IDS", "123456789012345671,abc")
	t.Setenv("XP_COOLDOWN", "soon")
	t.Setenv("FEATURE_EVENTS", "maybe")
	t.Setenv("TEMP_VOICE_TRIGGER_CHANNEL_ID", "")
	t.Setenv("RATE_MAX_RETRIES", "-1")

	_, err := FromViper(newViper())
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{
		"BOT_TOKEN is not set",
		"GUILD_ID is not a valid id",
		`ADMIN_ROLE_IDS contains an invalid id: "abc"`,
		"XP_COOLDOWN is not a duration",
		"FEATURE_EVENTS is not a boolean",
		"TEMP_VOICE_TRIGGER_CHANNEL_ID is required",
		"RATE_MAX_RETRIES must not be negative",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestFromViper_FeatureRequirementsSkippedWhenDisabled(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("GUILD_ID", "123456789012345678")
	t.Setenv("EVENT_CHANNEL_ID", "")
	t.Setenv("TEMP_VOICE_TRIGGER_CHANNEL_ID", "")
	t.Setenv("FEATURE_EVENTS", "false")
	t.Setenv("FEATURE_TEMP_VOICE", "false")

	_, err := FromViper(newViper())
	assert.NoError(t, err)
}
