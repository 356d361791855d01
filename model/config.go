package model

import (
	"log/slog"
	"time"
)

// Features toggles whole feature modules on or off.
type Features struct {
	Moderation bool
	Events     bool
	TempVoice  bool
	Leveling   bool
	AuditLog   bool
}

// RateLimitConfig tunes the outbound request throttle.
type RateLimitConfig struct {
	GlobalRPS     float64
	MaxRetries    int
	BackoffStep   time.Duration
	ServerBackoff time.Duration
	BucketGrace   time.Duration
	SweepInterval time.Duration
}

// Config is the validated process configuration, built once at startup.
type Config struct {
	BotToken string
	AppID    string
	GuildID  string

	LogChannelID string
	LogLevel     slog.Level

	ModeratorRoleIDs []string
	AdminRoleIDs     []string
	MuteRoleID       string

	EventChannelID      string
	EventManagerRoleIDs []string
	EventLocation       *time.Location

	TempVoiceTriggerChannelID string
	TempVoiceCategoryID       string

	LevelUpChannelID string
	XPChannelIDs     []string
	XPCooldown       time.Duration
	RedisURL         string

	DataDir                  string
	DisableCommandUnregister bool

	Features  Features
	RateLimit RateLimitConfig
}

// IsModerator reports whether any of roleIDs grants moderator (or admin) rights.
func (c *Config) IsModerator(roleIDs []string) bool {
	return containsAny(roleIDs, c.ModeratorRoleIDs) || c.IsAdmin(roleIDs)
}

// IsAdmin reports whether any of roleIDs is an admin role.
func (c *Config) IsAdmin(roleIDs []string) bool {
	return containsAny(roleIDs, c.AdminRoleIDs)
}

// IsEventManager reports whether any of roleIDs may manage every event.
func (c *Config) IsEventManager(roleIDs []string) bool {
	return containsAny(roleIDs, c.EventManagerRoleIDs) || c.IsAdmin(roleIDs)
}

// CountsForXP reports whether messages in channelID earn experience.
// An empty allow-list means every channel counts.
func (c *Config) CountsForXP(channelID string) bool {
	if len(c.XPChannelIDs) == 0 {
		return true
	}
	return containsAny([]string{channelID}, c.XPChannelIDs)
}

func containsAny(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}
