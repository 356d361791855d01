package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"community-bot/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var snowflakePattern = regexp.MustCompile(`^\d{15,21}$`)

// Load reads the configuration from the environment, after loading an optional .env file.
// Every problem found is reported in the returned error.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("data_dir", "./data")
	v.SetDefault("log_level", "info")
	v.SetDefault("event_timezone", "UTC")
	v.SetDefault("xp_cooldown", "60s")
	v.SetDefault("disable_command_unregister", "false")

	for _, key := range featureKeys {
		v.SetDefault(key, "true")
	}

	v.SetDefault("rate_global_rps", "50")
	v.SetDefault("rate_max_retries", "5")
	v.SetDefault("rate_backoff_step", "250ms")
	v.SetDefault("rate_server_backoff", "500ms")
	v.SetDefault("rate_bucket_grace", "1m")
	v.SetDefault("rate_sweep_interval", "1m")
	return v
}

var featureKeys = []string{
	"feature_moderation",
	"feature_events",
	"feature_temp_voice",
	"feature_leveling",
	"feature_audit_log",
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (*model.Config, error) {
	p := &parser{v: v}

	cfg := &model.Config{
		BotToken:     p.required("bot_token"),
		GuildID:      p.snowflake("guild_id", true),
		AppID:        p.snowflake("app_id", false),
		LogChannelID: p.snowflake("log_channel_id", false),
		LogLevel:     p.level("log_level"),

		ModeratorRoleIDs: p.snowflakes("moderator_role_ids"),
		AdminRoleIDs:     p.snowflakes("admin_role_ids"),
		MuteRoleID:       p.snowflake("mute_role_id", false),

		EventChannelID:      p.snowflake("event_channel_id", false),
		EventManagerRoleIDs: p.snowflakes("event_manager_role_ids"),
		EventLocation:       p.location("event_timezone"),

		TempVoiceTriggerChannelID: p.snowflake("temp_voice_trigger_channel_id", false),
		TempVoiceCategoryID:       p.snowflake("temp_voice_category_id", false),

		LevelUpChannelID: p.snowflake("level_up_channel_id", false),
		XPChannelIDs:     p.snowflakes("xp_channel_ids"),
		XPCooldown:       p.duration("xp_cooldown"),
		RedisURL:         strings.TrimSpace(v.GetString("redis_url")),

		DataDir:                  strings.TrimSpace(v.GetString("data_dir")),
		DisableCommandUnregister: p.bool("disable_command_unregister"),

		Features: model.Features{
			Moderation: p.bool("feature_moderation"),
			Events:     p.bool("feature_events"),
			TempVoice:  p.bool("feature_temp_voice"),
			Leveling:   p.bool("feature_leveling"),
			AuditLog:   p.bool("feature_audit_log"),
		},

		RateLimit: model.RateLimitConfig{
			GlobalRPS:     p.float("rate_global_rps"),
			MaxRetries:    p.int("rate_max_retries"),
			BackoffStep:   p.duration("rate_backoff_step"),
			ServerBackoff: p.duration("rate_server_backoff"),
			BucketGrace:   p.duration("rate_bucket_grace"),
			SweepInterval: p.duration("rate_sweep_interval"),
		},
	}

	if cfg.DataDir == "" {
		p.fail("DATA_DIR", "must not be empty")
	}
	if cfg.XPCooldown <= 0 {
		p.fail("XP_COOLDOWN", "must be positive")
	}
	if cfg.RateLimit.MaxRetries < 0 {
		p.fail("RATE_MAX_RETRIES", "must not be negative")
	}
	if cfg.RateLimit.SweepInterval <= 0 {
		p.fail("RATE_SWEEP_INTERVAL", "must be positive")
	}
	if cfg.Features.TempVoice && cfg.TempVoiceTriggerChannelID == "" {
		p.fail("TEMP_VOICE_TRIGGER_CHANNEL_ID", "is required when FEATURE_TEMP_VOICE is enabled")
	}
	if cfg.Features.Events && cfg.EventChannelID == "" {
		p.fail("EVENT_CHANNEL_ID", "is required when FEATURE_EVENTS is enabled")
	}

	if len(p.errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(p.errs...))
	}
	return cfg, nil
}

// parser reads typed values out of viper and collects every validation failure.
type parser struct {
	v    *viper.Viper
	errs []error
}

func (p *parser) fail(key, msg string) {
	p.errs = append(p.errs, fmt.Errorf("%s %s", strings.ToUpper(key), msg))
}

func (p *parser) raw(key string) string {
	return strings.TrimSpace(p.v.GetString(key))
}

func (p *parser) required(key string) string {
	val := p.raw(key)
	if val == "" {
		p.fail(key, "is not set")
	}
	return val
}

func (p *parser) snowflake(key string, required bool) string {
	val := p.raw(key)
	if val == "" {
		if required {
			p.fail(key, "is not set")
		}
		return ""
	}
	if !snowflakePattern.MatchString(val) {
		p.fail(key, fmt.Sprintf("is not a valid id: %q", val))
		return ""
	}
	return val
}

func (p *parser) snowflakes(key string) []string {
	val := p.raw(key)
	if val == "" {
		return nil
	}
	var ids []string
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !snowflakePattern.MatchString(part) {
			p.fail(key, fmt.Sprintf("contains an invalid id: %q", part))
			continue
		}
		ids = append(ids, part)
	}
	return ids
}

func (p *parser) bool(key string) bool {
	val := p.raw(key)
	b, err := strconv.ParseBool(val)
	if err != nil {
		p.fail(key, fmt.Sprintf("is not a boolean: %q", val))
		return false
	}
	return b
}

func (p *parser) int(key string) int {
	val := p.raw(key)
	n, err := strconv.Atoi(val)
	if err != nil {
		p.fail(key, fmt.Sprintf("is not an integer: %q", val))
		return 0
	}
	return n
}

func (p *parser) float(key string) float64 {
	val := p.raw(key)
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		p.fail(key, fmt.Sprintf("is not a number: %q", val))
		return 0
	}
	return f
}

func (p *parser) duration(key string) time.Duration {
	val := p.raw(key)
	d, err := time.ParseDuration(val)
	if err != nil {
		p.fail(key, fmt.Sprintf("is not a duration: %q", val))
		return 0
	}
	return d
}

func (p *parser) level(key string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(p.raw(key))); err != nil {
		p.fail(key, fmt.Sprintf("is not a log level: %q", p.raw(key)))
		return slog.LevelInfo
	}
	return level
}

func (p *parser) location(key string) *time.Location {
	val := p.raw(key)
	loc, err := time.LoadLocation(val)
	if err != nil {
		p.fail(key, fmt.Sprintf("is not a time zone: %q", val))
		return time.UTC
	}
	return loc
}
