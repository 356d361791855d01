package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"community-bot/commands"
	"community-bot/model"
	"community-bot/ratelimit"
	"community-bot/utils"
	"community-bot/utils/database/events"
	"community-bot/utils/database/levels"
	"community-bot/utils/database/sanctions"
	"community-bot/utils/database/tempchannels"

	"github.com/bwmarrin/discordgo"
)

// Stores groups the per-feature databases.
type Stores struct {
	Sanctions    *sanctions.Store
	Events       *events.Store
	TempChannels *tempchannels.Store
	Levels       *levels.Store
}

// OpenStores opens one sqlite file per feature in dataDir.
func OpenStores(dataDir string) (*Stores, error) {
	st := &Stores{}
	var err error
	if st.Sanctions, err = sanctions.Open(filepath.Join(dataDir, "sanctions.db")); err != nil {
		return nil, err
	}
	if st.Events, err = events.Open(filepath.Join(dataDir, "events.db")); err != nil {
		st.Close()
		return nil, err
	}
	if st.TempChannels, err = tempchannels.Open(filepath.Join(dataDir, "temp_channels.db")); err != nil {
		st.Close()
		return nil, err
	}
	if st.Levels, err = levels.Open(filepath.Join(dataDir, "levels.db")); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// Close closes every open store.
func (st *Stores) Close() error {
	var errs []error
	if st.Sanctions != nil {
		errs = append(errs, st.Sanctions.Close())
	}
	if st.Events != nil {
		errs = append(errs, st.Events.Close())
	}
	if st.TempChannels != nil {
		errs = append(errs, st.TempChannels.Close())
	}
	if st.Levels != nil {
		errs = append(errs, st.Levels.Close())
	}
	return errors.Join(errs...)
}

// Options carries the dependencies built by the entry point.
type Options struct {
	Logger    *slog.Logger
	Throttle  *ratelimit.Throttle
	Stores    *Stores
	Cooldowns utils.CooldownStore
	// Transport sits under the throttle. nil uses a pooled default.
	Transport http.RoundTripper
}

// Bot owns the gateway session and everything the features share.
type Bot struct {
	Session    *discordgo.Session
	Dispatcher *Dispatcher
	Scheduler  *Scheduler
	Throttle   *ratelimit.Throttle
	Stores     *Stores
	Audit      *utils.AuditLog
	Cooldowns  utils.CooldownStore
	Logger     *slog.Logger

	config             *model.Config
	registeredCommands []*discordgo.ApplicationCommand
	connectedAt        atomic.Int64 // unix nanoseconds
}

// New creates the bot. Every REST call made by the session goes through opts.Throttle.
func New(cfg *model.Config, opts Options) (*Bot, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Throttle == nil {
		opts.Throttle = ratelimit.New(ratelimit.Options{Logger: opts.Logger})
	}
	if opts.Stores == nil {
		return nil, errors.New("bot: stores are required")
	}
	if opts.Cooldowns == nil {
		opts.Cooldowns = utils.NewMemoryCooldowns()
	}

	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMembers |
		discordgo.IntentGuildModeration |
		discordgo.IntentGuildMessages |
		discordgo.IntentGuildVoiceStates |
		discordgo.IntentMessageContent
	// Voice occupancy is read from the state cache.
	dg.StateEnabled = true
	dg.Client = utils.NewHTTPClient(opts.Throttle, opts.Transport)
	// The throttle is the only retry authority.
	dg.ShouldRetryOnRateLimit = false
	dg.MaxRestRetries = 0

	b := &Bot{
		Session:    dg,
		Dispatcher: NewDispatcher(opts.Logger),
		Scheduler:  NewScheduler(opts.Logger),
		Throttle:   opts.Throttle,
		Stores:     opts.Stores,
		Cooldowns:  opts.Cooldowns,
		Logger:     opts.Logger,
		config:     cfg,
	}
	auditChannel := ""
	if cfg.Features.AuditLog {
		auditChannel = cfg.LogChannelID
	}
	b.Audit = utils.NewAuditLog(dg, auditChannel, opts.Logger)

	b.Dispatcher.OnReady(b.onReady)
	sweepInterval := cfg.RateLimit.SweepInterval
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	b.Scheduler.Every("bucket-eviction", sweepInterval, b.evictBuckets)
	return b, nil
}

// Config returns the validated configuration.
func (b *Bot) Config() *model.Config {
	return b.config
}

// Uptime returns how long the gateway has been connected.
func (b *Bot) Uptime() time.Duration {
	at := b.connectedAt.Load()
	if at == 0 {
		return 0
	}
	return time.Since(time.Unix(0, at))
}

// RefreshCommands replaces the guild's commands with those of the enabled features.
func (b *Bot) RefreshCommands() error {
	cfg := b.Config()
	appID := cfg.AppID
	if appID == "" && b.Session.State != nil && b.Session.State.User != nil {
		appID = b.Session.State.User.ID
	}
	if appID == "" {
		return errors.New("application id unknown, set APP_ID")
	}

	if !cfg.DisableCommandUnregister {
		// Drop stale global commands left by older deployments.
		if _, err := b.Session.ApplicationCommandBulkOverwrite(appID, "", []*discordgo.ApplicationCommand{}); err != nil {
			b.Logger.Warn("could not clear global commands", "error", err)
		}
	}

	cmds := commands.GenerateCommands(cfg)
	b.Logger.Info("registering commands", "count", len(cmds), "guild", cfg.GuildID)
	registered, err := b.Session.ApplicationCommandBulkOverwrite(appID, cfg.GuildID, cmds)
	if err != nil {
		return fmt.Errorf("cannot update commands for guild %s: %w", cfg.GuildID, err)
	}
	b.registeredCommands = registered
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.connectedAt.Store(time.Now().UnixNano())
	b.Logger.Info("logged in", "user", r.User.Username, "guilds", len(r.Guilds))
}

func (b *Bot) evictBuckets(_ context.Context) error {
	if n := b.Throttle.Sweep(time.Now()); n > 0 {
		b.Logger.Debug("evicted idle rate limit buckets", "count", n)
	}
	return nil
}

// Close stops the sweeps and closes the session and stores.
func (b *Bot) Close() {
	b.Logger.Info("gracefully shutting down")
	b.Scheduler.Stop()
	if err := b.Session.Close(); err != nil {
		b.Logger.Warn("error closing session", "error", err)
	}
	if err := b.Stores.Close(); err != nil {
		b.Logger.Warn("error closing stores", "error", err)
	}
}
