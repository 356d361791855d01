package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"community-bot/bot"
	"community-bot/config"
	"community-bot/handlers"
	"community-bot/ratelimit"
	"community-bot/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := utils.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)
	utils.BridgeDiscordgo(logger)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	stores, err := bot.OpenStores(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open databases: %w", err)
	}

	throttle := ratelimit.New(ratelimit.Options{
		GlobalRPS:     cfg.RateLimit.GlobalRPS,
		MaxRetries:    cfg.RateLimit.MaxRetries,
		BackoffStep:   cfg.RateLimit.BackoffStep,
		ServerBackoff: cfg.RateLimit.ServerBackoff,
		Grace:         cfg.RateLimit.BucketGrace,
		Logger:        logger,
	})

	var cooldowns utils.CooldownStore
	if cfg.RedisURL != "" {
		rdb, err := utils.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			_ = stores.Close()
			return err
		}
		defer rdb.Close()
		cooldowns = utils.NewRedisCooldowns(rdb, "community-bot:")
		logger.Info("xp cooldowns stored in redis")
	}

	b, err := bot.New(cfg, bot.Options{
		Logger:    logger,
		Throttle:  throttle,
		Stores:    stores,
		Cooldowns: cooldowns,
	})
	if err != nil {
		_ = stores.Close()
		return err
	}
	defer b.Close()

	handlers.Register(b)

	return b.Run(ctx)
}
