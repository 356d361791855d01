// Package handlers wires the feature packages into a bot according to the
// feature toggles.
package handlers

import (
	"community-bot/bot"
	"community-bot/handlers/admin"
	"community-bot/handlers/audit"
	"community-bot/handlers/events"
	"community-bot/handlers/leveling"
	"community-bot/handlers/moderation"
	"community-bot/handlers/tempvoice"
)

// Register wires every enabled feature. /status is always available.
func Register(b *bot.Bot) {
	cfg := b.Config()

	admin.Register(b)
	if cfg.Features.AuditLog {
		audit.Register(b)
	}
	if cfg.Features.Moderation {
		moderation.Register(b)
	}
	if cfg.Features.Events {
		events.Register(b)
	}
	if cfg.Features.TempVoice {
		tempvoice.Register(b)
	}
	if cfg.Features.Leveling {
		leveling.Register(b)
	}

	b.Logger.Info("features registered",
		"moderation", cfg.Features.Moderation,
		"events", cfg.Features.Events,
		"temp_voice", cfg.Features.TempVoice,
		"leveling", cfg.Features.Leveling,
		"audit_log", cfg.Features.AuditLog,
		"jobs", b.Scheduler.Jobs(),
	)
}
