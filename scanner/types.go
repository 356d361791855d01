// Package scanner holds the periodic sweeps: sanction expiry, event reminders
// and stale temporary channel cleanup. Each sweep is one pass; the bot's
// scheduler decides how often it runs.
package scanner

import (
	"log/slog"

	"community-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// Env is what every sweep needs to reach Discord and report.
type Env struct {
	Session *discordgo.Session
	Audit   *utils.AuditLog
	Logger  *slog.Logger
}

func (e Env) logger(sweep string) *slog.Logger {
	l := e.Logger
	if l == nil {
		l = slog.Default()
	}
	return l.With("logger", "scanner", "sweep", sweep)
}
