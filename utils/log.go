package utils

import (
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
)

type LogLevel string

const (
	Info  LogLevel = "INFO"
	Warn  LogLevel = "WARN"
	Error LogLevel = "ERROR"
)

// Embed colors.
const (
	ColorGreen   = 0x2ECC71
	ColorOrange  = 0xE67E22
	ColorRed     = 0xE74C3C
	ColorBlue    = 0x3498DB
	ColorBlurple = 0x5865F2
)

func getColor(level LogLevel) int {
	switch level {
	case Info:
		return ColorGreen
	case Warn:
		return ColorOrange
	case Error:
		return ColorRed
	default:
		return ColorBlue
	}
}

// AuditLog posts embeds to the configured audit channel. With no channel it only
// writes to the process log.
type AuditLog struct {
	session   *discordgo.Session
	channelID string
	logger    *slog.Logger
}

func NewAuditLog(s *discordgo.Session, channelID string, logger *slog.Logger) *AuditLog {
	return &AuditLog{session: s, channelID: channelID, logger: logger.With("logger", "audit")}
}

// Enabled reports whether an audit channel is configured.
func (a *AuditLog) Enabled() bool {
	return a != nil && a.channelID != ""
}

func (a *AuditLog) LogInfo(module, operation, extraInfo string) {
	a.sendLog(Info, module, operation, extraInfo)
}

func (a *AuditLog) LogWarn(module, operation, extraInfo string) {
	a.sendLog(Warn, module, operation, extraInfo)
}

func (a *AuditLog) LogError(module, operation, extraInfo string) {
	a.sendLog(Error, module, operation, extraInfo)
}

func (a *AuditLog) sendLog(level LogLevel, module, operation, extraInfo string) {
	if a == nil {
		return
	}
	attrs := []any{"module", module, "operation", operation, "info", extraInfo}
	switch level {
	case Warn:
		a.logger.Warn("audit", attrs...)
	case Error:
		a.logger.Error("audit", attrs...)
	default:
		a.logger.Info("audit", attrs...)
	}

	if extraInfo == "" {
		extraInfo = "-"
	}
	a.Send(&discordgo.MessageEmbed{
		Title: string(level) + " Log",
		Color: getColor(level),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Module", Value: module, Inline: true},
			{Name: "Operation", Value: operation, Inline: true},
			{Name: "Details", Value: Truncate(extraInfo, 1024)},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Send posts embed to the audit channel.
func (a *AuditLog) Send(embed *discordgo.MessageEmbed) {
	if !a.Enabled() {
		return
	}
	if embed.Timestamp == "" {
		embed.Timestamp = time.Now().Format(time.RFC3339)
	}
	if _, err := a.session.ChannelMessageSendEmbed(a.channelID, embed); err != nil {
		a.logger.Error("failed to post audit embed", "title", embed.Title, "error", err)
	}
}

// Truncate cuts s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
