package utils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

var discordgoLevels = map[int]slog.Level{
	discordgo.LogDebug:         slog.LevelDebug,
	discordgo.LogInformational: slog.LevelInfo,
	discordgo.LogWarning:       slog.LevelWarn,
	discordgo.LogError:         slog.LevelError,
}

// NewLogger builds the process logger: a colorized console handler at level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}))
}

// BridgeDiscordgo routes discordgo's internal logging through logger.
func BridgeDiscordgo(logger *slog.Logger) {
	logger = logger.With("logger", "discordgo")
	discordgo.Logger = func(msgL, _ int, format string, args ...interface{}) {
		level, ok := discordgoLevels[msgL]
		if !ok {
			level = slog.LevelInfo
		}
		logger.Log(context.Background(), level, strings.ReplaceAll(fmt.Sprintf(format, args...), "\n", " "))
	}
}
