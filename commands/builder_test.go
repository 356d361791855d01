package commands

import (
	"testing"

	"community-bot/model"

	"github.com/stretchr/testify/assert"
)

func names(cfg *model.Config) []string {
	var out []string
	for _, c := range GenerateCommands(cfg) {
		out = append(out, c.Name)
	}
	return out
}

func TestGenerateCommands(t *testing.T) {
	assert.Equal(t, []string{"status"}, names(&model.Config{}))

	all := names(&model.Config{Features: model.Features{
		Moderation: true, Events: true, TempVoice: true, Leveling: true,
	}})
	assert.Equal(t, []string{
		"status", "warn", "mute", "ban", "kick", "unsanction", "sanctions", "View sanctions",
		"event", "voice", "rank", "leaderboard",
	}, all)

	assert.NotContains(t, names(&model.Config{Features: model.Features{Events: true}}), "warn")
}
