package commands

import (
	"community-bot/commands/defs"
	"community-bot/model"

	"github.com/bwmarrin/discordgo"
)

// GenerateCommands returns the guild commands for the enabled features.
func GenerateCommands(cfg *model.Config) []*discordgo.ApplicationCommand {
	cmds := []*discordgo.ApplicationCommand{defs.Status}

	if cfg.Features.Moderation {
		cmds = append(cmds,
			defs.Warn,
			defs.Mute,
			defs.Ban,
			defs.Kick,
			defs.Unsanction,
			defs.Sanctions,
			defs.SanctionsContext,
		)
	}
	if cfg.Features.Events {
		cmds = append(cmds, defs.Event)
	}
	if cfg.Features.TempVoice {
		cmds = append(cmds, defs.Voice)
	}
	if cfg.Features.Leveling {
		cmds = append(cmds, defs.Rank, defs.Leaderboard)
	}
	return cmds
}
