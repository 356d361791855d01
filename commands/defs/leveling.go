package defs

import "github.com/bwmarrin/discordgo"

var Rank = &discordgo.ApplicationCommand{
	Name:        "rank",
	Description: "Show a member's level",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Member to show (defaults to you)",
			Required:    false,
		},
	},
}

var Leaderboard = &discordgo.ApplicationCommand{
	Name:        "leaderboard",
	Description: "Show the most active members",
}
