package defs

import "github.com/bwmarrin/discordgo"

var Voice = &discordgo.ApplicationCommand{
	Name:        "voice",
	Description: "Manage your temporary voice channel",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "visibility",
			Description: "Choose who can see and join your channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "mode",
					Description: "Visibility mode",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Public", Value: "public"},
						{Name: "Locked (visible, invite only)", Value: "locked"},
						{Name: "Hidden", Value: "hidden"},
					},
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "permit",
			Description: "Allow a member into your channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to allow",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "reject",
			Description: "Block a member from your channel and disconnect them",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to block",
					Required:    true,
				},
			},
		},
	},
}
