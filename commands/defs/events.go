package defs

import "github.com/bwmarrin/discordgo"

var Event = &discordgo.ApplicationCommand{
	Name:        "event",
	Description: "Schedule server events",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "create",
			Description: "Schedule a new event",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "list",
			Description: "Show upcoming events",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "delete",
			Description: "Cancel an event",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "id",
					Description:  "Event to cancel",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
	},
}
