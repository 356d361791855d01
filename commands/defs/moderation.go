package defs

import "github.com/bwmarrin/discordgo"

var moderatePermission = int64(discordgo.PermissionModerateMembers)

var Warn = &discordgo.ApplicationCommand{
	Name:                     "warn",
	Description:              "Warn a member and record it",
	DefaultMemberPermissions: &moderatePermission,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Member to warn",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Why the member is warned",
			Required:    true,
			MaxLength:   512,
		},
	},
}

var Mute = &discordgo.ApplicationCommand{
	Name:                     "mute",
	Description:              "Time out a member",
	DefaultMemberPermissions: &moderatePermission,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Member to mute",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duration",
			Description: "How long, e.g. 30m, 2h, 1d (at most 28d)",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Why the member is muted",
			Required:    true,
			MaxLength:   512,
		},
	},
}

var Ban = &discordgo.ApplicationCommand{
	Name:                     "ban",
	Description:              "Ban a member, optionally for a limited time",
	DefaultMemberPermissions: &moderatePermission,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Member to ban",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Why the member is banned",
			Required:    true,
			MaxLength:   512,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duration",
			Description: "Lift the ban after this long, e.g. 7d. Permanent when empty",
			Required:    false,
		},
	},
}

var Kick = &discordgo.ApplicationCommand{
	Name:                     "kick",
	Description:              "Kick a member from the server",
	DefaultMemberPermissions: &moderatePermission,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Member to kick",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Why the member is kicked",
			Required:    true,
			MaxLength:   512,
		},
	},
}

var Unsanction = &discordgo.ApplicationCommand{
	Name:                     "unsanction",
	Description:              "Lift an active sanction by its id",
	DefaultMemberPermissions: &moderatePermission,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "id",
			Description: "Sanction id",
			Required:    true,
		},
	},
}

var Sanctions = &discordgo.ApplicationCommand{
	Name:                     "sanctions",
	Description:              "List a member's sanctions",
	DefaultMemberPermissions: &moderatePermission,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Member to look up",
			Required:    true,
		},
	},
}

// SanctionsContext lists sanctions from a member's context menu.
var SanctionsContext = &discordgo.ApplicationCommand{
	Name:                     "View sanctions",
	Type:                     discordgo.UserApplicationCommand,
	DefaultMemberPermissions: &moderatePermission,
}
