package defs

import "github.com/bwmarrin/discordgo"

var adminPermission = int64(discordgo.PermissionAdministrator)

var Status = &discordgo.ApplicationCommand{
	Name:                     "status",
	Description:              "Display bot, host and rate limit status",
	DefaultMemberPermissions: &adminPermission,
}
