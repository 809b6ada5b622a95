package defs

import "github.com/bwmarrin/discordgo"

var modPermissions int64 = discordgo.PermissionModerateMembers

var SystemInfo = &discordgo.ApplicationCommand{
	Name:                     "system-info",
	Description:              "Show host and runtime statistics for the bot",
	DefaultMemberPermissions: &modPermissions,
}
