package defs

import (
	"moddingway/utils"

	"github.com/bwmarrin/discordgo"
)

var Exile = &discordgo.ApplicationCommand{
	Name:                     "exile",
	Description:              "Exile the specified user",
	DefaultMemberPermissions: &modPermissions,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("User being exiled"),
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duration",
			Description: "A value between 1 and 99 followed by sec, min, hour, or day. Examples: 1sec, 1min, 1hour, 1day",
			Required:    true,
			MaxLength:   6,
		},
		reasonOption("Reason for exile", utils.MaxReasonLength),
	},
}

var Unexile = &discordgo.ApplicationCommand{
	Name:                     "unexile",
	Description:              "Unexile the specified user",
	DefaultMemberPermissions: &modPermissions,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("User being unexiled"),
	},
}

var ViewExiles = &discordgo.ApplicationCommand{
	Name:                     "view_exiles",
	Description:              "View logged exiles of a user",
	DefaultMemberPermissions: &modPermissions,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("User whose logged exiles are being viewed"),
	},
}

var ViewActiveExiles = &discordgo.ApplicationCommand{
	Name:                     "view_active_exiles",
	Description:              "View all active exiles for all users",
	DefaultMemberPermissions: &modPermissions,
}

// Roulette is open to every verified member.
var Roulette = &discordgo.ApplicationCommand{
	Name:        "roulette",
	Description: "Test your luck, fail and be exiled...",
}
