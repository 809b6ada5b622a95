package defs

import (
	"moddingway/ban"
	"moddingway/model"
	"moddingway/utils"

	"github.com/bwmarrin/discordgo"
)

var AddStrike = &discordgo.ApplicationCommand{
	Name:                     "add_strike",
	Description:              "Add a strike to the user",
	DefaultMemberPermissions: &modPermissions,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("User being striked"),
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "severity",
			Description: "How serious the offence was",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: model.SeverityMinor.String(), Value: int(model.SeverityMinor)},
				{Name: model.SeverityModerate.String(), Value: int(model.SeverityModerate)},
				{Name: model.SeveritySerious.String(), Value: int(model.SeveritySerious)},
			},
		},
		reasonOption("Reason for the strike", utils.MaxReasonLength),
	},
}

var ViewStrikes = &discordgo.ApplicationCommand{
	Name:                     "view_strikes",
	Description:              "View the strikes of the user",
	DefaultMemberPermissions: &modPermissions,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("User whose strikes you are viewing"),
	},
}

var DeleteStrike = &discordgo.ApplicationCommand{
	Name:                     "delete_strike",
	Description:              "Delete a strike and refund its points",
	DefaultMemberPermissions: &modPermissions,
	Options: []*discordgo.ApplicationCommandOption{
		idOption("strike_id", "ID of the strike you are deleting"),
	},
}

var Ban = &discordgo.ApplicationCommand{
	Name:                     "ban",
	Description:              "Ban the specified user",
	DefaultMemberPermissions: &modPermissions,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("User being banned"),
		reasonOption("Reason for ban", ban.MaxReasonLength-1),
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "delete_messages",
			Description: "Whether messages from the banned user should be deleted or not",
			Required:    false,
		},
	},
}

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    true,
	}
}

func reasonOption(description string, maxLength int) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: description,
		Required:    true,
		MaxLength:   maxLength,
	}
}

func idOption(name, description string) *discordgo.ApplicationCommandOption {
	minID := 1.0
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: description,
		Required:    true,
		MinValue:    &minID,
	}
}
