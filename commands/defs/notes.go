package defs

import "github.com/bwmarrin/discordgo"

var AddNote = &discordgo.ApplicationCommand{
	Name:                     "add_note",
	Description:              "Add a note to the user",
	DefaultMemberPermissions: &modPermissions,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("User to add note to"),
		noteOption("note", "Note content"),
	},
}

var AddWarning = &discordgo.ApplicationCommand{
	Name:                     "add_warning",
	Description:              "Warn a user and record the warning as a note",
	DefaultMemberPermissions: &modPermissions,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("User to give warning to"),
		reasonOption("Warning sent to the user", 1000),
	},
}

var ViewNotes = &discordgo.ApplicationCommand{
	Name:                     "view_notes",
	Description:              "View the notes of the user",
	DefaultMemberPermissions: &modPermissions,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("User whose notes you are viewing"),
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "warnings_only",
			Description: "Only show warnings",
			Required:    false,
		},
	},
}

var UpdateNote = &discordgo.ApplicationCommand{
	Name:                     "update_note",
	Description:              "Replace the content of a note",
	DefaultMemberPermissions: &modPermissions,
	Options: []*discordgo.ApplicationCommandOption{
		idOption("note_id", "ID of the note you are updating"),
		noteOption("note", "New note content"),
	},
}

var DeleteNote = &discordgo.ApplicationCommand{
	Name:                     "delete_note",
	Description:              "Delete a note",
	DefaultMemberPermissions: &modPermissions,
	Options: []*discordgo.ApplicationCommandOption{
		idOption("note_id", "ID of the note you are deleting"),
	},
}

func noteOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    true,
		MaxLength:   1000,
	}
}
