package commands

import (
	"moddingway/commands/defs"

	"github.com/bwmarrin/discordgo"
)

// GenerateCommands returns every slash command the bot registers in its guild.
func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Exile,
		defs.Unexile,
		defs.ViewExiles,
		defs.ViewActiveExiles,
		defs.Roulette,
		defs.AddStrike,
		defs.ViewStrikes,
		defs.DeleteStrike,
		defs.Ban,
		defs.AddNote,
		defs.AddWarning,
		defs.ViewNotes,
		defs.UpdateNote,
		defs.DeleteNote,
		defs.SetSlowmode,
		defs.SendMessage,
		defs.RunAutomod,
		defs.DraftAnnouncement,
		defs.PublishAnnouncement,
		defs.SystemInfo,
	}
}
