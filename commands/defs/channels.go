package defs

import (
	"moddingway/announcements"
	"moddingway/channels"

	"github.com/bwmarrin/discordgo"
)

var adminPermissions int64 = discordgo.PermissionAdministrator

var (
	slowmodeMin     = 0.0
	announcementMin = 1
)

var SetSlowmode = &discordgo.ApplicationCommand{
	Name:                     "set_slowmode",
	Description:              "Set the slowmode interval for a channel",
	DefaultMemberPermissions: &modPermissions,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "interval",
			Description: "Seconds between each message, from 0 (off) to 21600 (6 hours)",
			Required:    true,
			MinValue:    &slowmodeMin,
			MaxValue:    channels.MaxSlowmode,
		},
		channelOption("Channel to change, defaults to this one", false),
	},
}

var SendMessage = &discordgo.ApplicationCommand{
	Name:                     "send_message",
	Description:              "Post a message in a channel as the bot",
	DefaultMemberPermissions: &modPermissions,
	Options: []*discordgo.ApplicationCommandOption{
		channelOption("Channel to post message in", true),
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "message",
			Description: "Message to post (max. 250 characters)",
			Required:    true,
			MaxLength:   channels.MaxMessageLength,
		},
	},
}

var RunAutomod = &discordgo.ApplicationCommand{
	Name:                     "run_automod",
	Description:              "Run the forum automod task manually",
	DefaultMemberPermissions: &modPermissions,
}

var DraftAnnouncement = &discordgo.ApplicationCommand{
	Name:                     "draft_announcement",
	Description:              "Draft an announcement",
	DefaultMemberPermissions: &adminPermissions,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "announcement_text",
			Description: "Announcement goes here",
			Required:    true,
			MinLength:   &announcementMin,
			MaxLength:   announcements.MaxLength,
		},
	},
}

var PublishAnnouncement = &discordgo.ApplicationCommand{
	Name:                     "publish_announcement",
	Description:              "Publish a drafted announcement",
	DefaultMemberPermissions: &adminPermissions,
	Options: []*discordgo.ApplicationCommandOption{
		channelOption("Channel to publish in", true),
		idOption("announcement_id", "ID of the drafted announcement"),
	},
}

func channelOption(description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionChannel,
		Name:         "channel",
		Description:  description,
		Required:     required,
		ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews},
	}
}
