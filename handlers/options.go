package handlers

import (
	"moddingway/discord"
	"moddingway/model"

	"github.com/bwmarrin/discordgo"
)

// commandInput is a parsed application command.
type commandInput struct {
	actor *model.Member
	// channel is where the command was used.
	channel  string
	options  map[string]*discordgo.ApplicationCommandInteractionDataOption
	resolved *discordgo.ApplicationCommandInteractionDataResolved
}

func newCommandInput(i *discordgo.InteractionCreate) *commandInput {
	data := i.ApplicationCommandData()
	in := &commandInput{
		actor:    discord.ToMember(i.Member),
		channel:  i.ChannelID,
		options:  make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(data.Options)),
		resolved: data.Resolved,
	}
	for _, opt := range data.Options {
		in.options[opt.Name] = opt
	}
	return in
}

func (c *commandInput) str(name string) string {
	if opt, ok := c.options[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func (c *commandInput) integer(name string) int64 {
	if opt, ok := c.options[name]; ok {
		return opt.IntValue()
	}
	return 0
}

func (c *commandInput) boolean(name string) bool {
	if opt, ok := c.options[name]; ok {
		return opt.BoolValue()
	}
	return false
}

// userID returns the id of a user option. The user does not have to be in the guild.
func (c *commandInput) userID(name string) string {
	opt, ok := c.options[name]
	if !ok {
		return ""
	}
	id, _ := opt.Value.(string)
	return id
}

// channelID returns the id of a channel option, falling back to the channel the command was used in.
func (c *commandInput) channelID(name string) string {
	if opt, ok := c.options[name]; ok {
		if id, _ := opt.Value.(string); id != "" {
			return id
		}
	}
	return c.channel
}

// member returns the guild member picked in a user option, or nil if they are not in the guild.
func (c *commandInput) member(name string) *model.Member {
	id := c.userID(name)
	if id == "" || c.resolved == nil {
		return nil
	}
	resolved, ok := c.resolved.Members[id]
	if !ok || resolved == nil {
		return nil
	}
	m := *resolved
	if m.User == nil {
		m.User = c.resolved.Users[id]
	}
	if m.User == nil {
		m.User = &discordgo.User{ID: id}
	}
	return discord.ToMember(&m)
}
