package discord

import (
	"context"
	"time"

	"moddingway/model"

	"github.com/bwmarrin/discordgo"
)

const (
	pageSize   = 100
	embedColor = 0x5865F2
)

// Client implements the moderation core's platform interfaces on a discordgo session.
type Client struct {
	session *discordgo.Session
	guildID string
}

var (
	_ model.Platform       = (*Client)(nil)
	_ model.ThreadSource   = (*Client)(nil)
	_ model.MessageSource  = (*Client)(nil)
	_ model.ModLogger      = (*Client)(nil)
	_ model.Unbanner       = (*Client)(nil)
	_ model.ChannelManager = (*Client)(nil)
)

func NewClient(s *discordgo.Session, guildID string) *Client {
	return &Client{session: s, guildID: guildID}
}

func (c *Client) SendDirectMessage(ctx context.Context, userID, text string) error {
	ch, err := c.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return classify("open dm channel", err)
	}
	_, err = c.session.ChannelMessageSend(ch.ID, text, discordgo.WithContext(ctx))
	return classify("send dm", err)
}

func (c *Client) AssignRole(ctx context.Context, userID, roleID string) error {
	return classify("add role", c.session.GuildMemberRoleAdd(c.guildID, userID, roleID, discordgo.WithContext(ctx)))
}

func (c *Client) RemoveRole(ctx context.Context, userID, roleID string) error {
	return classify("remove role", c.session.GuildMemberRoleRemove(c.guildID, userID, roleID, discordgo.WithContext(ctx)))
}

// Ban bans a user, deleting seven days of their messages when deleteHistory is set.
func (c *Client) Ban(ctx context.Context, userID, reason string, deleteHistory bool) error {
	days := 0
	if deleteHistory {
		days = 7
	}
	return classify("ban", c.session.GuildBanCreateWithReason(c.guildID, userID, reason, days, discordgo.WithContext(ctx)))
}

func (c *Client) Unban(ctx context.Context, userID string) error {
	return classify("unban", c.session.GuildBanDelete(c.guildID, userID, discordgo.WithContext(ctx)))
}

func (c *Client) GetMember(ctx context.Context, userID string) (*model.Member, error) {
	m, err := c.session.GuildMember(c.guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify("get member", err)
	}
	return ToMember(m), nil
}

// ForumThreads returns the active and archived threads of a forum channel.
func (c *Client) ForumThreads(ctx context.Context, forumID string) ([]model.Thread, error) {
	active, err := c.session.GuildThreadsActive(c.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify("list active threads", err)
	}

	var threads []model.Thread
	for _, ch := range active.Threads {
		if ch.ParentID == forumID {
			threads = append(threads, toThread(ch))
		}
	}

	var before *time.Time
	for {
		archived, err := c.session.ThreadsArchived(forumID, before, pageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, classify("list archived threads", err)
		}
		for _, ch := range archived.Threads {
			threads = append(threads, toThread(ch))
		}
		if !archived.HasMore || len(archived.Threads) == 0 {
			break
		}
		last := archived.Threads[len(archived.Threads)-1]
		if last.ThreadMetadata == nil {
			break
		}
		ts := last.ThreadMetadata.ArchiveTimestamp
		before = &ts
	}
	return threads, nil
}

// StarterMessage fetches the first message of a forum thread, which shares the thread's id.
func (c *Client) StarterMessage(ctx context.Context, threadID string) (*model.Message, error) {
	m, err := c.session.ChannelMessage(threadID, threadID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify("get starter message", err)
	}
	msg := toMessage(m)
	return &msg, nil
}

func (c *Client) DeleteThread(ctx context.Context, threadID string) error {
	_, err := c.session.ChannelDelete(threadID, discordgo.WithContext(ctx))
	return classify("delete thread", err)
}

// ChannelHistory pages backwards through a channel's full history, newest message first.
func (c *Client) ChannelHistory(ctx context.Context, channelID string) ([]model.Message, error) {
	return pageHistory(ctx, func(before string) ([]*discordgo.Message, error) {
		return c.session.ChannelMessages(channelID, pageSize, before, "", "", discordgo.WithContext(ctx))
	})
}

// pageHistory calls fetch with the oldest id seen so far until a short page ends the history.
func pageHistory(ctx context.Context, fetch func(before string) ([]*discordgo.Message, error)) ([]model.Message, error) {
	var (
		out    []model.Message
		before string
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msgs, err := fetch(before)
		if err != nil {
			return nil, classify("list messages", err)
		}
		for _, m := range msgs {
			out = append(out, toMessage(m))
		}
		if len(msgs) < pageSize {
			return out, nil
		}
		before = msgs[len(msgs)-1].ID
	}
}

func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return classify("delete message", c.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)))
}

// PostLog sends a titled embed to a guild channel.
func (c *Client) PostLog(ctx context.Context, channelID, title, description string) error {
	if channelID == "" {
		return nil
	}
	_, err := c.session.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       embedColor,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}, discordgo.WithContext(ctx))
	return classify("post log", err)
}

// SlowmodeDelay returns the per-user message interval of a channel in seconds.
func (c *Client) SlowmodeDelay(ctx context.Context, channelID string) (int, error) {
	ch, err := c.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return 0, classify("get channel", err)
	}
	return ch.RateLimitPerUser, nil
}

func (c *Client) SetSlowmode(ctx context.Context, channelID string, seconds int) error {
	_, err := c.session.ChannelEdit(channelID, &discordgo.ChannelEdit{RateLimitPerUser: &seconds}, discordgo.WithContext(ctx))
	return classify("set slowmode", err)
}

func (c *Client) SendMessage(ctx context.Context, channelID, content string) error {
	_, err := c.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	return classify("send message", err)
}

func (c *Client) PostEmbed(ctx context.Context, channelID string, embed model.Embed) (string, error) {
	msg, err := c.session.ChannelMessageSendEmbed(channelID, toEmbed(embed), discordgo.WithContext(ctx))
	if err != nil {
		return "", classify("post embed", err)
	}
	return msg.ID, nil
}

func toEmbed(e model.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       embedColor,
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if e.Footer != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	return out
}

// ToMember converts a discordgo member, as found on interactions and gateway events.
func ToMember(m *discordgo.Member) *model.Member {
	if m == nil {
		return nil
	}
	member := &model.Member{
		DisplayName: m.Nick,
		RoleIDs:     m.Roles,
		JoinedAt:    m.JoinedAt,
	}
	if m.User != nil {
		member.UserID = m.User.ID
		member.Username = m.User.Username
		if member.DisplayName == "" {
			member.DisplayName = m.User.GlobalName
		}
		if member.DisplayName == "" {
			member.DisplayName = m.User.Username
		}
	}
	return member
}

func toThread(ch *discordgo.Channel) model.Thread {
	created, _ := discordgo.SnowflakeTimestamp(ch.ID)
	t := model.Thread{
		ID:             ch.ID,
		ParentID:       ch.ParentID,
		Name:           ch.Name,
		Pinned:         ch.Flags&discordgo.ChannelFlagPinned != 0,
		CreatedAt:      created,
		LastActivityAt: created,
	}
	if ch.LastMessageID != "" {
		if last, err := discordgo.SnowflakeTimestamp(ch.LastMessageID); err == nil {
			t.LastActivityAt = last
		}
	}
	return t
}

func toMessage(m *discordgo.Message) model.Message {
	msg := model.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
		Pinned:    m.Pinned,
		SentAt:    m.Timestamp,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
	}
	return msg
}
