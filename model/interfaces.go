package model

import "context"

// Notifier delivers direct messages to users.
type Notifier interface {
	SendDirectMessage(ctx context.Context, userID, text string) error
}

// RoleAssigner adds and removes guild roles.
type RoleAssigner interface {
	AssignRole(ctx context.Context, userID, roleID string) error
	RemoveRole(ctx context.Context, userID, roleID string) error
}

// Banner bans users from the guild.
type Banner interface {
	Ban(ctx context.Context, userID, reason string, deleteHistory bool) error
}

// MemberLookup resolves guild members by platform id.
type MemberLookup interface {
	GetMember(ctx context.Context, userID string) (*Member, error)
}

// ThreadSource lists and deletes forum threads.
type ThreadSource interface {
	ForumThreads(ctx context.Context, forumID string) ([]Thread, error)
	StarterMessage(ctx context.Context, threadID string) (*Message, error)
	DeleteThread(ctx context.Context, threadID string) error
}

// MessageSource lists and deletes channel messages.
type MessageSource interface {
	ChannelHistory(ctx context.Context, channelID string) ([]Message, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// ModLogger posts moderation summaries to a guild channel.
type ModLogger interface {
	PostLog(ctx context.Context, channelID, title, description string) error
}

// Platform is everything the moderation core calls on the chat platform.
type Platform interface {
	Notifier
	RoleAssigner
	Banner
	MemberLookup
}

// Unbanner lifts guild bans.
type Unbanner interface {
	Unban(ctx context.Context, userID string) error
}

// ChannelManager edits and posts to guild text channels.
type ChannelManager interface {
	SlowmodeDelay(ctx context.Context, channelID string) (int, error)
	SetSlowmode(ctx context.Context, channelID string, seconds int) error
	SendMessage(ctx context.Context, channelID, content string) error
	// PostEmbed returns the id of the posted message.
	PostEmbed(ctx context.Context, channelID string, embed Embed) (string, error)
}
