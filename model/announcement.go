package model

import "time"

// Announcement is a drafted community announcement. It is published at most once.
type Announcement struct {
	ID           int64     `db:"announcement_id" json:"announcement_id"`
	Content      string    `db:"content" json:"content"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	CreatedBy    string    `db:"created_by" json:"created_by"`
	LastEditedAt time.Time `db:"last_edited_at" json:"last_edited_at"`
	LastEditedBy string    `db:"last_edited_by" json:"last_edited_by"`
	Sent         bool      `db:"is_sent" json:"is_sent"`
	// ChannelID and MessageID locate the published message. Both are empty until sent.
	ChannelID string `db:"channel_id" json:"channel_id"`
	MessageID string `db:"message_id" json:"message_id"`
}

// Embed is a rich message posted by the bot.
type Embed struct {
	Title       string
	Description string
	Fields      []EmbedField
	Footer      string
}

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}
