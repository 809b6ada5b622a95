package model

import "time"

// Member is the slice of a guild member the moderation core needs.
type Member struct {
	UserID      string
	Username    string
	DisplayName string
	RoleIDs     []string
	JoinedAt    time.Time
}

func (m *Member) HasRole(roleID string) bool {
	if m == nil || roleID == "" {
		return false
	}
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// Mention renders the member as a platform mention.
func (m *Member) Mention() string {
	return "<@" + m.UserID + ">"
}

// Thread is a forum post as seen by the inactivity reaper.
type Thread struct {
	ID        string
	ParentID  string
	Name      string
	Pinned    bool
	CreatedAt time.Time
	// LastActivityAt falls back to CreatedAt when the thread has no messages.
	LastActivityAt time.Time
}

// Message is a channel message as seen by the inactivity reaper.
type Message struct {
	ID        string
	ChannelID string
	AuthorID  string
	Content   string
	Pinned    bool
	SentAt    time.Time
}
