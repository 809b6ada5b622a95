package model

import "time"

// UserRole classifies a moderated user.
type UserRole int

const (
	RoleOrdinary UserRole = 1
	RoleMod      UserRole = 2
	RoleAdmin    UserRole = 3
)

// User is the store record of a moderated guild member.
type User struct {
	ID               int64      `db:"user_id" json:"user_id"`
	DiscordUserID    string     `db:"discord_user_id" json:"discord_user_id"`
	DiscordGuildID   string     `db:"discord_guild_id" json:"discord_guild_id"`
	Role             UserRole   `db:"user_role" json:"user_role"`
	TemporaryPoints  int        `db:"temporary_points" json:"temporary_points"`
	PermanentPoints  int        `db:"permanent_points" json:"permanent_points"`
	LastInfractionAt *time.Time `db:"last_infraction_at" json:"last_infraction_at"`
	IsBanned         bool       `db:"is_banned" json:"is_banned"`
}

// TotalPoints is the strike score the punishment table is evaluated against.
func (u *User) TotalPoints() int {
	return u.TemporaryPoints + u.PermanentPoints
}
