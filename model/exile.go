package model

import "time"

// ExileStatus is persisted as 1, 2 or 3.
type ExileStatus int

const (
	ExileTimed    ExileStatus = 1
	ExileUnexiled ExileStatus = 2
	ExileUnknown  ExileStatus = 3
)

func (s ExileStatus) String() string {
	switch s {
	case ExileTimed:
		return "TIMED_EXILED"
	case ExileUnexiled:
		return "UNEXILED"
	case ExileUnknown:
		return "UNKNOWN"
	}
	return "INVALID"
}

// Terminal reports whether no automated transition leaves this status.
func (s ExileStatus) Terminal() bool {
	return s == ExileUnexiled || s == ExileUnknown
}

// Exile is a time-bound suspension. A nil EndAt means indefinite.
type Exile struct {
	ID      int64       `db:"exile_id" json:"exile_id"`
	UserID  int64       `db:"user_id" json:"user_id"`
	Reason  string      `db:"reason" json:"reason"`
	Status  ExileStatus `db:"exile_status" json:"exile_status"`
	StartAt time.Time   `db:"start_at" json:"start_at"`
	EndAt   *time.Time  `db:"end_at" json:"end_at"`
}

// UserExile is an exile joined with its owner's platform id.
type UserExile struct {
	Exile
	DiscordUserID string `db:"discord_user_id" json:"discord_user_id"`
}
