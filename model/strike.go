package model

import "time"

// StrikeSeverity is persisted as 1, 2 or 3.
type StrikeSeverity int

const (
	SeverityMinor    StrikeSeverity = 1
	SeverityModerate StrikeSeverity = 2
	SeveritySerious  StrikeSeverity = 3
)

// Points returns the weight of a strike of this severity.
func (s StrikeSeverity) Points() int {
	switch s {
	case SeverityMinor:
		return 1
	case SeverityModerate:
		return 3
	case SeveritySerious:
		return 7
	}
	return 0
}

// Permanent reports whether the points of this severity never decay.
func (s StrikeSeverity) Permanent() bool {
	return s == SeveritySerious
}

func (s StrikeSeverity) Valid() bool {
	return s >= SeverityMinor && s <= SeveritySerious
}

func (s StrikeSeverity) String() string {
	switch s {
	case SeverityMinor:
		return "Minor"
	case SeverityModerate:
		return "Moderate"
	case SeveritySerious:
		return "Serious"
	}
	return "Unknown"
}

// Strike is a single recorded infraction.
type Strike struct {
	ID           int64          `db:"strike_id" json:"strike_id"`
	UserID       int64          `db:"user_id" json:"user_id"`
	Severity     StrikeSeverity `db:"severity" json:"severity"`
	Reason       string         `db:"reason" json:"reason"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	CreatedBy    string         `db:"created_by" json:"created_by"`
	LastEditedAt time.Time      `db:"last_edited_at" json:"last_edited_at"`
	LastEditedBy string         `db:"last_edited_by" json:"last_edited_by"`
}
