package model

import "time"

// BanForm is an appeal submitted by a banned user. Approval is nil until a moderator reviews it.
type BanForm struct {
	ID          int64     `db:"form_id" json:"form_id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Reason      string    `db:"reason" json:"reason"`
	Approval    *bool     `db:"approval" json:"approval"`
	ApprovedBy  *string   `db:"approved_by" json:"approved_by"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
}
