package model

import "time"

// Note is a moderator annotation on a user. Warnings are notes that were also sent to the user.
type Note struct {
	ID           int64     `db:"note_id" json:"note_id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	Content      string    `db:"content" json:"content"`
	IsWarning    bool      `db:"is_warning" json:"is_warning"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	CreatedBy    string    `db:"created_by" json:"created_by"`
	LastEditedAt time.Time `db:"last_edited_at" json:"last_edited_at"`
	LastEditedBy string    `db:"last_edited_by" json:"last_edited_by"`
}
