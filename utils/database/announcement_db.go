package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"moddingway/model"
)

const announcementColumns = `announcement_id, content, created_at, created_by, last_edited_at, last_edited_by,
	is_sent, channel_id, message_id`

// AddAnnouncement inserts an unsent draft and returns its id.
func (s *Store) AddAnnouncement(ctx context.Context, a *model.Announcement) (int64, error) {
	var id int64
	query := s.rebind(`INSERT INTO announcements (content, created_at, created_by, last_edited_at, last_edited_by, is_sent)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING announcement_id`)
	err := s.db.QueryRowxContext(ctx, query,
		a.Content, utc(a.CreatedAt), a.CreatedBy, utc(a.LastEditedAt), a.LastEditedBy, false,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert announcement: %w", err)
	}
	return id, nil
}

func (s *Store) GetAnnouncement(ctx context.Context, id int64) (*model.Announcement, error) {
	var a model.Announcement
	query := s.rebind(`SELECT ` + announcementColumns + ` FROM announcements WHERE announcement_id = ?`)
	if err := s.db.GetContext(ctx, &a, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get announcement %d: %w", id, err)
	}
	return &a, nil
}

// MarkAnnouncementSent links a draft to its published message. It fails with ErrNotFound
// when the draft is missing or was already sent.
func (s *Store) MarkAnnouncementSent(ctx context.Context, id int64, channelID, messageID, actorID string, at time.Time) error {
	query := s.rebind(`UPDATE announcements SET is_sent = ?, channel_id = ?, message_id = ?, last_edited_at = ?, last_edited_by = ?
		WHERE announcement_id = ? AND is_sent = ?`)
	return s.execOne(ctx, query, fmt.Sprintf("unsent announcement %d", id),
		true, channelID, messageID, utc(at), actorID, id, false)
}
