package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"moddingway/model"
)

const exileColumns = `e.exile_id, e.user_id, e.reason, e.exile_status, e.start_at, e.end_at`

// AddExile inserts an exile record and returns its id.
func (s *Store) AddExile(ctx context.Context, exile *model.Exile) (int64, error) {
	var end interface{}
	if exile.EndAt != nil {
		end = utc(*exile.EndAt)
	}

	var id int64
	query := s.rebind(`INSERT INTO exiles (user_id, reason, exile_status, start_at, end_at)
		VALUES (?, ?, ?, ?, ?) RETURNING exile_id`)
	err := s.db.QueryRowxContext(ctx, query,
		exile.UserID, exile.Reason, exile.Status, utc(exile.StartAt), end,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert exile for user %d: %w", exile.UserID, err)
	}
	return id, nil
}

// UpdateExileStatus moves an exile to a new status.
func (s *Store) UpdateExileStatus(ctx context.Context, id int64, status model.ExileStatus) error {
	query := s.rebind(`UPDATE exiles SET exile_status = ? WHERE exile_id = ?`)
	return s.execOne(ctx, query, fmt.Sprintf("exile %d", id), status, id)
}

// UpdateExileEnd moves the end of an exile.
func (s *Store) UpdateExileEnd(ctx context.Context, id int64, end time.Time) error {
	query := s.rebind(`UPDATE exiles SET end_at = ? WHERE exile_id = ?`)
	return s.execOne(ctx, query, fmt.Sprintf("exile %d", id), utc(end), id)
}

// GetUserActiveExile returns the user's TIMED_EXILED record.
func (s *Store) GetUserActiveExile(ctx context.Context, userID int64) (*model.Exile, error) {
	var exile model.Exile
	query := s.rebind(`SELECT ` + exileColumns + ` FROM exiles e
		WHERE e.user_id = ? AND e.exile_status = ? ORDER BY e.start_at DESC LIMIT 1`)
	if err := s.db.GetContext(ctx, &exile, query, userID, model.ExileTimed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get active exile for user %d: %w", userID, err)
	}
	return &exile, nil
}

// GetPendingUnexiles returns every TIMED_EXILED record whose end is before now.
func (s *Store) GetPendingUnexiles(ctx context.Context, now time.Time) ([]model.UserExile, error) {
	exiles := []model.UserExile{}
	query := s.rebind(`SELECT ` + exileColumns + `, u.discord_user_id FROM exiles e
		JOIN users u ON u.user_id = e.user_id
		WHERE e.exile_status = ? AND e.end_at IS NOT NULL AND e.end_at < ?
		ORDER BY e.end_at`)
	if err := s.db.SelectContext(ctx, &exiles, query, model.ExileTimed, utc(now)); err != nil {
		return nil, fmt.Errorf("failed to get pending unexiles: %w", err)
	}
	return exiles, nil
}

// ListUserExiles returns every exile of a user, newest first.
func (s *Store) ListUserExiles(ctx context.Context, userID int64) ([]model.Exile, error) {
	exiles := []model.Exile{}
	query := s.rebind(`SELECT ` + exileColumns + ` FROM exiles e WHERE e.user_id = ? ORDER BY e.start_at DESC, e.exile_id DESC`)
	if err := s.db.SelectContext(ctx, &exiles, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get exiles for user %d: %w", userID, err)
	}
	return exiles, nil
}

// ListActiveExiles returns every TIMED_EXILED record except those with excludeReason.
func (s *Store) ListActiveExiles(ctx context.Context, excludeReason string) ([]model.UserExile, error) {
	exiles := []model.UserExile{}
	query := s.rebind(`SELECT ` + exileColumns + `, u.discord_user_id FROM exiles e
		JOIN users u ON u.user_id = e.user_id
		WHERE e.exile_status = ? AND e.reason <> ?
		ORDER BY e.end_at`)
	if err := s.db.SelectContext(ctx, &exiles, query, model.ExileTimed, excludeReason); err != nil {
		return nil, fmt.Errorf("failed to get active exiles: %w", err)
	}
	return exiles, nil
}
