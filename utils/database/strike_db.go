package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"moddingway/model"

	"github.com/jmoiron/sqlx"
)

const strikeColumns = `strike_id, user_id, severity, reason, created_at, created_by, last_edited_at, last_edited_by`

// AddStrike inserts a strike and returns its id.
func (s *Store) AddStrike(ctx context.Context, strike *model.Strike) (int64, error) {
	var id int64
	query := s.rebind(`INSERT INTO strikes (user_id, severity, reason, created_at, created_by, last_edited_at, last_edited_by)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING strike_id`)
	err := s.db.QueryRowxContext(ctx, query,
		strike.UserID, strike.Severity, strike.Reason,
		utc(strike.CreatedAt), strike.CreatedBy,
		utc(strike.LastEditedAt), strike.LastEditedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert strike for user %d: %w", strike.UserID, err)
	}
	return id, nil
}

// ListStrikes returns a user's strikes, newest first.
func (s *Store) ListStrikes(ctx context.Context, userID int64) ([]model.Strike, error) {
	strikes := []model.Strike{}
	query := s.rebind(`SELECT ` + strikeColumns + ` FROM strikes WHERE user_id = ? ORDER BY created_at DESC, strike_id DESC`)
	if err := s.db.SelectContext(ctx, &strikes, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get strikes for user %d: %w", userID, err)
	}
	return strikes, nil
}

// GetStrike retrieves a single strike by id.
func (s *Store) GetStrike(ctx context.Context, id int64) (*model.Strike, error) {
	return getStrike(ctx, s.db, id)
}

// DeleteStrike removes a strike and returns the deleted row.
func (s *Store) DeleteStrike(ctx context.Context, id int64) (*model.Strike, error) {
	var deleted *model.Strike
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		strike, err := getStrike(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM strikes WHERE strike_id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete strike %d: %w", id, err)
		}
		deleted = strike
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func getStrike(ctx context.Context, q queryer, id int64) (*model.Strike, error) {
	var strike model.Strike
	query := q.Rebind(`SELECT ` + strikeColumns + ` FROM strikes WHERE strike_id = ?`)
	if err := sqlx.GetContext(ctx, q, &strike, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get strike %d: %w", id, err)
	}
	return &strike, nil
}
