package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"moddingway/model"
)

const banFormColumns = `form_id, user_id, reason, approval, approved_by, submitted_at`

// AddBanForm inserts an unreviewed appeal and returns its id.
func (s *Store) AddBanForm(ctx context.Context, form *model.BanForm) (int64, error) {
	var id int64
	query := s.rebind(`INSERT INTO forms (user_id, reason, submitted_at) VALUES (?, ?, ?) RETURNING form_id`)
	if err := s.db.QueryRowxContext(ctx, query, form.UserID, form.Reason, utc(form.SubmittedAt)).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert ban form for user %d: %w", form.UserID, err)
	}
	return id, nil
}

// GetBanForm retrieves a single appeal by id.
func (s *Store) GetBanForm(ctx context.Context, id int64) (*model.BanForm, error) {
	var form model.BanForm
	query := s.rebind(`SELECT ` + banFormColumns + ` FROM forms WHERE form_id = ?`)
	if err := s.db.GetContext(ctx, &form, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ban form %d: %w", id, err)
	}
	return &form, nil
}

// ListBanForms pages through appeals, oldest first.
func (s *Store) ListBanForms(ctx context.Context, limit, offset int) ([]model.BanForm, error) {
	forms := []model.BanForm{}
	query := s.rebind(`SELECT ` + banFormColumns + ` FROM forms ORDER BY form_id LIMIT ? OFFSET ?`)
	if err := s.db.SelectContext(ctx, &forms, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list ban forms: %w", err)
	}
	return forms, nil
}

func (s *Store) CountBanForms(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM forms`); err != nil {
		return 0, fmt.Errorf("failed to count ban forms: %w", err)
	}
	return n, nil
}

// ReviewBanForm records a moderator's decision on an appeal.
func (s *Store) ReviewBanForm(ctx context.Context, id int64, approval bool, approverID string) error {
	query := s.rebind(`UPDATE forms SET approval = ?, approved_by = ? WHERE form_id = ?`)
	return s.execOne(ctx, query, fmt.Sprintf("ban form %d", id), approval, approverID, id)
}
