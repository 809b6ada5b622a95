package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// AddStickyRoles saves roles stripped from a user for later restoration.
func (s *Store) AddStickyRoles(ctx context.Context, userID int64, roleIDs []string) error {
	if len(roleIDs) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`INSERT INTO sticky_roles (user_id, role_id) VALUES (?, ?)`)
		for _, roleID := range roleIDs {
			if _, err := tx.ExecContext(ctx, query, userID, roleID); err != nil {
				return fmt.Errorf("failed to save sticky role %s for user %d: %w", roleID, userID, err)
			}
		}
		return nil
	})
}

// GetStickyRoles returns the roles saved for a user.
func (s *Store) GetStickyRoles(ctx context.Context, userID int64) ([]string, error) {
	roles := []string{}
	query := s.rebind(`SELECT role_id FROM sticky_roles WHERE user_id = ? ORDER BY sticky_role_id`)
	if err := s.db.SelectContext(ctx, &roles, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get sticky roles for user %d: %w", userID, err)
	}
	return roles, nil
}

// RemoveStickyRoles forgets every role saved for a user.
func (s *Store) RemoveStickyRoles(ctx context.Context, userID int64) error {
	query := s.rebind(`DELETE FROM sticky_roles WHERE user_id = ?`)
	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to remove sticky roles for user %d: %w", userID, err)
	}
	return nil
}

// RemoveStickyRole forgets a single saved role.
func (s *Store) RemoveStickyRole(ctx context.Context, userID int64, roleID string) error {
	query := s.rebind(`DELETE FROM sticky_roles WHERE user_id = ? AND role_id = ?`)
	if _, err := s.db.ExecContext(ctx, query, userID, roleID); err != nil {
		return fmt.Errorf("failed to remove sticky role %s for user %d: %w", roleID, userID, err)
	}
	return nil
}
