package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"moddingway/model"

	"github.com/jmoiron/sqlx"
)

const userColumns = `user_id, discord_user_id, discord_guild_id, user_role, temporary_points,
	permanent_points, last_infraction_at, is_banned`

// GetUser looks a user up by platform id.
func (s *Store) GetUser(ctx context.Context, discordUserID string) (*model.User, error) {
	var u model.User
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE discord_user_id = ?`)
	if err := s.db.GetContext(ctx, &u, query, discordUserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", discordUserID, err)
	}
	return &u, nil
}

// GetUserByID looks a user up by store id.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE user_id = ?`)
	if err := s.db.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, err)
	}
	return &u, nil
}

// AddUser inserts an ordinary user with zero points who is not banned.
func (s *Store) AddUser(ctx context.Context, discordUserID, guildID string) (*model.User, error) {
	var id int64
	query := s.rebind(`INSERT INTO users (discord_user_id, discord_guild_id, user_role, temporary_points, permanent_points, is_banned)
		VALUES (?, ?, ?, 0, 0, ?) RETURNING user_id`)
	if err := s.db.QueryRowxContext(ctx, query, discordUserID, guildID, model.RoleOrdinary, false).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to insert user %s: %w", discordUserID, err)
	}
	return &model.User{
		ID:             id,
		DiscordUserID:  discordUserID,
		DiscordGuildID: guildID,
		Role:           model.RoleOrdinary,
	}, nil
}

// GetOrCreateUser returns the user with the given platform id, inserting it if absent.
func (s *Store) GetOrCreateUser(ctx context.Context, discordUserID, guildID string) (*model.User, error) {
	u, err := s.GetUser(ctx, discordUserID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.AddUser(ctx, discordUserID, guildID)
}

// UpdateUserPoints persists both point totals and the last infraction time.
func (s *Store) UpdateUserPoints(ctx context.Context, u *model.User) error {
	var last interface{}
	if u.LastInfractionAt != nil {
		last = utc(*u.LastInfractionAt)
	}
	query := s.rebind(`UPDATE users SET temporary_points = ?, permanent_points = ?, last_infraction_at = ? WHERE user_id = ?`)
	return s.execOne(ctx, query, fmt.Sprintf("user %d", u.ID), u.TemporaryPoints, u.PermanentPoints, last, u.ID)
}

// SetUserBanned flags or unflags a user as banned.
func (s *Store) SetUserBanned(ctx context.Context, id int64, banned bool) error {
	query := s.rebind(`UPDATE users SET is_banned = ? WHERE user_id = ?`)
	return s.execOne(ctx, query, fmt.Sprintf("user %d", id), banned, id)
}

// SetUserRole records the role classification of a user.
func (s *Store) SetUserRole(ctx context.Context, id int64, role model.UserRole) error {
	query := s.rebind(`UPDATE users SET user_role = ? WHERE user_id = ?`)
	return s.execOne(ctx, query, fmt.Sprintf("user %d", id), role, id)
}

// ListUsers pages through all users ordered by store id.
func (s *Store) ListUsers(ctx context.Context, limit, offset int) ([]model.User, error) {
	return s.listUsers(ctx, "", nil, limit, offset)
}

// CountUsers returns the number of users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	return s.countUsers(ctx, "", nil)
}

// ListUsersByRole pages through users with the given role.
func (s *Store) ListUsersByRole(ctx context.Context, role model.UserRole, limit, offset int) ([]model.User, error) {
	return s.listUsers(ctx, "WHERE user_role = ?", []interface{}{role}, limit, offset)
}

func (s *Store) CountUsersByRole(ctx context.Context, role model.UserRole) (int, error) {
	return s.countUsers(ctx, "WHERE user_role = ?", []interface{}{role})
}

// ListBannedUsers pages through users flagged as banned.
func (s *Store) ListBannedUsers(ctx context.Context, limit, offset int) ([]model.User, error) {
	return s.listUsers(ctx, "WHERE is_banned = ?", []interface{}{true}, limit, offset)
}

func (s *Store) CountBannedUsers(ctx context.Context) (int, error) {
	return s.countUsers(ctx, "WHERE is_banned = ?", []interface{}{true})
}

func (s *Store) listUsers(ctx context.Context, where string, args []interface{}, limit, offset int) ([]model.User, error) {
	users := []model.User{}
	query := s.rebind(`SELECT ` + userColumns + ` FROM users ` + where + ` ORDER BY user_id LIMIT ? OFFSET ?`)
	args = append(args, limit, offset)
	if err := s.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *Store) countUsers(ctx context.Context, where string, args []interface{}) (int, error) {
	var n int
	query := s.rebind(`SELECT COUNT(*) FROM users ` + where)
	if err := s.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// DecrementOldStrikePoints removes one temporary point from every user whose last
// infraction is older than cutoff and moves that infraction forward by window.
// It returns the number of users decayed.
func (s *Store) DecrementOldStrikePoints(ctx context.Context, cutoff time.Time, window time.Duration) (int64, error) {
	type candidate struct {
		ID               int64     `db:"user_id"`
		LastInfractionAt time.Time `db:"last_infraction_at"`
	}

	var affected int64
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var candidates []candidate
		query := tx.Rebind(`SELECT user_id, last_infraction_at FROM users
			WHERE temporary_points > 0 AND last_infraction_at IS NOT NULL AND last_infraction_at < ?`)
		if err := tx.SelectContext(ctx, &candidates, query, utc(cutoff)); err != nil {
			return fmt.Errorf("failed to select users for decay: %w", err)
		}

		update := tx.Rebind(`UPDATE users SET temporary_points = temporary_points - 1, last_infraction_at = ?
			WHERE user_id = ? AND temporary_points > 0`)
		for _, c := range candidates {
			res, err := tx.ExecContext(ctx, update, utc(c.LastInfractionAt.Add(window)), c.ID)
			if err != nil {
				return fmt.Errorf("failed to decay points for user %d: %w", c.ID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to check rows affected for user %d: %w", c.ID, err)
			}
			affected += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// DecrementUserStrikePoints subtracts points from a user, clamping both totals at zero.
func (s *Store) DecrementUserStrikePoints(ctx context.Context, id int64, temporary, permanent int) error {
	query := s.rebind(`UPDATE users SET
		temporary_points = CASE WHEN temporary_points > ? THEN temporary_points - ? ELSE 0 END,
		permanent_points = CASE WHEN permanent_points > ? THEN permanent_points - ? ELSE 0 END
		WHERE user_id = ?`)
	return s.execOne(ctx, query, fmt.Sprintf("user %d", id), temporary, temporary, permanent, permanent, id)
}

// execOne runs an update that must touch exactly one row.
func (s *Store) execOne(ctx context.Context, query, what string, args ...interface{}) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for %s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("no %s found: %w", what, ErrNotFound)
	}
	return nil
}
