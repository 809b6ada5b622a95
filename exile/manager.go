package exile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moddingway/logging"
	"moddingway/metrics"
	"moddingway/model"
	"moddingway/utils/database"
)

// RouletteReason marks self-inflicted exiles, which active-exile listings leave out.
const RouletteReason = "roulette"

var (
	ErrNotVerified = errors.New("User is not currently verified, no action will be taken")
	ErrNotExiled   = errors.New("User is not currently exiled, no action will be taken")
	ErrNoRecord    = errors.New("User not found in database")
)

// Store is the persistence the exile lifecycle needs.
type Store interface {
	GetUser(ctx context.Context, discordUserID string) (*model.User, error)
	GetOrCreateUser(ctx context.Context, discordUserID, guildID string) (*model.User, error)
	AddExile(ctx context.Context, exile *model.Exile) (int64, error)
	UpdateExileStatus(ctx context.Context, id int64, status model.ExileStatus) error
	UpdateExileEnd(ctx context.Context, id int64, end time.Time) error
	GetUserActiveExile(ctx context.Context, userID int64) (*model.Exile, error)
	GetPendingUnexiles(ctx context.Context, now time.Time) ([]model.UserExile, error)
	ListUserExiles(ctx context.Context, userID int64) ([]model.Exile, error)
	ListActiveExiles(ctx context.Context, excludeReason string) ([]model.UserExile, error)
	AddStickyRoles(ctx context.Context, userID int64, roleIDs []string) error
	GetStickyRoles(ctx context.Context, userID int64) ([]string, error)
	RemoveStickyRoles(ctx context.Context, userID int64) error
	RemoveStickyRole(ctx context.Context, userID int64, roleID string) error
}

// Platform is the chat-platform surface the exile lifecycle drives.
type Platform interface {
	model.Notifier
	model.RoleAssigner
	model.MemberLookup
}

// Result describes a completed exile or unexile. DM and sticky-role failures never
// fail the operation and are reported here instead.
type Result struct {
	ExileID       int64
	Extended      bool
	EndAt         *time.Time
	StickyRoles   []string
	DMErr         error
	StickyRoleErr error
}

// ReconcileSummary counts the outcome of one expiry sweep.
type ReconcileSummary struct {
	Pending  int
	Unexiled int
	Unknown  int
}

// Manager creates, extends and resolves exiles.
type Manager struct {
	cfg      *model.Config
	store    Store
	platform Platform
	metrics  *metrics.MetricsRegistry
	now      func() time.Time
}

func NewManager(cfg *model.Config, store Store, platform Platform, m *metrics.MetricsRegistry) *Manager {
	return &Manager{
		cfg:      cfg,
		store:    store,
		platform: platform,
		metrics:  m,
		now:      time.Now,
	}
}

// Exile suspends a verified member for duration. An unverified member who is already
// exiled has the running exile extended by duration instead.
func (m *Manager) Exile(ctx context.Context, member *model.Member, duration time.Duration, reason string) (*Result, error) {
	now := m.now().UTC()
	verified := member.HasRole(m.cfg.Roles.Verified)

	user, err := m.store.GetUser(ctx, member.UserID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	if user != nil {
		active, err := m.activeExile(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if active != nil {
			if !verified {
				return m.extend(ctx, member, active, duration)
			}
			// The member was re-verified outside the bot; the old record can no longer be trusted.
			logging.Warn("Verified user has an active exile record, marking it unknown",
				"user_id", member.UserID, "exile_id", active.ID)
			if err := m.store.UpdateExileStatus(ctx, active.ID, model.ExileUnknown); err != nil {
				return nil, err
			}
			m.metrics.ExileTransitionsTotal.WithLabelValues(model.ExileUnknown.String()).Inc()
		}
	}

	if !verified {
		return nil, ErrNotVerified
	}

	if user == nil {
		logging.Info("User not found in database, creating new record", "user_id", member.UserID)
		if user, err = m.store.GetOrCreateUser(ctx, member.UserID, m.cfg.GuildID); err != nil {
			return nil, err
		}
	}

	end := now.Add(duration)
	id, err := m.store.AddExile(ctx, &model.Exile{
		UserID:  user.ID,
		Reason:  reason,
		Status:  model.ExileTimed,
		StartAt: now,
		EndAt:   &end,
	})
	if err != nil {
		return nil, err
	}
	logging.Info("Created exile", "exile_id", id, "user_id", member.UserID, "end_at", end)

	if err := m.swapRoles(ctx, member.UserID, m.cfg.Roles.Verified, m.cfg.Roles.Exiled); err != nil {
		m.markUnknown(ctx, id)
		return nil, fmt.Errorf("failed to swap roles for exile: %w", err)
	}
	m.metrics.ExileTransitionsTotal.WithLabelValues(model.ExileTimed.String()).Inc()

	res := &Result{ExileID: id, EndAt: &end}
	res.StickyRoles, res.StickyRoleErr = m.stripStickyRoles(ctx, member, user.ID)
	res.DMErr = m.notify(ctx, member.UserID, fmt.Sprintf(
		"You are being exiled from %s.\n**Reason:** %s\nExile expiration: <t:%d:R>",
		m.cfg.CommunityName, reason, end.Unix()))

	logging.Info("User exiled", "user_id", member.UserID, "exile_id", id, "duration", duration.String())
	return res, nil
}

func (m *Manager) extend(ctx context.Context, member *model.Member, active *model.Exile, duration time.Duration) (*Result, error) {
	res := &Result{ExileID: active.ID, Extended: true}
	if active.EndAt == nil {
		logging.Info("Active exile is indefinite, nothing to extend", "user_id", member.UserID, "exile_id", active.ID)
		return res, nil
	}

	end := active.EndAt.Add(duration).UTC()
	if err := m.store.UpdateExileEnd(ctx, active.ID, end); err != nil {
		return nil, err
	}
	res.EndAt = &end
	logging.Info("Exile extended", "user_id", member.UserID, "exile_id", active.ID, "end_at", end)
	return res, nil
}

// Unexile restores an exiled member and closes their active exile record.
func (m *Manager) Unexile(ctx context.Context, member *model.Member) (*Result, error) {
	if !member.HasRole(m.cfg.Roles.Exiled) {
		return nil, ErrNotExiled
	}

	if err := m.swapRoles(ctx, member.UserID, m.cfg.Roles.Exiled, m.cfg.Roles.Verified); err != nil {
		return nil, fmt.Errorf("failed to swap roles for unexile: %w", err)
	}

	res := &Result{}
	res.DMErr = m.notify(ctx, member.UserID, fmt.Sprintf("You have been un-exiled from %s.", m.cfg.CommunityName))

	user, err := m.store.GetUser(ctx, member.UserID)
	if errors.Is(err, database.ErrNotFound) {
		logging.Warn("User unexiled without a database record", "user_id", member.UserID)
		return res, nil
	}
	if err != nil {
		return nil, err
	}

	active, err := m.activeExile(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		logging.Info("No active exile found, skipping database update", "user_id", member.UserID)
	} else {
		if err := m.store.UpdateExileStatus(ctx, active.ID, model.ExileUnexiled); err != nil {
			return nil, err
		}
		m.metrics.ExileTransitionsTotal.WithLabelValues(model.ExileUnexiled.String()).Inc()
		res.ExileID = active.ID
	}

	res.StickyRoles, res.StickyRoleErr = m.restoreStickyRoles(ctx, member.UserID, user.ID)

	logging.Info("User unexiled", "user_id", member.UserID, "exile_id", res.ExileID)
	return res, nil
}

// ReconcileExpired unexiles every member whose exile has run out. Records that cannot
// be resolved are marked UNKNOWN so they are not retried.
func (m *Manager) ReconcileExpired(ctx context.Context) (ReconcileSummary, error) {
	var summary ReconcileSummary

	pending, err := m.store.GetPendingUnexiles(ctx, m.now().UTC())
	if err != nil {
		logging.Error("Failed to fetch pending unexiles", "error", err)
		return summary, err
	}
	summary.Pending = len(pending)

	for _, p := range pending {
		member, err := m.platform.GetMember(ctx, p.DiscordUserID)
		if err != nil {
			if model.IsNotFound(err) {
				logging.Info("Exiled member is no longer in the guild", "user_id", p.DiscordUserID, "exile_id", p.ID)
			} else {
				logging.Error("Failed to look up exiled member", "user_id", p.DiscordUserID, "exile_id", p.ID, "error", err)
			}
			m.markUnknown(ctx, p.ID)
			summary.Unknown++
			continue
		}

		if _, err := m.Unexile(ctx, member); err != nil {
			logging.Error("Failed to unexile member, marking exile unknown",
				"user_id", p.DiscordUserID, "exile_id", p.ID, "error", err)
			m.markUnknown(ctx, p.ID)
			summary.Unknown++
			continue
		}
		summary.Unexiled++
	}

	if summary.Pending > 0 {
		logging.Info("Exile reconciliation finished",
			"pending", summary.Pending, "unexiled", summary.Unexiled, "unknown", summary.Unknown)
	}
	return summary, nil
}

// UserExiles returns the exile history of a member.
func (m *Manager) UserExiles(ctx context.Context, discordUserID string) ([]model.Exile, error) {
	user, err := m.store.GetUser(ctx, discordUserID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	return m.store.ListUserExiles(ctx, user.ID)
}

// ActiveExiles lists running exiles, leaving out roulette.
func (m *Manager) ActiveExiles(ctx context.Context) ([]model.UserExile, error) {
	return m.store.ListActiveExiles(ctx, RouletteReason)
}

func (m *Manager) activeExile(ctx context.Context, userID int64) (*model.Exile, error) {
	active, err := m.store.GetUserActiveExile(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	return active, err
}

// swapRoles adds to before removing from. A failed removal leaves the member holding both roles.
func (m *Manager) swapRoles(ctx context.Context, userID, from, to string) error {
	if err := m.platform.AssignRole(ctx, userID, to); err != nil {
		return err
	}
	return m.platform.RemoveRole(ctx, userID, from)
}

func (m *Manager) stripStickyRoles(ctx context.Context, member *model.Member, userID int64) ([]string, error) {
	var held []string
	for _, roleID := range member.RoleIDs {
		if m.cfg.IsSticky(roleID) {
			held = append(held, roleID)
		}
	}
	if len(held) == 0 {
		return nil, nil
	}

	var errs []error
	stripped := make([]string, 0, len(held))
	for _, roleID := range held {
		if err := m.platform.RemoveRole(ctx, member.UserID, roleID); err != nil {
			errs = append(errs, fmt.Errorf("remove sticky role %s: %w", roleID, err))
			continue
		}
		stripped = append(stripped, roleID)
	}
	if err := m.store.AddStickyRoles(ctx, userID, stripped); err != nil {
		errs = append(errs, err)
	}

	err := errors.Join(errs...)
	if err != nil {
		logging.Warn("Sticky roles could not be completely removed", "user_id", member.UserID, "error", err)
	}
	return stripped, err
}

func (m *Manager) restoreStickyRoles(ctx context.Context, discordUserID string, userID int64) ([]string, error) {
	roles, err := m.store.GetStickyRoles(ctx, userID)
	if err != nil {
		logging.Warn("Failed to load sticky roles", "user_id", discordUserID, "error", err)
		return nil, err
	}
	if len(roles) == 0 {
		return nil, nil
	}

	var errs []error
	restored := make([]string, 0, len(roles))
	for _, roleID := range roles {
		if err := m.platform.AssignRole(ctx, discordUserID, roleID); err != nil {
			errs = append(errs, fmt.Errorf("restore sticky role %s: %w", roleID, err))
			continue
		}
		restored = append(restored, roleID)
	}
	// Roles that could not be reassigned stay saved for the next unexile.
	if len(errs) == 0 {
		if err := m.store.RemoveStickyRoles(ctx, userID); err != nil {
			errs = append(errs, err)
		}
	} else {
		for _, roleID := range restored {
			if err := m.store.RemoveStickyRole(ctx, userID, roleID); err != nil {
				errs = append(errs, err)
			}
		}
	}

	err = errors.Join(errs...)
	if err != nil {
		logging.Warn("Sticky roles could not be completely restored", "user_id", discordUserID, "error", err)
	}
	return restored, err
}

func (m *Manager) notify(ctx context.Context, userID, text string) error {
	err := m.platform.SendDirectMessage(ctx, userID, text)
	if err != nil {
		m.metrics.DirectMessageFailures.Inc()
		logging.Warn("Failed to send direct message", "user_id", userID, "kind", model.KindOf(err).String(), "error", err)
	}
	return err
}

func (m *Manager) markUnknown(ctx context.Context, exileID int64) {
	if err := m.store.UpdateExileStatus(ctx, exileID, model.ExileUnknown); err != nil {
		logging.Error("Failed to mark exile unknown", "exile_id", exileID, "error", err)
		return
	}
	m.metrics.ExileTransitionsTotal.WithLabelValues(model.ExileUnknown.String()).Inc()
}
