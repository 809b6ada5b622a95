package ban

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moddingway/logging"
	"moddingway/metrics"
	"moddingway/model"
)

// MaxReasonLength is the first reason length the platform rejects.
const MaxReasonLength = 512

const appealDelay = 30 * 24 * time.Hour

var (
	ErrReasonTooLong = errors.New("reason is too long (above 512 characters). Please shorten the ban reason.")
	ErrBanFailed     = errors.New("ban failed")
)

// Store is the persistence the ban service needs.
type Store interface {
	GetOrCreateUser(ctx context.Context, discordUserID, guildID string) (*model.User, error)
	SetUserBanned(ctx context.Context, id int64, banned bool) error
}

// Platform is the chat-platform surface bans go through.
type Platform interface {
	model.Notifier
	model.Banner
}

// Result describes a completed ban. DMErr never fails the ban.
type Result struct {
	DMErr error
}

// Service bans members and mirrors bans into the store.
type Service struct {
	cfg      *model.Config
	store    Store
	platform Platform
	metrics  *metrics.MetricsRegistry
	now      func() time.Time
}

func NewService(cfg *model.Config, store Store, platform Platform, m *metrics.MetricsRegistry) *Service {
	return &Service{
		cfg:      cfg,
		store:    store,
		platform: platform,
		metrics:  m,
		now:      time.Now,
	}
}

// Ban notifies member and then bans them. The DM goes first because a banned user
// shares no guild with the bot and cannot be messaged.
func (s *Service) Ban(ctx context.Context, member *model.Member, reason string, deleteHistory bool) (*Result, error) {
	if len(reason) >= MaxReasonLength {
		return nil, ErrReasonTooLong
	}

	res := &Result{DMErr: s.sendBanDM(ctx, member, reason)}

	if err := s.platform.Ban(ctx, member.UserID, reason, deleteHistory); err != nil {
		logging.Error("Failed to ban user", "user_id", member.UserID, "kind", model.KindOf(err).String(), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrBanFailed, err)
	}
	logging.Info("User banned", "user_id", member.UserID, "delete_history", deleteHistory)

	if err := s.RecordBan(ctx, member.UserID, true); err != nil {
		logging.Warn("Ban succeeded but could not be recorded", "user_id", member.UserID, "error", err)
	}
	return res, nil
}

// RecordBan flags the user as banned or unbanned, creating the record if needed.
func (s *Service) RecordBan(ctx context.Context, discordUserID string, banned bool) error {
	user, err := s.store.GetOrCreateUser(ctx, discordUserID, s.cfg.GuildID)
	if err != nil {
		return err
	}
	if err := s.store.SetUserBanned(ctx, user.ID, banned); err != nil {
		return err
	}
	logging.Info("Ban state recorded", "user_id", discordUserID, "is_banned", banned)
	return nil
}

func (s *Service) sendBanDM(ctx context.Context, member *model.Member, reason string) error {
	appeal := s.now().UTC().Add(appealDelay).Unix()
	text := fmt.Sprintf("Hello %s,\n\n"+
		"You are being informed that you have been **banned** from **%s**.\n\n"+
		"**Reason for the ban:**\n> %s\n\n"+
		"If you believe this ban was issued in error you can reach out to the Moderation Team. "+
		"Otherwise, you may appeal this ban starting on <t:%d:F>.\n\n"+
		"Please note that any further attempts to rejoin the server will be met with a permanent ban.",
		member.DisplayName, s.cfg.CommunityName, reason, appeal)

	err := s.platform.SendDirectMessage(ctx, member.UserID, text)
	if err != nil {
		s.metrics.DirectMessageFailures.Inc()
		logging.Warn("Failed to send ban DM", "user_id", member.UserID, "error", err)
	}
	return err
}
