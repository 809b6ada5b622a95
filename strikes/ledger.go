package strikes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moddingway/ban"
	"moddingway/exile"
	"moddingway/logging"
	"moddingway/metrics"
	"moddingway/model"
	"moddingway/utils/database"
)

// DecayWindow is how long a temporary point survives without a new infraction.
const DecayWindow = 90 * 24 * time.Hour

const (
	exileReason = "Your actions were severe or frequent enough for you to receive this exile"
	banReason   = "Your strikes were severe or frequent enough to be removed from %s"
)

var (
	ErrInvalidSeverity = errors.New("Invalid strike severity")
	ErrStrikeNotFound  = errors.New("Strike not found")
	ErrNoRecord        = errors.New("User not found in database")
)

// Store is the persistence the ledger needs.
type Store interface {
	GetUser(ctx context.Context, discordUserID string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetOrCreateUser(ctx context.Context, discordUserID, guildID string) (*model.User, error)
	UpdateUserPoints(ctx context.Context, u *model.User) error
	AddStrike(ctx context.Context, strike *model.Strike) (int64, error)
	ListStrikes(ctx context.Context, userID int64) ([]model.Strike, error)
	DeleteStrike(ctx context.Context, id int64) (*model.Strike, error)
	DecrementUserStrikePoints(ctx context.Context, id int64, temporary, permanent int) error
	DecrementOldStrikePoints(ctx context.Context, cutoff time.Time, window time.Duration) (int64, error)
}

// Exiler applies exile punishments.
type Exiler interface {
	Exile(ctx context.Context, member *model.Member, duration time.Duration, reason string) (*exile.Result, error)
}

// Banner applies ban punishments.
type Banner interface {
	Ban(ctx context.Context, member *model.Member, reason string, deleteHistory bool) (*ban.Result, error)
}

// StrikeResult describes a recorded strike. PunishmentErr and DMErr never fail the strike.
type StrikeResult struct {
	StrikeID       int64
	PreviousPoints int
	NewPoints      int
	Punishment     Punishment
	PunishmentErr  error
	DMErr          error
}

// Ledger records strikes, keeps point totals and escalates punishment.
type Ledger struct {
	cfg      *model.Config
	store    Store
	exiler   Exiler
	banner   Banner
	notifier model.Notifier
	metrics  *metrics.MetricsRegistry
	now      func() time.Time
}

func NewLedger(cfg *model.Config, store Store, exiler Exiler, banner Banner, notifier model.Notifier, m *metrics.MetricsRegistry) *Ledger {
	return &Ledger{
		cfg:      cfg,
		store:    store,
		exiler:   exiler,
		banner:   banner,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
	}
}

// AddStrike records a strike against member and applies whatever punishment the new
// total calls for.
//
// The strike insert, the point update and the punishment are committed separately.
// A failure part way leaves the earlier steps in place.
func (l *Ledger) AddStrike(ctx context.Context, member *model.Member, severity model.StrikeSeverity, reason, actorID string) (*StrikeResult, error) {
	if !severity.Valid() {
		return nil, ErrInvalidSeverity
	}

	user, err := l.store.GetOrCreateUser(ctx, member.UserID, l.cfg.GuildID)
	if err != nil {
		return nil, err
	}

	now := l.now().UTC()
	id, err := l.store.AddStrike(ctx, &model.Strike{
		UserID:       user.ID,
		Severity:     severity,
		Reason:       reason,
		CreatedAt:    now,
		CreatedBy:    actorID,
		LastEditedAt: now,
		LastEditedBy: actorID,
	})
	if err != nil {
		return nil, err
	}
	l.metrics.StrikesTotal.WithLabelValues(severity.String()).Inc()

	previous := user.TotalPoints()
	if severity.Permanent() {
		user.PermanentPoints += severity.Points()
	} else {
		user.TemporaryPoints += severity.Points()
	}
	user.LastInfractionAt = &now
	if err := l.store.UpdateUserPoints(ctx, user); err != nil {
		return nil, fmt.Errorf("strike %d recorded but points not applied: %w", id, err)
	}

	res := &StrikeResult{
		StrikeID:       id,
		PreviousPoints: previous,
		NewPoints:      user.TotalPoints(),
		Punishment:     Evaluate(previous, user.TotalPoints()),
	}
	logging.Info("Strike added",
		"user_id", member.UserID, "strike_id", id, "severity", severity.String(),
		"previous_points", res.PreviousPoints, "new_points", res.NewPoints, "punishment", res.Punishment.String())

	res.PunishmentErr = l.punish(ctx, member, res.Punishment)
	res.DMErr = l.notifier.SendDirectMessage(ctx, member.UserID, fmt.Sprintf(
		"Your actions in %s resulted in a strike against your account. This may result in punishment depending on the frequency or severity of your strikes.\n**Reason:** %s",
		l.cfg.CommunityName, reason))
	if res.DMErr != nil {
		l.metrics.DirectMessageFailures.Inc()
		logging.Warn("Failed to send strike DM", "user_id", member.UserID, "error", res.DMErr)
	}
	return res, nil
}

func (l *Ledger) punish(ctx context.Context, member *model.Member, p Punishment) error {
	l.metrics.PunishmentsTotal.WithLabelValues(p.Kind.String()).Inc()

	var err error
	switch p.Kind {
	case PunishmentBan:
		_, err = l.banner.Ban(ctx, member, fmt.Sprintf(banReason, l.cfg.CommunityName), false)
	case PunishmentExile:
		_, err = l.exiler.Exile(ctx, member, time.Duration(p.Days)*24*time.Hour, exileReason)
	default:
		return nil
	}
	if err != nil {
		logging.Error("Failed to apply strike punishment", "user_id", member.UserID, "punishment", p.String(), "error", err)
	}
	return err
}

// UserStrikes returns a user's record and strikes, newest first.
func (l *Ledger) UserStrikes(ctx context.Context, discordUserID string) (*model.User, []model.Strike, error) {
	user, err := l.store.GetUser(ctx, discordUserID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil, ErrNoRecord
	}
	if err != nil {
		return nil, nil, err
	}
	strikes, err := l.store.ListStrikes(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, strikes, nil
}

// DeleteStrike removes a strike and refunds its points, never below zero.
// Punishments already applied stay in place.
func (l *Ledger) DeleteStrike(ctx context.Context, strikeID int64) (*model.Strike, *model.User, error) {
	strike, err := l.store.DeleteStrike(ctx, strikeID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil, ErrStrikeNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	temporary, permanent := 0, 0
	if strike.Severity.Permanent() {
		permanent = strike.Severity.Points()
	} else {
		temporary = strike.Severity.Points()
	}
	if err := l.store.DecrementUserStrikePoints(ctx, strike.UserID, temporary, permanent); err != nil {
		return nil, nil, fmt.Errorf("strike %d deleted but points not refunded: %w", strikeID, err)
	}

	user, err := l.store.GetUserByID(ctx, strike.UserID)
	if err != nil {
		return nil, nil, err
	}
	logging.Info("Strike deleted", "strike_id", strikeID, "user_id", user.DiscordUserID, "points", user.TotalPoints())
	return strike, user, nil
}

// DecayTemporaryPoints removes one temporary point from every user whose last
// infraction is older than DecayWindow.
func (l *Ledger) DecayTemporaryPoints(ctx context.Context) (int64, error) {
	n, err := l.store.DecrementOldStrikePoints(ctx, l.now().UTC().Add(-DecayWindow), DecayWindow)
	if err != nil {
		logging.Error("Failed to decay strike points", "error", err)
		return 0, err
	}
	logging.Info("Strike points decayed", "users", n)
	return n, nil
}
