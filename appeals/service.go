// Package appeals handles ban appeal forms submitted through the REST API.
package appeals

import (
	"context"
	"errors"
	"time"

	"moddingway/logging"
	"moddingway/model"
	"moddingway/utils"
	"moddingway/utils/database"
)

var (
	ErrNoRecord     = errors.New("User not found in database")
	ErrNotBanned    = errors.New("User is not currently banned")
	ErrFormNotFound = errors.New("Form not found")
)

// Store is the persistence appeals need.
type Store interface {
	GetUser(ctx context.Context, discordUserID string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	AddBanForm(ctx context.Context, form *model.BanForm) (int64, error)
	GetBanForm(ctx context.Context, id int64) (*model.BanForm, error)
	ReviewBanForm(ctx context.Context, id int64, approval bool, approverID string) error
}

type banRecorder interface {
	RecordBan(ctx context.Context, discordUserID string, banned bool) error
}

// ReviewResult describes a recorded decision. UnbanErr never undoes the decision.
type ReviewResult struct {
	Form     *model.BanForm
	UnbanErr error
}

// Service records appeals and lifts the ban of approved ones.
type Service struct {
	store    Store
	unbanner model.Unbanner
	bans     banRecorder
	now      func() time.Time
}

func NewService(store Store, unbanner model.Unbanner, bans banRecorder) *Service {
	return &Service{
		store:    store,
		unbanner: unbanner,
		bans:     bans,
		now:      time.Now,
	}
}

// Submit files an appeal for a user the store knows as banned.
func (s *Service) Submit(ctx context.Context, discordUserID, reason string) (*model.BanForm, error) {
	if err := utils.ValidateReason(reason); err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, discordUserID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	if !user.IsBanned {
		return nil, ErrNotBanned
	}

	form := &model.BanForm{UserID: user.ID, Reason: reason, SubmittedAt: s.now().UTC()}
	form.ID, err = s.store.AddBanForm(ctx, form)
	if err != nil {
		return nil, err
	}
	logging.Info("Ban appeal submitted", "form_id", form.ID, "user_id", discordUserID)
	return form, nil
}

func (s *Service) Get(ctx context.Context, formID int64) (*model.BanForm, error) {
	form, err := s.store.GetBanForm(ctx, formID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrFormNotFound
	}
	return form, err
}

// Review records approverID's decision. An approval also unbans the user on the platform
// and clears their ban flag.
func (s *Service) Review(ctx context.Context, formID int64, approval bool, approverID string) (*ReviewResult, error) {
	form, err := s.Get(ctx, formID)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReviewBanForm(ctx, formID, approval, approverID); err != nil {
		return nil, err
	}
	form.Approval, form.ApprovedBy = &approval, &approverID
	logging.Info("Ban appeal reviewed", "form_id", formID, "approval", approval, "approver_id", approverID)

	res := &ReviewResult{Form: form}
	if approval {
		res.UnbanErr = s.lift(ctx, form.UserID)
	}
	return res, nil
}

func (s *Service) lift(ctx context.Context, userID int64) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	// A ban already lifted by hand shows up as not found.
	if err := s.unbanner.Unban(ctx, user.DiscordUserID); err != nil && !model.IsNotFound(err) {
		logging.Error("Failed to unban user after approved appeal", "user_id", user.DiscordUserID, "error", err)
		return err
	}
	return s.bans.RecordBan(ctx, user.DiscordUserID, false)
}
