package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moddingway/logging"
	"moddingway/model"
	"moddingway/utils"
	"moddingway/utils/database"
)

type banRecorder interface {
	RecordBan(ctx context.Context, discordUserID string, banned bool) error
}

type userStore interface {
	GetUser(ctx context.Context, discordUserID string) (*model.User, error)
	GetOrCreateUser(ctx context.Context, discordUserID, guildID string) (*model.User, error)
	SetUserRole(ctx context.Context, id int64, role model.UserRole) error
}

// MemberEvents reacts to guild membership changes made outside the bot's commands.
type MemberEvents struct {
	config func() *model.Config
	roles  model.RoleAssigner
	bans   banRecorder
	users  userStore
	modLog model.ModLogger
	now    func() time.Time
}

func NewMemberEvents(config func() *model.Config, roles model.RoleAssigner, bans banRecorder, users userStore, modLog model.ModLogger) *MemberEvents {
	return &MemberEvents{
		config: config,
		roles:  roles,
		bans:   bans,
		users:  users,
		modLog: modLog,
		now:    time.Now,
	}
}

// OnJoin gives a new member the non-verified role and logs the join with the account's age.
func (e *MemberEvents) OnJoin(ctx context.Context, userID string, accountCreated time.Time) {
	cfg := e.config()
	entry := utils.NewLogEntry("Member Joined", "").
		Add("User", "<@"+userID+">").
		Add("Account Created", fmt.Sprintf("<t:%d:R>", accountCreated.Unix())).
		Add("Account Age", accountAge(e.now().Sub(accountCreated)))

	if cfg.Roles.NonVerified != "" {
		if err := e.roles.AssignRole(ctx, userID, cfg.Roles.NonVerified); err != nil {
			logging.Error("Failed to assign non-verified role", "user_id", userID, "error", err)
			entry.Add("Error", "Failed to assign the non-verified role")
		}
	}
	entry.Add("Result", "<@"+userID+"> joined the server")
	entry.Post(ctx, e.modLog, cfg.LoggingChannelID)
}

// OnBanChange mirrors a ban or unban into the store and logs it.
func (e *MemberEvents) OnBanChange(ctx context.Context, userID string, banned bool) {
	action, result := "Member Banned", "was banned"
	if !banned {
		action, result = "Member Unbanned", "was unbanned"
	}
	entry := utils.NewLogEntry(action, "").
		Add("User", "<@"+userID+">").
		Add("Result", "<@"+userID+"> "+result)

	if err := e.bans.RecordBan(ctx, userID, banned); err != nil {
		logging.Error("Failed to record ban state", "user_id", userID, "is_banned", banned, "error", err)
		entry.Add("Error", "Failed to update the user record")
	}
	entry.Post(ctx, e.modLog, e.config().LoggingChannelID)
}

// OnRolesChanged keeps the stored role classification in step with the mod role.
// Members without a record are only created when they hold the mod role.
func (e *MemberEvents) OnRolesChanged(ctx context.Context, member *model.Member) {
	cfg := e.config()
	isMod := member.HasRole(cfg.Roles.Mod)

	var (
		user *model.User
		err  error
	)
	if isMod {
		user, err = e.users.GetOrCreateUser(ctx, member.UserID, cfg.GuildID)
	} else {
		user, err = e.users.GetUser(ctx, member.UserID)
		if errors.Is(err, database.ErrNotFound) {
			return
		}
	}
	if err != nil {
		logging.Error("Failed to load user for role sync", "user_id", member.UserID, "error", err)
		return
	}

	want := model.RoleOrdinary
	if isMod {
		want = model.RoleMod
	}
	if user.Role == want || user.Role == model.RoleAdmin {
		return
	}
	if err := e.users.SetUserRole(ctx, user.ID, want); err != nil {
		logging.Error("Failed to update user role", "user_id", member.UserID, "error", err)
		return
	}
	logging.Info("User role updated", "user_id", member.UserID, "role", want)
}

func accountAge(d time.Duration) string {
	days := int(d.Hours() / 24)
	switch {
	case days >= 365:
		return fmt.Sprintf("%d year(s), %d day(s)", days/365, days%365)
	case days >= 1:
		return fmt.Sprintf("%d day(s)", days)
	default:
		return fmt.Sprintf("%d hour(s)", int(d.Hours()))
	}
}
